// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ethereum/go-ethereum/common"
)

var (
	alice = common.HexToAddress("0x0a00000000000000000000000000000000000000")
	bob   = common.HexToAddress("0x0b00000000000000000000000000000000000000")
	carol = common.HexToAddress("0x0c00000000000000000000000000000000000000")
)

func TestCreateTrust(t *testing.T) {
	t.Parallel()

	r := New(memdb.New())
	trustID, rootKeyID, err := r.CreateTrust("estate", alice)
	if err != nil {
		t.Fatal(err)
	}
	if trustID != 0 || rootKeyID != 0 {
		t.Fatalf("unexpected first IDs %d/%d", trustID, rootKeyID)
	}

	insp, err := r.InspectKey(rootKeyID)
	if err != nil {
		t.Fatal(err)
	}
	if !insp.Valid || !insp.IsRoot || insp.TrustID != trustID {
		t.Fatalf("unexpected root inspection %+v", insp)
	}
	if !reflect.DeepEqual(insp.Ring, []uint64{rootKeyID}) {
		t.Fatalf("new trust ring must contain exactly the root key, got %v", insp.Ring)
	}

	held, err := r.Holdings(rootKeyID, alice)
	if err != nil {
		t.Fatal(err)
	}
	if held != 1 {
		t.Fatalf("expected 1 root copy, got %d", held)
	}
}

func TestKeyIDMonotonicity(t *testing.T) {
	t.Parallel()

	r := New(memdb.New())
	_, root, err := r.CreateTrust("estate", alice)
	if err != nil {
		t.Fatal(err)
	}

	k1, err := r.CreateKey(alice, root, "beneficiary", bob, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.BurnKey(alice, root, k1, bob, 1); err != nil {
		t.Fatal(err)
	}

	// IDs are never reused, even after the only copy is burned.
	k2, err := r.CreateKey(alice, root, "beneficiary2", bob, false)
	if err != nil {
		t.Fatal(err)
	}
	if k2 <= k1 {
		t.Fatalf("expected strictly increasing key IDs, got %d then %d", k1, k2)
	}

	// Burned key still exists on the ring with zero supply.
	insp, err := r.InspectKey(k1)
	if err != nil {
		t.Fatal(err)
	}
	if !insp.Valid {
		t.Fatal("burned key should remain allocated")
	}
	info, err := r.KeyInfo(k1)
	if err != nil {
		t.Fatal(err)
	}
	if info.Supply != 0 || !info.Minted {
		t.Fatalf("unexpected burned key record %+v", info)
	}
}

func TestCreateKeyPreconditions(t *testing.T) {
	t.Parallel()

	r := New(memdb.New())
	_, root, err := r.CreateTrust("estate", alice)
	if err != nil {
		t.Fatal(err)
	}
	nonRoot, err := r.CreateKey(alice, root, "trustee", bob, false)
	if err != nil {
		t.Fatal(err)
	}

	tt := []struct {
		holder  common.Address
		rootKey uint64
		err     error
	}{
		{bob, root, ErrKeyNotHeld},
		{bob, nonRoot, ErrKeyNotRoot},
		{alice, 42, ErrKeyMissing},
	}
	for i, tv := range tt {
		if _, err := r.CreateKey(tv.holder, tv.rootKey, "x", carol, false); !errors.Is(err, tv.err) {
			t.Fatalf("#%d: unexpected error %v, expected %v", i, err, tv.err)
		}
	}
}

func TestCopyKey(t *testing.T) {
	t.Parallel()

	r := New(memdb.New())
	_, root, err := r.CreateTrust("estate", alice)
	if err != nil {
		t.Fatal(err)
	}
	keyID, err := r.CreateKey(alice, root, "trustee", bob, false)
	if err != nil {
		t.Fatal(err)
	}

	if err := r.CopyKey(alice, root, keyID, carol, false); err != nil {
		t.Fatal(err)
	}
	info, err := r.KeyInfo(keyID)
	if err != nil {
		t.Fatal(err)
	}
	if info.Supply != 2 {
		t.Fatalf("expected supply 2, got %d", info.Supply)
	}

	// Copying a key from a different trust fails.
	_, otherRoot, err := r.CreateTrust("other", bob)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.CopyKey(bob, otherRoot, keyID, carol, false); !errors.Is(err, ErrForeignKey) {
		t.Fatalf("unexpected error %v, expected %v", err, ErrForeignKey)
	}
}

func TestSoulbound(t *testing.T) {
	t.Parallel()

	r := New(memdb.New())
	_, root, err := r.CreateTrust("estate", alice)
	if err != nil {
		t.Fatal(err)
	}
	keyID, err := r.CreateKey(alice, root, "trustee", bob, true)
	if err != nil {
		t.Fatal(err)
	}

	// A bound holder cannot transfer below the floor.
	if err := r.TransferKey(bob, keyID, carol, 1); !errors.Is(err, ErrSoulbound) {
		t.Fatalf("unexpected error %v, expected %v", err, ErrSoulbound)
	}

	// Extra unbound copies move freely.
	if err := r.CopyKey(alice, root, keyID, bob, false); err != nil {
		t.Fatal(err)
	}
	if err := r.TransferKey(bob, keyID, carol, 1); err != nil {
		t.Fatal(err)
	}

	// The floor is monotonic.
	if err := r.SoulbindKey(alice, root, keyID, bob, 0); !errors.Is(err, ErrBindDecrease) {
		t.Fatalf("unexpected error %v, expected %v", err, ErrBindDecrease)
	}

	// Root burn overrides the floor and clamps it.
	if err := r.BurnKey(alice, root, keyID, bob, 1); err != nil {
		t.Fatal(err)
	}
	min, err := r.SoulboundMinimum(keyID, bob)
	if err != nil {
		t.Fatal(err)
	}
	if min != 0 {
		t.Fatalf("expected clamped floor 0, got %d", min)
	}
}

func TestValidateKeyRing(t *testing.T) {
	t.Parallel()

	r := New(memdb.New())
	trustID, root, err := r.CreateTrust("estate", alice)
	if err != nil {
		t.Fatal(err)
	}
	keyID, err := r.CreateKey(alice, root, "trustee", bob, false)
	if err != nil {
		t.Fatal(err)
	}
	otherTrust, otherRoot, err := r.CreateTrust("other", bob)
	if err != nil {
		t.Fatal(err)
	}

	tt := []struct {
		trustID   uint64
		keys      []uint64
		allowRoot bool
		err       error
	}{
		{trustID, []uint64{keyID}, false, nil},
		{trustID, []uint64{root}, true, nil},
		{trustID, []uint64{root}, false, ErrRootOnRing},
		{trustID, []uint64{otherRoot}, true, ErrForeignKey},
		{otherTrust, []uint64{keyID}, true, ErrForeignKey},
		{trustID, []uint64{99}, true, ErrKeyMissing},
	}
	for i, tv := range tt {
		err := r.ValidateKeyRing(tv.trustID, tv.keys, tv.allowRoot)
		if !errors.Is(err, tv.err) {
			t.Fatalf("#%d: unexpected error %v, expected %v", i, err, tv.err)
		}
	}
}

func TestHasKeyOrTrustRoot(t *testing.T) {
	t.Parallel()

	r := New(memdb.New())
	_, root, err := r.CreateTrust("estate", alice)
	if err != nil {
		t.Fatal(err)
	}
	keyID, err := r.CreateKey(alice, root, "trustee", bob, false)
	if err != nil {
		t.Fatal(err)
	}

	tt := []struct {
		holder common.Address
		keyID  uint64
		want   bool
	}{
		{bob, keyID, true},   // direct possession
		{alice, keyID, true}, // via trust root
		{carol, keyID, false},
		{alice, 99, false}, // invalid key reads false, not an error
	}
	for i, tv := range tt {
		got, err := r.HasKeyOrTrustRoot(tv.holder, tv.keyID)
		if err != nil {
			t.Fatalf("#%d: %v", i, err)
		}
		if got != tv.want {
			t.Fatalf("#%d: got %v, expected %v", i, got, tv.want)
		}
	}
}

func TestRootKeyStability(t *testing.T) {
	t.Parallel()

	r := New(memdb.New())
	_, root, err := r.CreateTrust("estate", alice)
	if err != nil {
		t.Fatal(err)
	}

	// Burning every root copy never revokes rootness: the flag is
	// derived from immutable trust state plus the monotonic Minted bit.
	if err := r.BurnKey(alice, root, root, alice, 1); err != nil {
		t.Fatal(err)
	}
	insp, err := r.InspectKey(root)
	if err != nil {
		t.Fatal(err)
	}
	if !insp.IsRoot {
		t.Fatal("root flag must never flip back to false")
	}
}
