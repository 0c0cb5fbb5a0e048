// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scribe

import (
	"errors"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"

	"github.com/keyspace-labs/trustvm/event"
	"github.com/keyspace-labs/trustvm/gate"
	"github.com/keyspace-labs/trustvm/ledger"
	"github.com/keyspace-labs/trustvm/registry"
)

var (
	alice  = common.HexToAddress("0x0a00000000000000000000000000000000000000")
	bob    = common.HexToAddress("0x0b00000000000000000000000000000000000000")
	carol  = common.HexToAddress("0x0c00000000000000000000000000000000000000")
	oracle = common.HexToAddress("0x0d00000000000000000000000000000000000000")

	trusteeAddr     = common.HexToAddress("0xa100000000000000000000000000000000000000")
	allowanceAddr   = common.HexToAddress("0xa200000000000000000000000000000000000000")
	distributorAddr = common.HexToAddress("0xa300000000000000000000000000000000000000")

	usdc = ids.ID{0x1}
)

type harness struct {
	reg    *registry.Registry
	led    *ledger.Ledger
	events *event.Log
	gate   *gate.Gate

	trustee     *Trustee
	allowance   *AllowanceScribe
	distributor *Distributor

	trustID uint64
	rootKey uint64
}

// newHarness founds a trust for alice and opts all three scribes in.
func newHarness(t *testing.T) *harness {
	t.Helper()

	base := memdb.New()
	reg := registry.New(prefixdb.New([]byte("registry"), base))
	led := ledger.New(prefixdb.New([]byte("ledger"), base))
	events := event.New(prefixdb.New([]byte("event"), base))
	g := gate.New(prefixdb.New([]byte("gate"), base), reg)
	scribeDB := prefixdb.New([]byte("scribe"), base)

	h := &harness{
		reg:         reg,
		led:         led,
		events:      events,
		gate:        g,
		trustee:     NewTrustee(trusteeAddr, scribeDB, reg, led, events, g),
		allowance:   NewAllowance(allowanceAddr, scribeDB, reg, led, events, g),
		distributor: NewDistributor(distributorAddr, scribeDB, reg, led, events, g),
	}

	trustID, rootKey, err := reg.CreateTrust("estate", alice)
	if err != nil {
		t.Fatal(err)
	}
	h.trustID, h.rootKey = trustID, rootKey
	for _, addr := range []common.Address{trusteeAddr, allowanceAddr, distributorAddr} {
		if err := g.SetScribe(alice, rootKey, addr, true); err != nil {
			t.Fatal(err)
		}
	}
	return h
}

func (h *harness) newKey(t *testing.T, name string, receiver common.Address) uint64 {
	t.Helper()

	keyID, err := h.reg.CreateKey(alice, h.rootKey, name, receiver, false)
	if err != nil {
		t.Fatal(err)
	}
	return keyID
}

func TestTrusteeSetPolicyPreconditions(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	trusteeKey := h.newKey(t, "trustee", bob)
	sourceKey := h.newKey(t, "source", alice)
	benKey := h.newKey(t, "beneficiary", carol)

	_, otherRoot, err := h.reg.CreateTrust("other", bob)
	if err != nil {
		t.Fatal(err)
	}
	foreignKey, err := h.reg.CreateKey(bob, otherRoot, "foreign", bob, false)
	if err != nil {
		t.Fatal(err)
	}

	tt := []struct {
		caller        common.Address
		rootKey       uint64
		trusteeKey    uint64
		sourceKey     uint64
		beneficiaries []uint64
		err           error
	}{
		{bob, h.rootKey, trusteeKey, sourceKey, []uint64{benKey}, registry.ErrKeyNotHeld},
		{alice, sourceKey, trusteeKey, sourceKey, []uint64{benKey}, registry.ErrKeyNotRoot}, // alice holds sourceKey, so root-ness is what fails
		{alice, h.rootKey, trusteeKey, sourceKey, nil, ErrEmptyBeneficiaries},
		{alice, h.rootKey, trusteeKey, sourceKey, []uint64{h.rootKey}, registry.ErrRootOnRing},
		{alice, h.rootKey, trusteeKey, sourceKey, []uint64{sourceKey}, ErrSelfBeneficiary},
		{alice, h.rootKey, trusteeKey, sourceKey, []uint64{foreignKey}, registry.ErrForeignKey},
		{alice, h.rootKey, trusteeKey, sourceKey, []uint64{benKey, trusteeKey}, nil}, // trustee self-service is permitted
		{alice, h.rootKey, trusteeKey, sourceKey, []uint64{benKey}, ErrPolicyExists},
	}
	for i, tv := range tt {
		err := h.trustee.SetPolicy(tv.caller, tv.rootKey, tv.trusteeKey, tv.sourceKey, tv.beneficiaries, nil)
		if !errors.Is(err, tv.err) {
			t.Fatalf("#%d: unexpected error %v, expected %v", i, err, tv.err)
		}
	}
}

func TestTrusteeDistribute(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	trusteeKey := h.newKey(t, "trustee", bob)
	sourceKey := h.newKey(t, "source", alice)
	benKey := h.newKey(t, "beneficiary", carol)
	strayKey := h.newKey(t, "stray", carol)

	if _, err := h.led.Credit(sourceKey, usdc, 100); err != nil {
		t.Fatal(err)
	}
	if err := h.trustee.SetPolicy(alice, h.rootKey, trusteeKey, sourceKey, []uint64{benKey}, nil); err != nil {
		t.Fatal(err)
	}

	// A caller without the trustee key fails and mutates nothing.
	if _, err := h.trustee.Distribute(carol, trusteeKey, usdc, []uint64{benKey}, []uint64{10}); !errors.Is(err, registry.ErrKeyNotHeld) {
		t.Fatalf("unexpected error %v, expected %v", err, registry.ErrKeyNotHeld)
	}
	bal, err := h.led.Balance(sourceKey, usdc)
	if err != nil {
		t.Fatal(err)
	}
	if bal != 100 {
		t.Fatalf("unauthorized call mutated ledger: %d", bal)
	}

	// Non-beneficiary destinations are rejected.
	if _, err := h.trustee.Distribute(bob, trusteeKey, usdc, []uint64{strayKey}, []uint64{10}); !errors.Is(err, ErrNotBeneficiary) {
		t.Fatalf("unexpected error %v, expected %v", err, ErrNotBeneficiary)
	}

	remaining, err := h.trustee.Distribute(bob, trusteeKey, usdc, []uint64{benKey}, []uint64{40})
	if err != nil {
		t.Fatal(err)
	}
	if remaining != 60 {
		t.Fatalf("expected remaining 60, got %d", remaining)
	}

	// The trust root can drive the trustee key too.
	if _, err := h.trustee.Distribute(alice, trusteeKey, usdc, []uint64{benKey}, []uint64{10}); err != nil {
		t.Fatal(err)
	}
}

func TestTrusteeEventActivation(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	trusteeKey := h.newKey(t, "trustee", bob)
	sourceKey := h.newKey(t, "source", alice)
	benKey := h.newKey(t, "beneficiary", carol)
	if _, err := h.led.Credit(sourceKey, usdc, 100); err != nil {
		t.Fatal(err)
	}

	hash, err := h.events.Register(oracle, h.trustID, ids.ID{0xaa}, "death certificate")
	if err != nil {
		t.Fatal(err)
	}
	if err := h.trustee.SetPolicy(alice, h.rootKey, trusteeKey, sourceKey, []uint64{benKey}, []ids.ID{hash}); err != nil {
		t.Fatal(err)
	}

	view, err := h.trustee.Policy(trusteeKey)
	if err != nil {
		t.Fatal(err)
	}
	if view.Enabled {
		t.Fatal("policy enabled before event fired")
	}

	if _, err := h.trustee.Distribute(bob, trusteeKey, usdc, []uint64{benKey}, []uint64{10}); !errors.Is(err, ErrMissingEvent) {
		t.Fatalf("unexpected error %v, expected %v", err, ErrMissingEvent)
	}

	if err := h.events.Fire(oracle, hash); err != nil {
		t.Fatal(err)
	}

	// The read view computes enablement without persisting it.
	view, err = h.trustee.Policy(trusteeKey)
	if err != nil {
		t.Fatal(err)
	}
	if !view.Enabled {
		t.Fatal("computed enablement missing after event fired")
	}

	// The first mutating call persists the latch.
	if _, err := h.trustee.Distribute(bob, trusteeKey, usdc, []uint64{benKey}, []uint64{10}); err != nil {
		t.Fatal(err)
	}
}

func TestTrusteeRemovePolicy(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	trusteeKey := h.newKey(t, "trustee", bob)
	sourceKey := h.newKey(t, "source", alice)
	benKey := h.newKey(t, "beneficiary", carol)

	if err := h.trustee.SetPolicy(alice, h.rootKey, trusteeKey, sourceKey, []uint64{benKey}, nil); err != nil {
		t.Fatal(err)
	}

	// A different trust's root cannot remove it.
	_, otherRoot, err := h.reg.CreateTrust("other", bob)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.trustee.RemovePolicy(bob, otherRoot, trusteeKey); !errors.Is(err, ErrWrongRoot) {
		t.Fatalf("unexpected error %v, expected %v", err, ErrWrongRoot)
	}

	if err := h.trustee.RemovePolicy(alice, h.rootKey, trusteeKey); err != nil {
		t.Fatal(err)
	}
	if _, err := h.trustee.Policy(trusteeKey); !errors.Is(err, ErrPolicyMissing) {
		t.Fatalf("unexpected error %v, expected %v", err, ErrPolicyMissing)
	}

	// The key is free for a fresh policy after the clear.
	if err := h.trustee.SetPolicy(alice, h.rootKey, trusteeKey, sourceKey, []uint64{benKey}, nil); err != nil {
		t.Fatal(err)
	}
}

func TestTrusteeUntrustedScribe(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	trusteeKey := h.newKey(t, "trustee", bob)
	sourceKey := h.newKey(t, "source", alice)
	benKey := h.newKey(t, "beneficiary", carol)

	if err := h.trustee.SetPolicy(alice, h.rootKey, trusteeKey, sourceKey, []uint64{benKey}, nil); err != nil {
		t.Fatal(err)
	}
	// Root opts the trustee scribe back out.
	if err := h.gate.SetScribe(alice, h.rootKey, trusteeAddr, false); err != nil {
		t.Fatal(err)
	}
	if _, err := h.trustee.Distribute(bob, trusteeKey, usdc, []uint64{benKey}, []uint64{1}); !errors.Is(err, gate.ErrUntrustedScribe) {
		t.Fatalf("unexpected error %v, expected %v", err, gate.ErrUntrustedScribe)
	}
}
