// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gate

import (
	"errors"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ethereum/go-ethereum/common"

	"github.com/keyspace-labs/trustvm/registry"
)

var (
	alice   = common.HexToAddress("0x0a00000000000000000000000000000000000000")
	bob     = common.HexToAddress("0x0b00000000000000000000000000000000000000")
	trustee = common.HexToAddress("0xaa00000000000000000000000000000000000000")
)

func newGate(t *testing.T) (*Gate, *registry.Registry) {
	t.Helper()

	base := memdb.New()
	reg := registry.New(prefixdb.New([]byte("registry"), base))
	return New(prefixdb.New([]byte("gate"), base), reg), reg
}

func TestScribeAllowList(t *testing.T) {
	t.Parallel()

	g, reg := newGate(t)
	trustID, root, err := reg.CreateTrust("estate", alice)
	if err != nil {
		t.Fatal(err)
	}

	// Closed by default.
	if err := g.RequireTrustedScribe(trustee, trustID); !errors.Is(err, ErrUntrustedScribe) {
		t.Fatalf("unexpected error %v, expected %v", err, ErrUntrustedScribe)
	}

	// Only a root key holder may opt a scribe in.
	if err := g.SetScribe(bob, root, trustee, true); !errors.Is(err, registry.ErrKeyNotHeld) {
		t.Fatalf("unexpected error %v, expected %v", err, registry.ErrKeyNotHeld)
	}
	if err := g.SetScribe(alice, root, trustee, true); err != nil {
		t.Fatal(err)
	}
	if err := g.RequireTrustedScribe(trustee, trustID); err != nil {
		t.Fatal(err)
	}

	// Opt-out works and is root-gated the same way.
	if err := g.SetScribe(alice, root, trustee, false); err != nil {
		t.Fatal(err)
	}
	if err := g.RequireTrustedScribe(trustee, trustID); !errors.Is(err, ErrUntrustedScribe) {
		t.Fatalf("unexpected error %v, expected %v", err, ErrUntrustedScribe)
	}
}

func TestRequireKeyHolder(t *testing.T) {
	t.Parallel()

	g, reg := newGate(t)
	_, root, err := reg.CreateTrust("estate", alice)
	if err != nil {
		t.Fatal(err)
	}
	keyID, err := reg.CreateKey(alice, root, "beneficiary", bob, false)
	if err != nil {
		t.Fatal(err)
	}

	if err := g.RequireKeyHolder(bob, keyID); err != nil {
		t.Fatal(err)
	}
	// Root possession is equivalent.
	if err := g.RequireKeyHolder(alice, keyID); err != nil {
		t.Fatal(err)
	}
	if err := g.RequireKeyHolder(trustee, keyID); !errors.Is(err, registry.ErrKeyNotHeld) {
		t.Fatalf("unexpected error %v, expected %v", err, registry.ErrKeyNotHeld)
	}
}
