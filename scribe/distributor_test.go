// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scribe

import (
	"errors"
	"testing"

	"github.com/keyspace-labs/trustvm/registry"
)

func TestDistributorDistribute(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	sourceKey := h.newKey(t, "payroll", bob)
	dest1 := h.newKey(t, "dest1", carol)
	dest2 := h.newKey(t, "dest2", carol)

	if _, err := h.led.Credit(sourceKey, usdc, 100); err != nil {
		t.Fatal(err)
	}

	remaining, err := h.distributor.Distribute(bob, sourceKey, usdc, []uint64{dest1, dest2}, []uint64{30, 20})
	if err != nil {
		t.Fatal(err)
	}
	if remaining != 50 {
		t.Fatalf("expected remaining 50, got %d", remaining)
	}

	// Root possession is an acceptable substitute for the source key.
	if _, err := h.distributor.Distribute(alice, sourceKey, usdc, []uint64{dest1}, []uint64{10}); err != nil {
		t.Fatal(err)
	}

	// The root key is a valid destination.
	if _, err := h.distributor.Distribute(bob, sourceKey, usdc, []uint64{h.rootKey}, []uint64{10}); err != nil {
		t.Fatal(err)
	}

	// Fanning out to the source itself is rejected.
	if _, err := h.distributor.Distribute(bob, sourceKey, usdc, []uint64{sourceKey}, []uint64{1}); !errors.Is(err, ErrSelfDistribution) {
		t.Fatalf("unexpected error %v, expected %v", err, ErrSelfDistribution)
	}

	// A caller with no claim on the source fails before any mutation.
	if _, err := h.distributor.Distribute(carol, sourceKey, usdc, []uint64{dest1}, []uint64{1}); !errors.Is(err, registry.ErrKeyNotHeld) {
		t.Fatalf("unexpected error %v, expected %v", err, registry.ErrKeyNotHeld)
	}

	// Destinations on a different trust are rejected by ring checks.
	_, otherRoot, err := h.reg.CreateTrust("other", bob)
	if err != nil {
		t.Fatal(err)
	}
	foreignKey, err := h.reg.CreateKey(bob, otherRoot, "foreign", bob, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.distributor.Distribute(bob, sourceKey, usdc, []uint64{foreignKey}, []uint64{1}); !errors.Is(err, registry.ErrForeignKey) {
		t.Fatalf("unexpected error %v, expected %v", err, registry.ErrForeignKey)
	}
}

func TestDistributorSourceRootRequiresRoot(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	dest := h.newKey(t, "dest", carol)
	if _, err := h.led.Credit(h.rootKey, usdc, 100); err != nil {
		t.Fatal(err)
	}

	// Without the root key itself, the root's funds are out of reach.
	if _, err := h.distributor.Distribute(bob, h.rootKey, usdc, []uint64{dest}, []uint64{1}); !errors.Is(err, registry.ErrKeyNotHeld) {
		t.Fatalf("unexpected error %v, expected %v", err, registry.ErrKeyNotHeld)
	}
	if _, err := h.distributor.Distribute(alice, h.rootKey, usdc, []uint64{dest}, []uint64{1}); err != nil {
		t.Fatal(err)
	}
}
