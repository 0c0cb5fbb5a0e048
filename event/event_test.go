// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package event

import (
	"errors"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"
)

var (
	oracle = common.HexToAddress("0x0100000000000000000000000000000000000000")
	timer  = common.HexToAddress("0x0200000000000000000000000000000000000000")
)

func TestRegisterAndFire(t *testing.T) {
	t.Parallel()

	l := New(memdb.New())
	raw := ids.ID{0xde, 0xad}

	final, err := l.Register(oracle, 0, raw, "death certificate")
	if err != nil {
		t.Fatal(err)
	}

	fired, err := l.IsFired(final)
	if err != nil {
		t.Fatal(err)
	}
	if fired {
		t.Fatal("event fired before dispatch")
	}

	if err := l.Fire(timer, final); !errors.Is(err, ErrInvalidDispatcher) {
		t.Fatalf("unexpected error %v, expected %v", err, ErrInvalidDispatcher)
	}
	if err := l.Fire(oracle, final); err != nil {
		t.Fatal(err)
	}
	if err := l.Fire(oracle, final); !errors.Is(err, ErrDuplicateEvent) {
		t.Fatalf("unexpected error %v, expected %v", err, ErrDuplicateEvent)
	}

	fired, err = l.IsFired(final)
	if err != nil {
		t.Fatal(err)
	}
	if !fired {
		t.Fatal("fired flag must be monotonic")
	}
}

func TestRegisterScoping(t *testing.T) {
	t.Parallel()

	l := New(memdb.New())
	raw := ids.ID{0x1}

	h1, err := l.Register(oracle, 0, raw, "a")
	if err != nil {
		t.Fatal(err)
	}
	// Same raw hash from a different dispatcher lands on a different
	// final hash instead of colliding.
	h2, err := l.Register(timer, 0, raw, "b")
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h2 {
		t.Fatal("dispatcher scoping failed")
	}

	// Re-registering by the same dispatcher is rejected: first
	// registrant wins, permanently.
	if _, err := l.Register(oracle, 0, raw, "again"); !errors.Is(err, ErrDuplicateRegistration) {
		t.Fatalf("unexpected error %v, expected %v", err, ErrDuplicateRegistration)
	}
}

func TestIsFiredUnregistered(t *testing.T) {
	t.Parallel()

	l := New(memdb.New())
	fired, err := l.IsFired(ids.ID{0x9})
	if err != nil {
		t.Fatal(err)
	}
	if fired {
		t.Fatal("unregistered hash must read as not fired")
	}
}

func TestTrustEvents(t *testing.T) {
	t.Parallel()

	l := New(memdb.New())
	h1, err := l.Register(oracle, 7, ids.ID{0x1}, "a")
	if err != nil {
		t.Fatal(err)
	}
	h2, err := l.Register(oracle, 7, ids.ID{0x2}, "b")
	if err != nil {
		t.Fatal(err)
	}

	events, err := l.TrustEvents(7)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[0] != h1 || events[1] != h2 {
		t.Fatalf("unexpected trust index %v", events)
	}
}
