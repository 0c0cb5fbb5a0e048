// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package types defines the persisted state records of the trust core.
package types

import (
	"errors"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"

	"github.com/keyspace-labs/trustvm/codec"
	"github.com/keyspace-labs/trustvm/keyset"
)

func init() {
	codec.RegisterType(&TrustInfo{})
	codec.RegisterType(&KeyInfo{})
	codec.RegisterType(&EventRecord{})
	codec.RegisterType(&TrusteePolicy{})
	codec.RegisterType(&Allowance{})
}

// ErrTerminalState is returned by a state transition that would leave
// a terminal state.
var ErrTerminalState = errors.New("state is terminal")

// EventState is the one-shot lifecycle of an event record.
type EventState uint8

const (
	EventPending EventState = iota
	EventFired
)

// Fire advances Pending to Fired. Fired is terminal.
func (s EventState) Fire() (EventState, error) {
	if s != EventPending {
		return s, ErrTerminalState
	}
	return EventFired, nil
}

// PolicyState is the lifecycle of a scribe policy. Active is terminal:
// once all required events have fired the latch never reverts.
type PolicyState uint8

const (
	PolicyConfigured PolicyState = iota
	PolicyActive
)

// Activate latches Configured to Active. Activating an already active
// policy is a no-op (the latch is idempotent). There is no inverse
// transition.
func (s PolicyState) Activate() PolicyState {
	return PolicyActive
}

// TrustInfo is a logical grouping of keys under one root authority.
type TrustInfo struct {
	ID        uint64     `serialize:"true" json:"id"`
	Name      string     `serialize:"true" json:"name"`
	RootKeyID uint64     `serialize:"true" json:"rootKeyId"`
	Ring      keyset.Set `serialize:"true" json:"ring"`
}

// KeyInfo describes one key ID. Key IDs are allocated from a global
// monotonic counter and never reused, so "ID < counter" implies the
// key was once validly allocated.
type KeyInfo struct {
	ID      uint64 `serialize:"true" json:"id"`
	TrustID uint64 `serialize:"true" json:"trustId"`
	Name    string `serialize:"true" json:"name"`

	// Supply is the number of copies currently outstanding.
	Supply uint64 `serialize:"true" json:"supply"`
	// Minted is true once at least one copy has ever been minted.
	Minted bool `serialize:"true" json:"minted"`
}

// IsRoot reports whether k is the root key of t. The flag is derived,
// never stored, so it can never flip once true: RootKeyID is immutable
// and Minted is monotonic.
func (k *KeyInfo) IsRoot(t *TrustInfo) bool {
	return k.Minted && k.TrustID == t.ID && k.ID == t.RootKeyID
}

// EventRecord is an externally attested fact. Only Dispatcher may fire
// it, and the registration is never overwritable.
type EventRecord struct {
	Hash        ids.ID         `serialize:"true" json:"hash"`
	TrustID     uint64         `serialize:"true" json:"trustId"`
	Dispatcher  common.Address `serialize:"true" json:"dispatcher"`
	Description string         `serialize:"true" json:"description"`
	State       EventState     `serialize:"true" json:"state"`
}

// Entitlement is one scheduled payout line of an allowance.
type Entitlement struct {
	SourceKeyID uint64 `serialize:"true" json:"sourceKeyId"`
	Asset       ids.ID `serialize:"true" json:"asset"`
	// Amount is the quantity released per tranche.
	Amount uint64 `serialize:"true" json:"amount"`
}

// TrusteePolicy grants the holder of TrusteeKeyID the right to
// distribute funds from SourceKeyID to the beneficiary ring, once all
// required events have fired.
type TrusteePolicy struct {
	TrusteeKeyID  uint64      `serialize:"true" json:"trusteeKeyId"`
	RootKeyID     uint64      `serialize:"true" json:"rootKeyId"`
	SourceKeyID   uint64      `serialize:"true" json:"sourceKeyId"`
	Beneficiaries keyset.Set  `serialize:"true" json:"beneficiaries"`
	Events        []ids.ID    `serialize:"true" json:"events"`
	State         PolicyState `serialize:"true" json:"state"`
}

// Allowance is a vesting schedule paying the holder of RecipientKeyID
// in whole tranches.
type Allowance struct {
	RecipientKeyID uint64        `serialize:"true" json:"recipientKeyId"`
	RootKeyID      uint64        `serialize:"true" json:"rootKeyId"`
	Entitlements   []Entitlement `serialize:"true" json:"entitlements"`
	Events         []ids.ID      `serialize:"true" json:"events"`
	State          PolicyState   `serialize:"true" json:"state"`

	RemainingTranches uint64 `serialize:"true" json:"remainingTranches"`
	// VestInterval is the seconds between tranches.
	VestInterval uint64 `serialize:"true" json:"vestInterval"`
	// NextVestTime is the timestamp at which the next tranche is due.
	NextVestTime uint64 `serialize:"true" json:"nextVestTime"`
}
