// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scribe

import (
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/keyspace-labs/trustvm/event"
	"github.com/keyspace-labs/trustvm/gate"
	"github.com/keyspace-labs/trustvm/ledger"
	"github.com/keyspace-labs/trustvm/registry"
	"github.com/keyspace-labs/trustvm/types"
)

// AllowanceScribe pays the holder of a recipient key in whole vested
// tranches.
type AllowanceScribe struct {
	deps
}

func NewAllowance(addr common.Address, db database.Database, reg *registry.Registry, led *ledger.Ledger, events *event.Log, g *gate.Gate) *AllowanceScribe {
	return &AllowanceScribe{deps{addr: addr, db: db, reg: reg, led: led, events: events, gate: g}}
}

// Address returns the scribe's caller identity.
func (a *AllowanceScribe) Address() common.Address {
	return a.addr
}

// CreateAllowance configures a vesting schedule on recipientKeyID.
// Every entitlement source must belong to the root key's trust, must
// differ from the recipient key, and pays a non-zero amount per
// tranche.
func (a *AllowanceScribe) CreateAllowance(caller common.Address, rootKeyID, recipientKeyID uint64, entitlements []types.Entitlement, events []ids.ID, firstVestTime, vestInterval, tranches uint64) error {
	trust, err := a.reg.RequireRoot(caller, rootKeyID)
	if err != nil {
		return err
	}

	var existing types.Allowance
	found, err := a.getRecord(allowancePrefix, recipientKeyID, &existing)
	if err != nil {
		return err
	}
	if found {
		return ErrPolicyExists
	}

	if len(entitlements) == 0 {
		return ErrNoEntitlements
	}
	if tranches == 0 {
		return ErrZeroTranches
	}
	if vestInterval == 0 {
		return ErrZeroInterval
	}

	if err := a.reg.ValidateKeyRing(trust.ID, []uint64{recipientKeyID}, false); err != nil {
		return err
	}
	sources := make([]uint64, len(entitlements))
	for i, e := range entitlements {
		if e.Amount == 0 {
			return ErrZeroAmount
		}
		if e.SourceKeyID == recipientKeyID {
			return ErrSelfBeneficiary
		}
		sources[i] = e.SourceKeyID
	}
	if err := a.reg.ValidateKeyRing(trust.ID, sources, true); err != nil {
		return err
	}

	allowance := &types.Allowance{
		RecipientKeyID:    recipientKeyID,
		RootKeyID:         rootKeyID,
		Entitlements:      entitlements,
		Events:            events,
		State:             types.PolicyConfigured,
		RemainingTranches: tranches,
		VestInterval:      vestInterval,
		NextVestTime:      firstVestTime,
	}
	if len(events) == 0 {
		allowance.State = allowance.State.Activate()
	}
	return a.putRecord(allowancePrefix, recipientKeyID, allowance)
}

// AddTranches extends the schedule by additional tranches. Root-gated.
func (a *AllowanceScribe) AddTranches(caller common.Address, rootKeyID, recipientKeyID, additional uint64) error {
	if additional == 0 {
		return ErrZeroTranches
	}
	if _, err := a.reg.RequireRoot(caller, rootKeyID); err != nil {
		return err
	}
	allowance, err := a.allowance(recipientKeyID)
	if err != nil {
		return err
	}
	if allowance.RootKeyID != rootKeyID {
		return ErrWrongRoot
	}
	remaining, err := math.Add64(allowance.RemainingTranches, additional)
	if err != nil {
		return err
	}
	allowance.RemainingTranches = remaining
	return a.putRecord(allowancePrefix, recipientKeyID, allowance)
}

// RedeemAllowance realizes every tranche that is both due and fully
// affordable across all entitlements, returning how many were
// redeemed. The schedule is advanced and persisted before any ledger
// mutation so a re-entrant call observes the already-consumed state.
func (a *AllowanceScribe) RedeemAllowance(caller common.Address, recipientKeyID, now uint64) (uint64, error) {
	allowance, err := a.allowance(recipientKeyID)
	if err != nil {
		return 0, err
	}

	trustID, err := a.reg.TrustOf(recipientKeyID)
	if err != nil {
		return 0, err
	}
	if err := a.gate.RequireTrustedScribe(a.addr, trustID); err != nil {
		return 0, err
	}
	if err := a.gate.RequireKeyHolder(caller, recipientKeyID); err != nil {
		return 0, err
	}

	state, dirty, err := a.requireEnabled(allowance.State, allowance.Events)
	if err != nil {
		return 0, err
	}
	if dirty {
		allowance.State = state
		if err := a.putRecord(allowancePrefix, recipientKeyID, allowance); err != nil {
			return 0, err
		}
	}

	redeemable, err := a.redeemable(allowance, now)
	if err != nil {
		return 0, err
	}

	// Commit the schedule before touching balances.
	consumed, err := math.Mul64(redeemable, allowance.VestInterval)
	if err != nil {
		return 0, err
	}
	nextVest, err := math.Add64(allowance.NextVestTime, consumed)
	if err != nil {
		return 0, err
	}
	allowance.RemainingTranches -= redeemable
	allowance.NextVestTime = nextVest
	if err := a.putRecord(allowancePrefix, recipientKeyID, allowance); err != nil {
		return 0, err
	}

	for _, e := range allowance.Entitlements {
		amount, err := math.Mul64(e.Amount, redeemable)
		if err != nil {
			return 0, err
		}
		if _, _, err := a.led.Move(e.SourceKeyID, recipientKeyID, e.Asset, amount); err != nil {
			return 0, err
		}
	}
	return redeemable, nil
}

// redeemable computes the largest whole-tranche count that the clock
// and every entitlement's source balance can simultaneously satisfy.
// Zero is always an error: the cases are distinguished so callers can
// tell "not due" from "due but broke".
func (a *AllowanceScribe) redeemable(allowance *types.Allowance, now uint64) (uint64, error) {
	if allowance.RemainingTranches == 0 {
		return 0, ErrExhausted
	}
	if now < allowance.NextVestTime {
		return 0, ErrTooEarly
	}

	// At least one tranche once due, plus one more per full interval
	// elapsed since, capped at what's left.
	eligible := 1 + (now-allowance.NextVestTime)/allowance.VestInterval
	if eligible > allowance.RemainingTranches {
		eligible = allowance.RemainingTranches
	}

	for _, e := range allowance.Entitlements {
		bal, err := a.led.Balance(e.SourceKeyID, e.Asset)
		if err != nil {
			return 0, err
		}
		if affordable := bal / e.Amount; affordable < eligible {
			eligible = affordable
		}
	}
	if eligible == 0 {
		return 0, ErrUnaffordable
	}
	return eligible, nil
}

// AllowanceView is the read-only preview of one allowance. Enabled and
// Redeemable are computed against live state and never persisted.
type AllowanceView struct {
	Allowance  types.Allowance `serialize:"true" json:"allowance"`
	Enabled    bool            `serialize:"true" json:"enabled"`
	Redeemable uint64          `serialize:"true" json:"redeemable"`
}

// Allowance returns the stored schedule with computed activation and
// redeemability at time now.
func (a *AllowanceScribe) Allowance(recipientKeyID, now uint64) (*AllowanceView, error) {
	allowance, err := a.allowance(recipientKeyID)
	if err != nil {
		return nil, err
	}
	enabled, err := a.computeEnabled(allowance.State, allowance.Events)
	if err != nil {
		return nil, err
	}
	view := &AllowanceView{Allowance: *allowance, Enabled: enabled}
	if enabled {
		n, err := a.redeemable(allowance, now)
		if err == nil {
			view.Redeemable = n
		}
	}
	return view, nil
}

// RemoveAllowance clears the schedule on recipientKeyID entirely.
func (a *AllowanceScribe) RemoveAllowance(caller common.Address, rootKeyID, recipientKeyID uint64) error {
	if _, err := a.reg.RequireRoot(caller, rootKeyID); err != nil {
		return err
	}
	allowance, err := a.allowance(recipientKeyID)
	if err != nil {
		return err
	}
	if allowance.RootKeyID != rootKeyID {
		return ErrWrongRoot
	}
	return a.deleteRecord(allowancePrefix, recipientKeyID)
}

func (a *AllowanceScribe) allowance(recipientKeyID uint64) (*types.Allowance, error) {
	var allowance types.Allowance
	found, err := a.getRecord(allowancePrefix, recipientKeyID, &allowance)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrPolicyMissing
	}
	return &allowance, nil
}
