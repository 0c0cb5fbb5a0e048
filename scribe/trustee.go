// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scribe

import (
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"

	"github.com/keyspace-labs/trustvm/event"
	"github.com/keyspace-labs/trustvm/gate"
	"github.com/keyspace-labs/trustvm/ledger"
	"github.com/keyspace-labs/trustvm/registry"
	"github.com/keyspace-labs/trustvm/types"
)

// Trustee grants the holder of a trustee key the right to distribute
// funds from a source key to a configured beneficiary ring.
type Trustee struct {
	deps
}

func NewTrustee(addr common.Address, db database.Database, reg *registry.Registry, led *ledger.Ledger, events *event.Log, g *gate.Gate) *Trustee {
	return &Trustee{deps{addr: addr, db: db, reg: reg, led: led, events: events, gate: g}}
}

// Address returns the scribe's caller identity, the one a root key
// holder opts in with the gate.
func (t *Trustee) Address() common.Address {
	return t.addr
}

// SetPolicy configures a distribution policy on trusteeKeyID. All
// named keys must belong to the root key's trust, the beneficiary set
// must be non-empty and root-free, and the source key may never be a
// listed beneficiary. The trustee key itself may be a beneficiary;
// self-service distribution is intentionally permitted.
func (t *Trustee) SetPolicy(caller common.Address, rootKeyID, trusteeKeyID, sourceKeyID uint64, beneficiaries []uint64, events []ids.ID) error {
	trust, err := t.reg.RequireRoot(caller, rootKeyID)
	if err != nil {
		return err
	}

	var existing types.TrusteePolicy
	found, err := t.getRecord(trusteePrefix, trusteeKeyID, &existing)
	if err != nil {
		return err
	}
	if found {
		return ErrPolicyExists
	}

	if len(beneficiaries) == 0 {
		return ErrEmptyBeneficiaries
	}
	if err := t.reg.ValidateKeyRing(trust.ID, []uint64{trusteeKeyID, sourceKeyID}, true); err != nil {
		return err
	}
	if err := t.reg.ValidateKeyRing(trust.ID, beneficiaries, false); err != nil {
		return err
	}

	policy := &types.TrusteePolicy{
		TrusteeKeyID: trusteeKeyID,
		RootKeyID:    rootKeyID,
		SourceKeyID:  sourceKeyID,
		Events:       events,
		State:        types.PolicyConfigured,
	}
	for _, b := range beneficiaries {
		if b == sourceKeyID {
			return ErrSelfBeneficiary
		}
		policy.Beneficiaries.Add(b)
	}
	if len(events) == 0 {
		policy.State = policy.State.Activate()
	}
	return t.putRecord(trusteePrefix, trusteeKeyID, policy)
}

// Distribute moves amounts of asset from the policy's source key to
// destKeys. The caller must hold the trustee key (or the trust root),
// every required event must have fired (the Active latch is persisted
// here if it flips), and every destination must be a configured
// beneficiary.
func (t *Trustee) Distribute(caller common.Address, trusteeKeyID uint64, asset ids.ID, destKeys []uint64, amounts []uint64) (uint64, error) {
	var policy types.TrusteePolicy
	found, err := t.getRecord(trusteePrefix, trusteeKeyID, &policy)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, ErrPolicyMissing
	}

	trustID, err := t.reg.TrustOf(trusteeKeyID)
	if err != nil {
		return 0, err
	}
	if err := t.gate.RequireTrustedScribe(t.addr, trustID); err != nil {
		return 0, err
	}
	if err := t.gate.RequireKeyHolder(caller, trusteeKeyID); err != nil {
		return 0, err
	}

	state, dirty, err := t.requireEnabled(policy.State, policy.Events)
	if err != nil {
		return 0, err
	}
	if dirty {
		policy.State = state
		if err := t.putRecord(trusteePrefix, trusteeKeyID, &policy); err != nil {
			return 0, err
		}
	}

	for _, dest := range destKeys {
		if !policy.Beneficiaries.Contains(dest) {
			return 0, ErrNotBeneficiary
		}
	}
	return t.led.Distribute(t.addr, asset, policy.SourceKeyID, destKeys, amounts)
}

// TrusteeView is the read-only preview of one policy. Enabled is
// computed against the live event log and is not persisted.
type TrusteeView struct {
	Policy  types.TrusteePolicy `serialize:"true" json:"policy"`
	Enabled bool                `serialize:"true" json:"enabled"`
}

// Policy returns the stored policy with its computed enabled state.
func (t *Trustee) Policy(trusteeKeyID uint64) (*TrusteeView, error) {
	var policy types.TrusteePolicy
	found, err := t.getRecord(trusteePrefix, trusteeKeyID, &policy)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrPolicyMissing
	}
	enabled, err := t.computeEnabled(policy.State, policy.Events)
	if err != nil {
		return nil, err
	}
	return &TrusteeView{Policy: policy, Enabled: enabled}, nil
}

// RemovePolicy clears the record on trusteeKeyID entirely. Key IDs are
// never recycled, but the full clear keeps storage free of stale
// entitlement state.
func (t *Trustee) RemovePolicy(caller common.Address, rootKeyID, trusteeKeyID uint64) error {
	if _, err := t.reg.RequireRoot(caller, rootKeyID); err != nil {
		return err
	}
	var policy types.TrusteePolicy
	found, err := t.getRecord(trusteePrefix, trusteeKeyID, &policy)
	if err != nil {
		return err
	}
	if !found {
		return ErrPolicyMissing
	}
	if policy.RootKeyID != rootKeyID {
		return ErrWrongRoot
	}
	return t.deleteRecord(trusteePrefix, trusteeKeyID)
}
