// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package registry is the single source of truth for trust and key
// existence, root-key identity, ring membership, and per-holder key
// copy counts.
package registry

import (
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/keyspace-labs/trustvm/types"
)

// RootKeyName is the alias minted for every trust's root key.
const RootKeyName = "root"

type Registry struct {
	db database.Database
}

func New(db database.Database) *Registry {
	return &Registry{db: db}
}

// CreateTrust allocates a new trust and its root key, and mints one
// copy of the root key to recipient. Any address may found a trust.
func (r *Registry) CreateTrust(name string, recipient common.Address) (uint64, uint64, error) {
	trustID, err := nextID(r.db, trustCounter)
	if err != nil {
		return 0, 0, err
	}
	rootKeyID, err := nextID(r.db, keyCounter)
	if err != nil {
		return 0, 0, err
	}

	key := &types.KeyInfo{
		ID:      rootKeyID,
		TrustID: trustID,
		Name:    RootKeyName,
	}
	if err := r.mint(key, recipient, 1); err != nil {
		return 0, 0, err
	}

	trust := &types.TrustInfo{
		ID:        trustID,
		Name:      name,
		RootKeyID: rootKeyID,
	}
	trust.Ring.Add(rootKeyID)
	if err := putTrustInfo(r.db, trust); err != nil {
		return 0, 0, err
	}
	return trustID, rootKeyID, nil
}

// CreateKey allocates a new key on the root key's trust and mints one
// copy to receiver, optionally soulbinding it. The caller (holder)
// must possess rootKeyID and it must genuinely be a root key.
func (r *Registry) CreateKey(holder common.Address, rootKeyID uint64, name string, receiver common.Address, bind bool) (uint64, error) {
	trust, err := r.RequireRoot(holder, rootKeyID)
	if err != nil {
		return 0, err
	}

	keyID, err := nextID(r.db, keyCounter)
	if err != nil {
		return 0, err
	}
	key := &types.KeyInfo{
		ID:      keyID,
		TrustID: trust.ID,
		Name:    name,
	}
	if err := r.mint(key, receiver, 1); err != nil {
		return 0, err
	}

	trust.Ring.Add(keyID)
	if err := putTrustInfo(r.db, trust); err != nil {
		return 0, err
	}

	if bind {
		if err := r.raiseBind(keyID, receiver, 1); err != nil {
			return 0, err
		}
	}
	return keyID, nil
}

// CopyKey mints an additional copy of an existing ring key to
// receiver. It does not allocate a new ID.
func (r *Registry) CopyKey(holder common.Address, rootKeyID, keyID uint64, receiver common.Address, bind bool) error {
	trust, err := r.RequireRoot(holder, rootKeyID)
	if err != nil {
		return err
	}
	key, err := getKeyInfo(r.db, keyID)
	if err != nil {
		return err
	}
	if key.TrustID != trust.ID {
		return ErrForeignKey
	}
	if err := r.mint(key, receiver, 1); err != nil {
		return err
	}
	if bind {
		cur, err := getHolderAmount(r.db, bindPrefix, keyID, receiver)
		if err != nil {
			return err
		}
		return r.raiseBind(keyID, receiver, cur+1)
	}
	return nil
}

// BurnKey destroys amount copies of keyID held by target. The key ID
// stays on the ring; only copies are destroyed. Burning is a root
// authority, so it overrides the soulbound floor; the recorded floor
// is clamped to what remains.
func (r *Registry) BurnKey(holder common.Address, rootKeyID, keyID uint64, target common.Address, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	trust, err := r.RequireRoot(holder, rootKeyID)
	if err != nil {
		return err
	}
	key, err := getKeyInfo(r.db, keyID)
	if err != nil {
		return err
	}
	if key.TrustID != trust.ID {
		return ErrForeignKey
	}

	held, err := getHolderAmount(r.db, holdingPrefix, keyID, target)
	if err != nil {
		return err
	}
	if held < amount {
		return ErrInsufficientKeys
	}
	remaining := held - amount
	if err := putHolderAmount(r.db, holdingPrefix, keyID, target, remaining); err != nil {
		return err
	}

	bound, err := getHolderAmount(r.db, bindPrefix, keyID, target)
	if err != nil {
		return err
	}
	if bound > remaining {
		if err := putHolderAmount(r.db, bindPrefix, keyID, target, remaining); err != nil {
			return err
		}
	}

	key.Supply -= amount
	return putKeyInfo(r.db, key)
}

// TransferKey moves amount copies of keyID from holder to receiver.
// Holder-initiated transfers never dip below the holder's soulbound
// floor.
func (r *Registry) TransferKey(holder common.Address, keyID uint64, receiver common.Address, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	if _, err := getKeyInfo(r.db, keyID); err != nil {
		return err
	}
	held, err := getHolderAmount(r.db, holdingPrefix, keyID, holder)
	if err != nil {
		return err
	}
	if held < amount {
		return ErrInsufficientKeys
	}
	bound, err := getHolderAmount(r.db, bindPrefix, keyID, holder)
	if err != nil {
		return err
	}
	if held-amount < bound {
		return ErrSoulbound
	}
	got, err := getHolderAmount(r.db, holdingPrefix, keyID, receiver)
	if err != nil {
		return err
	}
	newGot, err := math.Add64(got, amount)
	if err != nil {
		return err
	}
	if err := putHolderAmount(r.db, holdingPrefix, keyID, holder, held-amount); err != nil {
		return err
	}
	return putHolderAmount(r.db, holdingPrefix, keyID, receiver, newGot)
}

// SoulbindKey raises the minimum quantity of keyID that target must
// retain. The floor is monotonic: it can be raised by the root holder
// but never lowered (burning copies clamps it implicitly).
func (r *Registry) SoulbindKey(holder common.Address, rootKeyID, keyID uint64, target common.Address, amount uint64) error {
	trust, err := r.RequireRoot(holder, rootKeyID)
	if err != nil {
		return err
	}
	key, err := getKeyInfo(r.db, keyID)
	if err != nil {
		return err
	}
	if key.TrustID != trust.ID {
		return ErrForeignKey
	}
	held, err := getHolderAmount(r.db, holdingPrefix, keyID, target)
	if err != nil {
		return err
	}
	if amount > held {
		return ErrInsufficientKeys
	}
	return r.raiseBind(keyID, target, amount)
}

// KeyInspection is the never-failing read view of one key ID. Valid is
// false for never-allocated IDs; all other fields are zero-values in
// that case and must not be trusted.
type KeyInspection struct {
	Valid   bool     `serialize:"true" json:"valid"`
	Name    string   `serialize:"true" json:"name"`
	TrustID uint64   `serialize:"true" json:"trustId"`
	IsRoot  bool     `serialize:"true" json:"isRoot"`
	Ring    []uint64 `serialize:"true" json:"ring"`
}

// InspectKey never fails for unallocated IDs; callers must check
// Valid before trusting the other fields.
func (r *Registry) InspectKey(keyID uint64) (*KeyInspection, error) {
	key, err := getKeyInfo(r.db, keyID)
	if err == ErrKeyMissing {
		return &KeyInspection{}, nil
	}
	if err != nil {
		return nil, err
	}
	trust, err := getTrustInfo(r.db, key.TrustID)
	if err != nil {
		return nil, err
	}
	return &KeyInspection{
		Valid:   true,
		Name:    key.Name,
		TrustID: key.TrustID,
		IsRoot:  key.IsRoot(trust),
		Ring:    trust.Ring.Values(),
	}, nil
}

// ValidateKeyRing requires every key in keys to be allocated, to
// belong to trustID, and (unless allowRoot) to not be the trust's root
// key. It fails fast on the first violation instead of returning
// false, so callers cannot silently ignore a bad ring.
func (r *Registry) ValidateKeyRing(trustID uint64, keys []uint64, allowRoot bool) error {
	trust, err := getTrustInfo(r.db, trustID)
	if err != nil {
		return err
	}
	for _, keyID := range keys {
		key, err := getKeyInfo(r.db, keyID)
		if err != nil {
			return err
		}
		if key.TrustID != trustID {
			return ErrForeignKey
		}
		if !allowRoot && keyID == trust.RootKeyID {
			return ErrRootOnRing
		}
	}
	return nil
}

// HasKeyOrTrustRoot reports whether holder possesses keyID directly or
// possesses the root key of keyID's trust. Invalid key IDs read as
// false rather than failing.
func (r *Registry) HasKeyOrTrustRoot(holder common.Address, keyID uint64) (bool, error) {
	key, err := getKeyInfo(r.db, keyID)
	if err == ErrKeyMissing {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	held, err := getHolderAmount(r.db, holdingPrefix, keyID, holder)
	if err != nil {
		return false, err
	}
	if held > 0 {
		return true, nil
	}
	trust, err := getTrustInfo(r.db, key.TrustID)
	if err != nil {
		return false, err
	}
	rootHeld, err := getHolderAmount(r.db, holdingPrefix, trust.RootKeyID, holder)
	if err != nil {
		return false, err
	}
	return rootHeld > 0, nil
}

// HoldsKey reports whether holder possesses at least one copy of
// keyID directly.
func (r *Registry) HoldsKey(holder common.Address, keyID uint64) (bool, error) {
	held, err := getHolderAmount(r.db, holdingPrefix, keyID, holder)
	if err != nil {
		return false, err
	}
	return held > 0, nil
}

// Holdings returns the number of copies of keyID held by holder.
func (r *Registry) Holdings(keyID uint64, holder common.Address) (uint64, error) {
	return getHolderAmount(r.db, holdingPrefix, keyID, holder)
}

// SoulboundMinimum returns the floor holder must retain for keyID.
func (r *Registry) SoulboundMinimum(keyID uint64, holder common.Address) (uint64, error) {
	return getHolderAmount(r.db, bindPrefix, keyID, holder)
}

// KeyInfo returns the key record for keyID.
func (r *Registry) KeyInfo(keyID uint64) (*types.KeyInfo, error) {
	return getKeyInfo(r.db, keyID)
}

// TrustInfo returns the trust record for trustID.
func (r *Registry) TrustInfo(trustID uint64) (*types.TrustInfo, error) {
	return getTrustInfo(r.db, trustID)
}

// TrustOf resolves keyID to its owning trust ID.
func (r *Registry) TrustOf(keyID uint64) (uint64, error) {
	key, err := getKeyInfo(r.db, keyID)
	if err != nil {
		return 0, err
	}
	return key.TrustID, nil
}

// RequireRoot asserts that holder possesses rootKeyID and that the key
// genuinely is the root key of its trust, returning the trust.
func (r *Registry) RequireRoot(holder common.Address, rootKeyID uint64) (*types.TrustInfo, error) {
	key, err := getKeyInfo(r.db, rootKeyID)
	if err != nil {
		return nil, err
	}
	held, err := getHolderAmount(r.db, holdingPrefix, rootKeyID, holder)
	if err != nil {
		return nil, err
	}
	if held == 0 {
		return nil, ErrKeyNotHeld
	}
	trust, err := getTrustInfo(r.db, key.TrustID)
	if err != nil {
		return nil, err
	}
	if !key.IsRoot(trust) {
		return nil, ErrKeyNotRoot
	}
	return trust, nil
}

func (r *Registry) mint(key *types.KeyInfo, receiver common.Address, amount uint64) error {
	held, err := getHolderAmount(r.db, holdingPrefix, key.ID, receiver)
	if err != nil {
		return err
	}
	newHeld, err := math.Add64(held, amount)
	if err != nil {
		return err
	}
	if err := putHolderAmount(r.db, holdingPrefix, key.ID, receiver, newHeld); err != nil {
		return err
	}
	newSupply, err := math.Add64(key.Supply, amount)
	if err != nil {
		return err
	}
	key.Supply = newSupply
	key.Minted = true
	return putKeyInfo(r.db, key)
}

// raiseBind sets target's soulbound floor for keyID, rejecting any
// decrease.
func (r *Registry) raiseBind(keyID uint64, target common.Address, amount uint64) error {
	cur, err := getHolderAmount(r.db, bindPrefix, keyID, target)
	if err != nil {
		return err
	}
	if amount < cur {
		return ErrBindDecrease
	}
	return putHolderAmount(r.db, bindPrefix, keyID, target, amount)
}
