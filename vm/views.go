// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"

	"github.com/keyspace-labs/trustvm/registry"
	"github.com/keyspace-labs/trustvm/scribe"
	"github.com/keyspace-labs/trustvm/types"
)

// Read-only queries never commit or abort; they take the read lock so
// they cannot observe the dirty writes of an in-flight mutation.

func (vm *VM) InspectKey(keyID uint64) (*registry.KeyInspection, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()
	return vm.registry.InspectKey(keyID)
}

func (vm *VM) HoldsKey(holder common.Address, keyID uint64) (bool, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()
	return vm.registry.HoldsKey(holder, keyID)
}

func (vm *VM) HasKeyOrTrustRoot(holder common.Address, keyID uint64) (bool, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()
	return vm.registry.HasKeyOrTrustRoot(holder, keyID)
}

func (vm *VM) Holdings(keyID uint64, holder common.Address) (uint64, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()
	return vm.registry.Holdings(keyID, holder)
}

func (vm *VM) SoulboundMinimum(keyID uint64, holder common.Address) (uint64, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()
	return vm.registry.SoulboundMinimum(keyID, holder)
}

func (vm *VM) KeyInfo(keyID uint64) (*types.KeyInfo, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()
	return vm.registry.KeyInfo(keyID)
}

func (vm *VM) TrustInfo(trustID uint64) (*types.TrustInfo, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()
	return vm.registry.TrustInfo(trustID)
}

func (vm *VM) Balance(keyID uint64, assetID ids.ID) (uint64, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()
	return vm.ledger.Balance(keyID, assetID)
}

func (vm *VM) Assets(keyID uint64) ([]ids.ID, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()
	return vm.ledger.Assets(keyID)
}

func (vm *VM) TotalSupply(assetID ids.ID) (uint64, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()
	return vm.ledger.TotalSupply(assetID)
}

func (vm *VM) IsFired(hash ids.ID) (bool, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()
	return vm.events.IsFired(hash)
}

func (vm *VM) EventRecord(hash ids.ID) (*types.EventRecord, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()
	return vm.events.Record(hash)
}

func (vm *VM) TrustEvents(trustID uint64) ([]ids.ID, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()
	return vm.events.TrustEvents(trustID)
}

func (vm *VM) IsTrustedScribe(scribe common.Address, trustID uint64) (bool, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()
	return vm.gate.IsTrustedScribe(scribe, trustID)
}

func (vm *VM) Policy(trusteeKeyID uint64) (*scribe.TrusteeView, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()
	return vm.trustee.Policy(trusteeKeyID)
}

func (vm *VM) Allowance(recipientKeyID uint64) (*scribe.AllowanceView, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()
	return vm.allowance.Allowance(recipientKeyID, vm.clock())
}

func (vm *VM) ScribeAddresses() (trustee, allowance, distributor, vault common.Address) {
	return vm.trustee.Address(), vm.allowance.Address(), vm.distributor.Address(), vm.vault.Address()
}
