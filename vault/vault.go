// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vault custodies external token balances against ledger keys.
//
// Token contracts are unaudited: every Transfer/TransferFrom is a
// suspension point that may re-enter the system before it returns. All
// internal state is therefore committed before the external call, and
// the conservation invariant is re-checked immediately after it.
package vault

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"

	"github.com/keyspace-labs/trustvm/asset"
	"github.com/keyspace-labs/trustvm/gate"
	"github.com/keyspace-labs/trustvm/ledger"
)

// Token is the externally supplied token contract interface. Its
// methods may call back into the vault before returning.
type Token interface {
	Transfer(to common.Address, amount uint64) error
	TransferFrom(from, to common.Address, amount uint64) error
	BalanceOf(addr common.Address) (uint64, error)
}

type Vault struct {
	addr common.Address
	led  *ledger.Ledger
	gate *gate.Gate

	// tokens binds asset fingerprints to live contract handles. The
	// execution environment serializes top-level calls, so no lock.
	tokens map[ids.ID]Token
}

func New(addr common.Address, led *ledger.Ledger, g *gate.Gate) *Vault {
	return &Vault{
		addr:   addr,
		led:    led,
		gate:   g,
		tokens: make(map[ids.ID]Token),
	}
}

// Address returns the vault's own account, the holder of custodied
// token balances.
func (v *Vault) Address() common.Address {
	return v.addr
}

// RegisterAsset binds a token contract under its canonical fingerprint
// and returns the asset ID used on the ledger.
func (v *Vault) RegisterAsset(standard asset.Standard, contract common.Address, discriminator uint64, token Token) (ids.ID, error) {
	id := asset.Fingerprint(standard, contract, discriminator)
	if _, ok := v.tokens[id]; ok {
		return ids.Empty, ErrAssetExists
	}
	v.tokens[id] = token
	return id, nil
}

// Deposit pulls amount of assetID from caller into custody and credits
// keyID. The caller must hold keyID (or its trust root).
func (v *Vault) Deposit(caller common.Address, keyID uint64, assetID ids.ID, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, ErrZeroAmount
	}
	token, ok := v.tokens[assetID]
	if !ok {
		return 0, ErrAssetMissing
	}
	if err := v.gate.RequireKeyHolder(caller, keyID); err != nil {
		return 0, err
	}

	// Funds must land before the ledger records them.
	if err := token.TransferFrom(caller, v.addr, amount); err != nil {
		return 0, err
	}
	newBal, err := v.led.Credit(keyID, assetID, amount)
	if err != nil {
		return 0, err
	}
	if err := v.checkConservation(token, assetID); err != nil {
		return 0, err
	}
	return newBal, nil
}

// Withdraw debits keyID and pushes amount of assetID to receiver. The
// debit is committed before the token call, so a token that re-enters
// Withdraw observes the already-reduced balance and fails overdraft
// instead of double-spending.
func (v *Vault) Withdraw(caller common.Address, keyID uint64, assetID ids.ID, amount uint64, receiver common.Address) (uint64, error) {
	if amount == 0 {
		return 0, ErrZeroAmount
	}
	token, ok := v.tokens[assetID]
	if !ok {
		return 0, ErrAssetMissing
	}
	if err := v.gate.RequireKeyHolder(caller, keyID); err != nil {
		return 0, err
	}

	newBal, err := v.led.Debit(keyID, assetID, amount)
	if err != nil {
		return 0, err
	}
	if err := token.Transfer(receiver, amount); err != nil {
		return 0, err
	}
	if err := v.checkConservation(token, assetID); err != nil {
		return 0, err
	}
	return newBal, nil
}

// checkConservation asserts the vault's actual token balance matches
// the ledger's asset-wide total. Run after every external interaction.
func (v *Vault) checkConservation(token Token, assetID ids.ID) error {
	held, err := token.BalanceOf(v.addr)
	if err != nil {
		return err
	}
	total, err := v.led.TotalSupply(assetID)
	if err != nil {
		return err
	}
	if held != total {
		return ErrConservation
	}
	return nil
}
