// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger is the authoritative (key, asset) balance store.
//
// The ledger enforces arithmetic conservation only; it trusts its
// caller completely. Authorization lives upstream in the gate and the
// scribes, which is why access to these mutators must be fenced there.
package ledger

import (
	"encoding/binary"
	"errors"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/keyspace-labs/trustvm/codec"
)

// 0x0/ (balances)
//   -> [key ID]
//     -> [asset]
// 0x1/ (per-key asset lists)
//   -> [key ID]
// 0x2/ (per-asset totals)
//   -> [asset]

const (
	balancePrefix = 0x0
	assetsPrefix  = 0x1
	totalPrefix   = 0x2

	delimiter = '/'
)

func init() {
	codec.RegisterType(&assetList{})
}

// assetList records which assets have ever touched a key, in first-
// credit order.
type assetList struct {
	Assets []ids.ID `serialize:"true" json:"assets"`
}

type Ledger struct {
	db database.Database
}

func New(db database.Database) *Ledger {
	return &Ledger{db: db}
}

func balanceKey(keyID uint64, asset ids.ID) []byte {
	b := make([]byte, 2+8+1+32)
	b[0], b[1] = balancePrefix, delimiter
	binary.BigEndian.PutUint64(b[2:], keyID)
	b[10] = delimiter
	copy(b[11:], asset[:])
	return b
}

func assetsKey(keyID uint64) []byte {
	b := make([]byte, 2+8)
	b[0], b[1] = assetsPrefix, delimiter
	binary.BigEndian.PutUint64(b[2:], keyID)
	return b
}

func totalKey(asset ids.ID) []byte {
	return append([]byte{totalPrefix, delimiter}, asset[:]...)
}

func getUint64(db database.Database, k []byte) (uint64, bool, error) {
	v, err := db.Get(k)
	if errors.Is(err, database.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return binary.BigEndian.Uint64(v), true, nil
}

func putUint64(db database.Database, k []byte, v uint64) error {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return db.Put(k, b)
}

// Credit adds amount to (keyID, asset), registering the asset for the
// key on first touch, and returns the new balance. Overflow fails fast
// rather than wrapping.
func (l *Ledger) Credit(keyID uint64, asset ids.ID, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, ErrZeroAmount
	}
	bal, touched, err := getUint64(l.db, balanceKey(keyID, asset))
	if err != nil {
		return 0, err
	}
	newBal, err := math.Add64(bal, amount)
	if err != nil {
		return 0, err
	}
	if !touched {
		if err := l.registerAsset(keyID, asset); err != nil {
			return 0, err
		}
	}
	if err := putUint64(l.db, balanceKey(keyID, asset), newBal); err != nil {
		return 0, err
	}
	if err := l.addTotal(asset, amount); err != nil {
		return 0, err
	}
	return newBal, nil
}

// Debit removes amount from (keyID, asset) and returns the new
// balance. It fails ErrOverdraft if amount exceeds the balance or the
// asset was never registered for the key; balances never go negative.
func (l *Ledger) Debit(keyID uint64, asset ids.ID, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, ErrZeroAmount
	}
	bal, touched, err := getUint64(l.db, balanceKey(keyID, asset))
	if err != nil {
		return 0, err
	}
	if !touched || amount > bal {
		return 0, ErrOverdraft
	}
	newBal := bal - amount
	// The record is kept at zero: registered stays registered.
	if err := putUint64(l.db, balanceKey(keyID, asset), newBal); err != nil {
		return 0, err
	}
	if err := l.subTotal(asset, amount); err != nil {
		return 0, err
	}
	return newBal, nil
}

// Move atomically debits fromKey and credits toKey. If the debit
// fails, no credit occurs.
func (l *Ledger) Move(fromKey, toKey uint64, asset ids.ID, amount uint64) (uint64, uint64, error) {
	fromBal, err := l.Debit(fromKey, asset, amount)
	if err != nil {
		return 0, 0, err
	}
	toBal, err := l.Credit(toKey, asset, amount)
	if err != nil {
		return 0, 0, err
	}
	return fromBal, toBal, nil
}

// Distribute debits sourceKey once for the sum of amounts, then
// credits each (destKeys[i], amounts[i]) pair, returning the remaining
// source balance. The provider identity and key/asset validity are the
// caller's responsibility; only arithmetic conservation is enforced
// here. A zero-length distribution is a trivial no-op.
func (l *Ledger) Distribute(provider common.Address, asset ids.ID, sourceKey uint64, destKeys []uint64, amounts []uint64) (uint64, error) {
	if len(destKeys) != len(amounts) {
		return 0, ErrLengthMismatch
	}
	if len(destKeys) == 0 {
		bal, _, err := getUint64(l.db, balanceKey(sourceKey, asset))
		return bal, err
	}

	// Reject zero entries before the debit so a bad pair can never
	// leave the source debited with a credit loop half-done.
	var sum uint64
	for _, a := range amounts {
		if a == 0 {
			return 0, ErrZeroAmount
		}
		var err error
		if sum, err = math.Add64(sum, a); err != nil {
			return 0, err
		}
	}
	remaining, err := l.Debit(sourceKey, asset, sum)
	if err != nil {
		return 0, err
	}
	for i, dest := range destKeys {
		if _, err := l.Credit(dest, asset, amounts[i]); err != nil {
			return 0, err
		}
	}
	return remaining, nil
}

// Balance returns the balance of (keyID, asset); never-registered
// pairs read as zero.
func (l *Ledger) Balance(keyID uint64, asset ids.ID) (uint64, error) {
	bal, _, err := getUint64(l.db, balanceKey(keyID, asset))
	return bal, err
}

// Assets returns every asset that has ever been credited to keyID, in
// first-credit order.
func (l *Ledger) Assets(keyID uint64) ([]ids.ID, error) {
	v, err := l.db.Get(assetsKey(keyID))
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list assetList
	if _, err := codec.Unmarshal(v, &list); err != nil {
		return nil, err
	}
	return list.Assets, nil
}

// TotalSupply returns the sum of all key balances for asset. Custody
// contracts compare it against their actual held quantity to assert
// conservation after every external interaction.
func (l *Ledger) TotalSupply(asset ids.ID) (uint64, error) {
	total, _, err := getUint64(l.db, totalKey(asset))
	return total, err
}

func (l *Ledger) registerAsset(keyID uint64, asset ids.ID) error {
	assets, err := l.Assets(keyID)
	if err != nil {
		return err
	}
	list := assetList{Assets: append(assets, asset)}
	v, err := codec.Marshal(&list)
	if err != nil {
		return err
	}
	return l.db.Put(assetsKey(keyID), v)
}

func (l *Ledger) addTotal(asset ids.ID, amount uint64) error {
	total, _, err := getUint64(l.db, totalKey(asset))
	if err != nil {
		return err
	}
	newTotal, err := math.Add64(total, amount)
	if err != nil {
		return err
	}
	return putUint64(l.db, totalKey(asset), newTotal)
}

func (l *Ledger) subTotal(asset ids.ID, amount uint64) error {
	total, _, err := getUint64(l.db, totalKey(asset))
	if err != nil {
		return err
	}
	if amount > total {
		return ErrTotalDiverged
	}
	return putUint64(l.db, totalKey(asset), total-amount)
}
