// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"encoding/binary"
	"errors"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ethereum/go-ethereum/common"

	"github.com/keyspace-labs/trustvm/codec"
	"github.com/keyspace-labs/trustvm/types"
)

// 0x0/ (ID counters)
// 0x1/ (trust infos)
//   -> [trust ID]
// 0x2/ (key infos)
//   -> [key ID]
// 0x3/ (holdings)
//   -> [key ID]
//     -> [holder]
// 0x4/ (soulbound minima)
//   -> [key ID]
//     -> [holder]

const (
	counterPrefix = 0x0
	trustPrefix   = 0x1
	keyPrefix     = 0x2
	holdingPrefix = 0x3
	bindPrefix    = 0x4

	delimiter = '/'
)

var (
	trustCounter = []byte("trust_counter")
	keyCounter   = []byte("key_counter")
)

func counterKey(name []byte) []byte {
	return append([]byte{counterPrefix, delimiter}, name...)
}

func trustInfoKey(trustID uint64) []byte {
	b := make([]byte, 2+8)
	b[0], b[1] = trustPrefix, delimiter
	binary.BigEndian.PutUint64(b[2:], trustID)
	return b
}

func keyInfoKey(keyID uint64) []byte {
	b := make([]byte, 2+8)
	b[0], b[1] = keyPrefix, delimiter
	binary.BigEndian.PutUint64(b[2:], keyID)
	return b
}

func holderKey(prefix byte, keyID uint64, holder common.Address) []byte {
	b := make([]byte, 2+8+1+common.AddressLength)
	b[0], b[1] = prefix, delimiter
	binary.BigEndian.PutUint64(b[2:], keyID)
	b[10] = delimiter
	copy(b[11:], holder[:])
	return b
}

func getCounter(db database.Database, name []byte) (uint64, error) {
	v, err := db.Get(counterKey(name))
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v), nil
}

// nextID allocates the next ID for the named counter. IDs are issued
// strictly in call order and never reused.
func nextID(db database.Database, name []byte) (uint64, error) {
	id, err := getCounter(db, name)
	if err != nil {
		return 0, err
	}
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, id+1)
	if err := db.Put(counterKey(name), b); err != nil {
		return 0, err
	}
	return id, nil
}

func getTrustInfo(db database.Database, trustID uint64) (*types.TrustInfo, error) {
	v, err := db.Get(trustInfoKey(trustID))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrTrustMissing
	}
	if err != nil {
		return nil, err
	}
	var t types.TrustInfo
	if _, err := codec.Unmarshal(v, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func putTrustInfo(db database.Database, t *types.TrustInfo) error {
	v, err := codec.Marshal(t)
	if err != nil {
		return err
	}
	return db.Put(trustInfoKey(t.ID), v)
}

func getKeyInfo(db database.Database, keyID uint64) (*types.KeyInfo, error) {
	v, err := db.Get(keyInfoKey(keyID))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrKeyMissing
	}
	if err != nil {
		return nil, err
	}
	var k types.KeyInfo
	if _, err := codec.Unmarshal(v, &k); err != nil {
		return nil, err
	}
	return &k, nil
}

func putKeyInfo(db database.Database, k *types.KeyInfo) error {
	v, err := codec.Marshal(k)
	if err != nil {
		return err
	}
	return db.Put(keyInfoKey(k.ID), v)
}

func getHolderAmount(db database.Database, prefix byte, keyID uint64, holder common.Address) (uint64, error) {
	v, err := db.Get(holderKey(prefix, keyID, holder))
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v), nil
}

func putHolderAmount(db database.Database, prefix byte, keyID uint64, holder common.Address, amount uint64) error {
	k := holderKey(prefix, keyID, holder)
	if amount == 0 {
		return db.Delete(k)
	}
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, amount)
	return db.Put(k, b)
}
