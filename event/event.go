// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package event stores one-shot fired flags for externally attested
// facts.
//
// Registration is dispatcher-scoped: the stored hash is derived from
// (dispatcher, raw hash), so two dispatchers registering the same raw
// hash never collide and nobody can squat another dispatcher's event.
package event

import (
	"encoding/binary"
	"errors"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"

	"github.com/keyspace-labs/trustvm/codec"
	"github.com/keyspace-labs/trustvm/types"
)

// 0x0/ (event records)
//   -> [final hash]
// 0x1/ (per-trust event indexes)
//   -> [trust ID]

const (
	recordPrefix = 0x0
	trustPrefix  = 0x1

	delimiter = '/'
)

func init() {
	codec.RegisterType(&trustIndex{})
}

type trustIndex struct {
	Hashes []ids.ID `serialize:"true" json:"hashes"`
}

type Log struct {
	db database.Database
}

func New(db database.Database) *Log {
	return &Log{db: db}
}

func recordKey(hash ids.ID) []byte {
	return append([]byte{recordPrefix, delimiter}, hash[:]...)
}

func trustKey(trustID uint64) []byte {
	b := make([]byte, 2+8)
	b[0], b[1] = trustPrefix, delimiter
	binary.BigEndian.PutUint64(b[2:], trustID)
	return b
}

// FinalHash derives the stored hash for (dispatcher, raw hash).
func FinalHash(dispatcher common.Address, raw ids.ID) ids.ID {
	b := make([]byte, common.AddressLength+32)
	copy(b, dispatcher[:])
	copy(b[common.AddressLength:], raw[:])
	return ids.ID(sha3.Sum256(b))
}

// Register records the caller as the sole future authority for raw
// under trustID and returns the final (dispatcher-scoped) hash. The
// first registrant wins permanently.
func (l *Log) Register(dispatcher common.Address, trustID uint64, raw ids.ID, description string) (ids.ID, error) {
	final := FinalHash(dispatcher, raw)
	has, err := l.db.Has(recordKey(final))
	if err != nil {
		return ids.Empty, err
	}
	if has {
		return ids.Empty, ErrDuplicateRegistration
	}

	rec := &types.EventRecord{
		Hash:        final,
		TrustID:     trustID,
		Dispatcher:  dispatcher,
		Description: description,
		State:       types.EventPending,
	}
	if err := l.putRecord(rec); err != nil {
		return ids.Empty, err
	}

	idx, err := l.trustEvents(trustID)
	if err != nil {
		return ids.Empty, err
	}
	v, err := codec.Marshal(&trustIndex{Hashes: append(idx, final)})
	if err != nil {
		return ids.Empty, err
	}
	if err := l.db.Put(trustKey(trustID), v); err != nil {
		return ids.Empty, err
	}
	return final, nil
}

// Fire transitions hash to fired. Only the registering dispatcher may
// fire it, exactly once.
func (l *Log) Fire(dispatcher common.Address, hash ids.ID) error {
	rec, err := l.record(hash)
	if err != nil {
		return err
	}
	if rec.Dispatcher != dispatcher {
		return ErrInvalidDispatcher
	}
	next, err := rec.State.Fire()
	if err != nil {
		return ErrDuplicateEvent
	}
	rec.State = next
	return l.putRecord(rec)
}

// IsFired never fails; unregistered hashes read as not fired.
func (l *Log) IsFired(hash ids.ID) (bool, error) {
	rec, err := l.record(hash)
	if errors.Is(err, ErrEventMissing) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return rec.State == types.EventFired, nil
}

// Record returns the full event record for hash.
func (l *Log) Record(hash ids.ID) (*types.EventRecord, error) {
	return l.record(hash)
}

// TrustEvents lists every event registered under trustID, in
// registration order.
func (l *Log) TrustEvents(trustID uint64) ([]ids.ID, error) {
	return l.trustEvents(trustID)
}

func (l *Log) record(hash ids.ID) (*types.EventRecord, error) {
	v, err := l.db.Get(recordKey(hash))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrEventMissing
	}
	if err != nil {
		return nil, err
	}
	var rec types.EventRecord
	if _, err := codec.Unmarshal(v, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (l *Log) putRecord(rec *types.EventRecord) error {
	v, err := codec.Marshal(rec)
	if err != nil {
		return err
	}
	return l.db.Put(recordKey(rec.Hash), v)
}

func (l *Log) trustEvents(trustID uint64) ([]ids.ID, error) {
	v, err := l.db.Get(trustKey(trustID))
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var idx trustIndex
	if _, err := codec.Unmarshal(v, &idx); err != nil {
		return nil, err
	}
	return idx.Hashes, nil
}
