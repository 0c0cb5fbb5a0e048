// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package gate decides whether a calling scribe may mutate the ledger
// on behalf of a trust.
//
// The allow-list is closed by default: a trust's root key holder must
// opt every scribe in explicitly before that scribe's calls reach the
// ledger.
package gate

import (
	"encoding/binary"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ethereum/go-ethereum/common"

	"github.com/keyspace-labs/trustvm/registry"
)

// 0x0/ (trusted scribes)
//   -> [trust ID]
//     -> [scribe]

const (
	scribePrefix = 0x0

	delimiter = '/'
)

type Gate struct {
	db  database.Database
	reg *registry.Registry
}

func New(db database.Database, reg *registry.Registry) *Gate {
	return &Gate{db: db, reg: reg}
}

func scribeKey(trustID uint64, scribe common.Address) []byte {
	b := make([]byte, 2+8+1+common.AddressLength)
	b[0], b[1] = scribePrefix, delimiter
	binary.BigEndian.PutUint64(b[2:], trustID)
	b[10] = delimiter
	copy(b[11:], scribe[:])
	return b
}

// SetScribe opts scribe in to (or out of) mutating the ledger for the
// root key's trust. Only a root key holder may change the list.
func (g *Gate) SetScribe(holder common.Address, rootKeyID uint64, scribe common.Address, trusted bool) error {
	trust, err := g.reg.RequireRoot(holder, rootKeyID)
	if err != nil {
		return err
	}
	k := scribeKey(trust.ID, scribe)
	if !trusted {
		return g.db.Delete(k)
	}
	return g.db.Put(k, []byte{1})
}

// IsTrustedScribe reports whether scribe has been opted in for
// trustID.
func (g *Gate) IsTrustedScribe(scribe common.Address, trustID uint64) (bool, error) {
	return g.db.Has(scribeKey(trustID, scribe))
}

// RequireTrustedScribe fails unless scribe has been opted in for
// trustID.
func (g *Gate) RequireTrustedScribe(scribe common.Address, trustID uint64) error {
	ok, err := g.IsTrustedScribe(scribe, trustID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUntrustedScribe
	}
	return nil
}

// RequireKeyHolder fails unless holder possesses keyID directly or
// holds the root key of keyID's trust.
func (g *Gate) RequireKeyHolder(holder common.Address, keyID uint64) error {
	ok, err := g.reg.HasKeyOrTrustRoot(holder, keyID)
	if err != nil {
		return err
	}
	if !ok {
		return registry.ErrKeyNotHeld
	}
	return nil
}

// RequireRing delegates destination validation to the registry's
// fail-fast ring check.
func (g *Gate) RequireRing(trustID uint64, keys []uint64, allowRoot bool) error {
	return g.reg.ValidateKeyRing(trustID, keys, allowRoot)
}
