// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package scribe implements the policy contracts that gate ledger
// mutation behind key possession and event activation.
//
// Every scribe carries its own caller identity and must be opted in
// with the gate by a trust's root key holder before any of its calls
// reach the ledger for that trust.
package scribe

import (
	"encoding/binary"
	"errors"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"

	"github.com/keyspace-labs/trustvm/codec"
	"github.com/keyspace-labs/trustvm/event"
	"github.com/keyspace-labs/trustvm/gate"
	"github.com/keyspace-labs/trustvm/ledger"
	"github.com/keyspace-labs/trustvm/registry"
	"github.com/keyspace-labs/trustvm/types"
)

// 0x0/ (trustee policies)
//   -> [trustee key ID]
// 0x1/ (allowances)
//   -> [recipient key ID]

const (
	trusteePrefix   = 0x0
	allowancePrefix = 0x1

	delimiter = '/'
)

// deps are the collaborators every scribe shares.
type deps struct {
	addr   common.Address
	db     database.Database
	reg    *registry.Registry
	led    *ledger.Ledger
	events *event.Log
	gate   *gate.Gate
}

func policyKey(prefix byte, keyID uint64) []byte {
	b := make([]byte, 2+8)
	b[0], b[1] = prefix, delimiter
	binary.BigEndian.PutUint64(b[2:], keyID)
	return b
}

func (d *deps) getRecord(prefix byte, keyID uint64, out interface{}) (bool, error) {
	v, err := d.db.Get(policyKey(prefix, keyID))
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := codec.Unmarshal(v, out); err != nil {
		return false, err
	}
	return true, nil
}

func (d *deps) putRecord(prefix byte, keyID uint64, rec interface{}) error {
	v, err := codec.Marshal(rec)
	if err != nil {
		return err
	}
	return d.db.Put(policyKey(prefix, keyID), v)
}

func (d *deps) deleteRecord(prefix byte, keyID uint64) error {
	return d.db.Delete(policyKey(prefix, keyID))
}

// allFired reports whether every required event has fired.
func (d *deps) allFired(events []ids.ID) (bool, error) {
	for _, h := range events {
		fired, err := d.events.IsFired(h)
		if err != nil {
			return false, err
		}
		if !fired {
			return false, nil
		}
	}
	return true, nil
}

// computeEnabled returns the effective policy state given the event
// log, without persisting anything. Mutating paths persist the latch;
// read-only views report the computed value so front ends can preview
// activation for free.
func (d *deps) computeEnabled(state types.PolicyState, events []ids.ID) (bool, error) {
	if state == types.PolicyActive {
		return true, nil
	}
	return d.allFired(events)
}

// requireEnabled latches the policy state to Active if all required
// events have fired, failing ErrMissingEvent otherwise. The returned
// bool reports whether the caller must persist the record.
func (d *deps) requireEnabled(state types.PolicyState, events []ids.ID) (types.PolicyState, bool, error) {
	if state == types.PolicyActive {
		return state, false, nil
	}
	ok, err := d.allFired(events)
	if err != nil {
		return state, false, err
	}
	if !ok {
		return state, false, ErrMissingEvent
	}
	return state.Activate(), true, nil
}
