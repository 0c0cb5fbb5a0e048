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
)

// Distributor is the stateless scribe: any key holder may fan funds
// out from their key to other keys on the same trust, with no stored
// policy. Moving from the root key requires holding the root key
// itself.
type Distributor struct {
	deps
}

func NewDistributor(addr common.Address, db database.Database, reg *registry.Registry, led *ledger.Ledger, events *event.Log, g *gate.Gate) *Distributor {
	return &Distributor{deps{addr: addr, db: db, reg: reg, led: led, events: events, gate: g}}
}

// Address returns the scribe's caller identity.
func (d *Distributor) Address() common.Address {
	return d.addr
}

// Distribute moves amounts of asset from sourceKeyID to destKeys. The
// caller must hold the source key directly or hold the trust root;
// destinations may include the root key but never the source itself.
func (d *Distributor) Distribute(caller common.Address, sourceKeyID uint64, asset ids.ID, destKeys []uint64, amounts []uint64) (uint64, error) {
	trustID, err := d.reg.TrustOf(sourceKeyID)
	if err != nil {
		return 0, err
	}
	if err := d.gate.RequireTrustedScribe(d.addr, trustID); err != nil {
		return 0, err
	}
	if err := d.gate.RequireKeyHolder(caller, sourceKeyID); err != nil {
		return 0, err
	}
	if err := d.gate.RequireRing(trustID, destKeys, true); err != nil {
		return 0, err
	}
	for _, dest := range destKeys {
		if dest == sourceKeyID {
			return 0, ErrSelfDistribution
		}
	}
	return d.led.Distribute(d.addr, asset, sourceKeyID, destKeys, amounts)
}
