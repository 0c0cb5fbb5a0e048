// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/database/versiondb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/inconshreveable/log15"

	"github.com/keyspace-labs/trustvm/asset"
	"github.com/keyspace-labs/trustvm/event"
	"github.com/keyspace-labs/trustvm/gate"
	"github.com/keyspace-labs/trustvm/ledger"
	"github.com/keyspace-labs/trustvm/registry"
	"github.com/keyspace-labs/trustvm/scribe"
	"github.com/keyspace-labs/trustvm/types"
	"github.com/keyspace-labs/trustvm/vault"
)

var (
	registryBucket = []byte{0x0}
	ledgerBucket   = []byte{0x1}
	eventBucket    = []byte{0x2}
	gateBucket     = []byte{0x3}
	scribeBucket   = []byte{0x4}
)

// Clock supplies the timestamp used for vesting math. Production wiring
// uses wall time; tests substitute a fixed source.
type Clock func() uint64

// VM hosts the registry, ledger, event log, gate, and scribes over a single
// versioned database. Every mutating call is atomic: it commits on success
// and aborts on error, discarding any partial writes. Calls arrive on
// arbitrary goroutines (one per RPC request), so the VM serializes them
// itself; registered token contracts interact with the vault and ledger
// inside the running frame and must not call back into the VM surface.
type VM struct {
	cfg Config

	// lock serializes mutating calls so one caller's Abort can never
	// discard another's pending writes; reads share it.
	lock sync.RWMutex

	baseDB database.Database
	db     *versiondb.Database

	registry    *registry.Registry
	ledger      *ledger.Ledger
	events      *event.Log
	gate        *gate.Gate
	trustee     *scribe.Trustee
	allowance   *scribe.AllowanceScribe
	distributor *scribe.Distributor
	vault       *vault.Vault

	clock Clock
}

func New(db database.Database, cfg Config) *VM {
	vdb := versiondb.New(db)
	reg := registry.New(prefixdb.New(registryBucket, vdb))
	led := ledger.New(prefixdb.New(ledgerBucket, vdb))
	events := event.New(prefixdb.New(eventBucket, vdb))
	g := gate.New(prefixdb.New(gateBucket, vdb), reg)
	sdb := prefixdb.New(scribeBucket, vdb)
	return &VM{
		cfg:         cfg,
		baseDB:      db,
		db:          vdb,
		registry:    reg,
		ledger:      led,
		events:      events,
		gate:        g,
		trustee:     scribe.NewTrustee(cfg.TrusteeAddress, sdb, reg, led, events, g),
		allowance:   scribe.NewAllowance(cfg.AllowanceAddress, sdb, reg, led, events, g),
		distributor: scribe.NewDistributor(cfg.DistributorAddress, sdb, reg, led, events, g),
		vault:       vault.New(cfg.VaultAddress, led, g),
		clock:       func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// SetClock replaces the timestamp source. Must be called before use.
func (vm *VM) SetClock(clock Clock) { vm.clock = clock }

func (vm *VM) Close() error { return vm.baseDB.Close() }

// run executes op atomically under the write lock, committing on success
// and aborting on error. Holding the lock for the full frame gives every
// call the all-or-nothing semantics of a serialized transaction.
func (vm *VM) run(op func() error) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	if err := op(); err != nil {
		vm.db.Abort()
		return err
	}
	return vm.db.Commit()
}

// Registry operations

func (vm *VM) CreateTrust(name string, recipient common.Address) (trustID uint64, rootKeyID uint64, err error) {
	err = vm.run(func() (rerr error) {
		trustID, rootKeyID, rerr = vm.registry.CreateTrust(name, recipient)
		return rerr
	})
	if err != nil {
		return 0, 0, err
	}
	log.Info("trust created", "trust", trustID, "rootKey", rootKeyID, "recipient", recipient.Hex())
	return trustID, rootKeyID, nil
}

func (vm *VM) CreateKey(holder common.Address, rootKeyID uint64, name string, receiver common.Address, bind bool) (keyID uint64, err error) {
	err = vm.run(func() (rerr error) {
		keyID, rerr = vm.registry.CreateKey(holder, rootKeyID, name, receiver, bind)
		return rerr
	})
	if err != nil {
		return 0, err
	}
	log.Info("key created", "key", keyID, "name", name, "receiver", receiver.Hex(), "bind", bind)
	return keyID, nil
}

func (vm *VM) CopyKey(holder common.Address, rootKeyID uint64, keyID uint64, receiver common.Address, bind bool) error {
	return vm.run(func() error {
		return vm.registry.CopyKey(holder, rootKeyID, keyID, receiver, bind)
	})
}

func (vm *VM) BurnKey(holder common.Address, rootKeyID uint64, keyID uint64, target common.Address, amount uint64) error {
	return vm.run(func() error {
		return vm.registry.BurnKey(holder, rootKeyID, keyID, target, amount)
	})
}

func (vm *VM) TransferKey(holder common.Address, keyID uint64, receiver common.Address, amount uint64) error {
	return vm.run(func() error {
		return vm.registry.TransferKey(holder, keyID, receiver, amount)
	})
}

func (vm *VM) SoulbindKey(holder common.Address, rootKeyID uint64, keyID uint64, target common.Address, amount uint64) error {
	return vm.run(func() error {
		return vm.registry.SoulbindKey(holder, rootKeyID, keyID, target, amount)
	})
}

// Gate operations

func (vm *VM) SetScribe(holder common.Address, rootKeyID uint64, scribe common.Address, trusted bool) error {
	err := vm.run(func() error {
		return vm.gate.SetScribe(holder, rootKeyID, scribe, trusted)
	})
	if err != nil {
		return err
	}
	log.Info("scribe set", "scribe", scribe.Hex(), "trusted", trusted)
	return nil
}

// Event operations

func (vm *VM) RegisterEvent(dispatcher common.Address, trustID uint64, raw ids.ID, description string) (final ids.ID, err error) {
	err = vm.run(func() (rerr error) {
		final, rerr = vm.events.Register(dispatcher, trustID, raw, description)
		return rerr
	})
	if err != nil {
		return ids.Empty, err
	}
	log.Info("event registered", "event", final, "trust", trustID)
	return final, nil
}

func (vm *VM) FireEvent(dispatcher common.Address, hash ids.ID) error {
	err := vm.run(func() error {
		return vm.events.Fire(dispatcher, hash)
	})
	if err != nil {
		return err
	}
	log.Info("event fired", "event", hash)
	return nil
}

// Trustee operations

func (vm *VM) SetPolicy(caller common.Address, rootKeyID uint64, trusteeKeyID uint64, sourceKeyID uint64, beneficiaries []uint64, events []ids.ID) error {
	return vm.run(func() error {
		return vm.trustee.SetPolicy(caller, rootKeyID, trusteeKeyID, sourceKeyID, beneficiaries, events)
	})
}

func (vm *VM) TrusteeDistribute(caller common.Address, trusteeKeyID uint64, assetID ids.ID, destKeys []uint64, amounts []uint64) (remaining uint64, err error) {
	err = vm.run(func() (rerr error) {
		remaining, rerr = vm.trustee.Distribute(caller, trusteeKeyID, assetID, destKeys, amounts)
		return rerr
	})
	return remaining, err
}

func (vm *VM) RemovePolicy(caller common.Address, rootKeyID uint64, trusteeKeyID uint64) error {
	return vm.run(func() error {
		return vm.trustee.RemovePolicy(caller, rootKeyID, trusteeKeyID)
	})
}

// Allowance operations

func (vm *VM) CreateAllowance(
	caller common.Address,
	rootKeyID uint64,
	recipientKeyID uint64,
	entitlements []types.Entitlement,
	events []ids.ID,
	firstVestTime uint64,
	vestInterval uint64,
	tranches uint64,
) error {
	return vm.run(func() error {
		return vm.allowance.CreateAllowance(caller, rootKeyID, recipientKeyID, entitlements, events, firstVestTime, vestInterval, tranches)
	})
}

func (vm *VM) AddTranches(caller common.Address, rootKeyID uint64, recipientKeyID uint64, tranches uint64) error {
	return vm.run(func() error {
		return vm.allowance.AddTranches(caller, rootKeyID, recipientKeyID, tranches)
	})
}

func (vm *VM) RedeemAllowance(caller common.Address, recipientKeyID uint64) (redeemed uint64, err error) {
	err = vm.run(func() (rerr error) {
		redeemed, rerr = vm.allowance.RedeemAllowance(caller, recipientKeyID, vm.clock())
		return rerr
	})
	if err != nil {
		return 0, err
	}
	log.Info("allowance redeemed", "recipientKey", recipientKeyID, "tranches", redeemed)
	return redeemed, nil
}

func (vm *VM) RemoveAllowance(caller common.Address, rootKeyID uint64, recipientKeyID uint64) error {
	return vm.run(func() error {
		return vm.allowance.RemoveAllowance(caller, rootKeyID, recipientKeyID)
	})
}

// Distributor operations

func (vm *VM) Distribute(caller common.Address, sourceKeyID uint64, assetID ids.ID, destKeys []uint64, amounts []uint64) (remaining uint64, err error) {
	err = vm.run(func() (rerr error) {
		remaining, rerr = vm.distributor.Distribute(caller, sourceKeyID, assetID, destKeys, amounts)
		return rerr
	})
	return remaining, err
}

// Vault operations

func (vm *VM) RegisterAsset(standard asset.Standard, contract common.Address, discriminator uint64, token vault.Token) (ids.ID, error) {
	var assetID ids.ID
	err := vm.run(func() (rerr error) {
		assetID, rerr = vm.vault.RegisterAsset(standard, contract, discriminator, token)
		return rerr
	})
	if err != nil {
		return ids.Empty, err
	}
	log.Info("asset registered", "asset", assetID, "contract", contract.Hex())
	return assetID, nil
}

func (vm *VM) Deposit(caller common.Address, keyID uint64, assetID ids.ID, amount uint64) (balance uint64, err error) {
	err = vm.run(func() (rerr error) {
		balance, rerr = vm.vault.Deposit(caller, keyID, assetID, amount)
		return rerr
	})
	return balance, err
}

func (vm *VM) Withdraw(caller common.Address, keyID uint64, assetID ids.ID, amount uint64, receiver common.Address) (balance uint64, err error) {
	err = vm.run(func() (rerr error) {
		balance, rerr = vm.vault.Withdraw(caller, keyID, assetID, amount, receiver)
		return rerr
	})
	return balance, err
}
