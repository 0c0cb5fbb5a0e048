// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"errors"
	"sync"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ethereum/go-ethereum/common"

	"github.com/keyspace-labs/trustvm/asset"
	"github.com/keyspace-labs/trustvm/scribe"
	"github.com/keyspace-labs/trustvm/types"
	"github.com/keyspace-labs/trustvm/vault"
)

var (
	alice     = common.HexToAddress("0x0a00000000000000000000000000000000000000")
	bob       = common.HexToAddress("0x0b00000000000000000000000000000000000000")
	tokenAddr = common.HexToAddress("0xdd00000000000000000000000000000000000000")
)

type testToken struct {
	vaultAddr common.Address
	balances  map[common.Address]uint64

	failTransfers bool
}

func (t *testToken) Transfer(to common.Address, amount uint64) error {
	if t.failTransfers {
		return errors.New("token: transfer reverted")
	}
	return t.move(t.vaultAddr, to, amount)
}

func (t *testToken) TransferFrom(from, to common.Address, amount uint64) error {
	return t.move(from, to, amount)
}

func (t *testToken) move(from, to common.Address, amount uint64) error {
	if t.balances[from] < amount {
		return errors.New("token: insufficient funds")
	}
	t.balances[from] -= amount
	t.balances[to] += amount
	return nil
}

func (t *testToken) BalanceOf(addr common.Address) (uint64, error) {
	return t.balances[addr], nil
}

func newTestVM(t *testing.T, now *uint64) *VM {
	t.Helper()

	var cfg Config
	cfg.SetDefaults()
	vm := New(memdb.New(), cfg)
	vm.SetClock(func() uint64 { return *now })
	return vm
}

func (vm *VM) testToken(balances map[common.Address]uint64) *testToken {
	return &testToken{vaultAddr: vm.cfg.VaultAddress, balances: balances}
}

func TestEndToEndVesting(t *testing.T) {
	t.Parallel()

	now := uint64(1_000_000)
	vm := newTestVM(t, &now)

	_, rootKey, err := vm.CreateTrust("estate", alice)
	if err != nil {
		t.Fatal(err)
	}
	if err := vm.SetScribe(alice, rootKey, vm.cfg.AllowanceAddress, true); err != nil {
		t.Fatal(err)
	}

	srcKey, err := vm.CreateKey(alice, rootKey, "source", alice, false)
	if err != nil {
		t.Fatal(err)
	}
	recipKey, err := vm.CreateKey(alice, rootKey, "heir", bob, false)
	if err != nil {
		t.Fatal(err)
	}

	token := vm.testToken(map[common.Address]uint64{alice: 1000})
	usdc, err := vm.RegisterAsset(asset.ERC20, tokenAddr, 0, token)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := vm.Deposit(alice, srcKey, usdc, 100); err != nil {
		t.Fatal(err)
	}

	if err := vm.CreateAllowance(
		alice, rootKey, recipKey,
		[]types.Entitlement{{SourceKeyID: srcKey, Asset: usdc, Amount: 10}},
		nil, now, 100, 3,
	); err != nil {
		t.Fatal(err)
	}

	redeemed, err := vm.RedeemAllowance(bob, recipKey)
	if err != nil {
		t.Fatal(err)
	}
	if redeemed != 1 {
		t.Fatalf("redeemed %d tranches; expected 1", redeemed)
	}
	if bal, _ := vm.Balance(recipKey, usdc); bal != 10 {
		t.Fatalf("recipient balance %d; expected 10", bal)
	}

	now += 250
	redeemed, err = vm.RedeemAllowance(bob, recipKey)
	if err != nil {
		t.Fatal(err)
	}
	if redeemed != 2 {
		t.Fatalf("redeemed %d tranches; expected 2", redeemed)
	}
	if bal, _ := vm.Balance(recipKey, usdc); bal != 30 {
		t.Fatalf("recipient balance %d; expected 30", bal)
	}
	if _, err := vm.RedeemAllowance(bob, recipKey); !errors.Is(err, scribe.ErrExhausted) {
		t.Fatalf("redeem on exhausted schedule: %v; expected %v", err, scribe.ErrExhausted)
	}

	if _, err := vm.Withdraw(bob, recipKey, usdc, 30, bob); err != nil {
		t.Fatal(err)
	}
	if got := token.balances[bob]; got != 30 {
		t.Fatalf("bob token balance %d; expected 30", got)
	}
	if total, _ := vm.TotalSupply(usdc); total != 70 {
		t.Fatalf("total supply %d; expected 70", total)
	}
	if held, _ := token.BalanceOf(vm.cfg.VaultAddress); held != 70 {
		t.Fatalf("vault token balance %d; expected 70", held)
	}
}

func TestAtomicity(t *testing.T) {
	t.Parallel()

	now := uint64(0)
	vm := newTestVM(t, &now)

	_, rootKey, err := vm.CreateTrust("estate", alice)
	if err != nil {
		t.Fatal(err)
	}
	srcKey, err := vm.CreateKey(alice, rootKey, "source", alice, false)
	if err != nil {
		t.Fatal(err)
	}

	token := vm.testToken(map[common.Address]uint64{alice: 100})
	usdc, err := vm.RegisterAsset(asset.ERC20, tokenAddr, 0, token)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := vm.Deposit(alice, srcKey, usdc, 100); err != nil {
		t.Fatal(err)
	}

	// The vault debits the key before moving tokens out; when the token
	// transfer fails the abort must discard the debit.
	token.failTransfers = true
	if _, err := vm.Withdraw(alice, srcKey, usdc, 30, bob); err == nil {
		t.Fatal("withdraw expected to fail on reverted transfer")
	}
	if bal, _ := vm.Balance(srcKey, usdc); bal != 100 {
		t.Fatalf("key balance %d after aborted withdraw; expected 100", bal)
	}
	if supply, _ := vm.TotalSupply(usdc); supply != 100 {
		t.Fatalf("total supply %d after aborted withdraw; expected 100", supply)
	}
	if held, _ := token.BalanceOf(vm.cfg.VaultAddress); held != 100 {
		t.Fatalf("vault token balance %d after aborted withdraw; expected 100", held)
	}

	token.failTransfers = false
	if _, err := vm.Withdraw(alice, srcKey, usdc, 30, bob); err != nil {
		t.Fatal(err)
	}
	if bal, _ := vm.Balance(srcKey, usdc); bal != 70 {
		t.Fatalf("key balance %d after withdraw; expected 70", bal)
	}
}

func TestConcurrentCreateTrust(t *testing.T) {
	t.Parallel()

	now := uint64(0)
	vm := newTestVM(t, &now)

	const n = 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		trusts  = make(map[uint64]uint64, n)
		lastErr error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			trustID, rootKeyID, err := vm.CreateTrust("estate", alice)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				lastErr = err
				return
			}
			trusts[trustID] = rootKeyID
		}()
	}
	wg.Wait()
	if lastErr != nil {
		t.Fatal(lastErr)
	}
	if len(trusts) != n {
		t.Fatalf("created %d distinct trusts; expected %d", len(trusts), n)
	}

	roots := make(map[uint64]struct{}, n)
	for trustID, rootKeyID := range trusts {
		roots[rootKeyID] = struct{}{}
		insp, err := vm.InspectKey(rootKeyID)
		if err != nil {
			t.Fatal(err)
		}
		if !insp.Valid || !insp.IsRoot || insp.TrustID != trustID {
			t.Fatalf("unexpected inspection for trust %d: %+v", trustID, insp)
		}
	}
	if len(roots) != n {
		t.Fatalf("%d distinct root keys; expected %d", len(roots), n)
	}
}

func TestPublicService(t *testing.T) {
	t.Parallel()

	now := uint64(0)
	vm := newTestVM(t, &now)
	svc := &PublicService{vm: vm}

	var ping PingReply
	if err := svc.Ping(nil, nil, &ping); err != nil || !ping.Success {
		t.Fatalf("ping: %v success=%v", err, ping.Success)
	}

	var created CreateTrustReply
	if err := svc.CreateTrust(nil, &CreateTrustArgs{Name: "estate", Recipient: alice}, &created); err != nil {
		t.Fatal(err)
	}

	var insp InspectKeyReply
	if err := svc.InspectKey(nil, &InspectKeyArgs{KeyID: created.RootKeyID}, &insp); err != nil {
		t.Fatal(err)
	}
	if !insp.Valid || !insp.IsRoot || insp.TrustID != created.TrustID {
		t.Fatalf("unexpected inspection %+v", insp)
	}

	var policy PolicyReply
	if err := svc.Policy(nil, &PolicyArgs{TrusteeKeyID: 42}, &policy); err != nil {
		t.Fatal(err)
	}
	if policy.Exists {
		t.Fatal("policy reported for unconfigured trustee key")
	}
}

var _ vault.Token = (*testToken)(nil)
