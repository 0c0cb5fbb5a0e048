// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package client implements the "trustvm" client SDK.
package client

import (
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/rpc"
	"github.com/ethereum/go-ethereum/common"

	"github.com/keyspace-labs/trustvm/scribe"
	"github.com/keyspace-labs/trustvm/types"
	"github.com/keyspace-labs/trustvm/vm"
)

// Client defines trustvm client operations.
type Client interface {
	// Pings the VM.
	Ping() (bool, error)

	// CreateTrust mints a new trust and its root key for recipient.
	CreateTrust(name string, recipient common.Address) (trustID uint64, rootKeyID uint64, err error)
	// CreateKey mints a new key under the root key's trust.
	CreateKey(holder common.Address, rootKeyID uint64, name string, receiver common.Address, bind bool) (uint64, error)
	// CopyKey mints another copy of an existing key to receiver.
	CopyKey(holder common.Address, rootKeyID, keyID uint64, receiver common.Address, bind bool) error
	// BurnKey destroys copies of a key held by target.
	BurnKey(holder common.Address, rootKeyID, keyID uint64, target common.Address, amount uint64) error
	// TransferKey moves copies of a key from holder to receiver.
	TransferKey(holder common.Address, keyID uint64, receiver common.Address, amount uint64) error
	// SoulbindKey raises the soulbound floor of target's copies.
	SoulbindKey(holder common.Address, rootKeyID, keyID uint64, target common.Address, amount uint64) error

	// SetScribe opts a scribe address in or out for the trust.
	SetScribe(holder common.Address, rootKeyID uint64, scribe common.Address, trusted bool) error
	// IsTrustedScribe reports whether the scribe is opted in.
	IsTrustedScribe(scribe common.Address, trustID uint64) (bool, error)
	// ScribeAddresses returns the built-in scribe and vault addresses.
	ScribeAddresses() (trustee, allowance, distributor, vault common.Address, err error)

	// RegisterEvent records a pending event scoped to the dispatcher.
	RegisterEvent(dispatcher common.Address, trustID uint64, raw ids.ID, description string) (ids.ID, error)
	// FireEvent transitions a pending event to fired.
	FireEvent(dispatcher common.Address, hash ids.ID) error
	// IsFired reports whether the event has fired.
	IsFired(hash ids.ID) (bool, error)
	// TrustEvents lists the events registered against the trust.
	TrustEvents(trustID uint64) ([]ids.ID, error)

	// SetPolicy configures a trustee policy.
	SetPolicy(caller common.Address, rootKeyID, trusteeKeyID, sourceKeyID uint64, beneficiaries []uint64, events []ids.ID) error
	// TrusteeDistribute pays beneficiaries out of the policy's source.
	TrusteeDistribute(caller common.Address, trusteeKeyID uint64, asset ids.ID, destKeys []uint64, amounts []uint64) (uint64, error)
	// RemovePolicy clears a trustee policy.
	RemovePolicy(caller common.Address, rootKeyID, trusteeKeyID uint64) error
	// Policy returns the trustee policy view, if configured.
	Policy(trusteeKeyID uint64) (view *scribe.TrusteeView, exists bool, err error)

	// CreateAllowance configures a vesting schedule for a recipient key.
	CreateAllowance(caller common.Address, rootKeyID, recipientKeyID uint64, entitlements []types.Entitlement, events []ids.ID, firstVestTime, vestInterval, tranches uint64) error
	// AddTranches extends an existing schedule.
	AddTranches(caller common.Address, rootKeyID, recipientKeyID, tranches uint64) error
	// RedeemAllowance redeems every currently vested tranche.
	RedeemAllowance(caller common.Address, recipientKeyID uint64) (uint64, error)
	// RemoveAllowance clears a vesting schedule.
	RemoveAllowance(caller common.Address, rootKeyID, recipientKeyID uint64) error
	// Allowance returns the schedule view, if configured.
	Allowance(recipientKeyID uint64) (view *scribe.AllowanceView, exists bool, err error)

	// Distribute is the ad-hoc key-to-keys payout.
	Distribute(caller common.Address, sourceKeyID uint64, asset ids.ID, destKeys []uint64, amounts []uint64) (uint64, error)

	// Deposit moves external tokens into custody against a key.
	Deposit(caller common.Address, keyID uint64, asset ids.ID, amount uint64) (uint64, error)
	// Withdraw moves custodied tokens back out to receiver.
	Withdraw(caller common.Address, keyID uint64, asset ids.ID, amount uint64, receiver common.Address) (uint64, error)

	// InspectKey returns the key's validity, name, trust, and ring.
	InspectKey(keyID uint64) (*vm.InspectKeyReply, error)
	// Holdings returns target's copy count and soulbound floor.
	Holdings(keyID uint64, holder common.Address) (amount uint64, soulbound uint64, err error)
	// Balance returns the (key, asset) ledger balance.
	Balance(keyID uint64, asset ids.ID) (uint64, error)
	// Assets lists every asset the key has ever held.
	Assets(keyID uint64) ([]ids.ID, error)
	// TotalSupply returns the custodied total for an asset.
	TotalSupply(asset ids.ID) (uint64, error)
}

// New creates a new client object.
func New(uri string, reqTimeout time.Duration) Client {
	req := rpc.NewEndpointRequester(
		uri,
		vm.PublicEndpoint,
		vm.Name,
		reqTimeout,
	)
	return &client{req: req}
}

type client struct {
	req rpc.EndpointRequester
}

func (cli *client) Ping() (bool, error) {
	resp := new(vm.PingReply)
	if err := cli.req.SendRequest("ping", nil, resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

func (cli *client) CreateTrust(name string, recipient common.Address) (uint64, uint64, error) {
	resp := new(vm.CreateTrustReply)
	if err := cli.req.SendRequest(
		"createTrust",
		&vm.CreateTrustArgs{Name: name, Recipient: recipient},
		resp,
	); err != nil {
		return 0, 0, err
	}
	return resp.TrustID, resp.RootKeyID, nil
}

func (cli *client) CreateKey(holder common.Address, rootKeyID uint64, name string, receiver common.Address, bind bool) (uint64, error) {
	resp := new(vm.CreateKeyReply)
	if err := cli.req.SendRequest(
		"createKey",
		&vm.CreateKeyArgs{
			Holder:    holder,
			RootKeyID: rootKeyID,
			Name:      name,
			Receiver:  receiver,
			Bind:      bind,
		},
		resp,
	); err != nil {
		return 0, err
	}
	return resp.KeyID, nil
}

func (cli *client) CopyKey(holder common.Address, rootKeyID, keyID uint64, receiver common.Address, bind bool) error {
	resp := new(vm.SuccessReply)
	return cli.req.SendRequest(
		"copyKey",
		&vm.CopyKeyArgs{
			Holder:    holder,
			RootKeyID: rootKeyID,
			KeyID:     keyID,
			Receiver:  receiver,
			Bind:      bind,
		},
		resp,
	)
}

func (cli *client) BurnKey(holder common.Address, rootKeyID, keyID uint64, target common.Address, amount uint64) error {
	resp := new(vm.SuccessReply)
	return cli.req.SendRequest(
		"burnKey",
		&vm.BurnKeyArgs{
			Holder:    holder,
			RootKeyID: rootKeyID,
			KeyID:     keyID,
			Target:    target,
			Amount:    amount,
		},
		resp,
	)
}

func (cli *client) TransferKey(holder common.Address, keyID uint64, receiver common.Address, amount uint64) error {
	resp := new(vm.SuccessReply)
	return cli.req.SendRequest(
		"transferKey",
		&vm.TransferKeyArgs{
			Holder:   holder,
			KeyID:    keyID,
			Receiver: receiver,
			Amount:   amount,
		},
		resp,
	)
}

func (cli *client) SoulbindKey(holder common.Address, rootKeyID, keyID uint64, target common.Address, amount uint64) error {
	resp := new(vm.SuccessReply)
	return cli.req.SendRequest(
		"soulbindKey",
		&vm.SoulbindKeyArgs{
			Holder:    holder,
			RootKeyID: rootKeyID,
			KeyID:     keyID,
			Target:    target,
			Amount:    amount,
		},
		resp,
	)
}

func (cli *client) SetScribe(holder common.Address, rootKeyID uint64, scribe common.Address, trusted bool) error {
	resp := new(vm.SuccessReply)
	return cli.req.SendRequest(
		"setScribe",
		&vm.SetScribeArgs{
			Holder:    holder,
			RootKeyID: rootKeyID,
			Scribe:    scribe,
			Trusted:   trusted,
		},
		resp,
	)
}

func (cli *client) IsTrustedScribe(scribe common.Address, trustID uint64) (bool, error) {
	resp := new(vm.IsTrustedScribeReply)
	if err := cli.req.SendRequest(
		"isTrustedScribe",
		&vm.IsTrustedScribeArgs{Scribe: scribe, TrustID: trustID},
		resp,
	); err != nil {
		return false, err
	}
	return resp.Trusted, nil
}

func (cli *client) ScribeAddresses() (common.Address, common.Address, common.Address, common.Address, error) {
	resp := new(vm.ScribeAddressesReply)
	if err := cli.req.SendRequest("scribeAddresses", nil, resp); err != nil {
		return common.Address{}, common.Address{}, common.Address{}, common.Address{}, err
	}
	return resp.Trustee, resp.Allowance, resp.Distributor, resp.Vault, nil
}

func (cli *client) RegisterEvent(dispatcher common.Address, trustID uint64, raw ids.ID, description string) (ids.ID, error) {
	resp := new(vm.RegisterEventReply)
	if err := cli.req.SendRequest(
		"registerEvent",
		&vm.RegisterEventArgs{
			Dispatcher:  dispatcher,
			TrustID:     trustID,
			Raw:         raw,
			Description: description,
		},
		resp,
	); err != nil {
		return ids.Empty, err
	}
	return resp.Hash, nil
}

func (cli *client) FireEvent(dispatcher common.Address, hash ids.ID) error {
	resp := new(vm.SuccessReply)
	return cli.req.SendRequest(
		"fireEvent",
		&vm.FireEventArgs{Dispatcher: dispatcher, Hash: hash},
		resp,
	)
}

func (cli *client) IsFired(hash ids.ID) (bool, error) {
	resp := new(vm.IsFiredReply)
	if err := cli.req.SendRequest("isFired", &vm.IsFiredArgs{Hash: hash}, resp); err != nil {
		return false, err
	}
	return resp.Fired, nil
}

func (cli *client) TrustEvents(trustID uint64) ([]ids.ID, error) {
	resp := new(vm.TrustEventsReply)
	if err := cli.req.SendRequest("trustEvents", &vm.TrustEventsArgs{TrustID: trustID}, resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

func (cli *client) SetPolicy(caller common.Address, rootKeyID, trusteeKeyID, sourceKeyID uint64, beneficiaries []uint64, events []ids.ID) error {
	resp := new(vm.SuccessReply)
	return cli.req.SendRequest(
		"setPolicy",
		&vm.SetPolicyArgs{
			Caller:        caller,
			RootKeyID:     rootKeyID,
			TrusteeKeyID:  trusteeKeyID,
			SourceKeyID:   sourceKeyID,
			Beneficiaries: beneficiaries,
			Events:        events,
		},
		resp,
	)
}

func (cli *client) TrusteeDistribute(caller common.Address, trusteeKeyID uint64, asset ids.ID, destKeys []uint64, amounts []uint64) (uint64, error) {
	resp := new(vm.DistributeReply)
	if err := cli.req.SendRequest(
		"trusteeDistribute",
		&vm.TrusteeDistributeArgs{
			Caller:       caller,
			TrusteeKeyID: trusteeKeyID,
			Asset:        asset,
			DestKeys:     destKeys,
			Amounts:      amounts,
		},
		resp,
	); err != nil {
		return 0, err
	}
	return resp.Remaining, nil
}

func (cli *client) RemovePolicy(caller common.Address, rootKeyID, trusteeKeyID uint64) error {
	resp := new(vm.SuccessReply)
	return cli.req.SendRequest(
		"removePolicy",
		&vm.RemovePolicyArgs{
			Caller:       caller,
			RootKeyID:    rootKeyID,
			TrusteeKeyID: trusteeKeyID,
		},
		resp,
	)
}

func (cli *client) Policy(trusteeKeyID uint64) (*scribe.TrusteeView, bool, error) {
	resp := new(vm.PolicyReply)
	if err := cli.req.SendRequest("policy", &vm.PolicyArgs{TrusteeKeyID: trusteeKeyID}, resp); err != nil {
		return nil, false, err
	}
	return resp.Policy, resp.Exists, nil
}

func (cli *client) CreateAllowance(caller common.Address, rootKeyID, recipientKeyID uint64, entitlements []types.Entitlement, events []ids.ID, firstVestTime, vestInterval, tranches uint64) error {
	resp := new(vm.SuccessReply)
	return cli.req.SendRequest(
		"createAllowance",
		&vm.CreateAllowanceArgs{
			Caller:         caller,
			RootKeyID:      rootKeyID,
			RecipientKeyID: recipientKeyID,
			Entitlements:   entitlements,
			Events:         events,
			FirstVestTime:  firstVestTime,
			VestInterval:   vestInterval,
			Tranches:       tranches,
		},
		resp,
	)
}

func (cli *client) AddTranches(caller common.Address, rootKeyID, recipientKeyID, tranches uint64) error {
	resp := new(vm.SuccessReply)
	return cli.req.SendRequest(
		"addTranches",
		&vm.AddTranchesArgs{
			Caller:         caller,
			RootKeyID:      rootKeyID,
			RecipientKeyID: recipientKeyID,
			Tranches:       tranches,
		},
		resp,
	)
}

func (cli *client) RedeemAllowance(caller common.Address, recipientKeyID uint64) (uint64, error) {
	resp := new(vm.RedeemAllowanceReply)
	if err := cli.req.SendRequest(
		"redeemAllowance",
		&vm.RedeemAllowanceArgs{Caller: caller, RecipientKeyID: recipientKeyID},
		resp,
	); err != nil {
		return 0, err
	}
	return resp.Redeemed, nil
}

func (cli *client) RemoveAllowance(caller common.Address, rootKeyID, recipientKeyID uint64) error {
	resp := new(vm.SuccessReply)
	return cli.req.SendRequest(
		"removeAllowance",
		&vm.RemoveAllowanceArgs{
			Caller:         caller,
			RootKeyID:      rootKeyID,
			RecipientKeyID: recipientKeyID,
		},
		resp,
	)
}

func (cli *client) Allowance(recipientKeyID uint64) (*scribe.AllowanceView, bool, error) {
	resp := new(vm.AllowanceReply)
	if err := cli.req.SendRequest("allowance", &vm.AllowanceArgs{RecipientKeyID: recipientKeyID}, resp); err != nil {
		return nil, false, err
	}
	return resp.Allowance, resp.Exists, nil
}

func (cli *client) Distribute(caller common.Address, sourceKeyID uint64, asset ids.ID, destKeys []uint64, amounts []uint64) (uint64, error) {
	resp := new(vm.DistributeReply)
	if err := cli.req.SendRequest(
		"distribute",
		&vm.DistributeArgs{
			Caller:      caller,
			SourceKeyID: sourceKeyID,
			Asset:       asset,
			DestKeys:    destKeys,
			Amounts:     amounts,
		},
		resp,
	); err != nil {
		return 0, err
	}
	return resp.Remaining, nil
}

func (cli *client) Deposit(caller common.Address, keyID uint64, asset ids.ID, amount uint64) (uint64, error) {
	resp := new(vm.BalanceReply)
	if err := cli.req.SendRequest(
		"deposit",
		&vm.DepositArgs{Caller: caller, KeyID: keyID, Asset: asset, Amount: amount},
		resp,
	); err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

func (cli *client) Withdraw(caller common.Address, keyID uint64, asset ids.ID, amount uint64, receiver common.Address) (uint64, error) {
	resp := new(vm.BalanceReply)
	if err := cli.req.SendRequest(
		"withdraw",
		&vm.WithdrawArgs{
			Caller:   caller,
			KeyID:    keyID,
			Asset:    asset,
			Amount:   amount,
			Receiver: receiver,
		},
		resp,
	); err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

func (cli *client) InspectKey(keyID uint64) (*vm.InspectKeyReply, error) {
	resp := new(vm.InspectKeyReply)
	if err := cli.req.SendRequest("inspectKey", &vm.InspectKeyArgs{KeyID: keyID}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (cli *client) Holdings(keyID uint64, holder common.Address) (uint64, uint64, error) {
	resp := new(vm.HoldingsReply)
	if err := cli.req.SendRequest(
		"holdings",
		&vm.HoldingsArgs{KeyID: keyID, Holder: holder},
		resp,
	); err != nil {
		return 0, 0, err
	}
	return resp.Amount, resp.Soulbound, nil
}

func (cli *client) Balance(keyID uint64, asset ids.ID) (uint64, error) {
	resp := new(vm.BalanceReply)
	if err := cli.req.SendRequest("balance", &vm.BalanceArgs{KeyID: keyID, Asset: asset}, resp); err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

func (cli *client) Assets(keyID uint64) ([]ids.ID, error) {
	resp := new(vm.AssetsReply)
	if err := cli.req.SendRequest("assets", &vm.AssetsArgs{KeyID: keyID}, resp); err != nil {
		return nil, err
	}
	return resp.Assets, nil
}

func (cli *client) TotalSupply(asset ids.ID) (uint64, error) {
	resp := new(vm.TotalSupplyReply)
	if err := cli.req.SendRequest("totalSupply", &vm.TotalSupplyArgs{Asset: asset}, resp); err != nil {
		return 0, err
	}
	return resp.Total, nil
}
