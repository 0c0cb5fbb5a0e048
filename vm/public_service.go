// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"errors"
	"net/http"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	log "github.com/inconshreveable/log15"

	"github.com/keyspace-labs/trustvm/scribe"
	"github.com/keyspace-labs/trustvm/types"
)

const (
	// Name is the service namespace RPC methods are registered under.
	Name = "trustvm"

	PublicEndpoint = "/public"
)

type PublicService struct {
	vm *VM
}

// NewPublicHandler returns the JSON-RPC handler for the public API.
func NewPublicHandler(vm *VM) (http.Handler, error) {
	server := rpc.NewServer()
	server.RegisterCodec(json2.NewCodec(), "application/json")
	server.RegisterCodec(json2.NewCodec(), "application/json;charset=UTF-8")
	if err := server.RegisterService(&PublicService{vm: vm}, Name); err != nil {
		return nil, err
	}
	return server, nil
}

type PingReply struct {
	Success bool `serialize:"true" json:"success"`
}

func (svc *PublicService) Ping(_ *http.Request, _ *struct{}, reply *PingReply) (err error) {
	log.Info("ping")
	reply.Success = true
	return nil
}

type CreateTrustArgs struct {
	Name      string         `serialize:"true" json:"name"`
	Recipient common.Address `serialize:"true" json:"recipient"`
}

type CreateTrustReply struct {
	TrustID   uint64 `serialize:"true" json:"trustId"`
	RootKeyID uint64 `serialize:"true" json:"rootKeyId"`
}

func (svc *PublicService) CreateTrust(_ *http.Request, args *CreateTrustArgs, reply *CreateTrustReply) (err error) {
	reply.TrustID, reply.RootKeyID, err = svc.vm.CreateTrust(args.Name, args.Recipient)
	return err
}

type CreateKeyArgs struct {
	Holder    common.Address `serialize:"true" json:"holder"`
	RootKeyID uint64         `serialize:"true" json:"rootKeyId"`
	Name      string         `serialize:"true" json:"name"`
	Receiver  common.Address `serialize:"true" json:"receiver"`
	Bind      bool           `serialize:"true" json:"bind"`
}

type CreateKeyReply struct {
	KeyID uint64 `serialize:"true" json:"keyId"`
}

func (svc *PublicService) CreateKey(_ *http.Request, args *CreateKeyArgs, reply *CreateKeyReply) (err error) {
	reply.KeyID, err = svc.vm.CreateKey(args.Holder, args.RootKeyID, args.Name, args.Receiver, args.Bind)
	return err
}

type CopyKeyArgs struct {
	Holder    common.Address `serialize:"true" json:"holder"`
	RootKeyID uint64         `serialize:"true" json:"rootKeyId"`
	KeyID     uint64         `serialize:"true" json:"keyId"`
	Receiver  common.Address `serialize:"true" json:"receiver"`
	Bind      bool           `serialize:"true" json:"bind"`
}

type SuccessReply struct {
	Success bool `serialize:"true" json:"success"`
}

func (svc *PublicService) CopyKey(_ *http.Request, args *CopyKeyArgs, reply *SuccessReply) (err error) {
	if err := svc.vm.CopyKey(args.Holder, args.RootKeyID, args.KeyID, args.Receiver, args.Bind); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

type BurnKeyArgs struct {
	Holder    common.Address `serialize:"true" json:"holder"`
	RootKeyID uint64         `serialize:"true" json:"rootKeyId"`
	KeyID     uint64         `serialize:"true" json:"keyId"`
	Target    common.Address `serialize:"true" json:"target"`
	Amount    uint64         `serialize:"true" json:"amount"`
}

func (svc *PublicService) BurnKey(_ *http.Request, args *BurnKeyArgs, reply *SuccessReply) (err error) {
	if err := svc.vm.BurnKey(args.Holder, args.RootKeyID, args.KeyID, args.Target, args.Amount); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

type TransferKeyArgs struct {
	Holder   common.Address `serialize:"true" json:"holder"`
	KeyID    uint64         `serialize:"true" json:"keyId"`
	Receiver common.Address `serialize:"true" json:"receiver"`
	Amount   uint64         `serialize:"true" json:"amount"`
}

func (svc *PublicService) TransferKey(_ *http.Request, args *TransferKeyArgs, reply *SuccessReply) (err error) {
	if err := svc.vm.TransferKey(args.Holder, args.KeyID, args.Receiver, args.Amount); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

type SoulbindKeyArgs struct {
	Holder    common.Address `serialize:"true" json:"holder"`
	RootKeyID uint64         `serialize:"true" json:"rootKeyId"`
	KeyID     uint64         `serialize:"true" json:"keyId"`
	Target    common.Address `serialize:"true" json:"target"`
	Amount    uint64         `serialize:"true" json:"amount"`
}

func (svc *PublicService) SoulbindKey(_ *http.Request, args *SoulbindKeyArgs, reply *SuccessReply) (err error) {
	if err := svc.vm.SoulbindKey(args.Holder, args.RootKeyID, args.KeyID, args.Target, args.Amount); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

type SetScribeArgs struct {
	Holder    common.Address `serialize:"true" json:"holder"`
	RootKeyID uint64         `serialize:"true" json:"rootKeyId"`
	Scribe    common.Address `serialize:"true" json:"scribe"`
	Trusted   bool           `serialize:"true" json:"trusted"`
}

func (svc *PublicService) SetScribe(_ *http.Request, args *SetScribeArgs, reply *SuccessReply) (err error) {
	if err := svc.vm.SetScribe(args.Holder, args.RootKeyID, args.Scribe, args.Trusted); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

type RegisterEventArgs struct {
	Dispatcher  common.Address `serialize:"true" json:"dispatcher"`
	TrustID     uint64         `serialize:"true" json:"trustId"`
	Raw         ids.ID         `serialize:"true" json:"raw"`
	Description string         `serialize:"true" json:"description"`
}

type RegisterEventReply struct {
	Hash ids.ID `serialize:"true" json:"hash"`
}

func (svc *PublicService) RegisterEvent(_ *http.Request, args *RegisterEventArgs, reply *RegisterEventReply) (err error) {
	reply.Hash, err = svc.vm.RegisterEvent(args.Dispatcher, args.TrustID, args.Raw, args.Description)
	return err
}

type FireEventArgs struct {
	Dispatcher common.Address `serialize:"true" json:"dispatcher"`
	Hash       ids.ID         `serialize:"true" json:"hash"`
}

func (svc *PublicService) FireEvent(_ *http.Request, args *FireEventArgs, reply *SuccessReply) (err error) {
	if err := svc.vm.FireEvent(args.Dispatcher, args.Hash); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

type SetPolicyArgs struct {
	Caller        common.Address `serialize:"true" json:"caller"`
	RootKeyID     uint64         `serialize:"true" json:"rootKeyId"`
	TrusteeKeyID  uint64         `serialize:"true" json:"trusteeKeyId"`
	SourceKeyID   uint64         `serialize:"true" json:"sourceKeyId"`
	Beneficiaries []uint64       `serialize:"true" json:"beneficiaries"`
	Events        []ids.ID       `serialize:"true" json:"events"`
}

func (svc *PublicService) SetPolicy(_ *http.Request, args *SetPolicyArgs, reply *SuccessReply) (err error) {
	if err := svc.vm.SetPolicy(args.Caller, args.RootKeyID, args.TrusteeKeyID, args.SourceKeyID, args.Beneficiaries, args.Events); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

type TrusteeDistributeArgs struct {
	Caller       common.Address `serialize:"true" json:"caller"`
	TrusteeKeyID uint64         `serialize:"true" json:"trusteeKeyId"`
	Asset        ids.ID         `serialize:"true" json:"asset"`
	DestKeys     []uint64       `serialize:"true" json:"destKeys"`
	Amounts      []uint64       `serialize:"true" json:"amounts"`
}

type DistributeReply struct {
	Remaining uint64 `serialize:"true" json:"remaining"`
}

func (svc *PublicService) TrusteeDistribute(_ *http.Request, args *TrusteeDistributeArgs, reply *DistributeReply) (err error) {
	reply.Remaining, err = svc.vm.TrusteeDistribute(args.Caller, args.TrusteeKeyID, args.Asset, args.DestKeys, args.Amounts)
	return err
}

type RemovePolicyArgs struct {
	Caller       common.Address `serialize:"true" json:"caller"`
	RootKeyID    uint64         `serialize:"true" json:"rootKeyId"`
	TrusteeKeyID uint64         `serialize:"true" json:"trusteeKeyId"`
}

func (svc *PublicService) RemovePolicy(_ *http.Request, args *RemovePolicyArgs, reply *SuccessReply) (err error) {
	if err := svc.vm.RemovePolicy(args.Caller, args.RootKeyID, args.TrusteeKeyID); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

type CreateAllowanceArgs struct {
	Caller         common.Address      `serialize:"true" json:"caller"`
	RootKeyID      uint64              `serialize:"true" json:"rootKeyId"`
	RecipientKeyID uint64              `serialize:"true" json:"recipientKeyId"`
	Entitlements   []types.Entitlement `serialize:"true" json:"entitlements"`
	Events         []ids.ID            `serialize:"true" json:"events"`
	FirstVestTime  uint64              `serialize:"true" json:"firstVestTime"`
	VestInterval   uint64              `serialize:"true" json:"vestInterval"`
	Tranches       uint64              `serialize:"true" json:"tranches"`
}

func (svc *PublicService) CreateAllowance(_ *http.Request, args *CreateAllowanceArgs, reply *SuccessReply) (err error) {
	if err := svc.vm.CreateAllowance(
		args.Caller, args.RootKeyID, args.RecipientKeyID,
		args.Entitlements, args.Events,
		args.FirstVestTime, args.VestInterval, args.Tranches,
	); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

type AddTranchesArgs struct {
	Caller         common.Address `serialize:"true" json:"caller"`
	RootKeyID      uint64         `serialize:"true" json:"rootKeyId"`
	RecipientKeyID uint64         `serialize:"true" json:"recipientKeyId"`
	Tranches       uint64         `serialize:"true" json:"tranches"`
}

func (svc *PublicService) AddTranches(_ *http.Request, args *AddTranchesArgs, reply *SuccessReply) (err error) {
	if err := svc.vm.AddTranches(args.Caller, args.RootKeyID, args.RecipientKeyID, args.Tranches); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

type RedeemAllowanceArgs struct {
	Caller         common.Address `serialize:"true" json:"caller"`
	RecipientKeyID uint64         `serialize:"true" json:"recipientKeyId"`
}

type RedeemAllowanceReply struct {
	Redeemed uint64 `serialize:"true" json:"redeemed"`
}

func (svc *PublicService) RedeemAllowance(_ *http.Request, args *RedeemAllowanceArgs, reply *RedeemAllowanceReply) (err error) {
	reply.Redeemed, err = svc.vm.RedeemAllowance(args.Caller, args.RecipientKeyID)
	return err
}

type RemoveAllowanceArgs struct {
	Caller         common.Address `serialize:"true" json:"caller"`
	RootKeyID      uint64         `serialize:"true" json:"rootKeyId"`
	RecipientKeyID uint64         `serialize:"true" json:"recipientKeyId"`
}

func (svc *PublicService) RemoveAllowance(_ *http.Request, args *RemoveAllowanceArgs, reply *SuccessReply) (err error) {
	if err := svc.vm.RemoveAllowance(args.Caller, args.RootKeyID, args.RecipientKeyID); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

type DistributeArgs struct {
	Caller      common.Address `serialize:"true" json:"caller"`
	SourceKeyID uint64         `serialize:"true" json:"sourceKeyId"`
	Asset       ids.ID         `serialize:"true" json:"asset"`
	DestKeys    []uint64       `serialize:"true" json:"destKeys"`
	Amounts     []uint64       `serialize:"true" json:"amounts"`
}

func (svc *PublicService) Distribute(_ *http.Request, args *DistributeArgs, reply *DistributeReply) (err error) {
	reply.Remaining, err = svc.vm.Distribute(args.Caller, args.SourceKeyID, args.Asset, args.DestKeys, args.Amounts)
	return err
}

type DepositArgs struct {
	Caller common.Address `serialize:"true" json:"caller"`
	KeyID  uint64         `serialize:"true" json:"keyId"`
	Asset  ids.ID         `serialize:"true" json:"asset"`
	Amount uint64         `serialize:"true" json:"amount"`
}

type BalanceReply struct {
	Balance uint64 `serialize:"true" json:"balance"`
}

func (svc *PublicService) Deposit(_ *http.Request, args *DepositArgs, reply *BalanceReply) (err error) {
	reply.Balance, err = svc.vm.Deposit(args.Caller, args.KeyID, args.Asset, args.Amount)
	return err
}

type WithdrawArgs struct {
	Caller   common.Address `serialize:"true" json:"caller"`
	KeyID    uint64         `serialize:"true" json:"keyId"`
	Asset    ids.ID         `serialize:"true" json:"asset"`
	Amount   uint64         `serialize:"true" json:"amount"`
	Receiver common.Address `serialize:"true" json:"receiver"`
}

func (svc *PublicService) Withdraw(_ *http.Request, args *WithdrawArgs, reply *BalanceReply) (err error) {
	reply.Balance, err = svc.vm.Withdraw(args.Caller, args.KeyID, args.Asset, args.Amount, args.Receiver)
	return err
}

type InspectKeyArgs struct {
	KeyID uint64 `serialize:"true" json:"keyId"`
}

type InspectKeyReply struct {
	Valid   bool     `serialize:"true" json:"valid"`
	Name    string   `serialize:"true" json:"name"`
	TrustID uint64   `serialize:"true" json:"trustId"`
	IsRoot  bool     `serialize:"true" json:"isRoot"`
	Ring    []uint64 `serialize:"true" json:"ring"`
}

func (svc *PublicService) InspectKey(_ *http.Request, args *InspectKeyArgs, reply *InspectKeyReply) error {
	insp, err := svc.vm.InspectKey(args.KeyID)
	if err != nil {
		return err
	}
	reply.Valid = insp.Valid
	reply.Name = insp.Name
	reply.TrustID = insp.TrustID
	reply.IsRoot = insp.IsRoot
	reply.Ring = insp.Ring
	return nil
}

type HoldingsArgs struct {
	KeyID  uint64         `serialize:"true" json:"keyId"`
	Holder common.Address `serialize:"true" json:"holder"`
}

type HoldingsReply struct {
	Amount    uint64 `serialize:"true" json:"amount"`
	Soulbound uint64 `serialize:"true" json:"soulbound"`
}

func (svc *PublicService) Holdings(_ *http.Request, args *HoldingsArgs, reply *HoldingsReply) error {
	amount, err := svc.vm.Holdings(args.KeyID, args.Holder)
	if err != nil {
		return err
	}
	minimum, err := svc.vm.SoulboundMinimum(args.KeyID, args.Holder)
	if err != nil {
		return err
	}
	reply.Amount = amount
	reply.Soulbound = minimum
	return nil
}

type BalanceArgs struct {
	KeyID uint64 `serialize:"true" json:"keyId"`
	Asset ids.ID `serialize:"true" json:"asset"`
}

func (svc *PublicService) Balance(_ *http.Request, args *BalanceArgs, reply *BalanceReply) (err error) {
	reply.Balance, err = svc.vm.Balance(args.KeyID, args.Asset)
	return err
}

type AssetsArgs struct {
	KeyID uint64 `serialize:"true" json:"keyId"`
}

type AssetsReply struct {
	Assets []ids.ID `serialize:"true" json:"assets"`
}

func (svc *PublicService) Assets(_ *http.Request, args *AssetsArgs, reply *AssetsReply) (err error) {
	reply.Assets, err = svc.vm.Assets(args.KeyID)
	return err
}

type TotalSupplyArgs struct {
	Asset ids.ID `serialize:"true" json:"asset"`
}

type TotalSupplyReply struct {
	Total uint64 `serialize:"true" json:"total"`
}

func (svc *PublicService) TotalSupply(_ *http.Request, args *TotalSupplyArgs, reply *TotalSupplyReply) (err error) {
	reply.Total, err = svc.vm.TotalSupply(args.Asset)
	return err
}

type IsFiredArgs struct {
	Hash ids.ID `serialize:"true" json:"hash"`
}

type IsFiredReply struct {
	Fired bool `serialize:"true" json:"fired"`
}

func (svc *PublicService) IsFired(_ *http.Request, args *IsFiredArgs, reply *IsFiredReply) (err error) {
	reply.Fired, err = svc.vm.IsFired(args.Hash)
	return err
}

type TrustEventsArgs struct {
	TrustID uint64 `serialize:"true" json:"trustId"`
}

type TrustEventsReply struct {
	Events []ids.ID `serialize:"true" json:"events"`
}

func (svc *PublicService) TrustEvents(_ *http.Request, args *TrustEventsArgs, reply *TrustEventsReply) (err error) {
	reply.Events, err = svc.vm.TrustEvents(args.TrustID)
	return err
}

type PolicyArgs struct {
	TrusteeKeyID uint64 `serialize:"true" json:"trusteeKeyId"`
}

type PolicyReply struct {
	Policy  *scribe.TrusteeView `serialize:"true" json:"policy"`
	Exists  bool                `serialize:"true" json:"exists"`
	Enabled bool                `serialize:"true" json:"enabled"`
}

func (svc *PublicService) Policy(_ *http.Request, args *PolicyArgs, reply *PolicyReply) error {
	view, err := svc.vm.Policy(args.TrusteeKeyID)
	if err != nil {
		if errors.Is(err, scribe.ErrPolicyMissing) {
			return nil
		}
		return err
	}
	reply.Policy = view
	reply.Exists = true
	reply.Enabled = view.Enabled
	return nil
}

type AllowanceArgs struct {
	RecipientKeyID uint64 `serialize:"true" json:"recipientKeyId"`
}

type AllowanceReply struct {
	Allowance  *scribe.AllowanceView `serialize:"true" json:"allowance"`
	Exists     bool                  `serialize:"true" json:"exists"`
	Enabled    bool                  `serialize:"true" json:"enabled"`
	Redeemable uint64                `serialize:"true" json:"redeemable"`
}

func (svc *PublicService) Allowance(_ *http.Request, args *AllowanceArgs, reply *AllowanceReply) error {
	view, err := svc.vm.Allowance(args.RecipientKeyID)
	if err != nil {
		if errors.Is(err, scribe.ErrPolicyMissing) {
			return nil
		}
		return err
	}
	reply.Allowance = view
	reply.Exists = true
	reply.Enabled = view.Enabled
	reply.Redeemable = view.Redeemable
	return nil
}

type IsTrustedScribeArgs struct {
	Scribe  common.Address `serialize:"true" json:"scribe"`
	TrustID uint64         `serialize:"true" json:"trustId"`
}

type IsTrustedScribeReply struct {
	Trusted bool `serialize:"true" json:"trusted"`
}

func (svc *PublicService) IsTrustedScribe(_ *http.Request, args *IsTrustedScribeArgs, reply *IsTrustedScribeReply) (err error) {
	reply.Trusted, err = svc.vm.IsTrustedScribe(args.Scribe, args.TrustID)
	return err
}

type ScribeAddressesReply struct {
	Trustee     common.Address `serialize:"true" json:"trustee"`
	Allowance   common.Address `serialize:"true" json:"allowance"`
	Distributor common.Address `serialize:"true" json:"distributor"`
	Vault       common.Address `serialize:"true" json:"vault"`
}

func (svc *PublicService) ScribeAddresses(_ *http.Request, _ *struct{}, reply *ScribeAddressesReply) error {
	reply.Trustee, reply.Allowance, reply.Distributor, reply.Vault = svc.vm.ScribeAddresses()
	return nil
}
