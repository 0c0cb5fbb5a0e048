// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"
	"strings"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/keyspace-labs/trustvm/client"
	"github.com/keyspace-labs/trustvm/types"
)

var eventHashes []string

func init() {
	setPolicyCmd.Flags().StringSliceVar(&eventHashes, "event", nil, "event hash gating activation (repeatable)")
	createAllowanceCmd.Flags().StringSliceVar(&eventHashes, "event", nil, "event hash gating activation (repeatable)")
}

func parseEvents() ([]ids.ID, error) {
	events := make([]ids.ID, 0, len(eventHashes))
	for _, h := range eventHashes {
		id, err := ids.FromString(h)
		if err != nil {
			return nil, err
		}
		events = append(events, id)
	}
	return events, nil
}

func parseKeyList(arg string) ([]uint64, error) {
	parts := strings.Split(arg, ",")
	keys := make([]uint64, 0, len(parts))
	for _, p := range parts {
		k, err := parseUint64(p)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

var setPolicyCmd = &cobra.Command{
	Use:   "set-policy [options] rootKeyID trusteeKeyID sourceKeyID beneficiaries",
	Short: "Configures a trustee policy",
	RunE:  setPolicyFunc,
}

func setPolicyFunc(cmd *cobra.Command, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("expected exactly 4 arguments, got %d", len(args))
	}
	holder, err := callerAddress()
	if err != nil {
		return err
	}
	rootKeyID, err := parseUint64(args[0])
	if err != nil {
		return err
	}
	trusteeKeyID, err := parseUint64(args[1])
	if err != nil {
		return err
	}
	sourceKeyID, err := parseUint64(args[2])
	if err != nil {
		return err
	}
	beneficiaries, err := parseKeyList(args[3])
	if err != nil {
		return err
	}
	events, err := parseEvents()
	if err != nil {
		return err
	}

	cli := client.New(uri, requestTimeout)
	if err := cli.SetPolicy(holder, rootKeyID, trusteeKeyID, sourceKeyID, beneficiaries, events); err != nil {
		return err
	}
	color.Green("policy set on trustee key %d", trusteeKeyID)
	return nil
}

var trusteeDistributeCmd = &cobra.Command{
	Use:   "trustee-distribute [options] trusteeKeyID asset destKeys amounts",
	Short: "Pays beneficiaries out of the policy's source key",
	RunE:  trusteeDistributeFunc,
}

func trusteeDistributeFunc(cmd *cobra.Command, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("expected exactly 4 arguments, got %d", len(args))
	}
	holder, err := callerAddress()
	if err != nil {
		return err
	}
	trusteeKeyID, err := parseUint64(args[0])
	if err != nil {
		return err
	}
	assetID, err := ids.FromString(args[1])
	if err != nil {
		return err
	}
	destKeys, err := parseKeyList(args[2])
	if err != nil {
		return err
	}
	amounts, err := parseKeyList(args[3])
	if err != nil {
		return err
	}

	cli := client.New(uri, requestTimeout)
	remaining, err := cli.TrusteeDistribute(holder, trusteeKeyID, assetID, destKeys, amounts)
	if err != nil {
		return err
	}
	color.Green("distributed; %d remaining on source", remaining)
	return nil
}

var distributeCmd = &cobra.Command{
	Use:   "distribute [options] sourceKeyID asset destKeys amounts",
	Short: "Ad-hoc key-to-keys payout",
	RunE:  distributeFunc,
}

func distributeFunc(cmd *cobra.Command, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("expected exactly 4 arguments, got %d", len(args))
	}
	holder, err := callerAddress()
	if err != nil {
		return err
	}
	sourceKeyID, err := parseUint64(args[0])
	if err != nil {
		return err
	}
	assetID, err := ids.FromString(args[1])
	if err != nil {
		return err
	}
	destKeys, err := parseKeyList(args[2])
	if err != nil {
		return err
	}
	amounts, err := parseKeyList(args[3])
	if err != nil {
		return err
	}

	cli := client.New(uri, requestTimeout)
	remaining, err := cli.Distribute(holder, sourceKeyID, assetID, destKeys, amounts)
	if err != nil {
		return err
	}
	color.Green("distributed; %d remaining on source", remaining)
	return nil
}

var (
	firstVestTime uint64
	vestInterval  uint64
	tranches      uint64
)

func init() {
	createAllowanceCmd.Flags().Uint64Var(&firstVestTime, "first-vest-time", 0, "unix time of the first tranche")
	createAllowanceCmd.Flags().Uint64Var(&vestInterval, "vest-interval", 0, "seconds between tranches")
	createAllowanceCmd.Flags().Uint64Var(&tranches, "tranches", 0, "number of tranches")
}

var createAllowanceCmd = &cobra.Command{
	Use:   "create-allowance [options] rootKeyID recipientKeyID sourceKeyID asset amount",
	Short: "Configures a vesting schedule for a recipient key",
	RunE:  createAllowanceFunc,
}

func createAllowanceFunc(cmd *cobra.Command, args []string) error {
	if len(args) != 5 {
		return fmt.Errorf("expected exactly 5 arguments, got %d", len(args))
	}
	holder, err := callerAddress()
	if err != nil {
		return err
	}
	rootKeyID, err := parseUint64(args[0])
	if err != nil {
		return err
	}
	recipientKeyID, err := parseUint64(args[1])
	if err != nil {
		return err
	}
	sourceKeyID, err := parseUint64(args[2])
	if err != nil {
		return err
	}
	assetID, err := ids.FromString(args[3])
	if err != nil {
		return err
	}
	amount, err := parseUint64(args[4])
	if err != nil {
		return err
	}
	events, err := parseEvents()
	if err != nil {
		return err
	}

	cli := client.New(uri, requestTimeout)
	if err := cli.CreateAllowance(
		holder, rootKeyID, recipientKeyID,
		[]types.Entitlement{{SourceKeyID: sourceKeyID, Asset: assetID, Amount: amount}},
		events, firstVestTime, vestInterval, tranches,
	); err != nil {
		return err
	}
	color.Green("allowance set on recipient key %d", recipientKeyID)
	return nil
}

var redeemCmd = &cobra.Command{
	Use:   "redeem [options] recipientKeyID",
	Short: "Redeems every currently vested tranche",
	RunE:  redeemFunc,
}

func redeemFunc(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly 1 argument, got %d", len(args))
	}
	holder, err := callerAddress()
	if err != nil {
		return err
	}
	recipientKeyID, err := parseUint64(args[0])
	if err != nil {
		return err
	}

	cli := client.New(uri, requestTimeout)
	redeemed, err := cli.RedeemAllowance(holder, recipientKeyID)
	if err != nil {
		return err
	}
	color.Green("redeemed %d tranches", redeemed)
	return nil
}

var allowanceCmd = &cobra.Command{
	Use:   "allowance [options] recipientKeyID",
	Short: "Reads the vesting schedule on a recipient key",
	RunE:  allowanceFunc,
}

func allowanceFunc(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly 1 argument, got %d", len(args))
	}
	recipientKeyID, err := parseUint64(args[0])
	if err != nil {
		return err
	}

	cli := client.New(uri, requestTimeout)
	view, exists, err := cli.Allowance(recipientKeyID)
	if err != nil {
		return err
	}
	if !exists {
		color.Yellow("no allowance on key %d", recipientKeyID)
		return nil
	}
	color.Green(
		"allowance on key %d: enabled=%v redeemable=%d remaining=%d nextVest=%d",
		recipientKeyID, view.Enabled, view.Redeemable,
		view.Allowance.RemainingTranches, view.Allowance.NextVestTime,
	)
	return nil
}
