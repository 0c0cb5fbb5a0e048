// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// "trust-cli" implements trustvm client operation interface.
package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

const requestTimeout = 30 * time.Second

var (
	uri    string
	caller string

	rootCmd = &cobra.Command{
		Use:        "trust-cli",
		Short:      "TrustVM CLI",
		SuggestFor: []string{"trust-cli", "trustcli", "trustctl"},
	}
)

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.AddCommand(
		createTrustCmd,
		createKeyCmd,
		keyCmd,
		balanceCmd,
		setScribeCmd,
		registerEventCmd,
		fireEventCmd,
		setPolicyCmd,
		trusteeDistributeCmd,
		createAllowanceCmd,
		redeemCmd,
		allowanceCmd,
		distributeCmd,
	)

	rootCmd.PersistentFlags().StringVar(
		&uri,
		"endpoint",
		"http://localhost:9652",
		"RPC endpoint for VM",
	)
	rootCmd.PersistentFlags().StringVar(
		&caller,
		"caller",
		"",
		"address the operation is issued as",
	)
}

func Execute() error {
	return rootCmd.Execute()
}

func callerAddress() (common.Address, error) {
	if !common.IsHexAddress(caller) {
		return common.Address{}, fmt.Errorf("invalid caller address %q", caller)
	}
	return common.HexToAddress(caller), nil
}

func parseUint64(arg string) (uint64, error) {
	return strconv.ParseUint(arg, 10, 64)
}
