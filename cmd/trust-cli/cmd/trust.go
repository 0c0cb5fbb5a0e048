// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/keyspace-labs/trustvm/client"
)

var bind bool

func init() {
	createKeyCmd.Flags().BoolVar(&bind, "bind", false, "soulbind the minted copy to the receiver")
}

var createTrustCmd = &cobra.Command{
	Use:   "create-trust [options] name recipient",
	Short: "Creates a new trust and mints its root key",
	RunE:  createTrustFunc,
}

func createTrustFunc(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expected exactly 2 arguments, got %d", len(args))
	}
	if !common.IsHexAddress(args[1]) {
		return fmt.Errorf("invalid recipient address %q", args[1])
	}

	cli := client.New(uri, requestTimeout)
	trustID, rootKeyID, err := cli.CreateTrust(args[0], common.HexToAddress(args[1]))
	if err != nil {
		return err
	}
	color.Green("created trust %d with root key %d", trustID, rootKeyID)
	return nil
}

var createKeyCmd = &cobra.Command{
	Use:   "create-key [options] rootKeyID name receiver",
	Short: "Mints a new key under the root key's trust",
	RunE:  createKeyFunc,
}

func createKeyFunc(cmd *cobra.Command, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("expected exactly 3 arguments, got %d", len(args))
	}
	holder, err := callerAddress()
	if err != nil {
		return err
	}
	rootKeyID, err := parseUint64(args[0])
	if err != nil {
		return err
	}
	if !common.IsHexAddress(args[2]) {
		return fmt.Errorf("invalid receiver address %q", args[2])
	}

	cli := client.New(uri, requestTimeout)
	keyID, err := cli.CreateKey(holder, rootKeyID, args[1], common.HexToAddress(args[2]), bind)
	if err != nil {
		return err
	}
	color.Green("created key %d (%s)", keyID, args[1])
	return nil
}
