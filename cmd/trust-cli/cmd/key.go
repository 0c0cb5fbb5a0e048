// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/keyspace-labs/trustvm/client"
)

var keyCmd = &cobra.Command{
	Use:   "key [options] keyID",
	Short: "Reads key info",
	RunE:  keyFunc,
}

func keyFunc(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly 1 argument, got %d", len(args))
	}
	keyID, err := parseUint64(args[0])
	if err != nil {
		return err
	}

	cli := client.New(uri, requestTimeout)
	info, err := cli.InspectKey(keyID)
	if err != nil {
		return err
	}
	if !info.Valid {
		color.Yellow("key %d is not allocated", keyID)
		return nil
	}
	color.Green("key %d (%s) trust=%d root=%v", keyID, info.Name, info.TrustID, info.IsRoot)
	if info.IsRoot {
		color.Blue("ring: %v", info.Ring)
	}
	return nil
}

var balanceCmd = &cobra.Command{
	Use:   "balance [options] keyID [asset]",
	Short: "Reads key balances",
	RunE:  balanceFunc,
}

func balanceFunc(cmd *cobra.Command, args []string) error {
	if len(args) != 1 && len(args) != 2 {
		return fmt.Errorf("expected 1 or 2 arguments, got %d", len(args))
	}
	keyID, err := parseUint64(args[0])
	if err != nil {
		return err
	}

	cli := client.New(uri, requestTimeout)
	if len(args) == 2 {
		assetID, err := ids.FromString(args[1])
		if err != nil {
			return err
		}
		bal, err := cli.Balance(keyID, assetID)
		if err != nil {
			return err
		}
		color.Green("key %d holds %d of %s", keyID, bal, assetID)
		return nil
	}

	assets, err := cli.Assets(keyID)
	if err != nil {
		return err
	}
	for _, assetID := range assets {
		bal, err := cli.Balance(keyID, assetID)
		if err != nil {
			return err
		}
		color.Green("key %d holds %d of %s", keyID, bal, assetID)
	}
	return nil
}
