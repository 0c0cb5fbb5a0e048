// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/keyspace-labs/trustvm/client"
)

var setScribeCmd = &cobra.Command{
	Use:   "set-scribe [options] rootKeyID scribe trusted",
	Short: "Opts a scribe in or out for the trust",
	RunE:  setScribeFunc,
}

func setScribeFunc(cmd *cobra.Command, args []string) error {
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
	if !common.IsHexAddress(args[1]) {
		return fmt.Errorf("invalid scribe address %q", args[1])
	}
	trusted := args[2] == "true"

	cli := client.New(uri, requestTimeout)
	if err := cli.SetScribe(holder, rootKeyID, common.HexToAddress(args[1]), trusted); err != nil {
		return err
	}
	color.Green("scribe %s trusted=%v", args[1], trusted)
	return nil
}

var registerEventCmd = &cobra.Command{
	Use:   "register-event [options] trustID raw description",
	Short: "Registers a pending event scoped to the caller",
	RunE:  registerEventFunc,
}

func registerEventFunc(cmd *cobra.Command, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("expected exactly 3 arguments, got %d", len(args))
	}
	dispatcher, err := callerAddress()
	if err != nil {
		return err
	}
	trustID, err := parseUint64(args[0])
	if err != nil {
		return err
	}
	raw, err := ids.FromString(args[1])
	if err != nil {
		return err
	}

	cli := client.New(uri, requestTimeout)
	hash, err := cli.RegisterEvent(dispatcher, trustID, raw, args[2])
	if err != nil {
		return err
	}
	color.Green("registered event %s", hash)
	return nil
}

var fireEventCmd = &cobra.Command{
	Use:   "fire-event [options] hash",
	Short: "Fires a pending event",
	RunE:  fireEventFunc,
}

func fireEventFunc(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly 1 argument, got %d", len(args))
	}
	dispatcher, err := callerAddress()
	if err != nil {
		return err
	}
	hash, err := ids.FromString(args[0])
	if err != nil {
		return err
	}

	cli := client.New(uri, requestTimeout)
	if err := cli.FireEvent(dispatcher, hash); err != nil {
		return err
	}
	color.Green("fired event %s", hash)
	return nil
}
