// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// "trust-cli" implements trustvm client operation interface.
package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/keyspace-labs/trustvm/cmd/trust-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		color.Red("trust-cli failed: %v", err)
		os.Exit(1)
	}
	os.Exit(0)
}
