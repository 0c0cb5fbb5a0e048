// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package version defines version variables.
package version

import "github.com/ava-labs/avalanchego/version"

// Version is the semantic version reported by the agent and the
// "version" subcommand.
var Version = version.NewDefaultVersion(0, 1, 0)
