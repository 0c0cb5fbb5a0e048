// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import (
	"errors"
)

var (
	ErrAssetExists  = errors.New("asset already registered")
	ErrAssetMissing = errors.New("asset not registered with vault")
	ErrZeroAmount   = errors.New("amount must be non-zero")

	// ErrConservation means the ledger's asset total and the vault's
	// actual token balance disagree after an external call: either a
	// re-entrancy breach or a non-conforming token contract. Fatal.
	ErrConservation = errors.New("ledger total diverged from vault holdings")
)
