// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"errors"
)

var (
	ErrOverdraft      = errors.New("withdrawal exceeds balance")
	ErrLengthMismatch = errors.New("destination and amount lengths differ")
	ErrZeroAmount     = errors.New("amount must be non-zero")

	// ErrTotalDiverged indicates per-key balances and the asset-wide
	// total no longer agree. This is a fatal fault, not a caller error.
	ErrTotalDiverged = errors.New("asset total diverged from balances")
)
