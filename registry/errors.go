// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"errors"
)

var (
	// Preconditions
	ErrTrustMissing     = errors.New("trust does not exist")
	ErrKeyMissing       = errors.New("key does not exist")
	ErrKeyNotHeld       = errors.New("caller does not hold key")
	ErrKeyNotRoot       = errors.New("key is not a root key")
	ErrForeignKey       = errors.New("key belongs to a different trust")
	ErrRootOnRing       = errors.New("root key not allowed on ring")
	ErrZeroAmount       = errors.New("amount must be non-zero")
	ErrInsufficientKeys = errors.New("holder has insufficient key copies")
	ErrSoulbound        = errors.New("key copies are soulbound to holder")
	ErrBindDecrease     = errors.New("soulbound minimum cannot decrease")

	// Invariants
	ErrRootNeverMinted = errors.New("root key was never minted")
)
