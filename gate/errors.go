// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gate

import (
	"errors"
)

var (
	ErrUntrustedScribe = errors.New("scribe is not trusted by the trust")
)
