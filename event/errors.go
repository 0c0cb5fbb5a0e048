// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package event

import (
	"errors"
)

var (
	ErrDuplicateRegistration = errors.New("event already registered")
	ErrEventMissing          = errors.New("event not registered")
	ErrInvalidDispatcher     = errors.New("caller is not the registered dispatcher")
	ErrDuplicateEvent        = errors.New("event already fired")
)
