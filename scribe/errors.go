// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scribe

import (
	"errors"
)

var (
	// Structural preconditions
	ErrPolicyExists       = errors.New("policy already exists for key")
	ErrPolicyMissing      = errors.New("no policy exists for key")
	ErrWrongRoot          = errors.New("policy is owned by a different root key")
	ErrEmptyBeneficiaries = errors.New("beneficiary set must be non-empty")
	ErrNoEntitlements     = errors.New("entitlement list must be non-empty")
	ErrSelfBeneficiary    = errors.New("source key cannot be a beneficiary")
	ErrSelfDistribution   = errors.New("source key cannot be a destination")
	ErrNotBeneficiary     = errors.New("destination key is not a beneficiary")
	ErrZeroAmount         = errors.New("amount must be non-zero")
	ErrZeroTranches       = errors.New("tranche count must be non-zero")
	ErrZeroInterval       = errors.New("vest interval must be non-zero")

	// Temporal policy state
	ErrMissingEvent = errors.New("required event has not fired")
	ErrTooEarly     = errors.New("no tranche is due yet")
	ErrUnaffordable = errors.New("tranche is due but source cannot afford it")
	ErrExhausted    = errors.New("allowance has no tranches remaining")
)
