// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"context"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/fatih/color"
)

const pollInterval = 500 * time.Millisecond

// PollEvent polls an event until it fires or the context is done.
func PollEvent(ctx context.Context, cli Client, hash ids.ID) (fired bool, err error) {
	for ctx.Err() == nil {
		fired, err := cli.IsFired(hash)
		if err != nil {
			color.Red("polling event %s failed: %v", hash, err)
			return false, err
		}
		if fired {
			color.Green("event %s fired", hash)
			return true, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
	return false, ctx.Err()
}

// PollRedeemable polls an allowance until at least one tranche is
// redeemable or the context is done.
func PollRedeemable(ctx context.Context, cli Client, recipientKeyID uint64) (uint64, error) {
	for ctx.Err() == nil {
		view, exists, err := cli.Allowance(recipientKeyID)
		if err != nil {
			color.Red("polling allowance on key %d failed: %v", recipientKeyID, err)
			return 0, err
		}
		if exists && view.Redeemable > 0 {
			color.Green("key %d has %d redeemable tranches", recipientKeyID, view.Redeemable)
			return view.Redeemable, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
	return 0, ctx.Err()
}
