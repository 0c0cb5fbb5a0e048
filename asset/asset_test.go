// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package asset

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestFingerprint(t *testing.T) {
	t.Parallel()

	c1 := common.HexToAddress("0x0100000000000000000000000000000000000000")
	c2 := common.HexToAddress("0x0200000000000000000000000000000000000000")

	base := Fingerprint(ERC20, c1, 0)
	if base != Fingerprint(ERC20, c1, 0) {
		t.Fatal("fingerprint not deterministic")
	}
	for i, other := range []struct {
		standard      Standard
		contract      common.Address
		discriminator uint64
	}{
		{ERC20, c2, 0},
		{ERC721, c1, 0},
		{ERC20, c1, 1},
		{Native, common.Address{}, 0},
	} {
		if base == Fingerprint(other.standard, other.contract, other.discriminator) {
			t.Fatalf("#%d: distinct assets collided", i)
		}
	}
}
