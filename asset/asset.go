// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package asset derives canonical asset fingerprints.
//
// A fingerprint is the globally unique identifier for one underlying
// asset (standard + contract + discriminator). Any two descriptions of
// the same asset hash to the same ID; distinct assets never collide.
package asset

import (
	"encoding/binary"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// Standard tags the token interface an asset is custodied through.
type Standard uint8

const (
	Native Standard = iota // chain-native value, contract field zeroed
	ERC20
	ERC721
	ERC1155
)

func (s Standard) String() string {
	switch s {
	case Native:
		return "native"
	case ERC20:
		return "erc20"
	case ERC721:
		return "erc721"
	case ERC1155:
		return "erc1155"
	default:
		return "unknown"
	}
}

// Fingerprint derives the asset resource name for (standard, contract,
// discriminator). The discriminator distinguishes sub-assets within one
// contract (e.g. an ERC1155 token ID) and is zero for whole-contract
// assets.
func Fingerprint(standard Standard, contract common.Address, discriminator uint64) ids.ID {
	b := make([]byte, 1+common.AddressLength+8)
	b[0] = byte(standard)
	copy(b[1:], contract[:])
	binary.BigEndian.PutUint64(b[1+common.AddressLength:], discriminator)
	return ids.ID(sha3.Sum256(b))
}
