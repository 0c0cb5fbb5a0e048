// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type Config struct {
	HTTPAddr       string        `serialize:"true" json:"httpAddr"`
	RequestTimeout time.Duration `serialize:"true" json:"requestTimeout"`

	// Scribes live at fixed, precompile-style addresses so root key
	// holders have stable identities to opt in with the gate.
	TrusteeAddress     common.Address `serialize:"true" json:"trusteeAddress"`
	AllowanceAddress   common.Address `serialize:"true" json:"allowanceAddress"`
	DistributorAddress common.Address `serialize:"true" json:"distributorAddress"`
	VaultAddress       common.Address `serialize:"true" json:"vaultAddress"`
}

func (c *Config) SetDefaults() {
	c.HTTPAddr = ":9652"
	c.RequestTimeout = 30 * time.Second

	c.TrusteeAddress = common.HexToAddress("0x0000000000000000000000000000000000000101")
	c.AllowanceAddress = common.HexToAddress("0x0000000000000000000000000000000000000102")
	c.DistributorAddress = common.HexToAddress("0x0000000000000000000000000000000000000103")
	c.VaultAddress = common.HexToAddress("0x0000000000000000000000000000000000000104")
}
