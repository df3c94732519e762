// Copyright 2024 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

// Package smoke holds the fixed, ordered catalog of checks run against a freshly
// started RskJ regtest node.
package smoke

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rsksmart/rpcsmoke/clients"
	"github.com/rsksmart/rpcsmoke/fixture"
)

// Expectations are the values a fresh regtest node is expected to report.
type Expectations struct {
	ClientVersion   string // substring of web3_clientVersion
	ChainID         uint64
	NetworkID       uint64
	ProtocolVersion uint64
	Coinbase        common.Address

	TestAccount   common.Address
	TestBalance   *big.Int
	UnusedAccount common.Address
	UnusedBalance *big.Int

	UnknownBlockHash common.Hash
	UnknownTxHashes  []common.Hash

	InitialValue uint64 // stored by the contract constructor
	SetValue     uint64 // written by the set transaction

	Sha3Input  string
	Sha3Output string
}

// DefaultExpectations matches RskJ started with the regtest profile.
func DefaultExpectations() Expectations {
	testBalance, _ := new(big.Int).SetString("21000000000000000000000000", 10)
	unusedBalance := new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil)
	return Expectations{
		ClientVersion:    "RskJ",
		ChainID:          33,
		NetworkID:        33,
		ProtocolVersion:  62,
		Coinbase:         common.HexToAddress("0xec4ddeb4380ad69b3e509baad9f158cdf4e4681d"),
		TestAccount:      common.HexToAddress("0x0000000000000000000000000000000001000006"),
		TestBalance:      testBalance,
		UnusedAccount:    common.HexToAddress("0x09a1eda29f664ac8f68106f6567276df0c65d859"),
		UnusedBalance:    unusedBalance,
		UnknownBlockHash: common.HexToHash("0xdeadbeef0fb9424aad2417321cac62915f6c83827f4d3c8c8c06900a61c4236c"),
		UnknownTxHashes: []common.Hash{
			common.HexToHash("0x5eae996aa609c0b9db434c7a2411437fefc3ff16046b71ad102453cfdeadbeef"),
			common.HexToHash("0xd05274b72ca6346bcce89a64cd42ddd28d885fdd06772efe0fe7d19fdeadbeef"),
		},
		InitialValue: 5,
		SetValue:     34,
		Sha3Input:    "0x323334",
		Sha3Output:   "0xc1912fee45d61c87cc5ea59dae311904cd86b84fee17cc96966216f811ce6a79",
	}
}

// Inclusion controls how long a sent transaction is waited for.
type Inclusion struct {
	Timeout  time.Duration
	Interval time.Duration
	Mine     bool // call evm_mine on every poll
}

// Env is everything the catalog needs to build its checks.
type Env struct {
	Clients   []clients.Client
	Account   *fixture.Account
	Artifact  *fixture.Artifact
	Expect    Expectations
	MinBlock  uint64
	Inclusion Inclusion
}

func (e *Env) setDefaults() {
	if e.MinBlock == 0 {
		e.MinBlock = 5
	}
	if e.Inclusion.Timeout <= 0 {
		e.Inclusion.Timeout = time.Minute
	}
	if e.Inclusion.Interval <= 0 {
		e.Inclusion.Interval = time.Second
	}
}
