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

package fixture

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Transaction parameters used against regtest.
const (
	DeployGas = 1_000_000
)

var (
	DeployGasPrice = big.NewInt(10_000_000)
	SetGasPrice    = big.NewInt(20_000_000_000) // 20 gwei
)

// Account signs legacy EIP-155 transactions for one chain.
type Account struct {
	Address common.Address
	key     *ecdsa.PrivateKey
	signer  types.Signer
}

// NewAccount loads a hex private key, with or without 0x prefix.
func NewAccount(hexKey string, chainID uint64) (*Account, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &Account{
		Address: crypto.PubkeyToAddress(key.PublicKey),
		key:     key,
		signer:  types.LatestSignerForChainID(new(big.Int).SetUint64(chainID)),
	}, nil
}

// Sign builds and signs a legacy transaction.
func (a *Account) Sign(nonce uint64, to *common.Address, gas uint64, gasPrice *big.Int, data []byte) (*types.Transaction, error) {
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       to,
		Value:    big.NewInt(0),
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     data,
	})
	signed, err := types.SignTx(tx, a.signer, a.key)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return signed, nil
}

// DeployTx creates the artifact's contract.
func (a *Account) DeployTx(art *Artifact, nonce uint64) (*types.Transaction, error) {
	return a.Sign(nonce, nil, DeployGas, DeployGasPrice, art.Bytecode)
}

// SetTx calls set(v) on the deployed contract with the estimated gas.
func (a *Account) SetTx(art *Artifact, contract common.Address, nonce, v, gas uint64) (*types.Transaction, error) {
	data, err := art.SetCalldata(v)
	if err != nil {
		return nil, fmt.Errorf("encode set(%d): %w", v, err)
	}
	return a.Sign(nonce, &contract, gas, SetGasPrice, data)
}

// ContractAddress is the address a creation by this account at nonce lands on.
func (a *Account) ContractAddress(nonce uint64) common.Address {
	return crypto.CreateAddress(a.Address, nonce)
}

// RawHex returns the network encoding of tx as eth_sendRawTransaction expects it.
func RawHex(tx *types.Transaction) (string, error) {
	b, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("encode transaction: %w", err)
	}
	return hexutil.Encode(b), nil
}
