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

package clients

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Local computes the operations that need no node at all.
type Local struct{}

func NewLocal() *Local { return &Local{} }

func (*Local) ID() string { return LocalID }

func (*Local) Invoker(method string) (Invoke, bool) {
	switch method {
	case "web3_sha3":
		return sha3, true
	default:
		return nil, false
	}
}

func sha3(_ context.Context, params []any) (any, error) {
	if len(params) != 1 {
		return nil, fmt.Errorf("web3_sha3: want 1 param, got %d", len(params))
	}
	s, ok := params[0].(string)
	if !ok {
		return nil, fmt.Errorf("web3_sha3: param is %T, want hex string", params[0])
	}
	data, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("web3_sha3: %w", err)
	}
	return hexutil.Encode(crypto.Keccak256(data)), nil
}
