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
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// blockRef is a decoded block parameter: a number (nil for latest) or a hash.
type blockRef struct {
	number *big.Int
	hash   *common.Hash
}

func param(params []any, i int) (any, error) {
	if i >= len(params) {
		return nil, fmt.Errorf("missing param %d", i)
	}
	return params[i], nil
}

func stringParam(params []any, i int) (string, error) {
	p, err := param(params, i)
	if err != nil {
		return "", err
	}
	s, ok := p.(string)
	if !ok {
		return "", fmt.Errorf("param %d is %T, want string", i, p)
	}
	return s, nil
}

func addressParam(params []any, i int) (common.Address, error) {
	s, err := stringParam(params, i)
	if err != nil {
		return common.Address{}, err
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("param %d: invalid address %q", i, s)
	}
	return common.HexToAddress(s), nil
}

func hashParam(params []any, i int) (common.Hash, error) {
	s, err := stringParam(params, i)
	if err != nil {
		return common.Hash{}, err
	}
	b, err := hexutil.Decode(s)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("param %d: invalid hash %q", i, s)
	}
	return common.BytesToHash(b), nil
}

func quantityParam(params []any, i int) (*big.Int, error) {
	s, err := stringParam(params, i)
	if err != nil {
		return nil, err
	}
	n, ok := new(big.Int).SetString(strings.TrimPrefix(strings.ToLower(s), "0x"), 16)
	if !ok || !strings.HasPrefix(strings.ToLower(s), "0x") {
		return nil, fmt.Errorf("param %d: invalid quantity %q", i, s)
	}
	return n, nil
}

// blockParam decodes a block tag, number or hash. A missing param means latest.
func blockParam(params []any, i int) (blockRef, error) {
	if i >= len(params) {
		return blockRef{}, nil
	}
	s, err := stringParam(params, i)
	if err != nil {
		return blockRef{}, err
	}
	switch s {
	case "latest":
		return blockRef{}, nil
	case "earliest":
		return blockRef{number: big.NewInt(0)}, nil
	case "pending":
		return blockRef{number: big.NewInt(int64(rpc.PendingBlockNumber))}, nil
	case "safe":
		return blockRef{number: big.NewInt(int64(rpc.SafeBlockNumber))}, nil
	case "finalized":
		return blockRef{number: big.NewInt(int64(rpc.FinalizedBlockNumber))}, nil
	}
	if len(s) == 2+2*common.HashLength {
		h, err := hashParam(params, i)
		if err != nil {
			return blockRef{}, err
		}
		return blockRef{hash: &h}, nil
	}
	n, err := quantityParam(params, i)
	if err != nil {
		return blockRef{}, err
	}
	return blockRef{number: n}, nil
}

// callParam decodes a transaction call object as used by eth_call and eth_estimateGas.
func callParam(params []any, i int) (ethereum.CallMsg, error) {
	p, err := param(params, i)
	if err != nil {
		return ethereum.CallMsg{}, err
	}
	m, ok := p.(map[string]any)
	if !ok {
		return ethereum.CallMsg{}, fmt.Errorf("param %d is %T, want call object", i, p)
	}
	var msg ethereum.CallMsg
	obj := []any{m["from"], m["to"], m["gas"], m["gasPrice"], m["value"], firstOf(m["data"], m["input"])}
	if obj[0] != nil {
		if msg.From, err = addressParam(obj, 0); err != nil {
			return msg, fmt.Errorf("call from: %w", err)
		}
	}
	if obj[1] != nil {
		to, err := addressParam(obj, 1)
		if err != nil {
			return msg, fmt.Errorf("call to: %w", err)
		}
		msg.To = &to
	}
	if obj[2] != nil {
		gas, err := quantityParam(obj, 2)
		if err != nil {
			return msg, fmt.Errorf("call gas: %w", err)
		}
		msg.Gas = gas.Uint64()
	}
	if obj[3] != nil {
		if msg.GasPrice, err = quantityParam(obj, 3); err != nil {
			return msg, fmt.Errorf("call gasPrice: %w", err)
		}
	}
	if obj[4] != nil {
		if msg.Value, err = quantityParam(obj, 4); err != nil {
			return msg, fmt.Errorf("call value: %w", err)
		}
	}
	if obj[5] != nil {
		s, err := stringParam(obj, 5)
		if err != nil {
			return msg, fmt.Errorf("call data: %w", err)
		}
		if msg.Data, err = hexutil.Decode(s); err != nil {
			return msg, fmt.Errorf("call data: %w", err)
		}
	}
	return msg, nil
}

// filterParam decodes an eth_getLogs filter object.
func filterParam(params []any, i int) (ethereum.FilterQuery, error) {
	p, err := param(params, i)
	if err != nil {
		return ethereum.FilterQuery{}, err
	}
	m, ok := p.(map[string]any)
	if !ok {
		return ethereum.FilterQuery{}, fmt.Errorf("param %d is %T, want filter object", i, p)
	}
	var q ethereum.FilterQuery
	if bh, ok := m["blockHash"]; ok && bh != nil {
		h, err := hashParam([]any{bh}, 0)
		if err != nil {
			return q, fmt.Errorf("filter blockHash: %w", err)
		}
		q.BlockHash = &h
	}
	for key, dst := range map[string]**big.Int{"fromBlock": &q.FromBlock, "toBlock": &q.ToBlock} {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		ref, err := blockParam([]any{v}, 0)
		if err != nil || ref.hash != nil {
			return q, fmt.Errorf("filter %s: invalid block %v", key, v)
		}
		if v == "latest" {
			*dst = big.NewInt(int64(rpc.LatestBlockNumber))
		} else {
			*dst = ref.number
		}
	}
	switch a := m["address"].(type) {
	case nil:
	case string:
		addr, err := addressParam([]any{a}, 0)
		if err != nil {
			return q, fmt.Errorf("filter address: %w", err)
		}
		q.Addresses = []common.Address{addr}
	case []any:
		for j := range a {
			addr, err := addressParam(a, j)
			if err != nil {
				return q, fmt.Errorf("filter address: %w", err)
			}
			q.Addresses = append(q.Addresses, addr)
		}
	default:
		return q, fmt.Errorf("filter address is %T", a)
	}
	if topics, ok := m["topics"].([]any); ok {
		for j, t := range topics {
			switch t := t.(type) {
			case nil:
				q.Topics = append(q.Topics, nil)
			case string:
				h, err := hashParam([]any{t}, 0)
				if err != nil {
					return q, fmt.Errorf("filter topic %d: %w", j, err)
				}
				q.Topics = append(q.Topics, []common.Hash{h})
			case []any:
				var alts []common.Hash
				for k := range t {
					h, err := hashParam(t, k)
					if err != nil {
						return q, fmt.Errorf("filter topic %d: %w", j, err)
					}
					alts = append(alts, h)
				}
				q.Topics = append(q.Topics, alts)
			}
		}
	}
	return q, nil
}

func firstOf(vs ...any) any {
	for _, v := range vs {
		if v != nil {
			return v
		}
	}
	return nil
}
