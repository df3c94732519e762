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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/rsksmart/rpcsmoke/jsonrpc"
)

type sdkMethod func(ctx context.Context, c *ethclient.Client, params []any) (any, error)

// SDK reaches the subset of operations that go-ethereum's typed ethclient exposes.
// Scalars come from the typed accessors. Blocks, transactions, receipts and logs
// are decoded into the geth types ethclient uses, but the tree handed back is the
// node's own answer with its RSK fields and hashes intact.
type SDK struct {
	c       *ethclient.Client
	methods map[string]sdkMethod
}

// NewSDK builds the typed client on top of c. The two must not share a connection
// with other paths if their answers are to be independent.
func NewSDK(c *rpc.Client) *SDK {
	return &SDK{c: ethclient.NewClient(c), methods: sdkMethods}
}

func (s *SDK) ID() string { return SDKID }

func (s *SDK) Invoker(method string) (Invoke, bool) {
	m, ok := s.methods[method]
	if !ok {
		return nil, false
	}
	return func(ctx context.Context, params []any) (any, error) {
		v, err := m(ctx, s.c, params)
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, jsonrpc.Classify(method, err)
		}
		return v, nil
	}, true
}

func (s *SDK) Close() { s.c.Close() }

var sdkMethods = map[string]sdkMethod{
	"net_version": func(ctx context.Context, c *ethclient.Client, _ []any) (any, error) {
		return c.NetworkID(ctx)
	},
	"net_peerCount": func(ctx context.Context, c *ethclient.Client, _ []any) (any, error) {
		return c.PeerCount(ctx)
	},
	"eth_chainId": func(ctx context.Context, c *ethclient.Client, _ []any) (any, error) {
		return c.ChainID(ctx)
	},
	"eth_syncing": func(ctx context.Context, c *ethclient.Client, _ []any) (any, error) {
		p, err := c.SyncProgress(ctx)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return false, nil
		}
		return map[string]any{
			"startingBlock": hexutil.Uint64(p.StartingBlock).String(),
			"currentBlock":  hexutil.Uint64(p.CurrentBlock).String(),
			"highestBlock":  hexutil.Uint64(p.HighestBlock).String(),
		}, nil
	},
	"eth_blockNumber": func(ctx context.Context, c *ethclient.Client, _ []any) (any, error) {
		return c.BlockNumber(ctx)
	},
	"eth_gasPrice": func(ctx context.Context, c *ethclient.Client, _ []any) (any, error) {
		return c.SuggestGasPrice(ctx)
	},
	"eth_getTransactionCount": func(ctx context.Context, c *ethclient.Client, params []any) (any, error) {
		addr, ref, err := accountAt(params)
		if err != nil {
			return nil, err
		}
		if ref.hash != nil {
			return c.NonceAtHash(ctx, addr, *ref.hash)
		}
		return c.NonceAt(ctx, addr, ref.number)
	},
	"eth_getBalance": func(ctx context.Context, c *ethclient.Client, params []any) (any, error) {
		addr, ref, err := accountAt(params)
		if err != nil {
			return nil, err
		}
		if ref.hash != nil {
			return c.BalanceAtHash(ctx, addr, *ref.hash)
		}
		return c.BalanceAt(ctx, addr, ref.number)
	},
	"eth_getCode": func(ctx context.Context, c *ethclient.Client, params []any) (any, error) {
		addr, ref, err := accountAt(params)
		if err != nil {
			return nil, err
		}
		if ref.hash != nil {
			return c.CodeAtHash(ctx, addr, *ref.hash)
		}
		return c.CodeAt(ctx, addr, ref.number)
	},
	"eth_getStorageAt": func(ctx context.Context, c *ethclient.Client, params []any) (any, error) {
		addr, err := addressParam(params, 0)
		if err != nil {
			return nil, err
		}
		slot, err := quantityParam(params, 1)
		if err != nil {
			return nil, err
		}
		ref, err := blockParam(params, 2)
		if err != nil {
			return nil, err
		}
		key := common.BigToHash(slot)
		if ref.hash != nil {
			return c.StorageAtHash(ctx, addr, key, *ref.hash)
		}
		return c.StorageAt(ctx, addr, key, ref.number)
	},
	"eth_call": func(ctx context.Context, c *ethclient.Client, params []any) (any, error) {
		msg, err := callParam(params, 0)
		if err != nil {
			return nil, err
		}
		ref, err := blockParam(params, 1)
		if err != nil {
			return nil, err
		}
		if ref.hash != nil {
			return c.CallContractAtHash(ctx, msg, *ref.hash)
		}
		return c.CallContract(ctx, msg, ref.number)
	},
	"eth_estimateGas": func(ctx context.Context, c *ethclient.Client, params []any) (any, error) {
		msg, err := callParam(params, 0)
		if err != nil {
			return nil, err
		}
		return c.EstimateGas(ctx, msg)
	},
	"eth_getTransactionByBlockHashAndIndex": func(ctx context.Context, c *ethclient.Client, params []any) (any, error) {
		hash, err := hashParam(params, 0)
		if err != nil {
			return nil, err
		}
		idx, err := quantityParam(params, 1)
		if err != nil {
			return nil, err
		}
		return nodeObject(ctx, c, checkTx, "eth_getTransactionByBlockHashAndIndex", hash, hexutil.EncodeBig(idx))
	},
	"eth_getBlockTransactionCountByHash": func(ctx context.Context, c *ethclient.Client, params []any) (any, error) {
		hash, err := hashParam(params, 0)
		if err != nil {
			return nil, err
		}
		return c.TransactionCount(ctx, hash)
	},
	"eth_getBlockByNumber": func(ctx context.Context, c *ethclient.Client, params []any) (any, error) {
		ref, err := blockParam(params, 0)
		if err != nil {
			return nil, err
		}
		if ref.hash != nil {
			return nil, fmt.Errorf("eth_getBlockByNumber: got a hash, want a number")
		}
		var tag any = "latest"
		if len(params) > 0 {
			tag = params[0]
		}
		full := fullTxParam(params, 1)
		return nodeObject(ctx, c, checkBlock(full), "eth_getBlockByNumber", tag, full)
	},
	"eth_getBlockByHash": func(ctx context.Context, c *ethclient.Client, params []any) (any, error) {
		hash, err := hashParam(params, 0)
		if err != nil {
			return nil, err
		}
		full := fullTxParam(params, 1)
		return nodeObject(ctx, c, checkBlock(full), "eth_getBlockByHash", hash, full)
	},
	"eth_getTransactionByHash": func(ctx context.Context, c *ethclient.Client, params []any) (any, error) {
		hash, err := hashParam(params, 0)
		if err != nil {
			return nil, err
		}
		return nodeObject(ctx, c, checkTx, "eth_getTransactionByHash", hash)
	},
	"eth_getTransactionReceipt": func(ctx context.Context, c *ethclient.Client, params []any) (any, error) {
		hash, err := hashParam(params, 0)
		if err != nil {
			return nil, err
		}
		return nodeObject(ctx, c, checkReceipt, "eth_getTransactionReceipt", hash)
	},
	"eth_getLogs": func(ctx context.Context, c *ethclient.Client, params []any) (any, error) {
		if _, err := filterParam(params, 0); err != nil {
			return nil, err
		}
		return nodeObject(ctx, c, checkLogs, "eth_getLogs", params[0])
	},
	"eth_sendRawTransaction": func(ctx context.Context, c *ethclient.Client, params []any) (any, error) {
		s, err := stringParam(params, 0)
		if err != nil {
			return nil, err
		}
		raw, err := hexutil.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("raw transaction: %w", err)
		}
		tx := new(types.Transaction)
		if err := tx.UnmarshalBinary(raw); err != nil {
			return nil, fmt.Errorf("raw transaction: %w", err)
		}
		if err := c.SendTransaction(ctx, tx); err != nil {
			return nil, err
		}
		return tx.Hash().Hex(), nil
	},
}

func accountAt(params []any) (common.Address, blockRef, error) {
	addr, err := addressParam(params, 0)
	if err != nil {
		return addr, blockRef{}, err
	}
	ref, err := blockParam(params, 1)
	return addr, ref, err
}

func fullTxParam(params []any, i int) bool {
	if i >= len(params) {
		return false
	}
	full, _ := params[i].(bool)
	return full
}

// nodeObject sends method on the connection under c and returns the answer as
// a JSON tree. check decodes the answer into the geth types first; an answer they
// reject is a malformed body. A null answer is nil.
func nodeObject(ctx context.Context, c *ethclient.Client, check func(json.RawMessage) error, method string, args ...any) (any, error) {
	var raw json.RawMessage
	if err := c.Client().CallContext(ctx, &raw, method, args...); err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if err := check(raw); err != nil {
		return nil, &jsonrpc.TransportError{Code: jsonrpc.CodeMalformedBody, Op: method, Err: err}
	}
	tree, err := jsonrpc.Decode(raw)
	if err != nil {
		return nil, &jsonrpc.TransportError{Code: jsonrpc.CodeMalformedBody, Op: method, Err: err}
	}
	return tree, nil
}

func checkBlock(full bool) func(json.RawMessage) error {
	return func(raw json.RawMessage) error {
		var head types.Header
		if err := json.Unmarshal(raw, &head); err != nil {
			return err
		}
		if full {
			var body struct {
				Transactions []*types.Transaction `json:"transactions"`
			}
			return json.Unmarshal(raw, &body)
		}
		var body struct {
			Transactions []common.Hash `json:"transactions"`
		}
		return json.Unmarshal(raw, &body)
	}
}

func checkTx(raw json.RawMessage) error {
	var tx types.Transaction
	return json.Unmarshal(raw, &tx)
}

func checkReceipt(raw json.RawMessage) error {
	var r types.Receipt
	return json.Unmarshal(raw, &r)
}

func checkLogs(raw json.RawMessage) error {
	var logs []types.Log
	return json.Unmarshal(raw, &logs)
}
