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

package mocknode

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
)

type rpcError struct {
	code int
	msg  string
}

func (e *rpcError) Error() string  { return e.msg }
func (e *rpcError) ErrorCode() int { return e.code }

type web3API struct{ n *Node }

func (api *web3API) ClientVersion() string { return api.n.cfg.ClientVersion }

func (api *web3API) Sha3(input hexutil.Bytes) hexutil.Bytes { return crypto.Keccak256(input) }

type netAPI struct{ n *Node }

func (api *netAPI) Version() string        { return fmt.Sprint(api.n.cfg.ChainID) }
func (api *netAPI) Listening() bool        { return true }
func (api *netAPI) PeerCount() hexutil.Uint { return 0 }

type evmAPI struct{ n *Node }

// Mine seals one block.
func (api *evmAPI) Mine() error {
	api.n.Mine()
	return nil
}

type ethAPI struct{ n *Node }

func (api *ethAPI) ChainId() *hexutil.Big       { return (*hexutil.Big)(api.n.chainID) }
func (api *ethAPI) ProtocolVersion() string     { return "62" }
func (api *ethAPI) Syncing() bool               { return false }
func (api *ethAPI) Mining() bool                { return true }
func (api *ethAPI) Hashrate() hexutil.Uint64    { return 0 }
func (api *ethAPI) GasPrice() *hexutil.Big      { return (*hexutil.Big)(big.NewInt(0)) }
func (api *ethAPI) Coinbase() common.Address    { return api.n.cfg.Coinbase }
func (api *ethAPI) Accounts() []common.Address  { return []common.Address{} }
func (api *ethAPI) BlockNumber() hexutil.Uint64 { return hexutil.Uint64(api.n.Head()) }

// resolve maps a block number or tag onto a stored block, or nil.
func (n *Node) resolve(num rpc.BlockNumber) *block {
	switch {
	case num == rpc.EarliestBlockNumber:
		return n.blocks[0]
	case num < 0:
		return n.blocks[len(n.blocks)-1]
	case int(num) < len(n.blocks):
		return n.blocks[num]
	default:
		return nil
	}
}

func (n *Node) resolveHash(hash common.Hash) *block {
	for _, b := range n.blocks {
		if b.hash == hash {
			return b
		}
	}
	return nil
}

func (n *Node) resolveRef(ref rpc.BlockNumberOrHash) *block {
	if h, ok := ref.Hash(); ok {
		return n.resolveHash(h)
	}
	if num, ok := ref.Number(); ok {
		return n.resolve(num)
	}
	return n.resolve(rpc.LatestBlockNumber)
}

func (api *ethAPI) GetBalance(addr common.Address, _ rpc.BlockNumberOrHash) *hexutil.Big {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	if b, ok := api.n.cfg.Balances[addr]; ok {
		return (*hexutil.Big)(b)
	}
	return (*hexutil.Big)(big.NewInt(0))
}

func (api *ethAPI) GetTransactionCount(addr common.Address, _ rpc.BlockNumberOrHash) hexutil.Uint64 {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	return hexutil.Uint64(api.n.nonces[addr])
}

// GetCode answers "0x00" for accounts without code, like RskJ does.
func (api *ethAPI) GetCode(addr common.Address, ref rpc.BlockNumberOrHash) (string, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	b := api.n.resolveRef(ref)
	if b == nil {
		return "", &rpcError{code: -32602, msg: "unknown block"}
	}
	c := api.n.contracts[addr]
	if c == nil || c.created > b.header.Number.Uint64() {
		return "0x00", nil
	}
	return hexutil.Encode(c.code), nil
}

func (api *ethAPI) GetStorageAt(addr common.Address, slot string, _ rpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	key, err := hexutil.DecodeBig(normalizeQuantity(slot))
	if err != nil {
		return nil, &rpcError{code: -32602, msg: fmt.Sprintf("invalid slot %q", slot)}
	}
	var word common.Hash
	if c := api.n.contracts[addr]; c != nil {
		word = c.storage[common.BigToHash(key)]
	}
	return word.Bytes(), nil
}

type callArgs struct {
	From     *common.Address `json:"from"`
	To       *common.Address `json:"to"`
	Gas      *hexutil.Uint64 `json:"gas"`
	GasPrice *hexutil.Big    `json:"gasPrice"`
	Value    *hexutil.Big    `json:"value"`
	Data     *hexutil.Bytes  `json:"data"`
	Input    *hexutil.Bytes  `json:"input"`
}

func (a callArgs) data() []byte {
	if a.Input != nil {
		return *a.Input
	}
	if a.Data != nil {
		return *a.Data
	}
	return nil
}

func (api *ethAPI) Call(args callArgs, _ *rpc.BlockNumberOrHash) hexutil.Bytes {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	return api.n.call(args.To, args.data())
}

func (api *ethAPI) EstimateGas(args callArgs, _ *rpc.BlockNumberOrHash) hexutil.Uint64 {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	switch {
	case args.To == nil:
		return 120_000
	case api.n.contracts[*args.To] != nil:
		return 27_000
	default:
		return 21_000
	}
}

func (api *ethAPI) SendRawTransaction(input hexutil.Bytes) (common.Hash, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	return api.n.submit(input)
}

func (api *ethAPI) GetBlockByNumber(num rpc.BlockNumber, full bool) (map[string]any, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	b := api.n.resolve(num)
	if b == nil {
		return nil, nil
	}
	return api.n.blockJSON(b, full)
}

func (api *ethAPI) GetBlockByHash(hash common.Hash, full bool) (map[string]any, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	b := api.n.resolveHash(hash)
	if b == nil {
		return nil, nil
	}
	return api.n.blockJSON(b, full)
}

func (api *ethAPI) GetBlockTransactionCountByNumber(num rpc.BlockNumber) *hexutil.Uint {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	b := api.n.resolve(num)
	if b == nil {
		return nil
	}
	count := hexutil.Uint(len(b.txs))
	return &count
}

func (api *ethAPI) GetBlockTransactionCountByHash(hash common.Hash) *hexutil.Uint {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	b := api.n.resolveHash(hash)
	if b == nil {
		return nil
	}
	count := hexutil.Uint(len(b.txs))
	return &count
}

func (api *ethAPI) txInBlock(b *block, index hexutil.Uint) (map[string]any, error) {
	if b == nil || int(index) >= len(b.txs) {
		return nil, nil
	}
	return api.n.txJSON(api.n.txs[b.txs[index].Hash()])
}

func (api *ethAPI) GetTransactionByBlockNumberAndIndex(num rpc.BlockNumber, index hexutil.Uint) (map[string]any, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	return api.txInBlock(api.n.resolve(num), index)
}

func (api *ethAPI) GetTransactionByBlockHashAndIndex(hash common.Hash, index hexutil.Uint) (map[string]any, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	return api.txInBlock(api.n.resolveHash(hash), index)
}

func (api *ethAPI) GetTransactionByHash(hash common.Hash) (map[string]any, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	e := api.n.txs[hash]
	if e == nil {
		return nil, nil
	}
	return api.n.txJSON(e)
}

func (api *ethAPI) GetTransactionReceipt(hash common.Hash) (map[string]any, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	e := api.n.txs[hash]
	if e == nil || e.receipt == nil {
		return nil, nil
	}
	return api.n.receiptJSON(e)
}

type filterArgs struct {
	FromBlock *rpc.BlockNumber  `json:"fromBlock"`
	ToBlock   *rpc.BlockNumber  `json:"toBlock"`
	BlockHash *common.Hash      `json:"blockHash"`
	Address   json.RawMessage   `json:"address"`
	Topics    []json.RawMessage `json:"topics"`
}

func (f filterArgs) addresses() ([]common.Address, error) {
	if len(f.Address) == 0 || string(f.Address) == "null" {
		return nil, nil
	}
	var one common.Address
	if err := json.Unmarshal(f.Address, &one); err == nil {
		return []common.Address{one}, nil
	}
	var many []common.Address
	if err := json.Unmarshal(f.Address, &many); err != nil {
		return nil, err
	}
	return many, nil
}

func (f filterArgs) topics() ([][]common.Hash, error) {
	out := make([][]common.Hash, len(f.Topics))
	for i, raw := range f.Topics {
		if string(raw) == "null" {
			continue
		}
		var one common.Hash
		if err := json.Unmarshal(raw, &one); err == nil {
			out[i] = []common.Hash{one}
			continue
		}
		if err := json.Unmarshal(raw, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (api *ethAPI) GetLogs(args filterArgs) ([]map[string]any, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	addrs, err := args.addresses()
	if err != nil {
		return nil, &rpcError{code: -32602, msg: fmt.Sprintf("invalid address: %v", err)}
	}
	topics, err := args.topics()
	if err != nil {
		return nil, &rpcError{code: -32602, msg: fmt.Sprintf("invalid topics: %v", err)}
	}
	var blocks []*block
	if args.BlockHash != nil {
		if b := api.n.resolveHash(*args.BlockHash); b != nil {
			blocks = append(blocks, b)
		}
	} else {
		from, to := api.n.resolve(rpc.LatestBlockNumber), api.n.resolve(rpc.LatestBlockNumber)
		if args.FromBlock != nil {
			from = api.n.resolve(*args.FromBlock)
		}
		if args.ToBlock != nil {
			to = api.n.resolve(*args.ToBlock)
		}
		if from != nil && to == nil {
			to = api.n.resolve(rpc.LatestBlockNumber)
		}
		if from != nil {
			for i := from.header.Number.Uint64(); i <= to.header.Number.Uint64(); i++ {
				blocks = append(blocks, api.n.blocks[i])
			}
		}
	}
	logs := []*types.Log{}
	for _, b := range blocks {
		for _, r := range b.receipts {
			for _, l := range r.Logs {
				if matchLog(l, addrs, topics) {
					logs = append(logs, l)
				}
			}
		}
	}
	return logsJSON(logs), nil
}

func matchLog(l *types.Log, addrs []common.Address, topics [][]common.Hash) bool {
	if len(addrs) > 0 {
		found := false
		for _, a := range addrs {
			if a == l.Address {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(topics) > len(l.Topics) {
		return false
	}
	for i, alts := range topics {
		if len(alts) == 0 {
			continue
		}
		found := false
		for _, t := range alts {
			if t == l.Topics[i] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// normalizeQuantity drops leading zeros hexutil refuses.
func normalizeQuantity(s string) string {
	digits := strings.TrimLeft(strings.TrimPrefix(strings.ToLower(s), "0x"), "0")
	if digits == "" {
		digits = "0"
	}
	return "0x" + digits
}
