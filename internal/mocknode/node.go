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

// Package mocknode runs an in-process RskJ-like regtest node for tests. It serves
// the JSON-RPC methods the smoke catalog calls, answers with RskJ-shaped blocks,
// transactions and logs, and simulates a single storage contract.
package mocknode

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net"
	"net/http"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

// Well-known regtest values.
var (
	TestAccount   = common.HexToAddress("0x0000000000000000000000000000000001000006")
	UnusedAccount = common.HexToAddress("0x09a1eda29f664ac8f68106f6567276df0c65d859")
	Coinbase      = common.HexToAddress("0xec4ddeb4380ad69b3e509baad9f158cdf4e4681d")
	Remasc        = common.HexToAddress("0x0000000000000000000000000000000001000008")
)

// Config shapes the simulated node.
type Config struct {
	ChainID       int64
	ClientVersion string
	Coinbase      common.Address
	Balances      map[common.Address]*big.Int

	// Runtime is installed as the code of every contract created, with storage
	// slot 0 set to InitialValue.
	Runtime      []byte
	InitialValue uint64

	// AutoMine includes every accepted transaction in a new block right away.
	AutoMine bool
}

// DefaultConfig mirrors a freshly started RskJ regtest node.
func DefaultConfig() Config {
	balance21m, _ := new(big.Int).SetString("21000000000000000000000000", 10)
	balance1e30, _ := new(big.Int).SetString("1000000000000000000000000000000", 10)
	return Config{
		ChainID:       33,
		ClientVersion: "RskJ/6.0.0/Linux/Java1.8/ARROWHEAD-202f1d2",
		Coinbase:      Coinbase,
		Balances: map[common.Address]*big.Int{
			TestAccount:   balance21m,
			UnusedAccount: balance1e30,
		},
		InitialValue: 5,
		AutoMine:     true,
	}
}

// Intercept answers a request instead of the node. It returns the HTTP status and
// raw body to send.
type Intercept func(id json.RawMessage) (status int, body []byte)

// Node is a running mock node.
type Node struct {
	URL string

	mu         sync.Mutex
	cfg        Config
	chainID    *big.Int
	signer     types.Signer
	blocks     []*block
	pending    []*types.Transaction
	nonces     map[common.Address]uint64
	contracts  map[common.Address]*contract
	txs        map[common.Hash]*txEntry
	calls      map[string]int
	intercepts map[string]Intercept
}

type block struct {
	hash     common.Hash
	header   *types.Header
	txs      []*types.Transaction
	receipts []*types.Receipt
	fees     *big.Int
}

type contract struct {
	created uint64
	code    []byte
	storage map[common.Hash]common.Hash
}

type txEntry struct {
	tx      *types.Transaction
	from    common.Address
	block   *block // nil while pending
	index   int
	receipt *types.Receipt
}

// Start launches a node with cfg on a loopback port and stops it when t ends.
func Start(t testing.TB, cfg Config) *Node {
	t.Helper()
	n := newNode(cfg)

	server := rpc.NewServer()
	for ns, api := range map[string]any{
		"eth":  &ethAPI{n},
		"net":  &netAPI{n},
		"web3": &web3API{n},
		"evm":  &evmAPI{n},
	} {
		if err := server.RegisterName(ns, api); err != nil {
			t.Fatalf("register mock %s API: %v", ns, err)
		}
	}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen mock node: %v", err)
	}
	httpSrv := &http.Server{Handler: n.wrap(server)}
	go func() {
		_ = httpSrv.Serve(listener)
	}()
	t.Cleanup(func() {
		_ = httpSrv.Close()
		server.Stop()
	})
	n.URL = "http://" + listener.Addr().String()
	return n
}

func newNode(cfg Config) *Node {
	n := &Node{
		cfg:        cfg,
		chainID:    big.NewInt(cfg.ChainID),
		signer:     types.LatestSignerForChainID(big.NewInt(cfg.ChainID)),
		nonces:     make(map[common.Address]uint64),
		contracts:  make(map[common.Address]*contract),
		txs:        make(map[common.Hash]*txEntry),
		calls:      make(map[string]int),
		intercepts: make(map[string]Intercept),
	}
	n.blocks = append(n.blocks, n.seal(nil, nil, nil))
	return n
}

// Calls reports how often method was requested.
func (n *Node) Calls(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

// Intercept routes method to h until cleared with a nil h.
func (n *Node) Intercept(method string, h Intercept) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if h == nil {
		delete(n.intercepts, method)
		return
	}
	n.intercepts[method] = h
}

// Head returns the current block number.
func (n *Node) Head() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return uint64(len(n.blocks) - 1)
}

// BlockHash returns the hash of block num, or the zero hash.
func (n *Node) BlockHash(num uint64) common.Hash {
	n.mu.Lock()
	defer n.mu.Unlock()
	if num >= uint64(len(n.blocks)) {
		return common.Hash{}
	}
	return n.blocks[num].hash
}

// Mine seals a block holding the pending transactions plus the REMASC transaction.
func (n *Node) Mine() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mine()
}

type envelope struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
}

// wrap counts requests and applies intercepts before handing over to the server.
func (n *Node) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var reqs []envelope
		if len(body) > 0 && body[0] == '[' {
			_ = json.Unmarshal(body, &reqs)
		} else {
			var one envelope
			if json.Unmarshal(body, &one) == nil {
				reqs = append(reqs, one)
			}
		}
		n.mu.Lock()
		var hook Intercept
		for _, req := range reqs {
			n.calls[req.Method]++
			if h, ok := n.intercepts[req.Method]; ok && len(reqs) == 1 {
				hook = h
			}
		}
		n.mu.Unlock()
		if hook != nil {
			status, out := hook(reqs[0].ID)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write(out)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

// ResultBody renders a successful JSON-RPC response.
func ResultBody(id json.RawMessage, result any) []byte {
	out, _ := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": id, "result": result})
	return out
}

// ErrorBody renders a JSON-RPC error response.
func ErrorBody(id json.RawMessage, code int, message string) []byte {
	out, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   map[string]any{"code": code, "message": message},
	})
	return out
}
