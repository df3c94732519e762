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

package smoke

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/rsksmart/rpcsmoke/clients"
	"github.com/rsksmart/rpcsmoke/conformance"
	"github.com/rsksmart/rpcsmoke/fixture"
	"github.com/rsksmart/rpcsmoke/normalize"
)

// Run context keys owned by the catalog.
const (
	keyBlockOneTx conformance.Key = "block.1.tx.0"
	keyBlockTwo   conformance.Key = "block.2"
)

// Blocks whose hashes are recorded after mining.
var recordedBlocks = []uint64{1, 2, 4}

var (
	// Fields every access path must report the same way for a transaction.
	txCompare = normalize.Compare{Only: []string{"hash", "nonce", "from", "to", "value", "input", "gas", "gasPrice", "v", "r", "s"}}

	// Fields every access path must report the same way for a receipt.
	receiptCompare = normalize.Compare{Only: []string{
		"transactionHash", "transactionIndex", "blockHash", "blockNumber",
		"cumulativeGasUsed", "gasUsed", "status", "logsBloom", "logs",
	}}

	blockCompare = normalize.Compare{Ignore: []string{"size", "totalDifficulty"}}

	syncCompare = normalize.Compare{FieldKinds: map[string]normalize.Kind{
		"startingBlock": normalize.Quantity,
		"currentBlock":  normalize.Quantity,
		"highestBlock":  normalize.Quantity,
	}}

	txFields = []string{
		"hash", "transactionIndex", "blockHash", "blockNumber", "value", "input",
		"from", "to", "gasPrice", "gas", "v", "r", "s",
	}
	receiptFields = []string{
		"transactionHash", "transactionIndex", "blockHash", "blockNumber", "cumulativeGasUsed",
		"gasUsed", "contractAddress", "logs", "from", "to", "root", "status", "logsBloom",
	}
)

type catalog struct {
	env Env

	deployNonce uint64
	deployHash  string
	setHash     string
}

// Build returns the ordered smoke catalog for env.
func Build(env Env) []*conformance.Check {
	env.setDefaults()
	c := &catalog{env: env}
	var checks []*conformance.Check
	for _, part := range [][]*conformance.Check{c.setup(), c.advance(), c.steady(), c.mutate(), c.postMutation()} {
		checks = append(checks, part...)
	}
	return checks
}

func (c *catalog) paths(method string, only ...string) []conformance.AccessPath {
	return clients.Paths(c.env.Clients, method, only...)
}

// single picks one path to method, preferring the clients in order. Mutating
// checks go through exactly one path.
func (c *catalog) single(method string, prefer ...string) []conformance.AccessPath {
	for _, id := range prefer {
		if p := c.paths(method, id); len(p) > 0 {
			return p
		}
	}
	if p := c.paths(method); len(p) > 0 {
		return p[:1]
	}
	return nil
}

func params(ps ...any) conformance.ArgsFunc {
	return func(context.Context, *conformance.RunContext) ([]any, error) {
		return ps, nil
	}
}

func (c *catalog) setup() []*conformance.Check {
	e := c.env.Expect
	return []*conformance.Check{
		{
			Name:      "client version",
			Operation: "web3_clientVersion",
			Stage:     conformance.StageSetup,
			Kind:      normalize.Opaque,
			Paths:     c.paths("web3_clientVersion"),
			Assert: func(_ *conformance.RunContext, vals []normalize.Value) error {
				s, ok := vals[0].Tree.(string)
				if !ok || !strings.Contains(s, e.ClientVersion) {
					return fmt.Errorf("client version %v does not contain %q", vals[0].Tree, e.ClientVersion)
				}
				return nil
			},
		},
		{
			Name:      "chain id",
			Operation: "eth_chainId",
			Stage:     conformance.StageSetup,
			Kind:      normalize.Quantity,
			Paths:     c.paths("eth_chainId"),
			Assert:    equalsUint(e.ChainID),
		},
	}
}

func (c *catalog) advance() []*conformance.Check {
	return []*conformance.Check{
		{
			Name:  fmt.Sprintf("mine to block %d", c.env.MinBlock),
			Stage: conformance.StageAdvance,
			Step:  c.mineTo,
		},
		{
			Name:      "block number",
			Operation: "eth_blockNumber",
			Stage:     conformance.StageAdvance,
			Kind:      normalize.Quantity,
			Paths:     c.paths("eth_blockNumber"),
			Assert:    atLeast(c.env.MinBlock),
		},
		{
			Name:  "record block hashes",
			Stage: conformance.StageAdvance,
			Step:  c.recordBlockHashes,
		},
	}
}

func (c *catalog) steady() []*conformance.Check {
	e := c.env.Expect
	steady := func(chk *conformance.Check) *conformance.Check {
		chk.Stage = conformance.StageSteady
		chk.Paths = c.paths(chk.Operation)
		return chk
	}
	hashArgs := func(n uint64, extra ...any) conformance.ArgsFunc {
		return func(_ context.Context, rc *conformance.RunContext) ([]any, error) {
			h, err := rc.GetString(conformance.BlockHashKey(n))
			if err != nil {
				return nil, err
			}
			return append([]any{h}, extra...), nil
		}
	}
	return []*conformance.Check{
		steady(&conformance.Check{
			Name:      "hashrate",
			Operation: "eth_hashrate",
			Kind:      normalize.Quantity,
			Assert:    equalsUint(0),
		}),
		steady(&conformance.Check{
			Name:      "syncing",
			Operation: "eth_syncing",
			Kind:      normalize.Opaque,
			Compare:   syncCompare,
			Assert:    syncState,
		}),
		steady(&conformance.Check{
			Name:      "listening",
			Operation: "net_listening",
			Kind:      normalize.Boolean,
			Assert:    isTrue,
		}),
		steady(&conformance.Check{
			Name:      "peer count",
			Operation: "net_peerCount",
			Kind:      normalize.Quantity,
			Assert:    atLeast(0),
		}),
		steady(&conformance.Check{
			Name:      "network id",
			Operation: "net_version",
			Kind:      normalize.Quantity,
			Assert:    equalsUint(e.NetworkID),
		}),
		steady(&conformance.Check{
			Name:      "accounts",
			Operation: "eth_accounts",
			Kind:      normalize.Opaque,
			Assert: func(_ *conformance.RunContext, vals []normalize.Value) error {
				if vals[0].Len() < 0 {
					return fmt.Errorf("accounts is %s, want an array", vals[0])
				}
				return nil
			},
		}),
		steady(&conformance.Check{
			Name:      "protocol version",
			Operation: "eth_protocolVersion",
			Kind:      normalize.Quantity,
			Assert:    equalsUint(e.ProtocolVersion),
		}),
		steady(&conformance.Check{
			Name:      "mining",
			Operation: "eth_mining",
			Kind:      normalize.Boolean,
			Assert:    isTrue,
		}),
		steady(&conformance.Check{
			Name:      "gas price",
			Operation: "eth_gasPrice",
			Kind:      normalize.Quantity,
			Assert:    equalsUint(0),
		}),
		steady(&conformance.Check{
			Name:      "test account nonce",
			Operation: "eth_getTransactionCount",
			Kind:      normalize.Quantity,
			Args:      params(e.TestAccount.Hex(), "latest"),
			Assert:    equalsUint(0),
		}),
		steady(&conformance.Check{
			Name:      "test account balance",
			Operation: "eth_getBalance",
			Kind:      normalize.Quantity,
			Args:      params(e.TestAccount.Hex(), "latest"),
			Assert:    equalsInt(e.TestBalance),
		}),
		steady(&conformance.Check{
			Name:      "test account balance at genesis",
			Operation: "eth_getBalance",
			Kind:      normalize.Quantity,
			Args:      params(e.TestAccount.Hex(), "0x0"),
			Assert:    equalsInt(e.TestBalance),
		}),
		steady(&conformance.Check{
			Name:      "unused account balance",
			Operation: "eth_getBalance",
			Kind:      normalize.Quantity,
			Args:      params(e.UnusedAccount.Hex(), "latest"),
			Assert:    equalsInt(e.UnusedBalance),
		}),
		steady(&conformance.Check{
			Name:      "transaction by block number and index",
			Operation: "eth_getTransactionByBlockNumberAndIndex",
			Kind:      normalize.Opaque,
			Compare:   txCompare,
			Args:      params("0x1", "0x0"),
			Assert: func(rc *conformance.RunContext, vals []normalize.Value) error {
				if vals[0].Absent {
					return errors.New("no transaction at index 0 of block 1")
				}
				want, err := rc.GetString(conformance.BlockHashKey(1))
				if err != nil {
					return err
				}
				if got, _ := vals[0].Field("blockHash"); got != want {
					return fmt.Errorf("blockHash %v, want %s", got, want)
				}
				return nil
			},
			Capture: func(rc *conformance.RunContext, v normalize.Value) error {
				return rc.Set(keyBlockOneTx, v)
			},
		}),
		steady(&conformance.Check{
			Name:      "transaction by block hash and index",
			Operation: "eth_getTransactionByBlockHashAndIndex",
			Kind:      normalize.Opaque,
			Compare:   txCompare,
			Args:      hashArgs(1, "0x0"),
			Assert:    sameAs(keyBlockOneTx, txCompare),
		}),
		steady(&conformance.Check{
			Name:         "transaction in unknown block",
			Operation:    "eth_getTransactionByBlockHashAndIndex",
			Kind:         normalize.Opaque,
			Args:         params(e.UnknownBlockHash.Hex(), "0x0"),
			ExpectAbsent: true,
		}),
		steady(&conformance.Check{
			Name:      "transaction count by number",
			Operation: "eth_getBlockTransactionCountByNumber",
			Kind:      normalize.Quantity,
			Args:      params("0x4"),
			Assert:    equalsUint(1),
		}),
		steady(&conformance.Check{
			Name:      "transaction count by hash",
			Operation: "eth_getBlockTransactionCountByHash",
			Kind:      normalize.Quantity,
			Args:      hashArgs(4),
			Assert:    equalsUint(1),
		}),
		steady(&conformance.Check{
			Name:        "compilers rejected",
			Operation:   "eth_getCompilers",
			ExpectError: true,
		}),
	}
}

func (c *catalog) mutate() []*conformance.Check {
	e, art, acct := c.env.Expect, c.env.Artifact, c.env.Account
	mutate := func(chk *conformance.Check) *conformance.Check {
		chk.Stage = conformance.StageMutate
		if chk.Paths == nil && chk.Step == nil {
			chk.Paths = c.paths(chk.Operation)
		}
		return chk
	}
	getArgs := func(tag string) conformance.ArgsFunc {
		return func(_ context.Context, rc *conformance.RunContext) ([]any, error) {
			addr, err := rc.GetString(conformance.KeyContractAddress)
			if err != nil {
				return nil, err
			}
			data, err := art.GetCalldata()
			if err != nil {
				return nil, err
			}
			return []any{map[string]any{"to": addr, "data": hexutil.Encode(data)}, tag}, nil
		}
	}
	return []*conformance.Check{
		mutate(&conformance.Check{
			Name:      "deploy contract",
			Operation: "eth_sendRawTransaction",
			Kind:      normalize.ByteString,
			Mutating:  true,
			Paths:     c.single("eth_sendRawTransaction", clients.SDKID),
			Args: func(ctx context.Context, _ *conformance.RunContext) ([]any, error) {
				nonce, err := c.nonce(ctx)
				if err != nil {
					return nil, err
				}
				tx, err := acct.DeployTx(art, nonce)
				if err != nil {
					return nil, err
				}
				raw, err := fixture.RawHex(tx)
				if err != nil {
					return nil, err
				}
				c.deployNonce, c.deployHash = nonce, strings.ToLower(tx.Hash().Hex())
				return []any{raw}, nil
			},
			Assert: func(_ *conformance.RunContext, vals []normalize.Value) error {
				return equalsHex(c.deployHash, vals[0])
			},
			Capture: func(rc *conformance.RunContext, v normalize.Value) error {
				return rc.Set(conformance.KeyDeployTx, v.Bytes)
			},
		}),
		mutate(&conformance.Check{
			Name:    "deploy included",
			Step:    c.waitForInclusion(conformance.KeyDeployTx, c.captureContract),
			Timeout: c.env.Inclusion.Timeout,
		}),
		mutate(&conformance.Check{
			Name:      "call get at latest",
			Operation: "eth_call",
			Kind:      normalize.ByteString,
			Args:      getArgs("latest"),
			Assert:    equalsWord(e.InitialValue),
		}),
		mutate(&conformance.Check{
			Name:      "call get at pending",
			Operation: "eth_call",
			Kind:      normalize.ByteString,
			Args:      getArgs("pending"),
			Assert:    equalsWord(e.InitialValue),
		}),
		mutate(&conformance.Check{
			Name:      "estimate set",
			Operation: "eth_estimateGas",
			Kind:      normalize.Quantity,
			Args: func(_ context.Context, rc *conformance.RunContext) ([]any, error) {
				addr, err := rc.GetString(conformance.KeyContractAddress)
				if err != nil {
					return nil, err
				}
				data, err := art.SetCalldata(e.SetValue)
				if err != nil {
					return nil, err
				}
				return []any{map[string]any{"from": strings.ToLower(acct.Address.Hex()), "to": addr, "data": hexutil.Encode(data)}}, nil
			},
			Assert: func(_ *conformance.RunContext, vals []normalize.Value) error {
				if vals[0].Absent || vals[0].Int.Sign() <= 0 || !vals[0].Int.IsUint64() {
					return fmt.Errorf("estimate %s, want a positive gas amount", vals[0])
				}
				return nil
			},
			Capture: func(rc *conformance.RunContext, v normalize.Value) error {
				return rc.Set(conformance.KeySetGas, v.Int.Uint64())
			},
		}),
		mutate(&conformance.Check{
			Name:      "send set",
			Operation: "eth_sendRawTransaction",
			Kind:      normalize.ByteString,
			Mutating:  true,
			Paths:     c.single("eth_sendRawTransaction", clients.RawID),
			Args: func(ctx context.Context, rc *conformance.RunContext) ([]any, error) {
				addr, err := rc.GetString(conformance.KeyContractAddress)
				if err != nil {
					return nil, err
				}
				gas, err := conformance.Lookup[uint64](rc, conformance.KeySetGas)
				if err != nil {
					return nil, err
				}
				nonce, err := c.nonce(ctx)
				if err != nil {
					return nil, err
				}
				tx, err := acct.SetTx(art, common.HexToAddress(addr), nonce, e.SetValue, gas)
				if err != nil {
					return nil, err
				}
				raw, err := fixture.RawHex(tx)
				if err != nil {
					return nil, err
				}
				c.setHash = strings.ToLower(tx.Hash().Hex())
				return []any{raw}, nil
			},
			Assert: func(_ *conformance.RunContext, vals []normalize.Value) error {
				return equalsHex(c.setHash, vals[0])
			},
			Capture: func(rc *conformance.RunContext, v normalize.Value) error {
				return rc.Set(conformance.KeySetTx, v.Bytes)
			},
		}),
		mutate(&conformance.Check{
			Name:    "set included",
			Step:    c.waitForInclusion(conformance.KeySetTx, func(*conformance.RunContext, normalize.Value) error { return nil }),
			Timeout: c.env.Inclusion.Timeout,
		}),
		mutate(&conformance.Check{
			Name:      "call get after set",
			Operation: "eth_call",
			Kind:      normalize.ByteString,
			Args:      getArgs("latest"),
			Assert:    equalsWord(e.SetValue),
		}),
		mutate(&conformance.Check{
			Name:      "value changed log",
			Operation: "eth_getLogs",
			Kind:      normalize.Opaque,
			Args: func(_ context.Context, rc *conformance.RunContext) ([]any, error) {
				addr, err := rc.GetString(conformance.KeyContractAddress)
				if err != nil {
					return nil, err
				}
				return []any{map[string]any{
					"fromBlock": "0x0",
					"toBlock":   "latest",
					"address":   addr,
					"topics":    []any{art.ValueChangedTopic()},
				}}, nil
			},
			Assert: func(_ *conformance.RunContext, vals []normalize.Value) error {
				logs, _ := vals[0].Tree.([]any)
				if len(logs) == 0 {
					return errors.New("no ValueChanged log")
				}
				first, _ := logs[0].(map[string]any)
				data, _ := first["data"].(string)
				raw, err := hexutil.Decode(data)
				if err != nil {
					return fmt.Errorf("log data: %w", err)
				}
				got, err := art.DecodeValueChanged(raw)
				if err != nil {
					return err
				}
				if want := fmt.Sprint(e.SetValue); got != want {
					return fmt.Errorf("newValue %s, want %s", got, want)
				}
				return nil
			},
		}),
	}
}

// captureContract records the created contract's address from the deploy receipt.
func (c *catalog) captureContract(rc *conformance.RunContext, receipt normalize.Value) error {
	field, _ := receipt.Field("contractAddress")
	got, ok := field.(string)
	if !ok {
		return fmt.Errorf("deploy receipt has no contract address")
	}
	want := c.env.Account.ContractAddress(c.deployNonce)
	if !common.IsHexAddress(got) || common.HexToAddress(got) != want {
		return fmt.Errorf("contract created at %s, want %s", got, want.Hex())
	}
	return rc.Set(conformance.KeyContractAddress, strings.ToLower(got))
}

func (c *catalog) postMutation() []*conformance.Check {
	e, art := c.env.Expect, c.env.Artifact
	post := func(chk *conformance.Check) *conformance.Check {
		chk.Stage = conformance.StagePostMutation
		if chk.Paths == nil {
			chk.Paths = c.paths(chk.Operation)
		}
		return chk
	}
	fromRC := func(key conformance.Key, extra ...any) conformance.ArgsFunc {
		return func(_ context.Context, rc *conformance.RunContext) ([]any, error) {
			v, err := rc.GetString(key)
			if err != nil {
				return nil, err
			}
			return append([]any{v}, extra...), nil
		}
	}
	checks := []*conformance.Check{
		post(&conformance.Check{
			Name:      "contract code",
			Operation: "eth_getCode",
			Kind:      normalize.Code,
			Args:      fromRC(conformance.KeyContractAddress, "latest"),
			Assert: func(_ *conformance.RunContext, vals []normalize.Value) error {
				if vals[0].Bytes == "0x" {
					return errors.New("contract has no code")
				}
				return equalsHex(hexutil.Encode(art.DeployedBytecode), vals[0])
			},
		}),
		post(&conformance.Check{
			Name:      "test account code at genesis",
			Operation: "eth_getCode",
			Kind:      normalize.Code,
			Args:      params(e.TestAccount.Hex(), "earliest"),
			Assert:    equalsBytes("0x"),
		}),
		post(&conformance.Check{
			Name:      "empty account code",
			Operation: "eth_getCode",
			Kind:      normalize.Code,
			Args:      params("0x0000000000000000000000000000000000000001", "latest"),
			Assert:    equalsBytes("0x"),
		}),
		post(&conformance.Check{
			Name:      "block by number",
			Operation: "eth_getBlockByNumber",
			Kind:      normalize.Opaque,
			Compare:   blockCompare,
			Args:      params("0x2", false),
			Assert:    present("block 2"),
			Capture: func(rc *conformance.RunContext, v normalize.Value) error {
				return rc.Set(keyBlockTwo, v)
			},
		}),
		post(&conformance.Check{
			Name:      "block by hash",
			Operation: "eth_getBlockByHash",
			Kind:      normalize.Opaque,
			Compare:   blockCompare,
			Args:      fromRC(conformance.BlockHashKey(2), false),
			Assert:    sameAs(keyBlockTwo, blockCompare),
		}),
		post(&conformance.Check{
			Name:      "block with transactions",
			Operation: "eth_getBlockByNumber",
			Kind:      normalize.Opaque,
			Compare:   normalize.Compare{Ignore: []string{"size", "totalDifficulty", "transactions"}},
			Args:      params("0x2", true),
			Assert: func(_ *conformance.RunContext, vals []normalize.Value) error {
				for _, v := range vals {
					field, _ := v.Field("transactions")
					txs, _ := field.([]any)
					if len(txs) != 1 {
						return fmt.Errorf("block 2 holds %d transactions, want 1", len(txs))
					}
					if _, ok := txs[0].(map[string]any); !ok {
						return fmt.Errorf("transaction is %T, want an object", txs[0])
					}
				}
				return nil
			},
		}),
		post(&conformance.Check{
			Name:      "set transaction",
			Operation: "eth_getTransactionByHash",
			Kind:      normalize.Opaque,
			Compare:   txCompare,
			Args:      fromRC(conformance.KeySetTx),
			Assert:    hasFields(txFields...),
		}),
	}
	// The unknown hashes alternate between transaction and receipt lookups.
	for i, h := range e.UnknownTxHashes {
		name, method := "unknown transaction", "eth_getTransactionByHash"
		if i%2 == 1 {
			name, method = "unknown receipt", "eth_getTransactionReceipt"
		}
		if i > 1 {
			name = fmt.Sprintf("%s %d", name, i/2+1)
		}
		checks = append(checks, post(&conformance.Check{
			Name:         name,
			Operation:    method,
			Kind:         normalize.Opaque,
			Args:         params(h.Hex()),
			ExpectAbsent: true,
		}))
	}
	checks = append(checks,
		post(&conformance.Check{
			Name:      "set receipt",
			Operation: "eth_getTransactionReceipt",
			Kind:      normalize.Opaque,
			Compare:   receiptCompare,
			Args:      fromRC(conformance.KeySetTx),
			Assert:    hasFields(receiptFields...),
		}),
		post(&conformance.Check{
			Name:      "contract storage",
			Operation: "eth_getStorageAt",
			Kind:      normalize.ByteString,
			Args:      fromRC(conformance.KeyContractAddress, "0x0", "latest"),
			Assert:    equalsWord(e.SetValue),
		}),
		post(&conformance.Check{
			Name:      "logs by address",
			Operation: "eth_getLogs",
			Kind:      normalize.Opaque,
			Args: func(_ context.Context, rc *conformance.RunContext) ([]any, error) {
				addr, err := rc.GetString(conformance.KeyContractAddress)
				if err != nil {
					return nil, err
				}
				return []any{map[string]any{"fromBlock": "0x0", "toBlock": "latest", "address": addr}}, nil
			},
			Assert: func(_ *conformance.RunContext, vals []normalize.Value) error {
				if vals[0].Len() < 1 {
					return fmt.Errorf("no logs for the contract: %s", vals[0])
				}
				return nil
			},
		}),
		post(&conformance.Check{
			Name:      "sha3",
			Operation: "web3_sha3",
			Kind:      normalize.ByteString,
			Paths:     c.paths("web3_sha3", clients.RawID, clients.ProviderID, clients.LocalID),
			Args:      params(e.Sha3Input),
			Assert:    equalsBytes(e.Sha3Output),
		}),
		post(&conformance.Check{
			Name:      "coinbase",
			Operation: "eth_coinbase",
			Kind:      normalize.ByteString,
			Assert:    equalsBytes(strings.ToLower(e.Coinbase.Hex())),
		}),
	)
	return checks
}

func equalsUint(want uint64) conformance.AssertFunc {
	return equalsInt(new(big.Int).SetUint64(want))
}

func equalsInt(want *big.Int) conformance.AssertFunc {
	return func(_ *conformance.RunContext, vals []normalize.Value) error {
		if vals[0].Absent || vals[0].Int.Cmp(want) != 0 {
			return fmt.Errorf("got %s, want %s", vals[0], want)
		}
		return nil
	}
}

func atLeast(floor uint64) conformance.AssertFunc {
	return func(_ *conformance.RunContext, vals []normalize.Value) error {
		if vals[0].Absent || vals[0].Int.Cmp(new(big.Int).SetUint64(floor)) < 0 {
			return fmt.Errorf("got %s, want at least %d", vals[0], floor)
		}
		return nil
	}
}

func isTrue(_ *conformance.RunContext, vals []normalize.Value) error {
	if vals[0].Absent || !vals[0].Bool {
		return fmt.Errorf("got %s, want true", vals[0])
	}
	return nil
}

func equalsBytes(want string) conformance.AssertFunc {
	return func(_ *conformance.RunContext, vals []normalize.Value) error {
		return equalsHex(want, vals[0])
	}
}

func equalsWord(v uint64) conformance.AssertFunc {
	return equalsBytes(fixture.Word(v))
}

func equalsHex(want string, got normalize.Value) error {
	if got.Absent || got.Bytes != strings.ToLower(want) {
		return fmt.Errorf("got %s, want %s", got, want)
	}
	return nil
}

func present(what string) conformance.AssertFunc {
	return func(_ *conformance.RunContext, vals []normalize.Value) error {
		if vals[0].Absent {
			return fmt.Errorf("%s not found", what)
		}
		return nil
	}
}

// sameAs compares the answer with a value captured by an earlier check.
func sameAs(key conformance.Key, cmp normalize.Compare) conformance.AssertFunc {
	return func(rc *conformance.RunContext, vals []normalize.Value) error {
		want, err := conformance.Lookup[normalize.Value](rc, key)
		if err != nil {
			return err
		}
		if !normalize.Equal(want, vals[0], cmp) {
			return fmt.Errorf("differs from %s:\n%s", key, normalize.Diff(want, vals[0], cmp))
		}
		return nil
	}
}

// hasFields requires the first path's object to carry every named field.
func hasFields(fields ...string) conformance.AssertFunc {
	return func(_ *conformance.RunContext, vals []normalize.Value) error {
		if vals[0].Absent {
			return errors.New("not found")
		}
		var missing []string
		for _, f := range fields {
			if _, ok := vals[0].Field(f); !ok {
				missing = append(missing, f)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing fields %s", strings.Join(missing, ", "))
		}
		return nil
	}
}

func syncState(_ *conformance.RunContext, vals []normalize.Value) error {
	if b, ok := vals[0].Tree.(bool); ok {
		if b {
			return errors.New("syncing is true, want false or a progress object")
		}
		return nil
	}
	for _, f := range []string{"currentBlock", "highestBlock", "startingBlock"} {
		field, ok := vals[0].Field(f)
		if !ok {
			return fmt.Errorf("progress lacks %s", f)
		}
		n, err := normalize.Normalize(field, normalize.Quantity)
		if err != nil {
			return fmt.Errorf("progress %s: %w", f, err)
		}
		if n.Absent || n.Int.Sign() <= 0 {
			return fmt.Errorf("progress %s is %s, want positive", f, n)
		}
	}
	return nil
}
