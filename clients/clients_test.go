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
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/h2non/gock"
	"github.com/stretchr/testify/require"

	"github.com/rsksmart/rpcsmoke/internal/mocknode"
	"github.com/rsksmart/rpcsmoke/jsonrpc"
	"github.com/rsksmart/rpcsmoke/normalize"
)

func newClients(t *testing.T, url string) []Client {
	t.Helper()
	tr, err := jsonrpc.NewTransport(jsonrpc.Config{URL: url, Timeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(tr.Close)

	ctx := context.Background()
	provider, err := DialProvider(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(provider.Close)

	sdkConn, err := DialProvider(ctx, url, nil)
	require.NoError(t, err)
	sdk := NewSDK(sdkConn.RPC())
	t.Cleanup(sdk.Close)

	return []Client{NewRaw(tr), provider, sdk, NewLocal()}
}

func invokeAll(t *testing.T, cs []Client, method string, kind normalize.Kind, params ...any) []normalize.Value {
	t.Helper()
	var out []normalize.Value
	for _, p := range Paths(cs, method) {
		raw, err := p.Invoke(context.Background(), params)
		require.NoError(t, err, "%s via %s", method, p.ID)
		v, err := normalize.Normalize(raw, kind)
		require.NoError(t, err, "%s via %s", method, p.ID)
		out = append(out, v)
	}
	return out
}

func requireAgree(t *testing.T, vals []normalize.Value, c normalize.Compare) {
	t.Helper()
	require.NotEmpty(t, vals)
	for i := 1; i < len(vals); i++ {
		require.True(t, normalize.Equal(vals[0], vals[i], c), "path %d differs: %s", i, normalize.Diff(vals[0], vals[i], c))
	}
}

func TestPathsAgreeOnScalars(t *testing.T) {
	node := mocknode.Start(t, mocknode.DefaultConfig())
	node.Mine()
	node.Mine()
	cs := newClients(t, node.URL)

	tests := []struct {
		method string
		kind   normalize.Kind
		params []any
		paths  int
	}{
		{"eth_chainId", normalize.Quantity, nil, 3},
		{"net_version", normalize.Quantity, nil, 3},
		{"eth_blockNumber", normalize.Quantity, nil, 3},
		{"eth_gasPrice", normalize.Quantity, nil, 3},
		{"net_peerCount", normalize.Quantity, nil, 3},
		{"eth_getBalance", normalize.Quantity, []any{mocknode.TestAccount.Hex(), "latest"}, 3},
		{"eth_getBalance", normalize.Quantity, []any{mocknode.UnusedAccount.Hex(), "0x0"}, 3},
		{"eth_getTransactionCount", normalize.Quantity, []any{mocknode.TestAccount.Hex(), "latest"}, 3},
		{"eth_getCode", normalize.Code, []any{mocknode.TestAccount.Hex(), "earliest"}, 3},
		{"net_listening", normalize.Boolean, nil, 2},
		{"web3_sha3", normalize.ByteString, []any{"0x323334"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			vals := invokeAll(t, cs, tt.method, tt.kind, tt.params...)
			require.Len(t, vals, tt.paths)
			requireAgree(t, vals, normalize.Compare{})
		})
	}
}

func TestSyncingAgrees(t *testing.T) {
	node := mocknode.Start(t, mocknode.DefaultConfig())
	cs := newClients(t, node.URL)
	vals := invokeAll(t, cs, "eth_syncing", normalize.Opaque)
	require.Len(t, vals, 3)
	requireAgree(t, vals, normalize.Compare{})
	require.Equal(t, false, vals[0].Tree)
}

func TestPathsAgreeOnBlocks(t *testing.T) {
	node := mocknode.Start(t, mocknode.DefaultConfig())
	for i := 0; i < 3; i++ {
		node.Mine()
	}
	cs := newClients(t, node.URL)
	cmp := normalize.Compare{Ignore: []string{"size", "totalDifficulty"}}

	byNumber := invokeAll(t, cs, "eth_getBlockByNumber", normalize.Opaque, "0x2", false)
	require.Len(t, byNumber, 3)
	requireAgree(t, byNumber, cmp)

	hash := node.BlockHash(2).Hex()
	byHash := invokeAll(t, cs, "eth_getBlockByHash", normalize.Opaque, hash, false)
	requireAgree(t, append(byHash, byNumber[0]), cmp)

	full := invokeAll(t, cs, "eth_getBlockByNumber", normalize.Opaque, "0x2", true)
	txs, ok := full[0].Field("transactions")
	require.True(t, ok)
	require.Len(t, txs, 1)

	txCmp := normalize.Compare{Only: []string{"hash", "nonce", "from", "to", "value", "input", "gas", "gasPrice", "v", "r", "s"}}
	tx := invokeAll(t, cs, "eth_getTransactionByBlockHashAndIndex", normalize.Opaque, hash, "0x0")
	require.Len(t, tx, 3)
	requireAgree(t, tx, txCmp)
}

func TestUnknownObjectsAreAbsent(t *testing.T) {
	node := mocknode.Start(t, mocknode.DefaultConfig())
	cs := newClients(t, node.URL)

	unknown := "0x5eae996aa609c0b9db434c7a2411437fefc3ff16046b71ad102453cfdeadbeef"
	for _, method := range []string{"eth_getTransactionByHash", "eth_getTransactionReceipt"} {
		vals := invokeAll(t, cs, method, normalize.Opaque, unknown)
		require.Len(t, vals, 3)
		for _, v := range vals {
			require.True(t, v.Absent, method)
		}
	}
	vals := invokeAll(t, cs, "eth_getBlockByHash", normalize.Opaque, "0xdeadbeef0fb9424aad2417321cac62915f6c83827f4d3c8c8c06900a61c4236c", false)
	for _, v := range vals {
		require.True(t, v.Absent)
	}
}

func TestLocalSha3(t *testing.T) {
	inv, ok := NewLocal().Invoker("web3_sha3")
	require.True(t, ok)
	got, err := inv(context.Background(), []any{hexutil.Encode([]byte("234"))})
	require.NoError(t, err)
	require.Equal(t, "0xc1912fee45d61c87cc5ea59dae311904cd86b84fee17cc96966216f811ce6a79", got)

	_, err = inv(context.Background(), []any{"234"})
	require.Error(t, err)
	_, ok = NewLocal().Invoker("eth_chainId")
	require.False(t, ok)
}

func TestPathsFilterByID(t *testing.T) {
	node := mocknode.Start(t, mocknode.DefaultConfig())
	cs := newClients(t, node.URL)

	paths := Paths(cs, "web3_sha3", RawID, LocalID)
	require.Len(t, paths, 2)
	require.Equal(t, RawID, paths[0].ID)
	require.Equal(t, LocalID, paths[1].ID)

	require.Len(t, Paths(cs, "eth_getCompilers"), 2)
	require.Empty(t, Paths(cs, "eth_chainId", "nope"))
}

func TestSDKRejectsMalformedParams(t *testing.T) {
	node := mocknode.Start(t, mocknode.DefaultConfig())
	cs := newClients(t, node.URL)
	inv, ok := cs[2].Invoker("eth_getBalance")
	require.True(t, ok)

	for _, params := range [][]any{nil, {"not-an-address", "latest"}, {mocknode.TestAccount.Hex(), "0xzz"}, {42}} {
		_, err := inv(context.Background(), params)
		require.Error(t, err, "%v", params)
	}
}

func TestProviderErrorsAreClassified(t *testing.T) {
	defer gock.Off()
	httpClient := &http.Client{Transport: &http.Transport{}}
	gock.InterceptClient(httpClient)
	defer gock.RestoreClient(httpClient)

	gock.New("http://node.test/").Post("/").Reply(http.StatusServiceUnavailable).BodyString("unavailable")
	gock.New("http://node.test/").Post("/").Reply(http.StatusInternalServerError).
		JSON(map[string]any{"jsonrpc": "2.0", "id": 1, "error": map[string]any{"code": -32601, "message": "method not found"}})
	gock.New("http://node.test/").Post("/").Reply(http.StatusOK).BodyString("<html>")

	provider, err := DialProvider(context.Background(), "http://node.test/", httpClient)
	require.NoError(t, err)
	defer provider.Close()
	inv, _ := provider.Invoker("eth_chainId")

	_, err = inv(context.Background(), nil)
	var te *jsonrpc.TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, jsonrpc.CodeHTTPStatus, te.Code)
	require.Equal(t, http.StatusServiceUnavailable, te.Status)
	require.True(t, jsonrpc.IsTransient(err))

	_, err = inv(context.Background(), nil)
	var pe *jsonrpc.ProtocolError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, -32601, pe.Code)

	_, err = inv(context.Background(), nil)
	require.ErrorAs(t, err, &te)
	require.Equal(t, jsonrpc.CodeMalformedBody, te.Code)

	require.True(t, gock.IsDone())
}

// rskBlock is block 1 the way RskJ answers it: merged mining and fee fields geth
// does not know, a hash geth would not recompute and the unsigned REMASC
// transaction sent from the zero address.
func rskBlock() map[string]any {
	return map[string]any{
		"number":                                 "0x1",
		"hash":                                   "0x0b0aa0d4a8d2b9e07a6d8b5f1c3a1e0d2c4f6a8b9c7d5e3f1a2b4c6d8e0f1a2b",
		"parentHash":                             "0xcabb7fbe88cd6d922042a32ffc08ce8b1fbb37d650b9d4e7dbfe2a7469adfa42",
		"sha3Uncles":                             "0x1dcc4de8dec75d7aab85b567b6ccd41ad312451b948a7413f0a142fd40d49347",
		"logsBloom":                              "0x" + strings.Repeat("00", 256),
		"transactionsRoot":                       "0x39c7b2f2c1e1d1c2a0b1e8d1f2e3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0f1",
		"stateRoot":                              "0xdf5de57f3b5ef51d3bc0ab3e33e2d9b8e4c6b44f3e6a0d8a27a4f8b1c0d2e3f4",
		"receiptsRoot":                           "0x56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421",
		"miner":                                  "0xec4ddeb4380ad69b3e509baad9f158cdf4e4681d",
		"difficulty":                             "0x20000",
		"totalDifficulty":                        "0x40000",
		"cumulativeDifficulty":                   "0x20000",
		"extraData":                              "0x",
		"size":                                   "0x1e4",
		"gasLimit":                               "0x67c280",
		"gasUsed":                                "0x0",
		"timestamp":                              "0x65f1b0a0",
		"minimumGasPrice":                        "0x0",
		"paidFees":                               "0x0",
		"hashForMergedMining":                    "0x8d4f8b0e2a3c1d6e7f8091a2b3c4d5e6f708192a3b4c5d6e7f8091a2b3c4d5e6",
		"bitcoinMergedMiningHeader":              "0x00",
		"bitcoinMergedMiningCoinbaseTransaction": "0x00",
		"bitcoinMergedMiningMerkleProof":         "0x00",
		"uncles":                                 []any{},
		"transactions":                           []any{rskRemascTx()},
	}
}

func rskRemascTx() map[string]any {
	return map[string]any{
		"hash":             "0x7b3e5a4f0e4f4a1d8d2bd0ea85cf5ed0c6d9a7b8c2e1f0a9b8c7d6e5f4a3b2c1",
		"nonce":            "0x0",
		"blockHash":        "0x0b0aa0d4a8d2b9e07a6d8b5f1c3a1e0d2c4f6a8b9c7d5e3f1a2b4c6d8e0f1a2b",
		"blockNumber":      "0x1",
		"transactionIndex": "0x0",
		"from":             "0x0000000000000000000000000000000000000000",
		"to":               "0x0000000000000000000000000000000001000008",
		"gas":              "0x0",
		"gasPrice":         "0x0",
		"value":            "0x0",
		"input":            "0x",
		"v":                "0x0",
		"r":                "0x0",
		"s":                "0x0",
	}
}

func rskLog() map[string]any {
	return map[string]any{
		"address":          "0x77045e71a7a2c50903d88e564cd72fab11e82051",
		"topics":           []any{"0x93fe6d397c74fdf1402a8b72e47b68512f0510d7b98a4bc4cbdf6ac7108b3c59"},
		"data":             "0x0000000000000000000000000000000000000000000000000000000000000007",
		"blockNumber":      "0x3",
		"blockHash":        "0x2f1e5c7d3b9a8e6f4d2c0b1a9e8f7d6c5b4a3f2e1d0c9b8a7f6e5d4c3b2a1f0e",
		"transactionHash":  "0x4a6c8e0f2b4d6f8a0c2e4a6c8e0f2b4d6f8a0c2e4a6c8e0f2b4d6f8a0c2e4a6c",
		"transactionIndex": "0x0",
		"logIndex":         "0x0",
	}
}

func answer(result any) mocknode.Intercept {
	return func(id json.RawMessage) (int, []byte) {
		return http.StatusOK, mocknode.ResultBody(id, result)
	}
}

func TestPathsKeepRskShapes(t *testing.T) {
	node := mocknode.Start(t, mocknode.DefaultConfig())
	node.Intercept("eth_getBlockByNumber", answer(rskBlock()))
	node.Intercept("eth_getTransactionByHash", answer(rskRemascTx()))
	node.Intercept("eth_getLogs", answer([]any{rskLog()}))
	node.Intercept("eth_getTransactionReceipt", answer(map[string]any{
		"transactionHash":   "0x4a6c8e0f2b4d6f8a0c2e4a6c8e0f2b4d6f8a0c2e4a6c8e0f2b4d6f8a0c2e4a6c",
		"transactionIndex":  "0x0",
		"blockHash":         "0x2f1e5c7d3b9a8e6f4d2c0b1a9e8f7d6c5b4a3f2e1d0c9b8a7f6e5d4c3b2a1f0e",
		"blockNumber":       "0x3",
		"cumulativeGasUsed": "0x6978",
		"gasUsed":           "0x6978",
		"contractAddress":   nil,
		"from":              "0xcd2a3d9f938e13cd947ec05abc7fe734df8dd826",
		"to":                "0x77045e71a7a2c50903d88e564cd72fab11e82051",
		"status":            "0x1",
		"logsBloom":         "0x" + strings.Repeat("00", 256),
		"logs":              []any{rskLog()},
	}))
	cs := newClients(t, node.URL)

	block := invokeAll(t, cs, "eth_getBlockByNumber", normalize.Opaque, "0x1", true)
	require.Len(t, block, 3)
	requireAgree(t, block, normalize.Compare{})
	sdkBlock := block[2].Tree.(map[string]any)
	require.Equal(t, rskBlock()["hash"], sdkBlock["hash"])
	for _, field := range []string{"minimumGasPrice", "paidFees", "cumulativeDifficulty", "hashForMergedMining"} {
		require.Contains(t, sdkBlock, field)
	}
	remasc := sdkBlock["transactions"].([]any)[0].(map[string]any)
	require.Equal(t, "0x0000000000000000000000000000000000000000", remasc["from"])

	tx := invokeAll(t, cs, "eth_getTransactionByHash", normalize.Opaque, rskRemascTx()["hash"])
	require.Len(t, tx, 3)
	requireAgree(t, tx, normalize.Compare{})

	filter := map[string]any{"address": "0x77045e71a7a2c50903d88e564cd72fab11e82051", "fromBlock": "0x0"}
	logs := invokeAll(t, cs, "eth_getLogs", normalize.Opaque, filter)
	require.Len(t, logs, 3)
	requireAgree(t, logs, normalize.Compare{})
	sdkLog := logs[2].Tree.([]any)[0].(map[string]any)
	require.NotContains(t, sdkLog, "removed")
	require.NotContains(t, sdkLog, "blockTimestamp")

	receipt := invokeAll(t, cs, "eth_getTransactionReceipt", normalize.Opaque, rskLog()["transactionHash"])
	require.Len(t, receipt, 3)
	requireAgree(t, receipt, normalize.Compare{})
}

func TestSDKRejectsAnswersGethCannotDecode(t *testing.T) {
	node := mocknode.Start(t, mocknode.DefaultConfig())
	broken := rskBlock()
	delete(broken, "stateRoot")
	node.Intercept("eth_getBlockByNumber", answer(broken))
	cs := newClients(t, node.URL)

	inv, ok := cs[2].Invoker("eth_getBlockByNumber")
	require.True(t, ok)
	_, err := inv(context.Background(), []any{"0x1", true})
	var te *jsonrpc.TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, jsonrpc.CodeMalformedBody, te.Code)
}

func TestPathsAgreeOnRemascTransaction(t *testing.T) {
	node := mocknode.Start(t, mocknode.DefaultConfig())
	node.Mine()
	cs := newClients(t, node.URL)

	block := invokeAll(t, cs, "eth_getBlockByNumber", normalize.Opaque, "0x1", true)
	require.Len(t, block, 3)
	requireAgree(t, block, normalize.Compare{})
	hash, _ := block[2].Field("hash")
	require.Equal(t, node.BlockHash(1).Hex(), hash)

	tx := invokeAll(t, cs, "eth_getTransactionByBlockHashAndIndex", normalize.Opaque, node.BlockHash(1).Hex(), "0x0")
	require.Len(t, tx, 3)
	requireAgree(t, tx, normalize.Compare{})
	from, _ := tx[2].Field("from")
	require.Equal(t, "0x0000000000000000000000000000000000000000", from)
	to, _ := tx[2].Field("to")
	require.Equal(t, strings.ToLower(mocknode.Remasc.Hex()), to)
}
