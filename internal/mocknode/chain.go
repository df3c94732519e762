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
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	setSelector  = []byte{0x60, 0xfe, 0x47, 0xb1}
	getSelector  = []byte{0x6d, 0x4c, 0xe6, 0x3c}
	valueChanged = crypto.Keccak256Hash([]byte("ValueChanged(uint256)"))
)

const (
	blockGasLimit = 6_800_000
	genesisTime   = 1_700_000_000
)

// seal builds a block on top of the current head. RskJ hashes its own header
// encoding, so the block hash is derived apart from the geth header hash.
func (n *Node) seal(txs []*types.Transaction, receipts []*types.Receipt, froms []common.Address) *block {
	number := uint64(len(n.blocks))
	header := &types.Header{
		UncleHash:   types.EmptyUncleHash,
		Coinbase:    n.cfg.Coinbase,
		Root:        crypto.Keccak256Hash([]byte(fmt.Sprintf("state %d", number))),
		TxHash:      types.EmptyTxsHash,
		ReceiptHash: types.EmptyReceiptsHash,
		Difficulty:  big.NewInt(1),
		Number:      new(big.Int).SetUint64(number),
		GasLimit:    blockGasLimit,
		Time:        genesisTime + number*10,
		Extra:       []byte{},
	}
	if number > 0 {
		header.ParentHash = n.blocks[number-1].hash
	}
	fees := new(big.Int)
	if len(txs) > 0 {
		var txRoot, rcptRoot []byte
		for i, tx := range txs {
			txRoot = append(txRoot, tx.Hash().Bytes()...)
			rcptRoot = append(rcptRoot, receipts[i].TxHash.Bytes()...)
			header.GasUsed += receipts[i].GasUsed
			fees.Add(fees, new(big.Int).Mul(tx.GasPrice(), new(big.Int).SetUint64(receipts[i].GasUsed)))
			for _, l := range receipts[i].Logs {
				header.Bloom.Add(l.Address.Bytes())
				for _, topic := range l.Topics {
					header.Bloom.Add(topic.Bytes())
				}
			}
		}
		header.TxHash = crypto.Keccak256Hash(txRoot)
		header.ReceiptHash = crypto.Keccak256Hash(append(rcptRoot, 'r'))
	}
	hash := crypto.Keccak256Hash([]byte("rsk"), header.Hash().Bytes())
	b := &block{hash: hash, header: header, txs: txs, receipts: receipts, fees: fees}
	var logIndex uint
	for i, r := range receipts {
		r.BlockHash = hash
		r.BlockNumber = new(big.Int).SetUint64(number)
		r.TransactionIndex = uint(i)
		for _, l := range r.Logs {
			l.BlockNumber = number
			l.BlockHash = hash
			l.TxIndex = uint(i)
			l.Index = logIndex
			logIndex++
		}
		entry := n.txs[txs[i].Hash()]
		if entry == nil {
			entry = &txEntry{tx: txs[i], from: froms[i]}
			n.txs[txs[i].Hash()] = entry
		}
		entry.block, entry.index, entry.receipt = b, i, r
	}
	return b
}

// mine must be called with n.mu held.
func (n *Node) mine() {
	txs := append([]*types.Transaction(nil), n.pending...)
	n.pending = nil
	froms := make([]common.Address, 0, len(txs)+1)
	for _, tx := range txs {
		froms = append(froms, n.txs[tx.Hash()].from)
	}
	txs = append(txs, n.remascTx())
	froms = append(froms, common.Address{})

	receipts := make([]*types.Receipt, len(txs))
	var cumulative uint64
	for i, tx := range txs {
		r := n.apply(tx, froms[i])
		cumulative += r.GasUsed
		r.CumulativeGasUsed = cumulative
		receipts[i] = r
	}
	n.blocks = append(n.blocks, n.seal(txs, receipts, froms))
}

// remascTx is the unsigned transaction RskJ appends to every block. It is sent
// from the zero address with a zero signature and its nonce is the parent number.
func (n *Node) remascTx() *types.Transaction {
	return types.NewTx(&types.LegacyTx{
		Nonce:    uint64(len(n.blocks) - 1),
		To:       &Remasc,
		Gas:      0,
		GasPrice: big.NewInt(0),
		Value:    big.NewInt(0),
	})
}

// apply executes tx against the simulated state and returns its receipt without
// block coordinates.
func (n *Node) apply(tx *types.Transaction, from common.Address) *types.Receipt {
	r := &types.Receipt{
		Type:              tx.Type(),
		Status:            types.ReceiptStatusSuccessful,
		TxHash:            tx.Hash(),
		GasUsed:           21000,
		EffectiveGasPrice: tx.GasPrice(),
		Logs:              []*types.Log{},
	}
	switch {
	case tx.To() == nil:
		addr := crypto.CreateAddress(from, tx.Nonce())
		n.contracts[addr] = &contract{
			created: uint64(len(n.blocks)),
			code:    common.CopyBytes(n.cfg.Runtime),
			storage: map[common.Hash]common.Hash{
				{}: common.BigToHash(new(big.Int).SetUint64(n.cfg.InitialValue)),
			},
		}
		r.ContractAddress = addr
		r.GasUsed = 120_000
	case n.contracts[*tx.To()] != nil:
		c := n.contracts[*tx.To()]
		if bytes.HasPrefix(tx.Data(), setSelector) && len(tx.Data()) == 4+32 {
			word := common.BytesToHash(tx.Data()[4:])
			c.storage[common.Hash{}] = word
			r.Logs = append(r.Logs, &types.Log{
				Address: *tx.To(),
				Topics:  []common.Hash{valueChanged},
				Data:    word.Bytes(),
				TxHash:  tx.Hash(),
			})
			r.GasUsed = 27_000
		}
	}
	for _, l := range r.Logs {
		r.Bloom.Add(l.Address.Bytes())
		for _, topic := range l.Topics {
			r.Bloom.Add(topic.Bytes())
		}
	}
	return r
}

// call runs a read-only message against the contract at to.
func (n *Node) call(to *common.Address, data []byte) []byte {
	if to == nil {
		return nil
	}
	c := n.contracts[*to]
	if c == nil {
		return nil
	}
	if bytes.HasPrefix(data, getSelector) {
		v := c.storage[common.Hash{}]
		return v.Bytes()
	}
	return nil
}

// submit validates and queues a signed transaction.
func (n *Node) submit(raw []byte) (common.Hash, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, &rpcError{code: -32602, msg: fmt.Sprintf("invalid transaction: %v", err)}
	}
	if tx.Protected() && tx.ChainId().Cmp(n.chainID) != 0 {
		return common.Hash{}, &rpcError{code: -32010, msg: "invalid chain id"}
	}
	from, err := types.Sender(n.signer, tx)
	if err != nil {
		return common.Hash{}, &rpcError{code: -32010, msg: fmt.Sprintf("invalid signature: %v", err)}
	}
	if _, known := n.txs[tx.Hash()]; known {
		return common.Hash{}, &rpcError{code: -32010, msg: "transaction already known"}
	}
	if tx.Nonce() != n.nonces[from] {
		return common.Hash{}, &rpcError{code: -32010, msg: fmt.Sprintf("invalid nonce %d, want %d", tx.Nonce(), n.nonces[from])}
	}
	n.nonces[from]++
	n.txs[tx.Hash()] = &txEntry{tx: tx, from: from}
	n.pending = append(n.pending, tx)
	if n.cfg.AutoMine {
		n.mine()
	}
	return tx.Hash(), nil
}

// blockJSON renders a block the way RskJ answers eth_getBlockBy*.
func (n *Node) blockJSON(b *block, full bool) (map[string]any, error) {
	out, err := object(b.header)
	if err != nil {
		return nil, err
	}
	delete(out, "mixHash")
	delete(out, "nonce")
	txs := make([]any, 0, len(b.txs))
	for i, tx := range b.txs {
		if !full {
			txs = append(txs, tx.Hash())
			continue
		}
		t, err := n.txJSON(n.txs[b.txs[i].Hash()])
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	number := b.header.Number.Uint64()
	out["hash"] = b.hash
	out["transactions"] = txs
	out["uncles"] = []any{}
	out["size"] = hexutil.Uint64(b.header.Size())
	out["minimumGasPrice"] = "0x0"
	out["paidFees"] = (*hexutil.Big)(b.fees)
	out["cumulativeDifficulty"] = hexutil.Uint64(number + 1)
	out["hashForMergedMining"] = crypto.Keccak256Hash(b.hash.Bytes(), []byte("merged mining"))
	out["totalDifficulty"] = hexutil.Uint64(number + 1)
	return out, nil
}

func (n *Node) txJSON(e *txEntry) (map[string]any, error) {
	out, err := object(e.tx)
	if err != nil {
		return nil, err
	}
	out["from"] = e.from
	out["blockHash"] = nil
	out["blockNumber"] = nil
	out["transactionIndex"] = nil
	if e.block != nil {
		out["blockHash"] = e.block.hash
		out["blockNumber"] = (*hexutil.Big)(e.block.header.Number)
		out["transactionIndex"] = hexutil.Uint64(e.index)
	}
	return out, nil
}

func (n *Node) receiptJSON(e *txEntry) (map[string]any, error) {
	out, err := object(e.receipt)
	if err != nil {
		return nil, err
	}
	out["from"] = e.from
	out["to"] = e.tx.To()
	if e.receipt.ContractAddress == (common.Address{}) {
		out["contractAddress"] = nil
	}
	out["logs"] = logsJSON(e.receipt.Logs)
	return out, nil
}

// logsJSON renders logs without the removed and blockTimestamp fields geth adds.
func logsJSON(logs []*types.Log) []map[string]any {
	out := make([]map[string]any, 0, len(logs))
	for _, l := range logs {
		out = append(out, map[string]any{
			"address":          l.Address,
			"topics":           l.Topics,
			"data":             hexutil.Bytes(l.Data),
			"blockNumber":      hexutil.Uint64(l.BlockNumber),
			"blockHash":        l.BlockHash,
			"transactionHash":  l.TxHash,
			"transactionIndex": hexutil.Uint(l.TxIndex),
			"logIndex":         hexutil.Uint(l.Index),
		})
	}
	return out
}

func object(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
