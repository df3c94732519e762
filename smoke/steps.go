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
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/rsksmart/rpcsmoke/clients"
	"github.com/rsksmart/rpcsmoke/conformance"
	"github.com/rsksmart/rpcsmoke/jsonrpc"
	"github.com/rsksmart/rpcsmoke/normalize"
)

// call invokes method through the first client that reaches it. Procedures use
// it for calls that are not themselves under check.
func (c *catalog) call(ctx context.Context, method string, params ...any) (any, error) {
	paths := clients.Paths(c.env.Clients, method)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no access path reaches %s", method)
	}
	return paths[0].Invoke(ctx, params)
}

func (c *catalog) quantity(ctx context.Context, method string, params ...any) (*big.Int, error) {
	raw, err := c.call(ctx, method, params...)
	if err != nil {
		return nil, err
	}
	v, err := normalize.Normalize(raw, normalize.Quantity)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	if v.Absent {
		return nil, fmt.Errorf("%s: null result", method)
	}
	return v.Int, nil
}

// mineTo calls evm_mine until the head reaches the minimum block.
func (c *catalog) mineTo(ctx context.Context, _ *conformance.RunContext) (string, error) {
	mined := 0
	for {
		head, err := c.quantity(ctx, "eth_blockNumber")
		if err != nil {
			return "", err
		}
		if head.Uint64() >= c.env.MinBlock {
			return fmt.Sprintf("head at block %d after mining %d", head.Uint64(), mined), nil
		}
		if _, err := c.call(ctx, "evm_mine"); err != nil {
			return "", fmt.Errorf("evm_mine: %w", err)
		}
		mined++
		log.Debug("Mined block", "head", head.Uint64()+1, "target", c.env.MinBlock)
	}
}

// recordBlockHashes stores the hashes of the blocks later checks look up by hash.
func (c *catalog) recordBlockHashes(ctx context.Context, rc *conformance.RunContext) (string, error) {
	for _, n := range recordedBlocks {
		raw, err := c.call(ctx, "eth_getBlockByNumber", hexNumber(n), false)
		if err != nil {
			return "", err
		}
		v, err := normalize.Normalize(raw, normalize.Opaque)
		if err != nil {
			return "", err
		}
		hash, ok := v.Field("hash")
		if !ok {
			return "", fmt.Errorf("block %d not found", n)
		}
		if err := rc.Set(conformance.BlockHashKey(n), hash); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("recorded blocks %v", recordedBlocks), nil
}

// waitForInclusion polls the receipt of the transaction stored under key until
// the node includes it, optionally mining a block on each poll. The receipt is
// handed to capture.
func (c *catalog) waitForInclusion(key conformance.Key, capture func(rc *conformance.RunContext, receipt normalize.Value) error) conformance.StepFunc {
	return func(ctx context.Context, rc *conformance.RunContext) (string, error) {
		hash, err := rc.GetString(key)
		if err != nil {
			return "", err
		}
		start := time.Now()
		ticker := time.NewTicker(c.env.Inclusion.Interval)
		defer ticker.Stop()
		for polls := 1; ; polls++ {
			receipt, err := c.receipt(ctx, hash)
			switch {
			case err != nil && !jsonrpc.IsTransient(err):
				return "", err
			case err != nil:
				log.Warn("Receipt poll failed", "tx", hash, "err", err)
			case !receipt.Absent:
				status, _ := receipt.Field("status")
				if s, err := normalize.Normalize(status, normalize.Quantity); err != nil || s.Absent || s.Int.Sign() == 0 {
					return "", fmt.Errorf("transaction %s failed with status %v", hash, status)
				}
				if err := capture(rc, receipt); err != nil {
					return "", err
				}
				number, _ := receipt.Field("blockNumber")
				log.Info("Transaction included", "tx", hash, "polls", polls, "elapsed", time.Since(start))
				return fmt.Sprintf("%s included in block %v", hash, number), nil
			}
			if c.env.Inclusion.Mine {
				if _, err := c.call(ctx, "evm_mine"); err != nil {
					log.Warn("Mining during inclusion wait failed", "err", err)
				}
			}
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("transaction %s not included after %d polls: %w", hash, polls, ctx.Err())
			case <-ticker.C:
			}
		}
	}
}

func (c *catalog) receipt(ctx context.Context, hash string) (normalize.Value, error) {
	raw, err := c.call(ctx, "eth_getTransactionReceipt", hash)
	if err != nil {
		return normalize.Value{}, err
	}
	return normalize.Normalize(raw, normalize.Opaque)
}

// nonce returns the next nonce of the signing account.
func (c *catalog) nonce(ctx context.Context) (uint64, error) {
	n, err := c.quantity(ctx, "eth_getTransactionCount", c.env.Account.Address.Hex(), "pending")
	if err != nil {
		return 0, fmt.Errorf("nonce of %s: %w", c.env.Account.Address.Hex(), err)
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("nonce %v out of range", n)
	}
	return n.Uint64(), nil
}

func hexNumber(n uint64) string {
	return fmt.Sprintf("0x%x", n)
}
