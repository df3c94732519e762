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

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/rsksmart/rpcsmoke/jsonrpc"
)

// waitForRPC polls web3_clientVersion until the node answers or timeout passes.
// Only transport failures are waited out; any other error is returned at once.
func waitForRPC(ctx context.Context, t *jsonrpc.Transport, timeout, interval time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		v, err := t.Call(ctx, "web3_clientVersion")
		if err == nil {
			if version, ok := v.(string); ok && version != "" {
				return version, nil
			}
			return "", fmt.Errorf("unexpected client version %v", v)
		}
		var te *jsonrpc.TransportError
		if !errors.As(err, &te) {
			return "", err
		}
		log.Debug("Waiting for node", "endpoint", t.URL(), "attempt", attempt, "err", err)
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("node at %s not reachable within %v: %w", t.URL(), timeout, err)
		case <-ticker.C:
		}
	}
}
