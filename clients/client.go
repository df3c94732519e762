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

// Package clients provides the independent access paths through which a JSON-RPC
// operation is reached: the raw transport, go-ethereum's rpc.Client, go-ethereum's
// ethclient and local computation.
package clients

import (
	"context"
	"slices"
)

// Invoke performs one operation with positional params and returns the decoded
// result. A JSON null result is returned as nil.
type Invoke func(ctx context.Context, params []any) (any, error)

// Client is one integration able to reach some or all operations.
type Client interface {
	ID() string
	// Invoker returns the path to method, or false when the client cannot reach it.
	Invoker(method string) (Invoke, bool)
}

// Path is one way of reaching an operation.
type Path struct {
	ID     string
	Invoke Invoke
}

// Paths collects the paths to method offered by cs, in order. When only is not
// empty, clients whose ID is not listed are skipped.
func Paths(cs []Client, method string, only ...string) []Path {
	var paths []Path
	for _, c := range cs {
		if len(only) > 0 && !slices.Contains(only, c.ID()) {
			continue
		}
		if inv, ok := c.Invoker(method); ok {
			paths = append(paths, Path{ID: c.ID(), Invoke: inv})
		}
	}
	return paths
}

// Client identifiers.
const (
	RawID      = "raw"
	ProviderID = "provider"
	SDKID      = "sdk"
	LocalID    = "local"
)
