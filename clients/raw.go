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

	"github.com/rsksmart/rpcsmoke/jsonrpc"
)

// Raw reaches every operation through the bare JSON-RPC transport.
type Raw struct {
	t *jsonrpc.Transport
}

func NewRaw(t *jsonrpc.Transport) *Raw { return &Raw{t: t} }

func (r *Raw) ID() string { return RawID }

func (r *Raw) Invoker(method string) (Invoke, bool) {
	return func(ctx context.Context, params []any) (any, error) {
		return r.t.Call(ctx, method, params...)
	}, true
}
