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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/rsksmart/rpcsmoke/jsonrpc"
)

// Provider reaches every operation through go-ethereum's generic rpc.Client.
type Provider struct {
	c *rpc.Client
}

// DialProvider connects an rpc.Client to url. A nil httpClient uses the default one.
func DialProvider(ctx context.Context, url string, httpClient *http.Client) (*Provider, error) {
	var opts []rpc.ClientOption
	if httpClient != nil {
		opts = append(opts, rpc.WithHTTPClient(httpClient))
	}
	c, err := rpc.DialOptions(ctx, url, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial provider: %w", err)
	}
	return &Provider{c: c}, nil
}


func (p *Provider) ID() string { return ProviderID }

func (p *Provider) Invoker(method string) (Invoke, bool) {
	return func(ctx context.Context, params []any) (any, error) {
		var out json.RawMessage
		if err := p.c.CallContext(ctx, &out, method, params...); err != nil {
			return nil, jsonrpc.Classify(method, err)
		}
		if len(out) == 0 || bytes.Equal(out, []byte("null")) {
			return nil, nil
		}
		v, err := jsonrpc.Decode(out)
		if err != nil {
			return nil, &jsonrpc.TransportError{Code: jsonrpc.CodeMalformedBody, Op: method, Err: err}
		}
		return v, nil
	}, true
}

// RPC exposes the underlying client, e.g. to build an ethclient on top of it.
func (p *Provider) RPC() *rpc.Client { return p.c }

func (p *Provider) Close() { p.c.Close() }
