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

// Package jsonrpc implements a minimal JSON-RPC 2.0 client over HTTP that keeps
// transport failures and node-reported errors apart.
package jsonrpc

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Version is the protocol version sent in every request.
const Version = "2.0"

// Request is a single JSON-RPC call. It is immutable once constructed.
type Request struct {
	id     int64
	method string
	params []any
}

// NewRequest copies params so later changes by the caller do not leak into the request.
func NewRequest(id int64, method string, params ...any) *Request {
	cp := make([]any, len(params))
	copy(cp, params)
	return &Request{id: id, method: method, params: cp}
}

func (r *Request) ID() int64      { return r.id }
func (r *Request) Method() string { return r.method }

// Params returns a copy of the positional parameters.
func (r *Request) Params() []any {
	cp := make([]any, len(r.params))
	copy(cp, r.params)
	return cp
}

// wire is the on-the-wire form of a request.
func (r *Request) wire() map[string]any {
	return map[string]any{
		"jsonrpc": Version,
		"id":      r.id,
		"method":  r.method,
		"params":  r.params,
	}
}

// Error is the error member of a JSON-RPC response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) String() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

// Response carries either Result or Err, never both. A nil Result with a nil Err
// is a valid JSON null result.
type Response struct {
	ID     int64
	Result any
	Err    *Error
}

// OK reports whether the response carries a result.
func (r *Response) OK() bool {
	return r.Err == nil
}

// parseResponse decodes an envelope and enforces result/error exclusivity.
func parseResponse(body []byte, wantID int64) (*Response, error) {
	var env map[string]any
	if err := codec.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if env == nil {
		return nil, fmt.Errorf("response is not a JSON object")
	}
	if v, _ := env["jsonrpc"].(string); v != Version {
		return nil, fmt.Errorf("unexpected jsonrpc version %q", env["jsonrpc"])
	}
	id, err := parseID(env["id"])
	if err != nil {
		return nil, err
	}
	result, hasResult := env["result"]
	rawErr, hasErr := env["error"]
	switch {
	case hasResult && hasErr:
		return nil, fmt.Errorf("response carries both result and error")
	case hasErr:
		e, err := parseError(rawErr)
		if err != nil {
			return nil, err
		}
		// Some nodes answer parse errors with a null id.
		return &Response{ID: id, Err: e}, nil
	case hasResult:
		if id != wantID {
			return nil, fmt.Errorf("response id %d does not match request id %d", id, wantID)
		}
		return &Response{ID: id, Result: result}, nil
	default:
		return nil, fmt.Errorf("response carries neither result nor error")
	}
}

func parseID(v any) (int64, error) {
	switch id := v.(type) {
	case nil:
		return 0, nil
	case json.Number:
		return id.Int64()
	case string:
		return strconv.ParseInt(id, 10, 64)
	default:
		return 0, fmt.Errorf("unsupported response id %v", v)
	}
}

func parseError(v any) (*Error, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("malformed error member %v", v)
	}
	e := &Error{Data: m["data"]}
	if msg, ok := m["message"].(string); ok {
		e.Message = msg
	}
	code, ok := m["code"].(json.Number)
	if !ok {
		return nil, fmt.Errorf("error member without numeric code")
	}
	c, err := code.Int64()
	if err != nil {
		return nil, fmt.Errorf("error code: %w", err)
	}
	e.Code = int(c)
	return e, nil
}
