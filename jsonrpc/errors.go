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

package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"

	"github.com/ethereum/go-ethereum/rpc"
)

// Transport error codes. They live outside the JSON-RPC reserved range so they can
// never be confused with a code reported by the node.
const (
	CodeConnection    = 1001 // dial failure, reset, refused
	CodeTimeout       = 1002 // deadline hit before a full response arrived
	CodeHTTPStatus    = 1003 // non-2xx status without a JSON-RPC error body
	CodeMalformedBody = 1004 // body is not a valid JSON-RPC 2.0 response
	CodeCanceled      = 1005 // caller canceled the request
)

// TransportError is a failure below the JSON-RPC layer.
type TransportError struct {
	Code   int
	Op     string // method being called
	Status int    // HTTP status, if one was received
	Err    error
}

func (e *TransportError) Error() string {
	switch e.Code {
	case CodeHTTPStatus:
		return fmt.Sprintf("%s: transport: http status %d: %v", e.Op, e.Status, e.Err)
	default:
		return fmt.Sprintf("%s: transport (%d): %v", e.Op, e.Code, e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// Transient reports whether repeating the request could plausibly succeed.
func (e *TransportError) Transient() bool {
	switch e.Code {
	case CodeConnection, CodeTimeout, CodeMalformedBody:
		return true
	case CodeHTTPStatus:
		return e.Status >= 500 || e.Status == 429
	default:
		return false
	}
}

// ProtocolError is a well-formed JSON-RPC error response from the node.
type ProtocolError struct {
	Op      string
	Code    int
	Message string
	Data    any
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: rpc error %d: %s", e.Op, e.Code, e.Message)
}

// ErrorCode makes ProtocolError satisfy go-ethereum's rpc.Error.
func (e *ProtocolError) ErrorCode() int { return e.Code }

// IsTransient reports whether err is a transport failure worth retrying.
// Protocol errors are never transient: the node answered.
func IsTransient(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Transient()
	}
	return false
}

// Classify maps errors raised by other client stacks onto the TransportError /
// ProtocolError taxonomy. Errors that already belong to it are returned unchanged,
// unknown errors are returned as-is.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		te *TransportError
		pe *ProtocolError
	)
	if errors.As(err, &te) || errors.As(err, &pe) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{Code: CodeTimeout, Op: op, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &TransportError{Code: CodeCanceled, Op: op, Err: err}
	}
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		// geth attaches the body; a JSON-RPC error in it is still a protocol answer.
		if perr := protocolFromBody(op, httpErr.Body); perr != nil {
			return perr
		}
		return &TransportError{Code: CodeHTTPStatus, Op: op, Status: httpErr.StatusCode, Err: err}
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		pe := &ProtocolError{Op: op, Code: rpcErr.ErrorCode(), Message: rpcErr.Error()}
		var dataErr rpc.DataError
		if errors.As(err, &dataErr) {
			pe.Data = dataErr.ErrorData()
		}
		return pe
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &TransportError{Code: CodeTimeout, Op: op, Err: err}
		}
		return &TransportError{Code: CodeConnection, Op: op, Err: err}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return &TransportError{Code: CodeConnection, Op: op, Err: err}
	}
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &TransportError{Code: CodeMalformedBody, Op: op, Err: err}
	}
	return err
}

func protocolFromBody(op string, body []byte) *ProtocolError {
	if len(body) == 0 {
		return nil
	}
	resp, err := parseResponse(body, 0)
	if err != nil || resp.Err == nil {
		return nil
	}
	return &ProtocolError{Op: op, Code: resp.Err.Code, Message: resp.Err.Message, Data: resp.Err.Data}
}
