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

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rsksmart/rpcsmoke/jsonrpc"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func transient() error {
	return &jsonrpc.TransportError{Code: jsonrpc.CodeConnection, Op: "eth_blockNumber", Err: errors.New("refused")}
}

func TestDoRetriesTransientUntilSuccess(t *testing.T) {
	calls := 0
	var retried []int
	p := Policy{MaxAttempts: 3, Delay: time.Millisecond, OnRetry: func(attempt int, err error) {
		retried = append(retried, attempt)
	}}
	v, err := Do(context.Background(), p, func() (string, error) {
		calls++
		if calls < 3 {
			return "", transient()
		}
		return "0x5", nil
	})
	require.NoError(t, err)
	require.Equal(t, "0x5", v)
	require.Equal(t, 3, calls)
	require.Len(t, retried, 2)
}

func TestDoReturnsLastFailureOnExhaustion(t *testing.T) {
	calls := 0
	last := &jsonrpc.TransportError{Code: jsonrpc.CodeTimeout, Op: "eth_call", Err: context.DeadlineExceeded}
	_, err := Do(context.Background(), Policy{MaxAttempts: 2}, func() (int, error) {
		calls++
		if calls == 2 {
			return 0, last
		}
		return 0, transient()
	})
	require.Equal(t, 2, calls)
	require.Same(t, last, err)
}

func TestDoDoesNotRetryPermanentErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"protocol", &jsonrpc.ProtocolError{Op: "eth_getCompilers", Code: -32601, Message: "method not found"}},
		{"plain", errors.New("malformed quantity")},
		{"canceled", &jsonrpc.TransportError{Code: jsonrpc.CodeCanceled, Err: context.Canceled}},
		{"client status", &jsonrpc.TransportError{Code: jsonrpc.CodeHTTPStatus, Status: 404, Err: errors.New("not found")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			_, err := Do(context.Background(), Policy{MaxAttempts: 5}, func() (any, error) {
				calls++
				return nil, tt.err
			})
			require.Equal(t, 1, calls)
			require.Equal(t, tt.err, err)
		})
	}
}

func TestDoSingleAttempt(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), None, func() (any, error) {
		calls++
		return nil, transient()
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestDoStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, Policy{MaxAttempts: 10, Delay: 50 * time.Millisecond}, func() (any, error) {
		calls++
		cancel()
		return nil, transient()
	})
	require.Error(t, err)
	require.Less(t, calls, 10)
}

func TestPolicyValidate(t *testing.T) {
	require.Error(t, Policy{}.Validate())
	require.Error(t, Policy{MaxAttempts: 1, Delay: -time.Second}.Validate())
	require.NoError(t, Policy{MaxAttempts: 3, Delay: time.Second}.Validate())

	_, err := Do(context.Background(), Policy{}, func() (any, error) { return nil, nil })
	require.Error(t, err)
}

func TestDoExhaustionKeepsWrappedCause(t *testing.T) {
	refused := errors.New("connection refused")
	_, err := Do(context.Background(), Policy{MaxAttempts: 3}, func() (any, error) {
		return nil, &jsonrpc.TransportError{Code: jsonrpc.CodeConnection, Op: "eth_chainId", Err: refused}
	})
	require.ErrorIs(t, err, refused)
	require.NotErrorIs(t, err, retrypolicy.ErrExceeded)

	var te *jsonrpc.TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, "eth_chainId", te.Op)
}
