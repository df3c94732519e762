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
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rsksmart/rpcsmoke/internal/mocknode"
	"github.com/rsksmart/rpcsmoke/jsonrpc"
)

func newTransport(t *testing.T, url string) *jsonrpc.Transport {
	t.Helper()
	tr, err := jsonrpc.NewTransport(jsonrpc.Config{URL: url, Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(tr.Close)
	return tr
}

func TestWaitForRPCReady(t *testing.T) {
	node := mocknode.Start(t, mocknode.DefaultConfig())
	version, err := waitForRPC(context.Background(), newTransport(t, node.URL), time.Second, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if !strings.HasPrefix(version, "RskJ/") {
		t.Fatalf("version = %q", version)
	}
}

func TestWaitForRPCUnreachable(t *testing.T) {
	// Reserve a port and release it so nothing listens there.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	url := "http://" + l.Addr().String()
	l.Close()

	start := time.Now()
	_, err = waitForRPC(context.Background(), newTransport(t, url), 200*time.Millisecond, 20*time.Millisecond)
	if err == nil || !strings.Contains(err.Error(), "not reachable") {
		t.Fatalf("err = %v, want not reachable", err)
	}
	var te *jsonrpc.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want the last transport error wrapped", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("gave up after %v", elapsed)
	}
}

func TestWaitForRPCRecovers(t *testing.T) {
	node := mocknode.Start(t, mocknode.DefaultConfig())
	var calls int
	node.Intercept("web3_clientVersion", func(id json.RawMessage) (int, []byte) {
		calls++
		if calls < 3 {
			return http.StatusServiceUnavailable, []byte("starting")
		}
		return http.StatusOK, mocknode.ResultBody(id, "RskJ/test")
	})
	version, err := waitForRPC(context.Background(), newTransport(t, node.URL), 2*time.Second, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if version != "RskJ/test" || calls != 3 {
		t.Fatalf("version = %q after %d calls", version, calls)
	}
}

func TestWaitForRPCProtocolErrorIsFinal(t *testing.T) {
	node := mocknode.Start(t, mocknode.DefaultConfig())
	node.Intercept("web3_clientVersion", func(id json.RawMessage) (int, []byte) {
		return http.StatusOK, mocknode.ErrorBody(id, -32601, "method not found")
	})
	_, err := waitForRPC(context.Background(), newTransport(t, node.URL), time.Minute, 10*time.Millisecond)
	var pe *jsonrpc.ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want protocol error", err)
	}
	if node.Calls("web3_clientVersion") != 1 {
		t.Fatalf("polled %d times", node.Calls("web3_clientVersion"))
	}
}
