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
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

const defaultTimeout = 10 * time.Second

// Config configures a Transport.
type Config struct {
	URL     string
	Timeout time.Duration // per request, used when the context carries no deadline

	// RateLimit caps requests per second. Zero disables limiting.
	RateLimit float64
	Burst     int
}

// Transport sends JSON-RPC requests over a keep-alive HTTP connection. It does not
// retry and does not cache.
type Transport struct {
	url     string
	timeout time.Duration
	client  *fasthttp.Client
	limiter *rate.Limiter
	nextID  atomic.Int64
}

// NewTransport validates the endpoint and prepares the HTTP client. No connection
// is opened until the first request.
func NewTransport(cfg Config) (*Transport, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", cfg.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("endpoint %q has no host", cfg.URL)
	}
	t := &Transport{
		url:     cfg.URL,
		timeout: cfg.Timeout,
		client: &fasthttp.Client{
			Name:                "rpcsmoke",
			MaxConnsPerHost:     4,
			MaxIdleConnDuration: 30 * time.Second,
		},
	}
	if t.timeout <= 0 {
		t.timeout = defaultTimeout
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return t, nil
}

// URL returns the endpoint the transport talks to.
func (t *Transport) URL() string { return t.url }

// NewRequest builds a request with the next id of this transport.
func (t *Transport) NewRequest(method string, params ...any) *Request {
	return NewRequest(t.nextID.Add(1), method, params...)
}

// Send performs one HTTP POST. A JSON-RPC error body is returned as a Response with
// Err set, whatever the HTTP status; everything below that is a *TransportError.
func (t *Transport) Send(ctx context.Context, req *Request) (*Response, error) {
	op := req.Method()
	if err := ctx.Err(); err != nil {
		return nil, Classify(op, err)
	}
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, Classify(op, err)
		}
	}
	body, err := codec.Marshal(req.wire())
	if err != nil {
		// Params that cannot be encoded are a caller bug, not a transport failure.
		return nil, fmt.Errorf("%s: encode request: %w", op, err)
	}

	hreq := fasthttp.AcquireRequest()
	hresp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(hreq)
	defer fasthttp.ReleaseResponse(hresp)

	hreq.SetRequestURI(t.url)
	hreq.Header.SetMethod(fasthttp.MethodPost)
	hreq.Header.SetContentType("application/json")
	hreq.SetBodyRaw(body)

	deadline := time.Now().Add(t.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := t.client.DoDeadline(hreq, hresp, deadline); err != nil {
		return nil, transportFailure(op, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, Classify(op, err)
	}

	status := hresp.StatusCode()
	raw := append([]byte(nil), hresp.Body()...)
	resp, perr := parseResponse(raw, req.ID())
	if perr == nil && resp.Err != nil {
		return resp, nil
	}
	if status < 200 || status > 299 {
		return nil, &TransportError{Code: CodeHTTPStatus, Op: op, Status: status, Err: fmt.Errorf("%s", snippet(raw))}
	}
	if perr != nil {
		return nil, &TransportError{Code: CodeMalformedBody, Op: op, Status: status, Err: perr}
	}
	return resp, nil
}

// Call sends method with params and returns the decoded result. A JSON-RPC error
// is returned as *ProtocolError.
func (t *Transport) Call(ctx context.Context, method string, params ...any) (any, error) {
	resp, err := t.Send(ctx, t.NewRequest(method, params...))
	if err != nil {
		return nil, err
	}
	if resp.Err != nil {
		return nil, &ProtocolError{Op: method, Code: resp.Err.Code, Message: resp.Err.Message, Data: resp.Err.Data}
	}
	return resp.Result, nil
}

// Close drops idle connections.
func (t *Transport) Close() {
	t.client.CloseIdleConnections()
}

func transportFailure(op string, err error) error {
	switch {
	case errors.Is(err, fasthttp.ErrTimeout), errors.Is(err, fasthttp.ErrDialTimeout):
		return &TransportError{Code: CodeTimeout, Op: op, Err: err}
	default:
		return &TransportError{Code: CodeConnection, Op: op, Err: err}
	}
}

func snippet(b []byte) string {
	const limit = 256
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	if len(b) == 0 {
		return "empty body"
	}
	return string(b)
}
