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

// Package retry repeats idempotent calls that failed for transient transport reasons.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/rsksmart/rpcsmoke/jsonrpc"
)

// Policy bounds how often and how fast an operation is repeated.
type Policy struct {
	MaxAttempts int           // total attempts, including the first
	Delay       time.Duration // fixed pause between attempts

	// OnRetry, when set, is called before every repeated attempt.
	OnRetry func(attempt int, err error)
}

// None runs the operation exactly once.
var None = Policy{MaxAttempts: 1}

// Validate reports a policy that can never run.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.Delay < 0 {
		return fmt.Errorf("retry delay must not be negative, got %v", p.Delay)
	}
	return nil
}

// Do runs op until it succeeds, fails permanently, or the attempts are used up.
// Only errors for which jsonrpc.IsTransient holds are retried. On exhaustion the
// last failure is returned unchanged.
func Do[T any](ctx context.Context, p Policy, op func() (T, error)) (T, error) {
	var zero T
	if err := p.Validate(); err != nil {
		return zero, err
	}
	if p.MaxAttempts == 1 {
		return op()
	}

	builder := retrypolicy.Builder[T]().
		HandleIf(func(_ T, err error) bool { return jsonrpc.IsTransient(err) }).
		WithMaxAttempts(p.MaxAttempts).
		ReturnLastFailure()
	if p.Delay > 0 {
		builder = builder.WithDelay(p.Delay)
	}
	if p.OnRetry != nil {
		builder = builder.OnRetry(func(e failsafe.ExecutionEvent[T]) {
			p.OnRetry(e.Attempts(), e.LastError())
		})
	}

	var lastErr error
	res, err := failsafe.NewExecutor[T](builder.Build()).WithContext(ctx).Get(func() (T, error) {
		v, err := op()
		lastErr = err
		return v, err
	})
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil && lastErr != nil {
		return zero, lastErr
	}
	return zero, err
}
