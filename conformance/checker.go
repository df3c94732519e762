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

package conformance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rsksmart/rpcsmoke/jsonrpc"
	"github.com/rsksmart/rpcsmoke/normalize"
	"github.com/rsksmart/rpcsmoke/retry"
)

const defaultCheckTimeout = 30 * time.Second

// Checker runs a single check across its access paths and decides the outcome.
type Checker struct {
	retry   retry.Policy
	timeout time.Duration
	tracer  trace.Tracer
}

// NewChecker returns a checker that retries transient failures of non-mutating
// checks with policy and bounds every check by timeout unless it sets its own.
func NewChecker(policy retry.Policy, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	return &Checker{
		retry:   policy,
		timeout: timeout,
		tracer:  otel.Tracer("github.com/rsksmart/rpcsmoke/conformance"),
	}
}

// outcome is a path's answer: a normalized value or an error.
type outcome struct {
	path  string
	value normalize.Value
	err   error
}

// Run executes chk. It never returns an error: every failure is folded into the
// result.
func (c *Checker) Run(ctx context.Context, chk *Check, rc *RunContext) CheckResult {
	start := time.Now()
	timeout := chk.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cctx, span := c.tracer.Start(cctx, "check "+chk.Name, trace.WithAttributes(
		attribute.String("check.name", chk.Name),
		attribute.String("check.stage", chk.Stage.String()),
		attribute.String("rpc.method", chk.Operation),
		attribute.String("run.id", rc.RunID),
	))
	defer span.End()

	res := CheckResult{Name: chk.Name, Stage: chk.Stage.String()}
	for _, p := range chk.Paths {
		res.Paths = append(res.Paths, p.ID)
	}
	msg, status, err := c.run(cctx, chk, rc)
	if err != nil && cctx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		err = &TimeoutError{Check: chk.Name, After: timeout, Err: err}
		checkTimeouts.Inc(1)
	}
	res.Status, res.Message, res.Err = status, msg, err
	if err != nil {
		res.Status, res.Message = StatusFail, err.Error()
	}
	res.Duration = time.Since(start)

	checksTotal.Inc(1)
	checkLatency.UpdateSince(start)
	switch res.Status {
	case StatusFail:
		checksFailed.Inc(1)
		span.SetStatus(codes.Error, res.Message)
	case StatusSkip:
		checksSkipped.Inc(1)
	}
	span.SetAttributes(attribute.String("check.status", string(res.Status)))
	return res
}

func (c *Checker) run(ctx context.Context, chk *Check, rc *RunContext) (string, Status, error) {
	if err := chk.Validate(); err != nil {
		return "", StatusFail, err
	}
	if chk.Step != nil {
		msg, err := chk.Step(ctx, rc)
		return msg, StatusPass, err
	}
	if len(chk.Paths) == 0 {
		return "no access path reaches " + chk.Operation, StatusSkip, nil
	}

	var params []any
	if chk.Args != nil {
		var err error
		if params, err = chk.Args(ctx, rc); err != nil {
			return "", StatusFail, fmt.Errorf("build args: %w", err)
		}
	}

	outs := make([]outcome, len(chk.Paths))
	for i, p := range chk.Paths {
		outs[i] = c.invoke(ctx, chk, p, params)
	}

	if chk.ExpectError {
		return expectError(outs)
	}
	vals := make([]normalize.Value, len(outs))
	for i, o := range outs {
		if o.err != nil {
			return "", StatusFail, &PathError{Path: o.path, Err: o.err}
		}
		vals[i] = o.value
	}
	if chk.ExpectAbsent {
		for _, o := range outs {
			if !o.value.Absent {
				return "", StatusFail, &AssertionError{Check: chk.Name, Err: &PathError{Path: o.path, Err: fmt.Errorf("expected no result, got %s", abbreviate(o.value.String()))}}
			}
		}
		return "absent on " + joinPaths(outs), StatusPass, nil
	}
	for i := 1; i < len(vals); i++ {
		if !normalize.Equal(vals[0], vals[i], chk.Compare) {
			equivalenceMisses.Inc(1)
			return "", StatusFail, &EquivalenceMismatchError{
				Check:  chk.Name,
				PathA:  outs[0].path,
				PathB:  outs[i].path,
				ValueA: abbreviate(vals[0].String()),
				ValueB: abbreviate(vals[i].String()),
				Diff:   normalize.Diff(vals[0], vals[i], chk.Compare),
			}
		}
	}
	if chk.Assert != nil {
		if err := chk.Assert(rc, vals); err != nil {
			return "", StatusFail, &AssertionError{Check: chk.Name, Err: err}
		}
	}
	if chk.Capture != nil {
		if err := chk.Capture(rc, vals[0]); err != nil {
			return "", StatusFail, fmt.Errorf("capture: %w", err)
		}
	}
	return fmt.Sprintf("%s on %s", abbreviate(vals[0].String()), joinPaths(outs)), StatusPass, nil
}

func (c *Checker) invoke(ctx context.Context, chk *Check, p AccessPath, params []any) outcome {
	ctx, span := c.tracer.Start(ctx, "path "+p.ID, trace.WithAttributes(
		attribute.String("path.id", p.ID),
		attribute.String("rpc.method", chk.Operation),
	))
	defer span.End()

	policy := c.retry
	if chk.Mutating || policy.MaxAttempts < 1 {
		policy = retry.None
	}
	policy.OnRetry = func(attempt int, err error) {
		pathRetries.Inc(1)
		log.Warn("Retrying access path", "check", chk.Name, "path", p.ID, "attempt", attempt, "err", err)
	}

	start := time.Now()
	raw, err := retry.Do(ctx, policy, func() (any, error) {
		pathInvocations.Inc(1)
		return p.Invoke(ctx, append([]any(nil), params...))
	})
	pathLatency.UpdateSince(start)
	log.Debug("Invoked access path", "check", chk.Name, "path", p.ID, "method", chk.Operation, "elapsed", time.Since(start), "err", err)
	if err != nil {
		pathErrors.Inc(1)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return outcome{path: p.ID, err: err}
	}
	v, err := normalize.Normalize(raw, chk.Kind)
	if err != nil {
		return outcome{path: p.ID, err: fmt.Errorf("normalize %v: %w", chk.Kind, err)}
	}
	return outcome{path: p.ID, value: v}
}

// expectError passes when every path was rejected by the node with the same code.
func expectError(outs []outcome) (string, Status, error) {
	code := 0
	for i, o := range outs {
		var pe *jsonrpc.ProtocolError
		switch {
		case o.err == nil:
			return "", StatusFail, &PathError{Path: o.path, Err: fmt.Errorf("expected an rpc error, got %s", abbreviate(o.value.String()))}
		case !errors.As(o.err, &pe):
			return "", StatusFail, &PathError{Path: o.path, Err: fmt.Errorf("expected an rpc error: %w", o.err)}
		case i > 0 && pe.Code != code:
			return "", StatusFail, &PathError{Path: o.path, Err: fmt.Errorf("error code %d differs from %s's %d", pe.Code, outs[0].path, code)}
		}
		code = pe.Code
	}
	return fmt.Sprintf("rejected with code %d on %s", code, joinPaths(outs)), StatusPass, nil
}

func joinPaths(outs []outcome) string {
	ids := make([]string, len(outs))
	for i, o := range outs {
		ids[i] = o.path
	}
	return strings.Join(ids, ",")
}

func abbreviate(s string) string {
	const limit = 80
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
