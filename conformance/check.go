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
	"fmt"
	"time"

	"github.com/rsksmart/rpcsmoke/clients"
	"github.com/rsksmart/rpcsmoke/normalize"
)

// Stage is a phase of a suite run. Checks execute in non-decreasing stage order.
type Stage int

const (
	StageSetup Stage = iota
	StageAdvance
	StageSteady
	StageMutate
	StagePostMutation
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageSetup:
		return "setup"
	case StageAdvance:
		return "advance"
	case StageSteady:
		return "steady"
	case StageMutate:
		return "mutate"
	case StagePostMutation:
		return "post-mutation"
	case StageDone:
		return "done"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// AccessPath is one way of reaching the operation under check.
type AccessPath = clients.Path

// ArgsFunc builds the params shared by every path of a check.
type ArgsFunc func(ctx context.Context, rc *RunContext) ([]any, error)

// AssertFunc checks the normalized values, one per path in declared order.
type AssertFunc func(rc *RunContext, vals []normalize.Value) error

// CaptureFunc records what later checks need from the agreed value.
type CaptureFunc func(rc *RunContext, v normalize.Value) error

// StepFunc is a procedure run in place of a path invocation, such as mining up to
// a block or waiting for a transaction to be included.
type StepFunc func(ctx context.Context, rc *RunContext) (string, error)

// Check is one entry of the catalog: a single operation reached through one or
// more access paths.
type Check struct {
	Name      string
	Operation string
	Stage     Stage
	Kind      normalize.Kind
	Compare   normalize.Compare
	Paths     []AccessPath

	Args    ArgsFunc
	Assert  AssertFunc
	Capture CaptureFunc
	Step    StepFunc

	ExpectAbsent bool
	ExpectError  bool
	Mutating     bool // invoked exactly once, never retried
	Timeout      time.Duration
}

// Validate reports a check that cannot run as declared.
func (c *Check) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("check without name")
	}
	if c.Stage < StageSetup || c.Stage > StageDone {
		return fmt.Errorf("check %q: invalid stage %v", c.Name, c.Stage)
	}
	if c.Step != nil {
		return nil
	}
	if c.Operation == "" {
		return fmt.Errorf("check %q: no operation", c.Name)
	}
	if c.Mutating && len(c.Paths) != 1 {
		return fmt.Errorf("check %q: mutating operation %s must use exactly one path, has %d", c.Name, c.Operation, len(c.Paths))
	}
	if c.ExpectAbsent && c.ExpectError {
		return fmt.Errorf("check %q: cannot expect both absence and an error", c.Name)
	}
	return nil
}

// Status of a finished check.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

// CheckResult is the outcome of one check.
type CheckResult struct {
	Name     string        `json:"name"`
	Stage    string        `json:"stage"`
	Status   Status        `json:"status"`
	Message  string        `json:"message"`
	Duration time.Duration `json:"duration"`
	Paths    []string      `json:"paths,omitempty"`
	Err      error         `json:"-"`
}
