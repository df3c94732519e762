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
	"errors"
	"fmt"
	"time"
)

// ErrNotProduced is returned when a RunContext key is read before the check that
// writes it has run successfully.
var ErrNotProduced = errors.New("value not produced yet")

// PathError annotates a failure with the access path it came from.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return "path " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error { return e.Err }

// EquivalenceMismatchError reports two access paths that disagree on the
// normalized answer.
type EquivalenceMismatchError struct {
	Check  string
	PathA  string
	PathB  string
	ValueA string
	ValueB string
	Diff   string
}

func (e *EquivalenceMismatchError) Error() string {
	return fmt.Sprintf("%s: paths %s and %s disagree: %s vs %s", e.Check, e.PathA, e.PathB, e.ValueA, e.ValueB)
}

// AssertionError reports agreed values that do not satisfy the check's expectation.
type AssertionError struct {
	Check string
	Err   error
}

func (e *AssertionError) Error() string {
	return e.Check + ": " + e.Err.Error()
}

func (e *AssertionError) Unwrap() error { return e.Err }

// TimeoutError reports a check abandoned after its deadline.
type TimeoutError struct {
	Check string
	After time.Duration
	Err   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out after %v: %v", e.Check, e.After, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }
