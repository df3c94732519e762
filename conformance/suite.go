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

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// Suite runs an ordered list of checks against one node and collects results.
// It owns the RunContext; a run is single use.
type Suite struct {
	checker *Checker
	checks  []*Check
	rc      *RunContext
	stages  *StageTracker
	results *Results
}

// NewSuite validates the catalog: names are unique, stages never go backwards
// and every check is runnable as declared.
func NewSuite(checker *Checker, checks []*Check, results *Results) (*Suite, error) {
	seen := make(map[string]bool, len(checks))
	prev := StageSetup
	for i, chk := range checks {
		if err := chk.Validate(); err != nil {
			return nil, fmt.Errorf("check %d: %w", i, err)
		}
		if seen[chk.Name] {
			return nil, fmt.Errorf("duplicate check name %q", chk.Name)
		}
		seen[chk.Name] = true
		if chk.Stage < prev {
			return nil, fmt.Errorf("check %q in stage %v follows stage %v", chk.Name, chk.Stage, prev)
		}
		prev = chk.Stage
	}
	rc := NewRunContext()
	results.RunID = rc.RunID
	return &Suite{
		checker: checker,
		checks:  checks,
		rc:      rc,
		stages:  NewStageTracker(),
		results: results,
	}, nil
}

// RunContext exposes the shared values, mainly for reporting.
func (s *Suite) RunContext() *RunContext { return s.rc }

// Stage returns the stage the suite is in.
func (s *Suite) Stage() Stage { return s.stages.Current() }

// Run executes every check in order. Failures never stop the run; cancelling ctx
// skips the checks not yet started.
func (s *Suite) Run(ctx context.Context) *Results {
	log.Info("Starting conformance run", "run", s.rc.RunID, "checks", len(s.checks))
	for i, chk := range s.checks {
		if i == 0 || chk.Stage != s.stages.Current() {
			if err := s.stages.Advance(chk.Stage); err != nil {
				// NewSuite rejects out of order catalogs.
				panic(err)
			}
			s.results.Stage(chk.Stage)
		}
		if err := ctx.Err(); err != nil {
			s.results.Record(CheckResult{Name: chk.Name, Stage: chk.Stage.String(), Status: StatusSkip, Message: "run interrupted"})
			continue
		}
		res := s.checker.Run(ctx, chk, s.rc)
		if res.Status == StatusFail {
			log.Debug("Check failed", "check", chk.Name, "stage", chk.Stage, "err", res.Err)
		}
		s.results.Record(res)
	}
	if err := s.stages.Advance(StageDone); err != nil {
		panic(err)
	}
	s.results.StageTimes = make(map[string]string)
	for st := StageSetup; st < StageDone; st++ {
		if d := s.stages.Spent(st); d > 0 {
			s.results.StageTimes[st.String()] = common.PrettyDuration(d).String()
		}
	}
	log.Info("Conformance run finished", "run", s.rc.RunID, "passed", s.results.Passed, "failed", s.results.Failed,
		"skipped", s.results.Skipped)
	return s.results
}
