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
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// StageTracker follows a suite through its stages. Stages only move forward.
type StageTracker struct {
	current Stage
	entered time.Time
	spent   map[Stage]time.Duration
}

// NewStageTracker starts in the setup stage.
func NewStageTracker() *StageTracker {
	return &StageTracker{
		current: StageSetup,
		entered: time.Now(),
		spent:   make(map[Stage]time.Duration),
	}
}

// Advance moves to next. Moving backwards is an error; staying is a no-op.
func (st *StageTracker) Advance(next Stage) error {
	if next < st.current {
		return fmt.Errorf("stage %v cannot follow %v", next, st.current)
	}
	if next == st.current {
		return nil
	}
	now := time.Now()
	st.spent[st.current] += now.Sub(st.entered)
	log.Info("Suite stage transition", "from", st.current, "to", next, "elapsed", common.PrettyDuration(now.Sub(st.entered)))
	st.current, st.entered = next, now
	suiteStageGauge.Update(int64(next))
	return nil
}

// Current returns the current stage.
func (st *StageTracker) Current() Stage {
	return st.current
}

// Spent returns the time spent in s so far.
func (st *StageTracker) Spent(s Stage) time.Duration {
	d := st.spent[s]
	if s == st.current {
		d += time.Since(st.entered)
	}
	return d
}
