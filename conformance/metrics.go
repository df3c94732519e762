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

import "github.com/ethereum/go-ethereum/metrics"

var (
	checksTotal       = metrics.NewRegisteredCounter("rpcsmoke/checks/total", nil)
	checksFailed      = metrics.NewRegisteredCounter("rpcsmoke/checks/failed", nil)
	checksSkipped     = metrics.NewRegisteredCounter("rpcsmoke/checks/skipped", nil)
	checkLatency      = metrics.NewRegisteredTimer("rpcsmoke/checks/latency", nil)
	checkTimeouts     = metrics.NewRegisteredCounter("rpcsmoke/checks/timeouts", nil)
	pathInvocations   = metrics.NewRegisteredCounter("rpcsmoke/paths/invocations", nil)
	pathErrors        = metrics.NewRegisteredCounter("rpcsmoke/paths/errors", nil)
	pathLatency       = metrics.NewRegisteredTimer("rpcsmoke/paths/latency", nil)
	pathRetries       = metrics.NewRegisteredCounter("rpcsmoke/paths/retries", nil)
	equivalenceMisses = metrics.NewRegisteredCounter("rpcsmoke/equivalence/mismatches", nil)
	suiteStageGauge   = metrics.NewRegisteredGauge("rpcsmoke/suite/stage", nil)
)

// MetricsSummary is a point-in-time view of the run counters.
type MetricsSummary struct {
	Checks      int64
	Failed      int64
	Skipped     int64
	Timeouts    int64
	Invocations int64
	PathErrors  int64
	Retries     int64
	Mismatches  int64
	MeanCheck   float64 // nanoseconds
}

// Metrics snapshots the run counters.
func Metrics() MetricsSummary {
	return MetricsSummary{
		Checks:      checksTotal.Snapshot().Count(),
		Failed:      checksFailed.Snapshot().Count(),
		Skipped:     checksSkipped.Snapshot().Count(),
		Timeouts:    checkTimeouts.Snapshot().Count(),
		Invocations: pathInvocations.Snapshot().Count(),
		PathErrors:  pathErrors.Snapshot().Count(),
		Retries:     pathRetries.Snapshot().Count(),
		Mismatches:  equivalenceMisses.Snapshot().Count(),
		MeanCheck:   checkLatency.Snapshot().Mean(),
	}
}
