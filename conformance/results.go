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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

// Results holds all check results of a run.
type Results struct {
	RunID    string        `json:"runId"`
	Endpoint string        `json:"endpoint,omitempty"`
	Started  time.Time     `json:"started"`
	Checks   []CheckResult `json:"checks"`
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	Skipped  int           `json:"skipped"`

	// StageTimes holds the wall time spent in each stage the run entered.
	StageTimes map[string]string `json:"stageTimes,omitempty"`

	out io.Writer
}

// NewResults creates a Results that echoes every record to out. A nil out
// silences the echo.
func NewResults(out io.Writer) *Results {
	if out == nil {
		out = io.Discard
	}
	return &Results{
		Checks:  make([]CheckResult, 0),
		Started: time.Now(),
		out:     out,
	}
}

// Record adds a finished check.
func (r *Results) Record(res CheckResult) {
	r.Checks = append(r.Checks, res)
	var mark string
	switch res.Status {
	case StatusPass:
		r.Passed++
		mark = green("✓")
	case StatusFail:
		r.Failed++
		mark = red("✗")
	default:
		r.Skipped++
		mark = cyan("-")
	}
	fmt.Fprintf(r.out, "  %s %s: %s\n", mark, res.Name, res.Message)
	var mismatch *EquivalenceMismatchError
	if res.Status == StatusFail && errors.As(res.Err, &mismatch) && mismatch.Diff != "" {
		fmt.Fprintf(r.out, "%s\n", indent(mismatch.Diff, "      "))
	}
}

// Stage prints a stage header.
func (r *Results) Stage(s Stage) {
	fmt.Fprintf(r.out, "\n%s\n", cyan(fmt.Sprintf("[%s]", s)))
}

// OK reports whether no check failed.
func (r *Results) OK() bool { return r.Failed == 0 }

// Print outputs the final summary.
func (r *Results) Print() {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "==========================================")
	fmt.Fprintln(r.out, "Conformance Summary")
	fmt.Fprintln(r.out, "==========================================")
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "  %s  %d\n", green("Passed:"), r.Passed)
	fmt.Fprintf(r.out, "  %s  %d\n", red("Failed:"), r.Failed)
	if r.Skipped > 0 {
		fmt.Fprintf(r.out, "  %s %d\n", yellow("Skipped:"), r.Skipped)
	}
	fmt.Fprintln(r.out)

	if r.Failed == 0 {
		if r.Skipped == 0 {
			fmt.Fprintln(r.out, green("All checks passed! Node is conformant."))
		} else {
			fmt.Fprintln(r.out, yellow("No check failed, but some were skipped. Check details above."))
		}
	} else {
		fmt.Fprintln(r.out, red("Conformance failed. Check errors above."))
	}
	fmt.Fprintln(r.out)
}

// WriteJSON writes the results as an indented JSON report.
func (r *Results) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
