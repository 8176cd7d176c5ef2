// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package tester

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tochemey/actorcheck/actor"
	"github.com/tochemey/actorcheck/internal/duration"
	"github.com/tochemey/actorcheck/trace"
)

// BugReport describes a buggy iteration
type BugReport struct {
	Iteration int           `json:"iteration"`
	Seed      uint64        `json:"seed"`
	Strategy  string        `json:"strategy"`
	Kind      actor.BugKind `json:"-"`
	KindName  string        `json:"kind"`
	Message   string        `json:"message"`
	Step      int           `json:"step"`
	Stack     string        `json:"stack,omitempty"`
	Trace     *trace.Trace  `json:"trace"`
	// RecordID is the id of the record in the trace store, empty without store
	RecordID string `json:"record_id,omitempty"`
}

// Error returns the bug rendering
func (b *BugReport) Error() string {
	return fmt.Sprintf("%s bug in iteration %d at step %d: %s", b.KindName, b.Iteration, b.Step, b.Message)
}

// Report summarizes a run
type Report struct {
	RunID           uuid.UUID     `json:"run_id"`
	Name            string        `json:"name"`
	Strategy        string        `json:"strategy"`
	Seed            uint64        `json:"seed"`
	Iterations      int           `json:"iterations"`
	BuggyIterations int           `json:"buggy_iterations"`
	Bugs            []*BugReport  `json:"bugs"`
	DistinctStates  int           `json:"distinct_states"`
	TotalSteps      int           `json:"total_steps"`
	MaxSteps        int           `json:"max_steps"`
	StepBoundHits   int           `json:"step_bound_hits"`
	Elapsed         time.Duration `json:"elapsed"`
	// Coverage merges the activity coverage of every iteration
	Coverage *actor.Coverage `json:"-"`
}

// BugRate returns the ratio of buggy iterations
func (r *Report) BugRate() float64 {
	if r.Iterations == 0 {
		return 0
	}
	return float64(r.BuggyIterations) / float64(r.Iterations)
}

// FirstBug returns the bug of the earliest buggy iteration, nil without bug
func (r *Report) FirstBug() *BugReport {
	if len(r.Bugs) == 0 {
		return nil
	}
	return r.Bugs[0]
}

// String returns a human readable summary
func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "run %s of %s with %s (seed=%d)\n", r.RunID, r.Name, r.Strategy, r.Seed)
	fmt.Fprintf(&sb, "  iterations: %d, buggy: %d (%.2f%%)\n", r.Iterations, r.BuggyIterations, 100*r.BugRate())
	fmt.Fprintf(&sb, "  steps: %d total, %d max, %d step bound hits\n", r.TotalSteps, r.MaxSteps, r.StepBoundHits)
	if r.DistinctStates > 0 {
		fmt.Fprintf(&sb, "  distinct states: %d\n", r.DistinctStates)
	}
	if r.Coverage != nil {
		fmt.Fprintf(&sb, "  state coverage: %.2f%%\n", 100*r.Coverage.StateCoverage())
	}
	fmt.Fprintf(&sb, "  elapsed: %s\n", duration.Format(r.Elapsed))
	if bug := r.FirstBug(); bug != nil {
		fmt.Fprintf(&sb, "  first bug: %s\n", bug.Error())
		if bug.RecordID != "" {
			fmt.Fprintf(&sb, "  trace: %s\n", bug.RecordID)
		}
	}
	return sb.String()
}
