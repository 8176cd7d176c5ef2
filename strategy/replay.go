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

package strategy

import (
	"fmt"

	gerrors "github.com/tochemey/actorcheck/errors"
	"github.com/tochemey/actorcheck/trace"
)

// Replay follows a recorded trace decision by decision.
// Any mismatch between the trace and the running program is reported as ErrReplayDiverged.
type Replay struct {
	trace *trace.Trace
	index int
}

var _ Strategy = (*Replay)(nil)

// NewReplay creates a Replay strategy for the given trace
func NewReplay(tr *trace.Trace) *Replay {
	return &Replay{trace: tr.Clone()}
}

// NextOperation implements Strategy
func (r *Replay) NextOperation(_ uint64, ops []Operation) (uint64, error) {
	step, err := r.next(trace.SchedulingStep)
	if err != nil {
		return 0, err
	}
	for _, op := range ops {
		if op.ID == step.Operation {
			return op.ID, nil
		}
	}
	return 0, fmt.Errorf("step %d: operation %d is not enabled: %w", r.index-1, step.Operation, gerrors.ErrReplayDiverged)
}

// NextBoolean implements Strategy
func (r *Replay) NextBoolean(uint64) (bool, error) {
	step, err := r.next(trace.BooleanStep)
	if err != nil {
		return false, err
	}
	return step.Bool, nil
}

// NextInteger implements Strategy
func (r *Replay) NextInteger(_ uint64, max int) (int, error) {
	step, err := r.next(trace.IntegerStep)
	if err != nil {
		return 0, err
	}
	if step.Int < 0 || step.Int >= max {
		return 0, fmt.Errorf("step %d: recorded value %d is out of [0, %d): %w", r.index-1, step.Int, max, gerrors.ErrReplayDiverged)
	}
	return step.Int, nil
}

// PrepareForNextIteration implements Strategy. A trace describes a single iteration.
func (r *Replay) PrepareForNextIteration() bool {
	return false
}

// Reset implements Strategy
func (r *Replay) Reset() {
	r.index = 0
}

// Description implements Strategy
func (r *Replay) Description() string {
	return fmt.Sprintf("replay[steps=%d]", r.trace.Len())
}

// Consumed returns the number of decisions replayed so far
func (r *Replay) Consumed() int {
	return r.index
}

func (r *Replay) next(kind trace.Kind) (trace.Step, error) {
	step, ok := r.trace.Step(r.index)
	if !ok {
		return trace.Step{}, fmt.Errorf("step %d: execution is longer than the trace: %w", r.index, gerrors.ErrReplayDiverged)
	}
	if step.Kind != kind {
		return trace.Step{}, fmt.Errorf("step %d: expected a %s decision, trace has %s: %w", r.index, kind, step, gerrors.ErrReplayDiverged)
	}
	r.index++
	return step, nil
}
