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

package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	gerrors "github.com/tochemey/actorcheck/errors"
)

// Kind identifies the decision recorded by a Step
type Kind uint8

const (
	// SchedulingStep records the operation chosen to run next
	SchedulingStep Kind = iota
	// BooleanStep records the value of a nondeterministic boolean choice
	BooleanStep
	// IntegerStep records the value of a nondeterministic integer choice
	IntegerStep
)

const (
	schedulingPrefix = "op"
	booleanPrefix    = "bool"
	integerPrefix    = "int"
)

// String returns the text prefix of the kind
func (k Kind) String() string {
	switch k {
	case SchedulingStep:
		return schedulingPrefix
	case BooleanStep:
		return booleanPrefix
	case IntegerStep:
		return integerPrefix
	default:
		return "unknown"
	}
}

// Step is a single scheduling or nondeterministic decision.
type Step struct {
	Kind      Kind   `json:"kind"`
	Operation uint64 `json:"op,omitempty"`
	Bool      bool   `json:"bool,omitempty"`
	Int       int    `json:"int,omitempty"`
}

// String renders the step as one trace line
func (s Step) String() string {
	switch s.Kind {
	case SchedulingStep:
		return schedulingPrefix + ":" + strconv.FormatUint(s.Operation, 10)
	case BooleanStep:
		return booleanPrefix + ":" + strconv.FormatBool(s.Bool)
	case IntegerStep:
		return integerPrefix + ":" + strconv.Itoa(s.Int)
	default:
		return "unknown"
	}
}

// Trace is the ordered sequence of decisions taken during one iteration.
// Replaying it against the same program reproduces the same execution.
//
// A Trace is not safe for concurrent use; every iteration owns its own.
type Trace struct {
	steps []Step
}

// New creates an empty trace
func New() *Trace {
	return &Trace{steps: make([]Step, 0, 64)}
}

// FromSteps creates a trace holding a copy of the given steps
func FromSteps(steps ...Step) *Trace {
	t := &Trace{steps: make([]Step, len(steps))}
	copy(t.steps, steps)
	return t
}

// AddScheduling appends a scheduling decision
func (t *Trace) AddScheduling(operation uint64) {
	t.steps = append(t.steps, Step{Kind: SchedulingStep, Operation: operation})
}

// AddBoolean appends a boolean choice
func (t *Trace) AddBoolean(value bool) {
	t.steps = append(t.steps, Step{Kind: BooleanStep, Bool: value})
}

// AddInteger appends an integer choice
func (t *Trace) AddInteger(value int) {
	t.steps = append(t.steps, Step{Kind: IntegerStep, Int: value})
}

// Len returns the number of recorded steps
func (t *Trace) Len() int {
	if t == nil {
		return 0
	}
	return len(t.steps)
}

// Step returns the step at the given index
func (t *Trace) Step(index int) (Step, bool) {
	if t == nil || index < 0 || index >= len(t.steps) {
		return Step{}, false
	}
	return t.steps[index], true
}

// Steps returns a copy of the recorded steps
func (t *Trace) Steps() []Step {
	if t == nil {
		return nil
	}
	out := make([]Step, len(t.steps))
	copy(out, t.steps)
	return out
}

// Clone returns a deep copy of the trace
func (t *Trace) Clone() *Trace {
	if t == nil {
		return New()
	}
	return FromSteps(t.steps...)
}

// Equal reports whether both traces record the same decisions
func (t *Trace) Equal(other *Trace) bool {
	if t.Len() != other.Len() {
		return false
	}
	for i := range t.Len() {
		if t.steps[i] != other.steps[i] {
			return false
		}
	}
	return true
}

// String renders the trace in its text format, one decision per line
func (t *Trace) String() string {
	var sb strings.Builder
	for _, step := range t.steps {
		sb.WriteString(step.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// MarshalJSON implements json.Marshaler
func (t *Trace) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.steps)
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Trace) UnmarshalJSON(data []byte) error {
	var steps []Step
	if err := json.Unmarshal(data, &steps); err != nil {
		return gerrors.NewErrInvalidTrace(err)
	}
	t.steps = steps
	return nil
}

// Parse reads a trace from its text format.
// Blank lines and lines starting with '#' are skipped.
func Parse(text string) (*Trace, error) {
	t := New()
	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		prefix, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, gerrors.NewErrInvalidTrace(fmt.Errorf("line %d: missing ':' in %q", lineNo, line))
		}

		switch prefix {
		case schedulingPrefix:
			op, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return nil, gerrors.NewErrInvalidTrace(fmt.Errorf("line %d: %w", lineNo, err))
			}
			t.AddScheduling(op)
		case booleanPrefix:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, gerrors.NewErrInvalidTrace(fmt.Errorf("line %d: %w", lineNo, err))
			}
			t.AddBoolean(b)
		case integerPrefix:
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, gerrors.NewErrInvalidTrace(fmt.Errorf("line %d: %w", lineNo, err))
			}
			t.AddInteger(n)
		default:
			return nil, gerrors.NewErrInvalidTrace(fmt.Errorf("line %d: unknown step kind %q", lineNo, prefix))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, gerrors.NewErrInvalidTrace(err)
	}
	return t, nil
}
