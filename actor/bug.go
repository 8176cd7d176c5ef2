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

package actor

import (
	"fmt"

	gerrors "github.com/tochemey/actorcheck/errors"
	"github.com/tochemey/actorcheck/trace"
)

// BugKind classifies a bug found during an iteration
type BugKind uint8

const (
	// BugAssertion is a failed assertion in an actor, a monitor or a task
	BugAssertion BugKind = iota
	// BugUnhandledEvent is an event dequeued without any handler, defer or ignore binding
	BugUnhandledEvent
	// BugUnhandledPanic is a panic in user code
	BugUnhandledPanic
	// BugDeadlock is a state where nothing can run while some operations are blocked
	BugDeadlock
	// BugLiveness is a monitor left in a hot state or a step bound hit configured as a bug
	BugLiveness
)

// String returns the bug kind name
func (k BugKind) String() string {
	switch k {
	case BugAssertion:
		return "assertion"
	case BugUnhandledEvent:
		return "unhandled-event"
	case BugUnhandledPanic:
		return "unhandled-panic"
	case BugDeadlock:
		return "deadlock"
	case BugLiveness:
		return "liveness"
	default:
		return "unknown"
	}
}

func (k BugKind) sentinel() error {
	switch k {
	case BugAssertion:
		return gerrors.ErrAssertionFailure
	case BugUnhandledEvent:
		return gerrors.ErrUnhandledEvent
	case BugUnhandledPanic:
		return gerrors.ErrUnhandledPanic
	case BugDeadlock:
		return gerrors.ErrDeadlock
	default:
		return gerrors.ErrLivenessViolation
	}
}

// Bug describes the first bug found during an iteration.
// It carries the trace of the decisions that led to it so it can be replayed.
type Bug struct {
	Kind    BugKind
	Message string
	// Step is the number of decisions recorded when the bug was found
	Step  int
	Trace *trace.Trace
	// Stack is the goroutine stack of panics, empty otherwise
	Stack string
}

// enforce compilation error
var _ error = (*Bug)(nil)

// Error implements the standard error interface
func (b *Bug) Error() string {
	return fmt.Sprintf("%s bug at step %d: %s", b.Kind, b.Step, b.Message)
}

// Unwrap returns the sentinel error of the bug kind
func (b *Bug) Unwrap() error {
	return b.Kind.sentinel()
}
