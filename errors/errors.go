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

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrAssertionFailure is the sentinel behind every failed assertion raised by an actor,
	// a monitor or a controlled task.
	ErrAssertionFailure = errors.New("assertion failure")

	// ErrUnhandledEvent indicates that an actor dequeued an event that none of the states
	// in its active state stack handles, defers or ignores.
	ErrUnhandledEvent = errors.New("unhandled event")

	// ErrUnhandledPanic indicates that user code panicked inside an actor action or a task.
	ErrUnhandledPanic = errors.New("unhandled panic")

	// ErrDeadlock indicates that no operation is runnable while some operations are still blocked.
	ErrDeadlock = errors.New("deadlock detected")

	// ErrLivenessViolation indicates that a monitor ended the run in a hot state or that
	// the step bound was reached while configured as a bug.
	ErrLivenessViolation = errors.New("liveness violation")

	// ErrStrategyExhausted is returned by a scheduling strategy that has no decision left to make.
	// It stops the exploration and is never reported as a bug.
	ErrStrategyExhausted = errors.New("scheduling strategy exhausted")

	// ErrReplayDiverged indicates that the program took a different path than the recorded trace.
	ErrReplayDiverged = errors.New("replay diverged from the recorded trace")

	// ErrRuntimeStarted is returned when an operation that must happen before the run
	// is attempted after the runtime started executing.
	ErrRuntimeStarted = errors.New("runtime already started")

	// ErrRuntimeNotRunning is returned when the runtime is used after its execution ended.
	ErrRuntimeNotRunning = errors.New("runtime is not running")

	// ErrInvalidDefinition is returned when a state machine definition is malformed.
	ErrInvalidDefinition = errors.New("invalid state machine definition")

	// ErrMonitorAlreadyRegistered is returned when the same monitor definition is registered twice.
	ErrMonitorAlreadyRegistered = errors.New("monitor already registered")

	// ErrInvalidMonitor is returned when a monitor definition uses a feature reserved to actors.
	ErrInvalidMonitor = errors.New("invalid monitor definition")

	// ErrUndefinedActor is returned when an actor reference is undefined or unknown in the runtime.
	ErrUndefinedActor = errors.New("actor is not defined")

	// ErrTaskCanceled is returned when awaiting a task that completed as canceled.
	ErrTaskCanceled = errors.New("task canceled")

	// ErrLockNotHeld is returned when releasing a lock the caller does not hold.
	ErrLockNotHeld = errors.New("lock is not held by the caller")

	// ErrInvalidIterations is returned when the number of iterations is not positive.
	ErrInvalidIterations = errors.New("invalid number of iterations")

	// ErrInvalidParallelism is returned when the number of workers is not positive.
	ErrInvalidParallelism = errors.New("invalid parallelism")

	// ErrInvalidStrategy is returned when the requested scheduling strategy is unknown.
	ErrInvalidStrategy = errors.New("invalid scheduling strategy")

	// ErrTestRequired is returned when the engine is created without a test function.
	ErrTestRequired = errors.New("test function is required")

	// ErrTraceNotFound is returned when a trace record does not exist in the store.
	ErrTraceNotFound = errors.New("trace not found")

	// ErrTraceStoreClosed is returned when the trace store is used after Close.
	ErrTraceStoreClosed = errors.New("trace store is closed")

	// ErrInvalidTrace is returned when a trace cannot be parsed or decoded.
	ErrInvalidTrace = errors.New("invalid trace")

	// ErrUnknownBenchmark is returned when looking up a benchmark that is not registered.
	ErrUnknownBenchmark = errors.New("unknown benchmark")
)

// NewErrInvalidDefinition formats an ErrInvalidDefinition for the given definition name.
func NewErrInvalidDefinition(name string, err error) error {
	return fmt.Errorf("definition=(%s) %w: %w", name, ErrInvalidDefinition, err)
}

// NewErrUndefinedActor formats an ErrUndefinedActor for the given actor.
func NewErrUndefinedActor(actor string) error {
	return fmt.Errorf("actor=(%s) %w", actor, ErrUndefinedActor)
}

// NewErrUnknownBenchmark formats an ErrUnknownBenchmark for the given name.
func NewErrUnknownBenchmark(name string) error {
	return fmt.Errorf("benchmark=(%s) %w", name, ErrUnknownBenchmark)
}

// NewErrInvalidTrace wraps a base error with ErrInvalidTrace for additional context.
func NewErrInvalidTrace(err error) error {
	return errors.Join(ErrInvalidTrace, err)
}

// PanicError defines the panic error
// wrapping the recovered value
type PanicError struct {
	err error
}

// enforce compilation error
var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError from a recovered value
func NewPanicError(recovered any) *PanicError {
	switch v := recovered.(type) {
	case error:
		return &PanicError{v}
	default:
		return &PanicError{fmt.Errorf("%v", v)}
	}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

func (e *PanicError) Unwrap() error {
	return e.err
}
