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
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"

	"go.uber.org/atomic"

	gerrors "github.com/tochemey/actorcheck/errors"
	"github.com/tochemey/actorcheck/log"
	"github.com/tochemey/actorcheck/strategy"
	"github.com/tochemey/actorcheck/trace"
)

// signals used to unwind user code. They never escape the runtime.
type (
	// a bug has been recorded
	bugSignal struct{}
	// the iteration ended without a bug: step bound, exhausted or diverged strategy
	endSignal struct{}
	// the scheduler is shutting down and parked tasks must exit
	cancelSignal struct{}
)

// scheduler serializes every operation of an iteration.
//
// The scheduling loop runs on the goroutine calling Runtime.Execute. Actor
// steps run inline on that goroutine. Each controlled task runs on its own
// goroutine but only while it holds the scheduling token: the loop hands the
// token to a task through the task wake channel and waits on the yield channel
// until the task reaches its next scheduling point, completes or fails.
// Exactly one operation runs at any time, which makes every runtime structure
// single-threaded by construction.
type scheduler struct {
	rt       *Runtime
	strategy strategy.Strategy
	trace    *trace.Trace
	logger   log.Logger

	ops     []*operation
	byID    map[uint64]*operation
	current *operation

	maxSteps     int
	fingerprints bool
	candidates   []strategy.Operation

	bug          *Bug
	endErr       error
	stepBoundHit bool
	exhausted    bool
	quiescent    bool

	yield    chan struct{}
	stopCh   chan struct{}
	stopping *atomic.Bool
	wg       sync.WaitGroup
}

func newScheduler(rt *Runtime, strat strategy.Strategy) *scheduler {
	return &scheduler{
		rt:           rt,
		strategy:     strat,
		trace:        trace.New(),
		logger:       rt.logger,
		ops:          make([]*operation, 0, 16),
		byID:         make(map[uint64]*operation),
		maxSteps:     rt.maxSteps,
		fingerprints: strategy.WantsFingerprints(strat),
		candidates:   make([]strategy.Operation, 0, 16),
		yield:        make(chan struct{}),
		stopCh:       make(chan struct{}),
		stopping:     atomic.NewBool(false),
	}
}

// add registers a new operation. Creating an operation is not a scheduling point.
func (s *scheduler) add(op *operation) {
	s.ops = append(s.ops, op)
	s.byID[op.id] = op
}

// done reports whether the iteration must stop
func (s *scheduler) done() bool {
	return s.bug != nil || s.endErr != nil || s.stepBoundHit || s.exhausted
}

// loop schedules operations until none is enabled or the iteration ends
func (s *scheduler) loop(ctx context.Context) {
	for !s.done() {
		if err := ctx.Err(); err != nil {
			s.endErr = err
			return
		}

		candidates := s.enabled()
		if len(candidates) == 0 {
			s.checkDeadlock()
			s.quiescent = s.bug == nil
			return
		}

		if s.boundReached() {
			s.stepBoundHit = true
			return
		}

		id, err := s.strategy.NextOperation(s.currentID(), candidates)
		if err != nil {
			s.fail(err)
			return
		}

		op, ok := s.byID[id]
		if !ok || op.status != statusEnabled {
			s.endErr = fmt.Errorf("strategy picked operation %d which is not enabled: %w", id, gerrors.ErrReplayDiverged)
			return
		}

		s.trace.AddScheduling(id)
		s.current = op
		if s.logger.Enabled(log.DebugLevel) {
			s.logger.Debugf("step %d: scheduling %s", s.trace.Len(), op.label())
		}

		s.execute(op)
		s.rt.recordState()
	}
}

// execute gives the scheduling token to the operation until its next scheduling point
func (s *scheduler) execute(op *operation) {
	switch {
	case op.actor != nil:
		s.guard(op.label(), op.actor.step)
	case !op.started:
		op.started = true
		if err := op.task.ctx.Err(); err != nil {
			// canceled before it ever ran
			op.task.complete(nil, err)
			return
		}
		s.startTask(op)
		<-s.yield
	default:
		op.wake <- struct{}{}
		<-s.yield
	}
}

// enabled returns the enabled operations in creation order and drops the completed ones
func (s *scheduler) enabled() []strategy.Operation {
	s.candidates = s.candidates[:0]
	live := s.ops[:0]
	for _, op := range s.ops {
		if op.status == statusCompleted {
			continue
		}
		live = append(live, op)
		if op.status != statusEnabled {
			continue
		}

		candidate := strategy.Operation{ID: op.id, Name: op.name, Kind: op.kind}
		if s.fingerprints {
			candidate.Fingerprint = op.fingerprint()
		}
		s.candidates = append(s.candidates, candidate)
	}

	clear(s.ops[len(live):])
	s.ops = live
	return s.candidates
}

func (s *scheduler) checkDeadlock() {
	blocked := make([]string, 0)
	for _, op := range s.ops {
		if op.status == statusBlockedOnWait || op.status == statusBlockedOnResource {
			blocked = append(blocked, fmt.Sprintf("%s is %s", op.label(), op.status))
		}
	}
	if len(blocked) > 0 {
		s.recordBug(BugDeadlock, "no operation can run while "+strings.Join(blocked, ", "), "")
	}
}

func (s *scheduler) currentID() uint64 {
	if s.current == nil {
		return 0
	}
	return s.current.id
}

func (s *scheduler) boundReached() bool {
	return s.maxSteps > 0 && s.trace.Len() >= s.maxSteps
}

// fail ends the iteration on a strategy error
func (s *scheduler) fail(err error) {
	if errors.Is(err, strategy.ErrExhausted) {
		s.exhausted = true
		return
	}
	s.endErr = err
}

func (s *scheduler) nextBoolean() bool {
	if s.boundReached() {
		s.stepBoundHit = true
		panic(endSignal{})
	}
	value, err := s.strategy.NextBoolean(s.currentID())
	if err != nil {
		s.fail(err)
		panic(endSignal{})
	}
	s.trace.AddBoolean(value)
	return value
}

func (s *scheduler) nextInteger(bound int) int {
	if bound <= 0 {
		s.reportBug(BugAssertion, "nondeterministic integer choice bound must be positive, got %d", bound)
	}
	if s.boundReached() {
		s.stepBoundHit = true
		panic(endSignal{})
	}
	value, err := s.strategy.NextInteger(s.currentID(), bound)
	if err != nil {
		s.fail(err)
		panic(endSignal{})
	}
	s.trace.AddInteger(value)
	return value
}

// reportBug records the bug and unwinds the running user code
func (s *scheduler) reportBug(kind BugKind, format string, args ...any) {
	s.recordBug(kind, fmt.Sprintf(format, args...), "")
	panic(bugSignal{})
}

// recordBug keeps the first bug of the iteration
func (s *scheduler) recordBug(kind BugKind, message, stack string) {
	if s.bug != nil {
		return
	}
	s.bug = &Bug{
		Kind:    kind,
		Message: message,
		Step:    s.trace.Len(),
		Stack:   stack,
	}
	if s.logger.Enabled(log.DebugLevel) {
		s.logger.Debugf("%s bug at step %d: %s", kind, s.bug.Step, message)
	}
}

// guard runs user code on the loop goroutine
func (s *scheduler) guard(label string, fn func()) {
	defer func() {
		r := recover()
		switch r.(type) {
		case nil, bugSignal, endSignal:
		default:
			s.recordBug(BugUnhandledPanic, fmt.Sprintf("%s %v", label, gerrors.NewPanicError(r)), string(debug.Stack()))
		}
	}()
	fn()
}

func (s *scheduler) startTask(op *operation) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runTask(op)
	}()
}

// runTask is the body of a task goroutine
func (s *scheduler) runTask(op *operation) {
	t := op.task
	defer func() {
		r := recover()
		switch r.(type) {
		case cancelSignal:
			return
		case nil, bugSignal, endSignal:
		default:
			s.recordBug(BugUnhandledPanic, fmt.Sprintf("%s %v", t, gerrors.NewPanicError(r)), string(debug.Stack()))
		}
		s.handBack()
	}()

	t.status = TaskRunning
	result, err := t.fn(t.tc)
	t.complete(result, err)
}

// handBack returns the scheduling token to the loop
func (s *scheduler) handBack() {
	select {
	case s.yield <- struct{}{}:
	case <-s.stopCh:
	}
}

// schedulePoint is called by a task goroutine: it hands the token back and
// parks until the operation is scheduled again
func (s *scheduler) schedulePoint(op *operation) {
	s.handBack()
	select {
	case <-op.wake:
	case <-s.stopCh:
		panic(cancelSignal{})
	}
	if s.stopping.Load() {
		panic(cancelSignal{})
	}
}

// shutdown unwinds every parked task goroutine
func (s *scheduler) shutdown() {
	if s.stopping.Swap(true) {
		return
	}
	close(s.stopCh)
	s.wg.Wait()
}
