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
	"slices"
	"strconv"

	"go.uber.org/multierr"

	gerrors "github.com/tochemey/actorcheck/errors"
	"github.com/tochemey/actorcheck/strategy"
)

// TaskFunc is the body of a controlled task. A returned error faults the task
// and is observed by the tasks awaiting it. A panic is reported as a bug.
type TaskFunc func(tc *TaskContext) (any, error)

// TaskStatus is the lifecycle status of a Task
type TaskStatus uint8

const (
	// TaskCreated is a task registered with the scheduler that has not run yet
	TaskCreated TaskStatus = iota
	// TaskRunning is a task holding the scheduling token
	TaskRunning
	// TaskSuspended is a task parked at a scheduling point
	TaskSuspended
	// TaskCompleted is a task that returned without error
	TaskCompleted
	// TaskFaulted is a task that returned an error
	TaskFaulted
	// TaskCanceled is a task canceled before it ran or that returned its context error
	TaskCanceled
)

// String returns the status name
func (s TaskStatus) String() string {
	switch s {
	case TaskCreated:
		return "created"
	case TaskRunning:
		return "running"
	case TaskSuspended:
		return "suspended"
	case TaskCompleted:
		return "completed"
	case TaskFaulted:
		return "faulted"
	default:
		return "canceled"
	}
}

// Task is a unit of asynchronous work whose interleavings are controlled by the scheduler.
//
// A Task runs on its own goroutine but only while the scheduler lets it: every
// await, yield, delay and lock operation is a scheduling point.
type Task struct {
	id     uint64
	name   string
	rt     *Runtime
	op     *operation
	fn     TaskFunc
	tc     *TaskContext
	ctx    context.Context
	cancel context.CancelFunc

	status  TaskStatus
	result  any
	err     error
	waiters []*operation

	// position of the task in the completion order of the runtime, from 1
	finished uint64
}

// ID returns the scheduling operation id of the task
func (t *Task) ID() uint64 {
	return t.id
}

// Name returns the task name
func (t *Task) Name() string {
	return t.name
}

// Status returns the task status
func (t *Task) Status() TaskStatus {
	return t.status
}

// IsDone reports whether the task completed, faulted or was canceled
func (t *Task) IsDone() bool {
	return t.status >= TaskCompleted
}

// Cancel cancels the task context. A task canceled before it runs never runs its function.
func (t *Task) Cancel() {
	t.cancel()
}

// Result returns the outcome of a done task without blocking.
// A faulted task may return a partial result along with its error.
// It is meant to be used once Runtime.Execute returned.
func (t *Task) Result() (any, error) {
	if !t.IsDone() {
		return nil, fmt.Errorf("%s is %s", t, t.status)
	}
	return t.result, t.err
}

// Await suspends the calling task until t is done and returns its outcome.
// Awaiting is always a scheduling point, even when t is already done.
func (t *Task) Await(tc *TaskContext) (any, error) {
	tc.await([]*Task{t}, false)
	return t.result, t.err
}

// String returns the Name(id) rendering of the task
func (t *Task) String() string {
	return t.name + "(" + strconv.FormatUint(t.id, 10) + ")"
}

func (t *Task) complete(result any, err error) {
	t.result = result
	switch {
	case err != nil && t.ctx.Err() != nil && errors.Is(err, t.ctx.Err()):
		t.status = TaskCanceled
		t.err = fmt.Errorf("%s %w: %w", t, gerrors.ErrTaskCanceled, err)
	case err != nil:
		// a faulted task keeps its partial result, e.g. the outcomes of a WhenAll
		t.status = TaskFaulted
		t.err = err
	default:
		t.status = TaskCompleted
	}

	t.rt.completions++
	t.finished = t.rt.completions
	t.cancel()
	t.op.status = statusCompleted
	for _, waiter := range t.waiters {
		waiter.refreshWait()
	}
	t.waiters = nil
}

// Await suspends the calling task until t is done and returns its result as a T
func Await[T any](tc *TaskContext, t *Task) (T, error) {
	var zero T
	result, err := t.Await(tc)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	value, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("%s result is %T, not %T", t, result, zero)
	}
	return value, nil
}

func (rt *Runtime) newTask(fn TaskFunc, owner ActorID, opts ...TaskOption) *Task {
	config := newTaskConfig(opts...)
	if fn == nil {
		fn = func(*TaskContext) (any, error) { return nil, nil }
	}

	parent := config.ctx
	if parent == nil {
		parent = rt.ctx
	}
	ctx, cancel := context.WithCancel(parent)

	id := rt.nextOperationID()
	t := &Task{
		id:     id,
		name:   config.name,
		rt:     rt,
		fn:     fn,
		ctx:    ctx,
		cancel: cancel,
		status: TaskCreated,
	}
	t.tc = newTaskContext(rt, t, owner)

	op := newOperation(id, t.String(), strategy.TaskOperation)
	op.task = t
	t.op = op
	rt.tasks = append(rt.tasks, t)
	rt.sched.add(op)
	return t
}

func (rt *Runtime) whenAll(owner ActorID, tasks []*Task) *Task {
	constituents := slices.Clone(tasks)
	return rt.newTask(func(tc *TaskContext) (any, error) {
		tc.await(constituents, false)
		results := make([]any, len(constituents))
		var err error
		for i, t := range constituents {
			results[i] = t.result
			err = multierr.Append(err, t.err)
		}
		return results, err
	}, owner, WithTaskName("WhenAll"))
}

func (rt *Runtime) whenAny(owner ActorID, tasks []*Task) *Task {
	constituents := slices.Clone(tasks)
	return rt.newTask(func(tc *TaskContext) (any, error) {
		if len(constituents) == 0 {
			return nil, errors.New("WhenAny requires at least one task")
		}
		tc.await(constituents, true)
		var first *Task
		for _, t := range constituents {
			if t.IsDone() && (first == nil || t.finished < first.finished) {
				first = t
			}
		}
		return first, nil
	}, owner, WithTaskName("WhenAny"))
}
