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
	"fmt"
	"time"
)

// TaskContext is handed to the function of a controlled task.
// It must only be used by the task it was given to.
type TaskContext struct {
	execution
	task *Task
}

func newTaskContext(rt *Runtime, t *Task, owner ActorID) *TaskContext {
	return &TaskContext{
		execution: execution{
			rt:    rt,
			kind:  taskExecution,
			owner: owner,
			label: t.String(),
		},
		task: t,
	}
}

// Context returns the task context, canceled by Task.Cancel and when the iteration ends
func (tc *TaskContext) Context() context.Context {
	return tc.task.ctx
}

// Task returns the running task
func (tc *TaskContext) Task() *Task {
	return tc.task
}

// Await suspends the task until t is done and returns its outcome
func (tc *TaskContext) Await(t *Task) (any, error) {
	return t.Await(tc)
}

// Send enqueues the event in the mailbox of the target actor after a
// scheduling point. The sender is the actor owning the task.
func (tc *TaskContext) Send(to ActorID, event Event) {
	tc.point()
	tc.execution.Send(to, event)
}

// Yield gives the other enabled operations a chance to run
func (tc *TaskContext) Yield() {
	tc.point()
}

// Delay suspends the task behind a delay operation. No wall-clock time passes:
// the delay completes whenever the scheduler picks it. It returns the context
// error when the task is canceled.
func (tc *TaskContext) Delay(d time.Duration) error {
	if err := tc.Context().Err(); err != nil {
		return err
	}
	delay := tc.rt.newTask(nil, tc.owner, WithTaskName(fmt.Sprintf("Delay[%s]", d)))
	_, _ = delay.Await(tc)
	return tc.Context().Err()
}

// await suspends the task until the awaited tasks allow it to resume
func (tc *TaskContext) await(tasks []*Task, waitAny bool) {
	op := tc.task.op
	for _, t := range tasks {
		if t == nil {
			tc.rt.sched.reportBug(BugAssertion, "%s awaited a nil task", tc.task)
		}
		if t.rt != tc.rt {
			tc.rt.sched.reportBug(BugAssertion, "%s awaited %s from another runtime", tc.task, t)
		}
	}

	op.waitingOn = tasks
	op.waitAny = waitAny
	if !op.waitSatisfied() {
		op.status = statusBlockedOnWait
		for _, t := range tasks {
			if !t.IsDone() {
				t.waiters = append(t.waiters, op)
			}
		}
	}

	tc.point()
	op.waitingOn = nil
	op.waitAny = false
}

// point is a scheduling point of the task
func (tc *TaskContext) point() {
	t := tc.task
	t.status = TaskSuspended
	tc.rt.sched.schedulePoint(t.op)
	t.status = TaskRunning
}
