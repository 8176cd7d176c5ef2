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
	"strconv"

	"github.com/Workiva/go-datastructures/queue"

	gerrors "github.com/tochemey/actorcheck/errors"
)

// Lock is a controlled, non-reentrant mutual exclusion lock for tasks.
//
// Acquire and Release are scheduling points. Tasks blocked on Acquire are
// granted the lock in the order they blocked. Acquiring a lock already held by
// the caller blocks forever and ends up reported as a deadlock.
type Lock struct {
	id      uint64
	rt      *Runtime
	owner   *operation
	waiters *queue.Queue
}

// NewLock creates a controlled lock
func (rt *Runtime) NewLock() *Lock {
	rt.lockCounter++
	l := &Lock{
		id:      rt.lockCounter,
		rt:      rt,
		waiters: queue.New(4),
	}
	rt.locks = append(rt.locks, l)
	return l
}

// Acquire suspends the calling task until it holds the lock
func (l *Lock) Acquire(tc *TaskContext) {
	op := tc.task.op
	if l.owner == nil {
		l.owner = op
	} else {
		op.status = statusBlockedOnResource
		if err := l.waiters.Put(op); err != nil {
			tc.rt.sched.reportBug(BugAssertion, "%s could not wait for %s: %v", tc.task, l, err)
		}
	}
	tc.point()
}

// Release releases the lock held by the calling task and hands it to the first waiter
func (l *Lock) Release(tc *TaskContext) error {
	op := tc.task.op
	if l.owner != op {
		return fmt.Errorf("%s: %w", l, gerrors.ErrLockNotHeld)
	}

	l.owner = nil
	if l.waiters.Len() > 0 {
		items, err := l.waiters.Get(1)
		if err == nil && len(items) == 1 {
			next := items[0].(*operation)
			l.owner = next
			next.status = statusEnabled
		}
	}

	tc.point()
	return nil
}

// IsHeld reports whether a task holds the lock
func (l *Lock) IsHeld() bool {
	return l.owner != nil
}

// String returns the Lock(id) rendering
func (l *Lock) String() string {
	return "Lock(" + strconv.FormatUint(l.id, 10) + ")"
}

func (l *Lock) dispose() {
	l.waiters.Dispose()
}
