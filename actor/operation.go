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
	"github.com/tochemey/actorcheck/hash"
	"github.com/tochemey/actorcheck/strategy"
)

type operationStatus uint8

const (
	// enabled operations can be picked by the strategy
	statusEnabled operationStatus = iota
	// an actor without any dispatchable event
	statusBlockedOnReceive
	// a task awaiting other tasks
	statusBlockedOnWait
	// a task waiting for a lock
	statusBlockedOnResource
	statusCompleted
)

func (s operationStatus) String() string {
	switch s {
	case statusEnabled:
		return "enabled"
	case statusBlockedOnReceive:
		return "blocked on receive"
	case statusBlockedOnWait:
		return "blocked on wait"
	case statusBlockedOnResource:
		return "blocked on resource"
	default:
		return "completed"
	}
}

// operation is a schedulable unit of work: an actor or a controlled task.
type operation struct {
	id     uint64
	name   string
	kind   strategy.OperationKind
	status operationStatus

	actor *actorCell
	task  *Task

	// task goroutine handoff, buffered with capacity one
	wake    chan struct{}
	started bool

	// tasks awaited while blocked on wait
	waitingOn []*Task
	waitAny   bool
}

func newOperation(id uint64, name string, kind strategy.OperationKind) *operation {
	op := &operation{
		id:     id,
		name:   name,
		kind:   kind,
		status: statusEnabled,
	}
	if kind == strategy.TaskOperation {
		op.wake = make(chan struct{}, 1)
	}
	return op
}

// label returns the Name(id) rendering of the operation
func (op *operation) label() string {
	if op.actor != nil {
		return op.actor.id.String()
	}
	return op.task.String()
}

// waitSatisfied reports whether the tasks awaited by the operation allow it to resume
func (op *operation) waitSatisfied() bool {
	if len(op.waitingOn) == 0 {
		return true
	}
	for _, t := range op.waitingOn {
		done := t.IsDone()
		if op.waitAny && done {
			return true
		}
		if !op.waitAny && !done {
			return false
		}
	}
	return !op.waitAny
}

// refreshWait enables an operation blocked on wait once its awaited tasks allow it
func (op *operation) refreshWait() {
	if op.status == statusBlockedOnWait && op.waitSatisfied() {
		op.status = statusEnabled
	}
}

func (op *operation) fingerprint() uint64 {
	if op.actor != nil {
		return op.actor.fingerprint()
	}
	return hash.Combine(op.id, uint64(op.status), uint64(op.task.status))
}
