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

	"github.com/tochemey/actorcheck/log"
)

type executionKind uint8

const (
	driverExecution executionKind = iota
	actorExecution
	taskExecution
	monitorExecution
)

// execution holds the operations shared by every kind of user code:
// actor and monitor actions through Context, tasks through TaskContext.
type execution struct {
	rt   *Runtime
	kind executionKind
	// owner is the actor on whose behalf the code runs. It is the sender
	// of the events sent from this execution.
	owner ActorID
	label string
}

// Send enqueues the event in the mailbox of the target actor.
// Every send is a scheduling point: events sent by an action are delivered one
// per step of the sender once the action completes, in the order they were sent.
// Sending to a halted or unknown actor is a no-op.
func (x *execution) Send(to ActorID, event Event) {
	x.forbidInMonitor("send events")
	if event == nil {
		x.rt.sched.reportBug(BugAssertion, "%s sent a nil event to %s", x.label, to)
	}
	if x.kind == actorExecution {
		x.rt.post(x.owner, to, event)
		return
	}
	x.rt.deliver(x.owner, to, event)
}

// CreateActor creates an actor from the definition. Its start state entry runs
// with the given event when the actor is first scheduled.
func (x *execution) CreateActor(def *Definition, event Event, opts ...SpawnOption) ActorID {
	x.forbidInMonitor("create actors")
	id, err := x.rt.spawn(def, event, x.owner, opts...)
	if err != nil {
		x.rt.sched.reportBug(BugAssertion, "%s failed to create an actor: %v", x.label, err)
	}
	return id
}

// Monitor delivers the event synchronously to the registered monitor of the given definition.
// It is a no-op when the monitor is not registered.
func (x *execution) Monitor(def *Definition, event Event) {
	x.rt.invokeMonitor(def, event)
}

// Assert reports an assertion bug when the condition is false
func (x *execution) Assert(condition bool, format string, args ...any) {
	if !condition {
		x.rt.sched.reportBug(BugAssertion, format, args...)
	}
}

// Random returns a controlled nondeterministic boolean
func (x *execution) Random() bool {
	return x.rt.sched.nextBoolean()
}

// RandomInteger returns a controlled nondeterministic integer in [0, bound)
func (x *execution) RandomInteger(bound int) int {
	return x.rt.sched.nextInteger(bound)
}

// Run creates a controlled task running fn. The task starts when first scheduled.
func (x *execution) Run(fn TaskFunc, opts ...TaskOption) *Task {
	x.forbidInMonitor("run tasks")
	return x.rt.newTask(fn, x.owner, opts...)
}

// WhenAll returns a task that completes when every given task is done.
// Its result is the slice of the task results and its error aggregates their errors.
func (x *execution) WhenAll(tasks ...*Task) *Task {
	x.forbidInMonitor("run tasks")
	return x.rt.whenAll(x.owner, tasks)
}

// WhenAny returns a task that completes when one of the given tasks is done.
// Its result is the first completed *Task.
func (x *execution) WhenAny(tasks ...*Task) *Task {
	x.forbidInMonitor("run tasks")
	return x.rt.whenAny(x.owner, tasks)
}

// NewLock creates a controlled lock
func (x *execution) NewLock() *Lock {
	return x.rt.NewLock()
}

// Logger returns the runtime logger
func (x *execution) Logger() log.Logger {
	return x.rt.logger
}

func (x *execution) forbidInMonitor(what string) {
	if x.kind == monitorExecution {
		x.rt.sched.reportBug(BugAssertion, "monitor %s cannot %s", x.label, what)
	}
}

// Context is handed to the actions of actors and monitors.
// It is only valid for the duration of the action it is passed to.
type Context struct {
	execution
	machine *machine
	event   Event
	sender  ActorID
}

func newContext(rt *Runtime, m *machine, kind executionKind, self ActorID) *Context {
	ctx := &Context{
		execution: execution{
			rt:    rt,
			kind:  kind,
			owner: self,
			label: m.label,
		},
		machine: m,
	}
	m.ctx = ctx
	return ctx
}

// Self returns the id of the running actor. It is NoActor for monitors.
func (c *Context) Self() ActorID {
	return c.owner
}

// Event returns the event being handled
func (c *Context) Event() Event {
	return c.event
}

// Sender returns the actor that sent the event being handled
func (c *Context) Sender() ActorID {
	return c.sender
}

// CurrentState returns the name of the state on top of the state stack
func (c *Context) CurrentState() string {
	return c.machine.currentName()
}

// Raise handles the event right after the current action, before any other event is dequeued.
// At most one event can be raised per action.
func (c *Context) Raise(event Event) {
	c.machine.raise(event)
}

// Pop removes the top state once the current action completes. Its exit action runs.
// Popping the last state is a bug.
func (c *Context) Pop() {
	c.machine.popRequested = true
}

// Halt raises the Halt event
func (c *Context) Halt() {
	c.machine.raise(Halt{})
}

// String returns the label of the running actor or monitor
func (c *Context) String() string {
	return fmt.Sprintf("%s[%s]", c.label, c.machine.stateNames())
}
