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
	"slices"

	goset "github.com/deckarep/golang-set/v2"

	gerrors "github.com/tochemey/actorcheck/errors"
	"github.com/tochemey/actorcheck/hash"
	"github.com/tochemey/actorcheck/log"
	"github.com/tochemey/actorcheck/strategy"
	"github.com/tochemey/actorcheck/trace"
)

type phase uint8

const (
	phaseIdle phase = iota
	phaseSetup
	phaseRunning
	phaseDone
)

// Result is the outcome of one iteration
type Result struct {
	// Bug is the first bug found, nil when the iteration passed
	Bug *Bug
	// Err reports why the iteration could not complete: a replay divergence,
	// a canceled context or a setup error. It is never a bug.
	Err error
	// Steps is the number of scheduling and nondeterministic decisions taken
	Steps int
	// Trace replays the iteration
	Trace *trace.Trace
	// StepBoundHit is set when the iteration stopped at the step bound
	StepBoundHit bool
	// Exhausted is set when the strategy had no decision left
	Exhausted bool
	// States are the distinct program state fingerprints seen, when state hashing is enabled
	States []uint64
}

// Buggy reports whether the iteration found a bug
func (r *Result) Buggy() bool {
	return r.Bug != nil
}

// Runtime executes one iteration of an actor program under a controlled scheduler.
//
// A Runtime is created per iteration with the strategy driving its decisions.
// Actors, monitors and tasks are registered on it, usually from the setup
// function given to Execute, then Execute runs the program until no operation
// can make progress. Actor and task code interacts with the runtime through
// the Context and TaskContext they receive.
//
// A Runtime is not safe for concurrent use outside of the code it schedules.
type Runtime struct {
	logger         log.Logger
	sched          *scheduler
	coverage       *Coverage
	maxSteps       int
	stepBoundAsBug bool
	hashStates     bool

	ctx    context.Context
	cancel context.CancelFunc

	phase        phase
	counter      uint64
	lockCounter  uint64
	completions  uint64
	actors       map[uint64]*actorCell
	monitors     map[*Definition]*monitor
	monitorOrder []*monitor
	tasks        []*Task
	locks        []*Lock
	states       goset.Set[uint64]
}

// NewRuntime creates a Runtime driven by the given strategy
func NewRuntime(strat strategy.Strategy, opts ...Option) *Runtime {
	ctx, cancel := context.WithCancel(context.Background())
	rt := &Runtime{
		logger:   log.DiscardLogger,
		ctx:      ctx,
		cancel:   cancel,
		actors:   make(map[uint64]*actorCell),
		monitors: make(map[*Definition]*monitor),
		states:   goset.NewThreadUnsafeSet[uint64](),
	}

	for _, opt := range opts {
		opt.Apply(rt)
	}

	if rt.coverage == nil {
		rt.coverage = NewCoverage()
	}

	rt.sched = newScheduler(rt, strat)
	return rt
}

// Logger returns the runtime logger
func (rt *Runtime) Logger() log.Logger {
	return rt.logger
}

// Coverage returns the activity coverage recorded by the runtime
func (rt *Runtime) Coverage() *Coverage {
	return rt.coverage
}

// CreateActor registers an actor created from the definition. The actor start
// state entry runs with the given event when the actor is first scheduled.
func (rt *Runtime) CreateActor(def *Definition, event Event, opts ...SpawnOption) (ActorID, error) {
	return rt.spawn(def, event, NoActor, opts...)
}

// Send enqueues the event in the mailbox of the target actor right away.
// It is meant for the setup function, where nothing else runs.
// Sending to a halted or unknown actor is a no-op.
func (rt *Runtime) Send(to ActorID, event Event) error {
	if rt.phase == phaseDone {
		return gerrors.ErrRuntimeNotRunning
	}
	if event == nil {
		return fmt.Errorf("cannot send a nil event to %s", to)
	}
	rt.deliver(NoActor, to, event)
	return nil
}

// ActorState returns the current state of the given actor.
// Halted actors are no longer known to the runtime.
func (rt *Runtime) ActorState(id ActorID) (string, error) {
	cell, ok := rt.actors[id.value]
	if !ok {
		return "", gerrors.NewErrUndefinedActor(id.String())
	}
	return cell.machine.currentName(), nil
}

// Run registers a controlled task. The task starts when first scheduled.
func (rt *Runtime) Run(fn TaskFunc, opts ...TaskOption) (*Task, error) {
	if rt.phase == phaseDone {
		return nil, gerrors.ErrRuntimeNotRunning
	}
	return rt.newTask(fn, NoActor, opts...), nil
}

// Execute runs the setup function, then schedules operations until none can
// make progress, a bug is found or the iteration is otherwise stopped.
// setup may be nil. Execute can only be called once.
func (rt *Runtime) Execute(ctx context.Context, setup func(*Runtime) error) *Result {
	if rt.phase != phaseIdle {
		return &Result{Err: gerrors.ErrRuntimeStarted, Trace: trace.New()}
	}

	s := rt.sched
	var setupErr error
	rt.phase = phaseSetup
	if setup != nil {
		s.guard("setup", func() {
			setupErr = setup(rt)
		})
	}

	rt.phase = phaseRunning
	if setupErr == nil && !s.done() {
		s.guard("monitors", rt.startMonitors)
	}

	if setupErr == nil && !s.done() {
		s.loop(ctx)
	}

	if s.quiescent {
		rt.checkLiveness()
	}

	if s.stepBoundHit && rt.stepBoundAsBug {
		s.recordBug(BugLiveness, fmt.Sprintf("reached the bound of %d steps", rt.maxSteps), "")
	}

	rt.shutdown()

	states := rt.states.ToSlice()
	slices.Sort(states)

	result := &Result{
		Bug:          s.bug,
		Err:          setupErr,
		Steps:        s.trace.Len(),
		Trace:        s.trace.Clone(),
		StepBoundHit: s.stepBoundHit,
		Exhausted:    s.exhausted,
		States:       states,
	}

	if result.Err == nil {
		result.Err = s.endErr
	}

	if result.Bug != nil {
		result.Bug.Trace = result.Trace
		rt.logger.Debugf("iteration failed after %d steps: %v", result.Steps, result.Bug)
	}

	return result
}

func (rt *Runtime) shutdown() {
	rt.sched.shutdown()
	rt.cancel()
	for _, t := range rt.tasks {
		t.cancel()
	}
	for _, l := range rt.locks {
		l.dispose()
	}
	for _, cell := range rt.actors {
		cell.mailbox.Dispose()
	}
	rt.phase = phaseDone
}

func (rt *Runtime) nextOperationID() uint64 {
	rt.counter++
	return rt.counter
}

func (rt *Runtime) spawn(def *Definition, event Event, creator ActorID, opts ...SpawnOption) (ActorID, error) {
	if rt.phase == phaseDone {
		return NoActor, gerrors.ErrRuntimeNotRunning
	}
	if def == nil {
		return NoActor, fmt.Errorf("%w: nil definition", gerrors.ErrInvalidDefinition)
	}

	config := &spawnConfig{name: def.name}
	for _, opt := range opts {
		opt.Apply(config)
	}

	value := rt.nextOperationID()
	id := ActorID{value: value, name: config.name, kind: def.name}

	m := newMachine(rt, def, id.String(), false)
	newContext(rt, m, actorExecution, id)

	op := newOperation(value, id.String(), strategy.ActorOperation)
	cell := &actorCell{
		id:      id,
		op:      op,
		machine: m,
		mailbox: newMailbox(),
		initial: event,
		creator: creator,
	}
	op.actor = cell

	rt.actors[value] = cell
	rt.coverage.register(def)
	rt.sched.add(op)

	if rt.logger.Enabled(log.DebugLevel) {
		rt.logger.Debugf("%s created by %s", id, creator)
	}
	return id, nil
}

// post buffers an event sent by an actor action. The event reaches the target
// mailbox on a later step of the sender, so that every send is a scheduling
// decision while the action itself still runs to completion.
func (rt *Runtime) post(sender, to ActorID, event Event) {
	cell, ok := rt.actors[sender.value]
	if !ok {
		rt.deliver(sender, to, event)
		return
	}
	cell.outbox = append(cell.outbox, outgoing{to: to, event: event})
}

// deliver enqueues the event and enables the target when it can dispatch it
func (rt *Runtime) deliver(sender, to ActorID, event Event) {
	cell, ok := rt.actors[to.value]
	if !ok || !cell.mailbox.Enqueue(newEnvelope(event, sender)) {
		if rt.logger.Enabled(log.DebugLevel) {
			rt.logger.Debugf("dropped %s sent by %s to %s", eventName(event), sender, to)
		}
		return
	}
	cell.refresh()
}

// deregister removes a halted actor. Its operation completes once its outbox is flushed.
func (rt *Runtime) deregister(cell *actorCell) {
	cell.mailbox.Dispose()
	delete(rt.actors, cell.id.value)
	if rt.logger.Enabled(log.DebugLevel) {
		rt.logger.Debugf("%s halted", cell.id)
	}
}

// recordState hashes the whole program state after a step
func (rt *Runtime) recordState() {
	if !rt.hashStates {
		return
	}
	values := make([]uint64, 0, len(rt.sched.ops)+1)
	for _, op := range rt.sched.ops {
		if op.status != statusCompleted {
			values = append(values, op.fingerprint())
		}
	}
	values = append(values, rt.monitorsFingerprint())
	rt.states.Add(hash.Combine(values...))
}

// outgoing is an event sent by an action and not yet delivered
type outgoing struct {
	to    ActorID
	event Event
}

// actorCell is the runtime side of an actor
type actorCell struct {
	id      ActorID
	op      *operation
	machine *machine
	mailbox *mailbox
	outbox  []outgoing
	initial Event
	creator ActorID
	started bool
}

// step delivers the oldest pending send when there is one. Otherwise it runs
// the start entry on the first step, then one event per step.
func (c *actorCell) step() {
	m := c.machine
	if len(c.outbox) > 0 {
		next := c.outbox[0]
		c.outbox[0] = outgoing{}
		c.outbox = c.outbox[1:]
		m.rt.deliver(c.id, next.to, next.event)
		c.refresh()
		return
	}

	if !c.started {
		c.started = true
		m.ctx.sender = c.creator
		initial := c.initial
		c.initial = nil
		m.start(initial)
	} else if env, ok := c.mailbox.Dequeue(m.canDispatch); ok {
		m.ctx.sender = env.sender
		if m.rt.logger.Enabled(log.DebugLevel) {
			m.rt.logger.Debugf("%s dequeued %s from %s in state %s", c.id, eventName(env.event), env.sender, m.currentName())
		}
		m.handle(env.event)
	}

	if m.halted {
		m.rt.deregister(c)
	}
	c.refresh()
}

// refresh recomputes the scheduling status of the actor
func (c *actorCell) refresh() {
	switch {
	case len(c.outbox) > 0:
		c.op.status = statusEnabled
	case c.machine.halted:
		c.op.status = statusCompleted
	case !c.started || c.mailbox.HasDispatchable(c.machine.canDispatch):
		c.op.status = statusEnabled
	default:
		c.op.status = statusBlockedOnReceive
	}
}

func (c *actorCell) fingerprint() uint64 {
	started := uint64(0)
	if c.started {
		started = 1
	}
	return hash.Combine(c.machine.fingerprint(), uint64(c.mailbox.Len()), uint64(len(c.outbox)), started)
}
