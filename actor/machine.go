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
	"reflect"
	"strings"

	"github.com/tochemey/actorcheck/hash"
	"github.com/tochemey/actorcheck/log"
)

// Fingerprinter can be implemented by a state machine type to contribute its
// own fields to the state fingerprint used by state-guided strategies and by
// the distinct states count of a run. Without it only the definition, the
// state stack and the mailbox size are hashed.
type Fingerprinter interface {
	Fingerprint() uint64
}

type disposition uint8

const (
	unhandled disposition = iota
	handled
	deferred
	ignored
)

// machine is a running instance of a Definition, either an actor or a monitor
type machine struct {
	rt       *Runtime
	def      *Definition
	instance any
	label    string
	monitor  bool
	stack    []*stateDef
	ctx      *Context

	raised       Event
	hasRaised    bool
	popRequested bool
	halted       bool
}

func newMachine(rt *Runtime, def *Definition, label string, monitor bool) *machine {
	return &machine{
		rt:       rt,
		def:      def,
		instance: def.factory(),
		label:    label,
		monitor:  monitor,
		stack:    make([]*stateDef, 0, 2),
	}
}

// current returns the state on top of the stack
func (m *machine) current() *stateDef {
	return m.stack[len(m.stack)-1]
}

// currentName returns the name of the top state or an empty string before start
func (m *machine) currentName() string {
	if len(m.stack) == 0 {
		return ""
	}
	return m.current().name
}

// lookup searches the state stack from top to bottom for the disposition of the event type
func (m *machine) lookup(t reflect.Type) (disposition, *handler) {
	for i := len(m.stack) - 1; i >= 0; i-- {
		state := m.stack[i]
		if h, ok := state.handlers[t]; ok {
			return handled, h
		}
		if state.deferred.Contains(t) {
			return deferred, nil
		}
		if state.ignored.Contains(t) {
			return ignored, nil
		}
	}
	return unhandled, nil
}

// canDispatch reports whether an event of the given type can be dequeued in the current state
func (m *machine) canDispatch(t reflect.Type) bool {
	d, _ := m.lookup(t)
	return d != deferred
}

// start enters the start state with the creation event
func (m *machine) start(event Event) {
	state := m.def.states[m.def.start]
	m.stack = append(m.stack, state)
	m.rt.coverage.visit(m.def.name, state.name)
	m.run(state.entry, event)
	m.drain()
}

// handle dispatches the event then the events raised while handling it,
// all within the same run-to-completion step
func (m *machine) handle(event Event) {
	m.dispatch(event, false)
	m.drain()
}

func (m *machine) drain() {
	for !m.halted {
		m.applyPop()
		if !m.hasRaised {
			return
		}
		event := m.raised
		m.raised, m.hasRaised = nil, false
		m.dispatch(event, true)
	}
}

func (m *machine) dispatch(event Event, raised bool) {
	if isHalt(event) {
		m.halt(event)
		return
	}

	t := reflect.TypeOf(event)
	d, h := m.lookup(t)
	switch d {
	case handled:
		m.transition(h, event)
	case ignored:
		if m.rt.logger.Enabled(log.DebugLevel) {
			m.rt.logger.Debugf("%s ignored %s in state %s", m.label, t, m.currentName())
		}
	case deferred:
		if raised {
			m.rt.sched.reportBug(BugUnhandledEvent, "%s raised %s which is deferred in state %s", m.label, t, m.currentName())
		}
	default:
		m.rt.sched.reportBug(BugUnhandledEvent, "%s received event %s that cannot be handled in state %s", m.label, t, m.currentName())
	}
}

func (m *machine) transition(h *handler, event Event) {
	from := m.current()
	switch h.kind {
	case gotoHandler:
		m.run(from.exit, event)
		m.run(h.action, event)
		target := m.def.states[h.target]
		m.stack[len(m.stack)-1] = target
		m.rt.coverage.transition(m.def.name, from.name, eventName(event), target.name)
		m.run(target.entry, event)
	case pushHandler:
		target := m.def.states[h.target]
		m.stack = append(m.stack, target)
		m.rt.coverage.transition(m.def.name, from.name, eventName(event), target.name)
		m.run(target.entry, event)
	default:
		m.run(h.action, event)
	}
}

func (m *machine) run(a action, event Event) {
	if a == nil {
		return
	}
	m.ctx.event = event
	a(m.instance, m.ctx)
}

func (m *machine) raise(event Event) {
	if event == nil {
		m.rt.sched.reportBug(BugAssertion, "%s raised a nil event", m.label)
	}
	if m.hasRaised {
		m.rt.sched.reportBug(BugAssertion, "%s raised %s while %s is pending", m.label, eventName(event), eventName(m.raised))
	}
	m.raised, m.hasRaised = event, true
}

func (m *machine) applyPop() {
	if !m.popRequested {
		return
	}
	m.popRequested = false
	if len(m.stack) <= 1 {
		m.rt.sched.reportBug(BugAssertion, "%s popped its last state %s", m.label, m.currentName())
	}

	top := m.current()
	m.run(top.exit, m.ctx.event)
	m.stack = m.stack[:len(m.stack)-1]
	m.rt.coverage.visit(m.def.name, m.current().name)
}

func (m *machine) halt(event Event) {
	if m.monitor {
		m.rt.sched.reportBug(BugUnhandledEvent, "monitor %s cannot be halted", m.label)
	}
	m.run(m.def.onHalt, event)
	m.halted = true
	m.raised, m.hasRaised = nil, false
}

// stateNames returns the state stack from bottom to top
func (m *machine) stateNames() string {
	names := make([]string, 0, len(m.stack))
	for _, state := range m.stack {
		names = append(names, state.name)
	}
	return strings.Join(names, "/")
}

// hot reports whether a monitor is in a hot state
func (m *machine) hot() bool {
	return len(m.stack) > 0 && m.current().hot
}

func (m *machine) fingerprint() uint64 {
	values := make([]uint64, 0, len(m.stack)+2)
	values = append(values, hash.String(m.def.name))
	for _, state := range m.stack {
		values = append(values, hash.String(state.name))
	}
	if f, ok := m.instance.(Fingerprinter); ok {
		values = append(values, f.Fingerprint())
	}
	return hash.Combine(values...)
}
