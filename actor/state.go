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
	"reflect"

	goset "github.com/deckarep/golang-set/v2"

	gerrors "github.com/tochemey/actorcheck/errors"
	"github.com/tochemey/actorcheck/internal/validation"
)

// Action is the body of an entry, exit or event action of a state machine of type T.
// The received event is available through Context.Event.
type Action[T any] func(T, *Context)

// action is the type-erased form of Action stored in a Definition
type action func(any, *Context)

func erase[T any](a Action[T]) action {
	if a == nil {
		return nil
	}
	return func(instance any, ctx *Context) {
		a(instance.(T), ctx)
	}
}

type handlerKind uint8

const (
	gotoHandler handlerKind = iota
	pushHandler
	doHandler
)

func (k handlerKind) String() string {
	switch k {
	case gotoHandler:
		return "goto"
	case pushHandler:
		return "push"
	default:
		return "do"
	}
}

// handler is the disposition of an event type bound to a transition or an action
type handler struct {
	kind   handlerKind
	target string
	action action
}

// stateDef is an immutable state of a Definition
type stateDef struct {
	name     string
	entry    action
	exit     action
	handlers map[reflect.Type]*handler
	deferred goset.Set[reflect.Type]
	ignored  goset.Set[reflect.Type]
	hot      bool
	cold     bool
}

func newStateDef(name string) *stateDef {
	return &stateDef{
		name:     name,
		handlers: make(map[reflect.Type]*handler),
		deferred: goset.NewThreadUnsafeSet[reflect.Type](),
		ignored:  goset.NewThreadUnsafeSet[reflect.Type](),
	}
}

// bound reports whether the state already has a disposition for the event type
func (s *stateDef) bound(t reflect.Type) bool {
	_, handled := s.handlers[t]
	return handled || s.deferred.Contains(t) || s.ignored.Contains(t)
}

// Definition is the immutable state table of a state machine type.
//
// A Definition is built once with Define and shared by every actor or monitor
// created from it, across iterations and across goroutines.
type Definition struct {
	name    string
	start   string
	states  map[string]*stateDef
	order   []string
	factory func() any
	onHalt  action
}

// Name returns the definition name
func (d *Definition) Name() string {
	return d.name
}

// StartState returns the name of the start state
func (d *Definition) StartState() string {
	return d.start
}

// States returns the state names in declaration order
func (d *Definition) States() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// HasState reports whether the definition declares the given state
func (d *Definition) HasState(name string) bool {
	_, ok := d.states[name]
	return ok
}

func (d *Definition) usesDefer() bool {
	for _, state := range d.states {
		if state.deferred.Cardinality() > 0 {
			return true
		}
	}
	return false
}

func (d *Definition) usesTemperature() bool {
	for _, state := range d.states {
		if state.hot || state.cold {
			return true
		}
	}
	return false
}

// Builder collects the states of a Definition under construction
type Builder[T any] struct {
	def    *Definition
	starts []string
	issues []string
}

// Start declares the start state. Exactly one start state is required.
func (b *Builder[T]) Start(name string) *StateBuilder[T] {
	b.starts = append(b.starts, name)
	return b.State(name)
}

// State declares a state
func (b *Builder[T]) State(name string) *StateBuilder[T] {
	if _, ok := b.def.states[name]; ok {
		b.issues = append(b.issues, fmt.Sprintf("state (%s) is declared more than once", name))
		// keep configuring a detached copy so the chain does not panic
		return &StateBuilder[T]{builder: b, state: newStateDef(name)}
	}

	state := newStateDef(name)
	b.def.states[name] = state
	b.def.order = append(b.def.order, name)
	return &StateBuilder[T]{builder: b, state: state}
}

// OnHalt sets the action run when the actor dequeues a Halt event
func (b *Builder[T]) OnHalt(a Action[T]) *Builder[T] {
	b.def.onHalt = erase(a)
	return b
}

// StateBuilder configures one state
type StateBuilder[T any] struct {
	builder *Builder[T]
	state   *stateDef
}

// OnEntry sets the action run when the state is entered
func (s *StateBuilder[T]) OnEntry(a Action[T]) *StateBuilder[T] {
	s.state.entry = erase(a)
	return s
}

// OnExit sets the action run when the state is exited by a goto or a pop
func (s *StateBuilder[T]) OnExit(a Action[T]) *StateBuilder[T] {
	s.state.exit = erase(a)
	return s
}

// OnEventGoto transitions to target when an event of the type of the given sample is dispatched.
// The optional action runs after the exit action of the current state and before the entry action of target.
func (s *StateBuilder[T]) OnEventGoto(event Event, target string, a ...Action[T]) *StateBuilder[T] {
	h := &handler{kind: gotoHandler, target: target}
	if len(a) > 0 {
		h.action = erase(a[0])
	}
	s.bind(event, h)
	return s
}

// OnEventPush pushes target on top of the current state when an event of the type of the given sample is dispatched.
// The states beneath stay active for the events target does not bind.
func (s *StateBuilder[T]) OnEventPush(event Event, target string) *StateBuilder[T] {
	s.bind(event, &handler{kind: pushHandler, target: target})
	return s
}

// OnEventDo runs the action, without state change, when an event of the type of the given sample is dispatched
func (s *StateBuilder[T]) OnEventDo(event Event, a Action[T]) *StateBuilder[T] {
	if a == nil {
		s.issue("state (%s) binds a nil action to %s", s.state.name, eventName(event))
		return s
	}
	s.bind(event, &handler{kind: doHandler, action: erase(a)})
	return s
}

// Defer keeps events of the given types in the mailbox while the state is active
func (s *StateBuilder[T]) Defer(events ...Event) *StateBuilder[T] {
	for _, event := range events {
		if t, ok := s.check(event); ok {
			s.state.deferred.Add(t)
		}
	}
	return s
}

// Ignore drops events of the given types while the state is active
func (s *StateBuilder[T]) Ignore(events ...Event) *StateBuilder[T] {
	for _, event := range events {
		if t, ok := s.check(event); ok {
			s.state.ignored.Add(t)
		}
	}
	return s
}

// Hot marks a monitor state as one the program must eventually leave
func (s *StateBuilder[T]) Hot() *StateBuilder[T] {
	s.state.hot = true
	return s
}

// Cold marks a monitor state as one the program may stay in forever
func (s *StateBuilder[T]) Cold() *StateBuilder[T] {
	s.state.cold = true
	return s
}

func (s *StateBuilder[T]) bind(event Event, h *handler) {
	if t, ok := s.check(event); ok {
		s.state.handlers[t] = h
	}
}

// check validates an event sample before binding it
func (s *StateBuilder[T]) check(event Event) (reflect.Type, bool) {
	if event == nil {
		s.issue("state (%s) binds a nil event", s.state.name)
		return nil, false
	}
	if isHalt(event) {
		s.issue("state (%s) cannot bind the Halt event", s.state.name)
		return nil, false
	}
	t := reflect.TypeOf(event)
	if s.state.bound(t) {
		s.issue("state (%s) binds %s more than once", s.state.name, t)
		return nil, false
	}
	return t, true
}

func (s *StateBuilder[T]) issue(format string, args ...any) {
	s.builder.issues = append(s.builder.issues, fmt.Sprintf(format, args...))
}

// Define builds the Definition of a state machine of type T.
//
// factory creates a fresh instance for every actor or monitor created from the
// definition. build declares the states, e.g.
//
//	def, err := actor.Define("Client", func() *Client { return new(Client) }, func(b *actor.Builder[*Client]) {
//		b.Start("Init").OnEntry((*Client).init).OnEventGoto(&Ack{}, "Done")
//		b.State("Done")
//	})
func Define[T any](name string, factory func() T, build func(*Builder[T])) (*Definition, error) {
	def := &Definition{
		name:   name,
		states: make(map[string]*stateDef),
		order:  make([]string, 0, 4),
	}

	if factory != nil {
		def.factory = func() any { return factory() }
	}

	b := &Builder[T]{def: def}
	if build != nil {
		build(b)
	}

	chain := validation.New(validation.AllErrors()).
		AddValidator(validation.NewNameValidator("definition", name)).
		AddAssertion(factory != nil, "factory is required").
		AddAssertionf(len(b.starts) == 1, "exactly one start state is required, found %d", len(b.starts))

	for _, issue := range b.issues {
		chain.AddAssertion(false, issue)
	}

	for _, stateName := range def.order {
		state := def.states[stateName]
		chain.AddValidator(validation.NewNameValidator("state", stateName))
		chain.AddAssertionf(!(state.hot && state.cold), "state (%s) cannot be both hot and cold", stateName)
		for t, h := range state.handlers {
			if h.kind == doHandler {
				continue
			}
			_, exists := def.states[h.target]
			chain.AddAssertionf(exists, "state (%s) transitions on %s to undefined state (%s)", stateName, t, h.target)
		}
	}

	if err := chain.Validate(); err != nil {
		return nil, gerrors.NewErrInvalidDefinition(name, err)
	}

	def.start = b.starts[0]
	return def, nil
}

// MustDefine is like Define but panics when the definition is invalid.
// It simplifies the declaration of package-level definitions.
func MustDefine[T any](name string, factory func() T, build func(*Builder[T])) *Definition {
	def, err := Define(name, factory, build)
	if err != nil {
		panic(err)
	}
	return def
}
