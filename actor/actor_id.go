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
	"strconv"
)

// ActorID identifies an actor within a Runtime.
//
// An ActorID is a comparable value type that can be used as a map key. It is
// assigned by the Runtime when the actor is created and is never reused within
// an iteration. Identifiers are derived from the runtime operation counter so
// that they are stable across replays of the same trace.
type ActorID struct {
	value uint64
	name  string
	kind  string
}

// NoActor is the zero ActorID. It is used as the sender of events
// that do not originate from an actor.
var NoActor = ActorID{}

// Value returns the numeric identifier, which is also the scheduling operation id of the actor
func (id ActorID) Value() uint64 {
	return id.value
}

// Name returns the name given at creation or the definition name
func (id ActorID) Name() string {
	return id.name
}

// Kind returns the name of the definition the actor was created from
func (id ActorID) Kind() string {
	return id.kind
}

// IsZero reports whether id is NoActor
func (id ActorID) IsZero() bool {
	return id.value == 0
}

// String returns the Name(value) rendering used in logs and bug reports
func (id ActorID) String() string {
	if id.IsZero() {
		return "NoActor"
	}
	return id.name + "(" + strconv.FormatUint(id.value, 10) + ")"
}
