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
	"slices"
)

// mailbox is the unbounded FIFO event queue of an actor.
//
// Entries are dequeued in arrival order, except that entries whose type is
// deferred by the active state stack are skipped and kept in place. A mailbox
// is owned by the scheduler: it is only touched by the operation currently
// holding the scheduling token, so it needs no locking.
type mailbox struct {
	entries  []envelope
	disposed bool
}

func newMailbox() *mailbox {
	return &mailbox{entries: make([]envelope, 0, 8)}
}

// Enqueue appends an entry. It returns false once the mailbox is disposed.
func (m *mailbox) Enqueue(env envelope) bool {
	if m.disposed {
		return false
	}
	m.entries = append(m.entries, env)
	return true
}

// Dequeue removes and returns the first entry whose type can be dispatched.
// Deferred entries keep their relative order.
func (m *mailbox) Dequeue(canDispatch func(reflect.Type) bool) (envelope, bool) {
	for i, env := range m.entries {
		if canDispatch(env.kind) {
			m.entries = slices.Delete(m.entries, i, i+1)
			return env, true
		}
	}
	return envelope{}, false
}

// HasDispatchable reports whether Dequeue would return an entry
func (m *mailbox) HasDispatchable(canDispatch func(reflect.Type) bool) bool {
	return slices.ContainsFunc(m.entries, func(env envelope) bool {
		return canDispatch(env.kind)
	})
}

// IsEmpty reports whether the mailbox has no entry
func (m *mailbox) IsEmpty() bool {
	return len(m.entries) == 0
}

// Len returns the number of entries, deferred ones included
func (m *mailbox) Len() int {
	return len(m.entries)
}

// Dispose drops every entry. Later enqueues are rejected.
func (m *mailbox) Dispose() {
	m.entries = nil
	m.disposed = true
}
