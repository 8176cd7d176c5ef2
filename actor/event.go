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
)

// Event is any value that can be sent to an actor or a monitor.
//
// Dispatch is driven by the dynamic type of the event: a state machine binds
// handlers to a sample value of the type, e.g. &Ping{} matches every *Ping.
// Events should be treated as immutable once sent.
type Event any

// Halt stops the receiving actor when dequeued, whatever its current state.
// The actor OnHalt hook runs, the actor is deregistered and its pending
// events are dropped. Later sends to it are ignored.
type Halt struct{}

var haltType = reflect.TypeOf(Halt{})

// envelope wraps an event in a mailbox
type envelope struct {
	event  Event
	sender ActorID
	// kind of the event, cached for the deferral scans
	kind reflect.Type
}

func newEnvelope(event Event, sender ActorID) envelope {
	return envelope{
		event:  event,
		sender: sender,
		kind:   reflect.TypeOf(event),
	}
}

// eventName returns the printable type of the event
func eventName(event Event) string {
	if event == nil {
		return "<nil>"
	}
	return reflect.TypeOf(event).String()
}

func isHalt(event Event) bool {
	_, ok := event.(Halt)
	if !ok {
		_, ok = event.(*Halt)
	}
	return ok
}
