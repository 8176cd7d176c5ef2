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

package raft

import "github.com/tochemey/actorcheck/actor"

// ticksPerTimeout is the number of ticks between two timeouts
const ticksPerTimeout = 2

type timer struct {
	target  actor.ActorID
	kind    TimerKind
	counter int
}

func (t *timer) tick(ctx *actor.Context) {
	t.counter++
	if t.counter == ticksPerTimeout {
		t.counter = 0
		if t.kind == ElectionTimerKind {
			ctx.Send(t.target, &ElectionTimeout{})
		} else {
			ctx.Send(t.target, &PeriodicTimeout{})
		}
	}

	// keep ticking or stop for good
	if ctx.Random() {
		ctx.Send(ctx.Self(), &tick{})
		return
	}
	ctx.Halt()
}

// Timer models a timer whose firing is decided by the scheduler
var Timer = actor.MustDefine("Timer", func() *timer { return new(timer) }, func(b *actor.Builder[*timer]) {
	b.Start("Init").
		OnEntry(func(t *timer, ctx *actor.Context) {
			setup := ctx.Event().(*TimerSetup)
			t.target, t.kind = setup.Target, setup.Kind
		}).
		OnEventGoto(&StartTimer{}, "Active")
	b.State("Active").
		OnEntry(func(_ *timer, ctx *actor.Context) { ctx.Send(ctx.Self(), &tick{}) }).
		OnEventDo(&tick{}, (*timer).tick).
		Ignore(&StartTimer{})
})
