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

// Package pingpong is the smallest actor program: a sender pings a receiver once.
package pingpong

import (
	"github.com/tochemey/actorcheck/actor"
)

// Name of the benchmark
const Name = "pingpong"

// Ping is sent by the sender to the receiver
type Ping struct{}

// Counted notifies the DeliveryMonitor of the receiver counter
type Counted struct {
	Value int
}

type receiver struct {
	counter int
}

// Receiver waits for a single Ping, counts it, then moves to Done
var Receiver = actor.MustDefine("Receiver", func() *receiver { return new(receiver) }, func(b *actor.Builder[*receiver]) {
	b.Start("Wait").
		OnEventGoto(&Ping{}, "Done", func(r *receiver, ctx *actor.Context) {
			r.counter++
			ctx.Monitor(DeliveryMonitor, &Counted{Value: r.counter})
		})
	b.State("Done")
})

type sender struct{}

// Sender creates the receiver and pings it. The receiver id is reported to the caller
// through the creation event.
var Sender = actor.MustDefine("Sender", func() *sender { return new(sender) }, func(b *actor.Builder[*sender]) {
	b.Start("Init").OnEntry(func(_ *sender, ctx *actor.Context) {
		target := ctx.CreateActor(Receiver, nil, actor.WithName("B"))
		ctx.Send(target, &Ping{})
	})
})

type delivery struct {
	counted int
}

// DeliveryMonitor is hot until the receiver has counted exactly one ping
var DeliveryMonitor = actor.MustDefine("Delivery", func() *delivery { return new(delivery) }, func(b *actor.Builder[*delivery]) {
	b.Start("Pending").Hot().
		OnEventGoto(&Counted{}, "Delivered", func(d *delivery, ctx *actor.Context) {
			d.counted = ctx.Event().(*Counted).Value
			ctx.Assert(d.counted == 1, "receiver counted %d pings", d.counted)
		})
	b.State("Delivered").Cold().
		OnEventDo(&Counted{}, func(d *delivery, ctx *actor.Context) {
			ctx.Assert(false, "receiver counted %d pings", ctx.Event().(*Counted).Value)
		})
})

// Monitors returns the monitors the benchmark reports to
func Monitors() []*actor.Definition {
	return []*actor.Definition{DeliveryMonitor}
}

// Setup creates the receiver from the test driver and pings it
func Setup(rt *actor.Runtime) (actor.ActorID, error) {
	target, err := rt.CreateActor(Receiver, nil, actor.WithName("B"))
	if err != nil {
		return actor.NoActor, err
	}
	return target, rt.Send(target, &Ping{})
}

// Test runs the benchmark with the ping sent by a Sender actor
func Test(rt *actor.Runtime) error {
	_, err := rt.CreateActor(Sender, nil, actor.WithName("A"))
	return err
}
