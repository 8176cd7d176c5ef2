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

package chainreplication

import "github.com/tochemey/actorcheck/actor"

// requests is the number of updates, then queries, sent by each client
const requests = 3

type client struct {
	head   actor.ActorID
	tail   actor.ActorID
	base   int
	next   int
	values map[int]int
}

func (c *client) key() int {
	return c.next * c.base
}

func (c *client) pumpUpdate(ctx *actor.Context) {
	key, value := c.key(), c.values[c.key()]
	ctx.Monitor(ConsistencyMonitor, &UpdateIssued{Key: key, Value: value})
	ctx.Send(c.head, &Update{Client: ctx.Self(), Key: key, Value: value})
	if c.next >= requests {
		ctx.Raise(&done{})
		return
	}
	ctx.Raise(&local{})
}

func (c *client) pumpQuery(ctx *actor.Context) {
	ctx.Send(c.tail, &Query{Client: ctx.Self(), Key: c.key()})
	if c.next >= requests {
		ctx.Halt()
		return
	}
	ctx.Raise(&local{})
}

// Client writes its keys through the head, then reads them back from the tail
var Client = actor.MustDefine("Client", func() *client { return new(client) }, func(b *actor.Builder[*client]) {
	b.Start("Init").
		OnEntry(func(c *client, ctx *actor.Context) {
			e := ctx.Event().(*ClientSetup)
			c.head, c.tail, c.base, c.next = e.Head, e.Tail, e.Base, 1
			c.values = map[int]int{
				1 * c.base: 100,
				2 * c.base: 200,
				3 * c.base: 300,
				4 * c.base: 400,
			}
			ctx.Raise(&local{})
		}).
		OnEventGoto(&local{}, "PumpUpdates")
	b.State("PumpUpdates").
		OnEntry((*client).pumpUpdate).
		OnEventGoto(&local{}, "PumpUpdates", func(c *client, _ *actor.Context) { c.next++ }).
		OnEventGoto(&done{}, "PumpQueries", func(c *client, _ *actor.Context) { c.next = 1 }).
		Ignore(&ResponseToUpdate{}, &ResponseToQuery{})
	b.State("PumpQueries").
		OnEntry((*client).pumpQuery).
		OnEventGoto(&local{}, "PumpQueries", func(c *client, _ *actor.Context) { c.next++ }).
		Ignore(&ResponseToUpdate{}, &ResponseToQuery{})
})
