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

const (
	// commands is the number of commands a client submits
	commands = 2
	// attempts bounds the retries of a rejected command
	attempts = 3
)

// ClientSetup is the creation event of a client
type ClientSetup struct {
	Servers []actor.ActorID
}

type client struct {
	servers  []actor.ActorID
	command  int
	attempt  int
	accepted int
}

// submit sends the current command to a server picked by the scheduler
func (c *client) submit(ctx *actor.Context) {
	target := c.servers[ctx.RandomInteger(len(c.servers))]
	ctx.Send(target, &Request{Client: ctx.Self(), Command: c.command})
}

func (c *client) onResponse(ctx *actor.Context) {
	response := ctx.Event().(*Response)
	if response.Command != c.command {
		return
	}

	c.attempt++
	if response.Accepted {
		c.accepted++
	}
	if !response.Accepted && c.attempt < attempts {
		c.submit(ctx)
		return
	}

	c.command++
	c.attempt = 0
	if c.command == commands {
		ctx.Halt()
		return
	}
	c.submit(ctx)
}

// Client submits commands to random servers of the cluster
var Client = actor.MustDefine("Client", func() *client { return new(client) }, func(b *actor.Builder[*client]) {
	b.Start("Submitting").
		OnEntry(func(c *client, ctx *actor.Context) {
			c.servers = ctx.Event().(*ClientSetup).Servers
			c.submit(ctx)
		}).
		OnEventDo(&Response{}, (*client).onResponse)
})
