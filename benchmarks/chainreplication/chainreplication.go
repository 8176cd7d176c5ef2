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

// Package chainreplication is a chain replicated key value store: clients write
// through the head of a chain of servers and read from its tail.
package chainreplication

import (
	"github.com/tochemey/actorcheck/actor"
)

// Name of the benchmark
const Name = "chainreplication"

const (
	servers = 3
	clients = 2
)

type environment struct {
	servers []actor.ActorID
	clients []actor.ActorID
}

// Environment creates the chain and its clients, then halts
var Environment = actor.MustDefine("Environment", func() *environment { return new(environment) }, func(b *actor.Builder[*environment]) {
	b.Start("Init").OnEntry(func(env *environment, ctx *actor.Context) {
		for i := range servers {
			env.servers = append(env.servers, ctx.CreateActor(Server, &ServerSetup{
				ID:   i,
				Head: i == 0,
				Tail: i == servers-1,
			}))
		}

		setup := &ChainSetup{Servers: env.servers}
		ctx.Monitor(InvariantMonitor, setup)
		ctx.Monitor(ResponseSequenceMonitor, setup)
		ctx.Monitor(ConsistencyMonitor, setup)

		for i := range servers {
			pred, succ := env.servers[max(i-1, 0)], env.servers[min(i+1, servers-1)]
			ctx.Send(env.servers[i], &PredSucc{Predecessor: pred, Successor: succ})
		}

		head, tail := env.servers[0], env.servers[servers-1]
		base := 1
		for range clients {
			env.clients = append(env.clients, ctx.CreateActor(Client, &ClientSetup{Head: head, Tail: tail, Base: base}))
			base *= 100
		}
		ctx.Halt()
	})
})

// Monitors returns the monitors the benchmark reports to
func Monitors() []*actor.Definition {
	return []*actor.Definition{InvariantMonitor, ResponseSequenceMonitor, ConsistencyMonitor}
}

// Test creates the environment of the benchmark
func Test(rt *actor.Runtime) error {
	_, err := rt.CreateActor(Environment, nil)
	return err
}
