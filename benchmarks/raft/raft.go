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

// Package raft is the leader election of the Raft consensus protocol. Election
// timeouts are driven by the scheduler, and variants inject the classic bugs
// that break the one leader per term guarantee.
package raft

import (
	"fmt"

	"github.com/tochemey/actorcheck/actor"
)

// Name of the benchmark
const Name = "raft"

// Bug selects a faulty variant of the protocol
type Bug int

const (
	// NoBug is the correct protocol
	NoBug Bug = iota
	// ForgetVote makes servers grant their vote without remembering it,
	// so that several candidates can win the same term
	ForgetVote
	// DuplicateVotes makes candidates count every granted vote, including
	// the votes of a server answering the same request twice
	DuplicateVotes
)

// String returns the name of the variant
func (b Bug) String() string {
	switch b {
	case NoBug:
		return "none"
	case ForgetVote:
		return "forget-vote"
	case DuplicateVotes:
		return "duplicate-votes"
	default:
		return fmt.Sprintf("Bug(%d)", int(b))
	}
}

// DefaultServers is the size of the cluster
const DefaultServers = 3

type cluster struct {
	size    int
	bug     Bug
	servers []actor.ActorID
	leader  actor.ActorID
	term    int
}

// clusterSetup is the creation event of the cluster manager
type clusterSetup struct {
	size int
	bug  Bug
}

// ClusterManager creates the servers and a client and tracks the current leader
var ClusterManager = actor.MustDefine("ClusterManager", func() *cluster { return new(cluster) }, func(b *actor.Builder[*cluster]) {
	b.Start("Running").
		OnEntry(func(c *cluster, ctx *actor.Context) {
			setup := ctx.Event().(*clusterSetup)
			c.size, c.bug = setup.size, setup.bug
			for i := range c.size {
				c.servers = append(c.servers, ctx.CreateActor(Server, nil, actor.WithName(fmt.Sprintf("Server%d", i))))
			}
			for i, id := range c.servers {
				ctx.Send(id, &Configure{ID: i, Servers: c.servers, Manager: ctx.Self(), Bug: c.bug})
			}
			ctx.CreateActor(Client, &ClientSetup{Servers: c.servers})
		}).
		OnEventDo(&NotifyLeaderUpdate{}, func(c *cluster, ctx *actor.Context) {
			e := ctx.Event().(*NotifyLeaderUpdate)
			if e.Term >= c.term {
				c.leader, c.term = e.Leader, e.Term
			}
		})
})

// Monitors returns the monitors the benchmark reports to
func Monitors() []*actor.Definition {
	return []*actor.Definition{SafetyMonitor}
}

// NewTest returns a test running a cluster of the given size with the given variant
func NewTest(size int, bug Bug) func(rt *actor.Runtime) error {
	return func(rt *actor.Runtime) error {
		if size < 1 {
			return fmt.Errorf("invalid cluster size %d", size)
		}
		_, err := rt.CreateActor(ClusterManager, &clusterSetup{size: size, bug: bug})
		return err
	}
}

// Test runs the correct protocol with DefaultServers servers
func Test(rt *actor.Runtime) error {
	return NewTest(DefaultServers, NoBug)(rt)
}
