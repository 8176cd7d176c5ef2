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

import (
	"slices"

	"github.com/tochemey/actorcheck/actor"
)

// maxPending bounds the sequences the invariant monitor merges
const maxPending = 6

type invariant struct {
	servers []actor.ActorID
	history map[actor.ActorID][]int
	sent    map[actor.ActorID][]int
}

func newInvariant() *invariant {
	return &invariant{
		history: make(map[actor.ActorID][]int),
		sent:    make(map[actor.ActorID][]int),
	}
}

func (m *invariant) neighbour(server actor.ActorID, offset int) (actor.ActorID, bool) {
	i := slices.Index(m.servers, server)
	if i < 0 || i+offset < 0 || i+offset >= len(m.servers) {
		return actor.NoActor, false
	}
	return m.servers[i+offset], true
}

// checkPropagation verifies that a server never applied an update its predecessor did not apply
func (m *invariant) checkPropagation(ctx *actor.Context) {
	e := ctx.Event().(*HistoryUpdate)
	isSorted(ctx, e.History)
	m.history[e.Server] = e.History

	if next, ok := m.neighbour(e.Server, 1); ok {
		if history, ok := m.history[next]; ok {
			checkLessOrEqual(ctx, history, e.History)
		}
	}
	if prev, ok := m.neighbour(e.Server, -1); ok {
		if history, ok := m.history[prev]; ok {
			checkLessOrEqual(ctx, e.History, history)
		}
	}
}

// checkInProcess verifies that the history of a server is the history of its
// successor followed by the updates still in flight between them
func (m *invariant) checkInProcess(ctx *actor.Context) {
	e := ctx.Event().(*SentUpdate)
	sent := make([]int, 0, len(e.Sent))
	for _, log := range e.Sent {
		sent = append(sent, log.SeqID)
	}
	isSorted(ctx, sent)
	m.sent[e.Server] = sent

	if next, ok := m.neighbour(e.Server, 1); ok {
		if history, ok := m.history[next]; ok {
			checkEqual(ctx, m.history[e.Server], merge(ctx, history, sent))
		}
	}
	if prev, ok := m.neighbour(e.Server, -1); ok {
		if history, ok := m.history[prev]; ok {
			checkEqual(ctx, history, merge(ctx, m.history[e.Server], m.sent[prev]))
		}
	}
}

// merge appends to the prefix of seq1 that precedes seq2 the whole of seq2
func merge(ctx *actor.Context, seq1, seq2 []int) []int {
	isSorted(ctx, seq1)
	var out []int
	switch {
	case len(seq1) == 0:
		out = slices.Clone(seq2)
	case len(seq2) == 0:
		out = slices.Clone(seq1)
	default:
		for _, seq := range seq1 {
			if seq < seq2[0] {
				out = append(out, seq)
			}
		}
		out = append(out, seq2...)
	}
	ctx.Assert(len(out) <= maxPending, "merged sequence has more than %d elements", maxPending)
	isSorted(ctx, out)
	return out
}

func isSorted(ctx *actor.Context, seq []int) {
	for i := 0; i+1 < len(seq); i++ {
		ctx.Assert(seq[i] < seq[i+1], "sequence %v is not sorted", seq)
	}
}

func checkLessOrEqual(ctx *actor.Context, seq1, seq2 []int) {
	isSorted(ctx, seq1)
	isSorted(ctx, seq2)
	for i := 0; i < len(seq1) && i < len(seq2); i++ {
		ctx.Assert(seq1[i] <= seq2[i], "%d not less or equal than %d", seq1[i], seq2[i])
	}
}

func checkEqual(ctx *actor.Context, seq1, seq2 []int) {
	isSorted(ctx, seq1)
	isSorted(ctx, seq2)
	for i := 0; i < len(seq1) && i < len(seq2); i++ {
		ctx.Assert(seq1[i] == seq2[i], "%d not equal with %d", seq1[i], seq2[i])
	}
}

// InvariantMonitor checks the update propagation and in-process request invariants of the chain
var InvariantMonitor = actor.MustDefine("Invariant", newInvariant, func(b *actor.Builder[*invariant]) {
	b.Start("Init").
		OnEventGoto(&ChainSetup{}, "WaitForUpdate", func(m *invariant, ctx *actor.Context) {
			m.servers = ctx.Event().(*ChainSetup).Servers
		})
	b.State("WaitForUpdate").
		OnEventDo(&HistoryUpdate{}, (*invariant).checkPropagation).
		OnEventDo(&SentUpdate{}, (*invariant).checkInProcess)
})

type responseSequence struct {
	servers    []actor.ActorID
	lastUpdate map[int]int
}

// ResponseSequenceMonitor checks that the tail answers queries with the last update it acknowledged
var ResponseSequenceMonitor = actor.MustDefine("ResponseSequence",
	func() *responseSequence { return &responseSequence{lastUpdate: make(map[int]int)} },
	func(b *actor.Builder[*responseSequence]) {
		b.Start("Init").
			OnEventGoto(&ChainSetup{}, "Wait", func(m *responseSequence, ctx *actor.Context) {
				m.servers = ctx.Event().(*ChainSetup).Servers
			})
		b.State("Wait").
			OnEventDo(&UpdateResponded{}, func(m *responseSequence, ctx *actor.Context) {
				e := ctx.Event().(*UpdateResponded)
				if slices.Contains(m.servers, e.Tail) {
					m.lastUpdate[e.Key] = e.Value
				}
			}).
			OnEventDo(&QueryResponded{}, func(m *responseSequence, ctx *actor.Context) {
				e := ctx.Event().(*QueryResponded)
				if !slices.Contains(m.servers, e.Tail) {
					return
				}
				last, ok := m.lastUpdate[e.Key]
				ctx.Assert(ok && e.Value == last, "value %d of key %d is not the last update %d", e.Value, e.Key, last)
			})
	})

type consistency struct {
	head   actor.ActorID
	tail   actor.ActorID
	issued map[int]int
	stores map[actor.ActorID]map[int]int
}

func newConsistency() *consistency {
	return &consistency{
		issued: make(map[int]int),
		stores: make(map[actor.ActorID]map[int]int),
	}
}

// Consistent reports whether the head and the tail hold the value of every key issued so far
func (m *consistency) Consistent() bool {
	head, tail := m.stores[m.head], m.stores[m.tail]
	for key, value := range m.issued {
		written, ok := head[key]
		if !ok || written != value {
			return false
		}
		if replicated, ok := tail[key]; !ok || replicated != written {
			return false
		}
	}
	return true
}

func (m *consistency) issue(ctx *actor.Context) {
	e := ctx.Event().(*UpdateIssued)
	m.issued[e.Key] = e.Value
	m.settle(ctx)
}

func (m *consistency) written(ctx *actor.Context) {
	e := ctx.Event().(*StoreWritten)
	store, ok := m.stores[e.Server]
	if !ok {
		store = make(map[int]int)
		m.stores[e.Server] = store
	}
	store[e.Key] = e.Value
	m.settle(ctx)
}

// settle moves the monitor to the state matching the replicated stores
func (m *consistency) settle(ctx *actor.Context) {
	consistent := m.Consistent()
	switch ctx.CurrentState() {
	case "Consistent":
		if !consistent {
			ctx.Raise(&diverged{})
		}
	case "Replicating":
		if consistent {
			ctx.Raise(&converged{})
		}
	}
}

// ConsistencyMonitor is hot while an update issued by a client is missing from
// the store of the head or the tail, or while they hold different values for it.
var ConsistencyMonitor = actor.MustDefine("Consistency", newConsistency, func(b *actor.Builder[*consistency]) {
	b.Start("Init").
		OnEventGoto(&ChainSetup{}, "Consistent", func(m *consistency, ctx *actor.Context) {
			servers := ctx.Event().(*ChainSetup).Servers
			m.head, m.tail = servers[0], servers[len(servers)-1]
		})
	b.State("Consistent").Cold().
		OnEventDo(&UpdateIssued{}, (*consistency).issue).
		OnEventDo(&StoreWritten{}, (*consistency).written).
		OnEventGoto(&diverged{}, "Replicating")
	b.State("Replicating").Hot().
		OnEventDo(&UpdateIssued{}, (*consistency).issue).
		OnEventDo(&StoreWritten{}, (*consistency).written).
		OnEventGoto(&converged{}, "Consistent")
})
