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
	"github.com/tochemey/actorcheck/hash"
)

type server struct {
	id          int
	head        bool
	tail        bool
	predecessor actor.ActorID
	successor   actor.ActorID
	store       map[int]int
	history     []int
	sent        []SentLog
	nextSeqID   int
}

func newServer() *server {
	return &server{store: make(map[int]int)}
}

// Fingerprint hashes the replicated data of the server
func (s *server) Fingerprint() uint64 {
	values := []uint64{uint64(s.nextSeqID), boolValue(s.head), boolValue(s.tail)}
	keys := make([]int, 0, len(s.store))
	for key := range s.store {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		values = append(values, uint64(key), uint64(s.store[key]))
	}
	for _, seq := range s.history {
		values = append(values, uint64(seq))
	}
	return hash.Combine(values...)
}

func (s *server) setup(_ *actor.Context, e *ServerSetup) {
	s.id = e.ID
	s.head = e.Head
	s.tail = e.Tail
}

func (s *server) link(ctx *actor.Context) {
	e := ctx.Event().(*PredSucc)
	s.predecessor = e.Predecessor
	s.successor = e.Successor
}

func (s *server) write(ctx *actor.Context, key, value int) {
	s.store[key] = value
	ctx.Monitor(ConsistencyMonitor, &StoreWritten{Server: ctx.Self(), Key: key, Value: value})
}

func (s *server) acceptUpdate(ctx *actor.Context) {
	s.nextSeqID++
	ctx.Assert(s.head, "server %d is not the head", s.id)
}

func (s *server) processUpdate(ctx *actor.Context) {
	e := ctx.Event().(*Update)
	s.write(ctx, e.Key, e.Value)
	s.history = append(s.history, s.nextSeqID)
	ctx.Monitor(InvariantMonitor, &HistoryUpdate{Server: ctx.Self(), History: slices.Clone(s.history)})
	s.sent = append(s.sent, SentLog{SeqID: s.nextSeqID, Client: e.Client, Key: e.Key, Value: e.Value})
	ctx.Monitor(InvariantMonitor, &SentUpdate{Server: ctx.Self(), Sent: slices.Clone(s.sent)})
	ctx.Send(s.successor, &ForwardUpdate{
		Predecessor: ctx.Self(),
		SeqID:       s.nextSeqID,
		Client:      e.Client,
		Key:         e.Key,
		Value:       e.Value,
	})
	ctx.Raise(&local{})
}

func (s *server) processForward(ctx *actor.Context) {
	defer ctx.Raise(&local{})

	e := ctx.Event().(*ForwardUpdate)
	if e.Predecessor != s.predecessor {
		return
	}

	s.nextSeqID = e.SeqID
	s.write(ctx, e.Key, e.Value)
	if !s.tail {
		s.history = append(s.history, e.SeqID)
		ctx.Monitor(InvariantMonitor, &HistoryUpdate{Server: ctx.Self(), History: slices.Clone(s.history)})
		s.sent = append(s.sent, SentLog{SeqID: e.SeqID, Client: e.Client, Key: e.Key, Value: e.Value})
		ctx.Monitor(InvariantMonitor, &SentUpdate{Server: ctx.Self(), Sent: slices.Clone(s.sent)})
		ctx.Send(s.successor, &ForwardUpdate{
			Predecessor: ctx.Self(),
			SeqID:       e.SeqID,
			Client:      e.Client,
			Key:         e.Key,
			Value:       e.Value,
		})
		return
	}

	if !s.head {
		s.history = append(s.history, e.SeqID)
	}
	ctx.Monitor(ResponseSequenceMonitor, &UpdateResponded{Tail: ctx.Self(), Key: e.Key, Value: e.Value})
	ctx.Send(e.Client, &ResponseToUpdate{})
	ctx.Send(s.predecessor, &BackwardAck{SeqID: e.SeqID})
}

func (s *server) processAck(ctx *actor.Context) {
	e := ctx.Event().(*BackwardAck)
	if i := slices.IndexFunc(s.sent, func(l SentLog) bool { return l.SeqID == e.SeqID }); i >= 0 {
		s.sent = slices.Delete(s.sent, i, i+1)
	}
	if !s.head {
		ctx.Send(s.predecessor, &BackwardAck{SeqID: e.SeqID})
	}
	ctx.Raise(&local{})
}

func (s *server) processQuery(ctx *actor.Context) {
	e := ctx.Event().(*Query)
	ctx.Assert(s.tail, "server %d is not the tail", s.id)
	value, ok := s.store[e.Key]
	if !ok {
		ctx.Send(e.Client, &ResponseToQuery{Value: -1})
		return
	}
	ctx.Monitor(ResponseSequenceMonitor, &QueryResponded{Tail: ctx.Self(), Key: e.Key, Value: value})
	ctx.Send(e.Client, &ResponseToQuery{Value: value})
}

// Server is a replica of the chain. Updates enter at the head and are forwarded
// down to the tail, which answers the client and acknowledges back up the chain.
var Server = actor.MustDefine("Server", newServer, func(b *actor.Builder[*server]) {
	b.Start("Init").
		OnEntry(func(s *server, ctx *actor.Context) {
			s.setup(ctx, ctx.Event().(*ServerSetup))
		}).
		OnEventGoto(&PredSucc{}, "WaitForRequest", (*server).link).
		Defer(&Update{}, &Query{}, &ForwardUpdate{}, &BackwardAck{})
	b.State("WaitForRequest").
		OnEventGoto(&Update{}, "ProcessUpdate", (*server).acceptUpdate).
		OnEventGoto(&ForwardUpdate{}, "ProcessForward").
		OnEventGoto(&BackwardAck{}, "ProcessAck").
		OnEventDo(&Query{}, (*server).processQuery)
	b.State("ProcessUpdate").
		OnEntry((*server).processUpdate).
		OnEventGoto(&local{}, "WaitForRequest")
	b.State("ProcessForward").
		OnEntry((*server).processForward).
		OnEventGoto(&local{}, "WaitForRequest")
	b.State("ProcessAck").
		OnEntry((*server).processAck).
		OnEventGoto(&local{}, "WaitForRequest")
})

func boolValue(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
