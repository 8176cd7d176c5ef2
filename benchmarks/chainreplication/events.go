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

// SentLog is an update forwarded to the successor and not yet acknowledged
type SentLog struct {
	SeqID  int
	Client actor.ActorID
	Key    int
	Value  int
}

// ServerSetup is the creation event of a server
type ServerSetup struct {
	ID   int
	Head bool
	Tail bool
}

// PredSucc links a server to its neighbours. The head is its own predecessor
// and the tail its own successor.
type PredSucc struct {
	Predecessor actor.ActorID
	Successor   actor.ActorID
}

// Update is sent by clients to the head
type Update struct {
	Client actor.ActorID
	Key    int
	Value  int
}

// Query is sent by clients to the tail
type Query struct {
	Client actor.ActorID
	Key    int
}

// ForwardUpdate propagates an update down the chain
type ForwardUpdate struct {
	Predecessor actor.ActorID
	SeqID       int
	Client      actor.ActorID
	Key         int
	Value       int
}

// BackwardAck propagates the acknowledgement of an update up the chain
type BackwardAck struct {
	SeqID int
}

// ResponseToUpdate is sent by the tail once an update is applied on every server
type ResponseToUpdate struct{}

// ResponseToQuery carries the value read by the tail, -1 when the key is unknown
type ResponseToQuery struct {
	Value int
}

// ClientSetup is the creation event of a client.
// Base scales the keys the client writes so that clients never share a key.
type ClientSetup struct {
	Head actor.ActorID
	Tail actor.ActorID
	Base int
}

// ChainSetup tells the monitors the servers of the chain, head first
type ChainSetup struct {
	Servers []actor.ActorID
}

// HistoryUpdate reports the updates applied by a server
type HistoryUpdate struct {
	Server  actor.ActorID
	History []int
}

// SentUpdate reports the updates a server forwarded and that were not acknowledged yet
type SentUpdate struct {
	Server actor.ActorID
	Sent   []SentLog
}

// UpdateResponded reports an update answered by the tail
type UpdateResponded struct {
	Tail  actor.ActorID
	Key   int
	Value int
}

// QueryResponded reports a query answered by the tail
type QueryResponded struct {
	Tail  actor.ActorID
	Key   int
	Value int
}

// UpdateIssued reports an update sent by a client to the head
type UpdateIssued struct {
	Key   int
	Value int
}

// StoreWritten reports a write applied to the store of a server
type StoreWritten struct {
	Server actor.ActorID
	Key    int
	Value  int
}

type (
	local     struct{}
	done      struct{}
	converged struct{}
	diverged  struct{}
)
