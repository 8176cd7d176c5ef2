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

// Configure hands a server its place in the cluster
type Configure struct {
	ID      int
	Servers []actor.ActorID
	Manager actor.ActorID
	Bug     Bug
}

// VoteRequest is broadcast by candidates
type VoteRequest struct {
	Term      int
	Candidate actor.ActorID
}

// VoteResponse answers a VoteRequest
type VoteResponse struct {
	Term    int
	Voter   actor.ActorID
	Granted bool
}

// AppendEntriesRequest is the heartbeat a leader sends when elected
type AppendEntriesRequest struct {
	Term   int
	Leader actor.ActorID
}

// AppendEntriesResponse answers an AppendEntriesRequest
type AppendEntriesResponse struct {
	Term    int
	Success bool
}

// Request is a client command. Followers forward it to the leader they know.
type Request struct {
	Client  actor.ActorID
	Command int
	Hops    int
}

// Response answers a client Request
type Response struct {
	Command  int
	Accepted bool
	Term     int
}

// NotifyLeaderUpdate tells the cluster manager about a newly elected leader
type NotifyLeaderUpdate struct {
	Leader actor.ActorID
	Term   int
}

// LeaderElected notifies the SafetyMonitor
type LeaderElected struct {
	Term int
}

// TimerKind distinguishes the election timer from the periodic timer of a server
type TimerKind int

const (
	ElectionTimerKind TimerKind = iota
	PeriodicTimerKind
)

// TimerSetup is the creation event of a timer
type TimerSetup struct {
	Target actor.ActorID
	Kind   TimerKind
}

type (
	// StartTimer activates a timer. Active timers ignore it.
	StartTimer struct{}
	// ElectionTimeout makes a follower or a candidate start an election
	ElectionTimeout struct{}
	// PeriodicTimeout makes a candidate broadcast its vote requests again
	PeriodicTimeout struct{}
	tick            struct{}
)

type (
	becomeFollower  struct{}
	becomeCandidate struct{}
	becomeLeader    struct{}
)
