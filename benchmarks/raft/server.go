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

import (
	goset "github.com/deckarep/golang-set/v2"

	"github.com/tochemey/actorcheck/actor"
	"github.com/tochemey/actorcheck/hash"
)

type server struct {
	id            int
	bug           Bug
	servers       []actor.ActorID
	manager       actor.ActorID
	leader        actor.ActorID
	electionTimer actor.ActorID
	periodicTimer actor.ActorID
	term          int
	votedFor      actor.ActorID
	voters        goset.Set[actor.ActorID]
	votesReceived int
	served        int
}

func newServer() *server {
	return &server{voters: goset.NewThreadUnsafeSet[actor.ActorID]()}
}

// Fingerprint hashes the election state of the server
func (s *server) Fingerprint() uint64 {
	return hash.Combine(uint64(s.term), s.votedFor.Value(), uint64(s.votesReceived), uint64(s.served))
}

func (s *server) majority() int {
	return len(s.servers)/2 + 1
}

func (s *server) configure(ctx *actor.Context) {
	e := ctx.Event().(*Configure)
	s.id, s.bug, s.servers, s.manager = e.ID, e.Bug, e.Servers, e.Manager
	s.electionTimer = ctx.CreateActor(Timer, &TimerSetup{Target: ctx.Self(), Kind: ElectionTimerKind},
		actor.WithName("ElectionTimer"))
	s.periodicTimer = ctx.CreateActor(Timer, &TimerSetup{Target: ctx.Self(), Kind: PeriodicTimerKind},
		actor.WithName("PeriodicTimer"))
	ctx.Raise(&becomeFollower{})
}

// observe adopts a newer term. It reports whether the term changed.
func (s *server) observe(term int) bool {
	if term <= s.term {
		return false
	}
	s.term = term
	s.votedFor = actor.NoActor
	return true
}

func (s *server) vote(ctx *actor.Context, request *VoteRequest) {
	granted := request.Term >= s.term && (s.votedFor.IsZero() || s.votedFor == request.Candidate)
	if granted {
		if s.bug != ForgetVote {
			s.votedFor = request.Candidate
		}
		s.leader = actor.NoActor
	}
	ctx.Logger().Debugf("server %d votes %t for %s in term %d", s.id, granted, request.Candidate, s.term)
	ctx.Send(request.Candidate, &VoteResponse{Term: s.term, Voter: ctx.Self(), Granted: granted})
}

func (s *server) appendEntries(ctx *actor.Context, request *AppendEntriesRequest) bool {
	if request.Term < s.term {
		ctx.Send(request.Leader, &AppendEntriesResponse{Term: s.term})
		return false
	}
	s.leader = request.Leader
	ctx.Send(request.Leader, &AppendEntriesResponse{Term: s.term, Success: true})
	return true
}

func (s *server) redirect(ctx *actor.Context) {
	request := ctx.Event().(*Request)
	if s.leader.IsZero() || request.Hops >= len(s.servers) {
		ctx.Send(request.Client, &Response{Command: request.Command, Term: s.term})
		return
	}
	forwarded := *request
	forwarded.Hops++
	ctx.Send(s.leader, &forwarded)
}

func (s *server) enterFollower(ctx *actor.Context) {
	s.leader = actor.NoActor
	s.votesReceived = 0
	s.voters.Clear()
	ctx.Send(s.electionTimer, &StartTimer{})
}

func (s *server) voteAsFollower(ctx *actor.Context) {
	request := ctx.Event().(*VoteRequest)
	s.observe(request.Term)
	s.vote(ctx, request)
}

func (s *server) appendAsFollower(ctx *actor.Context) {
	request := ctx.Event().(*AppendEntriesRequest)
	s.observe(request.Term)
	s.appendEntries(ctx, request)
}

func (s *server) enterCandidate(ctx *actor.Context) {
	s.term++
	s.votedFor = ctx.Self()
	s.voters.Clear()
	s.voters.Add(ctx.Self())
	s.votesReceived = 1
	ctx.Send(s.electionTimer, &StartTimer{})
	ctx.Logger().Debugf("server %d is candidate in term %d", s.id, s.term)
	s.broadcastVoteRequests(ctx)
}

func (s *server) broadcastVoteRequests(ctx *actor.Context) {
	ctx.Send(s.periodicTimer, &StartTimer{})
	for _, peer := range s.servers {
		if peer == ctx.Self() {
			continue
		}
		ctx.Send(peer, &VoteRequest{Term: s.term, Candidate: ctx.Self()})
	}
}

func (s *server) voteAsCandidate(ctx *actor.Context) {
	request := ctx.Event().(*VoteRequest)
	stepDown := s.observe(request.Term)
	s.vote(ctx, request)
	if stepDown {
		ctx.Raise(&becomeFollower{})
	}
}

func (s *server) respondVoteAsCandidate(ctx *actor.Context) {
	response := ctx.Event().(*VoteResponse)
	if s.observe(response.Term) {
		ctx.Raise(&becomeFollower{})
		return
	}
	if response.Term != s.term || !response.Granted {
		return
	}

	if s.bug == DuplicateVotes {
		s.votesReceived++
	} else {
		s.voters.Add(response.Voter)
		s.votesReceived = s.voters.Cardinality()
	}
	if s.votesReceived >= s.majority() {
		s.votesReceived = 0
		ctx.Raise(&becomeLeader{})
	}
}

func (s *server) appendAsCandidate(ctx *actor.Context) {
	request := ctx.Event().(*AppendEntriesRequest)
	s.observe(request.Term)
	if s.appendEntries(ctx, request) {
		ctx.Raise(&becomeFollower{})
	}
}

func (s *server) stepDownOnNewerTerm(ctx *actor.Context) {
	var term int
	switch e := ctx.Event().(type) {
	case *VoteResponse:
		term = e.Term
	case *AppendEntriesResponse:
		term = e.Term
	}
	if s.observe(term) {
		ctx.Raise(&becomeFollower{})
	}
}

func (s *server) enterLeader(ctx *actor.Context) {
	s.leader = ctx.Self()
	ctx.Monitor(SafetyMonitor, &LeaderElected{Term: s.term})
	ctx.Send(s.manager, &NotifyLeaderUpdate{Leader: ctx.Self(), Term: s.term})
	for _, peer := range s.servers {
		if peer == ctx.Self() {
			continue
		}
		ctx.Send(peer, &AppendEntriesRequest{Term: s.term, Leader: ctx.Self()})
	}
}

func (s *server) processClientRequest(ctx *actor.Context) {
	request := ctx.Event().(*Request)
	s.served++
	ctx.Send(request.Client, &Response{Command: request.Command, Accepted: true, Term: s.term})
}

func (s *server) voteAsLeader(ctx *actor.Context) {
	request := ctx.Event().(*VoteRequest)
	if s.observe(request.Term) {
		s.vote(ctx, request)
		ctx.Raise(&becomeFollower{})
		return
	}
	ctx.Send(request.Candidate, &VoteResponse{Term: s.term, Voter: ctx.Self()})
}

func (s *server) appendAsLeader(ctx *actor.Context) {
	request := ctx.Event().(*AppendEntriesRequest)
	if s.observe(request.Term) {
		s.appendEntries(ctx, request)
		ctx.Raise(&becomeFollower{})
		return
	}
	ctx.Send(request.Leader, &AppendEntriesResponse{Term: s.term})
}

// Server takes part in the leader election of the cluster
var Server = actor.MustDefine("Server", newServer, func(b *actor.Builder[*server]) {
	b.Start("Init").
		OnEventDo(&Configure{}, (*server).configure).
		OnEventGoto(&becomeFollower{}, "Follower").
		Defer(&VoteRequest{}, &AppendEntriesRequest{}, &Request{})
	b.State("Follower").
		OnEntry((*server).enterFollower).
		OnEventDo(&Request{}, (*server).redirect).
		OnEventDo(&VoteRequest{}, (*server).voteAsFollower).
		OnEventDo(&VoteResponse{}, (*server).stepDownOnNewerTerm).
		OnEventDo(&AppendEntriesRequest{}, (*server).appendAsFollower).
		OnEventDo(&AppendEntriesResponse{}, (*server).stepDownOnNewerTerm).
		OnEventDo(&ElectionTimeout{}, func(_ *server, ctx *actor.Context) { ctx.Raise(&becomeCandidate{}) }).
		OnEventGoto(&becomeFollower{}, "Follower").
		OnEventGoto(&becomeCandidate{}, "Candidate").
		Ignore(&PeriodicTimeout{})
	b.State("Candidate").
		OnEntry((*server).enterCandidate).
		OnEventDo(&Request{}, (*server).redirect).
		OnEventDo(&VoteRequest{}, (*server).voteAsCandidate).
		OnEventDo(&VoteResponse{}, (*server).respondVoteAsCandidate).
		OnEventDo(&AppendEntriesRequest{}, (*server).appendAsCandidate).
		OnEventDo(&AppendEntriesResponse{}, (*server).stepDownOnNewerTerm).
		OnEventDo(&ElectionTimeout{}, func(_ *server, ctx *actor.Context) { ctx.Raise(&becomeCandidate{}) }).
		OnEventDo(&PeriodicTimeout{}, (*server).broadcastVoteRequests).
		OnEventGoto(&becomeLeader{}, "Leader").
		OnEventGoto(&becomeFollower{}, "Follower").
		OnEventGoto(&becomeCandidate{}, "Candidate")
	b.State("Leader").
		OnEntry((*server).enterLeader).
		OnEventDo(&Request{}, (*server).processClientRequest).
		OnEventDo(&VoteRequest{}, (*server).voteAsLeader).
		OnEventDo(&VoteResponse{}, (*server).stepDownOnNewerTerm).
		OnEventDo(&AppendEntriesRequest{}, (*server).appendAsLeader).
		OnEventDo(&AppendEntriesResponse{}, (*server).stepDownOnNewerTerm).
		OnEventGoto(&becomeFollower{}, "Follower").
		Ignore(&ElectionTimeout{}, &PeriodicTimeout{})
})
