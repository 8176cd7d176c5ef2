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

// Package benchmarks registers the actor programs the command line tool can test
package benchmarks

import (
	"slices"
	"strings"

	"github.com/tochemey/actorcheck/actor"
	"github.com/tochemey/actorcheck/benchmarks/chainreplication"
	"github.com/tochemey/actorcheck/benchmarks/pingpong"
	"github.com/tochemey/actorcheck/benchmarks/raft"
	gerrors "github.com/tochemey/actorcheck/errors"
	"github.com/tochemey/actorcheck/tester"
)

// Benchmark is a registered actor program
type Benchmark struct {
	Name        string
	Description string
	Test        tester.TestFunc
	Monitors    []*actor.Definition
	// Buggy is set when the program carries an injected bug
	Buggy bool
}

var registry = []*Benchmark{
	{
		Name:        pingpong.Name,
		Description: "a sender pings a receiver once",
		Test:        pingpong.Test,
		Monitors:    pingpong.Monitors(),
	},
	{
		Name:        chainreplication.Name,
		Description: "chain replicated key value store with two clients",
		Test:        chainreplication.Test,
		Monitors:    chainreplication.Monitors(),
	},
	{
		Name:        raft.Name,
		Description: "raft leader election with three servers",
		Test:        raft.Test,
		Monitors:    raft.Monitors(),
	},
	{
		Name:        raft.Name + "-" + raft.ForgetVote.String(),
		Description: "raft leader election where servers forget their vote",
		Test:        raft.NewTest(raft.DefaultServers, raft.ForgetVote),
		Monitors:    raft.Monitors(),
		Buggy:       true,
	},
	{
		Name:        raft.Name + "-" + raft.DuplicateVotes.String(),
		Description: "raft leader election with five servers where candidates count duplicate votes",
		Test:        raft.NewTest(5, raft.DuplicateVotes),
		Monitors:    raft.Monitors(),
		Buggy:       true,
	},
}

// Lookup returns the benchmark with the given name. Names are case insensitive.
func Lookup(name string) (*Benchmark, error) {
	i := slices.IndexFunc(registry, func(b *Benchmark) bool {
		return strings.EqualFold(b.Name, name)
	})
	if i < 0 {
		return nil, gerrors.NewErrUnknownBenchmark(name)
	}
	return registry[i], nil
}

// All returns the registered benchmarks sorted by name
func All() []*Benchmark {
	out := slices.Clone(registry)
	slices.SortFunc(out, func(a, b *Benchmark) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Options returns the engine options that register the monitors of the benchmark
func (b *Benchmark) Options() []tester.Option {
	return []tester.Option{tester.WithName(b.Name), tester.WithMonitors(b.Monitors...)}
}
