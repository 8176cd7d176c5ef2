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

package benchmarks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	gerrors "github.com/tochemey/actorcheck/errors"
	"github.com/tochemey/actorcheck/log"
	"github.com/tochemey/actorcheck/tester"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLookup(t *testing.T) {
	t.Run("With registered benchmark", func(t *testing.T) {
		benchmark, err := Lookup("RAFT")
		require.NoError(t, err)
		assert.Equal(t, "raft", benchmark.Name)
		assert.False(t, benchmark.Buggy)
		assert.NotEmpty(t, benchmark.Monitors)
	})
	t.Run("With unknown benchmark", func(t *testing.T) {
		_, err := Lookup("paxos")
		assert.ErrorIs(t, err, gerrors.ErrUnknownBenchmark)
	})
}

func TestAll(t *testing.T) {
	names := make([]string, 0)
	for _, benchmark := range All() {
		names = append(names, benchmark.Name)
	}
	assert.Equal(t, []string{"chainreplication", "pingpong", "raft", "raft-duplicate-votes", "raft-forget-vote"}, names)
}

func TestCorrectBenchmarks(t *testing.T) {
	for _, benchmark := range All() {
		if benchmark.Buggy {
			continue
		}
		t.Run(benchmark.Name, func(t *testing.T) {
			opts := append(benchmark.Options(), tester.WithIterations(25), tester.WithSeed(9), tester.WithLogger(log.DiscardLogger))
			engine, err := tester.New(benchmark.Test, opts...)
			require.NoError(t, err)

			report, err := engine.Run(t.Context())
			require.NoError(t, err)
			assert.Zero(t, report.BuggyIterations, report.String())
			assert.Equal(t, benchmark.Name, report.Name)
		})
	}
}
