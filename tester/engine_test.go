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

package tester

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/goleak"
	"go.uber.org/multierr"

	"github.com/tochemey/actorcheck/actor"
	gerrors "github.com/tochemey/actorcheck/errors"
	"github.com/tochemey/actorcheck/log"
	"github.com/tochemey/actorcheck/strategy"
	"github.com/tochemey/actorcheck/trace"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type increment struct{}

type counter struct {
	value int
}

type counted struct {
	value int
}

// racyCounter loses an update when the two tasks interleave between read and write
func racyCounter(rt *actor.Runtime) error {
	c := new(counter)
	for range 2 {
		if _, err := rt.Run(func(tc *actor.TaskContext) (any, error) {
			value := c.value
			tc.Yield()
			c.value = value + 1
			tc.Monitor(totalMonitor, &counted{value: c.value})
			return nil, nil
		}); err != nil {
			return err
		}
	}
	return nil
}

type total struct {
	updates int
}

// totalMonitor asserts the second update sees a total of two
var totalMonitor = actor.MustDefine("Total", func() *total { return new(total) }, func(b *actor.Builder[*total]) {
	b.Start("Counting").OnEventDo(&counted{}, func(t *total, ctx *actor.Context) {
		t.updates++
		if t.updates == 2 {
			value := ctx.Event().(*counted).value
			ctx.Assert(value == 2, "lost update: total is %d after two increments", value)
		}
	})
})

type echo struct{}

var echoDef = actor.MustDefine("Echo", func() *echo { return new(echo) }, func(b *actor.Builder[*echo]) {
	b.Start("Ready").OnEventDo(&increment{}, func(_ *echo, ctx *actor.Context) {
		if sender := ctx.Sender(); !sender.IsZero() {
			ctx.Send(sender, &increment{})
		}
	})
})

type caller struct {
	calls int
}

var callerDef = actor.MustDefine("Caller", func() *caller { return new(caller) }, func(b *actor.Builder[*caller]) {
	b.Start("Calling").
		OnEntry(func(c *caller, ctx *actor.Context) {
			ctx.Send(ctx.Event().(actor.ActorID), &increment{})
		}).
		OnEventDo(&increment{}, func(c *caller, ctx *actor.Context) {
			c.calls++
			if c.calls < 3 {
				ctx.Send(ctx.Sender(), &increment{})
			}
		})
})

type looper struct{}

// loopDef bounces an event to itself forever
var loopDef = actor.MustDefine("Looper", func() *looper { return new(looper) }, func(b *actor.Builder[*looper]) {
	b.Start("Looping").OnEventDo(&increment{}, func(_ *looper, ctx *actor.Context) {
		ctx.Send(ctx.Self(), &increment{})
	})
})

// correctProgram has no bug
func correctProgram(rt *actor.Runtime) error {
	id, err := rt.CreateActor(echoDef, nil)
	if err != nil {
		return err
	}
	for range 2 {
		if _, err := rt.CreateActor(callerDef, id); err != nil {
			return err
		}
	}
	return nil
}

func quiet() Option {
	return WithLogger(log.DiscardLogger)
}

func TestEngine(t *testing.T) {
	t.Run("With correct program", func(t *testing.T) {
		engine, err := New(correctProgram, quiet(), WithIterations(50), WithSeed(7), WithStateHashing())
		require.NoError(t, err)

		report, err := engine.Run(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 50, report.Iterations)
		assert.Zero(t, report.BuggyIterations)
		assert.Empty(t, report.Bugs)
		assert.Nil(t, report.FirstBug())
		assert.Zero(t, report.BugRate())
		assert.Positive(t, report.TotalSteps)
		assert.Positive(t, report.DistinctStates)
		assert.EqualValues(t, 7, report.Seed)
		assert.Equal(t, 1.0, report.Coverage.StateCoverage())
		assert.Contains(t, report.String(), "iterations: 50, buggy: 0")
	})
	t.Run("With racy program", func(t *testing.T) {
		engine, err := New(racyCounter, quiet(), WithIterations(100), WithSeed(1), WithMonitors(totalMonitor))
		require.NoError(t, err)

		report, err := engine.Run(t.Context())
		require.NoError(t, err)
		require.Positive(t, report.BuggyIterations)
		assert.Len(t, report.Bugs, report.BuggyIterations)
		assert.Greater(t, report.BugRate(), 0.0)

		bug := report.FirstBug()
		require.NotNil(t, bug)
		assert.Equal(t, actor.BugAssertion, bug.Kind)
		assert.Equal(t, "assertion", bug.KindName)
		assert.Contains(t, bug.Message, "lost update")
		assert.NotNil(t, bug.Trace)

		replayed, err := engine.Replay(t.Context(), bug.Trace)
		require.NoError(t, err)
		require.Equal(t, 1, replayed.BuggyIterations)
		assert.Equal(t, bug.Message, replayed.FirstBug().Message)
		assert.Equal(t, bug.Step, replayed.FirstBug().Step)
		assert.True(t, bug.Trace.Equal(replayed.FirstBug().Trace))
	})
	t.Run("With stop on first bug", func(t *testing.T) {
		engine, err := New(racyCounter, quiet(), WithIterations(500), WithSeed(3),
			WithMonitors(totalMonitor), WithStopOnFirstBug())
		require.NoError(t, err)

		report, err := engine.Run(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 1, report.BuggyIterations)
		assert.Equal(t, report.FirstBug().Iteration+1, report.Iterations)
	})
	t.Run("With parallel workers", func(t *testing.T) {
		engine, err := New(racyCounter, quiet(), WithIterations(64), WithSeed(5),
			WithParallelism(4), WithMonitors(totalMonitor), WithStrategy(strategy.PCTKind), WithPrioritySwitchBound(2))
		require.NoError(t, err)

		report, err := engine.Run(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 64, report.Iterations)
		for i := 1; i < len(report.Bugs); i++ {
			assert.Less(t, report.Bugs[i-1].Iteration, report.Bugs[i].Iteration)
		}
	})
	t.Run("With novelty strategy", func(t *testing.T) {
		engine, err := New(correctProgram, quiet(), WithIterations(20), WithStrategy(strategy.NoveltyKind))
		require.NoError(t, err)

		report, err := engine.Run(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 20, report.Iterations)
	})
	t.Run("With step bound as bug", func(t *testing.T) {
		engine, err := New(func(rt *actor.Runtime) error {
			id, err := rt.CreateActor(loopDef, nil)
			if err != nil {
				return err
			}
			return rt.Send(id, &increment{})
		}, quiet(), WithIterations(5), WithMaxSteps(100), WithStepBoundAsBug())
		require.NoError(t, err)

		report, err := engine.Run(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 5, report.BuggyIterations)
		assert.Equal(t, 5, report.StepBoundHits)
		assert.Equal(t, 100, report.MaxSteps)
		assert.Equal(t, actor.BugLiveness, report.FirstBug().Kind)
	})
	t.Run("With test error", func(t *testing.T) {
		failure := assert.AnError
		engine, err := New(func(*actor.Runtime) error { return failure }, quiet(), WithIterations(3))
		require.NoError(t, err)

		report, err := engine.Run(t.Context())
		require.ErrorIs(t, err, failure)
		require.NotNil(t, report)
		assert.Zero(t, report.Iterations)
	})
	t.Run("With canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		engine, err := New(correctProgram, quiet())
		require.NoError(t, err)
		_, err = engine.Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
	t.Run("With diverged replay", func(t *testing.T) {
		engine, err := New(correctProgram, quiet())
		require.NoError(t, err)

		_, err = engine.Replay(t.Context(), trace.FromSteps(trace.Step{Kind: trace.BooleanStep, Bool: true}))
		assert.ErrorIs(t, err, gerrors.ErrReplayDiverged)

		_, err = engine.Replay(t.Context(), nil)
		assert.ErrorIs(t, err, gerrors.ErrInvalidTrace)
	})
	t.Run("With trace store", func(t *testing.T) {
		store, err := trace.OpenStore(t.Context(), filepath.Join(t.TempDir(), "traces.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })

		engine, err := New(racyCounter, quiet(), WithName("racy"), WithIterations(100), WithSeed(1),
			WithMonitors(totalMonitor), WithStopOnFirstBug(), WithTraceStore(store),
			WithMeterProvider(noop.NewMeterProvider()))
		require.NoError(t, err)

		report, err := engine.Run(t.Context())
		require.NoError(t, err)
		bug := report.FirstBug()
		require.NotNil(t, bug)
		require.NotEmpty(t, bug.RecordID)

		record, err := store.Get(t.Context(), bug.RecordID)
		require.NoError(t, err)
		assert.Equal(t, "racy", record.Test)
		assert.Equal(t, "assertion", record.Kind)
		assert.Equal(t, bug.Iteration, record.Iteration)
		assert.True(t, bug.Trace.Equal(record.Trace))
	})
	t.Run("With invalid configuration", func(t *testing.T) {
		_, err := New(nil, WithIterations(0), WithParallelism(-1), WithStrategy("dfs"))
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrTestRequired)
		assert.ErrorIs(t, err, gerrors.ErrInvalidIterations)
		assert.ErrorIs(t, err, gerrors.ErrInvalidParallelism)
		assert.ErrorIs(t, err, gerrors.ErrInvalidStrategy)
		assert.Len(t, multierr.Errors(err), 4)

		_, err = New(correctProgram, WithMonitors(nil))
		assert.ErrorIs(t, err, gerrors.ErrInvalidMonitor)

		_, err = New(correctProgram, WithStrategy(strategy.PCTKind), WithPrioritySwitchBound(0))
		assert.Error(t, err)
	})
}
