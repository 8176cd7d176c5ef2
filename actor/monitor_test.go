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

package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/actorcheck/errors"
	"github.com/tochemey/actorcheck/strategy"
)

type requested struct{}

type served struct{}

type drained struct{}

type progress struct {
	pending int
}

// progressMonitor is hot while a request is pending
var progressMonitor = MustDefine("Progress", func() *progress { return new(progress) }, func(b *Builder[*progress]) {
	b.Start("Idle").Cold().
		OnEventGoto(&requested{}, "Waiting", func(p *progress, _ *Context) { p.pending++ }).
		Ignore(&served{})
	b.State("Waiting").Hot().
		OnEventDo(&requested{}, func(p *progress, _ *Context) { p.pending++ }).
		OnEventDo(&served{}, func(p *progress, ctx *Context) {
			p.pending--
			if p.pending == 0 {
				ctx.Raise(&drained{})
			}
		}).
		OnEventGoto(&drained{}, "Idle")
})

// safetyMonitor fails on the first evB
var safetyMonitor = MustDefine("Safety", newSubject(new(recorder)), func(b *Builder[*subject]) {
	b.Start("Watching").
		Ignore(&evA{}).
		OnEventDo(&evB{}, func(_ *subject, ctx *Context) {
			ctx.Assert(false, "evB observed")
		})
})

func notifier(target *Definition, events ...Event) *Definition {
	return MustDefine("Notifier", newSubject(new(recorder)), func(b *Builder[*subject]) {
		b.Start("Init").OnEntry(func(_ *subject, ctx *Context) {
			for _, event := range events {
				ctx.Monitor(target, event)
			}
		})
	})
}

func TestMonitor(t *testing.T) {
	t.Run("With safety violation", func(t *testing.T) {
		result := execute(t, strategy.NewRandom(1), func(rt *Runtime) error {
			if err := rt.RegisterMonitor(safetyMonitor); err != nil {
				return err
			}
			_, err := rt.CreateActor(notifier(safetyMonitor, &evA{}, &evB{}), nil)
			return err
		})

		require.True(t, result.Buggy())
		assert.Equal(t, BugAssertion, result.Bug.Kind)
		assert.Equal(t, "evB observed", result.Bug.Message)
	})
	t.Run("With unregistered monitor", func(t *testing.T) {
		result := execute(t, strategy.NewRandom(1), func(rt *Runtime) error {
			_, err := rt.CreateActor(notifier(safetyMonitor, &evB{}), nil)
			return err
		})

		require.NoError(t, result.Err)
		assert.False(t, result.Buggy())
	})
	t.Run("With hot state at the end of the execution", func(t *testing.T) {
		result := execute(t, strategy.NewRandom(1), func(rt *Runtime) error {
			if err := rt.RegisterMonitor(progressMonitor); err != nil {
				return err
			}
			_, err := rt.CreateActor(notifier(progressMonitor, &requested{}, &requested{}, &served{}), nil)
			return err
		})

		require.True(t, result.Buggy())
		assert.Equal(t, BugLiveness, result.Bug.Kind)
		assert.ErrorIs(t, result.Bug, gerrors.ErrLivenessViolation)
		assert.Contains(t, result.Bug.Message, "Waiting")
	})
	t.Run("With hot state left", func(t *testing.T) {
		result := execute(t, strategy.NewRandom(1), func(rt *Runtime) error {
			if err := rt.RegisterMonitor(progressMonitor); err != nil {
				return err
			}
			_, err := rt.CreateActor(notifier(progressMonitor, &requested{}, &served{}), nil)
			return err
		})

		require.NoError(t, result.Err)
		assert.False(t, result.Buggy())
	})
	t.Run("With registration errors", func(t *testing.T) {
		deferring := MustDefine("Deferring", newSubject(new(recorder)), func(b *Builder[*subject]) {
			b.Start("Init").Defer(&evA{})
		})

		rt := NewRuntime(strategy.NewRandom(1))
		require.NoError(t, rt.RegisterMonitor(safetyMonitor))
		assert.ErrorIs(t, rt.RegisterMonitor(safetyMonitor), gerrors.ErrMonitorAlreadyRegistered)
		assert.ErrorIs(t, rt.RegisterMonitor(deferring), gerrors.ErrInvalidMonitor)
		assert.ErrorIs(t, rt.RegisterMonitor(nil), gerrors.ErrInvalidMonitor)

		result := rt.Execute(t.Context(), nil)
		require.False(t, result.Buggy())
		assert.ErrorIs(t, rt.RegisterMonitor(progressMonitor), gerrors.ErrRuntimeStarted)
	})
	t.Run("With monitor sending events", func(t *testing.T) {
		chatty := MustDefine("Chatty", newSubject(new(recorder)), func(b *Builder[*subject]) {
			b.Start("Init").OnEventDo(&evA{}, func(_ *subject, ctx *Context) {
				ctx.Send(ctx.Sender(), &evA{})
			})
		})

		result := execute(t, strategy.NewRandom(1), func(rt *Runtime) error {
			if err := rt.RegisterMonitor(chatty); err != nil {
				return err
			}
			_, err := rt.CreateActor(notifier(chatty, &evA{}), nil)
			return err
		})

		require.True(t, result.Buggy())
		assert.Equal(t, BugAssertion, result.Bug.Kind)
		assert.Contains(t, result.Bug.Message, "cannot send events")
	})
	t.Run("With monitor halted", func(t *testing.T) {
		result := execute(t, strategy.NewRandom(1), func(rt *Runtime) error {
			if err := rt.RegisterMonitor(safetyMonitor); err != nil {
				return err
			}
			_, err := rt.CreateActor(notifier(safetyMonitor, Halt{}), nil)
			return err
		})

		require.True(t, result.Buggy())
		assert.Equal(t, BugUnhandledEvent, result.Bug.Kind)
	})
	t.Run("With monitor state", func(t *testing.T) {
		rt := NewRuntime(strategy.NewRandom(1))
		require.NoError(t, rt.RegisterMonitor(progressMonitor))
		_, err := rt.MonitorState(progressMonitor)
		assert.ErrorIs(t, err, gerrors.ErrInvalidMonitor)

		result := rt.Execute(t.Context(), func(rt *Runtime) error {
			_, err := rt.CreateActor(notifier(progressMonitor, &requested{}, &served{}), nil)
			return err
		})
		require.False(t, result.Buggy())

		state, err := rt.MonitorState(progressMonitor)
		require.NoError(t, err)
		assert.Equal(t, "Idle", state)

		_, err = rt.MonitorState(safetyMonitor)
		assert.ErrorIs(t, err, gerrors.ErrInvalidMonitor)
	})
	t.Run("With monitors fresh per runtime", func(t *testing.T) {
		for range 2 {
			result := execute(t, strategy.NewRandom(1), func(rt *Runtime) error {
				if err := rt.RegisterMonitor(progressMonitor); err != nil {
					return err
				}
				_, err := rt.CreateActor(notifier(progressMonitor, &requested{}), nil)
				return err
			})
			require.True(t, result.Buggy())
			assert.Contains(t, result.Bug.Message, "Waiting")
		}
	})
}
