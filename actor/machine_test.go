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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/actorcheck/errors"
	"github.com/tochemey/actorcheck/strategy"
)

func TestMachine(t *testing.T) {
	t.Run("With state stack dispatch", func(t *testing.T) {
		rec := new(recorder)
		def := stackSubject(t, rec)

		result := execute(t, strategy.NewRandom(1), func(rt *Runtime) error {
			id, err := rt.CreateActor(def, nil)
			if err != nil {
				return err
			}
			for _, event := range []Event{&evA{}, &evPush{}, &evC{}, &evA{}, &evB{}, &evPop{}, &evGo{}, &evA{}} {
				if err := rt.Send(id, event); err != nil {
					return err
				}
			}
			return nil
		})

		require.NoError(t, result.Err)
		require.False(t, result.Buggy())
		assert.Equal(t, 9, result.Steps)
		expected := []string{
			"enter:Base",
			"base:a",
			"enter:Top",
			// evC is deferred by Top and evA is handled by Top
			"top:a",
			// evB is handled by Base beneath Top
			"base:b",
			"pop",
			"exit:Top",
			"base:c",
			"exit:Base",
			"go-action",
			"enter:Done",
		}
		assert.Equal(t, expected, rec.entries)
	})
	t.Run("With raised event handled in the same step", func(t *testing.T) {
		rec := new(recorder)
		def := MustDefine("Raiser", newSubject(rec), func(b *Builder[*subject]) {
			b.Start("Init").
				OnEntry(func(p *subject, ctx *Context) {
					p.rec.add("enter:Init")
					ctx.Raise(&evGo{})
				}).
				OnEventGoto(&evGo{}, "Next")
			b.State("Next").OnEntry(rec.record("enter:Next"))
		})

		result := execute(t, strategy.NewRandom(1), func(rt *Runtime) error {
			_, err := rt.CreateActor(def, nil)
			return err
		})

		require.False(t, result.Buggy())
		assert.Equal(t, 1, result.Steps)
		assert.Equal(t, []string{"enter:Init", "enter:Next"}, rec.entries)
	})
	t.Run("With raised event handled before the mailbox", func(t *testing.T) {
		rec := new(recorder)
		def := MustDefine("Raiser", newSubject(rec), func(b *Builder[*subject]) {
			b.Start("Init").
				OnEventDo(&evA{}, func(p *subject, ctx *Context) {
					p.rec.add("a")
					ctx.Raise(&evB{})
				}).
				OnEventDo(&evB{}, rec.record("b")).
				OnEventDo(&evC{}, rec.record("c"))
		})

		result := execute(t, strategy.NewRandom(1), func(rt *Runtime) error {
			id, err := rt.CreateActor(def, nil)
			if err != nil {
				return err
			}
			_ = rt.Send(id, &evA{})
			return rt.Send(id, &evC{})
		})

		require.False(t, result.Buggy())
		assert.Equal(t, []string{"a", "b", "c"}, rec.entries)
	})
	t.Run("With two raised events in one action", func(t *testing.T) {
		def := MustDefine("Raiser", newSubject(new(recorder)), func(b *Builder[*subject]) {
			b.Start("Init").
				OnEntry(func(_ *subject, ctx *Context) {
					ctx.Raise(&evA{})
					ctx.Raise(&evB{})
				}).
				Ignore(&evA{}, &evB{})
		})

		result := execute(t, strategy.NewRandom(1), func(rt *Runtime) error {
			_, err := rt.CreateActor(def, nil)
			return err
		})

		require.True(t, result.Buggy())
		assert.Equal(t, BugAssertion, result.Bug.Kind)
		assert.ErrorIs(t, result.Bug, gerrors.ErrAssertionFailure)
	})
	t.Run("With unhandled event", func(t *testing.T) {
		def := MustDefine("Picky", newSubject(new(recorder)), func(b *Builder[*subject]) {
			b.Start("Init").Ignore(&evA{})
		})

		result := execute(t, strategy.NewRandom(1), func(rt *Runtime) error {
			id, err := rt.CreateActor(def, nil)
			if err != nil {
				return err
			}
			return rt.Send(id, &evB{})
		})

		require.True(t, result.Buggy())
		assert.Equal(t, BugUnhandledEvent, result.Bug.Kind)
		assert.True(t, errors.Is(result.Bug, gerrors.ErrUnhandledEvent))
		assert.Contains(t, result.Bug.Message, "evB")
		assert.Equal(t, 2, result.Bug.Step)
		assert.Equal(t, result.Steps, result.Bug.Trace.Len())
	})
	t.Run("With raised deferred event", func(t *testing.T) {
		def := MustDefine("Deferrer", newSubject(new(recorder)), func(b *Builder[*subject]) {
			b.Start("Init").
				OnEntry(func(_ *subject, ctx *Context) { ctx.Raise(&evA{}) }).
				Defer(&evA{})
		})

		result := execute(t, strategy.NewRandom(1), func(rt *Runtime) error {
			_, err := rt.CreateActor(def, nil)
			return err
		})

		require.True(t, result.Buggy())
		assert.Equal(t, BugUnhandledEvent, result.Bug.Kind)
	})
	t.Run("With halt", func(t *testing.T) {
		rec := new(recorder)
		def := MustDefine("Mortal", newSubject(rec), func(b *Builder[*subject]) {
			b.Start("Init").OnEventDo(&evA{}, rec.record("a"))
			b.OnHalt(rec.record("halted"))
		})

		var id ActorID
		rt := NewRuntime(strategy.NewRandom(1))
		result := rt.Execute(t.Context(), func(rt *Runtime) error {
			var err error
			id, err = rt.CreateActor(def, nil)
			if err != nil {
				return err
			}
			_ = rt.Send(id, &evA{})
			_ = rt.Send(id, Halt{})
			return rt.Send(id, &evA{})
		})

		require.False(t, result.Buggy())
		assert.Equal(t, 3, result.Steps)
		assert.Equal(t, []string{"a", "halted"}, rec.entries)
		assert.ErrorIs(t, rt.Send(id, &evA{}), gerrors.ErrRuntimeNotRunning)
	})
	t.Run("With halt from an action", func(t *testing.T) {
		rec := new(recorder)
		def := MustDefine("Mortal", newSubject(rec), func(b *Builder[*subject]) {
			b.Start("Init").OnEventDo(&evA{}, func(p *subject, ctx *Context) {
				p.rec.add("a")
				ctx.Halt()
			})
			b.OnHalt(rec.record("halted"))
		})
		sender := MustDefine("Sender", newSubject(rec), func(b *Builder[*subject]) {
			b.Start("Init").OnEntry(func(_ *subject, ctx *Context) {
				target := ctx.Event().(ActorID)
				ctx.Send(target, &evA{})
				ctx.Send(target, &evA{})
			})
		})

		result := execute(t, strategy.NewRandom(3), func(rt *Runtime) error {
			id, err := rt.CreateActor(def, nil)
			if err != nil {
				return err
			}
			_, err = rt.CreateActor(sender, id)
			return err
		})

		require.False(t, result.Buggy())
		assert.Equal(t, []string{"a", "halted"}, rec.entries)
	})
	t.Run("With pop of the last state", func(t *testing.T) {
		def := MustDefine("Popper", newSubject(new(recorder)), func(b *Builder[*subject]) {
			b.Start("Init").OnEntry(func(_ *subject, ctx *Context) { ctx.Pop() })
		})

		result := execute(t, strategy.NewRandom(1), func(rt *Runtime) error {
			_, err := rt.CreateActor(def, nil)
			return err
		})

		require.True(t, result.Buggy())
		assert.Equal(t, BugAssertion, result.Bug.Kind)
	})
	t.Run("With panic in an action", func(t *testing.T) {
		def := MustDefine("Panicker", newSubject(new(recorder)), func(b *Builder[*subject]) {
			b.Start("Init").OnEntry(func(*subject, *Context) { panic("boom") })
		})

		result := execute(t, strategy.NewRandom(1), func(rt *Runtime) error {
			_, err := rt.CreateActor(def, nil)
			return err
		})

		require.True(t, result.Buggy())
		assert.Equal(t, BugUnhandledPanic, result.Bug.Kind)
		assert.Contains(t, result.Bug.Message, "boom")
		assert.NotEmpty(t, result.Bug.Stack)
	})
	t.Run("With failed assertion", func(t *testing.T) {
		def := MustDefine("Asserter", newSubject(new(recorder)), func(b *Builder[*subject]) {
			b.Start("Init").OnEntry(func(_ *subject, ctx *Context) {
				ctx.Assert(ctx.CurrentState() == "Init", "unexpected state")
				ctx.Assert(false, "value is %d", 42)
			})
		})

		result := execute(t, strategy.NewRandom(1), func(rt *Runtime) error {
			_, err := rt.CreateActor(def, nil)
			return err
		})

		require.True(t, result.Buggy())
		assert.Equal(t, BugAssertion, result.Bug.Kind)
		assert.Equal(t, "value is 42", result.Bug.Message)
		assert.Equal(t, "assertion bug at step 1: value is 42", result.Bug.Error())
	})
	t.Run("With sender and self", func(t *testing.T) {
		var self, sender, observed ActorID
		def := MustDefine("Echo", newSubject(new(recorder)), func(b *Builder[*subject]) {
			b.Start("Init").OnEventDo(&evA{}, func(_ *subject, ctx *Context) {
				self = ctx.Self()
				observed = ctx.Sender()
			})
		})
		source := MustDefine("Source", newSubject(new(recorder)), func(b *Builder[*subject]) {
			b.Start("Init").OnEntry(func(_ *subject, ctx *Context) {
				sender = ctx.Self()
				ctx.Send(ctx.Event().(ActorID), &evA{})
			})
		})

		result := execute(t, strategy.NewRandom(1), func(rt *Runtime) error {
			id, err := rt.CreateActor(def, nil, WithName("echo"))
			if err != nil {
				return err
			}
			_, err = rt.CreateActor(source, id)
			return err
		})

		require.False(t, result.Buggy())
		assert.Equal(t, "echo", self.Name())
		assert.Equal(t, "Echo", self.Kind())
		assert.Equal(t, sender, observed)
		assert.False(t, observed.IsZero())
	})
}
