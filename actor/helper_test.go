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
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tochemey/actorcheck/strategy"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type (
	evA    struct{}
	evB    struct{}
	evC    struct{}
	evGo   struct{}
	evPush struct{}
	evPop  struct{}
)

// recorder collects the actions run by the subjects of a test
type recorder struct {
	entries []string
}

func (r *recorder) add(entry string) {
	r.entries = append(r.entries, entry)
}

func (r *recorder) record(entry string) Action[*subject] {
	return func(p *subject, _ *Context) {
		p.rec.add(entry)
	}
}

type subject struct {
	rec *recorder
}

func newSubject(rec *recorder) func() *subject {
	return func() *subject { return &subject{rec: rec} }
}

// stackSubject exercises the dispatch precedence of a two-level state stack
func stackSubject(t *testing.T, rec *recorder) *Definition {
	def, err := Define("Subject", newSubject(rec), func(b *Builder[*subject]) {
		b.Start("Base").
			OnEntry(rec.record("enter:Base")).
			OnExit(rec.record("exit:Base")).
			OnEventDo(&evA{}, rec.record("base:a")).
			OnEventDo(&evB{}, rec.record("base:b")).
			OnEventDo(&evC{}, rec.record("base:c")).
			OnEventPush(&evPush{}, "Top").
			OnEventGoto(&evGo{}, "Done", rec.record("go-action"))
		b.State("Top").
			OnEntry(rec.record("enter:Top")).
			OnExit(rec.record("exit:Top")).
			OnEventDo(&evA{}, rec.record("top:a")).
			OnEventDo(&evPop{}, func(p *subject, ctx *Context) {
				p.rec.add("pop")
				ctx.Pop()
			}).
			Defer(&evC{})
		b.State("Done").
			OnEntry(rec.record("enter:Done")).
			Ignore(&evA{})
	})
	require.NoError(t, err)
	return def
}

type ping struct {
	from ActorID
}

type pong struct{}

type server struct {
	served int
}

type client struct {
	server   ActorID
	rounds   int
	received int
}

var serverDef = MustDefine("Server", func() *server { return new(server) }, func(b *Builder[*server]) {
	b.Start("Serving").OnEventDo(&ping{}, func(s *server, ctx *Context) {
		s.served++
		ctx.Send(ctx.Event().(*ping).from, &pong{})
	})
})

var clientDef = MustDefine("Client", func() *client { return &client{rounds: 3} }, func(b *Builder[*client]) {
	b.Start("Init").OnEntry(func(c *client, ctx *Context) {
		c.server = ctx.Event().(ActorID)
		ctx.Send(c.server, &ping{from: ctx.Self()})
	}).OnEventDo(&pong{}, func(c *client, ctx *Context) {
		c.received++
		if c.received == c.rounds {
			ctx.Halt()
			return
		}
		ctx.Send(c.server, &ping{from: ctx.Self()})
	})
})

// pingPong creates a server and two clients
func pingPong(rt *Runtime) error {
	srv, err := rt.CreateActor(serverDef, nil)
	if err != nil {
		return err
	}
	for range 2 {
		if _, err := rt.CreateActor(clientDef, srv); err != nil {
			return err
		}
	}
	return nil
}

func execute(t *testing.T, strat strategy.Strategy, setup func(*Runtime) error, opts ...Option) *Result {
	t.Helper()
	rt := NewRuntime(strat, opts...)
	return rt.Execute(context.Background(), setup)
}
