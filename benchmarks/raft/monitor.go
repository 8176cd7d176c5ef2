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
)

type safety struct {
	termsWithLeader goset.Set[int]
}

// SafetyMonitor asserts that at most one leader is elected per term
var SafetyMonitor = actor.MustDefine("Safety",
	func() *safety { return &safety{termsWithLeader: goset.NewThreadUnsafeSet[int]()} },
	func(b *actor.Builder[*safety]) {
		b.Start("Monitoring").OnEventDo(&LeaderElected{}, func(s *safety, ctx *actor.Context) {
			term := ctx.Event().(*LeaderElected).Term
			ctx.Assert(!s.termsWithLeader.Contains(term), "detected more than one leader in term %d", term)
			s.termsWithLeader.Add(term)
		})
	})
