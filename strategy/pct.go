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

package strategy

import (
	"fmt"
	"math/rand/v2"
	"slices"

	goset "github.com/deckarep/golang-set/v2"
)

// PCT is a priority-based strategy. Operations get a random priority when they
// are first seen and the highest priority enabled operation always runs. A bounded
// number of change points, spread over the length of the longest schedule seen so
// far, demote the running operation to the lowest priority.
type PCT struct {
	seed   uint64
	bound  int
	rng    *rand.Rand
	steps  int
	length int
	// highest priority first
	priorities   []uint64
	changePoints goset.Set[int]
}

var _ Strategy = (*PCT)(nil)

// NewPCT creates a PCT strategy with at most bound priority change points per iteration
func NewPCT(seed uint64, bound int) *PCT {
	return &PCT{
		seed:         seed,
		bound:        max(bound, 0),
		rng:          newRand(seed),
		priorities:   make([]uint64, 0, 16),
		changePoints: goset.NewThreadUnsafeSet[int](),
	}
}

// NextOperation implements Strategy
func (p *PCT) NextOperation(current uint64, ops []Operation) (uint64, error) {
	p.steps++
	return p.prioritized(current, ops), nil
}

// NextBoolean implements Strategy
func (p *PCT) NextBoolean(uint64) (bool, error) {
	p.steps++
	return p.rng.IntN(2) == 0, nil
}

// NextInteger implements Strategy
func (p *PCT) NextInteger(_ uint64, max int) (int, error) {
	if err := validateMax(max); err != nil {
		return 0, err
	}
	p.steps++
	return p.rng.IntN(max), nil
}

// PrepareForNextIteration implements Strategy
func (p *PCT) PrepareForNextIteration() bool {
	p.length = max(p.length, p.steps)
	p.steps = 0
	p.priorities = p.priorities[:0]
	p.changePoints.Clear()

	points := make([]int, p.length)
	for i := range points {
		points[i] = i
	}
	p.rng.Shuffle(len(points), func(i, j int) {
		points[i], points[j] = points[j], points[i]
	})
	for _, point := range points[:min(p.bound, len(points))] {
		p.changePoints.Add(point)
	}
	return true
}

// Reset implements Strategy
func (p *PCT) Reset() {
	p.rng = newRand(p.seed)
	p.steps = 0
	p.length = 0
	p.priorities = p.priorities[:0]
	p.changePoints.Clear()
}

// Description implements Strategy
func (p *PCT) Description() string {
	return fmt.Sprintf("pct[seed=%d,bound=%d]", p.seed, p.bound)
}

func (p *PCT) prioritized(current uint64, ops []Operation) uint64 {
	if len(p.priorities) == 0 && current != 0 {
		p.priorities = append(p.priorities, current)
	}

	// new operations never take the highest priority
	for _, op := range ops {
		if slices.Contains(p.priorities, op.ID) {
			continue
		}
		index := 0
		if len(p.priorities) > 0 {
			index = p.rng.IntN(len(p.priorities)) + 1
		}
		p.priorities = slices.Insert(p.priorities, index, op.ID)
	}

	if p.changePoints.Contains(p.steps) {
		if len(ops) == 1 {
			p.moveChangePointForward()
		} else {
			demoted := p.highest(ops)
			index := slices.Index(p.priorities, demoted)
			p.priorities = append(slices.Delete(p.priorities, index, index+1), demoted)
		}
	}

	return p.highest(ops)
}

func (p *PCT) highest(ops []Operation) uint64 {
	for _, id := range p.priorities {
		if slices.ContainsFunc(ops, func(op Operation) bool { return op.ID == id }) {
			return id
		}
	}
	return ops[0].ID
}

func (p *PCT) moveChangePointForward() {
	p.changePoints.Remove(p.steps)
	next := p.steps + 1
	for p.changePoints.Contains(next) {
		next++
	}
	p.changePoints.Add(next)
}
