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

	goset "github.com/deckarep/golang-set/v2"
)

// Novelty prefers enabled operations whose state fingerprint has not been
// scheduled before, across all iterations of a run. When every enabled
// operation is in a known state it falls back to a uniform choice.
type Novelty struct {
	seed       uint64
	rng        *rand.Rand
	seen       goset.Set[uint64]
	candidates []Operation
}

var (
	_ Strategy         = (*Novelty)(nil)
	_ FingerprintAware = (*Novelty)(nil)
)

// NewNovelty creates a Novelty strategy
func NewNovelty(seed uint64) *Novelty {
	return &Novelty{
		seed:       seed,
		rng:        newRand(seed),
		seen:       goset.NewThreadUnsafeSet[uint64](),
		candidates: make([]Operation, 0, 8),
	}
}

// UsesFingerprints implements FingerprintAware
func (n *Novelty) UsesFingerprints() bool {
	return true
}

// NextOperation implements Strategy
func (n *Novelty) NextOperation(_ uint64, ops []Operation) (uint64, error) {
	n.candidates = n.candidates[:0]
	for _, op := range ops {
		if !n.seen.Contains(op.Fingerprint) {
			n.candidates = append(n.candidates, op)
		}
	}

	pool := n.candidates
	if len(pool) == 0 {
		pool = ops
	}

	next := pool[n.rng.IntN(len(pool))]
	n.seen.Add(next.Fingerprint)
	return next.ID, nil
}

// NextBoolean implements Strategy
func (n *Novelty) NextBoolean(uint64) (bool, error) {
	return n.rng.IntN(2) == 0, nil
}

// NextInteger implements Strategy
func (n *Novelty) NextInteger(_ uint64, max int) (int, error) {
	if err := validateMax(max); err != nil {
		return 0, err
	}
	return n.rng.IntN(max), nil
}

// PrepareForNextIteration implements Strategy
func (n *Novelty) PrepareForNextIteration() bool {
	return true
}

// Reset implements Strategy
func (n *Novelty) Reset() {
	n.rng = newRand(n.seed)
	n.seen.Clear()
}

// Description implements Strategy
func (n *Novelty) Description() string {
	return fmt.Sprintf("novelty[seed=%d,states=%d]", n.seed, n.seen.Cardinality())
}
