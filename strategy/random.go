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
)

// Random picks uniformly among the enabled operations
type Random struct {
	seed uint64
	rng  *rand.Rand
}

var _ Strategy = (*Random)(nil)

// NewRandom creates a Random strategy
func NewRandom(seed uint64) *Random {
	return &Random{seed: seed, rng: newRand(seed)}
}

// NextOperation implements Strategy
func (r *Random) NextOperation(_ uint64, ops []Operation) (uint64, error) {
	return ops[r.rng.IntN(len(ops))].ID, nil
}

// NextBoolean implements Strategy
func (r *Random) NextBoolean(uint64) (bool, error) {
	return r.rng.IntN(2) == 0, nil
}

// NextInteger implements Strategy
func (r *Random) NextInteger(_ uint64, max int) (int, error) {
	if err := validateMax(max); err != nil {
		return 0, err
	}
	return r.rng.IntN(max), nil
}

// PrepareForNextIteration implements Strategy.
// The generator keeps running so every iteration explores a new schedule.
func (r *Random) PrepareForNextIteration() bool {
	return true
}

// Reset implements Strategy
func (r *Random) Reset() {
	r.rng = newRand(r.seed)
}

// Description implements Strategy
func (r *Random) Description() string {
	return fmt.Sprintf("random[seed=%d]", r.seed)
}
