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
	"strings"

	gerrors "github.com/tochemey/actorcheck/errors"
)

// ErrExhausted is returned by a strategy that has no decision left to make.
// The scheduler stops the iteration without reporting a bug.
var ErrExhausted = gerrors.ErrStrategyExhausted

// OperationKind tells actors and controlled tasks apart
type OperationKind uint8

const (
	// ActorOperation is an actor whose step is the handling of one event
	ActorOperation OperationKind = iota
	// TaskOperation is a controlled task running until its next scheduling point
	TaskOperation
)

// String returns the operation kind name
func (k OperationKind) String() string {
	if k == TaskOperation {
		return "task"
	}
	return "actor"
}

// Operation is an enabled unit of work offered to a strategy
type Operation struct {
	// ID is stable across replays of the same trace
	ID   uint64
	Name string
	Kind OperationKind
	// Fingerprint summarizes the operation state. It is only computed
	// for strategies implementing FingerprintAware.
	Fingerprint uint64
}

// Strategy picks the next operation to run and resolves nondeterministic choices.
//
// A Strategy is driven by one scheduler at a time and is reused across the
// iterations of a run: PrepareForNextIteration is called between iterations and
// Reset restores the state the strategy was created with.
type Strategy interface {
	// NextOperation returns the id of the operation to run next among the enabled ones.
	// ops is never empty and is ordered by operation creation.
	NextOperation(current uint64, ops []Operation) (uint64, error)
	// NextBoolean resolves a nondeterministic boolean choice
	NextBoolean(current uint64) (bool, error)
	// NextInteger resolves a nondeterministic integer choice in [0, max)
	NextInteger(current uint64, max int) (int, error)
	// PrepareForNextIteration returns false when the strategy cannot explore any further
	PrepareForNextIteration() bool
	// Reset restores the initial state
	Reset()
	// Description returns a short human readable description
	Description() string
}

// FingerprintAware is implemented by strategies that want Operation.Fingerprint to be set
type FingerprintAware interface {
	UsesFingerprints() bool
}

// WantsFingerprints reports whether the given strategy consumes operation fingerprints
func WantsFingerprints(s Strategy) bool {
	aware, ok := s.(FingerprintAware)
	return ok && aware.UsesFingerprints()
}

// Kind names a strategy that can be built from a seed
type Kind string

const (
	// RandomKind is the uniform random strategy
	RandomKind Kind = "random"
	// PCTKind is the priority-based strategy
	PCTKind Kind = "pct"
	// NoveltyKind prefers operations whose state has not been seen yet
	NoveltyKind Kind = "novelty"
)

// ParseKind returns the Kind matching the given name
func ParseKind(name string) (Kind, error) {
	switch kind := Kind(strings.ToLower(strings.TrimSpace(name))); kind {
	case RandomKind, PCTKind, NoveltyKind:
		return kind, nil
	default:
		return "", fmt.Errorf("strategy=(%s) %w", name, gerrors.ErrInvalidStrategy)
	}
}

// New builds the strategy of the given kind.
// bound is the number of priority change points of PCT and is ignored by the other kinds.
func New(kind Kind, seed uint64, bound int) (Strategy, error) {
	switch kind {
	case RandomKind:
		return NewRandom(seed), nil
	case PCTKind:
		return NewPCT(seed, bound), nil
	case NoveltyKind:
		return NewNovelty(seed), nil
	default:
		return nil, fmt.Errorf("strategy=(%s) %w", kind, gerrors.ErrInvalidStrategy)
	}
}

// newRand returns the deterministic generator used by the seeded strategies
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func validateMax(max int) error {
	if max <= 0 {
		return fmt.Errorf("strategy: integer choice bound must be positive, got %d", max)
	}
	return nil
}
