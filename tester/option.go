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
	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/actorcheck/actor"
	"github.com/tochemey/actorcheck/log"
	"github.com/tochemey/actorcheck/strategy"
	"github.com/tochemey/actorcheck/trace"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(engine *Engine)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Engine)

// Apply applies the option
func (f OptionFunc) Apply(e *Engine) {
	f(e)
}

// WithName sets the name of the tested program, used in logs and stored bug records
func WithName(name string) Option {
	return OptionFunc(func(e *Engine) {
		e.name = name
	})
}

// WithIterations sets the number of iterations to explore
func WithIterations(iterations int) Option {
	return OptionFunc(func(e *Engine) {
		e.iterations = iterations
	})
}

// WithStrategy sets the exploration strategy
func WithStrategy(kind strategy.Kind) Option {
	return OptionFunc(func(e *Engine) {
		e.strategy = kind
	})
}

// WithSeed sets the seed of the exploration. A run is reproducible given its seed,
// its strategy and its parallelism.
func WithSeed(seed uint64) Option {
	return OptionFunc(func(e *Engine) {
		e.seed = seed
		e.seeded = true
	})
}

// WithPrioritySwitchBound sets the number of priority change points of the PCT strategy
func WithPrioritySwitchBound(bound int) Option {
	return OptionFunc(func(e *Engine) {
		e.bound = bound
	})
}

// WithMaxSteps bounds the number of decisions of each iteration
func WithMaxSteps(steps int) Option {
	return OptionFunc(func(e *Engine) {
		e.maxSteps = steps
	})
}

// WithStepBoundAsBug reports an iteration reaching the step bound as a liveness bug
func WithStepBoundAsBug() Option {
	return OptionFunc(func(e *Engine) {
		e.stepBoundAsBug = true
	})
}

// WithParallelism sets the number of workers exploring iterations concurrently.
// Each worker owns a strategy seeded from the run seed and its index.
func WithParallelism(workers int) Option {
	return OptionFunc(func(e *Engine) {
		e.parallelism = workers
	})
}

// WithStopOnFirstBug stops the run at the first buggy iteration
func WithStopOnFirstBug() Option {
	return OptionFunc(func(e *Engine) {
		e.stopOnFirstBug = true
	})
}

// WithMonitors registers the given monitors in every iteration before the test runs
func WithMonitors(monitors ...*actor.Definition) Option {
	return OptionFunc(func(e *Engine) {
		e.monitors = append(e.monitors, monitors...)
	})
}

// WithLogger sets the engine logger. Runtimes log through it at debug level.
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(e *Engine) {
		e.logger = logger
	})
}

// WithTraceStore persists every bug found with its trace
func WithTraceStore(store *trace.Store) Option {
	return OptionFunc(func(e *Engine) {
		e.store = store
	})
}

// WithMeterProvider sets the meter provider of the engine instruments
func WithMeterProvider(provider metric.MeterProvider) Option {
	return OptionFunc(func(e *Engine) {
		e.meterProvider = provider
	})
}

// WithStateHashing counts the distinct program states explored by the run
func WithStateHashing() Option {
	return OptionFunc(func(e *Engine) {
		e.stateHashing = true
	})
}
