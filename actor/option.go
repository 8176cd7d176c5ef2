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

	"github.com/tochemey/actorcheck/log"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(rt *Runtime)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Runtime)

// Apply applies the option
func (f OptionFunc) Apply(rt *Runtime) {
	f(rt)
}

// WithLogger sets the runtime logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(rt *Runtime) {
		rt.logger = logger
	})
}

// WithMaxSteps bounds the number of decisions of an iteration. Zero means unbounded.
func WithMaxSteps(steps int) Option {
	return OptionFunc(func(rt *Runtime) {
		rt.maxSteps = steps
	})
}

// WithStepBoundAsBug reports reaching the step bound as a liveness bug
func WithStepBoundAsBug() Option {
	return OptionFunc(func(rt *Runtime) {
		rt.stepBoundAsBug = true
	})
}

// WithStateHashing records a fingerprint of the whole program state after every step
func WithStateHashing() Option {
	return OptionFunc(func(rt *Runtime) {
		rt.hashStates = true
	})
}

// WithCoverage makes the runtime record its activity coverage into the given report.
// It allows several iterations to accumulate into the same report.
func WithCoverage(coverage *Coverage) Option {
	return OptionFunc(func(rt *Runtime) {
		rt.coverage = coverage
	})
}

// SpawnOption configures the creation of an actor
type SpawnOption interface {
	Apply(config *spawnConfig)
}

type spawnConfig struct {
	name string
}

type spawnOptionFunc func(*spawnConfig)

func (f spawnOptionFunc) Apply(c *spawnConfig) {
	f(c)
}

// WithName sets the name of the actor, used in logs, traces and bug reports.
// It defaults to the definition name.
func WithName(name string) SpawnOption {
	return spawnOptionFunc(func(c *spawnConfig) {
		c.name = name
	})
}

// TaskOption configures the creation of a task
type TaskOption interface {
	Apply(config *taskConfig)
}

type taskConfig struct {
	name string
	ctx  context.Context
}

type taskOptionFunc func(*taskConfig)

func (f taskOptionFunc) Apply(c *taskConfig) {
	f(c)
}

func newTaskConfig(opts ...TaskOption) *taskConfig {
	config := &taskConfig{name: "Task"}
	for _, opt := range opts {
		opt.Apply(config)
	}
	return config
}

// WithTaskName sets the name of the task
func WithTaskName(name string) TaskOption {
	return taskOptionFunc(func(c *taskConfig) {
		c.name = name
	})
}

// WithContext sets the parent context of the task. Canceling it cancels the task.
func WithContext(ctx context.Context) TaskOption {
	return taskOptionFunc(func(c *taskConfig) {
		c.ctx = ctx
	})
}
