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

package errorschain

import "go.uber.org/multierr"

// Chain collects the outcome of a sequence of fallible steps, typically the
// teardown of the resources held by a test run: closing the trace store,
// flushing the logger. Steps run in insertion order when Error is called.
type Chain struct {
	returnFirst bool
	steps       []func() error
}

// ChainOption configures a chain at creation time.
type ChainOption func(*Chain)

// New creates a new error chain
func New(opts ...ChainOption) *Chain {
	chain := &Chain{
		steps: make([]func() error, 0),
	}

	for _, opt := range opts {
		opt(chain)
	}

	return chain
}

// AddError adds an already computed error to the chain
func (c *Chain) AddError(err error) *Chain {
	return c.AddErrorFn(func() error { return err })
}

// AddErrors adds a slice of errors to the chain. The slice order does matter here
func (c *Chain) AddErrors(errs ...error) *Chain {
	for _, err := range errs {
		c.AddError(err)
	}
	return c
}

// AddErrorFn adds a step evaluated lazily by Error.
// With ReturnFirst the steps after the first failing one never run.
func (c *Chain) AddErrorFn(fn func() error) *Chain {
	if fn != nil {
		c.steps = append(c.steps, fn)
	}
	return c
}

// AddErrorFns adds several lazy steps
func (c *Chain) AddErrorFns(fns ...func() error) *Chain {
	for _, fn := range fns {
		c.AddErrorFn(fn)
	}
	return c
}

// Error runs the steps and returns the first error or all of them combined
func (c *Chain) Error() error {
	var err error
	for _, step := range c.steps {
		if e := step(); e != nil {
			if c.returnFirst {
				return e
			}
			err = multierr.Append(err, e)
		}
	}
	return err
}

// ReturnFirst sets whether a chain should stop on the first error.
func ReturnFirst() ChainOption {
	return func(c *Chain) { c.returnFirst = true }
}

// ReturnAll sets whether a chain should return all errors.
func ReturnAll() ChainOption {
	return func(c *Chain) { c.returnFirst = false }
}
