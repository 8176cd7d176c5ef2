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

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	gerrors "github.com/tochemey/actorcheck/errors"
	"github.com/tochemey/actorcheck/internal/validation"
	"github.com/tochemey/actorcheck/log"
	"github.com/tochemey/actorcheck/strategy"
	"github.com/tochemey/actorcheck/tester"
)

// Config is the file configuration of a run of the command line tool.
// Flags given on the command line override the values read from the file.
type Config struct {
	// Benchmark is the name of the program to test
	Benchmark string `yaml:"benchmark"`
	// Iterations is the number of iterations to explore
	Iterations int `yaml:"iterations"`
	// Strategy is one of random, pct or novelty
	Strategy string `yaml:"strategy"`
	// Seed of the run. A random seed is picked when it is not set.
	Seed *uint64 `yaml:"seed,omitempty"`
	// PrioritySwitchBound is the number of PCT priority change points
	PrioritySwitchBound int `yaml:"priority_switch_bound"`
	// MaxSteps bounds every iteration, zero means unbounded
	MaxSteps       int  `yaml:"max_steps"`
	StepBoundAsBug bool `yaml:"step_bound_as_bug"`
	Parallelism    int  `yaml:"parallelism"`
	StopOnFirstBug bool `yaml:"stop_on_first_bug"`
	StateHashing   bool `yaml:"state_hashing"`
	// Store is the path of the trace store, traces are not persisted when empty
	Store string `yaml:"store"`
	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Iterations:          tester.DefaultIterations,
		Strategy:            string(strategy.RandomKind),
		PrioritySwitchBound: tester.DefaultPrioritySwitchBound,
		MaxSteps:            tester.DefaultMaxSteps,
		Parallelism:         1,
		LogLevel:            log.InfoLevel.String(),
	}
}

// Load reads the YAML configuration file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML configuration over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	config := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	_, strategyErr := strategy.ParseKind(c.Strategy)
	return validation.New(validation.AllErrors()).
		AddValidator(validation.NewErrorValidator(c.Iterations > 0,
			fmt.Errorf("iterations=(%d) %w", c.Iterations, gerrors.ErrInvalidIterations))).
		AddValidator(validation.NewErrorValidator(c.Parallelism > 0,
			fmt.Errorf("parallelism=(%d) %w", c.Parallelism, gerrors.ErrInvalidParallelism))).
		AddValidator(validation.NewErrorValidator(strategyErr == nil, strategyErr)).
		AddAssertionf(c.PrioritySwitchBound > 0, "priority_switch_bound must be positive, got %d", c.PrioritySwitchBound).
		AddAssertionf(c.MaxSteps >= 0, "max_steps cannot be negative, got %d", c.MaxSteps).
		AddAssertionf(log.ParseLevel(c.LogLevel) != log.InvalidLevel, "invalid log_level (%s)", c.LogLevel).
		Validate()
}

// Level returns the configured log level
func (c *Config) Level() log.Level {
	return log.ParseLevel(c.LogLevel)
}

// Options returns the engine options matching the configuration.
// The trace store and the logger are wired by the caller.
func (c *Config) Options() []tester.Option {
	kind, _ := strategy.ParseKind(c.Strategy)
	opts := []tester.Option{
		tester.WithIterations(c.Iterations),
		tester.WithStrategy(kind),
		tester.WithPrioritySwitchBound(c.PrioritySwitchBound),
		tester.WithMaxSteps(c.MaxSteps),
		tester.WithParallelism(c.Parallelism),
	}
	if c.Seed != nil {
		opts = append(opts, tester.WithSeed(*c.Seed))
	}
	if c.StepBoundAsBug {
		opts = append(opts, tester.WithStepBoundAsBug())
	}
	if c.StopOnFirstBug {
		opts = append(opts, tester.WithStopOnFirstBug())
	}
	if c.StateHashing {
		opts = append(opts, tester.WithStateHashing())
	}
	return opts
}

// Marshal encodes the configuration in YAML
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
