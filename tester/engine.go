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
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	goset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/actorcheck/actor"
	gerrors "github.com/tochemey/actorcheck/errors"
	imetric "github.com/tochemey/actorcheck/internal/metric"
	"github.com/tochemey/actorcheck/internal/validation"
	"github.com/tochemey/actorcheck/log"
	"github.com/tochemey/actorcheck/strategy"
	"github.com/tochemey/actorcheck/trace"
)

const (
	// DefaultIterations is the number of iterations explored by default
	DefaultIterations = 100
	// DefaultMaxSteps is the step bound of an iteration by default
	DefaultMaxSteps = 10_000
	// DefaultPrioritySwitchBound is the number of PCT change points by default
	DefaultPrioritySwitchBound = 10
	// DefaultName names the tested program in reports
	DefaultName = "test"
)

// TestFunc sets up the program under test: it registers its actors, sends the
// initial events and starts the tasks. It runs once per iteration on a fresh
// Runtime. A returned error aborts the run.
type TestFunc func(rt *actor.Runtime) error

// Engine systematically explores the interleavings of an actor program.
//
// Each iteration runs the test on a fresh Runtime whose scheduling and
// nondeterministic choices are decided by the configured strategy. Bugs are
// reported with the trace that reproduces them.
type Engine struct {
	name           string
	test           TestFunc
	iterations     int
	strategy       strategy.Kind
	seed           uint64
	seeded         bool
	bound          int
	maxSteps       int
	stepBoundAsBug bool
	parallelism    int
	stopOnFirstBug bool
	stateHashing   bool
	monitors       []*actor.Definition
	logger         log.Logger
	store          *trace.Store
	meterProvider  metric.MeterProvider
	metric         *imetric.EngineMetric
}

// New creates an Engine for the given test
func New(test TestFunc, opts ...Option) (*Engine, error) {
	e := &Engine{
		name:        DefaultName,
		test:        test,
		iterations:  DefaultIterations,
		strategy:    strategy.RandomKind,
		bound:       DefaultPrioritySwitchBound,
		maxSteps:    DefaultMaxSteps,
		parallelism: 1,
		logger:      log.DefaultLogger,
	}

	for _, opt := range opts {
		opt.Apply(e)
	}

	if err := e.validate(); err != nil {
		return nil, err
	}

	if !e.seeded {
		e.seed = uint64(time.Now().UnixNano())
	}

	provider := imetric.NewProvider(imetric.WithMeterProvider(e.meterProvider))
	engineMetric, err := imetric.NewEngineMetric(provider.Meter())
	if err != nil {
		return nil, fmt.Errorf("failed to create the engine instruments: %w", err)
	}
	e.metric = engineMetric
	return e, nil
}

func (e *Engine) validate() error {
	_, strategyErr := strategy.ParseKind(string(e.strategy))
	chain := validation.New(validation.AllErrors()).
		AddValidator(validation.NewErrorValidator(e.test != nil, gerrors.ErrTestRequired)).
		AddValidator(validation.NewNameValidator("test", e.name)).
		AddValidator(validation.NewErrorValidator(e.iterations > 0,
			fmt.Errorf("iterations=(%d) %w", e.iterations, gerrors.ErrInvalidIterations))).
		AddValidator(validation.NewErrorValidator(e.parallelism > 0,
			fmt.Errorf("parallelism=(%d) %w", e.parallelism, gerrors.ErrInvalidParallelism))).
		AddValidator(validation.NewErrorValidator(strategyErr == nil, strategyErr)).
		AddAssertionf(e.strategy != strategy.PCTKind || e.bound > 0, "priority switch bound must be positive, got %d", e.bound).
		AddAssertionf(e.maxSteps >= 0, "max steps cannot be negative, got %d", e.maxSteps).
		AddAssertion(e.logger != nil, "logger is required")

	for _, def := range e.monitors {
		chain.AddValidator(validation.NewErrorValidator(def != nil, fmt.Errorf("%w: nil definition", gerrors.ErrInvalidMonitor)))
	}
	return chain.Validate()
}

// Seed returns the seed of the run
func (e *Engine) Seed() uint64 {
	return e.seed
}

// Run explores the configured number of iterations. It stops early when the
// strategy is exhausted, when a bug is found with WithStopOnFirstBug, or when
// ctx is canceled. The report is returned along with any error that aborted
// the run.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	s := e.newSession(fmt.Sprintf("%s[seed=%d]", e.strategy, e.seed))
	e.logger.Infof("exploring %d iterations of %s with %s (seed=%d, workers=%d)",
		e.iterations, e.name, e.strategy, e.seed, e.parallelism)

	g, gctx := errgroup.WithContext(ctx)
	for worker := range e.parallelism {
		g.Go(func() error {
			return s.work(gctx, worker)
		})
	}

	err := g.Wait()
	report := s.finish()
	if err != nil {
		e.logger.Errorf("run %s aborted: %v", report.RunID, err)
		return report, err
	}

	e.logger.Infof("run %s explored %d iterations in %s, found %d buggy iterations",
		report.RunID, report.Iterations, report.Elapsed, report.BuggyIterations)
	return report, nil
}

// Replay runs a single iteration that follows the given trace. The bug of the
// recorded iteration, if any, is reproduced in the report.
func (e *Engine) Replay(ctx context.Context, tr *trace.Trace) (*Report, error) {
	if tr == nil {
		return nil, gerrors.NewErrInvalidTrace(fmt.Errorf("trace is required"))
	}

	replay := strategy.NewReplay(tr)
	s := e.newSession(replay.Description())
	result := e.iterate(ctx, replay, s.report.Coverage)
	if result.Err != nil {
		return nil, fmt.Errorf("replay of %d steps failed after %d decisions: %w", tr.Len(), replay.Consumed(), result.Err)
	}

	if err := s.record(ctx, 0, 0, replay, result); err != nil {
		return nil, err
	}
	return s.finish(), nil
}

// iterate runs the test once on a fresh runtime
func (e *Engine) iterate(ctx context.Context, strat strategy.Strategy, coverage *actor.Coverage) *actor.Result {
	opts := []actor.Option{
		actor.WithLogger(e.logger),
		actor.WithMaxSteps(e.maxSteps),
		actor.WithCoverage(coverage),
	}
	if e.stepBoundAsBug {
		opts = append(opts, actor.WithStepBoundAsBug())
	}
	if e.stateHashing {
		opts = append(opts, actor.WithStateHashing())
	}

	rt := actor.NewRuntime(strat, opts...)
	return rt.Execute(ctx, func(rt *actor.Runtime) error {
		for _, def := range e.monitors {
			if err := rt.RegisterMonitor(def); err != nil {
				return err
			}
		}
		return e.test(rt)
	})
}

// session holds the state shared by the workers of a run
type session struct {
	engine  *Engine
	started time.Time
	report  *Report
	mu      sync.Mutex
	states  goset.Set[uint64]
	stopped *atomic.Bool
}

func (e *Engine) newSession(description string) *session {
	return &session{
		engine:  e,
		started: time.Now(),
		report: &Report{
			RunID:    uuid.New(),
			Name:     e.name,
			Strategy: description,
			Seed:     e.seed,
			Bugs:     make([]*BugReport, 0),
			Coverage: actor.NewCoverage(),
		},
		states:  goset.NewSet[uint64](),
		stopped: atomic.NewBool(false),
	}
}

// work explores the iterations assigned to the worker: worker, worker+p, worker+2p...
func (s *session) work(ctx context.Context, worker int) error {
	e := s.engine
	seed := e.seed + uint64(worker)
	strat, err := strategy.New(e.strategy, seed, e.bound)
	if err != nil {
		return err
	}

	for iteration := worker; iteration < e.iterations; iteration += e.parallelism {
		if s.stopped.Load() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if iteration != worker && !strat.PrepareForNextIteration() {
			e.logger.Debugf("worker %d: strategy %s is exhausted", worker, strat.Description())
			return nil
		}

		result := e.iterate(ctx, strat, s.report.Coverage)
		if result.Err != nil {
			return fmt.Errorf("iteration %d: %w", iteration, result.Err)
		}
		if err := s.record(ctx, iteration, seed, strat, result); err != nil {
			return err
		}
	}
	return nil
}

// record accounts for a completed iteration
func (s *session) record(ctx context.Context, iteration int, seed uint64, strat strategy.Strategy, result *actor.Result) error {
	e := s.engine
	bugKind := ""
	var bug *BugReport
	if result.Bug != nil {
		bugKind = result.Bug.Kind.String()
		bug = &BugReport{
			Iteration: iteration,
			Seed:      seed,
			Strategy:  strat.Description(),
			Kind:      result.Bug.Kind,
			KindName:  bugKind,
			Message:   result.Bug.Message,
			Step:      result.Bug.Step,
			Stack:     result.Bug.Stack,
			Trace:     result.Trace,
		}

		if e.store != nil {
			id, err := e.store.Put(ctx, &trace.Record{
				Test:      e.name,
				Kind:      bugKind,
				Message:   bug.Message,
				Strategy:  bug.Strategy,
				Seed:      seed,
				Iteration: iteration,
				Steps:     result.Steps,
				Trace:     result.Trace,
			})
			if err != nil {
				return fmt.Errorf("failed to store the trace of iteration %d: %w", iteration, err)
			}
			bug.RecordID = id
		}

		e.logger.Error(bug.Error())
		if e.stopOnFirstBug {
			s.stopped.Store(true)
		}
	}

	e.metric.RecordIteration(ctx, string(e.strategy), result.Steps, bugKind)
	if len(result.States) > 0 {
		s.states.Append(result.States...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	report := s.report
	report.Iterations++
	report.TotalSteps += result.Steps
	report.MaxSteps = max(report.MaxSteps, result.Steps)
	if result.StepBoundHit {
		report.StepBoundHits++
	}
	if bug != nil {
		report.BuggyIterations++
		report.Bugs = append(report.Bugs, bug)
	}
	return nil
}

func (s *session) finish() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	report := s.report
	slices.SortFunc(report.Bugs, func(a, b *BugReport) int {
		return a.Iteration - b.Iteration
	})
	report.DistinctStates = s.states.Cardinality()
	report.Elapsed = time.Since(s.started)
	return report
}
