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

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tochemey/actorcheck/benchmarks"
	"github.com/tochemey/actorcheck/config"
	"github.com/tochemey/actorcheck/internal/errorschain"
	"github.com/tochemey/actorcheck/tester"
	"github.com/tochemey/actorcheck/trace"
)

// ErrBugsFound is returned by the run command when at least one iteration is buggy
var ErrBugsFound = errors.New("bugs found")

// RunOptions holds the flags of the run command.
// Flags left unset keep the value of the configuration file.
type RunOptions struct {
	*RootOptions
	Benchmark           string
	Iterations          int
	Strategy            string
	Seed                uint64
	PrioritySwitchBound int
	MaxSteps            int
	StepBoundAsBug      bool
	Parallelism         int
	StopOnFirstBug      bool
	StateHashing        bool
	Store               string
	Results             string
}

// NewRunCommand creates the run command
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [benchmark]",
		Short: "Test a benchmark under the controlled scheduler",
		Long: `Run a benchmark for a number of iterations, each one exploring a schedule
chosen by the strategy. Bugs are reported with their replayable trace and,
with --store, persisted for the replay command.

Examples:
  actorcheck run raft --iterations 1000 --strategy pct --seed 7
  actorcheck run --config run.yaml --results report.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Benchmark = args[0]
			}
			return runBenchmark(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Benchmark, "benchmark", "b", "", "benchmark to run")
	flags.IntVarP(&opts.Iterations, "iterations", "i", tester.DefaultIterations, "number of iterations")
	flags.StringVarP(&opts.Strategy, "strategy", "s", "random", "scheduling strategy (random|pct|novelty)")
	flags.Uint64Var(&opts.Seed, "seed", 0, "seed of the first worker, time based when unset")
	flags.IntVar(&opts.PrioritySwitchBound, "priority-switch-bound", tester.DefaultPrioritySwitchBound, "priority switch points of the pct strategy")
	flags.IntVar(&opts.MaxSteps, "max-steps", tester.DefaultMaxSteps, "scheduling steps per iteration, 0 for unbounded")
	flags.BoolVar(&opts.StepBoundAsBug, "step-bound-as-bug", false, "report iterations reaching the step bound as liveness bugs")
	flags.IntVarP(&opts.Parallelism, "parallel", "p", 1, "number of parallel workers")
	flags.BoolVar(&opts.StopOnFirstBug, "stop-on-first-bug", false, "stop at the first buggy iteration")
	flags.BoolVar(&opts.StateHashing, "state-hashing", false, "count the distinct program states")
	flags.StringVar(&opts.Store, "store", "", "path of the bbolt trace store")
	flags.StringVarP(&opts.Results, "results", "o", "", "write the JSON report to this file")

	return cmd
}

// apply overrides the configuration with the flags set on the command line
func (o *RunOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if o.Benchmark != "" {
		cfg.Benchmark = o.Benchmark
	}
	if flags.Changed("iterations") {
		cfg.Iterations = o.Iterations
	}
	if flags.Changed("strategy") {
		cfg.Strategy = o.Strategy
	}
	if flags.Changed("seed") {
		seed := o.Seed
		cfg.Seed = &seed
	}
	if flags.Changed("priority-switch-bound") {
		cfg.PrioritySwitchBound = o.PrioritySwitchBound
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = o.MaxSteps
	}
	if flags.Changed("parallel") {
		cfg.Parallelism = o.Parallelism
	}
	if flags.Changed("store") {
		cfg.Store = o.Store
	}
	cfg.StepBoundAsBug = cfg.StepBoundAsBug || o.StepBoundAsBug
	cfg.StopOnFirstBug = cfg.StopOnFirstBug || o.StopOnFirstBug
	cfg.StateHashing = cfg.StateHashing || o.StateHashing

	if cfg.Benchmark == "" {
		return errors.New("a benchmark is required, see the list command")
	}
	return cfg.Validate()
}

func runBenchmark(cmd *cobra.Command, opts *RunOptions) (err error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if err := opts.apply(cmd, cfg); err != nil {
		return err
	}

	benchmark, err := benchmarks.Lookup(cfg.Benchmark)
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	teardown := errorschain.New(errorschain.ReturnAll()).AddErrorFn(logger.Flush)
	defer func() {
		err = errors.Join(err, teardown.Error())
	}()

	engineOpts := append(cfg.Options(), benchmark.Options()...)
	engineOpts = append(engineOpts, tester.WithLogger(logger))
	if cfg.Store != "" {
		store, err := trace.OpenStore(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		teardown.AddErrorFn(store.Close)
		engineOpts = append(engineOpts, tester.WithTraceStore(store))
	}

	engine, err := tester.New(benchmark.Test, engineOpts...)
	if err != nil {
		return err
	}

	report, err := engine.Run(cmd.Context())
	if err != nil {
		return err
	}

	if opts.Results != "" {
		if err := writeResults(opts.Results, report); err != nil {
			return err
		}
	}

	if err := printReport(cmd, opts.Format, report); err != nil {
		return err
	}
	if report.BuggyIterations > 0 {
		return fmt.Errorf("%s: %d buggy iterations out of %d: %w", benchmark.Name, report.BuggyIterations, report.Iterations, ErrBugsFound)
	}
	return nil
}

func writeResults(path string, report *tester.Report) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file %s: %w", path, err)
	}
	return errorschain.New(errorschain.ReturnAll()).
		AddErrorFn(func() error { return writeJSON(file, report) }).
		AddErrorFn(file.Close).
		Error()
}

func printReport(cmd *cobra.Command, format string, report *tester.Report) error {
	if format == jsonFormat {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	_, err := fmt.Fprint(cmd.OutOrStdout(), report.String())
	return err
}
