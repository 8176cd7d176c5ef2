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
	"github.com/tochemey/actorcheck/internal/errorschain"
	"github.com/tochemey/actorcheck/tester"
	"github.com/tochemey/actorcheck/trace"
)

// ReplayOptions holds the flags of the replay command
type ReplayOptions struct {
	*RootOptions
	Store     string
	File      string
	Benchmark string
}

// NewReplayCommand creates the replay command
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [record id]",
		Short: "Replay a recorded bug trace",
		Long: `Replay a bug trace, either a record of the trace store or a text trace file,
and report whether the bug reproduces.

Examples:
  actorcheck replay 2f1c1a9e-52f4-4a3e-9b59-6f0d3f6c1b2a --store traces.db
  actorcheck replay --file bug.trace --benchmark raft-forget-vote`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) == 1 {
				id = args[0]
			}
			return runReplay(cmd, opts, id)
		},
	}

	cmd.Flags().StringVar(&opts.Store, "store", "", "path of the bbolt trace store")
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "text trace file")
	cmd.Flags().StringVarP(&opts.Benchmark, "benchmark", "b", "", "benchmark of the text trace file")
	cmd.MarkFlagsMutuallyExclusive("store", "file")

	return cmd
}

func runReplay(cmd *cobra.Command, opts *ReplayOptions, id string) (err error) {
	cfg, err := opts.loadConfig()
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

	var (
		name string
		tr   *trace.Trace
	)
	switch {
	case opts.File != "":
		if opts.Benchmark == "" {
			return errors.New("--benchmark is required with --file")
		}
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return fmt.Errorf("failed to read trace file %s: %w", opts.File, err)
		}
		if tr, err = trace.Parse(string(data)); err != nil {
			return err
		}
		name = opts.Benchmark
	case id != "":
		path := opts.Store
		if path == "" {
			path = cfg.Store
		}
		if path == "" {
			return errors.New("--store is required to replay a record")
		}
		store, err := trace.OpenStore(cmd.Context(), path)
		if err != nil {
			return err
		}
		teardown.AddErrorFn(store.Close)

		record, err := store.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		name, tr = record.Test, record.Trace
	default:
		return errors.New("a record id or a trace file is required")
	}

	benchmark, err := benchmarks.Lookup(name)
	if err != nil {
		return err
	}
	engine, err := tester.New(benchmark.Test, append(benchmark.Options(), tester.WithLogger(logger))...)
	if err != nil {
		return err
	}

	report, err := engine.Replay(cmd.Context(), tr)
	if err != nil {
		return err
	}
	if err := printReport(cmd, opts.Format, report); err != nil {
		return err
	}
	if report.BuggyIterations == 0 {
		return fmt.Errorf("the trace of %s did not reproduce a bug", benchmark.Name)
	}
	return nil
}
