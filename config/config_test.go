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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/actorcheck/actor"
	gerrors "github.com/tochemey/actorcheck/errors"
	"github.com/tochemey/actorcheck/log"
	"github.com/tochemey/actorcheck/tester"
)

func TestConfig(t *testing.T) {
	t.Run("With defaults", func(t *testing.T) {
		cfg := Default()
		require.NoError(t, cfg.Validate())
		assert.Equal(t, tester.DefaultIterations, cfg.Iterations)
		assert.Equal(t, "random", cfg.Strategy)
		assert.Nil(t, cfg.Seed)
		assert.Equal(t, log.InfoLevel, cfg.Level())
		assert.Len(t, cfg.Options(), 5)
	})
	t.Run("With file", func(t *testing.T) {
		cfg, err := Load(filepath.Join("testdata", "run.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "chainreplication", cfg.Benchmark)
		assert.Equal(t, 250, cfg.Iterations)
		assert.Equal(t, "PCT", cfg.Strategy)
		require.NotNil(t, cfg.Seed)
		assert.EqualValues(t, 42, *cfg.Seed)
		assert.Equal(t, 3, cfg.PrioritySwitchBound)
		assert.Equal(t, 2000, cfg.MaxSteps)
		assert.Equal(t, 2, cfg.Parallelism)
		assert.True(t, cfg.StopOnFirstBug)
		assert.False(t, cfg.StateHashing)
		assert.Equal(t, "./traces.db", cfg.Store)
		assert.Equal(t, log.DebugLevel, cfg.Level())
		// defaults plus seed and stop on first bug
		assert.Len(t, cfg.Options(), 7)

		engine, err := tester.New(func(*actor.Runtime) error { return nil }, append(cfg.Options(), tester.WithLogger(log.DiscardLogger))...)
		require.NoError(t, err)
		assert.EqualValues(t, 42, engine.Seed())
	})
	t.Run("With partial file", func(t *testing.T) {
		cfg, err := Parse([]byte("iterations: 10\n"))
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.Iterations)
		assert.Equal(t, tester.DefaultMaxSteps, cfg.MaxSteps)
	})
	t.Run("With empty file", func(t *testing.T) {
		cfg, err := Parse(nil)
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})
	t.Run("With unknown key", func(t *testing.T) {
		_, err := Parse([]byte("iteration: 10\n"))
		assert.Error(t, err)
	})
	t.Run("With invalid values", func(t *testing.T) {
		_, err := Parse([]byte("iterations: 0\nparallelism: 0\nstrategy: dfs\nlog_level: loud\n"))
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrInvalidIterations)
		assert.ErrorIs(t, err, gerrors.ErrInvalidParallelism)
		assert.ErrorIs(t, err, gerrors.ErrInvalidStrategy)
		assert.Contains(t, err.Error(), "log_level")
	})
	t.Run("With missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("With round trip", func(t *testing.T) {
		seed := uint64(9)
		cfg := Default()
		cfg.Seed = &seed
		cfg.Benchmark = "raft"

		data, err := cfg.Marshal()
		require.NoError(t, err)
		parsed, err := Parse(data)
		require.NoError(t, err)
		assert.Equal(t, cfg, parsed)
	})
}
