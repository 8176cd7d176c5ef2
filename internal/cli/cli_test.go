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
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	gerrors "github.com/tochemey/actorcheck/errors"
	"github.com/tochemey/actorcheck/tester"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// execute runs the root command with the given arguments and returns its output streams
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	t.Run("With invalid format", func(t *testing.T) {
		_, _, err := execute(t, "list", "--format", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid format")
	})
	t.Run("With help", func(t *testing.T) {
		out, _, err := execute(t, "--help")
		require.NoError(t, err)
		assert.Contains(t, out, "run")
		assert.Contains(t, out, "replay")
		assert.Contains(t, out, "list")
	})
}

func TestListCommand(t *testing.T) {
	t.Run("With text format", func(t *testing.T) {
		out, _, err := execute(t, "list")
		require.NoError(t, err)
		assert.Contains(t, out, "NAME")
		assert.Contains(t, out, "chainreplication")
		assert.Contains(t, out, "raft-forget-vote")
	})
	t.Run("With json format", func(t *testing.T) {
		out, _, err := execute(t, "list", "--format", "json")
		require.NoError(t, err)

		var entries []benchmarkEntry
		require.NoError(t, json.Unmarshal([]byte(out), &entries))
		assert.Len(t, entries, 5)
	})
	t.Run("With empty store", func(t *testing.T) {
		out, _, err := execute(t, "list", "--store", filepath.Join(t.TempDir(), "traces.db"))
		require.NoError(t, err)
		assert.Contains(t, out, "No bugs recorded.")
	})
}

func TestRunCommand(t *testing.T) {
	t.Run("With correct benchmark", func(t *testing.T) {
		out, _, err := execute(t, "run", "pingpong", "--iterations", "10", "--seed", "4")
		require.NoError(t, err)
		assert.Contains(t, out, "iterations: 10, buggy: 0")
		assert.Contains(t, out, "seed=4")
	})
	t.Run("With configuration file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "run.yaml")
		content := "benchmark: chainreplication\niterations: 5\nstrategy: pct\nseed: 3\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		out, _, err := execute(t, "run", "--config", path, "--iterations", "7", "--format", "json")
		require.NoError(t, err)

		report := new(tester.Report)
		require.NoError(t, json.Unmarshal([]byte(out), report))
		assert.Equal(t, "chainreplication", report.Name)
		assert.Equal(t, 7, report.Iterations)
		assert.EqualValues(t, 3, report.Seed)
	})
	t.Run("Without benchmark", func(t *testing.T) {
		_, _, err := execute(t, "run")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "benchmark is required")
	})
	t.Run("With unknown benchmark", func(t *testing.T) {
		_, _, err := execute(t, "run", "paxos")
		assert.ErrorIs(t, err, gerrors.ErrUnknownBenchmark)
	})
	t.Run("With invalid iterations", func(t *testing.T) {
		_, _, err := execute(t, "run", "pingpong", "--iterations", "0")
		assert.ErrorIs(t, err, gerrors.ErrInvalidIterations)
	})
}

func TestBugWorkflow(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "traces.db")
	results := filepath.Join(dir, "report.json")

	_, logs, err := execute(t, "run", "raft-forget-vote",
		"--iterations", "5000",
		"--seed", "1",
		"--stop-on-first-bug",
		"--store", store,
		"--results", results)
	require.ErrorIs(t, err, ErrBugsFound)
	assert.Contains(t, logs, "detected more than one leader")

	data, err := os.ReadFile(results)
	require.NoError(t, err)
	report := new(tester.Report)
	require.NoError(t, json.Unmarshal(data, report))
	require.Len(t, report.Bugs, 1)
	bug := report.Bugs[0]
	require.NotEmpty(t, bug.RecordID)

	t.Run("With listed record", func(t *testing.T) {
		out, _, err := execute(t, "list", "--store", store)
		require.NoError(t, err)
		assert.Contains(t, out, bug.RecordID)
		assert.Contains(t, out, "raft-forget-vote")
	})
	t.Run("With replayed record", func(t *testing.T) {
		out, _, err := execute(t, "replay", bug.RecordID, "--store", store)
		require.NoError(t, err)
		assert.Contains(t, out, "buggy: 1")
	})
	t.Run("With replayed trace file", func(t *testing.T) {
		path := filepath.Join(dir, "bug.trace")
		require.NoError(t, os.WriteFile(path, []byte(bug.Trace.String()), 0o600))

		out, _, err := execute(t, "replay", "--file", path, "--benchmark", "raft-forget-vote", "--format", "json")
		require.NoError(t, err)

		replayed := new(tester.Report)
		require.NoError(t, json.Unmarshal([]byte(out), replayed))
		require.Len(t, replayed.Bugs, 1)
		assert.Equal(t, bug.Message, replayed.Bugs[0].Message)
	})
	t.Run("With replayed trace of a correct benchmark", func(t *testing.T) {
		path := filepath.Join(dir, "empty.trace")
		require.NoError(t, os.WriteFile(path, nil, 0o600))

		_, _, err := execute(t, "replay", "--file", path, "--benchmark", "pingpong")
		require.Error(t, err)
	})
	t.Run("Without record or file", func(t *testing.T) {
		_, _, err := execute(t, "replay")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "record id or a trace file")
	})
}
