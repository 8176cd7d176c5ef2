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

package trace

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/actorcheck/errors"
)

func sampleTrace() *Trace {
	t := New()
	t.AddScheduling(1)
	t.AddScheduling(2)
	t.AddBoolean(true)
	t.AddInteger(4)
	t.AddScheduling(1)
	return t
}

func TestTrace(t *testing.T) {
	t.Run("With recorded steps", func(t *testing.T) {
		tr := sampleTrace()
		require.Equal(t, 5, tr.Len())

		step, ok := tr.Step(2)
		require.True(t, ok)
		assert.Equal(t, BooleanStep, step.Kind)
		assert.True(t, step.Bool)

		_, ok = tr.Step(5)
		assert.False(t, ok)
		_, ok = tr.Step(-1)
		assert.False(t, ok)
	})
	t.Run("With clone", func(t *testing.T) {
		tr := sampleTrace()
		clone := tr.Clone()
		require.True(t, tr.Equal(clone))
		clone.AddScheduling(3)
		assert.False(t, tr.Equal(clone))
		assert.Equal(t, 5, tr.Len())
	})
	t.Run("With steps copy", func(t *testing.T) {
		tr := sampleTrace()
		steps := tr.Steps()
		steps[0].Operation = 42
		first, _ := tr.Step(0)
		assert.EqualValues(t, 1, first.Operation)
	})
	t.Run("With nil trace", func(t *testing.T) {
		var tr *Trace
		assert.Zero(t, tr.Len())
		assert.Nil(t, tr.Steps())
		assert.Zero(t, tr.Clone().Len())
	})
}

func TestTraceText(t *testing.T) {
	t.Run("With golden rendering", func(t *testing.T) {
		g := goldie.New(t,
			goldie.WithFixtureDir("testdata/golden"),
			goldie.WithNameSuffix(".golden"))
		g.Assert(t, "trace_text", []byte(sampleTrace().String()))
	})
	t.Run("With parse round trip", func(t *testing.T) {
		tr := sampleTrace()
		parsed, err := Parse("# replay of iteration 7\n\n" + tr.String())
		require.NoError(t, err)
		assert.True(t, tr.Equal(parsed))
	})
	t.Run("With invalid lines", func(t *testing.T) {
		for _, text := range []string{"op1", "op:x", "bool:maybe", "int:1.5", "task:3"} {
			_, err := Parse(text)
			require.Error(t, err, text)
			assert.ErrorIs(t, err, gerrors.ErrInvalidTrace)
		}
	})
}

func TestTraceJSON(t *testing.T) {
	tr := sampleTrace()
	raw, err := json.Marshal(tr)
	require.NoError(t, err)

	actual := New()
	require.NoError(t, json.Unmarshal(raw, actual))
	assert.True(t, tr.Equal(actual))

	err = json.Unmarshal([]byte(`{"kind":1}`), actual)
	assert.ErrorIs(t, err, gerrors.ErrInvalidTrace)
}

func TestCodec(t *testing.T) {
	tr := New()
	for i := range 500 {
		tr.AddScheduling(uint64(i % 7))
		tr.AddInteger(i)
	}

	data, err := Encode(tr)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, tr.Equal(decoded))

	_, err = Decode([]byte("not zstd"))
	assert.ErrorIs(t, err, gerrors.ErrInvalidTrace)
}
