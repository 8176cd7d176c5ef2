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

package metric

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestNewEngineMetric(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	engineMetric, err := NewEngineMetric(meter)
	require.NoError(t, err)
	assert.NotNil(t, engineMetric)
	assert.NotNil(t, engineMetric.IterationsCount())
	assert.NotNil(t, engineMetric.BugsCount())
	assert.NotNil(t, engineMetric.StepsCount())
}

func TestRecordIteration(t *testing.T) {
	meter := &countingMeter{Meter: noop.NewMeterProvider().Meter("test"), totals: make(map[string]int64)}
	engineMetric, err := NewEngineMetric(meter)
	require.NoError(t, err)

	ctx := context.Background()
	engineMetric.RecordIteration(ctx, "random", 12, "")
	engineMetric.RecordIteration(ctx, "random", 8, "assertion")

	assert.EqualValues(t, 2, meter.totals["actorcheck.iterations.count"])
	assert.EqualValues(t, 20, meter.totals["actorcheck.steps.count"])
	assert.EqualValues(t, 1, meter.totals["actorcheck.bugs.count"])
}

// countingMeter sums what is added to its Int64 counters
type countingMeter struct {
	metric.Meter
	totals map[string]int64
}

func (m *countingMeter) Int64Counter(name string, _ ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	return &countingCounter{name: name, totals: m.totals}, nil
}

type countingCounter struct {
	noop.Int64Counter
	name   string
	totals map[string]int64
}

func (c *countingCounter) Add(_ context.Context, incr int64, _ ...metric.AddOption) {
	c.totals[c.name] += incr
}
