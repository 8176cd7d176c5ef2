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

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	strategyKey = attribute.Key("strategy")
	bugKindKey  = attribute.Key("bug.kind")
)

// EngineMetric defines the instruments of the testing engine
type EngineMetric struct {
	iterationsCount metric.Int64Counter
	bugsCount       metric.Int64Counter
	stepsCount      metric.Int64Counter
}

// NewEngineMetric creates the testing engine instruments
func NewEngineMetric(meter metric.Meter) (*EngineMetric, error) {
	var instruments EngineMetric
	var err error

	if instruments.iterationsCount, err = meter.Int64Counter(
		"actorcheck.iterations.count",
		metric.WithDescription("Total number of explored iterations"),
	); err != nil {
		return nil, err
	}

	if instruments.bugsCount, err = meter.Int64Counter(
		"actorcheck.bugs.count",
		metric.WithDescription("Total number of iterations that found a bug"),
	); err != nil {
		return nil, err
	}

	if instruments.stepsCount, err = meter.Int64Counter(
		"actorcheck.steps.count",
		metric.WithDescription("Total number of scheduling and nondeterministic decisions"),
	); err != nil {
		return nil, err
	}

	return &instruments, nil
}

// RecordIteration records one explored iteration. bugKind is empty when the iteration passed.
func (x *EngineMetric) RecordIteration(ctx context.Context, strategy string, steps int, bugKind string) {
	attrs := metric.WithAttributes(strategyKey.String(strategy))
	x.iterationsCount.Add(ctx, 1, attrs)
	x.stepsCount.Add(ctx, int64(steps), attrs)
	if bugKind != "" {
		x.bugsCount.Add(ctx, 1, metric.WithAttributes(strategyKey.String(strategy), bugKindKey.String(bugKind)))
	}
}

// IterationsCount returns the iterations counter
func (x *EngineMetric) IterationsCount() metric.Int64Counter {
	return x.iterationsCount
}

// BugsCount returns the bugs counter
func (x *EngineMetric) BugsCount() metric.Int64Counter {
	return x.bugsCount
}

// StepsCount returns the steps counter
func (x *EngineMetric) StepsCount() metric.Int64Counter {
	return x.stepsCount
}
