// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	metricsOnce   sync.Once
	runCounter    metric.Int64Counter
	errorCounter  metric.Int64Counter
	runLatencyMs  metric.Float64Histogram
	llmLatencyMs  metric.Float64Histogram
	toolLatencyMs metric.Float64Histogram
)

// initMetrics registers the agent run instruments. Instrument creation only
// fails on invalid names, so errors fall back to no-op instruments.
func initMetrics() {
	metricsOnce.Do(func() {
		meter := otel.Meter("argonaut/agent")
		runCounter, _ = meter.Int64Counter(
			"argonaut.agent.runs.total",
			metric.WithDescription("Total agent runs started"),
		)
		errorCounter, _ = meter.Int64Counter(
			"argonaut.agent.errors.total",
			metric.WithDescription("Total agent run failures"),
		)
		runLatencyMs, _ = meter.Float64Histogram(
			"argonaut.agent.run.latency",
			metric.WithDescription("End-to-end agent run latency"),
			metric.WithUnit("ms"),
		)
		llmLatencyMs, _ = meter.Float64Histogram(
			"argonaut.agent.llm.latency",
			metric.WithDescription("LLM chat call latency"),
			metric.WithUnit("ms"),
		)
		toolLatencyMs, _ = meter.Float64Histogram(
			"argonaut.agent.tool.latency",
			metric.WithDescription("Tool call latency"),
			metric.WithUnit("ms"),
		)
	})
}
