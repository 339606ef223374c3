// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry provides OpenTelemetry integration with rich attributes
// for agent observability.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic conventions for Argonaut agent telemetry.
// These follow OpenTelemetry naming conventions where applicable.
const (
	// Agent attributes
	AttrAgentID        = "argonaut.agent.id"
	AttrAgentRunID     = "argonaut.agent.run_id"
	AttrAgentIteration = "argonaut.agent.iteration"
	AttrAgentMaxIter   = "argonaut.agent.max_iterations"

	// Run attributes
	AttrRunStatus = "argonaut.run.status"

	// Tool attributes
	AttrToolName       = "argonaut.tool.name"
	AttrToolCallID     = "argonaut.tool.call_id"
	AttrToolArgs       = "argonaut.tool.arguments"
	AttrToolResult     = "argonaut.tool.result"
	AttrToolDurationMs = "argonaut.tool.duration_ms"
	AttrToolSuccess    = "argonaut.tool.success"

	// ArgoCD API attributes
	AttrAPIMethod = "http.request.method"
	AttrAPIRoute  = "http.route"
	AttrAPIStatus = "http.response.status_code"

	// LLM attributes (extending standard gen_ai conventions)
	AttrLLMModel        = "gen_ai.request.model"
	AttrLLMProvider     = "gen_ai.system"
	AttrLLMMessages     = "gen_ai.request.messages"
	AttrLLMTokensInput  = "gen_ai.usage.input_tokens"
	AttrLLMTokensOutput = "gen_ai.usage.output_tokens"
	AttrLLMTokensTotal  = "gen_ai.usage.total_tokens"
	AttrLLMDurationMs   = "gen_ai.duration_ms"
	AttrLLMToolCalls    = "gen_ai.tool_calls"
)

// AgentAttributes returns common attributes for agent spans.
func AgentAttributes(agentID, runID string, iteration, maxIter int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrAgentID, agentID),
		attribute.String(AttrAgentRunID, runID),
	}
	if iteration > 0 {
		attrs = append(attrs, attribute.Int(AttrAgentIteration, iteration))
	}
	if maxIter > 0 {
		attrs = append(attrs, attribute.Int(AttrAgentMaxIter, maxIter))
	}
	return attrs
}

// ToolCallAttributes returns attributes for a tool call span.
func ToolCallAttributes(name, callID string, durationMs float64, success bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrToolName, name),
		attribute.String(AttrToolCallID, callID),
		attribute.Float64(AttrToolDurationMs, durationMs),
		attribute.Bool(AttrToolSuccess, success),
	}
}

// ToolCallArgsResult returns attributes with tool arguments and result (truncated for safety).
func ToolCallArgsResult(args, result string, maxLen int) []attribute.KeyValue {
	if maxLen <= 0 {
		maxLen = 500
	}
	attrs := []attribute.KeyValue{}
	if args != "" {
		if len(args) > maxLen {
			args = args[:maxLen] + "..."
		}
		attrs = append(attrs, attribute.String(AttrToolArgs, args))
	}
	if result != "" {
		if len(result) > maxLen {
			result = result[:maxLen] + "..."
		}
		attrs = append(attrs, attribute.String(AttrToolResult, result))
	}
	return attrs
}

// APIRequestAttributes returns attributes for ArgoCD API request spans.
func APIRequestAttributes(method, route string, statusCode int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrAPIMethod, method),
		attribute.String(AttrAPIRoute, route),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int(AttrAPIStatus, statusCode))
	}
	return attrs
}

// LLMAttributes returns attributes for LLM call spans.
func LLMAttributes(model, provider string, msgCount int, toolCallCount int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrLLMModel, model),
		attribute.Int(AttrLLMMessages, msgCount),
	}
	if provider != "" {
		attrs = append(attrs, attribute.String(AttrLLMProvider, provider))
	}
	if toolCallCount > 0 {
		attrs = append(attrs, attribute.Int(AttrLLMToolCalls, toolCallCount))
	}
	return attrs
}

// LLMUsageAttributes returns token usage attributes.
func LLMUsageAttributes(inputTokens, outputTokens int, durationMs float64) []attribute.KeyValue {
	attrs := []attribute.KeyValue{}
	if inputTokens > 0 {
		attrs = append(attrs, attribute.Int(AttrLLMTokensInput, inputTokens))
	}
	if outputTokens > 0 {
		attrs = append(attrs, attribute.Int(AttrLLMTokensOutput, outputTokens))
	}
	if inputTokens > 0 || outputTokens > 0 {
		attrs = append(attrs, attribute.Int(AttrLLMTokensTotal, inputTokens+outputTokens))
	}
	if durationMs > 0 {
		attrs = append(attrs, attribute.Float64(AttrLLMDurationMs, durationMs))
	}
	return attrs
}

// RunAttributes returns attributes for workflow run spans.
func RunAttributes(runID, agentID, status string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrAgentRunID, runID),
	}
	if agentID != "" {
		attrs = append(attrs, attribute.String(AttrAgentID, agentID))
	}
	if status != "" {
		attrs = append(attrs, attribute.String(AttrRunStatus, status))
	}
	return attrs
}
