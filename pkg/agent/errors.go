// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"sync"

	"github.com/jllopis/argonaut/pkg/errors"
	"github.com/jllopis/argonaut/pkg/telemetry"
)

// ErrorMetricsIntegration wraps telemetry.ErrorMetrics for agent components.
type ErrorMetricsIntegration struct {
	metrics *telemetry.ErrorMetrics
	enabled bool
}

var (
	globalErrorMetrics     *ErrorMetricsIntegration
	globalErrorMetricsOnce sync.Once
)

// InitErrorMetrics initializes the global error metrics for agents.
// This should be called once during application startup.
// Returns disabled metrics if initialization fails (graceful degradation).
func InitErrorMetrics(ctx context.Context) *ErrorMetricsIntegration {
	globalErrorMetricsOnce.Do(func() {
		metrics, err := telemetry.NewErrorMetrics(ctx)
		if err != nil {
			globalErrorMetrics = &ErrorMetricsIntegration{enabled: false}
			return
		}
		globalErrorMetrics = &ErrorMetricsIntegration{
			metrics: metrics,
			enabled: true,
		}
	})
	return globalErrorMetrics
}

// GetErrorMetrics returns the global error metrics integration.
// Returns nil if not initialized.
func GetErrorMetrics() *ErrorMetricsIntegration {
	return globalErrorMetrics
}

// RecordError records an error metric with the appropriate error code and component.
func (e *ErrorMetricsIntegration) RecordError(ctx context.Context, err error, component string) {
	if e == nil || !e.enabled || e.metrics == nil {
		return
	}
	e.metrics.RecordErrorMetric(ctx, err, component)
}

// RecordRecovery records a successful recovery for the given error code.
func (e *ErrorMetricsIntegration) RecordRecovery(ctx context.Context, code errors.ErrorCode) {
	if e == nil || !e.enabled || e.metrics == nil {
		return
	}
	e.metrics.RecordRecovery(ctx, code)
}

// WrapLLMError wraps an LLM provider error with appropriate context.
func WrapLLMError(err error, model string) *errors.ArgonautError {
	if err == nil {
		return nil
	}
	return errors.New(errors.CodeLLMError, "LLM call failed", err).
		WithContext("model", model).
		WithAttribute("llm.model", model).
		WithRecoverable(true)
}

// WrapToolError wraps a tool execution error with appropriate context.
func WrapToolError(err error, toolName, toolCallID string) *errors.ArgonautError {
	if err == nil {
		return nil
	}
	return errors.New(errors.CodeToolFailure, "tool execution failed", err).
		WithContext("tool_name", toolName).
		WithContext("tool_call_id", toolCallID).
		WithAttribute("tool.name", toolName).
		WithRecoverable(true)
}

// WrapTimeoutError wraps an iteration budget overrun with appropriate context.
func WrapTimeoutError(err error, operation string, maxIterations int) *errors.ArgonautError {
	if err == nil {
		return nil
	}
	return errors.New(errors.CodeTimeout, "operation exceeded max iterations", err).
		WithContext("operation", operation).
		WithContext("max_iterations", maxIterations).
		WithRecoverable(false)
}
