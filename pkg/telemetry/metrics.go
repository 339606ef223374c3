// SPDX-License-Identifier: Apache-2.0
// Error and run metrics for production monitoring.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jllopis/argonaut/pkg/errors"
)

// ErrorMetrics tracks error rates, types, and recovery patterns.
type ErrorMetrics struct {
	// errorCounter tracks total errors by code and component
	errorCounter metric.Int64Counter

	// recoveryCounter tracks successful recoveries
	recoveryCounter metric.Int64Counter

	mu sync.RWMutex
}

// NewErrorMetrics creates a new error metrics tracker with OTEL meters.
func NewErrorMetrics(ctx context.Context) (*ErrorMetrics, error) {
	meter := otel.Meter("argonaut/errors")

	errorCounter, err := meter.Int64Counter(
		"argonaut.errors.total",
		metric.WithDescription("Total errors by code and component"),
	)
	if err != nil {
		return nil, err
	}

	recoveryCounter, err := meter.Int64Counter(
		"argonaut.errors.recovered",
		metric.WithDescription("Successful error recoveries by code"),
	)
	if err != nil {
		return nil, err
	}

	return &ErrorMetrics{
		errorCounter:    errorCounter,
		recoveryCounter: recoveryCounter,
	}, nil
}

// RecordErrorMetric increments the error counter for the given error code and component.
func (em *ErrorMetrics) RecordErrorMetric(ctx context.Context, err error, component string) {
	if em == nil || err == nil {
		return
	}

	em.mu.RLock()
	defer em.mu.RUnlock()

	if ae, ok := err.(*errors.ArgonautError); ok {
		em.errorCounter.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("error.code", string(ae.Code)),
				attribute.String("component", component),
				attribute.String("recoverable", ae.RecoverableString()),
			),
		)
	} else {
		em.errorCounter.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("error.code", "UNKNOWN"),
				attribute.String("component", component),
				attribute.String("recoverable", "unknown"),
			),
		)
	}
}

// RecordRecovery increments the recovery counter for the given error code.
// Called when an error is successfully handled (retry succeeded, fallback used).
func (em *ErrorMetrics) RecordRecovery(ctx context.Context, errorCode errors.ErrorCode) {
	if em == nil {
		return
	}

	em.mu.RLock()
	defer em.mu.RUnlock()

	em.recoveryCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error.code", string(errorCode)),
		),
	)
}
