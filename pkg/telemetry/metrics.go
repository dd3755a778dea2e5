// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jllopis/surveyshell/pkg/errors"
)

// MeterName is the instrumentation scope used for shell metrics.
const MeterName = "surveyshell"

// ShellMetrics counts bootstrap attempts, subscriber failures and validated
// documents. A nil *ShellMetrics is valid and records nothing.
type ShellMetrics struct {
	attempts  metric.Int64Counter
	failures  metric.Int64Counter
	callbacks metric.Int64Counter
	documents metric.Int64Counter
}

// NewShellMetrics creates the shell counters on mp. A nil provider uses the
// global meter provider.
func NewShellMetrics(mp metric.MeterProvider) (*ShellMetrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(MeterName)

	attempts, err := meter.Int64Counter(
		"surveyshell.bootstrap.attempts",
		metric.WithDescription("Bootstrap attempts by outcome"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"surveyshell.bootstrap.failures",
		metric.WithDescription("Failed bootstrap attempts by error code"),
	)
	if err != nil {
		return nil, err
	}

	callbacks, err := meter.Int64Counter(
		"surveyshell.callbacks.failed",
		metric.WithDescription("Readiness subscribers that failed during a flush"),
	)
	if err != nil {
		return nil, err
	}

	documents, err := meter.Int64Counter(
		"surveyshell.includes.documents",
		metric.WithDescription("Documents checked by the include validator, by outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &ShellMetrics{
		attempts:  attempts,
		failures:  failures,
		callbacks: callbacks,
		documents: documents,
	}, nil
}

// RecordBootstrapAttempt counts one bootstrap attempt.
func (m *ShellMetrics) RecordBootstrapAttempt(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	m.attempts.Add(ctx, 1, metric.WithAttributes(attribute.Bool(AttrBootstrapSuccess, success)))
}

// RecordBootstrapFailure counts a failed attempt, classified by its error code.
func (m *ShellMetrics) RecordBootstrapFailure(ctx context.Context, err error) {
	if m == nil || err == nil {
		return
	}
	se := errors.AsShellError(err)
	m.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrErrorCode, string(se.Code)),
		attribute.String(AttrErrorRecoverable, se.RecoverableString()),
	))
}

// RecordCallbackFailures counts subscribers that failed in one flush.
func (m *ShellMetrics) RecordCallbackFailures(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.callbacks.Add(ctx, int64(n))
}

// RecordDocuments counts validated documents.
func (m *ShellMetrics) RecordDocuments(ctx context.Context, valid, invalid int) {
	if m == nil {
		return
	}
	if valid > 0 {
		m.documents.Add(ctx, int64(valid), metric.WithAttributes(attribute.Bool(AttrIncludesValid, true)))
	}
	if invalid > 0 {
		m.documents.Add(ctx, int64(invalid), metric.WithAttributes(attribute.Bool(AttrIncludesValid, false)))
	}
}
