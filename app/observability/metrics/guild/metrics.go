package guildmetrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// GuildMetrics records operational metrics for the guild module.
type GuildMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, guildID string)
	RecordOperationSuccess(ctx context.Context, operation, guildID string)
	RecordOperationFailure(ctx context.Context, operation, guildID string)
	RecordOperationDuration(ctx context.Context, operation, guildID string, duration time.Duration)
}

// OTelMetrics implements GuildMetrics on an OpenTelemetry meter.
type OTelMetrics struct {
	attempts  metric.Int64Counter
	successes metric.Int64Counter
	failures  metric.Int64Counter
	duration  metric.Float64Histogram
}

var _ GuildMetrics = (*OTelMetrics)(nil)

// NewOTelMetrics creates guild metrics instruments on the given meter.
func NewOTelMetrics(meter metric.Meter) (*OTelMetrics, error) {
	m := &OTelMetrics{}
	var err error

	if m.attempts, err = meter.Int64Counter("guild_operation_attempts_total"); err != nil {
		return nil, fmt.Errorf("failed to create attempts counter: %w", err)
	}
	if m.successes, err = meter.Int64Counter("guild_operation_successes_total"); err != nil {
		return nil, fmt.Errorf("failed to create successes counter: %w", err)
	}
	if m.failures, err = meter.Int64Counter("guild_operation_failures_total"); err != nil {
		return nil, fmt.Errorf("failed to create failures counter: %w", err)
	}
	if m.duration, err = meter.Float64Histogram("guild_operation_duration_seconds"); err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}
	return m, nil
}

func attrs(operation, guildID string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("guild_id", guildID),
	)
}

func (m *OTelMetrics) RecordOperationAttempt(ctx context.Context, operation, guildID string) {
	m.attempts.Add(ctx, 1, attrs(operation, guildID))
}

func (m *OTelMetrics) RecordOperationSuccess(ctx context.Context, operation, guildID string) {
	m.successes.Add(ctx, 1, attrs(operation, guildID))
}

func (m *OTelMetrics) RecordOperationFailure(ctx context.Context, operation, guildID string) {
	m.failures.Add(ctx, 1, attrs(operation, guildID))
}

func (m *OTelMetrics) RecordOperationDuration(ctx context.Context, operation, guildID string, duration time.Duration) {
	m.duration.Record(ctx, duration.Seconds(), attrs(operation, guildID))
}

// NoOpMetrics is a GuildMetrics implementation for tests.
type NoOpMetrics struct{}

var _ GuildMetrics = (*NoOpMetrics)(nil)

func (*NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                  {}
func (*NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
