package battlemetrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BattleMetrics records operational metrics for the battle module.
type BattleMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, guildID string)
	RecordOperationSuccess(ctx context.Context, operation, guildID string)
	RecordOperationFailure(ctx context.Context, operation, guildID string)
	RecordOperationDuration(ctx context.Context, operation, guildID string, duration time.Duration)
	RecordBattlesRegistered(ctx context.Context, guildID string, count int)
	RecordSyncErrors(ctx context.Context, guildID string, count int)
	RecordPagesFetched(ctx context.Context, guildID string, count int)
}

// OTelMetrics implements BattleMetrics on an OpenTelemetry meter.
type OTelMetrics struct {
	attempts    metric.Int64Counter
	successes   metric.Int64Counter
	failures    metric.Int64Counter
	duration    metric.Float64Histogram
	registered  metric.Int64Counter
	syncErrors  metric.Int64Counter
	pagesWalked metric.Int64Counter
}

var _ BattleMetrics = (*OTelMetrics)(nil)

// NewOTelMetrics creates battle metrics instruments on the given meter.
func NewOTelMetrics(meter metric.Meter) (*OTelMetrics, error) {
	m := &OTelMetrics{}
	var err error

	if m.attempts, err = meter.Int64Counter("battle_operation_attempts_total"); err != nil {
		return nil, fmt.Errorf("failed to create attempts counter: %w", err)
	}
	if m.successes, err = meter.Int64Counter("battle_operation_successes_total"); err != nil {
		return nil, fmt.Errorf("failed to create successes counter: %w", err)
	}
	if m.failures, err = meter.Int64Counter("battle_operation_failures_total"); err != nil {
		return nil, fmt.Errorf("failed to create failures counter: %w", err)
	}
	if m.duration, err = meter.Float64Histogram("battle_operation_duration_seconds"); err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}
	if m.registered, err = meter.Int64Counter("battle_battles_registered_total"); err != nil {
		return nil, fmt.Errorf("failed to create registered counter: %w", err)
	}
	if m.syncErrors, err = meter.Int64Counter("battle_sync_errors_total"); err != nil {
		return nil, fmt.Errorf("failed to create sync errors counter: %w", err)
	}
	if m.pagesWalked, err = meter.Int64Counter("battle_feed_pages_fetched_total"); err != nil {
		return nil, fmt.Errorf("failed to create pages counter: %w", err)
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

func (m *OTelMetrics) RecordBattlesRegistered(ctx context.Context, guildID string, count int) {
	m.registered.Add(ctx, int64(count), metric.WithAttributes(attribute.String("guild_id", guildID)))
}

func (m *OTelMetrics) RecordSyncErrors(ctx context.Context, guildID string, count int) {
	m.syncErrors.Add(ctx, int64(count), metric.WithAttributes(attribute.String("guild_id", guildID)))
}

func (m *OTelMetrics) RecordPagesFetched(ctx context.Context, guildID string, count int) {
	m.pagesWalked.Add(ctx, int64(count), metric.WithAttributes(attribute.String("guild_id", guildID)))
}

// NoOpMetrics is a BattleMetrics implementation for tests.
type NoOpMetrics struct{}

var _ BattleMetrics = (*NoOpMetrics)(nil)

func (*NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                {}
func (*NoOpMetrics) RecordOperationSuccess(context.Context, string, string)               {}
func (*NoOpMetrics) RecordOperationFailure(context.Context, string, string)               {}
func (*NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {
}
func (*NoOpMetrics) RecordBattlesRegistered(context.Context, string, int) {}
func (*NoOpMetrics) RecordSyncErrors(context.Context, string, int)        {}
func (*NoOpMetrics) RecordPagesFetched(context.Context, string, int)      {}
