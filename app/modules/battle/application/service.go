package battleservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Round-Table-Club/battleboard-bot/app/eventbus"
	battledb "github.com/Round-Table-Club/battleboard-bot/app/modules/battle/infrastructure/repositories"
	battlemetrics "github.com/Round-Table-Club/battleboard-bot/app/observability/metrics/battle"
)

// BattleService implements the Service interface.
type BattleService struct {
	repo     battledb.Repository
	registry GuildRegistry
	provider StatsProvider
	eventBus eventbus.EventBus
	logger   *slog.Logger
	metrics  battlemetrics.BattleMetrics
	tracer   trace.Tracer
	cfg      Config
}

var _ Service = (*BattleService)(nil)

// NewBattleService creates a new BattleService.
func NewBattleService(
	repo battledb.Repository,
	registry GuildRegistry,
	provider StatsProvider,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	metrics battlemetrics.BattleMetrics,
	tracer trace.Tracer,
	cfg Config,
) *BattleService {
	return &BattleService{
		repo:     repo,
		registry: registry,
		provider: provider,
		eventBus: eventBus,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		cfg:      cfg,
	}
}

// withTelemetry wraps a service operation with tracing, metrics, and panic
// recovery. A recovered panic is reported through the errors callback so
// summaries stay well-formed; no panic escapes a sync invocation.
func (s *BattleService) withTelemetry(
	ctx context.Context,
	operationName string,
	guildID string,
	op func(ctx context.Context),
	onPanic func(),
) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("guild_id", guildID),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, guildID)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, guildID, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("operation", operationName),
				slog.String("guild_id", guildID),
				slog.Any("error", err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, guildID)
			span.RecordError(err)
			if onPanic != nil {
				onPanic()
			}
			return
		}
		s.metrics.RecordOperationSuccess(ctx, operationName, guildID)
	}()

	op(ctx)
}
