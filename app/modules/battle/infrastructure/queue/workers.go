package battlequeue

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"

	battleservice "github.com/Round-Table-Club/battleboard-bot/app/modules/battle/application"
)

// BattleSyncWorker runs the rolling sync when a BattleSyncJob fires.
type BattleSyncWorker struct {
	river.WorkerDefaults[BattleSyncJob]
	logger  *slog.Logger
	service battleservice.Service
}

// NewBattleSyncWorker creates a worker bound to the battle service.
func NewBattleSyncWorker(logger *slog.Logger, service battleservice.Service) *BattleSyncWorker {
	return &BattleSyncWorker{logger: logger, service: service}
}

func (w *BattleSyncWorker) Work(ctx context.Context, job *river.Job[BattleSyncJob]) error {
	summary := w.service.SyncBattles(ctx, battleservice.SyncOptions{Mode: battleservice.SyncModeSinceLatest})
	w.logger.InfoContext(ctx, "Scheduled battle sync finished",
		slog.Int("guilds_processed", summary.GuildsProcessed),
		slog.Int("battles_found", summary.BattlesFound),
		slog.Int("battles_registered", summary.BattlesRegistered),
		slog.Int("errors", summary.Errors),
	)
	// The summary is always well-formed; per-guild errors are contained and
	// counted, so the job itself never retries.
	return nil
}

// ReconcileWorker runs the pending-battle reconciliation when a ReconcileJob
// fires.
type ReconcileWorker struct {
	river.WorkerDefaults[ReconcileJob]
	logger  *slog.Logger
	service battleservice.Service
}

// NewReconcileWorker creates a worker bound to the battle service.
func NewReconcileWorker(logger *slog.Logger, service battleservice.Service) *ReconcileWorker {
	return &ReconcileWorker{logger: logger, service: service}
}

func (w *ReconcileWorker) Work(ctx context.Context, job *river.Job[ReconcileJob]) error {
	summary := w.service.ReconcilePending(ctx)
	w.logger.InfoContext(ctx, "Scheduled reconciliation finished",
		slog.Int("pending", summary.Pending),
		slog.Int("resolved", summary.Resolved),
		slog.Int("marked_stale", summary.MarkedStale),
		slog.Int("errors", summary.Errors),
	)
	return nil
}
