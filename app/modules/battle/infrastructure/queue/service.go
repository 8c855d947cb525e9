package battlequeue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	battleservice "github.com/Round-Table-Club/battleboard-bot/app/modules/battle/application"
)

// QueueService schedules the periodic battle sync and reconciliation jobs.
type QueueService interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Service runs the battle module's periodic jobs using River.
type Service struct {
	client *river.Client[pgx.Tx]
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ QueueService = (*Service)(nil)

// NewService creates a River-based queue service with periodic sync and
// reconcile jobs. River requires its own pgx pool, separate from bun.
func NewService(
	ctx context.Context,
	logger *slog.Logger,
	dsn string,
	service battleservice.Service,
	syncInterval time.Duration,
	reconcileInterval time.Duration,
) (*Service, error) {
	ctxLogger := logger.With(
		slog.String("component", "river_queue"),
	)

	ctxLogger.Info("Initializing battle queue service")

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewBattleSyncWorker(ctxLogger, service))
	river.AddWorker(workers, NewReconcileWorker(ctxLogger, service))

	periodicJobs := []*river.PeriodicJob{
		river.NewPeriodicJob(
			river.PeriodicInterval(syncInterval),
			func() (river.JobArgs, *river.InsertOpts) {
				return BattleSyncJob{}, &river.InsertOpts{
					Queue:      "battle",
					UniqueOpts: river.UniqueOpts{ByArgs: true},
				}
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
		river.NewPeriodicJob(
			river.PeriodicInterval(reconcileInterval),
			func() (river.JobArgs, *river.InsertOpts) {
				return ReconcileJob{}, &river.InsertOpts{
					Queue:      "battle",
					UniqueOpts: river.UniqueOpts{ByArgs: true},
				}
			},
			nil,
		),
	}

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
			// One worker: syncs are sequential by design to respect the
			// killboard's rate limits.
			"battle": {MaxWorkers: 1},
		},
		Workers:      workers,
		PeriodicJobs: periodicJobs,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	return &Service{
		client: riverClient,
		pool:   pool,
		logger: ctxLogger,
	}, nil
}

// Start starts the River queue service.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting battle queue service")
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start River client: %w", err)
	}
	return nil
}

// Stop stops the River queue service and closes its pool.
func (s *Service) Stop(ctx context.Context) error {
	s.logger.Info("Stopping battle queue service")
	if err := s.client.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.pool.Close()
	return nil
}
