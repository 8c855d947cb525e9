package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/Round-Table-Club/battleboard-bot/app/eventbus"
	"github.com/Round-Table-Club/battleboard-bot/app/modules/battle"
	battleservice "github.com/Round-Table-Club/battleboard-bot/app/modules/battle/application"
	"github.com/Round-Table-Club/battleboard-bot/app/modules/battle/infrastructure/killboard"
	battlequeue "github.com/Round-Table-Club/battleboard-bot/app/modules/battle/infrastructure/queue"
	"github.com/Round-Table-Club/battleboard-bot/app/modules/guild"
	"github.com/Round-Table-Club/battleboard-bot/app/observability"
	battlemetrics "github.com/Round-Table-Club/battleboard-bot/app/observability/metrics/battle"
	guildmetrics "github.com/Round-Table-Club/battleboard-bot/app/observability/metrics/guild"
	"github.com/Round-Table-Club/battleboard-bot/config"
	"github.com/Round-Table-Club/battleboard-bot/db/bundb"
)

// App wires the modules, database, event bus, and queue into one unit.
type App struct {
	Cfg          *config.Config
	Obs          *observability.Observability
	BattleModule *battle.Module
	GuildModule  *guild.Module
	Queue        *battlequeue.Service

	db  *bundb.DBService
	bus eventbus.EventBus
}

// NewApp initializes the application with the necessary services and configuration.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	obs, err := observability.New(cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Logger

	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}

	bus, err := eventbus.NewJetStreamEventBus(cfg.NATS.URL, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}

	guildMetrics, err := guildmetrics.NewOTelMetrics(obs.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize guild metrics: %w", err)
	}
	battleMetrics, err := battlemetrics.NewOTelMetrics(obs.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize battle metrics: %w", err)
	}

	guildModule := guild.NewModule(dbService.GetDB(), logger, guildMetrics, obs.Tracer)

	provider := killboard.NewClient(cfg.Killboard, logger)
	battleModule := battle.NewModule(
		dbService.GetDB(),
		guildModule.Repo,
		provider,
		bus,
		logger,
		battleMetrics,
		obs.Tracer,
		serviceConfig(cfg.Sync),
	)

	queueService, err := battlequeue.NewService(
		ctx,
		logger,
		cfg.Postgres.DSN,
		battleModule.Service,
		cfg.Sync.SyncInterval,
		cfg.Sync.ReconcileInterval,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize queue service: %w", err)
	}

	return &App{
		Cfg:          cfg,
		Obs:          obs,
		BattleModule: battleModule,
		GuildModule:  guildModule,
		Queue:        queueService,
		db:           dbService,
		bus:          bus,
	}, nil
}

// DB returns the database service.
func (app *App) DB() *bundb.DBService {
	return app.db
}

// Close shuts the application down in reverse dependency order.
func (app *App) Close(ctx context.Context) {
	logger := app.Obs.Logger

	if err := app.Queue.Stop(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to stop queue service", slog.Any("error", err))
	}
	if err := app.bus.Close(); err != nil {
		logger.ErrorContext(ctx, "Failed to close event bus", slog.Any("error", err))
	}
	if err := app.db.GetDB().Close(); err != nil {
		logger.ErrorContext(ctx, "Failed to close database connection", slog.Any("error", err))
	}
	if err := app.Obs.Close(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to shut down metrics provider", slog.Any("error", err))
	}
}

func serviceConfig(sc config.SyncConfig) battleservice.Config {
	return battleservice.Config{
		StrictWindow:          sc.StrictWindow,
		LooseWindow:           sc.LooseWindow,
		StrictThreshold:       sc.StrictThreshold,
		LooseThreshold:        sc.LooseThreshold,
		MinOverlap:            sc.MinOverlap,
		MaxPlayerDiff:         sc.MaxPlayerDiff,
		MinTrackedPlayers:     sc.MinTrackedPlayers,
		SignificanceThreshold: sc.SignificanceThreshold,
		LookbackDays:          sc.LookbackDays,
	}
}
