package battle

import (
	"context"
	"log/slog"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"

	"github.com/Round-Table-Club/battleboard-bot/app/eventbus"
	battleservice "github.com/Round-Table-Club/battleboard-bot/app/modules/battle/application"
	battledb "github.com/Round-Table-Club/battleboard-bot/app/modules/battle/infrastructure/repositories"
	guilddb "github.com/Round-Table-Club/battleboard-bot/app/modules/guild/infrastructure/repositories"
	battlemetrics "github.com/Round-Table-Club/battleboard-bot/app/observability/metrics/battle"
)

// Module wires the battle module's service and repository.
type Module struct {
	Service battleservice.Service
	Repo    battledb.Repository
}

// NewModule constructs the battle module on top of the shared database
// connection and the guild module's repository (the tracked-guild registry).
func NewModule(
	db *bun.DB,
	guildRepo guilddb.Repository,
	provider battleservice.StatsProvider,
	bus eventbus.EventBus,
	logger *slog.Logger,
	metrics battlemetrics.BattleMetrics,
	tracer trace.Tracer,
	cfg battleservice.Config,
) *Module {
	repo := &battledb.BattleDBImpl{DB: db}
	service := battleservice.NewBattleService(
		repo,
		&registryAdapter{repo: guildRepo},
		provider,
		bus,
		logger,
		metrics,
		tracer,
		cfg,
	)
	return &Module{Service: service, Repo: repo}
}

// registryAdapter projects guild configurations onto the battle module's
// tracked-guild registry.
type registryAdapter struct {
	repo guilddb.Repository
}

var _ battleservice.GuildRegistry = (*registryAdapter)(nil)

func (a *registryAdapter) ListSyncEnabled(ctx context.Context) ([]battleservice.TrackedGuild, error) {
	configs, err := a.repo.ListSyncEnabled(ctx)
	if err != nil {
		return nil, err
	}

	guilds := make([]battleservice.TrackedGuild, 0, len(configs))
	for _, cfg := range configs {
		guilds = append(guilds, battleservice.TrackedGuild{
			GuildID:          cfg.GuildID,
			KillboardGuildID: cfg.KillboardGuildID,
			BattleChannelID:  cfg.BattleChannelID,
			MinPlayers:       cfg.MinPlayers,
		})
	}
	return guilds, nil
}
