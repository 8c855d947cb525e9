package guild

import (
	"log/slog"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"

	guildservice "github.com/Round-Table-Club/battleboard-bot/app/modules/guild/application"
	guilddb "github.com/Round-Table-Club/battleboard-bot/app/modules/guild/infrastructure/repositories"
	guildmetrics "github.com/Round-Table-Club/battleboard-bot/app/observability/metrics/guild"
)

// Module wires the guild module's service and repository.
type Module struct {
	Service guildservice.Service
	Repo    guilddb.Repository
}

// NewModule constructs the guild module.
func NewModule(db *bun.DB, logger *slog.Logger, metrics guildmetrics.GuildMetrics, tracer trace.Tracer) *Module {
	repo := &guilddb.GuildDBImpl{DB: db}
	return &Module{
		Service: guildservice.NewGuildService(repo, logger, metrics, tracer),
		Repo:    repo,
	}
}
