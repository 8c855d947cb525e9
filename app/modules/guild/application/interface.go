package guildservice

import (
	"context"

	guilddb "github.com/Round-Table-Club/battleboard-bot/app/modules/guild/infrastructure/repositories"
	"github.com/Round-Table-Club/battleboard-bot/app/shared/results"
)

// Service defines the guild module's operations.
type Service interface {
	// UpsertConfig creates or updates a guild's configuration.
	UpsertConfig(ctx context.Context, config *guilddb.GuildConfig) (results.OperationResult, error)
	// GetConfig returns a guild's configuration.
	GetConfig(ctx context.Context, guildID string) (results.OperationResult, error)
	// SetSyncEnabled toggles battle syncing for a guild.
	SetSyncEnabled(ctx context.Context, guildID string, enabled bool) (results.OperationResult, error)
	// ListSyncEnabled returns every guild eligible for battle syncing.
	ListSyncEnabled(ctx context.Context) ([]*guilddb.GuildConfig, error)
}
