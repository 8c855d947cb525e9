package guildservice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	guilddb "github.com/Round-Table-Club/battleboard-bot/app/modules/guild/infrastructure/repositories"
	"github.com/Round-Table-Club/battleboard-bot/app/shared/results"
)

// UpsertConfig creates or updates a guild's configuration.
func (s *GuildService) UpsertConfig(ctx context.Context, config *guilddb.GuildConfig) (results.OperationResult, error) {
	guildID := ""
	if config != nil {
		guildID = config.GuildID
	}

	return s.withTelemetry(ctx, "UpsertConfig", guildID, func(ctx context.Context) (results.OperationResult, error) {
		if config == nil {
			return results.Failure(ErrNilConfig.Error()), nil
		}
		if config.GuildID == "" {
			return results.Failure(ErrMissingGuildID.Error()), nil
		}
		if config.SyncEnabled && config.KillboardGuildID == "" {
			return results.Failure(ErrMissingKillboardID.Error()), nil
		}

		config.UpdatedAt = time.Now().UTC()
		if err := s.repo.SaveConfig(ctx, config); err != nil {
			return results.OperationResult{}, err
		}

		s.logger.InfoContext(ctx, "Guild config saved",
			slog.String("guild_id", config.GuildID),
			slog.Bool("sync_enabled", config.SyncEnabled),
		)
		return results.Success(config), nil
	})
}

// GetConfig returns a guild's configuration.
func (s *GuildService) GetConfig(ctx context.Context, guildID string) (results.OperationResult, error) {
	return s.withTelemetry(ctx, "GetConfig", guildID, func(ctx context.Context) (results.OperationResult, error) {
		config, err := s.repo.GetConfig(ctx, guildID)
		if err != nil {
			if errors.Is(err, guilddb.ErrNotFound) {
				return results.Failure(err.Error()), nil
			}
			return results.OperationResult{}, err
		}
		return results.Success(config), nil
	})
}

// SetSyncEnabled toggles battle syncing for a guild. Enabling requires a
// killboard guild id to already be configured.
func (s *GuildService) SetSyncEnabled(ctx context.Context, guildID string, enabled bool) (results.OperationResult, error) {
	return s.withTelemetry(ctx, "SetSyncEnabled", guildID, func(ctx context.Context) (results.OperationResult, error) {
		if enabled {
			config, err := s.repo.GetConfig(ctx, guildID)
			if err != nil {
				if errors.Is(err, guilddb.ErrNotFound) {
					return results.Failure(err.Error()), nil
				}
				return results.OperationResult{}, err
			}
			if config.KillboardGuildID == "" {
				return results.Failure(ErrMissingKillboardID.Error()), nil
			}
		}

		if err := s.repo.SetSyncEnabled(ctx, guildID, enabled); err != nil {
			if errors.Is(err, guilddb.ErrNotFound) {
				return results.Failure(err.Error()), nil
			}
			return results.OperationResult{}, err
		}
		return results.Success(enabled), nil
	})
}

// ListSyncEnabled returns every guild eligible for battle syncing.
func (s *GuildService) ListSyncEnabled(ctx context.Context) ([]*guilddb.GuildConfig, error) {
	return s.repo.ListSyncEnabled(ctx)
}
