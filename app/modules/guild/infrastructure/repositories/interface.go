package guilddb

import "context"

// Repository defines the persistence operations for guild configurations.
type Repository interface {
	// GetConfig returns the guild's configuration, or ErrNotFound.
	GetConfig(ctx context.Context, guildID string) (*GuildConfig, error)
	// SaveConfig inserts or updates the guild's configuration.
	SaveConfig(ctx context.Context, config *GuildConfig) error
	// SetSyncEnabled toggles battle syncing for the guild.
	SetSyncEnabled(ctx context.Context, guildID string, enabled bool) error
	// ListSyncEnabled returns every active guild with syncing enabled and a
	// killboard guild id configured.
	ListSyncEnabled(ctx context.Context) ([]*GuildConfig, error)
}
