package guilddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// GuildDBImpl implements Repository on top of bun.
type GuildDBImpl struct {
	DB *bun.DB
}

var _ Repository = (*GuildDBImpl)(nil)

func (db *GuildDBImpl) GetConfig(ctx context.Context, guildID string) (*GuildConfig, error) {
	var config GuildConfig
	err := db.DB.NewSelect().Model(&config).Where("guild_id = ?", guildID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &config, nil
}

func (db *GuildDBImpl) SaveConfig(ctx context.Context, config *GuildConfig) error {
	_, err := db.DB.NewInsert().
		Model(config).
		On("CONFLICT (guild_id) DO UPDATE").
		Set("killboard_guild_id = EXCLUDED.killboard_guild_id").
		Set("battle_channel_id = EXCLUDED.battle_channel_id").
		Set("sync_enabled = EXCLUDED.sync_enabled").
		Set("min_players = EXCLUDED.min_players").
		Set("is_active = EXCLUDED.is_active").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save guild config: %w", err)
	}
	return nil
}

func (db *GuildDBImpl) SetSyncEnabled(ctx context.Context, guildID string, enabled bool) error {
	res, err := db.DB.NewUpdate().
		Model(&GuildConfig{}).
		Set("sync_enabled = ?", enabled).
		Set("updated_at = ?", time.Now().UTC()).
		Where("guild_id = ?", guildID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to toggle sync: %w", err)
	}
	rows, err := res.RowsAffected()
	if err == nil && rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *GuildDBImpl) ListSyncEnabled(ctx context.Context) ([]*GuildConfig, error) {
	var configs []*GuildConfig
	err := db.DB.NewSelect().
		Model(&configs).
		Where("is_active = TRUE").
		Where("sync_enabled = TRUE").
		Where("killboard_guild_id IS NOT NULL AND killboard_guild_id <> ''").
		Order("guild_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return configs, nil
}
