package battledb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// BattleDBImpl implements Repository on top of bun.
type BattleDBImpl struct {
	DB *bun.DB
}

var _ Repository = (*BattleDBImpl)(nil)

func (db *BattleDBImpl) GetByURL(ctx context.Context, guildID, battleURL string) (*Battle, error) {
	var battle Battle
	err := db.DB.NewSelect().
		Model(&battle).
		Where("guild_id = ?", guildID).
		Where("battle_url = ?", battleURL).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &battle, nil
}

func (db *BattleDBImpl) Insert(ctx context.Context, battle *Battle) error {
	_, err := db.DB.NewInsert().Model(battle).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert battle: %w", err)
	}
	return nil
}

func (db *BattleDBImpl) Latest(ctx context.Context, guildID string) (*Battle, error) {
	var battle Battle
	err := db.DB.NewSelect().
		Model(&battle).
		Where("guild_id = ?", guildID).
		Order("battle_time DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &battle, nil
}

func (db *BattleDBImpl) ListPending(ctx context.Context, guildID string) ([]*Battle, error) {
	var battles []*Battle
	err := db.DB.NewSelect().
		Model(&battles).
		Where("guild_id = ?", guildID).
		Where("battle_url IS NULL OR battle_url = ''").
		Order("battle_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return battles, nil
}

func (db *BattleDBImpl) UpdateResolution(ctx context.Context, id int64, kills, deaths int, isVictory bool, battleURL string) error {
	res, err := db.DB.NewUpdate().
		Model(&Battle{}).
		Set("kills = ?", kills).
		Set("deaths = ?", deaths).
		Set("is_victory = ?", isVictory).
		Set("battle_url = ?", battleURL).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update battle resolution: %w", err)
	}
	rows, err := res.RowsAffected()
	if err == nil && rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *BattleDBImpl) CountForGuild(ctx context.Context, guildID string) (int, error) {
	count, err := db.DB.NewSelect().
		Model((*Battle)(nil)).
		Where("guild_id = ?", guildID).
		Where("battle_url IS NOT NULL AND battle_url <> '' AND battle_url <> ?", StaleBattleURL).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count battles: %w", err)
	}
	return count, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.IntegrityViolation()
	}
	return false
}
