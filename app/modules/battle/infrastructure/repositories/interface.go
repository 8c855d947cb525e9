package battledb

import (
	"context"
)

// Repository defines the persistence operations the battle module needs.
// The (guild_id, battle_url) pair is the duplicate-detection key; battle_time
// ordering backs the latest-battle lookup used by the rolling sync.
type Repository interface {
	// GetByURL returns the battle registered under (guildID, battleURL), or
	// ErrNotFound.
	GetByURL(ctx context.Context, guildID, battleURL string) (*Battle, error)
	// Insert registers a new battle. Returns ErrDuplicate if a record with
	// the same (guildID, battleURL) already exists; the database uniqueness
	// constraint is the correctness backstop for concurrent syncs.
	Insert(ctx context.Context, battle *Battle) error
	// Latest returns the guild's most recently fought registered battle, or
	// ErrNotFound if the guild has none.
	Latest(ctx context.Context, guildID string) (*Battle, error)
	// ListPending returns the guild's battles that still have no canonical
	// URL. Stale battles are excluded.
	ListPending(ctx context.Context, guildID string) ([]*Battle, error)
	// UpdateResolution rewrites a battle's aggregate outcome and canonical
	// URL. Used by the reconciliation pass, including stale marking.
	UpdateResolution(ctx context.Context, id int64, kills, deaths int, isVictory bool, battleURL string) error
	// CountForGuild returns how many resolved battles a guild has registered.
	// Pending and stale records are excluded.
	CountForGuild(ctx context.Context, guildID string) (int, error)
}
