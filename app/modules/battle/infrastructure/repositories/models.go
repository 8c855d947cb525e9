package battledb

import (
	"time"

	"github.com/uptrace/bun"
)

// StaleBattleURL is the terminal sentinel for a pending battle the
// reconciliation pass has definitively given up on. It is never retried.
const StaleBattleURL = "stale"

// Battle is the canonical, deduplicated record of one real battle, owned by
// this system. Raw killboard reports are merged into one row per fight.
type Battle struct {
	bun.BaseModel `bun:"table:battles,alias:b"`

	ID         int64     `bun:"id,pk,autoincrement"`
	GuildID    string    `bun:"guild_id,notnull,type:varchar(20)"`
	BattleTime time.Time `bun:"battle_time,notnull"`
	// Deduplicated enemy guild names across all merged reports.
	EnemyGuilds []string  `bun:"enemy_guilds,type:jsonb"`
	Kills       int       `bun:"kills,notnull,default:0"`
	Deaths      int       `bun:"deaths,notnull,default:0"`
	IsVictory   bool      `bun:"is_victory,notnull,default:false"`
	// BattleURL is the canonical killboard reference. Empty means the record
	// is pending resolution by a later reconciliation pass; StaleBattleURL
	// means resolution was abandoned for good.
	BattleURL string    `bun:"battle_url,nullzero"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// IsPending reports whether the record still awaits a canonical URL.
func (b *Battle) IsPending() bool {
	return b.BattleURL == ""
}
