package guilddb

import (
	"time"

	"github.com/uptrace/bun"
)

// GuildConfig represents a community's configuration and killboard link.
type GuildConfig struct {
	bun.BaseModel `bun:"table:guild_configs,alias:g"`

	GuildID          string    `bun:"guild_id,pk,notnull,type:varchar(20)"`
	KillboardGuildID string    `bun:"killboard_guild_id,nullzero,type:varchar(64)"`
	BattleChannelID  string    `bun:"battle_channel_id,nullzero,type:varchar(20)"`
	SyncEnabled      bool      `bun:"sync_enabled,notnull,default:false"`
	MinPlayers       int       `bun:"min_players,notnull,default:10"`
	IsActive         bool      `bun:"is_active,notnull,default:true"`
	CreatedAt        time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt        time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
