package battleevents

import "time"

// Topics published by the battle module.
const (
	// BattlesRegistered fires after a guild's sync pass registers at least
	// one new battle. The display layer uses it to refresh battle channels.
	BattlesRegistered = "battle.sync.battles.registered"
	// SyncCompleted fires once per sync invocation with the pass summary.
	SyncCompleted = "battle.sync.completed"
)

// BattlesRegisteredPayload notifies the display layer that new battles were
// registered for a guild.
type BattlesRegisteredPayload struct {
	GuildID    string    `json:"guild_id"`
	ChannelID  string    `json:"channel_id"`
	Registered int       `json:"registered"`
	Timestamp  time.Time `json:"timestamp"`
}

// SyncCompletedPayload carries the summary of one whole sync invocation.
type SyncCompletedPayload struct {
	GuildsProcessed   int       `json:"guilds_processed"`
	BattlesFound      int       `json:"battles_found"`
	BattlesRegistered int       `json:"battles_registered"`
	Errors            int       `json:"errors"`
	Timestamp         time.Time `json:"timestamp"`
}
