package battleservice

import (
	"context"
	"time"

	"github.com/Round-Table-Club/battleboard-bot/app/modules/battle/infrastructure/killboard"
)

// TrackedGuild is one community whose battles this system monitors.
type TrackedGuild struct {
	GuildID          string
	KillboardGuildID string
	BattleChannelID  string
	MinPlayers       int
}

// GuildRegistry yields the tracked guilds eligible for syncing.
type GuildRegistry interface {
	ListSyncEnabled(ctx context.Context) ([]TrackedGuild, error)
}

// StatsProvider is the read-only surface of the external killboard the sync
// engine depends on.
type StatsProvider interface {
	GetGuild(ctx context.Context, guildID string) (*killboard.Guild, error)
	ListBattles(ctx context.Context, guildID string, page, minPlayers int) ([]killboard.Battle, error)
	GetKillEvents(ctx context.Context, battleIDs []int64) ([]killboard.KillEvent, error)
	PageSize() int
}

// BattleCluster is an ordered set of raw reports judged to be fragments of
// one real battle. Built greedily from one primary report outward within a
// single feed page; never re-clustered transitively in the same pass.
type BattleCluster struct {
	Primary killboard.Battle
	Members []killboard.Battle
	IDs     []int64
}

// URL derives the canonical killboard reference for the cluster.
func (c *BattleCluster) URL() string {
	if len(c.IDs) == 1 {
		return killboard.BattleReportURL(c.IDs[0])
	}
	return killboard.MergedBattleReportURL(c.IDs)
}

// SyncMode selects the paging stop condition for a sync pass.
type SyncMode int

const (
	// SyncModeLookback pages until a report falls outside the rolling
	// lookback window.
	SyncModeLookback SyncMode = iota
	// SyncModeSinceLatest pages until a report is at or before the guild's
	// most recently registered battle.
	SyncModeSinceLatest
	// SyncModeTargetDay pages the full history until a report falls strictly
	// before the target day.
	SyncModeTargetDay
)

// SyncOptions controls one sync invocation.
type SyncOptions struct {
	Mode SyncMode
	// TargetDay bounds a SyncModeTargetDay scan. Only the date part is used.
	TargetDay time.Time
	// GuildID restricts the pass to one tracked guild when set (manual
	// trigger); empty means every sync-enabled guild.
	GuildID string
}

// SyncSummary is the always-well-formed result of a sync pass.
type SyncSummary struct {
	GuildsProcessed   int `json:"guilds_processed"`
	BattlesFound      int `json:"battles_found"`
	BattlesRegistered int `json:"battles_registered"`
	Errors            int `json:"errors"`
}

// ReconcileSummary is the result of a reconciliation pass over pending
// battles.
type ReconcileSummary struct {
	Pending     int `json:"pending"`
	Resolved    int `json:"resolved"`
	MarkedStale int `json:"marked_stale"`
	Errors      int `json:"errors"`
}
