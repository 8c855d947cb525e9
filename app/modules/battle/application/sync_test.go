package battleservice

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	battleevents "github.com/Round-Table-Club/battleboard-bot/app/modules/battle/events"
	"github.com/Round-Table-Club/battleboard-bot/app/modules/battle/infrastructure/killboard"
	battledb "github.com/Round-Table-Club/battleboard-bot/app/modules/battle/infrastructure/repositories"
)

var targetDay = time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)

// alphaFeed builds a killboard fixture for a guild named Alpha: two reports
// that are fragments of one fight against Night Terror, one small skirmish,
// one report where Alpha barely showed up, and one report from the previous
// day. The feed lists newest first, the way the real API does.
func alphaFeed() *FakeStatsProvider {
	provider := NewFakeStatsProvider()
	provider.Guilds["kb-alpha"] = &killboard.Guild{ID: "kb-alpha", Name: "Alpha"}

	provider.Battles = []killboard.Battle{
		{
			ID:        102,
			StartTime: targetDay.Add(20*time.Hour + 10*time.Minute),
			Guilds: []killboard.BattleGuild{
				{Name: "Alpha", Players: 14},
				{Name: "NIGHT terror", Players: 10},
			},
		},
		{
			ID:        101,
			StartTime: targetDay.Add(20 * time.Hour),
			Guilds: []killboard.BattleGuild{
				{Name: "Alpha", Players: 15},
				{Name: "Night Terror", Players: 12},
			},
		},
		{
			ID:        104,
			StartTime: targetDay.Add(19 * time.Hour),
			Guilds: []killboard.BattleGuild{
				{Name: "Alpha", Players: 5},
				{Name: "Night Terror", Players: 20},
			},
		},
		{
			ID:        103,
			StartTime: targetDay.Add(18 * time.Hour),
			Guilds: []killboard.BattleGuild{
				{Name: "Alpha", Players: 12},
				{Name: "Blue Whales", Players: 11},
			},
		},
		{
			ID:        100,
			StartTime: targetDay.Add(-time.Hour),
			Guilds: []killboard.BattleGuild{
				{Name: "Alpha", Players: 20},
				{Name: "Iron Pact", Players: 18},
			},
		},
	}

	provider.Events[101] = []killboard.KillEvent{
		kill("Alpha", "Night Terror"),
		kill("Alpha", "Night Terror"),
		kill("Alpha", "Night Terror"),
		kill("Alpha", "Night Terror"),
		kill("Night Terror", "Alpha"),
	}
	provider.Events[102] = []killboard.KillEvent{
		kill("Alpha", "Night Terror"),
		kill("Alpha", "Night Terror"),
		kill("Night Terror", "Alpha"),
	}
	provider.Events[103] = []killboard.KillEvent{
		kill("Alpha", "Blue Whales"),
	}
	return provider
}

func alphaGuild() TrackedGuild {
	return TrackedGuild{
		GuildID:          "guild-1",
		KillboardGuildID: "kb-alpha",
		BattleChannelID:  "chan-9",
	}
}

func TestSyncBattles_TargetDayMergesFragments(t *testing.T) {
	ctx := context.Background()
	repo := &memoryRepo{}
	bus := &RecordingEventBus{}
	svc := newTestService(repo, &FakeRegistry{TrackedGuilds: []TrackedGuild{alphaGuild()}}, alphaFeed(), bus)

	summary := svc.SyncBattles(ctx, SyncOptions{Mode: SyncModeTargetDay, TargetDay: targetDay})

	assert.Equal(t, 1, summary.GuildsProcessed)
	assert.Equal(t, 2, summary.BattlesFound, "merged cluster and skirmish")
	assert.Equal(t, 1, summary.BattlesRegistered, "skirmish is below the significance threshold")
	assert.Equal(t, 0, summary.Errors)

	rows := repo.all()
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "guild-1", row.GuildID)
	assert.Equal(t, "https://killboard.ashval.gg/battles/multilog/101,102", row.BattleURL)
	assert.Equal(t, 6, row.Kills)
	assert.Equal(t, 2, row.Deaths)
	assert.True(t, row.IsVictory)
	assert.Equal(t, []string{"NIGHT terror"}, row.EnemyGuilds)
	assert.Equal(t, targetDay.Add(20*time.Hour+10*time.Minute), row.BattleTime)
}

func TestSyncBattles_SecondRunRegistersNothing(t *testing.T) {
	ctx := context.Background()
	repo := &memoryRepo{}
	provider := alphaFeed()
	svc := newTestService(repo, &FakeRegistry{TrackedGuilds: []TrackedGuild{alphaGuild()}}, provider, nil)

	first := svc.SyncBattles(ctx, SyncOptions{Mode: SyncModeTargetDay, TargetDay: targetDay})
	require.Equal(t, 1, first.BattlesRegistered)

	second := svc.SyncBattles(ctx, SyncOptions{Mode: SyncModeTargetDay, TargetDay: targetDay})
	assert.Equal(t, 0, second.BattlesRegistered)
	assert.Equal(t, 0, second.Errors)
	assert.Len(t, repo.all(), 1, "re-running over unchanged data must not duplicate records")
}

func TestSyncBattles_SinceLatestStopsAtKnownBattle(t *testing.T) {
	ctx := context.Background()
	repo := &memoryRepo{}
	provider := alphaFeed()
	svc := newTestService(repo, &FakeRegistry{TrackedGuilds: []TrackedGuild{alphaGuild()}}, provider, nil)

	// Seed via a target-day pass, then run the rolling sync over the same
	// feed: everything is at or before the latest registered battle.
	svc.SyncBattles(ctx, SyncOptions{Mode: SyncModeTargetDay, TargetDay: targetDay})
	calls := provider.ListCalls()

	summary := svc.SyncBattles(ctx, SyncOptions{Mode: SyncModeSinceLatest})

	assert.Equal(t, 0, summary.BattlesFound)
	assert.Equal(t, 0, summary.BattlesRegistered)
	assert.Equal(t, calls+1, provider.ListCalls(), "rolling sync should stop on the first page")
}

func TestSyncBattles_GuildFilter(t *testing.T) {
	ctx := context.Background()
	repo := &memoryRepo{}
	other := TrackedGuild{GuildID: "guild-2", KillboardGuildID: "kb-missing"}
	registry := &FakeRegistry{TrackedGuilds: []TrackedGuild{alphaGuild(), other}}
	svc := newTestService(repo, registry, alphaFeed(), nil)

	summary := svc.SyncBattles(ctx, SyncOptions{Mode: SyncModeTargetDay, TargetDay: targetDay, GuildID: "guild-1"})

	assert.Equal(t, 1, summary.GuildsProcessed)
	assert.Equal(t, 0, summary.Errors, "the filtered-out guild's missing metadata must not surface")
}

func TestSyncBattles_MissingTargetDay(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&memoryRepo{}, &FakeRegistry{TrackedGuilds: []TrackedGuild{alphaGuild()}}, alphaFeed(), nil)

	summary := svc.SyncBattles(ctx, SyncOptions{Mode: SyncModeTargetDay})

	assert.Equal(t, 0, summary.BattlesRegistered)
	assert.Equal(t, 1, summary.Errors)
}

func TestSyncBattles_UnresolvableGuildMetadata(t *testing.T) {
	ctx := context.Background()
	provider := NewFakeStatsProvider()
	svc := newTestService(&memoryRepo{}, &FakeRegistry{TrackedGuilds: []TrackedGuild{alphaGuild()}}, provider, nil)

	summary := svc.SyncBattles(ctx, SyncOptions{Mode: SyncModeTargetDay, TargetDay: targetDay})

	assert.Equal(t, 1, summary.GuildsProcessed)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, 0, summary.BattlesFound)
}

func TestSyncBattles_RegistryError(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&memoryRepo{}, &FakeRegistry{Err: errors.New("db down")}, NewFakeStatsProvider(), nil)

	summary := svc.SyncBattles(ctx, SyncOptions{})

	assert.Equal(t, 0, summary.GuildsProcessed)
	assert.Equal(t, 1, summary.Errors)
}

func TestSyncBattles_InsertRace(t *testing.T) {
	ctx := context.Background()
	repo := &battledb.FakeRepository{
		InsertFn: func(ctx context.Context, battle *battledb.Battle) error {
			return battledb.ErrDuplicate
		},
	}
	svc := newTestService(repo, &FakeRegistry{TrackedGuilds: []TrackedGuild{alphaGuild()}}, alphaFeed(), nil)

	summary := svc.SyncBattles(ctx, SyncOptions{Mode: SyncModeTargetDay, TargetDay: targetDay})

	// A lost insert race means "already registered", not an error.
	assert.Equal(t, 0, summary.BattlesRegistered)
	assert.Equal(t, 0, summary.Errors)
}

func TestSyncBattles_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	bus := &RecordingEventBus{}
	svc := newTestService(&memoryRepo{}, &FakeRegistry{TrackedGuilds: []TrackedGuild{alphaGuild()}}, alphaFeed(), bus)

	svc.SyncBattles(ctx, SyncOptions{Mode: SyncModeTargetDay, TargetDay: targetDay})

	registered := bus.Published(battleevents.BattlesRegistered)
	require.Len(t, registered, 1)

	var payload battleevents.BattlesRegisteredPayload
	require.NoError(t, json.Unmarshal(registered[0].Payload, &payload))
	assert.Equal(t, "guild-1", payload.GuildID)
	assert.Equal(t, "chan-9", payload.ChannelID)
	assert.Equal(t, 1, payload.Registered)
	assert.NotEmpty(t, registered[0].Metadata.Get("correlation_id"))

	completed := bus.Published(battleevents.SyncCompleted)
	require.Len(t, completed, 1)
	var summary battleevents.SyncCompletedPayload
	require.NoError(t, json.Unmarshal(completed[0].Payload, &summary))
	assert.Equal(t, 1, summary.BattlesRegistered)
}

func TestSyncBattles_NoChannelNoRegisteredEvent(t *testing.T) {
	ctx := context.Background()
	bus := &RecordingEventBus{}
	guild := alphaGuild()
	guild.BattleChannelID = ""
	svc := newTestService(&memoryRepo{}, &FakeRegistry{TrackedGuilds: []TrackedGuild{guild}}, alphaFeed(), bus)

	svc.SyncBattles(ctx, SyncOptions{Mode: SyncModeTargetDay, TargetDay: targetDay})

	assert.Empty(t, bus.Published(battleevents.BattlesRegistered))
	assert.Len(t, bus.Published(battleevents.SyncCompleted), 1)
}

func TestSyncBattles_PagesThroughTheFeed(t *testing.T) {
	ctx := context.Background()
	provider := alphaFeed()
	provider.Page = 2 // force multiple pages over the five-report fixture
	repo := &memoryRepo{}
	svc := newTestService(repo, &FakeRegistry{TrackedGuilds: []TrackedGuild{alphaGuild()}}, provider, nil)

	summary := svc.SyncBattles(ctx, SyncOptions{Mode: SyncModeTargetDay, TargetDay: targetDay})

	// 102 and 101 now land on the same page and still merge; the skirmish
	// is found on a later page.
	assert.Equal(t, 2, summary.BattlesFound)
	assert.Equal(t, 1, summary.BattlesRegistered)
	rows := repo.all()
	require.Len(t, rows, 1)
	assert.Equal(t, "https://killboard.ashval.gg/battles/multilog/101,102", rows[0].BattleURL)
}
