package battleservice

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	battleevents "github.com/Round-Table-Club/battleboard-bot/app/modules/battle/events"
	"github.com/Round-Table-Club/battleboard-bot/app/modules/battle/infrastructure/killboard"
	battledb "github.com/Round-Table-Club/battleboard-bot/app/modules/battle/infrastructure/repositories"
)

// stopCondition reports whether paging should stop once a report with the
// given start time is reached.
type stopCondition func(battleTime time.Time) bool

// guildSyncResult tallies one guild's pass.
type guildSyncResult struct {
	found      int
	registered int
	errors     int
}

// SyncBattles runs the sync state machine for every eligible tracked guild,
// sequentially. It never returns an error: failures are contained at the
// cluster or guild level and counted in the summary.
func (s *BattleService) SyncBattles(ctx context.Context, opts SyncOptions) SyncSummary {
	summary := SyncSummary{}

	s.withTelemetry(ctx, "SyncBattles", opts.GuildID, func(ctx context.Context) {
		guilds, err := s.registry.ListSyncEnabled(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to list sync-enabled guilds", slog.Any("error", err))
			summary.Errors++
			return
		}

		for _, guild := range guilds {
			if opts.GuildID != "" && guild.GuildID != opts.GuildID {
				continue
			}

			res := s.syncGuild(ctx, guild, opts)
			summary.GuildsProcessed++
			summary.BattlesFound += res.found
			summary.BattlesRegistered += res.registered
			summary.Errors += res.errors
		}

		s.publishSyncCompleted(ctx, summary)
	}, func() {
		summary.Errors++
	})

	return summary
}

// syncGuild runs one tracked guild's pass: resolve metadata, page the feed,
// cluster, aggregate, persist. Errors inside a cluster are counted and the
// pass continues; errors at the guild level end only this guild's loop.
func (s *BattleService) syncGuild(ctx context.Context, guild TrackedGuild, opts SyncOptions) guildSyncResult {
	res := guildSyncResult{}

	meta, err := s.provider.GetGuild(ctx, guild.KillboardGuildID)
	if err != nil || meta == nil || meta.Name == "" {
		if err == nil {
			err = ErrGuildMetaUnavailable
		}
		s.logger.WarnContext(ctx, "Abandoning guild pass, metadata unresolvable",
			slog.String("guild_id", guild.GuildID),
			slog.String("killboard_guild_id", guild.KillboardGuildID),
			slog.Any("error", err),
		)
		res.errors++
		return res
	}
	trackedName := meta.Name

	stop, policy, err := s.stopConditionFor(ctx, guild, opts)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to derive stop condition",
			slog.String("guild_id", guild.GuildID),
			slog.Any("error", err),
		)
		res.errors++
		return res
	}

	minTracked := guild.MinPlayers
	if minTracked <= 0 {
		minTracked = s.cfg.MinTrackedPlayers
	}

	pageSize := s.provider.PageSize()
	for page := 0; ; page++ {
		battles, err := s.provider.ListBattles(ctx, guild.KillboardGuildID, page, minTracked)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to fetch battle page",
				slog.String("guild_id", guild.GuildID),
				slog.Int("page", page),
				slog.Any("error", err),
			)
			res.errors++
			break
		}
		if len(battles) == 0 {
			break
		}
		s.metrics.RecordPagesFetched(ctx, guild.GuildID, 1)

		stopHit := false
		consumed := make(map[int64]bool, len(battles))
		for i, report := range battles {
			if stop(report.StartTime) {
				stopHit = true
				break
			}
			if consumed[report.ID] {
				continue
			}
			if trackedPlayers(report, trackedName) < minTracked {
				continue
			}

			cluster := s.buildCluster(report, battles[i+1:], consumed, trackedName, policy)
			res.found++

			registered, err := s.registerCluster(ctx, guild, cluster, trackedName)
			if err != nil {
				s.logger.ErrorContext(ctx, "Failed to process battle cluster",
					slog.String("guild_id", guild.GuildID),
					slog.String("battle_url", cluster.URL()),
					slog.Any("error", err),
				)
				res.errors++
				continue
			}
			if registered {
				res.registered++
			}
		}

		if stopHit || len(battles) < pageSize {
			break
		}
	}

	if res.registered > 0 {
		s.metrics.RecordBattlesRegistered(ctx, guild.GuildID, res.registered)
		if guild.BattleChannelID != "" {
			s.publishBattlesRegistered(ctx, guild, res.registered)
		}
	}
	if res.errors > 0 {
		s.metrics.RecordSyncErrors(ctx, guild.GuildID, res.errors)
	}
	return res
}

// stopConditionFor derives the paging stop condition and merge policy for
// one guild according to the sync mode. By-date scans cluster with the
// strict policy; rolling scans use the loose one.
func (s *BattleService) stopConditionFor(ctx context.Context, guild TrackedGuild, opts SyncOptions) (stopCondition, MergePolicy, error) {
	switch opts.Mode {
	case SyncModeTargetDay:
		if opts.TargetDay.IsZero() {
			return nil, MergePolicy{}, ErrMissingTargetDay
		}
		dayStart := startOfDay(opts.TargetDay)
		return func(t time.Time) bool {
			return t.Before(dayStart)
		}, s.cfg.StrictPolicy(), nil

	case SyncModeSinceLatest:
		latest, err := s.repo.Latest(ctx, guild.GuildID)
		if err != nil {
			if !errors.Is(err, battledb.ErrNotFound) {
				return nil, MergePolicy{}, err
			}
			// No registered battle yet: fall back to the lookback window.
			return s.lookbackStop(), s.cfg.LoosePolicy(), nil
		}
		latestTime := latest.BattleTime
		return func(t time.Time) bool {
			return !t.After(latestTime)
		}, s.cfg.LoosePolicy(), nil

	default:
		return s.lookbackStop(), s.cfg.LoosePolicy(), nil
	}
}

func (s *BattleService) lookbackStop() stopCondition {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.LookbackDays)
	return func(t time.Time) bool {
		return t.Before(cutoff)
	}
}

// buildCluster greedily collects, from the remainder of the current page,
// every not-yet-consumed report that merges with the primary. Collected
// reports are marked consumed so they are not reprocessed as primaries.
func (s *BattleService) buildCluster(primary killboard.Battle, rest []killboard.Battle, consumed map[int64]bool, trackedName string, policy MergePolicy) BattleCluster {
	trackedNorm := NormalizeGuildName(trackedName)
	reference := normalizedEnemyNames(primary, trackedNorm)

	cluster := BattleCluster{
		Primary: primary,
		Members: []killboard.Battle{primary},
		IDs:     []int64{primary.ID},
	}
	consumed[primary.ID] = true

	for _, candidate := range rest {
		if consumed[candidate.ID] {
			continue
		}
		if ShouldMerge(primary, candidate, trackedName, reference, policy) {
			cluster.Members = append(cluster.Members, candidate)
			cluster.IDs = append(cluster.IDs, candidate.ID)
			consumed[candidate.ID] = true
		}
	}
	return cluster
}

// registerCluster aggregates a cluster's kill events and persists a new
// canonical battle if it clears the significance threshold and is not
// already registered. Returns whether a new record was written.
func (s *BattleService) registerCluster(ctx context.Context, guild TrackedGuild, cluster BattleCluster, trackedName string) (bool, error) {
	events, err := s.provider.GetKillEvents(ctx, cluster.IDs)
	if err != nil {
		return false, err
	}

	stats := AggregateCluster(events, trackedName)
	if !stats.Significant(s.cfg.SignificanceThreshold) {
		// Not enough evidence of a real fight; not an error.
		return false, nil
	}

	battleURL := cluster.URL()
	if _, err := s.repo.GetByURL(ctx, guild.GuildID, battleURL); err == nil {
		return false, nil
	} else if !errors.Is(err, battledb.ErrNotFound) {
		return false, err
	}

	battle := &battledb.Battle{
		GuildID:     guild.GuildID,
		BattleTime:  cluster.Primary.StartTime,
		EnemyGuilds: cluster.EnemyGuilds(trackedName),
		Kills:       stats.Kills,
		Deaths:      stats.Deaths,
		IsVictory:   stats.IsVictory,
		BattleURL:   battleURL,
	}
	if err := s.repo.Insert(ctx, battle); err != nil {
		if errors.Is(err, battledb.ErrDuplicate) {
			// A concurrent sync won the race; the uniqueness constraint is
			// the correctness backstop, so this is "already registered".
			return false, nil
		}
		return false, err
	}

	s.logger.InfoContext(ctx, "Registered new battle",
		slog.String("guild_id", guild.GuildID),
		slog.String("battle_url", battleURL),
		slog.Int("kills", stats.Kills),
		slog.Int("deaths", stats.Deaths),
		slog.Int("reports_merged", len(cluster.IDs)),
	)
	return true, nil
}

// trackedPlayers returns the tracked guild's participant count in a report.
func trackedPlayers(report killboard.Battle, trackedName string) int {
	trackedNorm := NormalizeGuildName(trackedName)
	for _, g := range report.Guilds {
		if NormalizeGuildName(g.Name) == trackedNorm {
			return g.Players
		}
	}
	return 0
}

// publishBattlesRegistered invokes the display-layer hook. Publish failures
// are logged, never escalated: the battles are already registered.
func (s *BattleService) publishBattlesRegistered(ctx context.Context, guild TrackedGuild, registered int) {
	payload := battleevents.BattlesRegisteredPayload{
		GuildID:    guild.GuildID,
		ChannelID:  guild.BattleChannelID,
		Registered: registered,
		Timestamp:  time.Now().UTC(),
	}
	s.publishEvent(ctx, battleevents.BattlesRegistered, payload, guild.GuildID)
}

func (s *BattleService) publishSyncCompleted(ctx context.Context, summary SyncSummary) {
	payload := battleevents.SyncCompletedPayload{
		GuildsProcessed:   summary.GuildsProcessed,
		BattlesFound:      summary.BattlesFound,
		BattlesRegistered: summary.BattlesRegistered,
		Errors:            summary.Errors,
		Timestamp:         time.Now().UTC(),
	}
	s.publishEvent(ctx, battleevents.SyncCompleted, payload, "")
}

func (s *BattleService) publishEvent(ctx context.Context, topic string, payload any, guildID string) {
	if s.eventBus == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to marshal event payload",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("correlation_id", uuid.NewString())
	if guildID != "" {
		msg.Metadata.Set("guild_id", guildID)
	}

	if err := s.eventBus.Publish(topic, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
	}
}

// startOfDay truncates t to midnight UTC.
func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
