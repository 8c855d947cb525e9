package battleservice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Round-Table-Club/battleboard-bot/app/modules/battle/infrastructure/killboard"
	battledb "github.com/Round-Table-Club/battleboard-bot/app/modules/battle/infrastructure/repositories"
)

type resolveOutcome int

const (
	outcomeUndecided resolveOutcome = iota
	outcomeResolved
	outcomeStale
)

// ReconcilePending retries resolution of registered battles that still have
// no canonical URL. Each pending record is re-matched against the killboard
// feed; a qualifying cluster updates the record, a fruitless scan through
// the record's day marks it stale, and a day the feed has not published yet
// leaves the record untouched. Idempotent: a second pass over unchanged
// external data produces the same outcomes.
func (s *BattleService) ReconcilePending(ctx context.Context) ReconcileSummary {
	summary := ReconcileSummary{}

	s.withTelemetry(ctx, "ReconcilePending", "", func(ctx context.Context) {
		guilds, err := s.registry.ListSyncEnabled(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to list sync-enabled guilds", slog.Any("error", err))
			summary.Errors++
			return
		}

		for _, guild := range guilds {
			pending, err := s.repo.ListPending(ctx, guild.GuildID)
			if err != nil {
				s.logger.ErrorContext(ctx, "Failed to list pending battles",
					slog.String("guild_id", guild.GuildID),
					slog.Any("error", err),
				)
				summary.Errors++
				continue
			}
			if len(pending) == 0 {
				continue
			}
			summary.Pending += len(pending)

			meta, err := s.provider.GetGuild(ctx, guild.KillboardGuildID)
			if err != nil || meta == nil || meta.Name == "" {
				if err == nil {
					err = ErrGuildMetaUnavailable
				}
				s.logger.WarnContext(ctx, "Skipping guild reconciliation, metadata unresolvable",
					slog.String("guild_id", guild.GuildID),
					slog.Any("error", err),
				)
				summary.Errors++
				continue
			}

			for _, record := range pending {
				outcome, err := s.resolvePending(ctx, guild, meta.Name, record)
				if err != nil {
					s.logger.ErrorContext(ctx, "Failed to reconcile pending battle",
						slog.String("guild_id", guild.GuildID),
						slog.Int64("battle_id", record.ID),
						slog.Any("error", err),
					)
					summary.Errors++
					continue
				}
				switch outcome {
				case outcomeResolved:
					summary.Resolved++
				case outcomeStale:
					summary.MarkedStale++
				}
			}
		}
	}, func() {
		summary.Errors++
	})

	return summary
}

// resolvePending attempts to match one pending record against the feed.
func (s *BattleService) resolvePending(ctx context.Context, guild TrackedGuild, trackedName string, record *battledb.Battle) (resolveOutcome, error) {
	dayStart := startOfDay(record.BattleTime)

	candidates, newestSeen, err := s.collectCandidates(ctx, guild, dayStart)
	if err != nil {
		return outcomeUndecided, err
	}

	// The feed's most recent report is still older than the pending battle:
	// the day's data has not been published upstream yet. Not decidable.
	if newestSeen.IsZero() || newestSeen.Before(record.BattleTime) {
		s.logger.InfoContext(ctx, "Pending battle not yet decidable, feed lags behind",
			slog.String("guild_id", guild.GuildID),
			slog.Int64("battle_id", record.ID),
			slog.Time("newest_report", newestSeen),
		)
		return outcomeUndecided, nil
	}

	if cluster, found := s.matchPending(record, candidates, trackedName); found {
		events, err := s.provider.GetKillEvents(ctx, cluster.IDs)
		if err != nil {
			return outcomeUndecided, err
		}

		stats := AggregateCluster(events, trackedName)
		if stats.Significant(s.cfg.SignificanceThreshold) {
			battleURL := cluster.URL()

			// If another record already holds this URL the pending row is a
			// duplicate registration; give up on it instead of colliding
			// with the uniqueness constraint.
			if _, err := s.repo.GetByURL(ctx, guild.GuildID, battleURL); err == nil {
				return s.markStale(ctx, record)
			} else if !errors.Is(err, battledb.ErrNotFound) {
				return outcomeUndecided, err
			}

			if err := s.repo.UpdateResolution(ctx, record.ID, stats.Kills, stats.Deaths, stats.IsVictory, battleURL); err != nil {
				return outcomeUndecided, err
			}
			s.logger.InfoContext(ctx, "Resolved pending battle",
				slog.String("guild_id", guild.GuildID),
				slog.Int64("battle_id", record.ID),
				slog.String("battle_url", battleURL),
			)
			return outcomeResolved, nil
		}
	}

	// The day's data has been scanned in full and nothing qualifies.
	return s.markStale(ctx, record)
}

// collectCandidates pages the feed accumulating reports on/after dayStart.
// It returns the candidates and the newest report time seen, walking until
// a report predates the day or the feed ends.
func (s *BattleService) collectCandidates(ctx context.Context, guild TrackedGuild, dayStart time.Time) ([]killboard.Battle, time.Time, error) {
	minTracked := guild.MinPlayers
	if minTracked <= 0 {
		minTracked = s.cfg.MinTrackedPlayers
	}

	var candidates []killboard.Battle
	var newestSeen time.Time
	pageSize := s.provider.PageSize()

	for page := 0; ; page++ {
		battles, err := s.provider.ListBattles(ctx, guild.KillboardGuildID, page, minTracked)
		if err != nil {
			return nil, newestSeen, err
		}
		if len(battles) == 0 {
			break
		}
		s.metrics.RecordPagesFetched(ctx, guild.GuildID, 1)

		reachedPast := false
		for _, report := range battles {
			if report.StartTime.After(newestSeen) {
				newestSeen = report.StartTime
			}
			if report.StartTime.Before(dayStart) {
				reachedPast = true
				break
			}
			candidates = append(candidates, report)
		}

		if reachedPast || len(battles) < pageSize {
			break
		}
	}
	return candidates, newestSeen, nil
}

// matchPending builds a cluster for the pending record from feed candidates
// using the loose policy, matching against the record's stored enemy guilds.
func (s *BattleService) matchPending(record *battledb.Battle, candidates []killboard.Battle, trackedName string) (BattleCluster, bool) {
	policy := s.cfg.LoosePolicy()
	trackedNorm := NormalizeGuildName(trackedName)

	reference := make([]string, 0, len(record.EnemyGuilds))
	for _, name := range record.EnemyGuilds {
		if norm := NormalizeGuildName(name); norm != "" {
			reference = append(reference, norm)
		}
	}
	matcher := NewFuzzyMatcher(reference)

	for i, candidate := range candidates {
		gap := candidate.StartTime.Sub(record.BattleTime)
		if gap < 0 {
			gap = -gap
		}
		if gap > policy.Window {
			continue
		}

		matched := false
		for _, name := range normalizedEnemyNames(candidate, trackedNorm) {
			if _, score, ok := matcher.BestMatch(name); ok && score > policy.SimilarityThreshold {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		cluster := BattleCluster{
			Primary: candidate,
			Members: []killboard.Battle{candidate},
			IDs:     []int64{candidate.ID},
		}
		for _, other := range candidates[i+1:] {
			if ShouldMerge(candidate, other, trackedName, reference, policy) {
				cluster.Members = append(cluster.Members, other)
				cluster.IDs = append(cluster.IDs, other.ID)
			}
		}
		return cluster, true
	}
	return BattleCluster{}, false
}

func (s *BattleService) markStale(ctx context.Context, record *battledb.Battle) (resolveOutcome, error) {
	if err := s.repo.UpdateResolution(ctx, record.ID, record.Kills, record.Deaths, record.IsVictory, battledb.StaleBattleURL); err != nil {
		return outcomeUndecided, err
	}
	s.logger.InfoContext(ctx, "Marked pending battle stale",
		slog.String("guild_id", record.GuildID),
		slog.Int64("battle_id", record.ID),
	)
	return outcomeStale, nil
}
