package battleservice

import (
	"github.com/Round-Table-Club/battleboard-bot/app/modules/battle/infrastructure/killboard"
)

// ClusterStats is the aggregate combat outcome of one battle cluster for the
// tracked guild.
type ClusterStats struct {
	Kills     int
	Deaths    int
	IsVictory bool
}

// Significant reports whether the cluster shows enough combat to be worth
// registering as a real battle.
func (s ClusterStats) Significant(threshold int) bool {
	return s.Kills >= threshold || s.Deaths >= threshold
}

// AggregateCluster counts, over the combined kill-event feed of a cluster,
// every kill by the tracked guild and every death of the tracked guild.
// Guild names are compared normalized.
func AggregateCluster(events []killboard.KillEvent, trackedName string) ClusterStats {
	trackedNorm := NormalizeGuildName(trackedName)

	stats := ClusterStats{}
	for _, ev := range events {
		if NormalizeGuildName(ev.Killer.GuildName) == trackedNorm {
			stats.Kills++
		}
		if NormalizeGuildName(ev.Victim.GuildName) == trackedNorm {
			stats.Deaths++
		}
	}
	stats.IsVictory = stats.Kills > stats.Deaths
	return stats
}

// EnemyGuilds returns the deduplicated union of enemy guild display names
// across every report in the cluster. The first-seen casing wins; dedup is
// by normalized name.
func (c *BattleCluster) EnemyGuilds(trackedName string) []string {
	trackedNorm := NormalizeGuildName(trackedName)

	seen := make(map[string]struct{})
	var names []string
	for _, report := range c.Members {
		for _, g := range report.Guilds {
			norm := NormalizeGuildName(g.Name)
			if norm == "" || norm == trackedNorm {
				continue
			}
			if _, dup := seen[norm]; dup {
				continue
			}
			seen[norm] = struct{}{}
			names = append(names, g.Name)
		}
	}
	return names
}
