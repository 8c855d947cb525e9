package battleservice

import (
	"time"

	"github.com/Round-Table-Club/battleboard-bot/app/modules/battle/infrastructure/killboard"
)

// MergePolicy names one configuration of the merge predicate. Strict and
// loose variants exist because different sync call sites use different
// windows and thresholds for what is conceptually the same decision.
type MergePolicy struct {
	Name string
	// Window is the maximum start-time gap between two reports. The boundary
	// is inclusive: two reports exactly Window apart still merge.
	Window              time.Duration
	SimilarityThreshold float64
	// MinOverlap is the required matched fraction of the union of both
	// reports' enemy sets. Zero disables the check (any-match policies).
	MinOverlap float64
	// MaxPlayerDiff is the maximum relative difference in total participant
	// counts. Zero disables the check.
	MaxPlayerDiff float64
	// AnyMatch accepts as soon as any single enemy name from either report
	// matches the reference set.
	AnyMatch bool
}

// ShouldMerge decides whether two raw battle reports are fragments of one
// real battle. referenceEnemyNames is the normalized enemy set the fuzzy
// matcher is built over; it is local to this invocation, so repeated calls
// with different reference sets never leak state into each other. The
// predicate is pure.
func ShouldMerge(a, b killboard.Battle, trackedName string, referenceEnemyNames []string, policy MergePolicy) bool {
	// Temporal gate first: reports far apart in time are never the same
	// fight, whatever their rosters look like.
	gap := a.StartTime.Sub(b.StartTime)
	if gap < 0 {
		gap = -gap
	}
	if gap > policy.Window {
		return false
	}

	trackedNorm := NormalizeGuildName(trackedName)
	matcher := NewFuzzyMatcher(referenceEnemyNames)

	enemiesA := normalizedEnemyNames(a, trackedNorm)
	enemiesB := normalizedEnemyNames(b, trackedNorm)

	if policy.AnyMatch {
		for _, name := range enemiesA {
			if _, score, ok := matcher.BestMatch(name); ok && score > policy.SimilarityThreshold {
				return true
			}
		}
		for _, name := range enemiesB {
			if _, score, ok := matcher.BestMatch(name); ok && score > policy.SimilarityThreshold {
				return true
			}
		}
		return false
	}

	// Percentage policy: count matches among a's enemies against the union
	// of both rosters.
	matched := 0
	for _, name := range enemiesA {
		if _, score, ok := matcher.BestMatch(name); ok && score > policy.SimilarityThreshold {
			matched++
		}
	}

	union := make(map[string]struct{}, len(enemiesA)+len(enemiesB))
	for _, name := range enemiesA {
		union[name] = struct{}{}
	}
	for _, name := range enemiesB {
		union[name] = struct{}{}
	}
	if len(union) == 0 {
		return false
	}
	if float64(matched)/float64(len(union)) < policy.MinOverlap {
		return false
	}

	if policy.MaxPlayerDiff > 0 {
		totalA := a.TotalPlayers()
		totalB := b.TotalPlayers()
		larger := max(totalA, totalB)
		if larger == 0 {
			return false
		}
		diff := totalA - totalB
		if diff < 0 {
			diff = -diff
		}
		if float64(diff)/float64(larger) > policy.MaxPlayerDiff {
			return false
		}
	}

	return true
}

// normalizedEnemyNames returns the deduplicated normalized names of every
// faction in the report other than the tracked guild.
func normalizedEnemyNames(report killboard.Battle, trackedNorm string) []string {
	seen := make(map[string]struct{}, len(report.Guilds))
	names := make([]string, 0, len(report.Guilds))
	for _, g := range report.Guilds {
		norm := NormalizeGuildName(g.Name)
		if norm == "" || norm == trackedNorm {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		names = append(names, norm)
	}
	return names
}
