package battleservice

import "time"

// Config holds the tuning knobs for the battle merge and sync engine. Two
// merge policies exist because different call sites historically used
// different windows and thresholds for the same decision; both are kept as
// named configurations rather than silently unified.
type Config struct {
	StrictWindow          time.Duration
	LooseWindow           time.Duration
	StrictThreshold       float64
	LooseThreshold        float64
	MinOverlap            float64
	MaxPlayerDiff         float64
	MinTrackedPlayers     int
	SignificanceThreshold int
	LookbackDays          int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		StrictWindow:          30 * time.Minute,
		LooseWindow:           60 * time.Minute,
		StrictThreshold:       0.8,
		LooseThreshold:        0.6,
		MinOverlap:            0.5,
		MaxPlayerDiff:         0.3,
		MinTrackedPlayers:     10,
		SignificanceThreshold: 4,
		LookbackDays:          7,
	}
}

// StrictPolicy is the merge policy for clustering within a single guild's
// manual or by-date sync.
func (c Config) StrictPolicy() MergePolicy {
	return MergePolicy{
		Name:                "strict",
		Window:              c.StrictWindow,
		SimilarityThreshold: c.StrictThreshold,
		MinOverlap:          c.MinOverlap,
		MaxPlayerDiff:       c.MaxPlayerDiff,
	}
}

// LoosePolicy is the merge policy for the general rolling sync and the
// pending-battle reconciliation pass.
func (c Config) LoosePolicy() MergePolicy {
	return MergePolicy{
		Name:                "loose",
		Window:              c.LooseWindow,
		SimilarityThreshold: c.LooseThreshold,
		AnyMatch:            true,
	}
}
