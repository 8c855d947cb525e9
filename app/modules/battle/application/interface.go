package battleservice

import "context"

// Service defines the battle module's operations.
type Service interface {
	// SyncBattles walks the external killboard feed for every eligible
	// tracked guild, clusters and registers new battles, and always returns
	// a well-formed summary. Errors are contained per cluster and per guild;
	// none propagate.
	SyncBattles(ctx context.Context, opts SyncOptions) SyncSummary
	// ReconcilePending retries resolution of previously registered battles
	// that still have no canonical URL, marking definitively unresolvable
	// ones stale.
	ReconcilePending(ctx context.Context) ReconcileSummary
}
