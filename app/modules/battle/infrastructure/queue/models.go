package battlequeue

// BattleSyncJob triggers a rolling battle sync across all tracked guilds.
type BattleSyncJob struct{}

// Kind returns the job type identifier for River.
func (BattleSyncJob) Kind() string { return "battle_sync" }

// ReconcileJob triggers a reconciliation pass over pending battles.
type ReconcileJob struct{}

// Kind returns the job type identifier for River.
func (ReconcileJob) Kind() string { return "battle_reconcile" }
