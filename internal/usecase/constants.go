package usecase

import "time"

const (
	// BalanceCacheTTL bounds how stale a cached balance read may be.
	BalanceCacheTTL = 5 * time.Second

	// StalePendingCutoff is how long a transaction may sit in pending before
	// the reconciliation sweep fails it with a storage motive.
	StalePendingCutoff = 15 * time.Minute

	// SweepBatchSize caps how many stale records one sweep pass touches.
	SweepBatchSize = 500
)
