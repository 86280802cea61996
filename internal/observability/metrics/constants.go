// Package metrics provides Prometheus collectors for the review core and its datastore.
package metrics

// Outcome label values shared by the review counters.
const (
	OutcomeLeased     = "leased"
	OutcomeResumed    = "resumed"
	OutcomeNoItem     = "no_item"
	OutcomeVanished   = "vanished"
	OutcomeCommitted  = "committed"
	OutcomeConflict   = "conflict"
	OutcomeNotFound   = "not_found"
	OutcomeLockWait   = "lock_timeout"
	OutcomeError      = "error"
	OutcomeRegistered = "registered"
	OutcomeDuplicate  = "duplicate"
)

// Operation label values.
const (
	OpAcquire  = "acquire"
	OpCommit   = "commit"
	OpHistory  = "history"
	OpRegister = "register"
)

// Transaction status label values.
const (
	TxCommitted  = "committed"
	TxRolledBack = "rollback"
)

// Histogram bucket parameters.
const (
	// BucketStart1ms is the first bucket bound in seconds.
	BucketStart1ms = 0.001
	// BucketFactor2 doubles each bucket.
	BucketFactor2 = 2
	// BucketCount12 covers 1ms to ~2s.
	BucketCount12 = 12
	// BucketCount8 is used for small counts such as candidates tried.
	BucketCount8 = 8
)
