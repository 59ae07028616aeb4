// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Write operations recorded by the persistence layer.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Login outcomes.
const (
	LoginSuccess = "success"
	LoginFailed  = "failed"
	LoginLimited = "limited"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Principal cache metrics
	IncPrincipalCacheHit()
	IncPrincipalCacheMiss()

	// Persistence metrics
	IncEntityWrite(table, op string)
	IncNormalizationFailure(table string)
	ObserveWriteDuration(duration time.Duration)

	// Auth metrics
	IncLogin(status string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
