package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncPrincipalCacheHit is a no-op.
func (n *NoopRecorder) IncPrincipalCacheHit() {}

// IncPrincipalCacheMiss is a no-op.
func (n *NoopRecorder) IncPrincipalCacheMiss() {}

// IncEntityWrite is a no-op.
func (n *NoopRecorder) IncEntityWrite(table, op string) {}

// IncNormalizationFailure is a no-op.
func (n *NoopRecorder) IncNormalizationFailure(table string) {}

// ObserveWriteDuration is a no-op.
func (n *NoopRecorder) ObserveWriteDuration(duration time.Duration) {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(status string) {}
