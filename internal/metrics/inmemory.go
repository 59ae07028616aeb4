package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// WriteKey labels an entity write counter.
type WriteKey struct {
	Table string
	Op    string
}

// Snapshot captures current in-memory counters.
type Snapshot struct {
	PrincipalCacheHits    uint64
	PrincipalCacheMisses  uint64
	WriteDurationCount    uint64
	WriteDurationTotalNs  int64
	Writes                map[WriteKey]uint64
	NormalizationFailures map[string]uint64
	Logins                map[string]uint64
}

// SortedWrites returns the write keys in table then op order.
func (s Snapshot) SortedWrites() []WriteKey {
	keys := make([]WriteKey, 0, len(s.Writes))
	for k := range s.Writes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Table != keys[j].Table {
			return keys[i].Table < keys[j].Table
		}
		return keys[i].Op < keys[j].Op
	})
	return keys
}

// InMemoryRecorder stores metrics in memory. It backs the /metrics endpoint and tests.
type InMemoryRecorder struct {
	principalCacheHits   uint64
	principalCacheMisses uint64
	writeDurationCount   uint64
	writeDurationTotalNs int64

	mu                    sync.Mutex
	writes                map[WriteKey]uint64
	normalizationFailures map[string]uint64
	logins                map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		writes:                make(map[WriteKey]uint64),
		normalizationFailures: make(map[string]uint64),
		logins:                make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	snap := Snapshot{
		PrincipalCacheHits:    atomic.LoadUint64(&m.principalCacheHits),
		PrincipalCacheMisses:  atomic.LoadUint64(&m.principalCacheMisses),
		WriteDurationCount:    atomic.LoadUint64(&m.writeDurationCount),
		WriteDurationTotalNs:  atomic.LoadInt64(&m.writeDurationTotalNs),
		Writes:                make(map[WriteKey]uint64),
		NormalizationFailures: make(map[string]uint64),
		Logins:                make(map[string]uint64),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.writes {
		snap.Writes[k] = v
	}
	for k, v := range m.normalizationFailures {
		snap.NormalizationFailures[k] = v
	}
	for k, v := range m.logins {
		snap.Logins[k] = v
	}
	return snap
}

// IncPrincipalCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncPrincipalCacheHit() {
	atomic.AddUint64(&m.principalCacheHits, 1)
}

// IncPrincipalCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncPrincipalCacheMiss() {
	atomic.AddUint64(&m.principalCacheMisses, 1)
}

// IncEntityWrite counts a successful write to table.
func (m *InMemoryRecorder) IncEntityWrite(table, op string) {
	m.mu.Lock()
	m.writes[WriteKey{Table: table, Op: op}]++
	m.mu.Unlock()
}

// IncNormalizationFailure counts a write aborted by the pre-save hook.
func (m *InMemoryRecorder) IncNormalizationFailure(table string) {
	m.mu.Lock()
	m.normalizationFailures[table]++
	m.mu.Unlock()
}

// ObserveWriteDuration records write duration.
func (m *InMemoryRecorder) ObserveWriteDuration(duration time.Duration) {
	atomic.AddUint64(&m.writeDurationCount, 1)
	atomic.AddInt64(&m.writeDurationTotalNs, duration.Nanoseconds())
}

// IncLogin counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLogin(status string) {
	m.mu.Lock()
	m.logins[status]++
	m.mu.Unlock()
}
