package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestInMemoryRecorder_Counters(t *testing.T) {
	m := NewInMemory()

	m.IncPrincipalCacheHit()
	m.IncPrincipalCacheHit()
	m.IncPrincipalCacheMiss()
	m.IncEntityWrite("projects", OpCreate)
	m.IncEntityWrite("projects", OpCreate)
	m.IncEntityWrite("news", OpDelete)
	m.IncNormalizationFailure("user_auths")
	m.ObserveWriteDuration(1500 * time.Millisecond)
	m.IncLogin(LoginLimited)

	snap := m.Snapshot()
	if snap.PrincipalCacheHits != 2 || snap.PrincipalCacheMisses != 1 {
		t.Fatalf("cache counters = %d/%d, want 2/1", snap.PrincipalCacheHits, snap.PrincipalCacheMisses)
	}
	if got := snap.Writes[WriteKey{Table: "projects", Op: OpCreate}]; got != 2 {
		t.Errorf("projects create = %d, want 2", got)
	}
	if got := snap.NormalizationFailures["user_auths"]; got != 1 {
		t.Errorf("user_auths normalization failures = %d, want 1", got)
	}
	if snap.WriteDurationCount != 1 || snap.WriteDurationTotalNs != int64(1500*time.Millisecond) {
		t.Errorf("write duration = %d/%d", snap.WriteDurationCount, snap.WriteDurationTotalNs)
	}
	if got := snap.Logins[LoginLimited]; got != 1 {
		t.Errorf("limited logins = %d, want 1", got)
	}

	keys := snap.SortedWrites()
	if len(keys) != 2 || keys[0].Table != "news" || keys[1].Table != "projects" {
		t.Errorf("SortedWrites = %+v", keys)
	}
}

func TestInMemoryRecorder_SnapshotIsCopy(t *testing.T) {
	m := NewInMemory()
	m.IncEntityWrite("events", OpUpdate)

	snap := m.Snapshot()
	m.IncEntityWrite("events", OpUpdate)

	if got := snap.Writes[WriteKey{Table: "events", Op: OpUpdate}]; got != 1 {
		t.Fatalf("snapshot changed after later write: %d", got)
	}
}

func TestInMemoryRecorder_Concurrent(t *testing.T) {
	m := NewInMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncEntityWrite("users", OpCreate)
			m.IncPrincipalCacheMiss()
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	if got := snap.Writes[WriteKey{Table: "users", Op: OpCreate}]; got != 50 {
		t.Errorf("users create = %d, want 50", got)
	}
	if snap.PrincipalCacheMisses != 50 {
		t.Errorf("cache misses = %d, want 50", snap.PrincipalCacheMisses)
	}
}
