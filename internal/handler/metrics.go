package handler

import (
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/dsgallups/rust-atlanta/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "atlanta_principal_cache_hits_total %d\n", snap.PrincipalCacheHits)
	writeMetric(w, "atlanta_principal_cache_misses_total %d\n", snap.PrincipalCacheMisses)

	for _, k := range snap.SortedWrites() {
		writeMetric(w, "atlanta_entity_writes_total{table=%q,op=%q} %d\n", k.Table, k.Op, snap.Writes[k])
	}
	for _, table := range sortedKeys(snap.NormalizationFailures) {
		writeMetric(w, "atlanta_normalization_failures_total{table=%q} %d\n", table, snap.NormalizationFailures[table])
	}
	writeMetric(w, "atlanta_write_duration_seconds_count %d\n", snap.WriteDurationCount)
	writeMetric(w, "atlanta_write_duration_seconds_sum %.6f\n", float64(snap.WriteDurationTotalNs)/1e9)

	for _, status := range sortedKeys(snap.Logins) {
		writeMetric(w, "atlanta_logins_total{status=%q} %d\n", status, snap.Logins[status])
	}
}

func sortedKeys(m map[string]uint64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeMetric(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
