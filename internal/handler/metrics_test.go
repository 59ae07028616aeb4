package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dsgallups/rust-atlanta/internal/metrics"
)

func TestMetricsHandler(t *testing.T) {
	rec := metrics.NewInMemory()
	rec.IncPrincipalCacheHit()
	rec.IncEntityWrite("users", metrics.OpCreate)
	rec.IncEntityWrite("user_auths", metrics.OpCreate)
	rec.IncNormalizationFailure("user_auths")
	rec.ObserveWriteDuration(1500 * time.Microsecond)
	rec.IncLogin(metrics.LoginSuccess)

	w := httptest.NewRecorder()
	NewMetricsHandler(rec).Metrics(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, line := range []string{
		"atlanta_principal_cache_hits_total 1",
		`atlanta_entity_writes_total{table="user_auths",op="create"} 1`,
		`atlanta_entity_writes_total{table="users",op="create"} 1`,
		`atlanta_normalization_failures_total{table="user_auths"} 1`,
		"atlanta_write_duration_seconds_count 1",
		"atlanta_write_duration_seconds_sum 0.001500",
		`atlanta_logins_total{status="success"} 1`,
	} {
		if !strings.Contains(body, line) {
			t.Errorf("missing %q in:\n%s", line, body)
		}
	}
	if strings.Index(body, `table="user_auths"`) > strings.Index(body, `table="users"`) {
		t.Errorf("write series are not sorted:\n%s", body)
	}
}

func TestMetricsHandler_NoSnapshotter(t *testing.T) {
	w := httptest.NewRecorder()
	NewMetricsHandler(nil).Metrics(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}
