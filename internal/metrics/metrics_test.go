package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAttemptAndResolutionCounters(t *testing.T) {
	m := New()
	m.AttemptFinished("gemini-2.5-flash", "parse", 120*time.Millisecond)
	m.AttemptFinished("gemini-2.0-flash", "success", 80*time.Millisecond)
	m.ResolutionFinished("success")

	if got := testutil.ToFloat64(m.AIAttempts.WithLabelValues("gemini-2.5-flash", "parse")); got != 1 {
		t.Fatalf("parse attempts = %v", got)
	}
	if got := testutil.ToFloat64(m.AIResolutions.WithLabelValues("success")); got != 1 {
		t.Fatalf("resolutions = %v", got)
	}
	if got := testutil.CollectAndCount(m.AIAttemptLatency); got != 2 {
		t.Fatalf("latency series = %d", got)
	}
}

func TestObserveRequestAndHandler(t *testing.T) {
	m := New()
	m.SetConfigured(true)
	m.ObserveRequest("/api/items/{id}", 404, time.Millisecond)
	m.ObserveRequest("", 200, time.Millisecond)

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("unmatched", "200")); got != 1 {
		t.Fatalf("unmatched requests = %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`varologs_http_requests_total{route="/api/items/{id}",status="404"} 1`,
		"varologs_ai_configured 1",
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}
