package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Counts(t *testing.T) {
	t.Parallel()
	c := New(WithRegistry(prometheus.NewRegistry()))

	c.ObserveLogin("local", "success")
	c.ObserveLogin("local", "failure")
	c.ObserveLogin("local", "failure")
	c.ObserveIntercepted("session_store")
	c.ObserveFallback()
	c.ObserveStoreOp("load", 2*time.Millisecond, nil)
	c.ObserveStoreOp("save", time.Millisecond, errors.New("down"))

	if got := testutil.ToFloat64(c.logins.WithLabelValues("local", "failure")); got != 2 {
		t.Fatalf("failed logins = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.intercepted.WithLabelValues("session_store")); got != 1 {
		t.Fatalf("intercepted = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.fallbacks); got != 1 {
		t.Fatalf("fallbacks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.storeOps.WithLabelValues("save", "error")); got != 1 {
		t.Fatalf("save errors = %v, want 1", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	t.Parallel()
	c := New()
	c.ObserveFallback()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{"avian_http_fallback_redirects_total 1", "go_goroutines"} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics output lacks %q", want)
		}
	}
}

func TestCollector_Namespace(t *testing.T) {
	t.Parallel()
	c := New(WithNamespace("tower"), WithRegistry(prometheus.NewRegistry()))
	c.ObserveFallback()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, "tower_http_fallback_redirects_total 1") {
		t.Fatalf("namespaced counter missing:\n%s", body)
	}
	if strings.Contains(body, "avian_") {
		t.Fatalf("default namespace leaked")
	}
}
