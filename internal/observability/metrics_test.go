package observability_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JaimeStill/camelrate/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserve(t *testing.T) {
	okBefore := testutil.ToFloat64(observability.ModelCalls.WithLabelValues("test-stage", "ok"))
	errBefore := testutil.ToFloat64(observability.ModelCalls.WithLabelValues("test-stage", "error"))

	observability.Observe("test-stage", time.Now(), nil)
	observability.Observe("test-stage", time.Now(), errors.New("boom"))
	observability.Observe("test-stage", time.Now(), errors.New("boom"))

	if got := testutil.ToFloat64(observability.ModelCalls.WithLabelValues("test-stage", "ok")) - okBefore; got != 1 {
		t.Errorf("ok calls: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(observability.ModelCalls.WithLabelValues("test-stage", "error")) - errBefore; got != 2 {
		t.Errorf("error calls: got %v, want 2", got)
	}
}

func TestMiddlewarePassesThrough(t *testing.T) {
	h := observability.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusTeapot)
	}
	if n := testutil.CollectAndCount(observability.HTTPRequestDuration); n == 0 {
		t.Error("expected at least one observed series")
	}
}
