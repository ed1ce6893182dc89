// Package observability exposes the service's Prometheus collectors.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ModelCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camelrate",
		Name:      "model_calls_total",
		Help:      "Vision model calls by pipeline stage and outcome",
	}, []string{"stage", "outcome"})

	ModelCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "camelrate",
		Name:      "model_call_duration_seconds",
		Help:      "Duration of vision model calls",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
	}, []string{"stage"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camelrate",
		Name:      "cache_lookups_total",
		Help:      "Result cache lookups by result",
	}, []string{"result"})

	Ratings = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camelrate",
		Name:      "ratings_total",
		Help:      "Completed rating requests by outcome",
	}, []string{"outcome"})

	FingerprintFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "camelrate",
		Name:      "fingerprint_failures_total",
		Help:      "Images that could not be fingerprinted",
	})

	AuditRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camelrate",
		Name:      "audit_records_total",
		Help:      "Audit records handled by outcome",
	}, []string{"outcome"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "camelrate",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "status"})
)

// Observe records stage latency and outcome for a single model call.
func Observe(stage string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ModelCalls.WithLabelValues(stage, outcome).Inc()
	ModelCallDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware records request duration. Paths are omitted from labels to keep
// cardinality bounded.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			HTTPRequestDuration.
				WithLabelValues(r.Method, strconv.Itoa(sw.status)).
				Observe(time.Since(start).Seconds())
		})
	}
}
