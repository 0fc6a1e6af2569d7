package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decisiontrace_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "decisiontrace_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	sessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "decisiontrace_sessions_started_total",
			Help: "Total number of sessions started",
		},
	)

	responsesRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "decisiontrace_responses_recorded_total",
			Help: "Total number of scenario responses recorded",
		},
	)

	tracesExported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decisiontrace_traces_exported_total",
			Help: "Total number of session trace exports",
		},
		[]string{"mode"},
	)

	analysesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decisiontrace_analyses_completed_total",
			Help: "Total number of thematic analyses persisted",
		},
		[]string{"outcome"},
	)
)

// RecordSessionStarted increments the session counter
func RecordSessionStarted() {
	sessionsStarted.Inc()
}

// RecordResponseRecorded increments the response counter
func RecordResponseRecorded() {
	responsesRecorded.Inc()
}

// RecordTraceExport counts an export; mode is "sync" or "async"
func RecordTraceExport(mode string) {
	tracesExported.WithLabelValues(mode).Inc()
}

// RecordAnalysis counts an analysis; outcome is "ok", "empty" or "degraded"
func RecordAnalysis(outcome string) {
	analysesCompleted.WithLabelValues(outcome).Inc()
}

// Metrics creates an HTTP metrics middleware
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// Route pattern, not the raw path, to bound cardinality.
		path := c.Route().Path
		method := c.Method()
		status := strconv.Itoa(c.Response().StatusCode())

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

		return err
	}
}
