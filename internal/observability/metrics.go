// Package observability exposes the service's Prometheus instrumentation
// behind small helper functions so callers never touch collector types.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	wktParseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wkt_parse_total",
			Help: "WKT parse attempts by outcome (ok, malformed, unsupported).",
		},
		[]string{"outcome"},
	)

	parseCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parse_cache_results_total",
			Help: "Parse cache lookups by outcome (hit, miss, stale).",
		},
		[]string{"outcome"},
	)

	formulaRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formula_requests_total",
			Help: "Formula generations by tool id and outcome.",
		},
		[]string{"tool", "outcome"},
	)

	storeOpSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feature_store_op_seconds",
			Help:    "Latency of feature store operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"op", "status"},
	)

	invalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invalidations_total",
			Help: "Processed record-change events by op and status.",
		},
		[]string{"op", "status"},
	)

	consumerErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invalidation_consumer_errors_total",
			Help: "Kafka consumer errors by kind.",
		},
		[]string{"kind"},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func IncParse(outcome string) {
	wktParseTotal.WithLabelValues(outcome).Inc()
}

func IncParseCache(outcome string) {
	parseCacheTotal.WithLabelValues(outcome).Inc()
}

func IncFormula(tool, outcome string) {
	formulaRequestsTotal.WithLabelValues(tool, outcome).Inc()
}

func ObserveStoreOp(op string, err error, d time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	storeOpSeconds.WithLabelValues(op, status).Observe(d.Seconds())
}

func ObserveInvalidation(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	invalidationsTotal.WithLabelValues(op, status).Inc()
}

func IncConsumerError(kind string) {
	consumerErrorsTotal.WithLabelValues(kind).Inc()
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}
