// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	// HTTPInFlight counts requests being served
	HTTPInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wallet_booking",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	// HTTPRequests counts finished requests by route and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wallet_booking",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPDuration observes request latency by route
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wallet_booking",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	// BalanceOps counts balance mutations by operation, coin and outcome
	BalanceOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wallet_booking",
			Subsystem: "wallet",
			Name:      "balance_operations_total",
			Help:      "Balance mutations by operation, coin and result.",
		},
		[]string{"operation", "coin", "result"},
	)

	// Bookings counts flight booking attempts by outcome
	Bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wallet_booking",
			Subsystem: "flights",
			Name:      "bookings_total",
			Help:      "Flight booking and cancellation attempts by result.",
		},
		[]string{"operation", "result"},
	)
)

func init() {
	Registry.MustRegister(
		HTTPInFlight,
		HTTPRequests,
		HTTPDuration,
		BalanceOps,
		Bookings,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Result labels an outcome for counters
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
