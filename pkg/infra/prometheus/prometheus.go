package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

// Latency buckets in milliseconds.
var latencyBuckets = []float64{
	1, 2, 5, // in-process responses
	10, 25, 50, // normal handlers
	100, 250, 500, // slow handlers
	1000, 2500, 5000, // pathological
}

var (
	RequestTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "corsgate_requests_total",
			Help: "Total number of requests processed",
		},
		[]string{"method", "status"},
	)

	RequestLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "corsgate_latency_ms",
			Help:    "Request latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"method"},
	)

	PreflightTotal = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "corsgate_preflight_requests_total",
			Help: "Total number of short-circuited CORS preflight requests",
		},
	)

	FallbackResponseTotal = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "corsgate_fallback_responses_total",
			Help: "Total number of error responses synthesized after a downstream fault",
		},
	)
)

// Registry exposes the private registry for the metrics endpoint.
func Registry() *prometheus.Registry {
	return registry
}
