package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamAttempts counts every outbound HTTP attempt by upstream and outcome.
	UpstreamAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movies_upstream_attempts_total",
			Help: "Total number of outbound upstream HTTP attempts",
		},
		[]string{"upstream", "outcome"},
	)

	// UpstreamRetries counts retries scheduled after a retriable failure.
	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movies_upstream_retries_total",
			Help: "Total number of retries scheduled for upstream calls",
		},
		[]string{"upstream"},
	)

	// UpstreamLatency tracks per-attempt latency.
	UpstreamLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movies_upstream_latency_seconds",
			Help:    "Upstream HTTP attempt latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"upstream"},
	)

	// Aggregations counts GetMovieByID outcomes.
	Aggregations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movies_aggregations_total",
			Help: "Total number of movie aggregations by outcome",
		},
		[]string{"outcome"},
	)
)
