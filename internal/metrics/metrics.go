// Package metrics holds the Prometheus collectors shared across the counselor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "counselor_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "counselor_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// AI backend calls by provider, operation and outcome (ok, error, timeout).
	AIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "counselor_ai_requests_total",
			Help: "Total number of AI backend calls",
		},
		[]string{"provider", "operation", "outcome"},
	)

	AIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "counselor_ai_request_duration_seconds",
			Help:    "AI backend call duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"provider", "operation"},
	)

	AIFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "counselor_ai_fallbacks_total",
			Help: "Replies or titles replaced by the built-in fallback",
		},
		[]string{"operation"},
	)

	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "counselor_messages_total",
			Help: "Messages persisted by role",
		},
		[]string{"role"},
	)

	SessionsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "counselor_sessions_created_total",
			Help: "Chat sessions created",
		},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "counselor_rate_limited_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"limiter"},
	)

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "counselor_errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"type"},
	)
)
