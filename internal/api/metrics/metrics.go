// Package metrics defines and registers all custom Prometheus metrics for
// the FitTrack API. It is the single source of truth for metric names,
// labels, and help strings. Metrics register with the default registry at
// import time via promauto; expose them with promhttp on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fittrack"

// HTTPRequestsTotal counts handled HTTP requests.
// Labels:
//   - method: HTTP verb
//   - path: matched route template (e.g. "/api/v1/workouts/:id")
//   - status: response status code
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests handled, by route and status.",
	},
	[]string{"method", "path", "status"},
)

// HTTPRequestDuration measures wall time per request.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP request handling.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "path"},
)

// WorkoutsCreatedTotal counts new workout catalog entries.
var WorkoutsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "workouts_created_total",
		Help:      "Total number of workouts created.",
	},
)

// LogsCreatedTotal counts new session logs, labelled by whether they were
// shared to the community feed at creation time.
var LogsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logs_created_total",
		Help:      "Total number of workout logs created, by initial shared flag.",
	},
	[]string{"shared"},
)
