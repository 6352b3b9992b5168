// Package metrics defines and registers all custom Prometheus metrics for the
// MediSage client core. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "medisage"

// APIRequestsTotal counts requests issued to the remote service.
// Label:
//   - operation: "login", "register", "upload_report", "list_users",
//     "list_reports", "list_user_reports"
var APIRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of requests issued to the remote MediSage API.",
	},
	[]string{"operation"},
)

// APIRequestErrorsTotal counts failed requests.
// Labels:
//   - operation: as above
//   - reason: "transport" (request never completed), "status" (non-2xx), or
//     "decode" (unparseable success body)
var APIRequestErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_request_errors_total",
		Help:      "Total number of remote API requests that failed.",
	},
	[]string{"operation", "reason"},
)

// APIRequestDuration measures wall-clock time per remote call.
var APIRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of remote API calls from issue to settle.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// StaleResponsesDroppedTotal counts responses discarded at merge time because
// the session that issued them was no longer current.
var StaleResponsesDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_responses_dropped_total",
		Help:      "Total number of late responses dropped by the session tag check.",
	},
)

// UploadsTotal counts upload workflow outcomes.
// Label:
//   - result: "success", "error", or "rejected" (failed client-side validation)
var UploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Total number of report upload attempts, by outcome.",
	},
	[]string{"result"},
)
