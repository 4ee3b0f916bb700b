// Package metrics defines and registers all custom Prometheus metrics for the
// formdesk dashboard gateway. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dashboard"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SessionRestoresTotal counts attempts to restore a session from persistence.
// Label:
//   - result: "restored", "empty" or "corrupt"
var SessionRestoresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_restores_total",
		Help:      "Total number of session restore attempts, by result.",
	},
	[]string{"result"},
)

// ForcedLogoutsTotal counts sessions terminated without an explicit user
// logout.
// Label:
//   - reason: "expired", "unauthorized" or "inactive"
var ForcedLogoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forced_logouts_total",
		Help:      "Total number of forced logouts, by reason.",
	},
	[]string{"reason"},
)

// ── Upstream gateway metrics ──────────────────────────────────────────────────

// UpstreamRequestsTotal counts requests dispatched to the upstream API.
// Labels:
//   - method: HTTP method
//   - status: numeric status code, or "error" on transport failure
var UpstreamRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of upstream API requests, by method and status.",
	},
	[]string{"method", "status"},
)

// UpstreamRequestDuration measures upstream round-trip time.
// Label:
//   - method: HTTP method
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of upstream API round-trips.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsReceivedTotal counts push events merged into local state.
// Label:
//   - event: the push event name (e.g. "notification.sent")
var NotificationsReceivedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_received_total",
		Help:      "Total number of push events merged into local state, by event name.",
	},
	[]string{"event"},
)

// NotificationsDedupTotal counts push deduplication decisions.
// Label:
//   - result: "hit" (duplicate, dropped) or "miss" (new, merged)
var NotificationsDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dedup_total",
		Help:      "Total number of push deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)
