// Package metrics defines and registers all custom Prometheus metrics for the
// auth service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on import via
// promauto and exposed on /metrics next to the echo request metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auth"

// ── Account lifecycle ─────────────────────────────────────────────────────────

// OperationsTotal counts lifecycle operations by outcome.
// Labels:
//   - operation: "register", "verify", "login", "forgot_password", "reset_password", "delete_user"
//   - outcome: "success" or the short error kind (e.g. "invalid_credentials", "code_mismatch")
var OperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of account lifecycle operations, by outcome.",
	},
	[]string{"operation", "outcome"},
)

// ── Notifications ─────────────────────────────────────────────────────────────

// NotificationsTotal counts notification deliveries.
// Labels:
//   - kind: "verification" or "password_reset"
//   - result: "sent", "failed" or "dropped" (queue full)
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notifications handled by the mail dispatcher.",
	},
	[]string{"kind", "result"},
)

// MailQueueDepth tracks the number of notifications waiting in each worker channel.
var MailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mail_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationDuration measures a single delivery attempt.
var NotificationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Duration of a single notification delivery attempt.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"kind"},
)

// ── Admin ─────────────────────────────────────────────────────────────────────

// StatsCacheTotal counts dashboard cache lookups.
// Label:
//   - result: "hit" or "miss"
var StatsCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stats_cache_total",
		Help:      "Total number of admin stats cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)
