// Package metrics defines all custom Prometheus metrics for the complaint
// portal. It is the single source of truth for metric names, labels, and help
// strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and exposed on /metrics next to the echoprometheus HTTP
// metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "complaint_portal"

// ── Complaint metrics ─────────────────────────────────────────────────────────

// ComplaintsCreatedTotal counts complaints filed by citizens.
// Label:
//   - category: the complaint category as submitted (e.g. "Roads")
var ComplaintsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "complaints_created_total",
		Help:      "Total number of complaints filed, by category.",
	},
	[]string{"category"},
)

// ComplaintStatusChangesTotal counts committed status updates.
// Label:
//   - status: the new status (e.g. "resolved")
var ComplaintStatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "complaint_status_changes_total",
		Help:      "Total number of complaint status updates persisted.",
	},
	[]string{"status"},
)

// NotificationsDedupTotal counts status notification guard decisions.
// Label:
//   - result: "miss" (first delivery), "hit" (duplicate, skipped) or "error"
var NotificationsDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dedup_total",
		Help:      "Total number of notification deduplication checks, labelled by result.",
	},
	[]string{"result"},
)

// ── Realtime metrics ──────────────────────────────────────────────────────────

// RealtimeConnections tracks currently open websocket connections.
var RealtimeConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "realtime_connections",
		Help:      "Current number of open realtime connections.",
	},
)

// RealtimeFramesTotal counts frames handed to client send buffers.
// Labels:
//   - event: the envelope event name
//   - target: "all" for broadcasts, "one" for targeted sends
var RealtimeFramesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_frames_total",
		Help:      "Total number of realtime frames queued for delivery.",
	},
	[]string{"event", "target"},
)

// RealtimeDroppedFramesTotal counts frames dropped because a client buffer was full.
var RealtimeDroppedFramesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_dropped_frames_total",
		Help:      "Total number of realtime frames dropped for slow clients.",
	},
)

// ── Mail metrics ──────────────────────────────────────────────────────────────

// MailTotal counts emails by outcome.
// Label:
//   - result: "queued", "sent", "failed" or "dropped"
var MailTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_total",
		Help:      "Total number of emails, labelled by delivery outcome.",
	},
	[]string{"result"},
)

// MailQueueDepth tracks the number of emails waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var MailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mail_queue_depth",
		Help:      "Current number of emails pending in each mail worker channel.",
	},
	[]string{"worker_id"},
)

// MailSendDuration measures a single SMTP delivery.
// Label:
//   - result: "sent" or "failed"
var MailSendDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "mail_send_duration_seconds",
		Help:      "Duration of a single email delivery attempt.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Labels:
//   - role: the role the client asked for ("user" or "admin")
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by requested role and result.",
	},
	[]string{"role", "result"},
)
