// Package metrics defines and registers all custom Prometheus metrics for the
// roles administration service. It is the single source of truth for metric
// names, labels, and help strings.
//
// All metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "roles"

// ── Workflow metrics ──────────────────────────────────────────────────────────

// OperationsTotal counts finished assign/revoke operations.
// Labels:
//   - op: "assign" or "revoke"
//   - role: the target role key (e.g. "AUDITOR")
//   - outcome: "confirmed", "rolled_back" or "rejected"
var OperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of role operations, by kind, role and outcome.",
	},
	[]string{"op", "role", "outcome"},
)

// RollbacksTotal counts optimistic count changes that had to be reverted.
var RollbacksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rollbacks_total",
		Help:      "Total number of optimistic role count updates rolled back after a failed remote call.",
	},
	[]string{"op", "role"},
)

// NameResolutionsTotal counts name lookups.
// Label:
//   - result: "ok", "not_registered", "invalid", "error" or "cache_hit"
var NameResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "name_resolutions_total",
		Help:      "Total number of name resolutions, labelled by result.",
	},
	[]string{"result"},
)

// RemoteCallDuration measures state-changing contract calls from submission
// to receipt.
var RemoteCallDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "remote_call_duration_seconds",
		Help:      "Duration of state-changing contract calls including confirmation.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
	},
	[]string{"function"},
)

// RoleCount mirrors the locally held (optimistic) member count of each role.
var RoleCount = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "count",
		Help:      "Locally held member count per role.",
	},
	[]string{"role"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of audit records waiting in each worker channel.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit records pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditErrorsTotal counts audit records that could not be persisted.
var AuditErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_errors_total",
		Help:      "Total number of role operation audit records that failed to persist.",
	},
)
