// Package metrics defines and registers the custom Prometheus metrics of the
// budget API. It is the single source of truth for metric names, labels and
// help strings.
//
// Metrics are registered with the default registry on package initialisation;
// HTTP request metrics are added separately by the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "budget"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// SignupsTotal counts signup attempts.
// Label:
//   - result: "success", "validation", "duplicate" or "error"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_signups_total",
		Help:      "Total number of signup attempts, labelled by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "validation", "not_registered", "invalid_credentials" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_logins_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// ── Cascade metrics ───────────────────────────────────────────────────────────

// CascadesTotal counts budget delete cascades.
// Labels:
//   - mode: "atomic" (single Mongo transaction), "two_phase" or "recovery"
//   - result: "ok" or "failed"
var CascadesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cascades_total",
		Help:      "Total number of budget delete cascades, by mode and result.",
	},
	[]string{"mode", "result"},
)

// CascadeTransactionsDeleted counts transactions removed by cascades.
var CascadeTransactionsDeleted = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cascade_transactions_deleted_total",
		Help:      "Total number of transactions removed because their budget was deleted.",
	},
)

// CascadeQueueDepth tracks the number of jobs waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var CascadeQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cascade_queue_depth",
		Help:      "Current number of cascade jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// CascadeJournalPending reports how many cascades the last sweep found journaled.
var CascadeJournalPending = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cascade_journal_pending",
		Help:      "Number of unfinished cascades found in the journal by the last sweep.",
	},
)
