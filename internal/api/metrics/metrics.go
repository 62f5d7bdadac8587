// Package metrics defines and registers all custom Prometheus metrics for
// the portfolio API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry via promauto at package
// load; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portfolio"

// ── Content metrics ───────────────────────────────────────────────────────────

// ContentMutationsTotal counts successful admin mutations.
// Labels:
//   - entity: "project" or "article"
//   - op: "create", "update", or "delete"
var ContentMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "content_mutations_total",
		Help:      "Total number of successful content mutations, by entity and operation.",
	},
	[]string{"entity", "op"},
)

// ContentMutationErrorsTotal counts failed admin mutations.
// Labels:
//   - entity: "project" or "article"
//   - op: "create", "update", or "delete"
var ContentMutationErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "content_mutation_errors_total",
		Help:      "Total number of failed content mutations, by entity and operation.",
	},
	[]string{"entity", "op"},
)

// ── Comment metrics ───────────────────────────────────────────────────────────

// CommentsSubmittedTotal counts comment submissions.
// Label:
//   - result: "accepted" (inserted), "rejected" (validation failure), or
//     "failed" (store error)
var CommentsSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comments_submitted_total",
		Help:      "Total number of public comment submissions, by result.",
	},
	[]string{"result"},
)

// LiveSubscribers tracks the number of open live-feed connections.
var LiveSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "live_subscribers",
		Help:      "Current number of open live comment feed connections.",
	},
)
