// Package metrics registers the engine's Prometheus instruments on the
// default registry. The HTTP adapter exposes them under /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NodeVisits counts forward navigations by node type.
	NodeVisits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fichaflow_node_visits_total",
			Help: "Forward navigations, labeled by node type.",
		},
		[]string{"type"},
	)

	// Saves counts autosave and flush writes that reached the store.
	Saves = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fichaflow_entry_saves_total",
			Help: "Successful entry snapshot writes.",
		},
	)

	// SaveFailures counts writes the store rejected.
	SaveFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fichaflow_entry_save_failures_total",
			Help: "Entry snapshot writes that failed.",
		},
	)

	// Finalizations counts completed finalize calls.
	Finalizations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fichaflow_entry_finalizations_total",
			Help: "Entries finalized.",
		},
	)
)
