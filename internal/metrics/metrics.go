// Package metrics defines and registers all custom Prometheus metrics for
// worklog. It is the single source of truth for metric names, labels, and
// help strings.
//
// There is no scrape endpoint; the CLI flushes the default registry to a
// node_exporter textfile with Flush when a metrics file is configured.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "worklog"

// ── Directory metrics ─────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "invalid_credentials"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts sign-up attempts.
// Label:
//   - result: "success", "duplicate_username" or "invalid_input"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// ── Ledger metrics ────────────────────────────────────────────────────────────

// RecordMutationsTotal counts successful ledger mutations.
// Label:
//   - op: "add", "update" or "delete"
var RecordMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_mutations_total",
		Help:      "Total number of record mutations persisted, by operation.",
	},
	[]string{"op"},
)

// ── Storage metrics ───────────────────────────────────────────────────────────

// StateRecoveriesTotal counts persisted documents that were absent or
// malformed and replaced by their defaults on load.
// Labels:
//   - key: the document key (e.g. "app_users")
//   - reason: "absent" or "malformed"
var StateRecoveriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "state_recoveries_total",
		Help:      "Persisted documents replaced by defaults on load.",
	},
	[]string{"key", "reason"},
)

// StoreWriteDuration measures how long a full-collection write takes.
// Label:
//   - key: the document key
var StoreWriteDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_write_duration_seconds",
		Help:      "Duration of persisting one document to the key-value store.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"key"},
)

// Flush writes the default registry to path in the textfile exposition
// format.
func Flush(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
