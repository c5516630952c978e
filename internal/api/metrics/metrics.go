// Package metrics defines and registers all custom Prometheus metrics for
// the access engine. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "access_engine"

// DecisionsTotal counts capability decisions by outcome.
// Label:
//   - outcome: "allow" or "deny"
var DecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decisions_total",
		Help:      "Total number of capability decisions, by outcome.",
	},
	[]string{"outcome"},
)

// BlockedLookupsTotal counts fetches denied by an active negative-access
// entry.
var BlockedLookupsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blocked_lookups_total",
		Help:      "Total number of resource fetches denied by a negative-access entry.",
	},
)

// NotesFilteredTotal counts notes withheld by the cross-program consent
// filter.
var NotesFilteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notes_filtered_total",
		Help:      "Total number of case notes withheld by the consent filter.",
	},
)

// AuditWriteFailuresTotal counts failed audit appends, both fatal and
// side-activity ones.
var AuditWriteFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_write_failures_total",
		Help:      "Total number of audit records that could not be appended.",
	},
)

// DecryptionErrorsTotal counts attribute values that no keyring entry could
// open.
var DecryptionErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decryption_errors_total",
		Help:      "Total number of field decryption failures.",
	},
)

// DVRequestsTotal counts DV-safety workflow transitions.
// Label:
//   - action: "flag_set", "requested", "approved", or "rejected"
var DVRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dv_requests_total",
		Help:      "Total number of DV-safety flag workflow transitions, by action.",
	},
	[]string{"action"},
)
