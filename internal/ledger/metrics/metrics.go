package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the ledger engine: transaction volume,
// approval outcomes, solvency refusals, and sync health.
type Metrics struct {
	TransactionsCreated *prometheus.CounterVec
	Approvals           *prometheus.CounterVec
	Rejections          *prometheus.CounterVec
	InsufficientFunds   prometheus.Counter
	RoleDenials         prometheus.Counter
	SyncRollbacks       prometheus.Counter
	SnapshotsApplied    prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		TransactionsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fundledger_transactions_created_total",
			Help: "Transactions created, by type and initial status",
		}, []string{"type", "status"}),
		Approvals: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fundledger_approvals_total",
			Help: "Approval transitions that posted a transaction, by type",
		}, []string{"type"}),
		Rejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fundledger_rejections_total",
			Help: "Rejection transitions, by type and cause",
		}, []string{"type", "cause"}),
		InsufficientFunds: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fundledger_insufficient_funds_total",
			Help: "Expense operations blocked or rejected for insufficient funds",
		}),
		RoleDenials: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fundledger_role_denials_total",
			Help: "Operations denied for insufficient role",
		}),
		SyncRollbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fundledger_sync_rollbacks_total",
			Help: "Optimistic mutations rolled back after a failed remote persist",
		}),
		SnapshotsApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fundledger_snapshots_applied_total",
			Help: "Inbound remote snapshots that replaced local state",
		}),
	}
}
