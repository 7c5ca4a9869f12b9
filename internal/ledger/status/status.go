// Package status decides the initial lifecycle state of a newly created
// transaction.
package status

import (
	"fundledger/internal/ledger/models"
	"fundledger/pkg/domain"
)

// Decide returns the initial status for a transaction created by actorRole
// under the organization's approval policy: posted immediately when approvals
// are disabled or the actor is an administrator, pending otherwise.
//
// Evaluated exactly once, at creation time. Flipping the approval policy
// later never retroactively re-statuses existing transactions.
func Decide(actorRole domain.Role, approvalsEnabled bool) models.TransactionStatus {
	if !approvalsEnabled || actorRole.IsAdmin() {
		return models.StatusPosted
	}
	return models.StatusPending
}
