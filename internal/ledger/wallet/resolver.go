// Package wallet holds the single wallet-resolution function. Balance
// computation and the approval workflow both route through Resolve; any
// divergence between the two would be a correctness bug, so inline
// reimplementation elsewhere is forbidden.
package wallet

import (
	"fundledger/internal/ledger/models"
	"fundledger/pkg/domain"
)

// Resolve maps a transaction to the wallet it debits or credits.
//
// Deterministic and total: an explicit wallet override wins; otherwise the
// referenced project's owning wallet; otherwise the organization sentinel.
// Unknown project references also fall through to the sentinel rather than
// failing, since local state may be stale relative to the next snapshot.
func Resolve(tx *models.Transaction, projects []models.Project) domain.WalletID {
	if !tx.Wallet.IsZero() {
		return tx.Wallet.Wallet()
	}
	if tx.ProjectID != nil {
		for i := range projects {
			if projects[i].ID == *tx.ProjectID {
				if owner := projects[i].Owner; !owner.IsZero() {
					return owner.Wallet()
				}
				return domain.OrgWallet
			}
		}
	}
	return domain.OrgWallet
}
