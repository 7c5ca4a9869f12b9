// Package balance derives wallet, funder, and project aggregates by folding
// over the full transaction set of a snapshot. Everything is recomputed fresh
// on every call; there are no incremental counters to drift.
//
// Wallet-level and project-level accounting are deliberately not reconciled
// against each other: a project's available figure is computed purely from
// project-scoped postings and may disagree with its owning funder's wallet
// balance.
package balance

import (
	"github.com/shopspring/decimal"

	"fundledger/internal/ledger/models"
	"fundledger/internal/ledger/wallet"
	"fundledger/pkg/domain"
)

// WalletAvailable returns posted incomes minus posted expenses resolved to w.
// Pending and rejected transactions are excluded from every balance.
func WalletAvailable(doc *models.OrgDocument, w domain.WalletID) decimal.Decimal {
	return walletAvailable(doc, w, nil)
}

// WalletAvailableExcluding computes the same figure with one transaction left
// out, which is how approval-time solvency checks avoid counting the expense
// under review against itself.
func WalletAvailableExcluding(doc *models.OrgDocument, w domain.WalletID, exclude domain.TransactionID) decimal.Decimal {
	return walletAvailable(doc, w, &exclude)
}

func walletAvailable(doc *models.OrgDocument, w domain.WalletID, exclude *domain.TransactionID) decimal.Decimal {
	total := decimal.Zero
	for i := range doc.Incomes {
		tx := &doc.Incomes[i]
		if skip(tx, exclude) || !tx.IsPosted() {
			continue
		}
		if wallet.Resolve(tx, doc.Projects) == w {
			total = total.Add(tx.Amount)
		}
	}
	for i := range doc.Expenses {
		tx := &doc.Expenses[i]
		if skip(tx, exclude) || !tx.IsPosted() {
			continue
		}
		if wallet.Resolve(tx, doc.Projects) == w {
			total = total.Sub(tx.Amount)
		}
	}
	return total
}

func skip(tx *models.Transaction, exclude *domain.TransactionID) bool {
	return exclude != nil && tx.ID == *exclude
}

// FunderSummary is the funder rollup: the wallet's available cash plus the
// summed allocation of the projects it owns. Allocation is a budget figure,
// never commingled with available cash.
type FunderSummary struct {
	FunderID  domain.FunderID `json:"funderId"`
	Available decimal.Decimal `json:"available"`
	Allocated decimal.Decimal `json:"allocated"`
}

func FunderRollup(doc *models.OrgDocument, id domain.FunderID) FunderSummary {
	w := domain.WalletForFunder(id)
	allocated := decimal.Zero
	for i := range doc.Projects {
		if doc.Projects[i].Owner.Wallet() == w {
			allocated = allocated.Add(doc.Projects[i].Allocation)
		}
	}
	return FunderSummary{
		FunderID:  id,
		Available: WalletAvailable(doc, w),
		Allocated: allocated,
	}
}

// ProjectSummary is the project rollup, scoped to transactions that reference
// the project directly. Available here is income minus expenses regardless of
// the owning funder's wallet-level balance, and may go negative.
type ProjectSummary struct {
	ProjectID  domain.ProjectID `json:"projectId"`
	Income     decimal.Decimal  `json:"income"`
	Expenses   decimal.Decimal  `json:"expenses"`
	Available  decimal.Decimal  `json:"available"`
	Allocation decimal.Decimal  `json:"allocation"`
}

func ProjectRollup(doc *models.OrgDocument, id domain.ProjectID) ProjectSummary {
	income := decimal.Zero
	expenses := decimal.Zero
	for i := range doc.Incomes {
		tx := &doc.Incomes[i]
		if tx.IsPosted() && tx.ProjectID != nil && *tx.ProjectID == id {
			income = income.Add(tx.Amount)
		}
	}
	for i := range doc.Expenses {
		tx := &doc.Expenses[i]
		if tx.IsPosted() && tx.ProjectID != nil && *tx.ProjectID == id {
			expenses = expenses.Add(tx.Amount)
		}
	}
	summary := ProjectSummary{
		ProjectID: id,
		Income:    income,
		Expenses:  expenses,
		Available: income.Sub(expenses),
	}
	if p := doc.Project(id); p != nil {
		summary.Allocation = p.Allocation
	}
	return summary
}
