package models

import (
	"time"

	"github.com/shopspring/decimal"

	"fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
)

type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

type TransactionStatus string

const (
	StatusPending  TransactionStatus = "pending"
	StatusPosted   TransactionStatus = "posted"
	StatusRejected TransactionStatus = "rejected"
)

// Transaction is a single income or expense entry.
//
// Invariants:
//   - Amount is non-negative
//   - Status transitions: pending → posted, pending → rejected; posted and
//     rejected are terminal (no un-posting)
//   - Only posted transactions count toward any balance
//   - Status is mutated exclusively by the approval workflow
//
// The effective wallet is derived, never stored: Wallet if set, else the
// owning project's funder wallet, else the organization sentinel. That
// resolution lives in internal/ledger/wallet and must not be reimplemented
// inline.
type Transaction struct {
	ID             domain.TransactionID `json:"id"`
	Type           TransactionType      `json:"type"`
	ProjectID      *domain.ProjectID    `json:"projectId,omitempty"`
	Wallet         WalletRef            `json:"walletId,omitempty"`
	Amount         decimal.Decimal      `json:"amount"`
	Currency       string               `json:"currency"`
	Date           time.Time            `json:"date"`
	Description    string               `json:"description"`
	Category       string               `json:"category,omitempty"`
	Status         TransactionStatus    `json:"status"`
	RejectedReason string               `json:"rejectedReason,omitempty"`
	Attachments    []string             `json:"attachments,omitempty"`
	CreatedBy      domain.ActorID       `json:"createdBy"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

func (t *Transaction) IsPosted() bool  { return t.Status == StatusPosted }
func (t *Transaction) IsPending() bool { return t.Status == StatusPending }

// CanTransition checks that the transaction is still pending. Posted and
// rejected are terminal.
func (t *Transaction) CanTransition() error {
	if t.Status != StatusPending {
		return dErrors.New(dErrors.CodeInvariantViolation, "transaction is not pending")
	}
	return nil
}

// ApplyPosted moves a pending transaction to posted. Call CanTransition first.
func (t *Transaction) ApplyPosted(now time.Time) {
	t.Status = StatusPosted
	t.RejectedReason = ""
	t.UpdatedAt = now
}

// ApplyRejected moves a pending transaction to rejected with a stored reason.
func (t *Transaction) ApplyRejected(reason string, now time.Time) {
	t.Status = StatusRejected
	t.RejectedReason = reason
	t.UpdatedAt = now
}

func (t *Transaction) clone() Transaction {
	out := *t
	if t.ProjectID != nil {
		pid := *t.ProjectID
		out.ProjectID = &pid
	}
	if t.Attachments != nil {
		out.Attachments = append([]string(nil), t.Attachments...)
	}
	return out
}
