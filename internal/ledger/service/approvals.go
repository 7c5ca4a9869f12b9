package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"fundledger/internal/auditlog"
	"fundledger/internal/docstore"
	"fundledger/internal/ledger/balance"
	"fundledger/internal/ledger/models"
	"fundledger/internal/ledger/wallet"
	ledgersync "fundledger/internal/sync"
	"fundledger/pkg/domain"
	"fundledger/pkg/platform/sentinel"
	"fundledger/pkg/requestcontext"
)

// Outcome reports how an approval-workflow transition ended. Denied and
// Missing are silent no-ops by policy: the attempt is audited (denials) or
// warned about (stale ids), and no error is raised.
type Outcome struct {
	Transaction       *models.Transaction
	Denied            bool
	Missing           bool
	InsufficientFunds bool
	Available         decimal.Decimal
}

// ApproveIncome moves a pending income to posted. Income approval never
// checks solvency; only expenses do.
func (s *Service) ApproveIncome(ctx context.Context, orgID domain.OrgID, id domain.TransactionID) (Outcome, error) {
	return s.transition(ctx, orgID, "income_approve", docstore.Incomes,
		func(doc *models.OrgDocument) *models.Transaction { return doc.Income(id) },
		func(doc *models.OrgDocument, tx *models.Transaction, out *Outcome) error {
			tx.ApplyPosted(requestcontext.Now(ctx))
			return nil
		},
		func(co *ledgersync.Coordinator, out Outcome) {
			s.audit.Record(ctx, co, auditlog.ActionIncomeApproved, id.String(), nil)
			if s.metrics != nil {
				s.metrics.Approvals.WithLabelValues("income").Inc()
			}
		})
}

// ApproveExpense re-checks solvency at transition time, excluding the expense
// under review from the balance. A covered expense posts; an uncovered one is
// auto-rejected as a side effect of the failed approval — approval is a
// one-shot decision, not an error path.
func (s *Service) ApproveExpense(ctx context.Context, orgID domain.OrgID, id domain.TransactionID) (Outcome, error) {
	return s.transition(ctx, orgID, "expense_approve", docstore.Expenses,
		func(doc *models.OrgDocument) *models.Transaction { return doc.Expense(id) },
		func(doc *models.OrgDocument, tx *models.Transaction, out *Outcome) error {
			now := requestcontext.Now(ctx)
			resolved := wallet.Resolve(tx, doc.Projects)
			out.Available = balance.WalletAvailableExcluding(doc, resolved, id)
			if out.Available.Cmp(tx.Amount) < 0 {
				out.InsufficientFunds = true
				tx.ApplyRejected("insufficient funds", now)
				return nil
			}
			tx.ApplyPosted(now)
			return nil
		},
		func(co *ledgersync.Coordinator, out Outcome) {
			if out.InsufficientFunds {
				s.incInsufficient()
				if s.metrics != nil {
					s.metrics.Rejections.WithLabelValues("expense", "insufficient_funds").Inc()
				}
				s.audit.Record(ctx, co, auditlog.ActionExpenseAutoRejectedInsufficientFunds, id.String(), map[string]any{
					"available": out.Available.String(),
					"amount":    out.Transaction.Amount.String(),
				})
				return
			}
			if s.metrics != nil {
				s.metrics.Approvals.WithLabelValues("expense").Inc()
			}
			s.audit.Record(ctx, co, auditlog.ActionExpenseApproved, id.String(), map[string]any{
				"available": out.Available.String(),
			})
		})
}

// RejectIncome moves a pending income to rejected with the operator's reason.
func (s *Service) RejectIncome(ctx context.Context, orgID domain.OrgID, id domain.TransactionID, reason string) (Outcome, error) {
	return s.transition(ctx, orgID, "income_reject", docstore.Incomes,
		func(doc *models.OrgDocument) *models.Transaction { return doc.Income(id) },
		func(doc *models.OrgDocument, tx *models.Transaction, out *Outcome) error {
			tx.ApplyRejected(reason, requestcontext.Now(ctx))
			return nil
		},
		func(co *ledgersync.Coordinator, out Outcome) {
			if s.metrics != nil {
				s.metrics.Rejections.WithLabelValues("income", "manual").Inc()
			}
			s.audit.Record(ctx, co, auditlog.ActionIncomeRejected, id.String(), map[string]any{"reason": reason})
		})
}

// RejectExpense moves a pending expense to rejected with the operator's
// reason.
func (s *Service) RejectExpense(ctx context.Context, orgID domain.OrgID, id domain.TransactionID, reason string) (Outcome, error) {
	return s.transition(ctx, orgID, "expense_reject", docstore.Expenses,
		func(doc *models.OrgDocument) *models.Transaction { return doc.Expense(id) },
		func(doc *models.OrgDocument, tx *models.Transaction, out *Outcome) error {
			tx.ApplyRejected(reason, requestcontext.Now(ctx))
			return nil
		},
		func(co *ledgersync.Coordinator, out Outcome) {
			if s.metrics != nil {
				s.metrics.Rejections.WithLabelValues("expense", "manual").Inc()
			}
			s.audit.Record(ctx, co, auditlog.ActionExpenseRejected, id.String(), map[string]any{"reason": reason})
		})
}

// PostPendingExpense is the administrative re-attempt to post an expense that
// is still pending. It runs the same solvency check as approval but, unlike
// approval, leaves the transaction pending when funds are still insufficient:
// a re-post is retryable.
func (s *Service) PostPendingExpense(ctx context.Context, orgID domain.OrgID, id domain.TransactionID) (Outcome, error) {
	return s.transition(ctx, orgID, "expense_post", docstore.Expenses,
		func(doc *models.OrgDocument) *models.Transaction { return doc.Expense(id) },
		func(doc *models.OrgDocument, tx *models.Transaction, out *Outcome) error {
			resolved := wallet.Resolve(tx, doc.Projects)
			out.Available = balance.WalletAvailableExcluding(doc, resolved, id)
			if out.Available.Cmp(tx.Amount) < 0 {
				out.InsufficientFunds = true
				return ledgersync.ErrNoChange
			}
			tx.ApplyPosted(requestcontext.Now(ctx))
			return nil
		},
		func(co *ledgersync.Coordinator, out Outcome) {
			if out.InsufficientFunds {
				s.incInsufficient()
				s.audit.Record(ctx, co, auditlog.ActionExpensePostInsufficientFunds, id.String(), map[string]any{
					"available": out.Available.String(),
					"amount":    out.Transaction.Amount.String(),
				})
				return
			}
			if s.metrics != nil {
				s.metrics.Approvals.WithLabelValues("expense").Inc()
			}
			s.audit.Record(ctx, co, auditlog.ActionExpensePosted, id.String(), map[string]any{
				"available": out.Available.String(),
			})
		})
}

// transition runs one role-gated state transition: admin check with audited
// denial, pending-state check, the mutation itself, then the success audit.
func (s *Service) transition(
	ctx context.Context,
	orgID domain.OrgID,
	op string,
	col docstore.Collection,
	find func(doc *models.OrgDocument) *models.Transaction,
	apply func(doc *models.OrgDocument, tx *models.Transaction, out *Outcome) error,
	after func(co *ledgersync.Coordinator, out Outcome),
) (Outcome, error) {
	var out Outcome

	co, err := s.hub.Coordinator(ctx, orgID)
	if err != nil {
		return out, err
	}

	_, role := requestcontext.Actor(ctx)
	if !role.IsAdmin() {
		s.audit.RecordDenied(ctx, co, op, "")
		s.incRoleDenial()
		out.Denied = true
		return out, nil
	}

	err = co.Apply(ctx, col, func(doc *models.OrgDocument) error {
		tx := find(doc)
		if tx == nil {
			return sentinel.ErrNotFound
		}
		if err := tx.CanTransition(); err != nil {
			return err
		}
		if err := apply(doc, tx, &out); err != nil {
			snapshot := *tx
			out.Transaction = &snapshot
			return err
		}
		snapshot := *tx
		out.Transaction = &snapshot
		return nil
	})
	if errors.Is(err, sentinel.ErrNotFound) {
		// Stale local state is benign; the next snapshot converges.
		s.log.Warn("transition target missing", "op", op, "org", orgID.String())
		out.Missing = true
		return out, nil
	}
	if err != nil {
		return out, err
	}

	after(co, out)
	return out, nil
}
