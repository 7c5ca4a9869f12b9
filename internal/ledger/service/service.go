// Package service orchestrates the ledger: transaction creation, the approval
// workflow, and funder/project management. All state changes flow through the
// sync coordinator; all role checks follow the audit-over-exception policy —
// an under-privileged attempt changes nothing, leaves exactly one denial
// entry, and quietly no-ops.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fundledger/internal/auditlog"
	"fundledger/internal/docstore"
	"fundledger/internal/ledger/balance"
	ledgermetrics "fundledger/internal/ledger/metrics"
	"fundledger/internal/ledger/models"
	"fundledger/internal/ledger/status"
	"fundledger/internal/ledger/wallet"
	"fundledger/internal/notify"
	ledgersync "fundledger/internal/sync"
	"fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
	"fundledger/pkg/requestcontext"
)

// errInsufficient aborts a creation-time mutation without recording anything.
var errInsufficient = errors.New("insufficient funds")

type Service struct {
	hub       *ledgersync.Hub
	audit     *auditlog.Recorder
	publisher notify.Publisher
	metrics   *ledgermetrics.Metrics
	log       *slog.Logger
	linkBase  string
}

type Option func(*Service)

func WithPublisher(p notify.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMetrics(m *ledgermetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithApprovalsLinkBase(base string) Option {
	return func(s *Service) { s.linkBase = base }
}

func New(hub *ledgersync.Hub, audit *auditlog.Recorder, log *slog.Logger, opts ...Option) *Service {
	s := &Service{hub: hub, audit: audit, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTransactionInput carries the staff-entered fields of a new income or
// expense. Wallet is the optional explicit override; when empty the owning
// project's funder wallet, then the organization sentinel, apply.
type CreateTransactionInput struct {
	ProjectID   *domain.ProjectID
	Wallet      models.WalletRef
	Amount      decimal.Decimal
	Currency    string
	Date        time.Time
	Description string
	Category    string
	Attachments []string
}

func (in *CreateTransactionInput) validate() error {
	if in.Amount.IsNegative() {
		return dErrors.New(dErrors.CodeInvalidInput, "amount must not be negative")
	}
	if in.Description == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "description is required")
	}
	return nil
}

// CreateIncome records an income transaction. Income never blocks on
// solvency; only its initial status depends on the actor and the approval
// policy.
func (s *Service) CreateIncome(ctx context.Context, orgID domain.OrgID, in CreateTransactionInput) (*models.Transaction, error) {
	return s.createTransaction(ctx, orgID, models.TypeIncome, in)
}

// CreateExpense records an expense. When the computed initial status is
// posted (admin actor or approvals disabled) the resolved wallet must be able
// to cover the amount; otherwise the creation is refused outright and no
// transaction is recorded.
func (s *Service) CreateExpense(ctx context.Context, orgID domain.OrgID, in CreateTransactionInput) (*models.Transaction, error) {
	return s.createTransaction(ctx, orgID, models.TypeExpense, in)
}

func (s *Service) createTransaction(ctx context.Context, orgID domain.OrgID, txType models.TransactionType, in CreateTransactionInput) (*models.Transaction, error) {
	co, err := s.hub.Coordinator(ctx, orgID)
	if err != nil {
		return nil, err
	}

	actorID, role := requestcontext.Actor(ctx)
	op := string(txType) + "_create"
	if !role.CanRecord() {
		s.audit.RecordDenied(ctx, co, op, "")
		s.incRoleDenial()
		return nil, dErrors.New(dErrors.CodePermissionDenied, "role may not record transactions")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	col := docstore.Incomes
	if txType == models.TypeExpense {
		col = docstore.Expenses
	}

	var tx models.Transaction
	var available decimal.Decimal
	var resolved domain.WalletID
	insufficient := false

	err = co.Apply(ctx, col, func(doc *models.OrgDocument) error {
		currency := in.Currency
		if currency == "" {
			currency = doc.OrgSettings.Currency
		}
		tx = models.Transaction{
			ID:          domain.TransactionID(uuid.New()),
			Type:        txType,
			ProjectID:   in.ProjectID,
			Wallet:      in.Wallet,
			Amount:      in.Amount,
			Currency:    currency,
			Date:        in.Date,
			Description: in.Description,
			Category:    in.Category,
			Attachments: in.Attachments,
			Status:      status.Decide(role, doc.OrgSettings.ApprovalsEnabled),
			CreatedBy:   actorID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		resolved = wallet.Resolve(&tx, doc.Projects)

		if txType == models.TypeExpense && tx.Status == models.StatusPosted {
			available = balance.WalletAvailable(doc, resolved)
			if available.Cmp(tx.Amount) < 0 {
				insufficient = true
				return errInsufficient
			}
		}

		if txType == models.TypeIncome {
			doc.Incomes = append(doc.Incomes, tx)
		} else {
			doc.Expenses = append(doc.Expenses, tx)
		}
		return nil
	})
	if insufficient {
		s.incInsufficient()
		s.audit.Record(ctx, co, auditlog.ActionExpenseRefusedInsufficientFunds, "", map[string]any{
			"wallet":    string(resolved),
			"amount":    tx.Amount.String(),
			"available": available.String(),
		})
		return nil, dErrors.New(dErrors.CodeInsufficientFunds, "wallet balance cannot cover this expense")
	}
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.TransactionsCreated.WithLabelValues(string(txType), string(tx.Status)).Inc()
	}
	created := auditlog.ActionIncomeCreated
	if txType == models.TypeExpense {
		created = auditlog.ActionExpenseCreated
	}
	s.audit.Record(ctx, co, created, tx.ID.String(), map[string]any{
		"wallet": string(resolved),
		"amount": tx.Amount.String(),
		"status": string(tx.Status),
	})

	if tx.IsPending() {
		s.notifyPending(ctx, co, orgID, &tx)
	}
	return &tx, nil
}

// notifyPending publishes the pending-transaction event to every admin
// member. Best-effort by design; a failed publish is logged and forgotten.
func (s *Service) notifyPending(ctx context.Context, co *ledgersync.Coordinator, orgID domain.OrgID, tx *models.Transaction) {
	if s.publisher == nil {
		return
	}
	doc := co.Snapshot()
	var recipients []string
	for _, m := range doc.Admins() {
		if m.Email != "" {
			recipients = append(recipients, m.Email)
		}
	}
	if len(recipients) == 0 {
		return
	}
	ev := notify.Event{
		Type:          string(tx.Type),
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		Date:          tx.Date,
		Description:   tx.Description,
		ApprovalsLink: s.linkBase + "/orgs/" + orgID.String() + "/approvals",
		OrgID:         orgID.String(),
		Recipients:    recipients,
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("pending notification not published", "org", orgID.String(), "error", err)
	}
}

func (s *Service) incRoleDenial() {
	if s.metrics != nil {
		s.metrics.RoleDenials.Inc()
	}
}

func (s *Service) incInsufficient() {
	if s.metrics != nil {
		s.metrics.InsufficientFunds.Inc()
	}
}

// Snapshot exposes a read-only copy of current local state for derived views.
func (s *Service) Snapshot(ctx context.Context, orgID domain.OrgID) (*models.OrgDocument, error) {
	co, err := s.hub.Coordinator(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return co.Snapshot(), nil
}
