package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fundledger/internal/auditlog"
	"fundledger/internal/ledger/models"
	"fundledger/pkg/domain"
)

func (s *LedgerServiceSuite) pendingExpense(amount string) *models.Transaction {
	tx, err := s.svc.CreateExpense(s.as(staffActor, domain.RoleStaff), s.orgID, CreateTransactionInput{
		Amount:      decimal.RequireFromString(amount),
		Date:        time.Now().UTC(),
		Description: "pending expense",
	})
	s.Require().NoError(err)
	s.Require().Equal(models.StatusPending, tx.Status)
	return tx
}

func (s *LedgerServiceSuite) TestApprovePendingExpenseWithFunds() {
	s.seedIncome("200", domain.OrgWallet)
	tx := s.pendingExpense("80")

	out, err := s.svc.ApproveExpense(s.as(adminActor, domain.RoleAdmin), s.orgID, tx.ID)
	s.Require().NoError(err)
	s.False(out.Denied)
	s.False(out.InsufficientFunds)
	s.Equal(models.StatusPosted, out.Transaction.Status)

	stored := s.snapshot().Expense(tx.ID)
	s.Require().NotNil(stored)
	s.Equal(models.StatusPosted, stored.Status)
	s.Equal(1, s.logCount(auditlog.ActionExpenseApproved))
}

// Approving an uncovered expense is a one-shot decision: the failed approval
// rejects the expense instead of leaving it pending.
func (s *LedgerServiceSuite) TestApproveInsolventExpenseAutoRejects() {
	s.seedIncome("50", domain.OrgWallet)
	tx := s.pendingExpense("80")

	out, err := s.svc.ApproveExpense(s.as(adminActor, domain.RoleAdmin), s.orgID, tx.ID)
	s.Require().NoError(err)
	s.True(out.InsufficientFunds)
	s.True(decimal.RequireFromString("50").Equal(out.Available))
	s.Equal(models.StatusRejected, out.Transaction.Status)

	stored := s.snapshot().Expense(tx.ID)
	s.Require().NotNil(stored)
	s.Equal(models.StatusRejected, stored.Status, "auto-rejection is persisted")
	s.Equal("insufficient funds", stored.RejectedReason)
	s.Equal(1, s.logCount(auditlog.ActionExpenseAutoRejectedInsufficientFunds))
}

// Re-posting is the retryable counterpart of approval: an uncovered re-post
// leaves the expense pending instead of rejecting it.
func (s *LedgerServiceSuite) TestPostPendingInsolventExpenseStaysPending() {
	s.seedIncome("50", domain.OrgWallet)
	tx := s.pendingExpense("80")

	out, err := s.svc.PostPendingExpense(s.as(adminActor, domain.RoleAdmin), s.orgID, tx.ID)
	s.Require().NoError(err)
	s.True(out.InsufficientFunds)

	stored := s.snapshot().Expense(tx.ID)
	s.Require().NotNil(stored)
	s.Equal(models.StatusPending, stored.Status, "a failed re-post keeps the expense retryable")
	s.Equal(1, s.logCount(auditlog.ActionExpensePostInsufficientFunds))

	// Once funds arrive the same expense posts.
	s.seedIncome("100", domain.OrgWallet)
	out, err = s.svc.PostPendingExpense(s.as(adminActor, domain.RoleAdmin), s.orgID, tx.ID)
	s.Require().NoError(err)
	s.False(out.InsufficientFunds)
	s.Equal(models.StatusPosted, s.snapshot().Expense(tx.ID).Status)
}

// The approval-time solvency check excludes the expense under review, so an
// expense never counts against its own balance.
func (s *LedgerServiceSuite) TestApprovalExcludesExpenseUnderReview() {
	s.seedIncome("100", domain.OrgWallet)
	tx := s.pendingExpense("100")

	out, err := s.svc.ApproveExpense(s.as(adminActor, domain.RoleAdmin), s.orgID, tx.ID)
	s.Require().NoError(err)
	s.False(out.InsufficientFunds)
	s.Equal(models.StatusPosted, out.Transaction.Status)
}

func (s *LedgerServiceSuite) TestApproveIncomeNeverChecksSolvency() {
	tx, err := s.svc.CreateIncome(s.as(staffActor, domain.RoleStaff), s.orgID, CreateTransactionInput{
		Amount:      decimal.RequireFromString("70"),
		Date:        time.Now().UTC(),
		Description: "pledge",
	})
	s.Require().NoError(err)
	s.Require().Equal(models.StatusPending, tx.Status)

	out, err := s.svc.ApproveIncome(s.as(adminActor, domain.RoleAdmin), s.orgID, tx.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPosted, out.Transaction.Status)
	s.Equal(1, s.logCount(auditlog.ActionIncomeApproved))
}

func (s *LedgerServiceSuite) TestRejectRecordsReason() {
	s.seedIncome("200", domain.OrgWallet)
	tx := s.pendingExpense("20")

	out, err := s.svc.RejectExpense(s.as(adminActor, domain.RoleAdmin), s.orgID, tx.ID, "duplicate entry")
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, out.Transaction.Status)
	s.Equal("duplicate entry", s.snapshot().Expense(tx.ID).RejectedReason)
	s.Equal(1, s.logCount(auditlog.ActionExpenseRejected))
}

func (s *LedgerServiceSuite) TestNonAdminTransitionIsAuditedNoOp() {
	s.seedIncome("200", domain.OrgWallet)
	tx := s.pendingExpense("20")

	out, err := s.svc.ApproveExpense(s.as(staffActor, domain.RoleStaff), s.orgID, tx.ID)
	s.Require().NoError(err)
	s.True(out.Denied)

	s.Equal(models.StatusPending, s.snapshot().Expense(tx.ID).Status)
	s.Equal(1, s.logCount(auditlog.Denied("expense_approve")), "exactly one denial entry")
}

func (s *LedgerServiceSuite) TestTransitionOnMissingTransaction() {
	out, err := s.svc.ApproveExpense(s.as(adminActor, domain.RoleAdmin), s.orgID, domain.TransactionID(uuid.New()))
	s.Require().NoError(err)
	s.True(out.Missing)
}

func (s *LedgerServiceSuite) TestPostedTransactionIsTerminal() {
	income := s.seedIncome("30", domain.OrgWallet)

	_, err := s.svc.ApproveIncome(s.as(adminActor, domain.RoleAdmin), s.orgID, income.ID)
	s.Require().Error(err)
}
