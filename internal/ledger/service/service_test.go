package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"fundledger/internal/auditlog"
	"fundledger/internal/docstore"
	"fundledger/internal/ledger/models"
	"fundledger/internal/notify"
	ledgersync "fundledger/internal/sync"
	"fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
	"fundledger/pkg/requestcontext"
)

const (
	adminActor  = domain.ActorID("admin-1")
	staffActor  = domain.ActorID("staff-1")
	funderActor = domain.ActorID("funder-1")
)

type LedgerServiceSuite struct {
	suite.Suite
	store    *docstore.InMemory
	hub      *ledgersync.Hub
	svc      *Service
	events   *notify.ChannelPublisher
	orgID    domain.OrgID
	funderID domain.FunderID
}

func TestLedgerServiceSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceSuite))
}

func (s *LedgerServiceSuite) SetupTest() {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = docstore.NewInMemory()
	s.hub = ledgersync.NewHub(context.Background(), s.store, log, nil)
	s.events = notify.NewChannelPublisher(8)
	s.svc = New(s.hub, auditlog.NewRecorder(log), log,
		WithPublisher(s.events),
		WithApprovalsLinkBase("http://app.local"),
	)

	s.orgID = domain.OrgID(uuid.New())
	s.funderID = domain.FunderID(uuid.New())
	doc := &models.OrgDocument{
		Name:  "Helping Hands",
		Owner: adminActor,
		Memberships: []models.Membership{
			{ActorID: adminActor, Email: "admin@helpinghands.org", Role: domain.RoleAdmin},
			{ActorID: staffActor, Email: "staff@helpinghands.org", Role: domain.RoleStaff},
		},
		OrgSettings: models.OrgSettings{Currency: "USD", ApprovalsEnabled: true},
		Funders: []models.Funder{
			{ID: s.funderID, Name: "Acme Trust", Status: models.FunderStatusActive},
		},
	}
	s.Require().NoError(s.store.Create(context.Background(), s.orgID, doc))
}

func (s *LedgerServiceSuite) as(actor domain.ActorID, role domain.Role) context.Context {
	return requestcontext.WithActor(context.Background(), actor, role)
}

func (s *LedgerServiceSuite) seedIncome(amount string, wallet domain.WalletID) *models.Transaction {
	tx, err := s.svc.CreateIncome(s.as(adminActor, domain.RoleAdmin), s.orgID, CreateTransactionInput{
		Wallet:      models.RefForWallet(wallet),
		Amount:      decimal.RequireFromString(amount),
		Date:        time.Now().UTC(),
		Description: "seed income",
	})
	s.Require().NoError(err)
	s.Require().Equal(models.StatusPosted, tx.Status)
	return tx
}

func (s *LedgerServiceSuite) snapshot() *models.OrgDocument {
	doc, err := s.svc.Snapshot(context.Background(), s.orgID)
	s.Require().NoError(err)
	return doc
}

func (s *LedgerServiceSuite) logCount(action auditlog.Action) int {
	count := 0
	for _, entry := range s.snapshot().Logs {
		if entry.Action == string(action) {
			count++
		}
	}
	return count
}

func (s *LedgerServiceSuite) TestAdminIncomePostsImmediately() {
	tx, err := s.svc.CreateIncome(s.as(adminActor, domain.RoleAdmin), s.orgID, CreateTransactionInput{
		Amount:      decimal.RequireFromString("120"),
		Date:        time.Now().UTC(),
		Description: "church donation",
	})
	s.Require().NoError(err)
	s.Equal(models.StatusPosted, tx.Status)
	s.Equal("USD", tx.Currency, "currency defaults from org settings")
	s.Equal(1, s.logCount(auditlog.ActionIncomeCreated))
}

func (s *LedgerServiceSuite) TestStaffExpenseStaysPendingAndNotifiesAdmins() {
	s.seedIncome("500", domain.OrgWallet)

	tx, err := s.svc.CreateExpense(s.as(staffActor, domain.RoleStaff), s.orgID, CreateTransactionInput{
		Amount:      decimal.RequireFromString("80"),
		Date:        time.Now().UTC(),
		Description: "printer paper",
	})
	s.Require().NoError(err)
	s.Equal(models.StatusPending, tx.Status)

	select {
	case ev := <-s.events.Events():
		s.Equal([]string{"admin@helpinghands.org"}, ev.Recipients)
		s.Equal("expense", ev.Type)
		s.Contains(ev.ApprovalsLink, s.orgID.String())
	case <-time.After(time.Second):
		s.Fail("expected a pending-transaction notification")
	}
}

// An admin creating an expense posts it immediately, so solvency is checked
// at creation: an uncovered amount is refused outright and nothing is stored.
func (s *LedgerServiceSuite) TestAdminExpenseRefusedWhenInsolvent() {
	s.seedIncome("50", domain.OrgWallet)

	_, err := s.svc.CreateExpense(s.as(adminActor, domain.RoleAdmin), s.orgID, CreateTransactionInput{
		Amount:      decimal.RequireFromString("80"),
		Date:        time.Now().UTC(),
		Description: "venue rental",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInsufficientFunds))

	s.Empty(s.snapshot().Expenses)
	s.Equal(1, s.logCount(auditlog.ActionExpenseRefusedInsufficientFunds))
}

func (s *LedgerServiceSuite) TestFunderRoleCannotRecord() {
	_, err := s.svc.CreateExpense(s.as(funderActor, domain.RoleFunder), s.orgID, CreateTransactionInput{
		Amount:      decimal.RequireFromString("10"),
		Date:        time.Now().UTC(),
		Description: "sneaky expense",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))

	doc := s.snapshot()
	s.Empty(doc.Expenses)
	s.Equal(1, s.logCount(auditlog.Denied("expense_create")), "exactly one denial entry")
}

func (s *LedgerServiceSuite) TestNegativeAmountRejected() {
	_, err := s.svc.CreateIncome(s.as(adminActor, domain.RoleAdmin), s.orgID, CreateTransactionInput{
		Amount:      decimal.RequireFromString("-5"),
		Date:        time.Now().UTC(),
		Description: "refund gone wrong",
	})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *LedgerServiceSuite) TestCreationRollsBackWhenPersistFails() {
	s.store.FailNextReplace(errors.New("backend down"), 1)

	_, err := s.svc.CreateIncome(s.as(adminActor, domain.RoleAdmin), s.orgID, CreateTransactionInput{
		Amount:      decimal.RequireFromString("40"),
		Date:        time.Now().UTC(),
		Description: "lost donation",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeSyncFailure))
	s.Empty(s.snapshot().Incomes, "optimistic mutation rolled back")
}

func (s *LedgerServiceSuite) TestCreateFunderAndDeactivate() {
	ctx := s.as(staffActor, domain.RoleStaff)
	funder, err := s.svc.CreateFunder(ctx, s.orgID, "Bright Futures", "bf@example.org", "")
	s.Require().NoError(err)
	s.Equal(models.FunderStatusActive, funder.Status)

	// Deactivation is admin-only; the staff attempt no-ops and is audited.
	got, err := s.svc.DeactivateFunder(ctx, s.orgID, funder.ID)
	s.Require().NoError(err)
	s.Nil(got)
	s.Equal(1, s.logCount(auditlog.Denied("funder_deactivate")))

	got, err = s.svc.DeactivateFunder(s.as(adminActor, domain.RoleAdmin), s.orgID, funder.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(models.FunderStatusInactive, got.Status)
}

func (s *LedgerServiceSuite) TestCreateProjectDefaultsToOrgWallet() {
	project, err := s.svc.CreateProject(s.as(staffActor, domain.RoleStaff), s.orgID,
		"Community Garden", "", decimal.RequireFromString("300"))
	s.Require().NoError(err)
	s.Equal(domain.OrgWallet, project.Owner.Wallet())
	s.Equal(1, s.logCount(auditlog.ActionProjectCreated))
}

func (s *LedgerServiceSuite) TestSummariesForUnknownIDs() {
	_, err := s.svc.FunderSummary(context.Background(), s.orgID, domain.FunderID(uuid.New()))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.svc.ProjectSummary(context.Background(), s.orgID, domain.ProjectID(uuid.New()))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *LedgerServiceSuite) TestWalletBalance() {
	s.seedIncome("90", domain.WalletForFunder(s.funderID))
	available, err := s.svc.WalletBalance(context.Background(), s.orgID, domain.WalletForFunder(s.funderID))
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("90").Equal(available))
}

func (s *LedgerServiceSuite) TestUnknownOrganization() {
	_, err := s.svc.CreateIncome(s.as(adminActor, domain.RoleAdmin), domain.OrgID(uuid.New()), CreateTransactionInput{
		Amount:      decimal.RequireFromString("5"),
		Date:        time.Now().UTC(),
		Description: "orphan",
	})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
