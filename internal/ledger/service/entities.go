package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fundledger/internal/auditlog"
	"fundledger/internal/docstore"
	"fundledger/internal/ledger/balance"
	"fundledger/internal/ledger/models"
	"fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
	"fundledger/pkg/platform/sentinel"
	"fundledger/pkg/requestcontext"
)

// CreateFunder registers a new donor. Staff-level operation.
func (s *Service) CreateFunder(ctx context.Context, orgID domain.OrgID, name, email, phone string) (*models.Funder, error) {
	co, err := s.hub.Coordinator(ctx, orgID)
	if err != nil {
		return nil, err
	}
	_, role := requestcontext.Actor(ctx)
	if !role.CanRecord() {
		s.audit.RecordDenied(ctx, co, "funder_create", "")
		s.incRoleDenial()
		return nil, dErrors.New(dErrors.CodePermissionDenied, "role may not manage funders")
	}

	funder, err := models.NewFunder(domain.FunderID(uuid.New()), name, email, phone, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	err = co.Apply(ctx, docstore.Funders, func(doc *models.OrgDocument) error {
		doc.Funders = append(doc.Funders, *funder)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, co, auditlog.ActionFunderCreated, funder.ID.String(), map[string]any{"name": name})
	return funder, nil
}

// DeactivateFunder soft-deactivates a donor. Funders referenced by
// transactions or projects are never removed; deactivation is the only
// retirement path.
func (s *Service) DeactivateFunder(ctx context.Context, orgID domain.OrgID, id domain.FunderID) (*models.Funder, error) {
	co, err := s.hub.Coordinator(ctx, orgID)
	if err != nil {
		return nil, err
	}
	_, role := requestcontext.Actor(ctx)
	if !role.IsAdmin() {
		s.audit.RecordDenied(ctx, co, "funder_deactivate", id.String())
		s.incRoleDenial()
		return nil, nil
	}

	var updated models.Funder
	err = co.Apply(ctx, docstore.Funders, func(doc *models.OrgDocument) error {
		funder := doc.Funder(id)
		if funder == nil {
			return sentinel.ErrNotFound
		}
		if err := funder.CanDeactivate(); err != nil {
			return err
		}
		funder.ApplyDeactivation(requestcontext.Now(ctx))
		updated = *funder
		return nil
	})
	if errors.Is(err, sentinel.ErrNotFound) {
		s.log.Warn("deactivate target missing", "org", orgID.String(), "funder", id.String())
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, co, auditlog.ActionFunderDeactivated, id.String(), nil)
	return &updated, nil
}

// CreateProject opens a new organization-owned project with its owning wallet
// and informational allocation.
func (s *Service) CreateProject(ctx context.Context, orgID domain.OrgID, name string, owner models.WalletRef, allocation decimal.Decimal) (*models.Project, error) {
	co, err := s.hub.Coordinator(ctx, orgID)
	if err != nil {
		return nil, err
	}
	_, role := requestcontext.Actor(ctx)
	if !role.CanRecord() {
		s.audit.RecordDenied(ctx, co, "project_create", "")
		s.incRoleDenial()
		return nil, dErrors.New(dErrors.CodePermissionDenied, "role may not manage projects")
	}

	project, err := models.NewProject(domain.ProjectID(uuid.New()), name, owner, allocation, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	err = co.Apply(ctx, docstore.Projects, func(doc *models.OrgDocument) error {
		doc.Projects = append(doc.Projects, *project)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, co, auditlog.ActionProjectCreated, project.ID.String(), map[string]any{
		"name":       name,
		"owner":      string(owner),
		"allocation": allocation.String(),
	})
	return project, nil
}

// WalletBalance returns the available balance of one wallet from the current
// local snapshot.
func (s *Service) WalletBalance(ctx context.Context, orgID domain.OrgID, w domain.WalletID) (decimal.Decimal, error) {
	doc, err := s.Snapshot(ctx, orgID)
	if err != nil {
		return decimal.Zero, err
	}
	return balance.WalletAvailable(doc, w), nil
}

// FunderSummary returns the funder rollup: available cash plus allocated
// project budgets, reported separately.
func (s *Service) FunderSummary(ctx context.Context, orgID domain.OrgID, id domain.FunderID) (balance.FunderSummary, error) {
	doc, err := s.Snapshot(ctx, orgID)
	if err != nil {
		return balance.FunderSummary{}, err
	}
	if doc.Funder(id) == nil {
		return balance.FunderSummary{}, dErrors.New(dErrors.CodeNotFound, "funder not found")
	}
	return balance.FunderRollup(doc, id), nil
}

// ProjectSummary returns the project-scoped rollup.
func (s *Service) ProjectSummary(ctx context.Context, orgID domain.OrgID, id domain.ProjectID) (balance.ProjectSummary, error) {
	doc, err := s.Snapshot(ctx, orgID)
	if err != nil {
		return balance.ProjectSummary{}, err
	}
	if doc.Project(id) == nil {
		return balance.ProjectSummary{}, dErrors.New(dErrors.CodeNotFound, "project not found")
	}
	return balance.ProjectRollup(doc, id), nil
}
