package models

import (
	"time"

	"github.com/shopspring/decimal"

	"fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
)

type FunderStatus string

const (
	FunderStatusActive   FunderStatus = "active"
	FunderStatusInactive FunderStatus = "inactive"
)

// Funder is a donor and, implicitly, a wallet. Funders referenced by
// transactions are never removed, only deactivated.
type Funder struct {
	ID        domain.FunderID `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email,omitempty"`
	Phone     string          `json:"phone,omitempty"`
	Status    FunderStatus    `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (f *Funder) IsActive() bool { return f.Status == FunderStatusActive }

func (f *Funder) CanDeactivate() error {
	if f.Status == FunderStatusInactive {
		return dErrors.New(dErrors.CodeInvariantViolation, "funder is already inactive")
	}
	return nil
}

func (f *Funder) ApplyDeactivation(now time.Time) {
	f.Status = FunderStatusInactive
	f.UpdatedAt = now
}

func NewFunder(id domain.FunderID, name, email, phone string, now time.Time) (*Funder, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "funder name is required")
	}
	return &Funder{
		ID:        id,
		Name:      name,
		Email:     email,
		Phone:     phone,
		Status:    FunderStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusArchived ProjectStatus = "archived"
)

// Project is an organization-owned initiative funded out of one wallet.
// Allocation is a budget ceiling in name only; nothing enforces it as a
// spending cap.
type Project struct {
	ID         domain.ProjectID `json:"id"`
	Name       string           `json:"name"`
	Owner      WalletRef        `json:"funderId"`
	Allocation decimal.Decimal  `json:"allocation"`
	Status     ProjectStatus    `json:"status"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

func NewProject(id domain.ProjectID, name string, owner WalletRef, allocation decimal.Decimal, now time.Time) (*Project, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "project name is required")
	}
	if allocation.IsNegative() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "allocation must not be negative")
	}
	if owner.IsZero() {
		owner = RefForWallet(domain.OrgWallet)
	}
	return &Project{
		ID:         id,
		Name:       name,
		Owner:      owner,
		Allocation: allocation,
		Status:     ProjectStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// LogEntry is the audit trail record. Creation is append-only; the only
// mutation the log ever sees is the deleted flag lifecycle below, and even
// those mutations are themselves recorded as fresh entries.
type LogEntry struct {
	ID        domain.LogID   `json:"id"`
	Action    string         `json:"action"`
	RefID     string         `json:"refId,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	ActorID   domain.ActorID `json:"actorId"`
	ActorRole domain.Role    `json:"actorRole"`
	Timestamp time.Time      `json:"timestamp"`
	Deleted   bool           `json:"deleted"`
	DeletedBy domain.ActorID `json:"deletedBy,omitempty"`
	DeletedAt *time.Time     `json:"deletedAt,omitempty"`
}

func (e *LogEntry) clone() LogEntry {
	out := *e
	if e.Payload != nil {
		out.Payload = make(map[string]any, len(e.Payload))
		for k, v := range e.Payload {
			out.Payload[k] = v
		}
	}
	if e.DeletedAt != nil {
		at := *e.DeletedAt
		out.DeletedAt = &at
	}
	return out
}

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
)

// Invite is a time-boxed invitation to join the organization under a role.
// Expiry is passive: nothing sweeps expired invites, validity is checked at
// redemption time only.
type Invite struct {
	ID        domain.InviteID `json:"id"`
	Token     string          `json:"token"`
	Email     string          `json:"email"`
	Role      domain.Role     `json:"role"`
	OrgName   string          `json:"orgName"`
	Status    InviteStatus    `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// Membership ties an actor to the organization with a role.
type Membership struct {
	ActorID domain.ActorID `json:"actorId"`
	Email   string         `json:"email"`
	Role    domain.Role    `json:"role"`
}

// OrgSettings is the per-organization policy block.
type OrgSettings struct {
	Currency             string `json:"currency"`
	ApprovalsEnabled     bool   `json:"approvalsEnabled"`
	FiscalYearStartMonth int    `json:"fiscalYearStartMonth"`
}
