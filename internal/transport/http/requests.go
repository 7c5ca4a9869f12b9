package httptransport

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fundledger/internal/ledger/models"
	"fundledger/internal/ledger/service"
	"fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
)

// CreateTransactionRequest is the HTTP body for POST /v1/incomes and
// POST /v1/expenses. WalletID accepts the scalar id, the {"id": ...} object,
// and the {"path": ...} reference shape; all collapse to the scalar form.
type CreateTransactionRequest struct {
	ProjectID   string           `json:"projectId,omitempty"`
	WalletID    models.WalletRef `json:"walletId,omitempty"`
	Amount      decimal.Decimal  `json:"amount"`
	Currency    string           `json:"currency,omitempty"`
	Date        string           `json:"date,omitempty"`
	Description string           `json:"description"`
	Category    string           `json:"category,omitempty"`
	Attachments []string         `json:"attachments,omitempty"`

	// Parsed values (populated by Validate)
	parsed service.CreateTransactionInput
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateTransactionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Amount.IsNegative() {
		return dErrors.New(dErrors.CodeInvalidInput, "amount must not be negative")
	}
	r.Description = strings.TrimSpace(r.Description)
	if r.Description == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "description is required")
	}

	r.parsed = service.CreateTransactionInput{
		Wallet:      r.WalletID,
		Amount:      r.Amount,
		Currency:    strings.TrimSpace(r.Currency),
		Description: r.Description,
		Category:    strings.TrimSpace(r.Category),
		Attachments: r.Attachments,
	}
	if r.ProjectID != "" {
		projectID, err := domain.ParseProjectID(r.ProjectID)
		if err != nil {
			return err
		}
		r.parsed.ProjectID = &projectID
	}
	if r.Date != "" {
		date, err := time.Parse(time.RFC3339, r.Date)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "date must be RFC 3339")
		}
		r.parsed.Date = date
	}
	return nil
}

// ParsedInput returns the validated service input. Date defaults to now when
// the body omitted it.
func (r *CreateTransactionRequest) ParsedInput(now time.Time) service.CreateTransactionInput {
	in := r.parsed
	if in.Date.IsZero() {
		in.Date = now
	}
	return in
}

// RejectRequest is the HTTP body for the manual reject transitions.
type RejectRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "reason is required")
	}
	return nil
}

// CreateFunderRequest is the HTTP body for POST /v1/funders.
type CreateFunderRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

func (r *CreateFunderRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	return nil
}

// CreateProjectRequest is the HTTP body for POST /v1/projects. FunderID names
// the owning wallet; when omitted the project belongs to the organization
// wallet.
type CreateProjectRequest struct {
	Name       string           `json:"name"`
	FunderID   models.WalletRef `json:"funderId,omitempty"`
	Allocation decimal.Decimal  `json:"allocation,omitempty"`
}

func (r *CreateProjectRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if r.Allocation.IsNegative() {
		return dErrors.New(dErrors.CodeInvalidInput, "allocation must not be negative")
	}
	return nil
}

// CreateInviteRequest is the HTTP body for POST /v1/invites.
type CreateInviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`

	parsedRole domain.Role
}

func (r *CreateInviteRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	role := domain.Role(strings.TrimSpace(r.Role))
	if !role.Valid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
	r.parsedRole = role
	return nil
}

// ParsedRole returns the validated role.
func (r *CreateInviteRequest) ParsedRole() domain.Role {
	return r.parsedRole
}
