package httptransport

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"fundledger/internal/ledger/models"
	"fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
	"fundledger/pkg/platform/httputil"
	"fundledger/pkg/requestcontext"
)

// CreateOrgRequest is the HTTP body for POST /v1/orgs. ApprovalsEnabled
// defaults to true; organizations opt out of the approval workflow
// explicitly.
type CreateOrgRequest struct {
	Name             string `json:"name"`
	OwnerEmail       string `json:"ownerEmail"`
	Currency         string `json:"currency,omitempty"`
	ApprovalsEnabled *bool  `json:"approvalsEnabled,omitempty"`
}

func (r *CreateOrgRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	r.OwnerEmail = strings.TrimSpace(r.OwnerEmail)
	if r.OwnerEmail == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "ownerEmail is required")
	}
	return nil
}

// handleCreateOrg handles POST /v1/orgs: the bootstrap endpoint that
// provisions an organization document, enrolls the owner as its first
// administrator, and mints the owner's bearer token.
func (h *Handler) handleCreateOrg(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateOrgRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	orgID := domain.OrgID(uuid.New())
	owner := domain.ActorID(uuid.NewString())
	approvals := true
	if req.ApprovalsEnabled != nil {
		approvals = *req.ApprovalsEnabled
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	doc := &models.OrgDocument{
		Name:  req.Name,
		Owner: owner,
		Memberships: []models.Membership{
			{ActorID: owner, Email: req.OwnerEmail, Role: domain.RoleAdmin},
		},
		OrgSettings: models.OrgSettings{
			Currency:         currency,
			ApprovalsEnabled: approvals,
		},
	}
	if err := h.hub.CreateOrg(ctx, orgID, doc); err != nil {
		h.logger.ErrorContext(ctx, "organization not created",
			"request_id", requestID, "name", req.Name, "error", err)
		httputil.WriteError(w, err)
		return
	}

	bearer, err := h.tokens.Generate(owner, orgID, domain.RoleAdmin, 24*time.Hour)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "token generation failed"))
		return
	}

	h.logger.InfoContext(ctx, "organization created",
		"request_id", requestID, "org", orgID.String())
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"orgId": orgID.String(),
		"owner": string(owner),
		"token": bearer,
	})
}

// handleListMembers handles GET /v1/members.
func (h *Handler) handleListMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgID, err := orgFrom(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	doc, err := h.ledger.Snapshot(ctx, orgID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc.Memberships)
}
