package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fundledger/internal/ledger/models"
	"fundledger/internal/ledger/service"
	"fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
	"fundledger/pkg/platform/httputil"
	"fundledger/pkg/requestcontext"
)

// handleCreateIncome handles POST /v1/incomes.
func (h *Handler) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	h.createTransaction(w, r, h.ledger.CreateIncome)
}

// handleCreateExpense handles POST /v1/expenses.
func (h *Handler) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	h.createTransaction(w, r, h.ledger.CreateExpense)
}

func (h *Handler) createTransaction(
	w http.ResponseWriter,
	r *http.Request,
	create func(ctx context.Context, orgID domain.OrgID, in service.CreateTransactionInput) (*models.Transaction, error),
) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	orgID, err := orgFrom(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateTransactionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	tx, err := create(ctx, orgID, req.ParsedInput(requestcontext.Now(ctx)))
	if err != nil {
		h.logger.ErrorContext(ctx, "transaction not created",
			"request_id", requestID,
			"org", orgID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, tx)
}

// handleApproveIncome handles POST /v1/incomes/{id}/approve.
func (h *Handler) handleApproveIncome(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, orgID domain.OrgID, id domain.TransactionID) (service.Outcome, error) {
		return h.ledger.ApproveIncome(ctx, orgID, id)
	})
}

// handleApproveExpense handles POST /v1/expenses/{id}/approve. When the
// wallet cannot cover the expense the response still succeeds, carrying the
// now-rejected transaction.
func (h *Handler) handleApproveExpense(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, orgID domain.OrgID, id domain.TransactionID) (service.Outcome, error) {
		return h.ledger.ApproveExpense(ctx, orgID, id)
	})
}

// handlePostPendingExpense handles POST /v1/expenses/{id}/post.
func (h *Handler) handlePostPendingExpense(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, orgID domain.OrgID, id domain.TransactionID) (service.Outcome, error) {
		return h.ledger.PostPendingExpense(ctx, orgID, id)
	})
}

// handleRejectIncome handles POST /v1/incomes/{id}/reject.
func (h *Handler) handleRejectIncome(w http.ResponseWriter, r *http.Request) {
	h.reject(w, r, h.ledger.RejectIncome)
}

// handleRejectExpense handles POST /v1/expenses/{id}/reject.
func (h *Handler) handleRejectExpense(w http.ResponseWriter, r *http.Request) {
	h.reject(w, r, h.ledger.RejectExpense)
}

func (h *Handler) reject(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, orgID domain.OrgID, id domain.TransactionID, reason string) (service.Outcome, error),
) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[RejectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	h.transition(w, r, func(ctx context.Context, orgID domain.OrgID, id domain.TransactionID) (service.Outcome, error) {
		return fn(ctx, orgID, id, req.Reason)
	})
}

// transition runs one approval-workflow transition and maps its outcome to
// the wire: denials are 403, stale ids 404, everything else returns the
// transaction as persisted.
func (h *Handler) transition(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, orgID domain.OrgID, id domain.TransactionID) (service.Outcome, error),
) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	orgID, err := orgFrom(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	id, err := domain.ParseTransactionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out, err := fn(ctx, orgID, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "transition failed",
			"request_id", requestID,
			"org", orgID.String(),
			"transaction", id.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.writeOutcome(w, out)
}

func (h *Handler) writeOutcome(w http.ResponseWriter, out service.Outcome) {
	switch {
	case out.Denied:
		httputil.WriteError(w, dErrors.New(dErrors.CodePermissionDenied, "role may not decide approvals"))
	case out.Missing:
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "transaction not found"))
	default:
		httputil.WriteJSON(w, http.StatusOK, out.Transaction)
	}
}

// handleCreateFunder handles POST /v1/funders.
func (h *Handler) handleCreateFunder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	orgID, err := orgFrom(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateFunderRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	funder, err := h.ledger.CreateFunder(ctx, orgID, req.Name, req.Email, req.Phone)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, funder)
}

// handleDeactivateFunder handles POST /v1/funders/{id}/deactivate. Denied and
// stale attempts both no-op at the service, so the absence of a result maps
// to 204.
func (h *Handler) handleDeactivateFunder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgID, err := orgFrom(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	id, err := domain.ParseFunderID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	funder, err := h.ledger.DeactivateFunder(ctx, orgID, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if funder == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, funder)
}

// handleFunderSummary handles GET /v1/funders/{id}/summary.
func (h *Handler) handleFunderSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgID, err := orgFrom(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	id, err := domain.ParseFunderID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	summary, err := h.ledger.FunderSummary(ctx, orgID, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

// handleCreateProject handles POST /v1/projects.
func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	orgID, err := orgFrom(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateProjectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	project, err := h.ledger.CreateProject(ctx, orgID, req.Name, req.FunderID, req.Allocation)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, project)
}

// handleProjectSummary handles GET /v1/projects/{id}/summary.
func (h *Handler) handleProjectSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgID, err := orgFrom(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	id, err := domain.ParseProjectID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	summary, err := h.ledger.ProjectSummary(ctx, orgID, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

// handleWalletBalance handles GET /v1/wallets/{walletID}/balance. The wallet
// id is either the organization sentinel or a funder id.
func (h *Handler) handleWalletBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgID, err := orgFrom(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	walletID := domain.WalletID(chi.URLParam(r, "walletID"))
	if walletID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "wallet id is required"))
		return
	}

	available, err := h.ledger.WalletBalance(ctx, orgID, walletID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"walletId":  string(walletID),
		"available": available,
	})
}
