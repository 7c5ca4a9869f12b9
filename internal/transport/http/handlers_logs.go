package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fundledger/pkg/domain"
	"fundledger/pkg/platform/httputil"
	"fundledger/pkg/requestcontext"
)

// handleListLogs handles GET /v1/logs. Soft-removed entries are included with
// their deletion markers; clients decide how to render them.
func (h *Handler) handleListLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgID, err := orgFrom(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entries, err := h.logs.Entries(ctx, orgID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

// handleSoftRemoveLog handles POST /v1/logs/{id}/remove.
func (h *Handler) handleSoftRemoveLog(w http.ResponseWriter, r *http.Request) {
	h.logLifecycle(w, r, "remove", h.logs.SoftRemove)
}

// handleRestoreLog handles POST /v1/logs/{id}/restore.
func (h *Handler) handleRestoreLog(w http.ResponseWriter, r *http.Request) {
	h.logLifecycle(w, r, "restore", h.logs.Restore)
}

// handleFinalizeLog handles POST /v1/logs/{id}/finalize.
func (h *Handler) handleFinalizeLog(w http.ResponseWriter, r *http.Request) {
	h.logLifecycle(w, r, "finalize", h.logs.Finalize)
}

// logLifecycle runs one log lifecycle operation. The services treat denied,
// stale, and precondition-failed attempts as silent no-ops, so every
// non-error run maps to 204.
func (h *Handler) logLifecycle(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	fn func(ctx context.Context, orgID domain.OrgID, id domain.LogID) error,
) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	orgID, err := orgFrom(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	id, err := domain.ParseLogID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := fn(ctx, orgID, id); err != nil {
		h.logger.ErrorContext(ctx, "log lifecycle operation failed",
			"request_id", requestID,
			"org", orgID.String(),
			"log", id.String(),
			"op", op,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
