package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fundledger/pkg/domain"
	"fundledger/pkg/platform/httputil"
	"fundledger/pkg/requestcontext"
)

// handleCreateInvite handles POST /v1/invites.
func (h *Handler) handleCreateInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	orgID, err := orgFrom(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateInviteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	inv, err := h.invites.Create(ctx, orgID, req.Email, req.ParsedRole())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, inv)
}

// handleValidateInvite handles GET /v1/orgs/{orgID}/invites/{token}. The
// invitee holds no bearer token yet, so the organization comes from the URL.
func (h *Handler) handleValidateInvite(w http.ResponseWriter, r *http.Request) {
	orgID, token, err := inviteParams(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	inv, err := h.invites.Validate(r.Context(), orgID, token)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, inv)
}

// handleRedeemInvite handles POST /v1/orgs/{orgID}/invites/{token}/redeem.
func (h *Handler) handleRedeemInvite(w http.ResponseWriter, r *http.Request) {
	orgID, token, err := inviteParams(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	inv, err := h.invites.Redeem(r.Context(), orgID, token)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, inv)
}

func inviteParams(r *http.Request) (domain.OrgID, string, error) {
	orgID, err := domain.ParseOrgID(chi.URLParam(r, "orgID"))
	if err != nil {
		return domain.OrgID{}, "", err
	}
	return orgID, chi.URLParam(r, "token"), nil
}
