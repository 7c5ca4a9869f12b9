// Package httptransport is the thin HTTP layer. Handlers decode, delegate to
// domain services, and translate results into the shared JSON envelopes;
// business rules stay in the services.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fundledger/internal/auditlog"
	"fundledger/internal/invite"
	"fundledger/internal/ledger/service"
	"fundledger/internal/payment"
	"fundledger/internal/platform/middleware"
	"fundledger/internal/platform/token"
	ledgersync "fundledger/internal/sync"
	"fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
	"fundledger/pkg/platform/httputil"
	"fundledger/pkg/requestcontext"
)

// Handler wires ledger endpoints to the domain services.
type Handler struct {
	hub     *ledgersync.Hub
	ledger  *service.Service
	logs    *auditlog.Service
	invites *invite.Manager
	payment *payment.Handler
	tokens  *token.Service
	logger  *slog.Logger
}

func NewHandler(
	hub *ledgersync.Hub,
	ledger *service.Service,
	logs *auditlog.Service,
	invites *invite.Manager,
	payment *payment.Handler,
	tokens *token.Service,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		hub:     hub,
		ledger:  ledger,
		logs:    logs,
		invites: invites,
		payment: payment,
		tokens:  tokens,
		logger:  logger,
	}
}

// NewRouter mounts all endpoints. Payment callbacks, invite validation, and
// invite redemption are reachable without a bearer token; everything else
// runs behind authentication.
func NewRouter(h *Handler, auth func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Post("/webhooks/payment", h.payment.HandleDonation)

	r.Post("/v1/orgs", h.handleCreateOrg)
	r.Get("/v1/orgs/{orgID}/invites/{token}", h.handleValidateInvite)
	r.Post("/v1/orgs/{orgID}/invites/{token}/redeem", h.handleRedeemInvite)

	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Post("/v1/incomes", h.handleCreateIncome)
		r.Post("/v1/incomes/{id}/approve", h.handleApproveIncome)
		r.Post("/v1/incomes/{id}/reject", h.handleRejectIncome)

		r.Post("/v1/expenses", h.handleCreateExpense)
		r.Post("/v1/expenses/{id}/approve", h.handleApproveExpense)
		r.Post("/v1/expenses/{id}/reject", h.handleRejectExpense)
		r.Post("/v1/expenses/{id}/post", h.handlePostPendingExpense)

		r.Post("/v1/funders", h.handleCreateFunder)
		r.Post("/v1/funders/{id}/deactivate", h.handleDeactivateFunder)
		r.Get("/v1/funders/{id}/summary", h.handleFunderSummary)

		r.Post("/v1/projects", h.handleCreateProject)
		r.Get("/v1/projects/{id}/summary", h.handleProjectSummary)

		r.Get("/v1/wallets/{walletID}/balance", h.handleWalletBalance)

		r.Get("/v1/logs", h.handleListLogs)
		r.Post("/v1/logs/{id}/remove", h.handleSoftRemoveLog)
		r.Post("/v1/logs/{id}/restore", h.handleRestoreLog)
		r.Post("/v1/logs/{id}/finalize", h.handleFinalizeLog)

		r.Post("/v1/invites", h.handleCreateInvite)
		r.Get("/v1/members", h.handleListMembers)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.hub.Health(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "health check failed", "error", err)
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// orgFrom returns the authenticated token's organization scope.
func orgFrom(ctx context.Context) (domain.OrgID, error) {
	orgID, ok := requestcontext.OrgID(ctx)
	if !ok {
		return domain.OrgID{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return orgID, nil
}
