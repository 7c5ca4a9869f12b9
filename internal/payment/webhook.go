// Package payment receives callbacks from the external payment gateway and
// records them as incomes. The gateway is not a member of any organization;
// its callbacks run as a synthetic staff-level actor so created incomes pass
// through the same status engine as staff entries.
package payment

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"fundledger/internal/ledger/models"
	"fundledger/internal/ledger/service"
	"fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
	"fundledger/pkg/platform/httputil"
	"fundledger/pkg/requestcontext"
)

// GatewayActor is the synthetic identity payment callbacks run under.
const GatewayActor = domain.ActorID("payment-gateway")

type Handler struct {
	ledger *service.Service
	log    *slog.Logger
}

func NewHandler(ledger *service.Service, log *slog.Logger) *Handler {
	return &Handler{ledger: ledger, log: log}
}

type webhookRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Metadata struct {
		OrgID    string           `json:"orgId"`
		WalletID models.WalletRef `json:"walletId"`
		Email    string           `json:"email"`
		Name     string           `json:"name"`
	} `json:"metadata"`
}

// HandleDonation records a completed gateway payment as an income on the
// organization named in the callback metadata.
func (h *Handler) HandleDonation(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	orgID, err := domain.ParseOrgID(req.Metadata.OrgID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "callback metadata carries no organization"))
		return
	}

	description := "Donation"
	if req.Metadata.Name != "" {
		description = "Donation from " + req.Metadata.Name
	}

	ctx := requestcontext.WithActor(r.Context(), GatewayActor, domain.RoleStaff)
	tx, err := h.ledger.CreateIncome(ctx, orgID, service.CreateTransactionInput{
		Wallet:      req.Metadata.WalletID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Date:        time.Now().UTC(),
		Description: description,
		Category:    "donation",
	})
	if err != nil {
		h.log.ErrorContext(ctx, "payment callback not recorded", "org", orgID.String(), "error", err)
		httputil.WriteError(w, err)
		return
	}

	h.log.InfoContext(ctx, "payment recorded",
		"org", orgID.String(),
		"transaction", tx.ID.String(),
		"status", string(tx.Status),
	)
	httputil.WriteJSON(w, http.StatusCreated, tx)
}
