package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundledger/internal/auditlog"
	"fundledger/internal/docstore"
	"fundledger/internal/ledger/models"
	"fundledger/internal/ledger/service"
	ledgersync "fundledger/internal/sync"
	"fundledger/pkg/domain"
)

func newWebhookFixture(t *testing.T) (*Handler, *docstore.InMemory, domain.OrgID, domain.FunderID) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := docstore.NewInMemory()
	hub := ledgersync.NewHub(context.Background(), store, log, nil)
	ledger := service.New(hub, auditlog.NewRecorder(log), log)

	orgID := domain.OrgID(uuid.New())
	funderID := domain.FunderID(uuid.New())
	doc := &models.OrgDocument{
		Name:        "Helping Hands",
		OrgSettings: models.OrgSettings{Currency: "USD", ApprovalsEnabled: true},
		Funders: []models.Funder{
			{ID: funderID, Name: "Acme Trust", Status: models.FunderStatusActive},
		},
	}
	require.NoError(t, store.Create(context.Background(), orgID, doc))
	return NewHandler(ledger, log), store, orgID, funderID
}

func post(t *testing.T, h *Handler, payload any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	h.HandleDonation(w, req)
	return w
}

// Gateway callbacks run as a staff-level synthetic actor, so with approvals
// enabled the recorded income lands pending like any staff entry.
func TestWebhookRecordsPendingIncome(t *testing.T) {
	h, store, orgID, funderID := newWebhookFixture(t)

	w := post(t, h, map[string]any{
		"amount":   "75",
		"currency": "USD",
		"metadata": map[string]any{
			"orgId":    orgID.String(),
			"walletId": funderID.String(),
			"email":    "donor@example.org",
			"name":     "Jordan",
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var tx models.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tx))
	assert.Equal(t, models.TypeIncome, tx.Type)
	assert.Equal(t, models.StatusPending, tx.Status)
	assert.Equal(t, GatewayActor, tx.CreatedBy)
	assert.Equal(t, "Donation from Jordan", tx.Description)
	assert.Equal(t, models.WalletRef(funderID.String()), tx.Wallet)

	remote, err := store.Get(context.Background(), orgID)
	require.NoError(t, err)
	require.Len(t, remote.Incomes, 1)
}

// Reference-shaped wallet metadata normalizes like every other inbound value.
func TestWebhookNormalizesWalletMetadata(t *testing.T) {
	h, _, orgID, funderID := newWebhookFixture(t)

	w := post(t, h, map[string]any{
		"amount": "10",
		"metadata": map[string]any{
			"orgId":    orgID.String(),
			"walletId": map[string]any{"path": "orgs/x/funders/" + funderID.String()},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var tx models.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tx))
	assert.Equal(t, models.WalletRef(funderID.String()), tx.Wallet)
	assert.Equal(t, "Donation", tx.Description)
}

func TestWebhookRejectsMissingOrg(t *testing.T) {
	h, _, _, _ := newWebhookFixture(t)

	w := post(t, h, map[string]any{"amount": "10", "metadata": map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	h, _, _, _ := newWebhookFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	h.HandleDonation(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
