//go:build integration

package docstore

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundledger/internal/ledger/models"
	"fundledger/pkg/domain"
	"fundledger/pkg/platform/sentinel"
	"fundledger/pkg/testutil/containers"
)

func newRedisStore(t *testing.T) *Redis {
	t.Helper()
	rc := containers.NewRedisContainer(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRedisFromClient(rc.Client, log)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store := newRedisStore(t)
	orgID := domain.OrgID(uuid.New())

	_, err := store.Get(context.Background(), orgID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, store.Create(context.Background(), orgID, &models.OrgDocument{Name: "Helping Hands"}))
	assert.ErrorIs(t, store.Create(context.Background(), orgID, &models.OrgDocument{}), sentinel.ErrConflict)

	doc, err := store.Get(context.Background(), orgID)
	require.NoError(t, err)
	assert.Equal(t, "Helping Hands", doc.Name)

	require.NoError(t, store.Health(context.Background()))
}

func TestRedisReplaceAndSubscribe(t *testing.T) {
	store := newRedisStore(t)
	orgID := domain.OrgID(uuid.New())
	require.NoError(t, store.Create(context.Background(), orgID, &models.OrgDocument{Name: "Helping Hands"}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	snapshots, err := store.Subscribe(ctx, orgID)
	require.NoError(t, err)

	funder := models.Funder{ID: domain.FunderID(uuid.New()), Name: "Acme Trust", Status: models.FunderStatusActive}
	require.NoError(t, store.ReplaceCollection(context.Background(), orgID, Funders, []models.Funder{funder}))

	select {
	case doc := <-snapshots:
		require.Len(t, doc.Funders, 1)
		assert.Equal(t, funder.ID, doc.Funders[0].ID)
	case <-time.After(5 * time.Second):
		t.Fatal("expected a published snapshot")
	}

	doc, err := store.Get(context.Background(), orgID)
	require.NoError(t, err)
	require.Len(t, doc.Funders, 1)
}

// Reference-shaped wallet values written by other clients come back
// normalized to scalar ids.
func TestRedisNormalizesWalletRefs(t *testing.T) {
	store := newRedisStore(t)
	orgID := domain.OrgID(uuid.New())
	require.NoError(t, store.Create(context.Background(), orgID, &models.OrgDocument{}))

	raw := []map[string]any{{
		"id":          uuid.NewString(),
		"type":        "income",
		"amount":      100,
		"currency":    "USD",
		"walletId":    map[string]any{"path": "orgs/x/funders/f-7"},
		"description": "donation",
		"status":      "posted",
	}}
	require.NoError(t, store.ReplaceCollection(context.Background(), orgID, Incomes, raw))

	doc, err := store.Get(context.Background(), orgID)
	require.NoError(t, err)
	require.Len(t, doc.Incomes, 1)
	assert.Equal(t, models.WalletRef("f-7"), doc.Incomes[0].Wallet)
}
