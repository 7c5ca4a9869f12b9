package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundledger/internal/ledger/models"
	"fundledger/pkg/domain"
	"fundledger/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	store := NewInMemory()
	orgID := domain.OrgID(uuid.New())

	t.Run("get before create", func(t *testing.T) {
		_, err := store.Get(context.Background(), orgID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("create then get", func(t *testing.T) {
		require.NoError(t, store.Create(context.Background(), orgID, &models.OrgDocument{Name: "Helping Hands"}))
		doc, err := store.Get(context.Background(), orgID)
		require.NoError(t, err)
		assert.Equal(t, "Helping Hands", doc.Name)
	})

	t.Run("duplicate create conflicts", func(t *testing.T) {
		err := store.Create(context.Background(), orgID, &models.OrgDocument{})
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("get returns a clone", func(t *testing.T) {
		doc, err := store.Get(context.Background(), orgID)
		require.NoError(t, err)
		doc.Name = "Mutated"

		again, err := store.Get(context.Background(), orgID)
		require.NoError(t, err)
		assert.Equal(t, "Helping Hands", again.Name)
	})

	t.Run("replace collection wholesale", func(t *testing.T) {
		funders := []models.Funder{{ID: domain.FunderID(uuid.New()), Name: "Acme Trust", Status: models.FunderStatusActive}}
		require.NoError(t, store.ReplaceCollection(context.Background(), orgID, Funders, funders))

		replacement := []models.Funder{{ID: domain.FunderID(uuid.New()), Name: "Bright Futures", Status: models.FunderStatusActive}}
		require.NoError(t, store.ReplaceCollection(context.Background(), orgID, Funders, replacement))

		doc, err := store.Get(context.Background(), orgID)
		require.NoError(t, err)
		require.Len(t, doc.Funders, 1)
		assert.Equal(t, "Bright Futures", doc.Funders[0].Name)
	})

	t.Run("replace on unknown org", func(t *testing.T) {
		err := store.ReplaceCollection(context.Background(), domain.OrgID(uuid.New()), Funders, []models.Funder{})
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestInMemorySubscribe(t *testing.T) {
	store := NewInMemory()
	orgID := domain.OrgID(uuid.New())
	require.NoError(t, store.Create(context.Background(), orgID, &models.OrgDocument{}))

	ctx, cancel := context.WithCancel(context.Background())
	snapshots, err := store.Subscribe(ctx, orgID)
	require.NoError(t, err)

	require.NoError(t, store.ReplaceCollection(context.Background(), orgID, Projects, []models.Project{
		{ID: domain.ProjectID(uuid.New()), Name: "Community Garden", Owner: models.RefForWallet(domain.OrgWallet)},
	}))

	select {
	case doc := <-snapshots:
		require.Len(t, doc.Projects, 1)
		assert.Equal(t, "Community Garden", doc.Projects[0].Name)
	case <-time.After(time.Second):
		t.Fatal("expected a snapshot after the write")
	}

	cancel()
	select {
	case _, ok := <-snapshots:
		assert.False(t, ok, "channel closes when the context ends")
	case <-time.After(time.Second):
		t.Fatal("expected the channel to close")
	}
}

func TestFailureInjection(t *testing.T) {
	store := NewInMemory()
	orgID := domain.OrgID(uuid.New())
	require.NoError(t, store.Create(context.Background(), orgID, &models.OrgDocument{}))

	store.FailNextReplace(assert.AnError, 2)
	assert.ErrorIs(t, store.ReplaceCollection(context.Background(), orgID, Logs, []models.LogEntry{}), assert.AnError)
	assert.ErrorIs(t, store.ReplaceCollection(context.Background(), orgID, Logs, []models.LogEntry{}), assert.AnError)
	assert.NoError(t, store.ReplaceCollection(context.Background(), orgID, Logs, []models.LogEntry{}))
}
