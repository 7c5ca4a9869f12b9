package sync

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"fundledger/internal/docstore"
	ledgermetrics "fundledger/internal/ledger/metrics"
	"fundledger/internal/ledger/models"
	"fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
	"fundledger/pkg/platform/sentinel"
)

// Hub hands out one Coordinator per organization and keeps each
// coordinator's subscription loop running for the hub's lifetime.
type Hub struct {
	store   docstore.Store
	log     *slog.Logger
	metrics *ledgermetrics.Metrics

	runCtx context.Context

	mu     sync.Mutex
	coords map[domain.OrgID]*Coordinator
}

// NewHub builds a hub whose subscription loops live until runCtx is done.
func NewHub(runCtx context.Context, store docstore.Store, log *slog.Logger, metrics *ledgermetrics.Metrics) *Hub {
	return &Hub{
		store:   store,
		log:     log,
		metrics: metrics,
		runCtx:  runCtx,
		coords:  make(map[domain.OrgID]*Coordinator),
	}
}

// Coordinator returns the coordinator for orgID, loading the document and
// starting its subscription loop on first use.
func (h *Hub) Coordinator(ctx context.Context, orgID domain.OrgID) (*Coordinator, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if co, ok := h.coords[orgID]; ok {
		return co, nil
	}

	doc, err := h.store.Get(ctx, orgID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "organization not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeSyncFailure, "loading organization document failed")
	}

	co := New(orgID, h.store, doc, h.log, WithMetrics(h.metrics))
	h.coords[orgID] = co
	go func() {
		if err := co.Run(h.runCtx); err != nil && h.runCtx.Err() == nil {
			h.log.Error("subscription loop ended", "org", orgID.String(), "error", err)
		}
	}()
	return co, nil
}

// Health reports whether the backing store is reachable.
func (h *Hub) Health(ctx context.Context) error {
	return h.store.Health(ctx)
}

// CreateOrg provisions a fresh organization document.
func (h *Hub) CreateOrg(ctx context.Context, orgID domain.OrgID, doc *models.OrgDocument) error {
	if err := h.store.Create(ctx, orgID, doc); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "organization already exists")
		}
		return dErrors.Wrap(err, dErrors.CodeSyncFailure, "creating organization document failed")
	}
	return nil
}
