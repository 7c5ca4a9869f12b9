// Package sync owns the local copy of the organization document and
// reconciles it against the authoritative remote store.
//
// All mutation flows through Coordinator.Apply: compute the new collection
// from current local state, apply it locally first (optimistic), persist the
// whole collection remotely, and restore the pre-mutation snapshot if the
// persist fails. Nothing outside this package mutates the snapshot.
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
)

// ErrNoChange lets a mutation closure report that it left the document
// untouched; Apply then skips the remote write entirely.
var ErrNoChange = errors.New("no change")

type Coordinator struct {
	orgID   domain.OrgID
	store   docstore.Store
	log     *slog.Logger
	metrics *ledgermetrics.Metrics

	mu  sync.Mutex
	doc *models.OrgDocument
}

type Option func(*Coordinator)

func WithMetrics(m *ledgermetrics.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// New seeds a coordinator with the document fetched from the store. The
// caller is expected to start Run for the subscription feed.
func New(orgID domain.OrgID, store docstore.Store, doc *models.OrgDocument, log *slog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{orgID: orgID, store: store, doc: doc.Clone(), log: log}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) OrgID() domain.OrgID { return c.orgID }

// Snapshot returns a deep copy of local state. Balance computations and
// solvency checks run against this, accepting that it may be stale relative
// to other clients' concurrent writes.
func (c *Coordinator) Snapshot() *models.OrgDocument {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.Clone()
}

// Apply runs one optimistic mutation against the named collection.
//
// The mutation closure sees (and may mutate) live local state under the
// coordinator's lock; returning an error aborts with local state restored
// and nothing written remotely. After a successful local mutation the whole
// collection is replaced remotely; a failed persist restores the
// pre-mutation snapshot and surfaces a sync failure. Either way the caller
// never observes a half-applied state.
func (c *Coordinator) Apply(ctx context.Context, col docstore.Collection, mutate func(doc *models.OrgDocument) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.doc.Clone()
	if err := mutate(c.doc); err != nil {
		c.doc = prev
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		return err
	}

	value, err := docstore.CollectionValue(c.doc, col)
	if err != nil {
		c.doc = prev
		return err
	}
	if err := c.store.ReplaceCollection(ctx, c.orgID, col, value); err != nil {
		c.doc = prev
		if c.metrics != nil {
			c.metrics.SyncRollbacks.Inc()
		}
		c.log.Warn("remote persist failed, rolled back",
			"org", c.orgID.String(), "collection", string(col), "error", err)
		return dErrors.Wrap(err, dErrors.CodeSyncFailure, "remote persist failed; local changes were rolled back")
	}
	return nil
}

// AppendLog appends an audit entry optimistically and persists best-effort.
// Log appends are deliberately not rolled back on remote failure: losing a
// trail entry is less harmful than unwinding the financial mutation it
// records.
func (c *Coordinator) AppendLog(ctx context.Context, entry models.LogEntry) {
	c.mu.Lock()
	c.doc.Logs = append(c.doc.Logs, entry)
	// The persist runs outside the lock, so it must work on a clone: the live
	// Logs array can be mutated by a concurrent Apply while the store
	// marshals the value.
	snapshot := c.doc.Clone()
	c.mu.Unlock()

	value, err := docstore.CollectionValue(snapshot, docstore.Logs)
	if err != nil {
		c.log.Warn("audit append failed", "org", c.orgID.String(), "error", err)
		return
	}
	if err := c.store.ReplaceCollection(ctx, c.orgID, docstore.Logs, value); err != nil {
		c.log.Warn("audit append not persisted", "org", c.orgID.String(),
			"action", entry.Action, "error", err)
	}
}

// Run consumes the store's subscription feed until ctx is done. Every inbound
// snapshot replaces local state wholesale; there is no field-level merge.
func (c *Coordinator) Run(ctx context.Context) error {
	snapshots, err := c.store.Subscribe(ctx, c.orgID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeSyncFailure, "subscription failed")
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case doc, ok := <-snapshots:
			if !ok {
				return ctx.Err()
			}
			c.replace(doc)
		}
	}
}

func (c *Coordinator) replace(doc *models.OrgDocument) {
	c.mu.Lock()
	c.doc = doc.Clone()
	c.mu.Unlock()
	if c.metrics != nil {
		c.metrics.SnapshotsApplied.Inc()
	}
}
