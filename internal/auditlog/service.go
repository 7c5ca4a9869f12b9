package auditlog

import (
	"context"
	"errors"
	"log/slog"

	"fundledger/internal/docstore"
	"fundledger/internal/ledger/models"
	ledgersync "fundledger/internal/sync"
	"fundledger/pkg/domain"
	"fundledger/pkg/platform/sentinel"
	"fundledger/pkg/requestcontext"
)

// Service drives the log entry lifecycle. Soft removal flags an entry and is
// recoverable; finalize is a precondition-checked hard removal that tolerates
// a concurrent restore by another client.
type Service struct {
	hub   *ledgersync.Hub
	store docstore.Store
	rec   *Recorder
	log   *slog.Logger
}

func NewService(hub *ledgersync.Hub, store docstore.Store, rec *Recorder, log *slog.Logger) *Service {
	return &Service{hub: hub, store: store, rec: rec, log: log}
}

// Entries returns the current local view of the log.
func (s *Service) Entries(ctx context.Context, orgID domain.OrgID) ([]models.LogEntry, error) {
	co, err := s.hub.Coordinator(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return co.Snapshot().Logs, nil
}

// SoftRemove marks the entry deleted, stamping the actor and time. The local
// mutation is optimistic; a failed remote persist rolls it back and surfaces
// the failure. Success yields a fresh log_soft_removed entry — which is only
// appended after the target mutation succeeded, so the lifecycle can never
// recurse onto its own trail.
func (s *Service) SoftRemove(ctx context.Context, orgID domain.OrgID, id domain.LogID) error {
	co, err := s.hub.Coordinator(ctx, orgID)
	if err != nil {
		return err
	}
	if denied := s.requireAdmin(ctx, co, "log_soft_remove", id.String()); denied {
		return nil
	}

	actorID, _ := requestcontext.Actor(ctx)
	now := requestcontext.Now(ctx)
	err = co.Apply(ctx, docstore.Logs, func(doc *models.OrgDocument) error {
		entry := doc.Log(id)
		if entry == nil {
			return sentinel.ErrNotFound
		}
		if entry.Deleted {
			return ledgersync.ErrNoChange
		}
		entry.Deleted = true
		entry.DeletedBy = actorID
		entry.DeletedAt = &now
		return nil
	})
	if errors.Is(err, sentinel.ErrNotFound) {
		// Stale local state; the next snapshot sorts it out.
		s.log.Warn("soft remove target missing", "org", orgID.String(), "log", id.String())
		return nil
	}
	if err != nil {
		return err
	}

	s.rec.Record(ctx, co, ActionLogSoftRemoved, id.String(), nil)
	return nil
}

// Restore clears the deleted flag with the same optimistic/rollback
// discipline, producing a log_restored entry.
func (s *Service) Restore(ctx context.Context, orgID domain.OrgID, id domain.LogID) error {
	co, err := s.hub.Coordinator(ctx, orgID)
	if err != nil {
		return err
	}
	if denied := s.requireAdmin(ctx, co, "log_restore", id.String()); denied {
		return nil
	}

	err = co.Apply(ctx, docstore.Logs, func(doc *models.OrgDocument) error {
		entry := doc.Log(id)
		if entry == nil {
			return sentinel.ErrNotFound
		}
		if !entry.Deleted {
			return ledgersync.ErrNoChange
		}
		entry.Deleted = false
		entry.DeletedBy = ""
		entry.DeletedAt = nil
		return nil
	})
	if errors.Is(err, sentinel.ErrNotFound) {
		s.log.Warn("restore target missing", "org", orgID.String(), "log", id.String())
		return nil
	}
	if err != nil {
		return err
	}

	s.rec.Record(ctx, co, ActionLogRestored, id.String(), nil)
	return nil
}

// Finalize hard-removes the entry from the array, but only if the
// authoritative remote copy still has it flagged deleted at the moment of the
// write. The remote document is re-fetched immediately before mutating so a
// concurrent restore by another client turns finalize into a silent no-op.
func (s *Service) Finalize(ctx context.Context, orgID domain.OrgID, id domain.LogID) error {
	co, err := s.hub.Coordinator(ctx, orgID)
	if err != nil {
		return err
	}
	if denied := s.requireAdmin(ctx, co, "log_finalize", id.String()); denied {
		return nil
	}

	remote, err := s.store.Get(ctx, orgID)
	if err != nil {
		return err
	}
	remoteEntry := remote.Log(id)
	if remoteEntry == nil || !remoteEntry.Deleted {
		// Expected under concurrent restore; not an error.
		s.log.Debug("finalize precondition failed", "org", orgID.String(), "log", id.String())
		return nil
	}

	err = co.Apply(ctx, docstore.Logs, func(doc *models.OrgDocument) error {
		for i := range doc.Logs {
			if doc.Logs[i].ID == id {
				doc.Logs = append(doc.Logs[:i], doc.Logs[i+1:]...)
				return nil
			}
		}
		return sentinel.ErrNotFound
	})
	if errors.Is(err, sentinel.ErrNotFound) {
		// Remote has the entry but local state does not; nothing was
		// removed, so no removal is recorded.
		s.log.Warn("finalize target missing locally", "org", orgID.String(), "log", id.String())
		return nil
	}
	if err != nil {
		return err
	}

	s.rec.Record(ctx, co, ActionLogFinalizedRemoved, id.String(), nil)
	return nil
}

// requireAdmin audits and reports a denial for non-administrative actors.
func (s *Service) requireAdmin(ctx context.Context, co *ledgersync.Coordinator, op, refID string) bool {
	_, role := requestcontext.Actor(ctx)
	if role.IsAdmin() {
		return false
	}
	s.rec.RecordDenied(ctx, co, op, refID)
	return true
}
