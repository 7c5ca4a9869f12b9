// Package auditlog appends immutable audit entries for every mutating
// operation and manages the soft-delete/restore/finalize lifecycle that
// applies to log entries only. The log never rewrites history: even removing
// a log entry produces a new entry.
package auditlog

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"fundledger/internal/ledger/models"
	ledgersync "fundledger/internal/sync"
	"fundledger/pkg/domain"
	"fundledger/pkg/requestcontext"
)

// Recorder builds and appends audit entries. Appends are best-effort: the
// underlying coordinator applies them optimistically and does not roll back
// the primary mutation if persisting the trail fails.
type Recorder struct {
	log *slog.Logger
}

func NewRecorder(log *slog.Logger) *Recorder {
	return &Recorder{log: log}
}

// Record appends one entry attributed to the acting member from ctx and
// returns it.
func (r *Recorder) Record(ctx context.Context, co *ledgersync.Coordinator, action Action, refID string, payload map[string]any) models.LogEntry {
	actorID, actorRole := requestcontext.Actor(ctx)
	entry := models.LogEntry{
		ID:        domain.LogID(uuid.New()),
		Action:    string(action),
		RefID:     refID,
		Payload:   payload,
		ActorID:   actorID,
		ActorRole: actorRole,
		Timestamp: requestcontext.Now(ctx),
	}
	co.AppendLog(ctx, entry)
	return entry
}

// RecordDenied appends the distinguished denial entry for a role-gated
// operation. Denials are audited, never raised.
func (r *Recorder) RecordDenied(ctx context.Context, co *ledgersync.Coordinator, op string, refID string) models.LogEntry {
	actorID, actorRole := requestcontext.Actor(ctx)
	r.log.Warn("operation denied for insufficient role",
		"op", op, "actor", string(actorID), "role", string(actorRole), "ref", refID)
	return r.Record(ctx, co, Denied(op), refID, map[string]any{
		"attemptedRole": string(actorRole),
	})
}
