// Package invite issues and validates time-boxed invitation tokens. Tokens
// are opaque random values; expiry is passive and checked only at redemption.
package invite

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fundledger/internal/auditlog"
	"fundledger/internal/docstore"
	"fundledger/internal/ledger/models"
	ledgersync "fundledger/internal/sync"
	"fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
	"fundledger/pkg/platform/sentinel"
	"fundledger/pkg/requestcontext"
)

// TTL is the fixed invitation window.
const TTL = 7 * 24 * time.Hour

type Manager struct {
	hub   *ledgersync.Hub
	audit *auditlog.Recorder
	log   *slog.Logger
}

func NewManager(hub *ledgersync.Hub, audit *auditlog.Recorder, log *slog.Logger) *Manager {
	return &Manager{hub: hub, audit: audit, log: log}
}

// Create issues a pending invite for email under role. Admin-only; denial is
// audited and the operation no-ops.
func (m *Manager) Create(ctx context.Context, orgID domain.OrgID, email string, role domain.Role) (*models.Invite, error) {
	co, err := m.hub.Coordinator(ctx, orgID)
	if err != nil {
		return nil, err
	}
	_, actorRole := requestcontext.Actor(ctx)
	if !actorRole.IsAdmin() {
		m.audit.RecordDenied(ctx, co, "invite_create", email)
		return nil, dErrors.New(dErrors.CodePermissionDenied, "only administrators may invite members")
	}
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	if !role.Valid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}

	token, err := newToken()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "token generation failed")
	}
	now := requestcontext.Now(ctx)
	invite := models.Invite{
		ID:        domain.InviteID(uuid.New()),
		Token:     token,
		Email:     email,
		Role:      role,
		Status:    models.InviteStatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(TTL),
	}

	err = co.Apply(ctx, docstore.Invites, func(doc *models.OrgDocument) error {
		invite.OrgName = doc.Name
		doc.Invites = append(doc.Invites, invite)
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.audit.Record(ctx, co, auditlog.ActionInviteCreated, invite.ID.String(), map[string]any{
		"email": email,
		"role":  string(role),
	})
	return &invite, nil
}

// Validate checks a token without consuming it: valid iff a matching invite
// exists, is pending, and has not expired.
func (m *Manager) Validate(ctx context.Context, orgID domain.OrgID, token string) (*models.Invite, error) {
	co, err := m.hub.Coordinator(ctx, orgID)
	if err != nil {
		return nil, err
	}
	doc := co.Snapshot()
	invite := doc.InviteByToken(token)
	if invite == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "invite not found")
	}
	if err := usable(invite, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	return invite, nil
}

// Redeem consumes a valid token exactly once, marking the invite accepted.
func (m *Manager) Redeem(ctx context.Context, orgID domain.OrgID, token string) (*models.Invite, error) {
	co, err := m.hub.Coordinator(ctx, orgID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var redeemed models.Invite
	err = co.Apply(ctx, docstore.Invites, func(doc *models.OrgDocument) error {
		invite := doc.InviteByToken(token)
		if invite == nil {
			return sentinel.ErrNotFound
		}
		if err := usable(invite, now); err != nil {
			return err
		}
		invite.Status = models.InviteStatusAccepted
		redeemed = *invite
		return nil
	})
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "invite not found")
	}
	if err != nil {
		return nil, err
	}
	m.audit.Record(ctx, co, auditlog.ActionInviteRedeemed, redeemed.ID.String(), map[string]any{
		"email": redeemed.Email,
		"role":  string(redeemed.Role),
	})
	return &redeemed, nil
}

func usable(invite *models.Invite, now time.Time) error {
	if invite.Status != models.InviteStatusPending {
		return dErrors.New(dErrors.CodeConflict, "invite already used")
	}
	if !now.Before(invite.ExpiresAt) {
		return dErrors.New(dErrors.CodeConflict, "invite expired")
	}
	return nil
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
