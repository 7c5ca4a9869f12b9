// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Values are set by middleware (or synthesized at non-HTTP entry points such
// as the payment webhook) and consumed by services. Keeping this package free
// of net/http lets services import only what they need.
//
// Usage in services (read values):
//
//	actorID, role := requestcontext.Actor(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithActor(ctx, actorID, role)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	"fundledger/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	actorIDKey     struct{}
	actorRoleKey   struct{}
	orgIDKey       struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

func WithActor(ctx context.Context, id domain.ActorID, role domain.Role) context.Context {
	ctx = context.WithValue(ctx, actorIDKey{}, id)
	return context.WithValue(ctx, actorRoleKey{}, role)
}

// Actor returns the acting member's identity and role. Missing values come
// back zero; services treat an unknown actor as the least-privileged role.
func Actor(ctx context.Context) (domain.ActorID, domain.Role) {
	id, _ := ctx.Value(actorIDKey{}).(domain.ActorID)
	role, _ := ctx.Value(actorRoleKey{}).(domain.Role)
	return id, role
}

// WithOrgID records the organization the authenticated token is scoped to.
func WithOrgID(ctx context.Context, id domain.OrgID) context.Context {
	return context.WithValue(ctx, orgIDKey{}, id)
}

// OrgID returns the token's organization scope and whether one was set.
func OrgID(ctx context.Context) (domain.OrgID, bool) {
	id, ok := ctx.Value(orgIDKey{}).(domain.OrgID)
	return id, ok
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithTime pins the request time, mainly for deterministic tests.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Now returns the pinned request time or the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}
