package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"fundledger/internal/platform/token"
	"fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
	"fundledger/pkg/platform/httputil"
	"fundledger/pkg/requestcontext"
)

// Validator checks an access token and returns its claims.
type Validator interface {
	Validate(tokenString string) (*token.Claims, error)
}

// RequireAuth authenticates the bearer token and installs the actor's
// identity, role, and organization into the request context. Role
// sufficiency is deliberately NOT enforced here: services audit and no-op
// under-privileged attempts themselves.
func RequireAuth(validator Validator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(r.Context(), "unauthorized access - missing token")
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			claims, err := validator.Validate(raw)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token", "error", err)
				httputil.WriteError(w, err)
				return
			}
			orgID, err := domain.ParseOrgID(claims.OrgID)
			if err != nil {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "token carries no organization"))
				return
			}

			ctx := requestcontext.WithActor(r.Context(), domain.ActorID(claims.ActorID), domain.Role(claims.Role))
			ctx = requestcontext.WithOrgID(ctx, orgID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
