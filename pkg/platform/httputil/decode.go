package httputil

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "fundledger/pkg/domain-errors"
)

// Validatable is implemented by request types that validate and parse their
// own fields after decoding.
type Validatable interface {
	Validate() error
}

// DecodeAndPrepare decodes the JSON body into T, runs its validation, and on
// any failure writes the error envelope itself. Callers bail out when ok is
// false.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (PT, bool) {
	var body T
	req := PT(&body)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		logger.WarnContext(ctx, "request body not decoded", "request_id", requestID, "error", err)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	if err := req.Validate(); err != nil {
		logger.WarnContext(ctx, "request validation failed", "request_id", requestID, "error", err)
		WriteError(w, err)
		return nil, false
	}
	return req, true
}
