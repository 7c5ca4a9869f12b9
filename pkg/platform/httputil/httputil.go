// Package httputil centralizes JSON response and error envelope handling so
// every handler speaks the same wire format.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "fundledger/pkg/domain-errors"
)

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeInvalidInput:       http.StatusBadRequest,
	dErrors.CodeBadRequest:         http.StatusBadRequest,
	dErrors.CodeUnauthorized:       http.StatusUnauthorized,
	dErrors.CodePermissionDenied:   http.StatusForbidden,
	dErrors.CodeNotFound:           http.StatusNotFound,
	dErrors.CodeConflict:           http.StatusConflict,
	dErrors.CodeInsufficientFunds:  http.StatusUnprocessableEntity,
	dErrors.CodeSyncFailure:        http.StatusBadGateway,
	dErrors.CodePreconditionFailed: http.StatusConflict,
	dErrors.CodeInvariantViolation: http.StatusConflict,
	dErrors.CodeInternal:           http.StatusInternalServerError,
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a coded error into the standard envelope. Internal
// errors omit the description so infrastructure detail never leaks.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
		code = dErrors.CodeInternal
	}

	body := map[string]string{"error": string(code)}
	if code != dErrors.CodeInternal {
		if msg := dErrors.MessageOf(err); msg != "" {
			body["error_description"] = msg
		}
	}
	WriteJSON(w, status, body)
}
