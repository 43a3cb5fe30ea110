// Package httputil centralizes JSON encoding and error translation for HTTP
// handlers so every endpoint speaks the same envelope.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "sanctionwatch/pkg/domain-errors"
)

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeBadRequest:  http.StatusBadRequest,
	dErrors.CodeNotFound:    http.StatusNotFound,
	dErrors.CodeConflict:    http.StatusConflict,
	dErrors.CodeTimeout:     http.StatusGatewayTimeout,
	dErrors.CodeUnavailable: http.StatusServiceUnavailable,
	dErrors.CodeInternal:    http.StatusInternalServerError,
}

// WriteJSON encodes v with the given status. Encoding failures are logged by
// net/http; there is nothing useful left to send at that point.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error to its status and JSON envelope. Internal
// errors omit the description so store and driver details never leak to
// clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	body := map[string]string{"error": string(code)}
	if status < http.StatusInternalServerError {
		body["error_description"] = err.Error()
	}
	WriteJSON(w, status, body)
}

// Decode unmarshals the request body into T, translating malformed input to
// a bad_request error response. Returns false when the response has already
// been written.
func Decode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		if logger != nil {
			logger.WarnContext(r.Context(), "malformed request body", "path", r.URL.Path, "error", err)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed request body"))
		return v, false
	}
	return v, true
}
