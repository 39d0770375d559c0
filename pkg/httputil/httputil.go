// Package httputil centralizes JSON response writing and domain error
// translation so every handler returns the same envelope shape.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/zlovtnik/nfe-identifications/pkg/domainerrors"
)

// maxBodyBytes caps request bodies; identification payloads are small.
const maxBodyBytes = 1 << 20

// WriteJSON serializes v with the given status. Encoding failures are
// logged at the caller's discretion; the status line has already been sent.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error code to an HTTP status and writes the
// error envelope. Internal errors omit the description so backend details
// never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := domainerrors.CodeOf(err)
	status := toHTTPStatus(code)

	body := map[string]string{"error": string(code)}
	if status < http.StatusInternalServerError {
		var de *domainerrors.Error
		if errors.As(err, &de) {
			body["error_description"] = de.Message
		}
	}
	WriteJSON(w, status, body)
}

func toHTTPStatus(code domainerrors.Code) int {
	switch code {
	case domainerrors.CodeNotFound:
		return http.StatusNotFound
	case domainerrors.CodeInvalidIdentifier, domainerrors.CodeBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Decode reads and unmarshals a JSON request body into T. On failure it
// writes a bad-request response and returns ok=false; callers just return.
func Decode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	var v T
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		if logger != nil {
			logger.WarnContext(r.Context(), "request decode failed", "error", err)
		}
		WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "invalid request body"))
		return v, false
	}
	// Reject trailing garbage after the JSON document.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "invalid request body"))
		return v, false
	}
	return v, true
}
