// Package shared centralizes JSON response helpers so every feature handler
// emits the same envelopes.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "storefront/pkg/domain-errors"
)

// WriteJSON writes a payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError translates a domain error into the shared JSON error envelope.
// Non-domain errors map to a 500 without leaking internals.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := string(dErrors.CodeInternal)
	message := "internal error"

	var de *dErrors.Error
	if errors.As(err, &de) {
		status = dErrors.ToHTTPStatus(de.Code)
		code = string(de.Code)
		message = de.Message
	}

	WriteJSON(w, status, map[string]string{
		"error":             code,
		"error_description": message,
	})
}
