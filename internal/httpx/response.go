package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/diewo77/fieldops-app/internal/apperr"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// Error maps a service error onto the wire. Internal failures stay opaque;
// the caller sees only the taxonomy.
func Error(w http.ResponseWriter, err error) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		JSONError(w, http.StatusBadRequest, "validation_error", ve.Violations)
	case errors.Is(err, apperr.ErrConflict):
		JSONError(w, http.StatusConflict, "conflict", nil)
	case errors.Is(err, apperr.ErrNotFound):
		JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, apperr.ErrUnauthorized):
		JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
	default:
		JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// Decode reads a JSON request body into dst.
func Decode(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
