// Package apperr defines the error taxonomy shared by all services.
// Handlers map these onto HTTP statuses; services never return raw storage
// errors to callers.
package apperr

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrConflict reports a uniqueness violation; the caller must pick a
	// different key.
	ErrConflict = errors.New("conflict")
	// ErrNotFound reports a missing id or an id owned by another account.
	// The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not_found")
	// ErrUnauthorized reports a missing, invalid or expired credential.
	// Expired and forged tokens produce the same outcome.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInternal reports an unexpected storage failure. Logged server-side,
	// opaque to the caller, never retried by the core.
	ErrInternal = errors.New("internal_error")
)

// ValidationError reports missing or malformed input, keyed by field name.
type ValidationError struct {
	Violations map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation_error: %v", e.Violations)
}

// Validation builds a single-field validation error.
func Validation(field, reason string) *ValidationError {
	return &ValidationError{Violations: map[string]string{field: reason}}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Translate maps storage-layer errors onto the taxonomy. Requires the GORM
// connection to be opened with TranslateError so unique-index violations
// surface as gorm.ErrDuplicatedKey regardless of driver.
func Translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
