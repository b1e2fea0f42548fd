package service

import (
	"database/sql"
	"errors"
)

// ErrNotFound marks a missing member or subscription. It is never conflated
// with a found member whose balance is zero.
var ErrNotFound = errors.New("not found")

// ErrStoreUnavailable wraps store fetch/write failures so handlers can
// answer with a retryable status instead of an empty result.
var ErrStoreUnavailable = errors.New("store unavailable")

// ValidationError rejects malformed input before any I/O happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
