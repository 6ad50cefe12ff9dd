// Package apperrors defines the error taxonomy surfaced by the API:
// not-found, validation and referential-conflict errors carry a
// client-facing message; everything else is treated as internal.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindConflict
)

// Error is a classified application error with a client-safe message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NotFound reports a missing entity, e.g. "Accessory not found".
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Validation reports malformed or inconsistent input.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Validationf is Validation with formatting.
func Validationf(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a delete blocked by dependent rows or a duplicate
// unique field.
func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// HTTPStatus maps an error to its response status code. Conflicts map to
// 400 rather than 409 to keep the wire contract uniform with validation
// failures.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
