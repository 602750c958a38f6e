// Package apperr defines the application error taxonomy and its mapping to
// HTTP status codes.
//
// Services return *apperr.Error values; the HTTP layer converts them with
// response.FromError. Any error that is not an *apperr.Error is treated as an
// internal failure and surfaces as a generic 500 with a localized message, so
// store/driver errors never leak to clients.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// Validation: missing or malformed input (400).
	Validation Kind = iota
	// Auth: missing, invalid, or expired credential (401).
	Auth
	// Forbidden: authenticated but not entitled (403).
	Forbidden
	// NotFound: resource absent, or access masked as absence (404).
	NotFound
	// Conflict: uniqueness or one-per-owner violation (409).
	Conflict
	// Internal: unexpected store/runtime failure (500).
	Internal
)

// InternalMessage is the generic user-facing message for unexpected failures.
const InternalMessage = "حدث خطأ في الخادم، يرجى المحاولة لاحقاً"

// Error is an application error with a user-facing localized message.
type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, never shown to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an application error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause to an application error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// ── Taxonomy helpers ─────────────────────────────────────────────────────────

func NewValidation(message string) *Error { return New(Validation, message) }
func NewAuth(message string) *Error       { return New(Auth, message) }
func NewForbidden(message string) *Error  { return New(Forbidden, message) }
func NewNotFound(message string) *Error   { return New(NotFound, message) }
func NewConflict(message string) *Error   { return New(Conflict, message) }

// NewInternal wraps an unexpected failure with the generic localized message.
func NewInternal(err error) *Error {
	return Wrap(Internal, InternalMessage, err)
}

// ── Inspection ───────────────────────────────────────────────────────────────

// KindOf returns the kind of err, or Internal for non-application errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf returns the user-facing message for err.
// Non-application errors map to the generic internal message.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return InternalMessage
}

// StatusOf maps err to its HTTP status code.
func StatusOf(err error) int {
	switch KindOf(err) {
	case Validation:
		return http.StatusBadRequest
	case Auth:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func IsNotFound(err error) bool  { return IsKind(err, NotFound) }
func IsConflict(err error) bool  { return IsKind(err, Conflict) }
func IsForbidden(err error) bool { return IsKind(err, Forbidden) }
