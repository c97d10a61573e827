package usecase

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error kinds. Handlers map them to status codes with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("duplicate entry")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrLocked       = errors.New("account locked")
	ErrUnavailable  = errors.New("service unavailable")
)

// Error is a failure whose Message is safe to show to the client.
type Error struct {
	Kind    error
	Message string
	// Fields carries per-field validation messages.
	Fields map[string]string
	// Data is returned in the envelope's data, e.g. attempts left on an OTP.
	Data any
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationError(fields map[string]string) *Error {
	return &Error{Kind: ErrValidation, Message: "Validation failed", Fields: fields}
}

func notFound(what string) *Error {
	return newError(ErrNotFound, "%s not found", what)
}

var errAuthRequired = newError(ErrUnauthorized, "Authentication required")

// parseID parses a path or body UUID, what names it in the error ("branch").
func parseID(raw, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, newError(ErrInvalidInput, "Invalid %s ID", what)
	}
	return id, nil
}

// parseCallerID parses the authenticated user's ID taken from the request context.
func parseCallerID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, errAuthRequired
	}
	return parseID(raw, "user")
}

func parseOptionalID(raw *string, what string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := parseID(*raw, what)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
