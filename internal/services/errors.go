package services

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrAlreadyReacted = errors.New("already reacted")
	ErrNotReacted     = errors.New("not reacted")
	ErrInvalidCursor  = errors.New("invalid cursor")
	ErrUpstream       = errors.New("catalog unavailable")
)

// ValidationError reports the first request field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// notFound wraps ErrNotFound with the entity name so handlers can echo it.
func notFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}
