package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Dan9191/finance-service/internal/repository"
)

var (
	ErrNotFound = repository.ErrNotFound
	ErrConflict = repository.ErrConflict

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("user is inactive")
)

// ValidationError carries a reason per rejected input field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalidField(field, reason string) error {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

// notFound wraps ErrNotFound with the kind of resource that was missing.
func notFound(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}
