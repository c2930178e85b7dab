package service

import (
	"errors"

	"repairshop/pkg/response"

	"gorm.io/gorm"
)

// Error kinds. Every business-rule rejection wraps exactly one of them.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrDependency   = errors.New("dependency rule violated")
)

// DomainError is a typed business outcome carrying the symbolic message code
// returned to the caller.
type DomainError struct {
	Kind    error
	Message string
}

func (e *DomainError) Error() string { return e.Kind.Error() + ": " + e.Message }

func (e *DomainError) Unwrap() error { return e.Kind }

func newError(kind error, message string) *DomainError {
	return &DomainError{Kind: kind, Message: message}
}

func validationError() error { return newError(ErrValidation, response.MsgDataMissing) }

func notFound(message string) error { return newError(ErrNotFound, message) }

func unauthorized(message string) error { return newError(ErrUnauthorized, message) }

func forbidden(message string) error { return newError(ErrForbidden, message) }

func conflict(message string) error { return newError(ErrConflict, message) }

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
