package domain

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateIdentity  = errors.New("email already registered")
	ErrNotRegistered      = errors.New("email not registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNoToken            = errors.New("no token")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidID          = errors.New("id is not valid")
	ErrNotFound           = errors.New("not found")
	ErrStorageFailure     = errors.New("storage failure")
)

// ValidationError carries the human-readable reason an input was rejected.
// It matches ErrValidation under errors.Is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError returns a *ValidationError with msg.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// NotFoundError names the resource that is absent or not owned by the
// caller. It matches ErrNotFound under errors.Is.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

var (
	ErrBudgetNotFound      = &NotFoundError{Resource: "budget"}
	ErrTransactionNotFound = &NotFoundError{Resource: "transaction"}
)
