package domain

import "fmt"

const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
	ErrCodeUnavailable      = "UNAVAILABLE"
)

// DomainError is an error with a stable code that the API layer maps to a
// status. Message is safe to show to clients; Err is not.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches on code and message, so a sentinel still matches after
// WithCause attached a cause to a copy of it.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Code == t.Code && e.Message == t.Message
}

// WithCause returns a copy of e that wraps err.
func (e *DomainError) WithCause(err error) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Err: err}
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

var (
	ErrEmptyContent   = NewDomainError(ErrCodeValidation, "content is required")
	ErrInvalidCursor  = NewDomainError(ErrCodeValidation, "invalid cursor")
	ErrInvalidProject = NewDomainError(ErrCodeValidation, "invalid project")
	ErrInvalidReview  = NewDomainError(ErrCodeValidation, "invalid review")

	ErrProjectNotFound   = NewDomainError(ErrCodeNotFound, "project not found")
	ErrIndexJobNotFound  = NewDomainError(ErrCodeNotFound, "index job not found")
	ErrSourceNotArchived = NewDomainError(ErrCodeNotFound, "project source not archived")

	ErrProjectAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "project already exists")

	ErrStorageNotConfigured = NewDomainError(ErrCodeUnavailable, "source storage not configured")
	ErrStorageOperationFail = NewDomainError(ErrCodeInternalError, "storage operation failed")
)
