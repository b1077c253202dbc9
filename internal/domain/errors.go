package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnavailable      = "UNAVAILABLE"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidStockStatus   = NewDomainError(ErrCodeValidation, "invalid stock status")
	ErrInvalidProductKind   = NewDomainError(ErrCodeValidation, "invalid product kind")
	ErrInvalidListingMode   = NewDomainError(ErrCodeValidation, "invalid listing mode")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrProductNotFound = NewDomainError(ErrCodeNotFound, "product not found")
	ErrVariantNotFound = NewDomainError(ErrCodeNotFound, "variant not found")
	ErrTermNotFound    = NewDomainError(ErrCodeNotFound, "attribute term not found")
)

// ErrLookupTableUnavailable signals that the precomputed attribute lookup
// table does not exist. Callers fall back to the per-variant scan; the
// condition is never surfaced to API consumers.
var ErrLookupTableUnavailable = NewDomainError(ErrCodeUnavailable, "attribute lookup table unavailable")
