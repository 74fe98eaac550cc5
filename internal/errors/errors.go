// Package errors holds the domain error type shared by services and handlers.
package errors

import (
	stderrors "errors"
	"net/http"
)

// DomainError is a business rule failure with a stable code and the HTTP
// status it maps to.
type DomainError struct {
	Code    string
	Message string
	Status  int
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped copies still compare equal.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New builds a domain error.
func New(code, message string, status int) *DomainError {
	return &DomainError{Code: code, Message: message, Status: status}
}

// As returns the first DomainError in err's chain.
func As(err error) (*DomainError, bool) {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Common errors
var (
	ErrNotFound = &DomainError{
		Code:    "NOT_FOUND",
		Message: "resource not found",
		Status:  http.StatusNotFound,
	}
	ErrForbidden = &DomainError{
		Code:    "FORBIDDEN",
		Message: "insufficient permissions",
		Status:  http.StatusForbidden,
	}
	ErrInvalidInput = &DomainError{
		Code:    "INVALID_INPUT",
		Message: "invalid input",
		Status:  http.StatusBadRequest,
	}
	ErrConflict = &DomainError{
		Code:    "CONFLICT",
		Message: "resource state conflict",
		Status:  http.StatusConflict,
	}
)
