package apperr

import (
	"fmt"
	"net/http"
)

// ValidationError carries field-keyed messages for malformed input. It is
// always recovered into a structured 400 response.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d invalid fields", len(e.Fields))
}

func Validation(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// DomainError is a business-rule violation with an explicit HTTP status.
// Its message is surfaced verbatim to the client.
type DomainError struct {
	Status  int
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func BadRequest(message string) *DomainError {
	return &DomainError{Status: http.StatusBadRequest, Message: message}
}

func Unauthorized(message string) *DomainError {
	return &DomainError{Status: http.StatusUnauthorized, Message: message}
}

func Forbidden(message string) *DomainError {
	return &DomainError{Status: http.StatusForbidden, Message: message}
}

func NotFound(message string) *DomainError {
	return &DomainError{Status: http.StatusNotFound, Message: message}
}

// NotAllowed covers the authentication-adjacent refusals (bad code, version
// mismatch) that are deliberately reported without naming the failed check.
func NotAllowed(message string) *DomainError {
	return &DomainError{Status: http.StatusMethodNotAllowed, Message: message}
}
