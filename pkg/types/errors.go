package types

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeLedger     ErrorType = "ledger"
	ErrorTypeMirror     ErrorType = "mirror"
	ErrorTypeInternal   ErrorType = "internal"
)

// GatewayError represents a structured error raised by the gateway
type GatewayError struct {
	Type    ErrorType              `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface.
// Ledger errors report the underlying SDK message verbatim.
func (e *GatewayError) Error() string {
	if e.Type == ErrorTypeLedger && e.Cause != nil {
		return e.Cause.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(code, message string, details map[string]interface{}) *GatewayError {
	return &GatewayError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewLedgerError wraps a failure surfaced by the ledger client
func NewLedgerError(operation string, cause error) *GatewayError {
	return &GatewayError{
		Type:    ErrorTypeLedger,
		Code:    ErrCodeLedgerFailure,
		Message: operation + " failed",
		Cause:   cause,
	}
}

// NewMirrorError creates a new mirror lookup error
func NewMirrorError(message string, cause error) *GatewayError {
	return &GatewayError{
		Type:    ErrorTypeMirror,
		Code:    ErrCodeMirrorFailure,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(code, message string, cause error) *GatewayError {
	return &GatewayError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsValidation reports whether err carries a validation error
func IsValidation(err error) bool {
	var gerr *GatewayError
	return errors.As(err, &gerr) && gerr.Type == ErrorTypeValidation
}

// HTTPStatus maps an error to the status code used in its envelope.
// Only validation errors are client errors; everything else is a 500.
func HTTPStatus(err error) int {
	if IsValidation(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Common error codes
const (
	ErrCodeInvalidBody       = "INVALID_BODY"
	ErrCodeInvalidAccountID  = "INVALID_ACCOUNT_ID"
	ErrCodeInvalidTopicID    = "INVALID_TOPIC_ID"
	ErrCodeInvalidAmount     = "INVALID_AMOUNT"
	ErrCodeLedgerFailure     = "LEDGER_FAILURE"
	ErrCodeMirrorFailure     = "MIRROR_FAILURE"
	ErrCodeAccountNotFound   = "ACCOUNT_NOT_FOUND"
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodeSerializationFail = "SERIALIZATION_FAILED"
)
