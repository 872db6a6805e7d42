// Package errors provides custom error types for the Propfolio API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Property errors. A property that exists but belongs to another user is
// reported as not found so the API never confirms existence of records.
var (
	ErrPropertyNotFound = &AppError{Code: "PROPERTY_NOT_FOUND", Message: "Property not found", StatusCode: http.StatusNotFound}
	ErrLoanNotFound     = &AppError{Code: "LOAN_NOT_FOUND", Message: "No loan recorded for this property", StatusCode: http.StatusNotFound}
	ErrCashFlowNotFound = &AppError{Code: "CASH_FLOW_NOT_FOUND", Message: "No cash flow record for this property", StatusCode: http.StatusNotFound}
	ErrValidation       = &AppError{Code: "VALIDATION_ERROR", Message: "Validation failed", StatusCode: http.StatusBadRequest}
)

// Valuation errors. ErrLocalityUnavailable is recoverable and is absorbed by
// the estimator's fallback chain; it only surfaces when every tier fails.
var (
	ErrInsufficientData    = &AppError{Code: "INSUFFICIENT_DATA", Message: "Not enough property data to estimate a value", StatusCode: http.StatusUnprocessableEntity}
	ErrLocalityUnavailable = &AppError{Code: "LOCALITY_UNAVAILABLE", Message: "Locality price data is currently unavailable", StatusCode: http.StatusServiceUnavailable}
	ErrPersistence         = &AppError{Code: "PERSISTENCE_ERROR", Message: "Failed to persist valuation estimate", StatusCode: http.StatusInternalServerError}
)
