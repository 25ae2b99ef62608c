// Package errors provides error handling functionality for the chat relay.
// It defines error categories, error codes, and typed error construction.
package errors

import "fmt"

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	// CategoryAdmission represents authentication and admission errors
	CategoryAdmission ErrorCategory = "admission"
	// CategoryPayload represents inbound payload validation errors
	CategoryPayload ErrorCategory = "payload"
	// CategoryPersistence represents message persistence errors
	CategoryPersistence ErrorCategory = "persistence"
	// CategoryDelivery represents fan-out delivery errors
	CategoryDelivery ErrorCategory = "delivery"
	// CategoryRateLimit represents rate limiting errors
	CategoryRateLimit ErrorCategory = "rate_limit"
)

// ErrorCode represents specific error codes
type ErrorCode string

const (
	// Admission errors
	ErrCodeInvalidToken     ErrorCode = "INVALID_TOKEN"
	ErrCodeExpiredToken     ErrorCode = "EXPIRED_TOKEN"
	ErrCodeMissingRecipient ErrorCode = "MISSING_RECIPIENT"

	// Payload errors
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	ErrCodeMissingField  ErrorCode = "MISSING_FIELD"

	// Persistence errors
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"

	// Delivery errors
	ErrCodeSlowConsumer ErrorCode = "SLOW_CONSUMER"

	// Rate limiting errors
	ErrCodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"
	ErrCodeConnectionLimit ErrorCode = "CONNECTION_LIMIT_EXCEEDED"
)

// RelayError represents an application error with category and recoverability information
type RelayError struct {
	Category    ErrorCategory
	Code        ErrorCode
	Message     string
	Recoverable bool
	RetryAfter  int // milliseconds, only for rate limit errors
	Cause       error
}

// Error implements the error interface
func (e *RelayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *RelayError) Unwrap() error {
	return e.Cause
}

// IsFatal returns true if the error is fatal and requires connection closure
func (e *RelayError) IsFatal() bool {
	return !e.Recoverable
}

// NewAdmissionError creates a new admission error (fatal)
func NewAdmissionError(code ErrorCode, message string, cause error) *RelayError {
	return &RelayError{
		Category:    CategoryAdmission,
		Code:        code,
		Message:     message,
		Recoverable: false, // Admission errors are fatal
		Cause:       cause,
	}
}

// NewPayloadError creates a new payload error (recoverable)
func NewPayloadError(code ErrorCode, message string, cause error) *RelayError {
	return &RelayError{
		Category:    CategoryPayload,
		Code:        code,
		Message:     message,
		Recoverable: true, // Malformed frames are dropped, connection survives
		Cause:       cause,
	}
}

// NewPersistenceError creates a new persistence error (recoverable with retry)
func NewPersistenceError(message string, cause error) *RelayError {
	return &RelayError{
		Category:    CategoryPersistence,
		Code:        ErrCodeDatabaseError,
		Message:     message,
		Recoverable: true,
		Cause:       cause,
	}
}

// NewDeliveryError creates a new delivery error (recoverable)
func NewDeliveryError(message string, cause error) *RelayError {
	return &RelayError{
		Category:    CategoryDelivery,
		Code:        ErrCodeSlowConsumer,
		Message:     message,
		Recoverable: true,
		Cause:       cause,
	}
}

// NewRateLimitError creates a new rate limit error (recoverable with retry after)
func NewRateLimitError(code ErrorCode, message string, retryAfter int, cause error) *RelayError {
	return &RelayError{
		Category:    CategoryRateLimit,
		Code:        code,
		Message:     message,
		Recoverable: true,
		RetryAfter:  retryAfter,
		Cause:       cause,
	}
}

// Common error constructors for convenience

// ErrInvalidToken creates an invalid token error
func ErrInvalidToken(cause error) *RelayError {
	return NewAdmissionError(ErrCodeInvalidToken, "Invalid authentication token", cause)
}

// ErrExpiredToken creates an expired token error
func ErrExpiredToken(cause error) *RelayError {
	return NewAdmissionError(ErrCodeExpiredToken, "Authentication token has expired", cause)
}

// ErrMissingRecipient creates a missing recipient error
func ErrMissingRecipient(cause error) *RelayError {
	return NewAdmissionError(ErrCodeMissingRecipient, "Recipient is missing or invalid", cause)
}

// ErrInvalidMessageFormat creates an invalid message format error
func ErrInvalidMessageFormat(details string, cause error) *RelayError {
	return NewPayloadError(ErrCodeInvalidFormat, fmt.Sprintf("Invalid message format: %s", details), cause)
}

// ErrMissingField creates a missing field error
func ErrMissingField(fieldName string) *RelayError {
	return NewPayloadError(ErrCodeMissingField, fmt.Sprintf("Required field missing: %s", fieldName), nil)
}

// ErrDatabaseError creates a database error
func ErrDatabaseError(cause error) *RelayError {
	return NewPersistenceError("Database operation failed", cause)
}

// ErrTooManyRequests creates a too many requests error
func ErrTooManyRequests(retryAfter int) *RelayError {
	return NewRateLimitError(ErrCodeTooManyRequests,
		"Too many requests, please slow down", retryAfter, nil)
}

// ErrConnectionLimitExceeded creates a connection limit exceeded error
func ErrConnectionLimitExceeded(retryAfter int) *RelayError {
	return NewRateLimitError(ErrCodeConnectionLimit,
		"Connection limit exceeded, please try again later", retryAfter, nil)
}
