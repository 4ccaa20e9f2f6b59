// Package apperror defines a centralized system for application-specific errors.
// Every error that crosses an HTTP boundary is turned into an AppError so that
// status codes and response bodies stay consistent across the API.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType is an enumeration of application error categories.
type ErrorType int

const (
	// UnknownError is for unspecified errors
	UnknownError ErrorType = iota
	// DatabaseError represents an error originating from a backing store
	DatabaseError
	// ConfigError represents an error related to application configuration
	ConfigError
	// UnauthorizedError means the caller did not present credentials (missing token, bad login)
	UnauthorizedError
	// ForbiddenError means the caller's credentials were rejected or lack the required role
	ForbiddenError
	// NotFoundError represents a resource not found error
	NotFoundError
	// ValidationError represents an input validation error
	ValidationError
	// BadRequestError represents a generic bad request (e.g. undecodable body)
	BadRequestError
	// DuplicateEmailError is returned when registering an email that already exists
	DuplicateEmailError
	// ConflictError represents a conflict with existing state
	ConflictError
	// GatewayError represents a failure reported by the payment provider
	GatewayError
	// InternalError represents a generic internal server error
	InternalError
)

// Stable machine-readable codes sent alongside the message.
const (
	CodeMissingToken           = "missing_token"
	CodeInvalidToken           = "invalid_token"
	CodeNotAdmin               = "not_admin"
	CodeDuplicateEmail         = "duplicate_email"
	CodeInvalidCredentials     = "invalid_credentials"
	CodeInvalidCart            = "invalid_cart"
	CodeUnknownProduct         = "unknown_product"
	CodeSelfDelete             = "self_delete"
	CodeGatewayFailure         = "gateway_failure"
	CodePaymentNotConfirmed    = "payment_not_confirmed"
	CodePaymentAlreadyRecorded = "payment_already_recorded"
	CodeValidationFailed       = "validation_failed"
	CodeNotFound               = "not_found"
	CodeInternal               = "internal"
)

// AppError is a custom error type for the application.
// Err holds the underlying cause for logs; it is never serialized.
type AppError struct {
	Type    ErrorType
	Code    string
	Message string
	Err     error
}

// Error returns the string representation of the error, satisfying the `error` interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error so errors.Is/As can walk the chain.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithCode returns a copy of the error carrying the given code.
func (e *AppError) WithCode(code string) *AppError {
	cp := *e
	cp.Code = code
	return &cp
}

// StatusCode returns the HTTP status code appropriate for the error type
func (e *AppError) StatusCode() int {
	switch e.Type {
	case ValidationError, BadRequestError, DuplicateEmailError:
		return http.StatusBadRequest
	case UnauthorizedError:
		// 401: no credentials were presented, or they could not be matched to an account.
		return http.StatusUnauthorized
	case ForbiddenError:
		// 403: a token was presented but is invalid/expired, or the role is insufficient.
		return http.StatusForbidden
	case NotFoundError:
		return http.StatusNotFound
	case ConflictError:
		return http.StatusConflict
	case GatewayError:
		// Provider failures surface as 500 with the provider message passed through.
		return http.StatusInternalServerError
	case DatabaseError, ConfigError, InternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// NewAppError creates a new AppError. This is a generic constructor.
func NewAppError(errType ErrorType, message string, underlyingError error) *AppError {
	return &AppError{
		Type:    errType,
		Code:    defaultCode(errType),
		Message: message,
		Err:     underlyingError,
	}
}

func defaultCode(t ErrorType) string {
	switch t {
	case UnauthorizedError:
		return CodeMissingToken
	case ForbiddenError:
		return CodeInvalidToken
	case NotFoundError:
		return CodeNotFound
	case ValidationError, BadRequestError:
		return CodeValidationFailed
	case DuplicateEmailError:
		return CodeDuplicateEmail
	case GatewayError:
		return CodeGatewayFailure
	default:
		return CodeInternal
	}
}

// NewDatabaseError creates a new DatabaseError
func NewDatabaseError(message string, underlyingError error) *AppError {
	return NewAppError(DatabaseError, message, underlyingError)
}

// NewConfigError creates a new ConfigError
func NewConfigError(message string, underlyingError error) *AppError {
	return NewAppError(ConfigError, message, underlyingError)
}

// NewUnauthorizedError creates a new UnauthorizedError (401)
func NewUnauthorizedError(message string, underlyingError error) *AppError {
	return NewAppError(UnauthorizedError, message, underlyingError)
}

// NewForbiddenError creates a new ForbiddenError (403)
func NewForbiddenError(message string, underlyingError error) *AppError {
	return NewAppError(ForbiddenError, message, underlyingError)
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(message string, underlyingError error) *AppError {
	return NewAppError(NotFoundError, message, underlyingError)
}

// NewValidationError creates a new ValidationError
func NewValidationError(message string, underlyingError error) *AppError {
	return NewAppError(ValidationError, message, underlyingError)
}

// NewBadRequestError creates a new BadRequestError
func NewBadRequestError(message string, underlyingError error) *AppError {
	return NewAppError(BadRequestError, message, underlyingError)
}

// NewDuplicateEmailError creates a new DuplicateEmailError
func NewDuplicateEmailError(message string) *AppError {
	return NewAppError(DuplicateEmailError, message, nil)
}

// NewConflictError creates a new ConflictError
func NewConflictError(message string, underlyingError error) *AppError {
	return NewAppError(ConflictError, message, underlyingError)
}

// NewGatewayError creates a new GatewayError. The message is the provider's
// own message and is passed through to the client.
func NewGatewayError(message string, underlyingError error) *AppError {
	return NewAppError(GatewayError, message, underlyingError)
}

// NewInternalError creates a new InternalError
func NewInternalError(message string, underlyingError error) *AppError {
	return NewAppError(InternalError, message, underlyingError)
}

// ErrorResponse represents a generic error response payload for API clients.
type ErrorResponse struct {
	Error string `json:"error" example:"A description of the error"`
	Code  string `json:"code,omitempty" example:"invalid_token"`
}

// ToResponse converts an AppError to an ErrorResponse suitable for API responses.
// Only the user-facing Message is included, never the underlying Err.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message, Code: e.Code}
}

// FromError finds an *AppError anywhere in err's chain.
func FromError(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Is reports whether err carries an AppError of the given type.
func Is(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool { return Is(err, NotFoundError) }

// IsValidationError checks if an error is a Validation error
func IsValidationError(err error) bool { return Is(err, ValidationError) }

// IsForbidden checks if an error is a Forbidden error
func IsForbidden(err error) bool { return Is(err, ForbiddenError) }

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	ae, ok := FromError(err)
	return ok && ae.Code == code
}
