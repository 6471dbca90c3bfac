package errors

import (
	"net/http"

	"shopreg/internal/errors"
)

// Kind classifies application errors independently of the transport.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindConflict       Kind = "conflict"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindNotFound       Kind = "not_found"
	KindRateLimited    Kind = "rate_limited"
	KindUnexpected     Kind = "unexpected"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	Kind() Kind
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() any      // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface.
// Values are never mutated; With* methods return copies.
type BaseError struct {
	kind      Kind
	httpCode  int
	errorCode string
	message   string
	details   any
}

// NewBaseError creates a new base error
func NewBaseError(kind Kind, httpCode int, errorCode, message string) *BaseError {
	return &BaseError{
		kind:      kind,
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// Is matches any BaseError carrying the same business code, so copies made by
// WithDetails and WithMessage still satisfy errors.Is against the original.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return e.errorCode == t.errorCode
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

func (e *BaseError) Kind() Kind {
	return e.kind
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() any {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details any) *BaseError {
	cloned := *e
	cloned.details = details

	return &cloned
}

// WithMessage replaces the user-facing message
func (e *BaseError) WithMessage(message string) *BaseError {
	cloned := *e
	cloned.message = message

	return &cloned
}

// KindOf reports the Kind of err, or KindUnexpected when err carries no AppError.
func KindOf(err error) Kind {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}

	return KindUnexpected
}

// Predefined error types
var (
	// Validation errors
	ErrValidationFailed = NewBaseError(
		KindValidation,
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Validation error",
	)

	ErrInvalidInput = NewBaseError(
		KindValidation,
		http.StatusBadRequest,
		"INVALID_INPUT",
		"Request body is malformed",
	)

	// Uniqueness errors
	ErrUsernameTaken = NewBaseError(
		KindConflict,
		http.StatusConflict,
		"USERNAME_TAKEN",
		"Username already exists",
	)

	ErrShopNamesTaken = NewBaseError(
		KindConflict,
		http.StatusConflict,
		"SHOP_NAMES_TAKEN",
		"Shop names already exist",
	)

	ErrUsernameAlreadyExists = NewBaseError(
		KindConflict,
		http.StatusConflict,
		"USERNAME_ALREADY_EXISTS",
		"Username already exists. Please choose a different username.",
	)

	ErrShopNameAlreadyExists = NewBaseError(
		KindConflict,
		http.StatusConflict,
		"SHOP_NAME_ALREADY_EXISTS",
		"Shop name already exists. Please choose a different name.",
	)

	ErrConflict = NewBaseError(
		KindConflict,
		http.StatusConflict,
		"CONFLICT",
		"This value already exists in the system",
	)

	// Authentication errors
	ErrUserNotFound = NewBaseError(
		KindAuthentication,
		http.StatusNotFound,
		"USER_NOT_FOUND",
		"User not found",
	)

	ErrInvalidCredentials = NewBaseError(
		KindAuthentication,
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Incorrect password",
	)

	// Authorization errors
	ErrUnauthorized = NewBaseError(
		KindAuthorization,
		http.StatusUnauthorized,
		"UNAUTHORIZED",
		"Authorization header is missing",
	)

	ErrTokenInvalid = NewBaseError(
		KindAuthorization,
		http.StatusUnauthorized,
		"INVALID_TOKEN",
		"Invalid token",
	)

	ErrTokenExpired = NewBaseError(
		KindAuthorization,
		http.StatusUnauthorized,
		"TOKEN_EXPIRED",
		"Token has expired",
	)

	ErrForbidden = NewBaseError(
		KindAuthorization,
		http.StatusForbidden,
		"FORBIDDEN",
		"You do not have access to this resource",
	)

	// Lookup errors
	ErrShopNotFound = NewBaseError(
		KindNotFound,
		http.StatusNotFound,
		"SHOP_NOT_FOUND",
		"Shop not found or you don't have access to this shop",
	)

	ErrTooManyRequests = NewBaseError(
		KindRateLimited,
		http.StatusTooManyRequests,
		"TOO_MANY_REQUESTS",
		"Too many attempts, please try again later",
	)

	// General errors
	ErrInternalError = NewBaseError(
		KindUnexpected,
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error, please try again later",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap exposes the driver error.
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

func (e *DatabaseExecuteError) Kind() Kind {
	return KindUnexpected
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "Database operation failed"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() any {
	return e.details
}
