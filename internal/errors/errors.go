package errors

import "fmt"

// ErrorCode represents a Pagemark error code.
type ErrorCode string

const (
	ErrInvalidRequest      ErrorCode = "INVALID_REQUEST"       // 400
	ErrUnauthorized        ErrorCode = "UNAUTHORIZED"          // 401
	ErrDomainNotAuthorized ErrorCode = "DOMAIN_NOT_AUTHORIZED" // 403
	ErrNotFound            ErrorCode = "NOT_FOUND"             // 404
	ErrDuplicateName       ErrorCode = "DUPLICATE_NAME"        // 409
	ErrInternal            ErrorCode = "INTERNAL"              // 500
)

// AppError represents a structured error with code, status, and details.
type AppError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *AppError {
	return &AppError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewUnauthorized creates a 401 error for a missing or unknown access token
// or widget key.
func NewUnauthorized(msg string) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Status:  401,
		Message: msg,
	}
}

// NewDomainNotAuthorized creates a 403 error for widget submissions from an
// origin not registered to any of the tenant's projects.
func NewDomainNotAuthorized(origin string) *AppError {
	return &AppError{
		Code:    ErrDomainNotAuthorized,
		Status:  403,
		Message: fmt.Sprintf("domain %q is not registered to any project on this account; add it in project settings", origin),
		Details: map[string]any{"origin": origin},
	}
}

// NewNotFound creates a 404 error for a missing record.
func NewNotFound(kind, identifier string) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewDuplicateName creates a 409 error for name collisions (assignees).
func NewDuplicateName(name string) *AppError {
	return &AppError{
		Code:    ErrDuplicateName,
		Status:  409,
		Message: fmt.Sprintf("name %q already exists", name),
		Details: map[string]any{"name": name},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *AppError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &AppError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	if aErr, ok := err.(*AppError); ok {
		return aErr.Code == code
	}
	return false
}

// StatusOf returns the HTTP status for an error, defaulting to 500 for
// errors that did not originate from this package.
func StatusOf(err error) int {
	if aErr, ok := err.(*AppError); ok {
		return aErr.Status
	}
	return 500
}
