package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ValidationError      ErrorType = "VALIDATION_ERROR"
	ConflictError        ErrorType = "CONFLICT"
	StorageError         ErrorType = "STORAGE_ERROR"
	NotFoundError        ErrorType = "NOT_FOUND"
	ForbiddenError       ErrorType = "FORBIDDEN"
	RateLimitError       ErrorType = "RATE_LIMIT_EXCEEDED"
	PayloadTooLargeError ErrorType = "PAYLOAD_TOO_LARGE"
	ServerError          ErrorType = "SERVER_ERROR"
)

// Public messages for failures whose detail must not reach the client.
const (
	MsgUnhandled = "Something went wrong. Please try again later."
	MsgNotFound  = "Route not found"
	MsgForbidden = "Origin not allowed"
)

// AppError is the error every handler attaches to the gin context.
// Message is safe to show to clients; Detail and Raw are for the logs only.
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
	RetryAfter int       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Raw
}

// GetHTTPStatus returns the status the error renders with, falling back to the type default.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return getHTTPStatus(e.Type)
}

// New creates an AppError with the default status of errType.
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap attaches a public message to a raw error. A nil err yields nil.
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

func ValidationFailed(message string, detail string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     detail,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Conflict(message string, detail string) *AppError {
	return &AppError{
		Type:       ConflictError,
		Message:    message,
		Detail:     detail,
		HTTPStatus: http.StatusConflict,
	}
}

// StorageFailed reports a persistence collaborator failure. The cause is kept in Raw
// for logging and never rendered.
func StorageFailed(message string, err error) *AppError {
	appErr := &AppError{
		Type:       StorageError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
	if err != nil {
		appErr.Detail = err.Error()
	}
	return appErr
}

func RouteNotFound(path string) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    MsgNotFound,
		Detail:     fmt.Sprintf("path: %s", path),
		HTTPStatus: http.StatusNotFound,
	}
}

// OriginNotAllowed rejects a cross-origin request from an origin outside the allow-list.
func OriginNotAllowed(origin string) *AppError {
	return &AppError{
		Type:       ForbiddenError,
		Message:    MsgForbidden,
		Detail:     fmt.Sprintf("origin: %s", origin),
		HTTPStatus: http.StatusForbidden,
	}
}

func RateLimitExceeded(message string, retryAfter int) *AppError {
	return &AppError{
		Type:       RateLimitError,
		Message:    message,
		HTTPStatus: http.StatusTooManyRequests,
		RetryAfter: retryAfter,
	}
}

func PayloadTooLarge(limit int64) *AppError {
	return &AppError{
		Type:       PayloadTooLargeError,
		Message:    "Request body too large",
		Detail:     fmt.Sprintf("limit: %d bytes", limit),
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}
}

// Unhandled wraps anything that escaped the taxonomy, including recovered panics.
func Unhandled(err error) *AppError {
	appErr := &AppError{
		Type:       ServerError,
		Message:    MsgUnhandled,
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
	if err != nil {
		appErr.Detail = err.Error()
	}
	return appErr
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError:
		return http.StatusBadRequest
	case ConflictError:
		return http.StatusConflict
	case NotFoundError:
		return http.StatusNotFound
	case ForbiddenError:
		return http.StatusForbidden
	case RateLimitError:
		return http.StatusTooManyRequests
	case PayloadTooLargeError:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
