package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to the presentation layer. Raw store errors are
// never included in responses; they live in Err for logging only.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeRoleMismatch      = "ROLE_MISMATCH"
	CodeNotOwner          = "NOT_OWNER"
	CodeNotParticipant    = "NOT_PARTICIPANT"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeInvalidPagination = "INVALID_PAGINATION"
	CodeAlreadyInWishlist = "ALREADY_IN_WISHLIST"
	CodeValidation        = "VALIDATION_ERROR"
	CodeStoreUnavailable  = "STORE_UNAVAILABLE"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternal          = "INTERNAL_ERROR"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func RoleMismatch(message string) *AppError {
	return &AppError{
		Code:       CodeRoleMismatch,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

func NotOwner(message string) *AppError {
	return &AppError{
		Code:       CodeNotOwner,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

func NotParticipant(message string) *AppError {
	return &AppError{
		Code:       CodeNotParticipant,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

func InvalidTransition(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidTransition,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func InvalidPagination(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidPagination,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func AlreadyInWishlist(serviceID string) *AppError {
	return &AppError{
		Code:       CodeAlreadyInWishlist,
		Message:    "Service already in wishlist",
		HTTPStatus: http.StatusBadRequest,
		Details: map[string]any{
			"service_id": serviceID,
		},
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

func StoreUnavailable(operation string, err error) *AppError {
	return &AppError{
		Code:       CodeStoreUnavailable,
		Message:    fmt.Sprintf("Storage unavailable while executing %s", operation),
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts any error to an AppError; unknown errors become
// opaque internal errors so store payloads never reach clients.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
