package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrPermission         = errors.New("permission denied")
	ErrInternal           = errors.New("internal server error")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrRemoteUnreachable  = errors.New("remote store unreachable")
	ErrMalformedImport    = errors.New("malformed import payload")
	ErrEmptyDocument      = errors.New("document is empty")
	ErrConfirmationDenied = errors.New("confirmation declined")
)

type AppError struct {
	BaseError error
	Message   string
	Details   string
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (Details: %s, Cause: %v)", e.BaseError.Error(), e.Message, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s (Details: %s)", e.BaseError.Error(), e.Message, e.Details)
}

func (e *AppError) Unwrap() error {
	return e.BaseError
}

func NewAppError(base error, msg, details string, err error) *AppError {
	return &AppError{BaseError: base, Message: msg, Details: details, Err: err}
}

func NewNotFound(resource, identifier string) *AppError {
	msg := fmt.Sprintf("%s not found", resource)
	details := fmt.Sprintf("%s with identifier '%s' was not found", resource, identifier)
	return NewAppError(ErrNotFound, msg, details, nil)
}

func NewInvalidInput(details string, err error) *AppError {
	return NewAppError(ErrInvalidInput, "Invalid input provided", details, err)
}

func NewUnauthorized(details string, err error) *AppError {
	return NewAppError(ErrUnauthorized, "Invalid credentials", details, err)
}

func NewPermissionDenied(details string) *AppError {
	return NewAppError(ErrPermission, "Permission denied", details, nil)
}

func NewInternal(details string, err error) *AppError {
	return NewAppError(ErrInternal, "An internal server error occurred", details, err)
}

func NewStorageUnavailable(tier string, err error) *AppError {
	msg := "Storage tier unavailable"
	details := fmt.Sprintf("the %s storage tier failed", tier)
	return NewAppError(ErrStorageUnavailable, msg, details, err)
}

func NewRemoteUnreachable(details string, err error) *AppError {
	return NewAppError(ErrRemoteUnreachable, "Remote document store unreachable", details, err)
}

func NewMalformedImport(details string, err error) *AppError {
	return NewAppError(ErrMalformedImport, "Imported payload has an invalid format", details, err)
}

func NewEmptyDocument() *AppError {
	return NewAppError(ErrEmptyDocument, "No data to export", "the portfolio document has no content yet", nil)
}

func NewConfirmationDeclined(action string) *AppError {
	msg := "Confirmation declined"
	details := fmt.Sprintf("the %s action was not confirmed", action)
	return NewAppError(ErrConfirmationDenied, msg, details, nil)
}

func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrMalformedImport):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, ErrConfirmationDenied):
		return http.StatusPreconditionFailed
	case errors.Is(err, ErrEmptyDocument):
		return http.StatusConflict
	case errors.Is(err, ErrStorageUnavailable), errors.Is(err, ErrRemoteUnreachable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (e *AppError) ToJSON() gin.H {
	return gin.H{
		"error":   e.BaseError.Error(),
		"message": e.Message,
	}
}
