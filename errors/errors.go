package errors

import (
	"fmt"
	"net/http"

	"github.com/VyaparSathi/vyapar-sathi-backend/logger"
)

type ErrorType string

const (
	ValidationError        ErrorType = "VALIDATION_ERROR"
	NotFoundError          ErrorType = "NOT_FOUND"
	AuthError              ErrorType = "AUTHENTICATION_ERROR"
	DatabaseError          ErrorType = "DATABASE_ERROR"
	ServerError            ErrorType = "SERVER_ERROR"
	ForbiddenError         ErrorType = "FORBIDDEN"
	ConflictError          ErrorType = "CONFLICT"
	DocumentNotFoundError  ErrorType = "DOCUMENT_NOT_FOUND"
	BusinessNotFoundError  ErrorType = "BUSINESS_NOT_FOUND"
	BusinessAccessError    ErrorType = "BUSINESS_ACCESS_DENIED"
	ExtractionServiceError ErrorType = "EXTRACTION_SERVICE_ERROR"
	StorageError           ErrorType = "STORAGE_ERROR"
	RateLimitError         ErrorType = "RATE_LIMIT_EXCEEDED"
)

// AppError represents a structured application error.
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
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

// New creates a new AppError.
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context.
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

// Helper functions for common errors

func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("ID: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

func AuthenticationFailed(message string) *AppError {
	return &AppError{
		Type:       AuthError,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func Unauthorized(code, message string) error {
	return &AppError{
		Type:       AuthError,
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func NewDatabaseError(err error) *AppError {
	// Log original error but return sanitized message
	logger.GetLogger().Errorw("Database error", "error", err)
	return &AppError{
		Type:       DatabaseError,
		Message:    "Database operation failed",
		Detail:     "Please try again later",
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func Forbidden(message string, details string) *AppError {
	return &AppError{
		Type:       ForbiddenError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusForbidden,
	}
}

func NewConflictError(message string, detail string) *AppError {
	return &AppError{
		Type:       ConflictError,
		Message:    message,
		Detail:     detail,
		HTTPStatus: http.StatusConflict,
	}
}

func DocumentNotFound(id string) *AppError {
	return &AppError{
		Type:       DocumentNotFoundError,
		Message:    "Document not found",
		Detail:     fmt.Sprintf("Document ID: %s", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func BusinessNotFound(id string) *AppError {
	return &AppError{
		Type:       BusinessNotFoundError,
		Message:    "Business not found",
		Detail:     fmt.Sprintf("Business ID: %s", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func BusinessAccessDenied(userID, businessID string) *AppError {
	return &AppError{
		Type:       BusinessAccessError,
		Message:    "Access to business denied",
		Detail:     fmt.Sprintf("User %s cannot access business %s", userID, businessID),
		HTTPStatus: http.StatusForbidden,
	}
}

func ExtractionFailed(err error, documentID string) *AppError {
	return &AppError{
		Type:       ExtractionServiceError,
		Message:    "Document extraction failed",
		Detail:     fmt.Sprintf("Document ID: %s", documentID),
		HTTPStatus: http.StatusBadGateway,
		Raw:        err,
	}
}

func RateLimitExceeded(message string, retryAfterSeconds int) *AppError {
	return &AppError{
		Type:       RateLimitError,
		Message:    message,
		Detail:     fmt.Sprintf("Retry after %d seconds", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

func StorageFailed(err error, message string) *AppError {
	return &AppError{
		Type:       StorageError,
		Message:    message,
		Detail:     "Object storage operation failed",
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError:
		return http.StatusBadRequest
	case NotFoundError, DocumentNotFoundError, BusinessNotFoundError:
		return http.StatusNotFound
	case AuthError:
		return http.StatusUnauthorized
	case ForbiddenError, BusinessAccessError:
		return http.StatusForbidden
	case ConflictError:
		return http.StatusConflict
	case ExtractionServiceError:
		return http.StatusBadGateway
	case RateLimitError:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
