package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cityreports/miniapp/internal/users/domain"
)

// APIError represents an API error.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes.
const (
	CodeBadRequest  = "bad_request"
	CodeNotFound    = "not_found"
	CodeForbidden   = "forbidden"
	CodeUnavailable = "unavailable"
	CodeInternal    = "internal"
)

// Common API errors
var (
	ErrUserIDRequired = &APIError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: "user_id is required",
	}
	ErrSettingFieldsRequired = &APIError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: "user_id, setting and value are required",
	}
	ErrInvalidBody = &APIError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: "Request body must be a JSON object",
	}
	ErrStoreMissing = &APIError{
		Status:  http.StatusNotFound,
		Code:    CodeNotFound,
		Message: "User data not found",
	}
	ErrUserMissing = &APIError{
		Status:  http.StatusNotFound,
		Code:    CodeNotFound,
		Message: "User not found",
	}
	ErrProfileIncomplete = &APIError{
		Status:  http.StatusForbidden,
		Code:    CodeForbidden,
		Message: "User profile not completed",
	}
	ErrNotFound = &APIError{
		Status:  http.StatusNotFound,
		Code:    CodeNotFound,
		Message: "Not found",
	}
	ErrWeatherUnavailable = &APIError{
		Status:  http.StatusServiceUnavailable,
		Code:    CodeUnavailable,
		Message: "Weather service unavailable",
	}
	ErrTooManyRequests = &APIError{
		Status:  http.StatusTooManyRequests,
		Code:    CodeUnavailable,
		Message: "Too many requests",
	}
	ErrInternalServer = &APIError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: "Internal server error",
	}
)

// toAPIError maps domain errors onto API errors. Anything unrecognised is
// an internal error.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, domain.ErrStoreNotFound):
		return ErrStoreMissing
	case errors.Is(err, domain.ErrUserNotFound):
		return ErrUserMissing
	case errors.Is(err, domain.ErrProfileNotReady):
		return ErrProfileIncomplete
	default:
		return ErrInternalServer
	}
}

// writeJSON writes a JSON response. Non-ASCII text is written as-is.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		// Log error but can't do much at this point
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, err *APIError) {
	writeJSON(w, err.Status, err)
}
