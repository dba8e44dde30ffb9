package openapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ErrorCode identifies a class of API failure in error responses.
type ErrorCode string

// Error codes carried by APIError values.
const (
	CodeValidation        ErrorCode = "VALIDATION_ERROR"
	CodeInvalidRoutePath  ErrorCode = "INVALID_ROUTE_PATH"
	CodeInvalidOperation  ErrorCode = "INVALID_OPERATION_ID"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeInternal          ErrorCode = "INTERNAL_ERROR"
	CodeOpenAPIGeneration ErrorCode = "OPENAPI_GENERATION_ERROR"
)

// APIError is the base error type for the package. It carries a stable
// error code, an HTTP status for rendered responses, and optional
// structured details identifying the offending input.
type APIError struct {
	Code    ErrorCode
	Message string
	Status  int
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *APIError) Unwrap() error {
	return e.cause
}

// NewValidationError reports malformed registration input (route,
// parameters, tags, security). Validation errors surface to the
// developer immediately at registration time.
func NewValidationError(message string, details map[string]any) *APIError {
	return &APIError{
		Code:    CodeValidation,
		Message: message,
		Status:  http.StatusBadRequest,
		Details: details,
	}
}

// NewOpenAPIError reports a spec-assembly-time failure.
func NewOpenAPIError(message string, details map[string]any, cause error) *APIError {
	return &APIError{
		Code:    CodeOpenAPIGeneration,
		Message: message,
		Status:  http.StatusInternalServerError,
		Details: details,
		cause:   cause,
	}
}

// NewNotFoundError reports a missing resource, such as a spec file
// handed to the CLI validate command.
func NewNotFoundError(message string, details map[string]any) *APIError {
	return &APIError{
		Code:    CodeNotFound,
		Message: message,
		Status:  http.StatusNotFound,
		Details: details,
	}
}

// IsValidationError reports whether err is (or wraps) a validation APIError.
func IsValidationError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == CodeValidation
}

// errorBody is the JSON shape of a rendered error response.
type errorBody struct {
	Error struct {
		Code    ErrorCode      `json:"code"`
		Message string         `json:"message"`
		Status  int            `json:"status_code"`
		Details map[string]any `json:"details,omitempty"`
	} `json:"error"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id"`
}

// WriteError renders err as a standardized JSON error response with
// X-Error-Code and X-Request-ID headers. Errors that are not APIError
// values are reported as internal errors without leaking their text
// beyond the details field.
func WriteError(w http.ResponseWriter, err error) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		apiErr = &APIError{
			Code:    CodeInternal,
			Message: "an unexpected error occurred",
			Status:  http.StatusInternalServerError,
			Details: map[string]any{"original_error": err.Error()},
		}
	}

	var body errorBody
	body.Error.Code = apiErr.Code
	body.Error.Message = apiErr.Message
	body.Error.Status = apiErr.Status
	body.Error.Details = apiErr.Details
	body.Timestamp = time.Now().UTC().Format(time.RFC3339)
	body.RequestID = uuid.NewString()

	data, marshalErr := json.MarshalIndent(body, "", "  ")
	if marshalErr != nil {
		http.Error(w, apiErr.Message, apiErr.Status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", string(apiErr.Code))
	w.Header().Set("X-Request-ID", body.RequestID)
	w.WriteHeader(apiErr.Status)
	_, _ = w.Write(data)
}
