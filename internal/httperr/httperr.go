// ABOUTME: Standardized error response helpers for the sandbox API.
// ABOUTME: Emits the error shape the CLI transport decodes: code, message, details, requestId.

package httperr

import (
	"encoding/json"
	"net/http"
)

// Response is the error payload every sandbox endpoint returns. The field
// names line up with what the CLI transport decodes into an APIError.
type Response struct {
	Code      string        `json:"error"`
	Message   string        `json:"message"`
	Status    int           `json:"status"`
	Details   []FieldDetail `json:"details,omitempty"`
	RequestID string        `json:"requestId,omitempty"`
}

// FieldDetail is one structured validation failure.
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Common error codes used across sandbox handlers.
const (
	CodeInvalidRequest   = "invalid_request"
	CodeInvalidBody      = "invalid_request_body"
	CodeValidationFailed = "validation_failed"
	CodeNotFound         = "not_found"
	CodeUnauthorized     = "unauthorized"
	CodeInternal         = "internal_error"
)

// Write writes a standardized error response.
func Write(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeResponse(w, Response{
		Code:      code,
		Message:   message,
		Status:    status,
		RequestID: RequestID(r),
	})
}

// WriteDetails writes a validation error carrying per-field details.
func WriteDetails(w http.ResponseWriter, r *http.Request, message string, details []FieldDetail) {
	writeResponse(w, Response{
		Code:      CodeValidationFailed,
		Message:   message,
		Status:    http.StatusUnprocessableEntity,
		Details:   details,
		RequestID: RequestID(r),
	})
}

// RequestID returns the correlation id assigned by the request-id middleware.
func RequestID(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.Header.Get("X-Request-Id")
}

func writeResponse(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	if resp.RequestID != "" {
		w.Header().Set("X-Request-Id", resp.RequestID)
	}
	w.WriteHeader(resp.Status)
	json.NewEncoder(w).Encode(resp)
}
