// Package dto provides Data Transfer Objects for HTTP request/response handling.
package dto

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// Response is the envelope for every recommendation API response.
//
// Success responses carry Data and optionally TotalFound, FailedCount and Message.
// Failure responses carry Error and, for validation failures, Details.
type Response struct {
	Success     bool     `json:"success"`
	Data        any      `json:"data,omitempty"`
	TotalFound  *int     `json:"total_found,omitempty"`
	FailedCount *int     `json:"failed_count,omitempty"`
	Message     string   `json:"message,omitempty"`
	Error       string   `json:"error,omitempty"`
	Details     []string `json:"details,omitempty"`
	TraceID     string   `json:"traceId,omitempty"`
}

// Error codes for machine-readable error identification.
// They select the HTTP status and never appear in the body.
const (
	// ErrorCodeNotFound indicates the route or resource was not found.
	ErrorCodeNotFound = "NOT_FOUND"

	// ErrorCodeMethodNotAllowed indicates the route exists for other methods.
	ErrorCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"

	// ErrorCodeValidation indicates request validation failed.
	ErrorCodeValidation = "VALIDATION_ERROR"

	// ErrorCodeUnavailable indicates a dependency is unavailable.
	ErrorCodeUnavailable = "SERVICE_UNAVAILABLE"

	// ErrorCodeInternal indicates an internal server error.
	ErrorCodeInternal = "INTERNAL_ERROR"

	// ErrorCodeTimeout indicates the request timed out.
	ErrorCodeTimeout = "TIMEOUT"

	// ErrorCodeBadRequest indicates the request was malformed.
	ErrorCodeBadRequest = "BAD_REQUEST"

	// ErrorCodeTooLarge indicates the request body exceeded the size limit.
	ErrorCodeTooLarge = "PAYLOAD_TOO_LARGE"
)

// Client-facing error messages.
const (
	MessageNoData           = "No JSON data provided"
	MessageValidation       = "Validation failed"
	MessageFetchFailed      = "Error fetching recommendations"
	MessageNoMatches        = "No matching verses found"
	MessageNotFound         = "Endpoint not found"
	MessageMethodNotAllowed = "Method not allowed"
	MessageInternal         = "Internal server error"
	MessageUnavailable      = "Verse service unavailable"
	MessageTimeout          = "Request timed out"
	MessageMalformed        = "Malformed JSON body"
	MessageTooLarge         = "Request body too large"
	MessageNotObject        = "Invalid request format. Expected a JSON object with user choices."
)

// NewErrorResponse creates a failure envelope with the given message.
func NewErrorResponse(message string) *Response {
	return &Response{Error: message}
}

// NewValidationResponse creates a validation failure envelope listing every problem.
func NewValidationResponse(details []string) *Response {
	return &Response{
		Error:   MessageValidation,
		Details: details,
	}
}

// WithTraceID adds a trace ID to the response.
func (r *Response) WithTraceID(traceID string) *Response {
	r.TraceID = traceID
	return r
}

// HTTPStatusFromCode maps error codes to HTTP status codes.
func HTTPStatusFromCode(code string) int {
	switch code {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrorCodeValidation, ErrorCodeBadRequest:
		return http.StatusBadRequest
	case ErrorCodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	case ErrorCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// GetTraceID returns the OpenTelemetry trace ID of the request, or "".
func GetTraceID(c *gin.Context) string {
	if c.Request == nil {
		return ""
	}

	if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	return ""
}
