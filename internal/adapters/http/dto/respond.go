package dto

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/verse-recommender/internal/domain"
	"github.com/jsamuelsen/verse-recommender/internal/platform/logging"
)

// MapError maps a bind or domain error to an HTTP status and failure envelope.
// Internal causes never reach the body.
func MapError(err error) (int, *Response) {
	if err == nil {
		return http.StatusOK, nil
	}

	var bindErr *BindError
	if errors.As(err, &bindErr) {
		return HTTPStatusFromCode(bindErr.Code), &Response{Error: bindErr.Message, Details: bindErr.Details}
	}

	var queryErr *domain.QueryValidationError
	if errors.As(err, &queryErr) {
		return http.StatusBadRequest, NewValidationResponse(queryErr.Messages())
	}

	var fieldErr *domain.ValidationError
	if errors.As(err, &fieldErr) {
		return http.StatusBadRequest, NewValidationResponse([]string{fieldErr.Message})
	}

	switch {
	case domain.IsMatchEngine(err):
		return http.StatusInternalServerError, NewErrorResponse(MessageFetchFailed)
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, NewErrorResponse(MessageTimeout)
	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, NewErrorResponse(MessageUnavailable)
	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(MessageNotFound)
	default:
		return http.StatusInternalServerError, NewErrorResponse(MessageFetchFailed)
	}
}

// HandleError writes the failure envelope for err and logs server-side failures.
func HandleError(c *gin.Context, err error) {
	status, resp := MapError(err)
	resp.WithTraceID(GetTraceID(c))

	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "request failed",
			slog.Int("status", status),
			slog.Any("error", err),
			slog.String("trace_id", resp.TraceID),
		)
	}

	c.JSON(status, resp)
}
