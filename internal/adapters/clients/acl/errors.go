package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/verse-recommender/internal/adapters/clients"
	"github.com/jsamuelsen/verse-recommender/internal/domain"
)

// Envelope is the wrapper alquran.cloud puts around every response.
// On success Data holds the payload object. On failure it is usually a
// plain string describing the problem.
type Envelope struct {
	Code   int             `json:"code"`
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// Message returns Data when it is a JSON string, or Status otherwise.
func (e *Envelope) Message() string {
	var msg string
	if err := json.Unmarshal(e.Data, &msg); err == nil && msg != "" {
		return msg
	}

	return e.Status
}

// HasObject reports whether Data is a JSON object.
func (e *Envelope) HasObject() bool {
	for _, b := range e.Data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '{':
			return true
		default:
			return false
		}
	}

	return false
}

// ParseEnvelope attempts to parse a response body.
// Returns nil if the body is empty or is not an envelope.
func ParseEnvelope(body io.Reader) *Envelope {
	if body == nil {
		return nil
	}

	var env Envelope
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		return nil
	}

	if env.Code == 0 && env.Status == "" && len(env.Data) == 0 {
		return nil
	}

	return &env
}

// MapHTTPError maps a failed exchange to a domain error.
//
//   - resp: the HTTP response, nil when the client returned an error
//   - clientErr: the error from the HTTP client, if any
//   - serviceName: downstream name for error context
//   - operation: what was being done, e.g. "lookup verse"
//   - entity, entityID: used for NotFoundError, e.g. "verse", "2:255"
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation, entity, entityID string) error {
	if clientErr != nil {
		return mapClientError(clientErr, serviceName, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, "no response received")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	var env *Envelope
	if resp.Body != nil {
		env = ParseEnvelope(resp.Body)
	}

	return mapStatusCode(resp.StatusCode, env, serviceName, operation, entity, entityID)
}

// MapEnvelope maps a 2xx envelope whose code reports a failure.
func MapEnvelope(env *Envelope, serviceName, operation, entity, entityID string) error {
	if env.Code == http.StatusOK {
		return nil
	}

	return mapStatusCode(env.Code, env, serviceName, operation, entity, entityID)
}

func mapClientError(err error, serviceName, operation string) error {
	var reason string

	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		reason = "circuit breaker open during " + operation
	case errors.Is(err, clients.ErrRateLimited):
		reason = "rate limit wait abandoned during " + operation
	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		reason = "max retries exceeded during " + operation
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		reason = operation + " interrupted"
	default:
		return domain.NewUnavailableError(serviceName, fmt.Sprintf("%s failed: %v", operation, err))
	}

	return fmt.Errorf("%w: %w", domain.NewUnavailableError(serviceName, reason), err)
}

func mapStatusCode(status int, env *Envelope, serviceName, operation, entity, entityID string) error {
	message := defaultMessageForStatus(status, operation)
	if env != nil && env.Message() != "" {
		message = env.Message()
	}

	switch {
	case status == http.StatusNotFound,
		status == http.StatusBadRequest,
		status == http.StatusUnprocessableEntity:
		return domain.NewNotFoundError(entity, entityID)

	case status == http.StatusTooManyRequests:
		return domain.NewUnavailableError(serviceName, "rate limit exceeded")

	case status >= http.StatusBadRequest && status < http.StatusInternalServerError:
		return domain.NewUnavailableError(serviceName, fmt.Sprintf("HTTP %d: %s", status, message))

	default:
		return domain.NewUnavailableError(serviceName, message)
	}
}

func defaultMessageForStatus(status int, operation string) string {
	switch status {
	case http.StatusNotFound:
		return "resource not found"
	case http.StatusBadRequest:
		return "invalid request"
	case http.StatusUnauthorized, http.StatusForbidden:
		return "access denied"
	case http.StatusTooManyRequests:
		return "rate limit exceeded"
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	case http.StatusBadGateway:
		return "bad gateway"
	case http.StatusGatewayTimeout:
		return "gateway timeout"
	default:
		return fmt.Sprintf("%s failed with status %d", operation, status)
	}
}
