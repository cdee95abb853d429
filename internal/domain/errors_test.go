package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrValidation,
		ErrUnavailable,
		ErrMatchEngine,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b,
					"sentinels should be distinct: %v vs %v", a, b)
			}
		}
	}
}

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name        string
		entity      string
		id          string
		expectedMsg string
	}{
		{
			name:        "with entity and ID",
			entity:      "verse",
			id:          "999:999",
			expectedMsg: `verse with id "999:999" not found`,
		},
		{
			name:        "with entity only",
			entity:      "surah",
			expectedMsg: "surah not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewNotFoundError(tt.entity, tt.id)

			assert.Equal(t, tt.expectedMsg, err.Error())
			require.ErrorIs(t, err, ErrNotFound)

			var notFound *NotFoundError
			require.ErrorAs(t, err, &notFound)
			assert.Equal(t, tt.entity, notFound.Entity)
			assert.Equal(t, tt.id, notFound.ID)
		})
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name        string
		field       string
		message     string
		expectedMsg string
	}{
		{
			name:        "with field",
			field:       "theme",
			message:     "unknown value",
			expectedMsg: "validation failed for theme: unknown value",
		},
		{
			name:        "without field",
			message:     "general validation error",
			expectedMsg: "validation failed: general validation error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)

			assert.Equal(t, tt.expectedMsg, err.Error())
			require.ErrorIs(t, err, ErrValidation)

			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
			assert.Equal(t, tt.message, validation.Message)
		})
	}
}

func TestQueryValidationError(t *testing.T) {
	err := &QueryValidationError{Violations: []*ValidationError{
		{Field: "theme", Message: "bad theme"},
		{Field: "tone", Message: "bad tone"},
	}}

	assert.Equal(t, []string{"bad theme", "bad tone"}, err.Messages())
	assert.Equal(t, "invalid facet query: bad theme; bad tone", err.Error())
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", err), ErrValidation)
}

func TestUnavailableError(t *testing.T) {
	tests := []struct {
		name        string
		service     string
		reason      string
		expectedMsg string
	}{
		{
			name:        "with reason",
			service:     "alquran-cloud",
			reason:      "connection timeout",
			expectedMsg: `service "alquran-cloud" unavailable: connection timeout`,
		},
		{
			name:        "without reason",
			service:     "cache",
			expectedMsg: `service "cache" unavailable`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewUnavailableError(tt.service, tt.reason)

			assert.Equal(t, tt.expectedMsg, err.Error())
			require.ErrorIs(t, err, ErrUnavailable)

			var unavailable *UnavailableError
			require.ErrorAs(t, err, &unavailable)
			assert.Equal(t, tt.service, unavailable.Service)
			assert.Equal(t, tt.reason, unavailable.Reason)
		})
	}
}

func TestMatchEngineError(t *testing.T) {
	cause := errors.New("store closed")
	err := NewMatchEngineError("datalog", cause)

	assert.Equal(t, `match engine "datalog" failed: store closed`, err.Error())
	require.ErrorIs(t, err, ErrMatchEngine)
	require.ErrorIs(t, err, cause)
	assert.False(t, IsValidation(err))

	var engineErr *MatchEngineError
	require.ErrorAs(t, fmt.Errorf("outer: %w", err), &engineErr)
	assert.Equal(t, "datalog", engineErr.Engine)
}

func TestIsHelpers(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		isFunc   func(error) bool
		expected bool
	}{
		{"IsNotFound with NotFoundError", NewNotFoundError("verse", "1:1"), IsNotFound, true},
		{"IsNotFound with wrapped", fmt.Errorf("wrapped: %w", ErrNotFound), IsNotFound, true},
		{"IsNotFound with other error", ErrValidation, IsNotFound, false},
		{"IsNotFound with nil", nil, IsNotFound, false},

		{"IsValidation with ValidationError", NewValidationError("tone", "invalid"), IsValidation, true},
		{"IsValidation with query error", &QueryValidationError{}, IsValidation, true},
		{"IsValidation with other error", ErrNotFound, IsValidation, false},

		{"IsUnavailable with UnavailableError", NewUnavailableError("api", "down"), IsUnavailable, true},
		{"IsUnavailable with sentinel", ErrUnavailable, IsUnavailable, true},
		{"IsUnavailable with nil", nil, IsUnavailable, false},

		{"IsMatchEngine with MatchEngineError", NewMatchEngineError("index", nil), IsMatchEngine, true},
		{"IsMatchEngine with wrapped", fmt.Errorf("x: %w", NewMatchEngineError("index", nil)), IsMatchEngine, true},
		{"IsMatchEngine with other error", ErrUnavailable, IsMatchEngine, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.isFunc(tt.err))
		})
	}
}
