package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/verse-recommender/internal/platform/logging"
)

// Staged use case pattern: Validate → Perform → Verify → Respond
//
//  1. VALIDATE - Parse and check input before any engine or network work
//  2. PERFORM  - Run the operation against the validated input
//  3. VERIFY   - Check the operation's output before it leaves the service
//  4. RESPOND  - Shape the verified output for the caller
//
// An input that fails validation never reaches Perform.

// ExecutionStep represents a step of an operation.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError wraps errors with the step where they occurred.
type ExecutionError struct {
	Step    ExecutionStep
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Step, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s failed: %s", e.Step, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Executor runs operations step by step with logging.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates a new executor with the given logger.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Operation defines the functions for each step.
// I is the raw input, Q the validated input, P the performed result and O the response.
type Operation[I, Q, P, O any] struct {
	// Name identifies this operation for logging.
	Name string

	// Validate converts raw input into a validated form. Required.
	Validate func(ctx context.Context, input I) (Q, error)

	// Perform executes the main operation. Required.
	Perform func(ctx context.Context, q Q) (P, error)

	// Verify checks the performed result. Optional.
	Verify func(ctx context.Context, q Q, performed P) error

	// Respond transforms the result for the caller. Required.
	Respond func(ctx context.Context, q Q, performed P) (O, error)
}

// Execute runs an operation through every step.
func Execute[I, Q, P, O any](ctx context.Context, exec *Executor, op Operation[I, Q, P, O], input I) (O, error) {
	var zero O

	logger := logging.FromContextOr(ctx, exec.logger).With(slog.String("operation", op.Name))
	start := time.Now()

	q, err := op.Validate(ctx, input)
	if err != nil {
		logger.DebugContext(ctx, "validation failed", slog.Any("error", err))
		return zero, &ExecutionError{Step: StepValidate, Message: "input validation failed", Cause: err}
	}

	performed, err := op.Perform(ctx, q)
	if err != nil {
		logger.ErrorContext(ctx, "perform failed", slog.Any("error", err))
		return zero, &ExecutionError{Step: StepPerform, Message: "operation failed", Cause: err}
	}

	if op.Verify != nil {
		if err := op.Verify(ctx, q, performed); err != nil {
			logger.ErrorContext(ctx, "verification failed", slog.Any("error", err))
			return zero, &ExecutionError{Step: StepVerify, Message: "verification failed", Cause: err}
		}
	}

	result, err := op.Respond(ctx, q, performed)
	if err != nil {
		logger.WarnContext(ctx, "respond failed", slog.Any("error", err))
		return zero, &ExecutionError{Step: StepRespond, Message: "response failed", Cause: err}
	}

	logger.DebugContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return result, nil
}

// GetExecutionStep extracts the step from an execution error.
func GetExecutionStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}
