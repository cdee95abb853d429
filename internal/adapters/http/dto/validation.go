package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// jsonTagParts is the number of parts when splitting a JSON tag by comma.
// The first part is the field name, subsequent parts are options like "omitempty".
const jsonTagParts = 2

// Binding errors. All of them are reported as a *BindError.
var (
	// ErrNoData indicates the body was missing or held no choices at all.
	ErrNoData = errors.New("no JSON data provided")

	// ErrNotObject indicates the body was JSON but not an object.
	ErrNotObject = errors.New("request body is not a JSON object")

	// ErrMalformed indicates the body was not valid JSON.
	ErrMalformed = errors.New("malformed JSON body")

	// ErrTooLarge indicates the body exceeded the server limit.
	ErrTooLarge = errors.New("request body too large")

	// ErrValidation indicates a validation failure occurred.
	ErrValidation = errors.New("validation failed")
)

// BindError describes why a request body was rejected before reaching the service.
type BindError struct {
	// Code selects the HTTP status, see HTTPStatusFromCode.
	Code    string
	Message string
	Details []string
	Err     error
}

// Error implements the error interface.
func (e *BindError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Details, "; "))
	}

	return e.Message
}

// Unwrap returns the underlying error.
func (e *BindError) Unwrap() error {
	return e.Err
}

var (
	// validate is the singleton validator instance.
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the singleton validator instance.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()

		// Use JSON tag names in error messages
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", jsonTagParts)[0]
			if name == "-" {
				return ""
			}

			return name
		})
	})

	return validate
}

// Validate validates a struct using the validator instance.
// Returns nil if valid, or a *BindError listing every failed field.
func Validate(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	return &BindError{
		Code:    ErrorCodeValidation,
		Message: MessageValidation,
		Details: ValidationDetails(err),
		Err:     fmt.Errorf("%w: %w", ErrValidation, err),
	}
}

// BindAndValidate decodes a JSON object body into v and validates it.
//
// A missing body, null, {} or any other empty JSON value is ErrNoData.
// Non-object JSON and fields of the wrong type are validation failures.
func BindAndValidate(c *gin.Context, v any) error {
	if c.Request.Body == nil {
		return noData()
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &BindError{Code: ErrorCodeTooLarge, Message: MessageTooLarge, Err: ErrTooLarge}
		}

		return &BindError{Code: ErrorCodeBadRequest, Message: MessageMalformed, Err: err}
	}

	if err := checkObject(body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &BindError{
				Code:    ErrorCodeValidation,
				Message: MessageValidation,
				Details: []string{fmt.Sprintf("%s: must be a %s", typeErr.Field, jsonKind(typeErr.Type.Kind()))},
				Err:     fmt.Errorf("%w: %w", ErrValidation, err),
			}
		}

		return &BindError{Code: ErrorCodeBadRequest, Message: MessageMalformed, Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
	}

	return Validate(v)
}

// checkObject rejects bodies that are empty, malformed or not an object.
func checkObject(body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return noData()
	}

	var probe any
	if err := json.Unmarshal(body, &probe); err != nil {
		return &BindError{Code: ErrorCodeBadRequest, Message: MessageMalformed, Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
	}

	switch p := probe.(type) {
	case nil:
		return noData()
	case map[string]any:
		if len(p) == 0 {
			return noData()
		}
		return nil
	case []any:
		if len(p) == 0 {
			return noData()
		}
	case bool:
		if !p {
			return noData()
		}
	case float64:
		if p == 0 {
			return noData()
		}
	case string:
		if p == "" {
			return noData()
		}
	}

	return &BindError{
		Code:    ErrorCodeValidation,
		Message: MessageValidation,
		Details: []string{MessageNotObject},
		Err:     ErrNotObject,
	}
}

func noData() error {
	return &BindError{Code: ErrorCodeBadRequest, Message: MessageNoData, Err: ErrNoData}
}

func jsonKind(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "whole number"
	case reflect.Bool:
		return "boolean"
	default:
		return k.String()
	}
}

// ValidationDetails formats validator failures as "field: message", in struct order.
func ValidationDetails(err error) []string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	details := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		details = append(details, fieldErr.Field()+": "+validationMessage(fieldErr))
	}

	return details
}

// IsValidationError checks if the error is a validation error.
func IsValidationError(err error) bool {
	var validationErrs validator.ValidationErrors
	return errors.As(err, &validationErrs)
}

// validationMessages maps validation tags to message templates.
// Use {param} as placeholder for the validation parameter.
var validationMessages = map[string]string{
	"required": "this field is required",
	"gte":      "must be greater than or equal to {param}",
	"lte":      "must be less than or equal to {param}",
	"gt":       "must be greater than {param}",
	"lt":       "must be less than {param}",
	"oneof":    "must be one of: {param}",
}

// validationMessage returns a human-readable message for a validation error.
func validationMessage(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	if tag == "min" || tag == "max" {
		return minMaxMessage(tag, param, fe.Kind())
	}

	if msg, ok := validationMessages[tag]; ok {
		return strings.ReplaceAll(msg, "{param}", param)
	}

	return "failed validation: " + tag
}

// minMaxMessage returns the appropriate message for min/max validation.
func minMaxMessage(tag, param string, kind reflect.Kind) string {
	suffix := ""
	if kind == reflect.String {
		suffix = " characters"
	}

	if tag == "min" {
		return "must be at least " + param + suffix
	}

	return "must be at most " + param + suffix
}
