package common

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
)

// ValidationError carries per-field validation messages.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Fields.Error()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrorValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Fields
}

// FieldMessages flattens the field errors into a field -> message map.
func (e *ValidationError) FieldMessages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for field, err := range e.Fields {
		if err != nil {
			out[field] = err.Error()
		}
	}
	return out
}

// NewValidationError converts the result of validation.ValidateStruct into a
// ValidationError. Nil stays nil; anything other than validation.Errors is a
// validator failure and is returned unchanged.
func NewValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		return &ValidationError{Fields: fields}
	}
	return err
}
