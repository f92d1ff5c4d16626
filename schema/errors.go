package schema

import (
	"errors"
	"fmt"
	"strings"
)

var errMissingKey = errors.New("field descriptor has no key")

func errDuplicateKey(key string) error {
	return fmt.Errorf("duplicate field key %q", key)
}

// UnavailableError is returned when the form description cannot be fetched
// or parsed. It is fatal to client construction.
type UnavailableError struct {
	URL string
	Err error
}

func (e *UnavailableError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("crimson: form description unavailable from %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("crimson: form description unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// UnknownFieldTypeError is returned when a descriptor declares a wire type
// outside the supported set.
type UnknownFieldTypeError struct {
	Key  string
	Type string
}

func (e *UnknownFieldTypeError) Error() string {
	return fmt.Sprintf("crimson: field %q has unknown type %q", e.Key, e.Type)
}

// TypeMismatchError is returned when a candidate value's kind does not match
// the field's declared kind.
type TypeMismatchError struct {
	Key  string
	Want Kind
	Got  any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("crimson: field %q must be of type %s, got %T", e.Key, e.Want, e.Got)
}

// EmptyRequiredError is returned when a required field is set to its empty
// value. A boolean false is a legitimate value and never triggers this.
type EmptyRequiredError struct {
	Key string
}

func (e *EmptyRequiredError) Error() string {
	return fmt.Sprintf("crimson: field %q cannot be empty", e.Key)
}

// InvalidChoiceError is returned when a value does not match any allowed
// choice under case-insensitive comparison.
type InvalidChoiceError struct {
	Key     string
	Value   string
	Choices []string
}

func (e *InvalidChoiceError) Error() string {
	return fmt.Sprintf("crimson: field %q must be a valid choice: {%s}", e.Key, strings.Join(e.Choices, ", "))
}
