package models

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that a referenced entity does not exist (or is
// archived and the query did not allow archived entities).
var ErrNotFound = errors.New("entity not found")

// InputValidationError signals malformed caller input: unparseable
// dates, out-of-range specifiers, empty names, nonsense skip rules.
type InputValidationError struct {
	Msg string
}

func (e *InputValidationError) Error() string {
	return e.Msg
}

// NewInputValidationError builds an InputValidationError with a
// formatted message.
func NewInputValidationError(format string, args ...any) error {
	return &InputValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsInputValidationError reports whether err is an input validation
// failure.
func IsInputValidationError(err error) bool {
	var target *InputValidationError
	return errors.As(err, &target)
}

// FeatureUnavailableError signals a generation target or use case that
// is disabled for the workspace.
type FeatureUnavailableError struct {
	Feature string
}

func (e *FeatureUnavailableError) Error() string {
	return fmt.Sprintf("feature %q is not available in this workspace", e.Feature)
}

// IsFeatureUnavailableError reports whether err is a disabled-feature
// failure.
func IsFeatureUnavailableError(err error) bool {
	var target *FeatureUnavailableError
	return errors.As(err, &target)
}

// CannotModifyGeneratedTaskError signals an attempt to change a field
// that the generation engine owns on a generated inbox task.
type CannotModifyGeneratedTaskError struct {
	Field string
}

func (e *CannotModifyGeneratedTaskError) Error() string {
	return fmt.Sprintf("cannot modify field %q of a generated inbox task", e.Field)
}

// IsCannotModifyGeneratedTaskError reports whether err is a
// generated-field modification failure.
func IsCannotModifyGeneratedTaskError(err error) bool {
	var target *CannotModifyGeneratedTaskError
	return errors.As(err, &target)
}

// ConflictError signals a duplicate natural key (project key, metric
// key).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string {
	return e.Msg
}

// NewConflictError builds a ConflictError with a formatted message.
func NewConflictError(format string, args ...any) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// IsConflictError reports whether err is a natural-key conflict.
func IsConflictError(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}
