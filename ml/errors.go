package ml

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyDataset   = errors.New("dataset is empty")
	ErrNotFitted      = errors.New("transformer not fitted")
	ErrLengthMismatch = errors.New("features and targets size mismatch")
)

// UnknownCategoryError reports a categorical value that was not part of the
// vocabulary the transformer was fitted on.
type UnknownCategoryError struct {
	Field string
	Value string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q for field %s", e.Value, e.Field)
}

// DimensionMismatchError indicates a feature vector whose width does not match
// the model's coefficient count. It usually means the transformer and model
// come from different training runs.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d features, got %d", e.Expected, e.Actual)
}

// ModelUnavailableError is returned by every prediction on a pipeline whose
// artifact could not be loaded.
//
// The load failure can be accessed via errors.Unwrap.
type ModelUnavailableError struct {
	Path  string
	cause error
}

func (e *ModelUnavailableError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("model unavailable: %s", e.Path)
	}
	return fmt.Sprintf("model unavailable: %s: %v", e.Path, e.cause)
}

func (e *ModelUnavailableError) Unwrap() error { return e.cause }

// ParseError rejects raw input before it becomes a Record.
type ParseError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}
