package pager

import (
	"errors"
	"fmt"
)

// Errors returned by configuration calls. Gesture calls never fail; they
// ignore input they cannot apply.
var (
	// ErrInvalidPageCount is returned when a page count below one is supplied.
	ErrInvalidPageCount = errors.New("page count must be at least 1")

	// ErrInvalidParams is returned when tunable parameters are out of range.
	ErrInvalidParams = errors.New("invalid pager parameters")
)

// ParamError describes a single out-of-range tunable parameter.
type ParamError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("pager parameter %s = %v: %s", e.Field, e.Value, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidParams).
func (e *ParamError) Unwrap() error {
	return ErrInvalidParams
}
