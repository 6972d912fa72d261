package tensor

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every error returned by tensor operations and by the
// layers built on them wraps exactly one of these, so callers can classify
// failures with errors.Is.
var (
	// ErrShape reports incompatible or unexpected tensor shapes.
	ErrShape = errors.New("shape mismatch")

	// ErrRange reports an index or length outside its valid range.
	ErrRange = errors.New("out of range")

	// ErrNumerical reports a computation whose result would be undefined.
	ErrNumerical = errors.New("numerical error")
)

// ShapeError describes a shape mismatch with the expected and actual shapes.
type ShapeError struct {
	Op       string
	Expected Shape
	Actual   Shape
	Detail   string
}

// Error implements error.
func (e *ShapeError) Error() string {
	msg := fmt.Sprintf("%s: %v: expected %v, got %v", e.Op, ErrShape, e.Expected, e.Actual)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Unwrap returns ErrShape.
func (e *ShapeError) Unwrap() error { return ErrShape }

// RangeError describes a value that fell outside [Low, High).
type RangeError struct {
	Op    string
	What  string
	Index int // flat position of the offending value, -1 if not applicable
	Value int
	Low   int
	High  int
}

// Error implements error.
func (e *RangeError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %v: %s %d at position %d not in [%d, %d)",
			e.Op, ErrRange, e.What, e.Value, e.Index, e.Low, e.High)
	}
	return fmt.Sprintf("%s: %v: %s %d not in [%d, %d)", e.Op, ErrRange, e.What, e.Value, e.Low, e.High)
}

// Unwrap returns ErrRange.
func (e *RangeError) Unwrap() error { return ErrRange }

// NumericalError describes an undefined numerical result, such as a softmax
// over a row whose inputs are all -Inf.
type NumericalError struct {
	Op     string
	Row    int
	Reason string
}

// Error implements error.
func (e *NumericalError) Error() string {
	return fmt.Sprintf("%s: %v: row %d: %s", e.Op, ErrNumerical, e.Row, e.Reason)
}

// Unwrap returns ErrNumerical.
func (e *NumericalError) Unwrap() error { return ErrNumerical }
