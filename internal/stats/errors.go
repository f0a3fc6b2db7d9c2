package stats

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch indicates a region mask whose length differs from the field array.
	ErrShapeMismatch = errors.New("mask length does not match field length")
	// ErrEmptyInput indicates a selection with no points; statistics are undefined.
	ErrEmptyInput = errors.New("no values selected")
	// ErrNonFinite indicates a NaN or infinite value in the selected values.
	ErrNonFinite = errors.New("non-finite value in selection")
	// ErrInvalidPercentile indicates a threshold outside (0, 100].
	ErrInvalidPercentile = errors.New("percentile threshold out of range")
	// ErrInvalidPrecision indicates more decimals than a float64 can carry.
	ErrInvalidPrecision = errors.New("precision out of range")
)

// ShapeMismatchError reports the two lengths that disagreed.
type ShapeMismatchError struct {
	Values int
	Mask   int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: %d values, %d mask entries", ErrShapeMismatch.Error(), e.Values, e.Mask)
}

func (e *ShapeMismatchError) Unwrap() error { return ErrShapeMismatch }
