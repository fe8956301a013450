// SPDX-License-Identifier: MIT
// Package matrix: shared validators.
// Every exported kernel validates its operands here first, so that error
// precedence (nil → shape → numeric) is identical across the package.

package matrix

import (
	"fmt"
	"math"
)

// validatorErrorf wraps err with a validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateNotNil returns ErrNilMatrix if m is nil.
func ValidateNotNil(m *Dense) error {
	if m == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}

	return nil
}

// ValidateSameShape returns ErrDimensionMismatch unless a and b share rows and cols.
func ValidateSameShape(a, b *Dense) error {
	if a == nil || b == nil {
		return validatorErrorf("ValidateSameShape", ErrNilMatrix)
	}
	if a.r != b.r || a.c != b.c {
		return fmt.Errorf("ValidateSameShape: %dx%d vs %dx%d: %w", a.r, a.c, b.r, b.c, ErrDimensionMismatch)
	}

	return nil
}

// ValidateSquare returns ErrNonSquare unless m is n×n.
func ValidateSquare(m *Dense) error {
	if m == nil {
		return validatorErrorf("ValidateSquare", ErrNilMatrix)
	}
	if m.r != m.c {
		return fmt.Errorf("ValidateSquare: %dx%d: %w", m.r, m.c, ErrNonSquare)
	}

	return nil
}

// ValidateMulCompatible checks a.Cols() == b.Rows().
func ValidateMulCompatible(a, b *Dense) error {
	if a == nil || b == nil {
		return validatorErrorf("ValidateMulCompatible", ErrNilMatrix)
	}
	if a.c != b.r {
		return fmt.Errorf("ValidateMulCompatible: %dx%d * %dx%d: %w", a.r, a.c, b.r, b.c, ErrDimensionMismatch)
	}

	return nil
}

// ValidateFinite returns ErrNaNInf if any value is NaN or ±Inf.
func ValidateFinite(xs []float64) error {
	for i, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("ValidateFinite: index %d: %w", i, ErrNaNInf)
		}
	}

	return nil
}

// ValidateNoNaN returns ErrNaNInf if m holds a NaN. ±Inf is tolerated.
func ValidateNoNaN(m *Dense) error {
	if m == nil {
		return validatorErrorf("ValidateNoNaN", ErrNilMatrix)
	}
	for k, v := range m.data {
		if math.IsNaN(v) {
			return fmt.Errorf("ValidateNoNaN: (%d,%d): %w", k/m.c, k%m.c, ErrNaNInf)
		}
	}

	return nil
}
