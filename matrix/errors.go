// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// All kernels MUST return these sentinels (wrapped with an op tag) and tests
// MUST check them via errors.Is.

package matrix

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimensions indicates that requested matrix dimensions are non-positive.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrOutOfRange indicates that an index (row or column) is outside valid bounds.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible dimensions between operands.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNonSquare signals that a square matrix was required but the input wasn't.
	ErrNonSquare = errors.New("matrix: matrix is not square")

	// ErrNaNInf signals a NaN or ±Inf value where finite values are required.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNilMatrix indicates that a nil Matrix (receiver or argument) was used.
	ErrNilMatrix = errors.New("matrix: nil matrix")

	// ErrUnknownLabel indicates that a requested row/column label is absent.
	ErrUnknownLabel = errors.New("matrix: unknown label")

	// ErrDuplicateLabel indicates a label sequence that repeats an entry.
	ErrDuplicateLabel = errors.New("matrix: duplicate label")
)

// matrixErrorf attaches an operation tag to err; errors.Is keeps matching.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
