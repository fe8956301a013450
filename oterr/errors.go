// SPDX-License-Identifier: MIT
// Package oterr defines the error taxonomy shared by every lvlot package.
//
// Error policy:
//   - Only sentinel variables are exposed. Callers branch with errors.Is.
//   - Sentinels are never formatted at definition site; call sites attach
//     context with fmt.Errorf("Op: ...: %w", ErrX) (see Wrap/Errorf).
//   - Validation errors (configuration, alignment, shape, key, state) abort the
//     addressed sub-problem only.
//   - Numerical non-convergence is NOT an error. It is reported through
//     convergence.Record and never surfaces here.
package oterr

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration reports an invalid parameter combination, e.g. alpha=0,
	// low rank with relaxed marginals, or epsilon=0 without a positive rank.
	// Always raised before any numerical work begins.
	ErrConfiguration = errors.New("lvlot: invalid configuration")

	// ErrAlignment reports that cost-specification row/column labels do not match
	// the identities (or the order) of the addressed groups.
	ErrAlignment = errors.New("lvlot: label alignment mismatch")

	// ErrShape reports resolved matrix dimensions inconsistent with group sizes.
	ErrShape = errors.New("lvlot: shape mismatch")

	// ErrKey reports a sub-problem key that the partition policy did not enumerate.
	ErrKey = errors.New("lvlot: unknown sub-problem key")

	// ErrState reports an operation attempted in the wrong sub-problem state:
	// solving an unprepared or released sub-problem, or touching a key that is
	// already being prepared/solved by another goroutine.
	ErrState = errors.New("lvlot: invalid sub-problem state")
)

// Errorf wraps sentinel with an operation tag and a formatted detail:
//
//	Errorf("linear.Solve", ErrConfiguration, "rank=%d", r)
//	  → "linear.Solve: rank=3: lvlot: invalid configuration"
func Errorf(op string, sentinel error, format string, args ...any) error {
	return fmt.Errorf("%s: %s: %w", op, fmt.Sprintf(format, args...), sentinel)
}

// Wrap prefixes err with op, preserving errors.Is matching. Wrap(op, nil) is nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", op, err)
}

// IsValidation reports whether err belongs to the validation taxonomy.
func IsValidation(err error) bool {
	return errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrAlignment) ||
		errors.Is(err, ErrShape) ||
		errors.Is(err, ErrKey) ||
		errors.Is(err, ErrState)
}
