// SPDX-License-Identifier: MIT

package convergence

import (
	"github.com/katalvlaran/lvlot/oterr"
)

// Bounds limit an iterative solve.
type Bounds struct {
	// MinIterations is the number of outer iterations before convergence may be declared.
	MinIterations int
	// MaxIterations is the hard cap on outer iterations.
	MaxIterations int
	// InnerIterations is the checkpoint period.
	InnerIterations int
	// Threshold is the residual below which the solve has converged.
	Threshold float64
}

// Validate checks 0 <= Min <= Max, Max >= 1, Inner >= 1 and Threshold > 0.
func (b Bounds) Validate() error {
	const op = "convergence.Bounds"
	switch {
	case b.MaxIterations < 1:
		return oterr.Errorf(op, oterr.ErrConfiguration, "max_iterations=%d, want >= 1", b.MaxIterations)
	case b.MinIterations < 0 || b.MinIterations > b.MaxIterations:
		return oterr.Errorf(op, oterr.ErrConfiguration, "min_iterations=%d outside [0, %d]", b.MinIterations, b.MaxIterations)
	case b.InnerIterations < 1:
		return oterr.Errorf(op, oterr.ErrConfiguration, "inner_iterations=%d, want >= 1", b.InnerIterations)
	case !(b.Threshold > 0):
		return oterr.Errorf(op, oterr.ErrConfiguration, "threshold=%g, want > 0", b.Threshold)
	}

	return nil
}

// TailPolicy decides whether MaxIterations is always a checkpoint.
type TailPolicy int

const (
	// TailCheck adds a checkpoint at MaxIterations when it is not a multiple of
	// InnerIterations, so the final iterate is always evaluated.
	TailCheck TailPolicy = iota
	// TailSkip only checkpoints at multiples of InnerIterations.
	TailSkip
)

// CauchyNorm measures the difference between consecutive iterates.
type CauchyNorm int

const (
	// CauchyMaxAbs is max_i |x_i - prev_i|.
	CauchyMaxAbs CauchyNorm = iota
	// CauchyL1 is Σ_i |x_i - prev_i|.
	CauchyL1
	// CauchyRelativeL2 is |x - prev|₂ / |prev|₂.
	CauchyRelativeL2
)

// String implements fmt.Stringer.
func (n CauchyNorm) String() string {
	switch n {
	case CauchyMaxAbs:
		return "max_abs"
	case CauchyL1:
		return "l1"
	case CauchyRelativeL2:
		return "relative_l2"
	}

	return "unknown"
}

// ParseCauchyNorm resolves a norm name ("" means max_abs).
func ParseCauchyNorm(s string) (CauchyNorm, error) {
	switch s {
	case "", "max_abs":
		return CauchyMaxAbs, nil
	case "l1":
		return CauchyL1, nil
	case "relative_l2":
		return CauchyRelativeL2, nil
	}

	return 0, oterr.Errorf("convergence.ParseCauchyNorm", oterr.ErrConfiguration, "unknown norm %q", s)
}

// ParseTailPolicy resolves a tail policy name ("" means check).
func ParseTailPolicy(s string) (TailPolicy, error) {
	switch s {
	case "", "check":
		return TailCheck, nil
	case "skip":
		return TailSkip, nil
	}

	return 0, oterr.Errorf("convergence.ParseTailPolicy", oterr.ErrConfiguration, "unknown tail policy %q", s)
}
