// SPDX-License-Identifier: MIT

package quadratic

import (
	"github.com/katalvlaran/lvlot/convergence"
	"github.com/katalvlaran/lvlot/linear"
)

// Options configure Solve.
type Options struct {
	// Alpha in (0, 1] weights the structural term against the fused linear cost.
	Alpha float64

	// Bounds control the linearization steps. Threshold applies to the relative
	// Frobenius change of the plan between consecutive steps.
	Bounds     convergence.Bounds
	TailPolicy convergence.TailPolicy

	// Linear configures every nested solve: Epsilon, Rank, TauA/TauB and its own
	// Bounds. For low rank the Initializer builds the first plan from xx and yy
	// (see linear.InitialStructuralPlan); every nested solve is warm-started
	// from the previous factors.
	Linear linear.Options

	// Progress is called at every outer checkpoint.
	Progress func(convergence.Checkpoint)
}

// DefaultOptions returns pure Gromov-Wasserstein options (α = 1) over the
// default full-rank linear solver.
func DefaultOptions() Options {
	return Options{
		Alpha: 1,
		Bounds: convergence.Bounds{
			MinIterations:   0,
			MaxIterations:   50,
			InnerIterations: 1,
			Threshold:       1e-3,
		},
		Linear: linear.DefaultOptions(),
	}
}

// IsFused reports whether the fused linear term contributes (α < 1).
func (o Options) IsFused() bool { return o.Alpha < 1 }
