// SPDX-License-Identifier: MIT

package linear

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/lvlot/geometry"
	"github.com/katalvlaran/lvlot/oterr"
)

const opSolve = "linear.Solve"

// massTolerance bounds |Σa - Σb| relative to Σa for balanced problems.
const massTolerance = 1e-6

// ValidateOptions checks every parameter that does not depend on the data.
// Order: rank, tau, rank×tau, epsilon, bounds, initializer, gamma.
func ValidateOptions(o Options) error {
	if o.Rank == 0 || o.Rank < FullRank {
		return oterr.Errorf(opSolve, oterr.ErrConfiguration, "rank=%d, want -1 or > 0", o.Rank)
	}
	if !(o.TauA > 0 && o.TauA <= 1) || !(o.TauB > 0 && o.TauB <= 1) {
		return oterr.Errorf(opSolve, oterr.ErrConfiguration, "tau_a=%g tau_b=%g, want (0, 1]", o.TauA, o.TauB)
	}
	if o.IsLowRank() && !o.IsBalanced() {
		return oterr.Errorf(opSolve, oterr.ErrConfiguration, "low rank (rank=%d) requires tau_a = tau_b = 1", o.Rank)
	}
	if math.IsNaN(o.Epsilon) || math.IsInf(o.Epsilon, 0) || o.Epsilon < 0 {
		return oterr.Errorf(opSolve, oterr.ErrConfiguration, "epsilon=%g, want >= 0", o.Epsilon)
	}
	if o.Epsilon == 0 && !o.IsLowRank() {
		return oterr.Errorf(opSolve, oterr.ErrConfiguration, "epsilon=0 requires rank > 0")
	}
	if err := o.Bounds.Validate(); err != nil {
		return oterr.Wrap(opSolve, err)
	}
	if !o.IsLowRank() && o.Initializer != InitDefault {
		return oterr.Errorf(opSolve, oterr.ErrConfiguration, "initializer %q needs rank > 0", o.Initializer)
	}
	if _, err := ParseInitializer(string(o.Initializer)); err != nil {
		return oterr.Wrap(opSolve, err)
	}
	if o.IsLowRank() {
		if !(o.Gamma > 0) {
			return oterr.Errorf(opSolve, oterr.ErrConfiguration, "gamma=%g, want > 0", o.Gamma)
		}
		if o.DykstraMaxIterations < 1 || !(o.DykstraThreshold > 0) {
			return oterr.Errorf(opSolve, oterr.ErrConfiguration, "dykstra bounds (%d, %g)", o.DykstraMaxIterations, o.DykstraThreshold)
		}
	}

	return nil
}

// validateProblem checks the data-dependent constraints.
func validateProblem(geom geometry.Geometry, a, b []float64, o Options) error {
	if geom == nil {
		return oterr.Errorf(opSolve, oterr.ErrConfiguration, "nil geometry")
	}
	n, m := geom.Shape()
	if len(a) != n || len(b) != m {
		return oterr.Errorf(opSolve, oterr.ErrShape, "marginals (%d, %d) for a %dx%d cost", len(a), len(b), n, m)
	}
	if o.IsLowRank() && o.Rank > min(n, m) {
		return oterr.Errorf(opSolve, oterr.ErrConfiguration, "rank=%d exceeds min(%d, %d)", o.Rank, n, m)
	}
	if err := ValidateMarginals(a, b, o); err != nil {
		return err
	}
	if o.Initializer == InitKMeans || o.Initializer == InitGeneralizedKMeans {
		if _, ok := geom.(*geometry.PointCloud); !ok {
			return oterr.Errorf(opSolve, oterr.ErrConfiguration, "initializer %q requires point clouds", o.Initializer)
		}
	}

	return nil
}

// ValidateMarginals checks that a and b are finite, non-negative (strictly
// positive for low rank) and carry mass, with equal totals when o is balanced.
func ValidateMarginals(a, b []float64, o Options) error {
	if err := checkMarginal("a", a, o.IsLowRank()); err != nil {
		return err
	}
	if err := checkMarginal("b", b, o.IsLowRank()); err != nil {
		return err
	}
	if o.IsBalanced() {
		sa, sb := floats.Sum(a), floats.Sum(b)
		if math.Abs(sa-sb) > massTolerance*sa {
			return oterr.Errorf(opSolve, oterr.ErrConfiguration, "balanced problem with masses %g and %g", sa, sb)
		}
	}

	return nil
}

func checkMarginal(name string, w []float64, strict bool) error {
	var total float64
	for i, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || (strict && v == 0) {
			return oterr.Errorf(opSolve, oterr.ErrConfiguration, "marginal %s[%d]=%g", name, i, v)
		}
		total += v
	}
	if !(total > 0) {
		return oterr.Errorf(opSolve, oterr.ErrConfiguration, "marginal %s has no mass", name)
	}

	return nil
}
