// SPDX-License-Identifier: MIT

package quadratic

import (
	"math"

	"github.com/katalvlaran/lvlot/geometry"
	"github.com/katalvlaran/lvlot/linear"
	"github.com/katalvlaran/lvlot/oterr"
)

const opSolve = "quadratic.Solve"

// ValidateAlpha rejects α outside (0, 1].
func ValidateAlpha(alpha float64) error {
	if math.IsNaN(alpha) || alpha <= 0 || alpha > 1 {
		return oterr.Errorf(opSolve, oterr.ErrConfiguration, "alpha=%g, want (0, 1]", alpha)
	}

	return nil
}

// ValidateOptions checks α first, then the outer bounds, then the nested
// linear options.
func ValidateOptions(o Options) error {
	if err := ValidateAlpha(o.Alpha); err != nil {
		return err
	}
	if err := o.Bounds.Validate(); err != nil {
		return oterr.Wrap(opSolve, err)
	}
	if err := linear.ValidateOptions(o.Linear); err != nil {
		return oterr.Wrap(opSolve, err)
	}

	return nil
}

// factorize returns the exact low-rank form of g, if it has one.
func factorize(g geometry.Geometry) (*geometry.Factored, bool) {
	switch t := g.(type) {
	case *geometry.Factored:
		return t, true
	case *geometry.PointCloud:
		if !t.CanFactor() {
			return nil, false
		}
		f, err := t.Factored()
		return f, err == nil
	}

	return nil, false
}

// checkSquare verifies that g is a k×k structure matching a marginal of length k.
func checkSquare(name string, g geometry.Geometry, k int) error {
	if g == nil {
		return oterr.Errorf(opSolve, oterr.ErrConfiguration, "nil %s structure", name)
	}
	r, c := g.Shape()
	if r != c {
		return oterr.Errorf(opSolve, oterr.ErrShape, "%s structure is %dx%d, want square", name, r, c)
	}
	if r != k {
		return oterr.Errorf(opSolve, oterr.ErrShape, "%s structure is %dx%d for %d weights", name, r, c, k)
	}

	return nil
}
