// SPDX-License-Identifier: MIT

package geometry

import (
	"math"

	"github.com/katalvlaran/lvlot/cost"
	"github.com/katalvlaran/lvlot/matrix"
	"github.com/katalvlaran/lvlot/oterr"
)

// FromKernel converts Gibbs kernel values into costs, C = -ε·log K.
// Errors: oterr.ErrConfiguration when ε <= 0 or an entry is not strictly positive.
func FromKernel(k *matrix.Dense, epsilon float64) (*matrix.Dense, error) {
	const op = "geometry.FromKernel"
	if epsilon <= 0 {
		return nil, oterr.Errorf(op, oterr.ErrConfiguration, "kernel-tagged input needs epsilon > 0, got %g", epsilon)
	}
	out := k.Copy()
	data := out.RawData()
	for i, v := range data {
		if !(v > 0) || math.IsInf(v, 0) {
			return nil, oterr.Errorf(op, oterr.ErrConfiguration, "kernel entry %d is %g, want > 0", i, v)
		}
		data[i] = -epsilon * math.Log(v)
	}

	return out, nil
}

// FromResolved builds the geometry of a resolved cost input.
// Kernel-tagged matrices are converted with epsilon.
func FromResolved(r *cost.Resolved, epsilon float64) (Geometry, error) {
	if r == nil {
		return nil, oterr.Errorf("geometry.FromResolved", oterr.ErrConfiguration, "nil input")
	}
	if r.IsPointCloud() {
		return NewPointCloud(r.X, r.Y, r.CostFn)
	}
	c := r.Matrix
	if r.Tag == cost.TagKernel {
		var err error
		if c, err = FromKernel(c, epsilon); err != nil {
			return nil, err
		}
	}

	return NewDense(c)
}
