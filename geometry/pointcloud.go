// SPDX-License-Identifier: MIT

package geometry

import (
	"sync"

	"github.com/katalvlaran/lvlot/costfn"
	"github.com/katalvlaran/lvlot/matrix"
	"github.com/katalvlaran/lvlot/oterr"
)

// PointCloud is the cost fn(x_i, y_j) between two point clouds, optionally
// multiplied by a scale factor. The cost matrix is materialized at most once.
type PointCloud struct {
	x, y  *matrix.Dense
	fn    costfn.Func
	scale float64

	once sync.Once
	c    *matrix.Dense
	err  error
}

// NewPointCloud builds a point-cloud geometry. A nil fn means squared Euclidean.
func NewPointCloud(x, y *matrix.Dense, fn costfn.Func) (*PointCloud, error) {
	if x == nil || y == nil {
		return nil, oterr.Errorf("geometry.NewPointCloud", oterr.ErrShape, "nil point cloud")
	}
	if x.Cols() != y.Cols() {
		return nil, oterr.Errorf("geometry.NewPointCloud", oterr.ErrShape, "feature dims %d vs %d", x.Cols(), y.Cols())
	}
	if fn == nil {
		fn = costfn.SqEuclidean{}
	}

	return &PointCloud{x: x, y: y, fn: fn, scale: 1}, nil
}

// Points returns the two clouds. Callers must not modify them.
func (g *PointCloud) Points() (x, y *matrix.Dense) { return g.x, g.y }

// CostFn returns the ground cost.
func (g *PointCloud) CostFn() costfn.Func { return g.fn }

// Shape implements Geometry.
func (g *PointCloud) Shape() (int, int) { return g.x.Rows(), g.y.Rows() }

// Cost implements Geometry.
func (g *PointCloud) Cost() (*matrix.Dense, error) {
	g.once.Do(func() {
		c, err := g.fn.Pairwise(g.x, g.y)
		if err != nil {
			g.err = err
			return
		}
		if g.scale != 1 {
			c = matrix.Scale(c, g.scale)
		}
		g.c = c
	})

	return g.c, g.err
}

// CanFactor reports whether the ground cost has an exact factorization.
func (g *PointCloud) CanFactor() bool {
	_, ok := g.fn.(costfn.Factorizer)

	return ok
}

// Factored returns the exact low-rank form of the cost.
// Errors: oterr.ErrConfiguration when the ground cost is not factorizable.
func (g *PointCloud) Factored() (*Factored, error) {
	f, ok := g.fn.(costfn.Factorizer)
	if !ok {
		return nil, oterr.Errorf("PointCloud.Factored", oterr.ErrConfiguration, "cost %q has no low-rank factorization", g.fn.Name())
	}
	a, b, err := f.Factors(g.x, g.y)
	if err != nil {
		return nil, err
	}
	if g.scale != 1 {
		a = matrix.Scale(a, g.scale)
	}

	return &Factored{a: a, b: b}, nil
}

// dense returns the fastest geometry for products: factored when possible.
func (g *PointCloud) dense() (Geometry, error) {
	if g.CanFactor() {
		return g.Factored()
	}
	c, err := g.Cost()
	if err != nil {
		return nil, err
	}

	return &Dense{c: c}, nil
}

// Apply implements Geometry.
func (g *PointCloud) Apply(v *matrix.Dense) (*matrix.Dense, error) {
	inner, err := g.dense()
	if err != nil {
		return nil, err
	}

	return inner.Apply(v)
}

// ApplyT implements Geometry.
func (g *PointCloud) ApplyT(u *matrix.Dense) (*matrix.Dense, error) {
	inner, err := g.dense()
	if err != nil {
		return nil, err
	}

	return inner.ApplyT(u)
}

// ApplySquaredVec implements Geometry.
func (g *PointCloud) ApplySquaredVec(v []float64) ([]float64, error) {
	inner, err := g.dense()
	if err != nil {
		return nil, err
	}

	return inner.ApplySquaredVec(v)
}

// Scaled implements Geometry.
func (g *PointCloud) Scaled(s float64) Geometry {
	return &PointCloud{x: g.x, y: g.y, fn: g.fn, scale: g.scale * s}
}
