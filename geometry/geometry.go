// SPDX-License-Identifier: MIT

// Package geometry wraps cost inputs in the form solvers consume.
//
// Three concrete geometries are provided:
//
//	*Dense       an explicit n×m cost matrix
//	*PointCloud  two point clouds and a ground cost, materialized on demand
//	*Factored    an exact low-rank cost C = A·Bᵀ, never materialized by solvers
//
// Solvers only need products with C (Apply, ApplyT), the squared-cost
// product used by Gromov-Wasserstein linearizations (ApplySquaredVec) and,
// for the full-rank kernel, the materialized matrix (Cost).
package geometry

import (
	"github.com/katalvlaran/lvlot/matrix"
	"github.com/katalvlaran/lvlot/oterr"
)

// Geometry is a cost between n source and m target points.
type Geometry interface {
	// Shape returns (n, m).
	Shape() (n, m int)
	// Cost returns the n×m cost matrix. Callers must not modify it.
	Cost() (*matrix.Dense, error)
	// Apply returns C·V for an m×k matrix V.
	Apply(v *matrix.Dense) (*matrix.Dense, error)
	// ApplyT returns Cᵀ·U for an n×k matrix U.
	ApplyT(u *matrix.Dense) (*matrix.Dense, error)
	// ApplySquaredVec returns (C∘C)·v for len(v) == m.
	ApplySquaredVec(v []float64) ([]float64, error)
	// Scaled returns a geometry whose cost is s·C.
	Scaled(s float64) Geometry
}

// Dense is an explicit cost matrix.
type Dense struct {
	c *matrix.Dense
}

// NewDense wraps c. The geometry takes ownership; c must not be modified afterwards.
func NewDense(c *matrix.Dense) (*Dense, error) {
	if c == nil {
		return nil, oterr.Errorf("geometry.NewDense", oterr.ErrShape, "nil cost matrix")
	}
	if err := matrix.ValidateFinite(c.RawData()); err != nil {
		return nil, oterr.Errorf("geometry.NewDense", oterr.ErrConfiguration, "%v", err)
	}

	return &Dense{c: c}, nil
}

// Shape implements Geometry.
func (g *Dense) Shape() (int, int) { return g.c.Shape() }

// Cost implements Geometry.
func (g *Dense) Cost() (*matrix.Dense, error) { return g.c, nil }

// Apply implements Geometry.
func (g *Dense) Apply(v *matrix.Dense) (*matrix.Dense, error) {
	out, err := matrix.Mul(g.c, v)
	if err != nil {
		return nil, oterr.Errorf("Dense.Apply", oterr.ErrShape, "%v", err)
	}

	return out, nil
}

// ApplyT implements Geometry.
func (g *Dense) ApplyT(u *matrix.Dense) (*matrix.Dense, error) {
	out, err := matrix.MulTransA(g.c, u)
	if err != nil {
		return nil, oterr.Errorf("Dense.ApplyT", oterr.ErrShape, "%v", err)
	}

	return out, nil
}

// ApplySquaredVec implements Geometry.
func (g *Dense) ApplySquaredVec(v []float64) ([]float64, error) {
	sq, _ := matrix.Hadamard(g.c, g.c)
	out, err := matrix.MatVec(sq, v)
	if err != nil {
		return nil, oterr.Errorf("Dense.ApplySquaredVec", oterr.ErrShape, "%v", err)
	}

	return out, nil
}

// Scaled implements Geometry.
func (g *Dense) Scaled(s float64) Geometry { return &Dense{c: matrix.Scale(g.c, s)} }
