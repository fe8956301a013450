// SPDX-License-Identifier: MIT

package geometry

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/lvlot/matrix"
	"github.com/katalvlaran/lvlot/oterr"
)

// Factored is the low-rank cost C = A·Bᵀ with A n×k and B m×k.
type Factored struct {
	a, b *matrix.Dense
}

// NewFactored builds C = A·Bᵀ. A and B must share their column count.
func NewFactored(a, b *matrix.Dense) (*Factored, error) {
	if a == nil || b == nil {
		return nil, oterr.Errorf("geometry.NewFactored", oterr.ErrShape, "nil factor")
	}
	if a.Cols() != b.Cols() {
		return nil, oterr.Errorf("geometry.NewFactored", oterr.ErrShape, "factor ranks %d vs %d", a.Cols(), b.Cols())
	}

	return &Factored{a: a, b: b}, nil
}

// Factors returns A and B. Callers must not modify them.
func (g *Factored) Factors() (a, b *matrix.Dense) { return g.a, g.b }

// Rank returns the inner dimension k.
func (g *Factored) Rank() int { return g.a.Cols() }

// Shape implements Geometry.
func (g *Factored) Shape() (int, int) { return g.a.Rows(), g.b.Rows() }

// Cost implements Geometry by materializing A·Bᵀ.
func (g *Factored) Cost() (*matrix.Dense, error) {
	return matrix.MulTransB(g.a, g.b)
}

// Apply implements Geometry: C·V = A·(Bᵀ·V).
func (g *Factored) Apply(v *matrix.Dense) (*matrix.Dense, error) {
	btv, err := matrix.MulTransA(g.b, v)
	if err != nil {
		return nil, oterr.Errorf("Factored.Apply", oterr.ErrShape, "%v", err)
	}

	return matrix.Mul(g.a, btv)
}

// ApplyT implements Geometry: Cᵀ·U = B·(Aᵀ·U).
func (g *Factored) ApplyT(u *matrix.Dense) (*matrix.Dense, error) {
	atu, err := matrix.MulTransA(g.a, u)
	if err != nil {
		return nil, oterr.Errorf("Factored.ApplyT", oterr.ErrShape, "%v", err)
	}

	return matrix.Mul(g.b, atu)
}

// ApplySquaredVec implements Geometry in O((n+m)·k²):
// ((A·Bᵀ)∘(A·Bᵀ))·v has entries a_iᵀ·(Bᵀ·diag(v)·B)·a_i.
func (g *Factored) ApplySquaredVec(v []float64) ([]float64, error) {
	m := g.b.Rows()
	if len(v) != m {
		return nil, oterr.Errorf("Factored.ApplySquaredVec", oterr.ErrShape, "len %d, want %d", len(v), m)
	}
	k := g.a.Cols()
	bv := g.b.Copy()
	for j := 0; j < m; j++ {
		floats.Scale(v[j], bv.RawRow(j))
	}
	var gram mat.Dense
	gram.Mul(g.b.Gonum().T(), bv.Gonum())

	n := g.a.Rows()
	out := make([]float64, n)
	tmp := mat.NewVecDense(k, nil)
	for i := 0; i < n; i++ {
		ai := mat.NewVecDense(k, g.a.RawRow(i))
		tmp.MulVec(&gram, ai)
		out[i] = mat.Dot(ai, tmp)
	}

	return out, nil
}

// Scaled implements Geometry by scaling A.
func (g *Factored) Scaled(s float64) Geometry {
	return &Factored{a: matrix.Scale(g.a, s), b: g.b}
}

// Term is one weighted summand of a factored sum.
type Term struct {
	Weight float64
	A, B   *matrix.Dense
}

// Sum returns Σ w_t·A_t·B_tᵀ as a single Factored by concatenating
// [w_1·A_1, w_2·A_2, ...] and [B_1, B_2, ...] column-wise.
func Sum(terms ...Term) (*Factored, error) {
	if len(terms) == 0 {
		return nil, oterr.Errorf("geometry.Sum", oterr.ErrShape, "no terms")
	}
	n, m := terms[0].A.Rows(), terms[0].B.Rows()
	k := 0
	for i, t := range terms {
		if t.A.Rows() != n || t.B.Rows() != m || t.A.Cols() != t.B.Cols() {
			return nil, oterr.Errorf("geometry.Sum", oterr.ErrShape, "term %d is %dx%d·(%dx%d)ᵀ", i, t.A.Rows(), t.A.Cols(), t.B.Rows(), t.B.Cols())
		}
		k += t.A.Cols()
	}
	a, _ := matrix.NewDense(n, k)
	b, _ := matrix.NewDense(m, k)
	off := 0
	for _, t := range terms {
		kt := t.A.Cols()
		for i := 0; i < n; i++ {
			dst := a.RawRow(i)[off : off+kt]
			copy(dst, t.A.RawRow(i))
			floats.Scale(t.Weight, dst)
		}
		for j := 0; j < m; j++ {
			copy(b.RawRow(j)[off:off+kt], t.B.RawRow(j))
		}
		off += kt
	}

	return &Factored{a: a, b: b}, nil
}
