// SPDX-License-Identifier: MIT

package linear

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/lvlot/geometry"
	"github.com/katalvlaran/lvlot/matrix"
	"github.com/katalvlaran/lvlot/oterr"
)

// Plan is a transport plan between n source and m target points, stored
// either densely or as low-rank factors P = Q·diag(1/g)·Rᵀ.
// A Plan is immutable; accessors return copies.
type Plan struct {
	dense *matrix.Dense

	q, r *matrix.Dense
	g    []float64
}

// NewDensePlan wraps an n×m matrix (copied).
func NewDensePlan(p *matrix.Dense) *Plan { return &Plan{dense: p.Copy()} }

// NewLowRankPlan builds Q·diag(1/g)·Rᵀ from copies of its factors.
func NewLowRankPlan(q, r *matrix.Dense, g []float64) (*Plan, error) {
	if q == nil || r == nil || q.Cols() != r.Cols() || q.Cols() != len(g) {
		return nil, oterr.Errorf("linear.NewLowRankPlan", oterr.ErrShape, "inconsistent factors")
	}

	return &Plan{q: q.Copy(), r: r.Copy(), g: append([]float64(nil), g...)}, nil
}

// IsLowRank reports whether the plan is stored as factors.
func (p *Plan) IsLowRank() bool { return p.q != nil }

// Rank returns the factor rank, or FullRank for a dense plan.
func (p *Plan) Rank() int {
	if p.IsLowRank() {
		return len(p.g)
	}

	return FullRank
}

// Shape returns (n, m).
func (p *Plan) Shape() (int, int) {
	if p.IsLowRank() {
		return p.q.Rows(), p.r.Rows()
	}

	return p.dense.Shape()
}

// Factors returns copies of Q, R and g, or nils for a dense plan.
func (p *Plan) Factors() (q, r *matrix.Dense, g []float64) {
	if !p.IsLowRank() {
		return nil, nil, nil
	}

	return p.q.Copy(), p.r.Copy(), append([]float64(nil), p.g...)
}

// scaledR returns R·diag(1/g).
func (p *Plan) scaledR() *matrix.Dense {
	rs := p.r.Copy()
	for j := 0; j < rs.Rows(); j++ {
		floats.Div(rs.RawRow(j), p.g)
	}

	return rs
}

// Dense materializes the n×m plan.
func (p *Plan) Dense() *matrix.Dense {
	if !p.IsLowRank() {
		return p.dense.Copy()
	}
	out, _ := matrix.MulTransB(p.q, p.scaledR())

	return out
}

// Push transports a source-side vector: Pᵀ·v (len n → len m).
func (p *Plan) Push(v []float64) ([]float64, error) {
	n, _ := p.Shape()
	if len(v) != n {
		return nil, oterr.Errorf("Plan.Push", oterr.ErrShape, "len %d, want %d", len(v), n)
	}
	if !p.IsLowRank() {
		return matrix.VecMat(v, p.dense)
	}
	qtv, _ := matrix.VecMat(v, p.q)
	floats.Div(qtv, p.g)

	return matrix.MatVec(p.r, qtv)
}

// Pull transports a target-side vector: P·w (len m → len n).
func (p *Plan) Pull(w []float64) ([]float64, error) {
	_, m := p.Shape()
	if len(w) != m {
		return nil, oterr.Errorf("Plan.Pull", oterr.ErrShape, "len %d, want %d", len(w), m)
	}
	if !p.IsLowRank() {
		return matrix.MatVec(p.dense, w)
	}
	rtw, _ := matrix.VecMat(w, p.r)
	floats.Div(rtw, p.g)

	return matrix.MatVec(p.q, rtw)
}

// Marginals returns the row sums P·1 and the column sums Pᵀ·1.
func (p *Plan) Marginals() (row, col []float64) {
	n, m := p.Shape()
	row, _ = p.Pull(ones(m))
	col, _ = p.Push(ones(n))

	return row, col
}

// Mass returns the total mass Σ P_ij.
func (p *Plan) Mass() float64 {
	row, _ := p.Marginals()

	return floats.Sum(row)
}

// Cost returns the transport cost ⟨C, P⟩ under geom.
// Low-rank plans never materialize P: ⟨C, P⟩ = Σ_k (Qᵀ·C·R)_kk / g_k.
func (p *Plan) Cost(geom geometry.Geometry) (float64, error) {
	n, m := p.Shape()
	gn, gm := geom.Shape()
	if n != gn || m != gm {
		return 0, oterr.Errorf("Plan.Cost", oterr.ErrShape, "plan %dx%d vs cost %dx%d", n, m, gn, gm)
	}
	if !p.IsLowRank() {
		c, err := geom.Cost()
		if err != nil {
			return 0, err
		}
		return matrix.Dot(c, p.dense)
	}
	cr, err := geom.Apply(p.r)
	if err != nil {
		return 0, err
	}

	return diagTrace(p.q, cr, p.g), nil
}

// diagTrace returns Σ_k (Aᵀ·B)_kk / g_k.
func diagTrace(a, b *matrix.Dense, g []float64) float64 {
	var total float64
	ad, bd := a.RawData(), b.RawData()
	k := a.Cols()
	for off := 0; off < len(ad); off += k {
		for c := 0; c < k; c++ {
			total += ad[off+c] * bd[off+c] / g[c]
		}
	}

	return total
}

// inner returns ⟨P1, P2⟩_F.
func inner(p1, p2 *Plan) float64 {
	if p1.IsLowRank() && p2.IsLowRank() {
		// tr(P1ᵀ·P2) = tr((Q1ᵀQ2)·D2·(R2ᵀR1)·D1), D = diag(1/g).
		var qq, rr, prod mat.Dense
		qq.Mul(p1.q.Gonum().T(), p2.q.Gonum())
		rr.Mul(p2.r.Gonum().T(), p1.r.Gonum())
		r1, r2 := len(p1.g), len(p2.g)
		for j := 0; j < r2; j++ {
			for i := 0; i < r1; i++ {
				qq.Set(i, j, qq.At(i, j)/p2.g[j])
			}
		}
		for j := 0; j < r1; j++ {
			for i := 0; i < r2; i++ {
				rr.Set(i, j, rr.At(i, j)/p1.g[j])
			}
		}
		prod.Mul(&qq, &rr)

		return mat.Trace(&prod)
	}
	d1, d2 := p1.Dense(), p2.Dense()
	v, _ := matrix.Dot(d1, d2)

	return v
}

// RelativeChange returns |next - prev|_F / |prev|_F, computed from factors
// when both plans are low rank.
func RelativeChange(prev, next *Plan) float64 {
	pp := inner(prev, prev)
	nn := inner(next, next)
	pn := inner(prev, next)
	diff := math.Max(pp+nn-2*pn, 0)
	if pp == 0 {
		return math.Sqrt(diff)
	}

	return math.Sqrt(diff / pp)
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}

	return out
}
