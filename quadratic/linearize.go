// SPDX-License-Identifier: MIT

package quadratic

import (
	"github.com/katalvlaran/lvlot/geometry"
	"github.com/katalvlaran/lvlot/linear"
	"github.com/katalvlaran/lvlot/matrix"
	"github.com/katalvlaran/lvlot/oterr"
)

// structure holds the validated inputs of one quadratic problem.
// Low-rank problems keep the factored structures and fused factors.
type structure struct {
	xx, yy, xy geometry.Geometry
	alpha      float64

	lowRank  bool
	fxx, fyy *geometry.Factored
	xyA, xyB *matrix.Dense
}

func newStructure(xx, yy, xy geometry.Geometry, a, b []float64, o Options) (*structure, error) {
	if err := checkSquare("source", xx, len(a)); err != nil {
		return nil, err
	}
	if err := checkSquare("target", yy, len(b)); err != nil {
		return nil, err
	}
	n, m := len(a), len(b)
	s := &structure{xx: xx, yy: yy, alpha: o.Alpha, lowRank: o.Linear.IsLowRank()}
	if o.IsFused() {
		if xy == nil {
			return nil, oterr.Errorf(opSolve, oterr.ErrConfiguration, "alpha=%g needs a linear cost", o.Alpha)
		}
		if r, c := xy.Shape(); r != n || c != m {
			return nil, oterr.Errorf(opSolve, oterr.ErrShape, "linear cost is %dx%d, want %dx%d", r, c, n, m)
		}
		s.xy = xy
	}
	if err := linear.ValidateMarginals(a, b, o.Linear); err != nil {
		return nil, oterr.Wrap(opSolve, err)
	}
	if !s.lowRank {
		return s, nil
	}

	if o.Linear.Rank > min(n, m) {
		return nil, oterr.Errorf(opSolve, oterr.ErrConfiguration, "rank=%d exceeds min(%d, %d)", o.Linear.Rank, n, m)
	}
	var ok bool
	if s.fxx, ok = factorize(xx); !ok {
		return nil, oterr.Errorf(opSolve, oterr.ErrConfiguration, "low rank needs a factorizable source structure")
	}
	if s.fyy, ok = factorize(yy); !ok {
		return nil, oterr.Errorf(opSolve, oterr.ErrConfiguration, "low rank needs a factorizable target structure")
	}
	if s.xy != nil {
		var err error
		if s.xyA, s.xyB, err = fusedFactors(s.xy); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// fusedFactors returns A, B with Cxy = A·Bᵀ. Costs without an exact
// factorization use A = Cxy and B = I.
func fusedFactors(xy geometry.Geometry) (*matrix.Dense, *matrix.Dense, error) {
	if f, ok := factorize(xy); ok {
		a, b := f.Factors()
		return a, b, nil
	}
	c, err := xy.Cost()
	if err != nil {
		return nil, nil, err
	}
	m := c.Cols()
	eye, err := matrix.NewDense(m, m)
	if err != nil {
		return nil, nil, err
	}
	for j := 0; j < m; j++ {
		eye.RawRow(j)[j] = 1
	}

	return c, eye, nil
}

// linearize returns the cost L of the linear problem around plan p.
func (s *structure) linearize(p *linear.Plan) (geometry.Geometry, error) {
	if s.lowRank {
		return s.linearizeFactored(p)
	}

	return s.linearizeDense(p)
}

func (s *structure) linearizeDense(p *linear.Plan) (geometry.Geometry, error) {
	p1, p2 := p.Marginals()
	u, err := s.xx.ApplySquaredVec(p1)
	if err != nil {
		return nil, err
	}
	v, err := s.yy.ApplySquaredVec(p2)
	if err != nil {
		return nil, err
	}
	cxp, err := s.xx.Apply(p.Dense())
	if err != nil {
		return nil, err
	}
	// Cy·(Cx·P)ᵀ is the transpose of Cx·P·Cyᵀ.
	crossT, err := s.yy.Apply(matrix.Transpose(cxp))
	if err != nil {
		return nil, err
	}
	var cxy *matrix.Dense
	if s.xy != nil {
		if cxy, err = s.xy.Cost(); err != nil {
			return nil, err
		}
	}

	n, m := len(u), len(v)
	l, err := matrix.NewDense(n, m)
	if err != nil {
		return nil, err
	}
	ct := crossT.RawData()
	var i, j int
	for i = 0; i < n; i++ {
		row := l.RawRow(i)
		for j = 0; j < m; j++ {
			row[j] = s.alpha * (u[i] + v[j] - 2*ct[j*n+i])
		}
		if cxy != nil {
			fused := cxy.RawRow(i)
			for j = 0; j < m; j++ {
				row[j] += (1 - s.alpha) * fused[j]
			}
		}
	}

	return geometry.NewDense(l)
}

// linearizeFactored keeps L as
//
//	α·u·1ᵀ + α·1·vᵀ − 2α·(Cx·Q·diag(1/g))·(Cy·R)ᵀ + (1−α)·A·Bᵀ
func (s *structure) linearizeFactored(p *linear.Plan) (geometry.Geometry, error) {
	q, r, g := p.Factors()
	p1, p2 := p.Marginals()
	u, err := s.fxx.ApplySquaredVec(p1)
	if err != nil {
		return nil, err
	}
	v, err := s.fyy.ApplySquaredVec(p2)
	if err != nil {
		return nil, err
	}
	cq, err := s.fxx.Apply(q)
	if err != nil {
		return nil, err
	}
	for i := 0; i < cq.Rows(); i++ {
		row := cq.RawRow(i)
		for k := range row {
			row[k] /= g[k]
		}
	}
	cr, err := s.fyy.Apply(r)
	if err != nil {
		return nil, err
	}

	n, m := len(u), len(v)
	terms := []geometry.Term{
		{Weight: s.alpha, A: column(u), B: column(constant(m, 1))},
		{Weight: s.alpha, A: column(constant(n, 1)), B: column(v)},
		{Weight: -2 * s.alpha, A: cq, B: cr},
	}
	if s.xyA != nil {
		terms = append(terms, geometry.Term{Weight: 1 - s.alpha, A: s.xyA, B: s.xyB})
	}

	return geometry.Sum(terms...)
}

func column(v []float64) *matrix.Dense {
	out, _ := matrix.NewDense(len(v), 1)
	copy(out.RawData(), v)

	return out
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}

	return out
}
