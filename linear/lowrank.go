// SPDX-License-Identifier: MIT

package linear

import (
	"math"

	"github.com/katalvlaran/lvlot/convergence"
	"github.com/katalvlaran/lvlot/geometry"
	"github.com/katalvlaran/lvlot/matrix"
)

// factors is the low-rank iterate (Q, R, g).
type factors struct {
	q, r *matrix.Dense
	g    []float64
}

// expOverflowGuard caps log ξ3 before exponentiation.
const expOverflowGuard = 700

// lowRank runs mirror descent on (Q, R, g) with LR-Dykstra projections.
//
// Gradients of ⟨C, Q·diag(1/g)·Rᵀ⟩ (plus ε times the entropy when ε > 0):
//
//	∇Q = C·R·diag(1/g)         ∇R = Cᵀ·Q·diag(1/g)
//	∇g = −diag(Qᵀ·C·R) / g²
//
// Each step forms ξ = X ⊙ exp(−γ·∇X) and projects it back onto the coupling set.
// The checkpoint residual is (1/γ²)·(J(Q, Q′) + J(R, R′) + J(g, g′)) with J the
// symmetric KL divergence to the iterate of the previous checkpoint.
func lowRank(geom geometry.Geometry, a, b []float64, o Options, st factors, ctl *convergence.Controller) (factors, error) {
	prev := st
	r := len(st.g)
	gradG := make([]float64, r)
	logXi3 := make([]float64, r)

	for !ctl.Done() {
		cr, err := geom.Apply(st.r)
		if err != nil {
			return st, err
		}
		ctq, err := geom.ApplyT(st.q)
		if err != nil {
			return st, err
		}

		for k := 0; k < r; k++ {
			gradG[k] = 0
		}
		qd, crd := st.q.RawData(), cr.RawData()
		for off := 0; off < len(qd); off += r {
			for k := 0; k < r; k++ {
				gradG[k] += qd[off+k] * crd[off+k]
			}
		}
		for k := 0; k < r; k++ {
			gradG[k] = -gradG[k] / (st.g[k] * st.g[k])
		}
		divideColumns(cr, st.g)
		divideColumns(ctq, st.g)
		gradQ, gradR := cr, ctq
		if o.Epsilon > 0 {
			addScaledLog(gradQ, st.q, o.Epsilon)
			addScaledLog(gradR, st.r, o.Epsilon)
			for k := 0; k < r; k++ {
				gradG[k] += o.Epsilon * math.Log(st.g[k])
			}
		}

		gamma := o.Gamma
		if o.GammaRescale {
			norm := math.Max(maxAbs(gradQ.RawData()), math.Max(maxAbs(gradR.RawData()), maxAbs(gradG)))
			if norm > 0 {
				gamma /= norm * norm
			}
		}

		xi1 := mirrorKernel(st.q, gradQ, gamma)
		xi2 := mirrorKernel(st.r, gradR, gamma)
		top := math.Inf(-1)
		for k := 0; k < r; k++ {
			logXi3[k] = math.Log(st.g[k]) - gamma*gradG[k]
			top = math.Max(top, logXi3[k])
		}
		shift := 0.0
		if top > expOverflowGuard {
			shift = top - expOverflowGuard
		}
		xi3 := make([]float64, r)
		for k := 0; k < r; k++ {
			xi3[k] = math.Exp(logXi3[k] - shift)
		}

		q, rr, g, sweeps := dykstra(xi1, xi2, xi3, a, b, o.DykstraThreshold, o.DykstraMaxIterations)
		ctl.AddInner(sweeps)
		st = factors{q: q, r: rr, g: g}

		if !ctl.Tick() {
			continue
		}
		res := (jeffreys(st.q.RawData(), prev.q.RawData()) +
			jeffreys(st.r.RawData(), prev.r.RawData()) +
			jeffreys(st.g, prev.g)) / (o.Gamma * o.Gamma)
		prev = st
		if ctl.Observe(res) {
			break
		}
	}

	return st, nil
}

// mirrorKernel returns X ⊙ exp(−γ·∇) with every row rescaled so that its
// largest entry is 1. Row scalings are absorbed by the Dykstra row scalings.
func mirrorKernel(x, grad *matrix.Dense, gamma float64) *matrix.Dense {
	out := x.Copy()
	for i := 0; i < out.Rows(); i++ {
		row, gr := out.RawRow(i), grad.RawRow(i)
		top := math.Inf(-1)
		for k := range row {
			row[k] = safeLog(row[k]) - gamma*gr[k]
			top = math.Max(top, row[k])
		}
		for k := range row {
			row[k] = math.Exp(row[k] - top)
		}
	}

	return out
}

// jeffreys returns Σ (x − y)·(log x − log y).
func jeffreys(x, y []float64) float64 {
	var s float64
	for i := range x {
		s += (x[i] - y[i]) * (safeLog(x[i]) - safeLog(y[i]))
	}

	return s
}

func divideColumns(m *matrix.Dense, g []float64) {
	for i := 0; i < m.Rows(); i++ {
		row := m.RawRow(i)
		for k := range row {
			row[k] /= g[k]
		}
	}
}

func addScaledLog(dst, x *matrix.Dense, eps float64) {
	dd, xd := dst.RawData(), x.RawData()
	for i := range dd {
		dd[i] += eps * safeLog(xd[i])
	}
}

func maxAbs(x []float64) float64 {
	var m float64
	for _, v := range x {
		m = math.Max(m, math.Abs(v))
	}

	return m
}

func safeLog(v float64) float64 { return math.Log(math.Max(v, tinyDenominator)) }
