// SPDX-License-Identifier: MIT

package linear

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/lvlot/convergence"
	"github.com/katalvlaran/lvlot/matrix"
)

// sinkhornState holds the dual potentials of a log-domain Sinkhorn run.
type sinkhornState struct {
	f, g []float64
}

// sinkhorn runs log-domain Sinkhorn on cost c until ctl stops.
//
// One outer iteration updates g then f:
//
//	g_j = τ_b·(ε·log b_j − ε·LSE_i((f_i − C_ij)/ε))
//	f_i = τ_a·(ε·log a_i − ε·LSE_j((g_j − C_ij)/ε))
//
// Balanced runs check the L1 deviation of the column marginal; relaxed runs
// check the Cauchy difference of the concatenated potentials.
func sinkhorn(c *matrix.Dense, a, b []float64, eps, tauA, tauB float64, ctl *convergence.Controller) sinkhornState {
	n, m := c.Shape()
	ct := matrix.Transpose(c)
	logA, logB := logOf(a), logOf(b)

	st := sinkhornState{f: make([]float64, n), g: make([]float64, m)}
	scratchN := make([]float64, n)
	scratchM := make([]float64, m)
	balanced := tauA == 1 && tauB == 1
	var both []float64
	if !balanced {
		both = make([]float64, n+m)
	}

	var i, j int
	for !ctl.Done() {
		for j = 0; j < m; j++ {
			col := ct.RawRow(j)
			for i = 0; i < n; i++ {
				scratchN[i] = (st.f[i] - col[i]) / eps
			}
			st.g[j] = tauB * eps * (logB[j] - floats.LogSumExp(scratchN))
		}
		for i = 0; i < n; i++ {
			row := c.RawRow(i)
			for j = 0; j < m; j++ {
				scratchM[j] = (st.g[j] - row[j]) / eps
			}
			st.f[i] = tauA * eps * (logA[i] - floats.LogSumExp(scratchM))
		}

		if !ctl.Tick() {
			continue
		}
		if balanced {
			if ctl.ObserveMarginal(columnMarginal(c, st.f, st.g, eps), b) {
				break
			}
			continue
		}
		copy(both, st.f)
		copy(both[n:], st.g)
		if ctl.ObserveIterate(both) {
			break
		}
	}

	return st
}

// gibbsPlan returns P_ij = exp((f_i + g_j − C_ij)/ε).
func gibbsPlan(c *matrix.Dense, f, g []float64, eps float64) *matrix.Dense {
	n, m := c.Shape()
	p, _ := matrix.NewDense(n, m)
	var i, j int
	for i = 0; i < n; i++ {
		row, out := c.RawRow(i), p.RawRow(i)
		for j = 0; j < m; j++ {
			out[j] = math.Exp((f[i] + g[j] - row[j]) / eps)
		}
	}

	return p
}

// columnMarginal returns Σ_i exp((f_i + g_j − C_ij)/ε) for every j.
func columnMarginal(c *matrix.Dense, f, g []float64, eps float64) []float64 {
	n, m := c.Shape()
	out := make([]float64, m)
	var i, j int
	for i = 0; i < n; i++ {
		row := c.RawRow(i)
		for j = 0; j < m; j++ {
			out[j] += math.Exp((f[i] + g[j] - row[j]) / eps)
		}
	}

	return out
}

// logOf returns the element-wise natural log (log 0 = −Inf).
func logOf(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Log(v)
	}

	return out
}
