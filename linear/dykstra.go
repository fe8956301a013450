// SPDX-License-Identifier: MIT

package linear

import (
	"math"

	"github.com/katalvlaran/lvlot/matrix"
)

// dykstraFloor is the lower bound α on the inner marginal g.
const dykstraFloor = 1e-10

// tinyDenominator keeps Dykstra divisions finite when a kernel column underflows.
const tinyDenominator = 1e-300

// dykstra projects the kernels (ξ1, ξ2, ξ3) onto the low-rank coupling set
//
//	{(Q, R, g): Q·1 = a, R·1 = b, Qᵀ·1 = Rᵀ·1 = g, g >= α}
//
// in KL geometry, returning Q = diag(u1)·ξ1·diag(v1), R = diag(u2)·ξ2·diag(v2)
// and the number of sweeps performed.
func dykstra(xi1, xi2 *matrix.Dense, xi3, a, b []float64, tol float64, maxIter int) (*matrix.Dense, *matrix.Dense, []float64, int) {
	r := len(xi3)
	gt := append([]float64(nil), xi3...)
	q31, q32 := ones(r), ones(r)
	vt1, vt2 := ones(r), ones(r)
	q1, q2 := ones(r), ones(r)
	g := make([]float64, r)
	v1, v2 := make([]float64, r), make([]float64, r)

	var (
		u1, u2 []float64
		sweeps int
		k      int
	)
	for sweeps = 1; sweeps <= maxIter; sweeps++ {
		k1, _ := matrix.MatVec(xi1, vt1)
		k2, _ := matrix.MatVec(xi2, vt2)
		u1 = safeDiv(a, k1)
		u2 = safeDiv(b, k2)

		for k = 0; k < r; k++ {
			g[k] = math.Max(dykstraFloor, gt[k]*q31[k])
			q31[k] = gt[k] * q31[k] / g[k]
			gt[k] = g[k]
		}

		z1, _ := matrix.VecMat(u1, xi1)
		z2, _ := matrix.VecMat(u2, xi2)
		for k = 0; k < r; k++ {
			z1[k] = math.Max(z1[k], tinyDenominator)
			z2[k] = math.Max(z2[k], tinyDenominator)
			g[k] = math.Cbrt(gt[k]*q32[k]) * math.Cbrt(vt1[k]*q1[k]*z1[k]) * math.Cbrt(vt2[k]*q2[k]*z2[k])
			v1[k] = g[k] / z1[k]
			v2[k] = g[k] / z2[k]
			q1[k] = vt1[k] * q1[k] / v1[k]
			q2[k] = vt2[k] * q2[k] / v2[k]
			q32[k] = gt[k] * q32[k] / g[k]
		}
		copy(vt1, v1)
		copy(vt2, v2)
		copy(gt, g)

		if dykstraError(xi1, u1, v1, a)+dykstraError(xi2, u2, v2, b) < tol {
			break
		}
	}
	if sweeps > maxIter {
		sweeps = maxIter
	}

	return scaleKernel(xi1, u1, v1), scaleKernel(xi2, u2, v2), append([]float64(nil), g...), sweeps
}

// dykstraError returns |u ⊙ (ξ·v) − p|₁.
func dykstraError(xi *matrix.Dense, u, v, p []float64) float64 {
	xv, _ := matrix.MatVec(xi, v)
	var e float64
	for i := range xv {
		e += math.Abs(u[i]*xv[i] - p[i])
	}

	return e
}

// scaleKernel returns diag(u)·ξ·diag(v).
func scaleKernel(xi *matrix.Dense, u, v []float64) *matrix.Dense {
	out := xi.Copy()
	for i := 0; i < out.Rows(); i++ {
		row := out.RawRow(i)
		for k := range row {
			row[k] *= u[i] * v[k]
		}
	}

	return out
}

func safeDiv(num, den []float64) []float64 {
	out := make([]float64, len(num))
	for i := range num {
		out[i] = num[i] / math.Max(den[i], tinyDenominator)
	}

	return out
}
