// SPDX-License-Identifier: MIT

// Package matrix - linear algebra kernels.
//
// Purpose:
//   - Products delegate to gonum (BLAS-backed); everything else runs on the flat
//     buffer with fixed loop order i→j so that results are deterministic.
//   - Every kernel returns a new matrix; inputs are never mutated.

package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	opMul       = "Mul"
	opMulTransA = "MulTransA"
	opMulTransB = "MulTransB"
	opAdd       = "Add"
	opSub       = "Sub"
	opHadamard  = "Hadamard"
	opMatVec    = "MatVec"
	opVecMat    = "VecMat"
	opDot       = "Dot"
	opAllClose  = "AllClose"
)

// Mul returns a·b.
// MAIN DESCRIPTION:
//   - Matrix product through gonum's mat.Dense.Mul on zero-copy views.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (a.Cols() != b.Rows()).
//
// Complexity:
//   - Time O(r·k·c) (BLAS dgemm), Space O(r·c).
func Mul(a, b *Dense) (*Dense, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	var out mat.Dense
	out.Mul(a.Gonum(), b.Gonum())

	return gonumResult(&out), nil
}

// MulTransA returns aᵀ·b without materializing aᵀ.
func MulTransA(a, b *Dense) (*Dense, error) {
	if a == nil || b == nil {
		return nil, matrixErrorf(opMulTransA, ErrNilMatrix)
	}
	if a.r != b.r {
		return nil, fmt.Errorf("%s: %dx%d^T * %dx%d: %w", opMulTransA, a.r, a.c, b.r, b.c, ErrDimensionMismatch)
	}
	var out mat.Dense
	out.Mul(a.Gonum().T(), b.Gonum())

	return gonumResult(&out), nil
}

// MulTransB returns a·bᵀ without materializing bᵀ.
func MulTransB(a, b *Dense) (*Dense, error) {
	if a == nil || b == nil {
		return nil, matrixErrorf(opMulTransB, ErrNilMatrix)
	}
	if a.c != b.c {
		return nil, fmt.Errorf("%s: %dx%d * %dx%d^T: %w", opMulTransB, a.r, a.c, b.r, b.c, ErrDimensionMismatch)
	}
	var out mat.Dense
	out.Mul(a.Gonum(), b.Gonum().T())

	return gonumResult(&out), nil
}

// Transpose returns mᵀ as a new matrix.
func Transpose(m *Dense) *Dense {
	out := &Dense{r: m.c, c: m.r, data: make([]float64, len(m.data)), allowInf: m.allowInf}
	var i, j int
	for i = 0; i < m.r; i++ {
		for j = 0; j < m.c; j++ {
			out.data[j*m.r+i] = m.data[i*m.c+j]
		}
	}

	return out
}

// Scale returns alpha·m.
func Scale(m *Dense, alpha float64) *Dense {
	out := m.Copy()
	floats.Scale(alpha, out.data)

	return out
}

// Add returns a+b (element-wise).
func Add(a, b *Dense) (*Dense, error) {
	if err := ValidateSameShape(a, b); err != nil {
		return nil, matrixErrorf(opAdd, err)
	}
	out := a.Copy()
	floats.Add(out.data, b.data)

	return out, nil
}

// Sub returns a-b (element-wise).
func Sub(a, b *Dense) (*Dense, error) {
	if err := ValidateSameShape(a, b); err != nil {
		return nil, matrixErrorf(opSub, err)
	}
	out := a.Copy()
	floats.Sub(out.data, b.data)

	return out, nil
}

// Hadamard returns a∘b (element-wise product).
func Hadamard(a, b *Dense) (*Dense, error) {
	if err := ValidateSameShape(a, b); err != nil {
		return nil, matrixErrorf(opHadamard, err)
	}
	out := a.Copy()
	floats.Mul(out.data, b.data)

	return out, nil
}

// Dot returns the Frobenius inner product Σ a_ij·b_ij.
func Dot(a, b *Dense) (float64, error) {
	if err := ValidateSameShape(a, b); err != nil {
		return 0, matrixErrorf(opDot, err)
	}

	return floats.Dot(a.data, b.data), nil
}

// MatVec returns m·x for len(x) == m.Cols().
func MatVec(m *Dense, x []float64) ([]float64, error) {
	if m == nil {
		return nil, matrixErrorf(opMatVec, ErrNilMatrix)
	}
	if len(x) != m.c {
		return nil, fmt.Errorf("%s: %dx%d * len %d: %w", opMatVec, m.r, m.c, len(x), ErrDimensionMismatch)
	}
	out := make([]float64, m.r)
	var i int
	for i = 0; i < m.r; i++ {
		out[i] = floats.Dot(m.RawRow(i), x)
	}

	return out, nil
}

// VecMat returns xᵀ·m for len(x) == m.Rows().
func VecMat(x []float64, m *Dense) ([]float64, error) {
	if m == nil {
		return nil, matrixErrorf(opVecMat, ErrNilMatrix)
	}
	if len(x) != m.r {
		return nil, fmt.Errorf("%s: len %d * %dx%d: %w", opVecMat, len(x), m.r, m.c, ErrDimensionMismatch)
	}
	out := make([]float64, m.c)
	var i int
	for i = 0; i < m.r; i++ {
		floats.AddScaled(out, x[i], m.RawRow(i))
	}

	return out, nil
}

// RowSums returns the vector of row sums (m·1).
func RowSums(m *Dense) []float64 {
	out := make([]float64, m.r)
	var i int
	for i = 0; i < m.r; i++ {
		out[i] = floats.Sum(m.RawRow(i))
	}

	return out
}

// ColSums returns the vector of column sums (mᵀ·1).
func ColSums(m *Dense) []float64 {
	out := make([]float64, m.c)
	var i int
	for i = 0; i < m.r; i++ {
		floats.Add(out, m.RawRow(i))
	}

	return out
}

// Sum returns the sum of all entries.
func Sum(m *Dense) float64 { return floats.Sum(m.data) }

// Max returns the largest entry.
func Max(m *Dense) float64 { return floats.Max(m.data) }

// Frobenius returns the Frobenius norm of m.
func Frobenius(m *Dense) float64 { return floats.Norm(m.data, 2) }

// AllClose reports whether |a_ij - b_ij| <= atol + rtol·|b_ij| for every cell.
// Two +Inf (or two -Inf) cells compare equal.
func AllClose(a, b *Dense, rtol, atol float64) (bool, error) {
	if err := ValidateSameShape(a, b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	var x, y float64
	for k := range a.data {
		x, y = a.data[k], b.data[k]
		if x == y {
			continue
		}
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			return false, nil
		}
		if math.Abs(x-y) > atol+rtol*math.Abs(y) {
			return false, nil
		}
	}

	return true, nil
}
