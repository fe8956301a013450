// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major) & safe accessors.
//
// Purpose:
//   - Provide a cache-friendly row-major buffer with the explicit index formula i*cols + j.
//   - Guarantee safety at the public surface: At/Set return errors instead of panicking.
//   - Keep algorithmic determinism (fixed loop orders, no map iteration).
//   - Expose the flat buffer (RawData, RawRow) to solver hot loops in sibling packages.
//
// Numeric policy:
//   - Set rejects NaN always. ±Inf is accepted only when the matrix was created
//     with AllowInf (distance matrices with unreachable pairs use +Inf).
//
// Complexity quicksheet:
//   - NewDense: O(r*c) zero-init; At/Set: O(1); Clone: O(r*c); Induced: O(r'*c').

package matrix

import (
	"fmt"
	"math"
	"strings"
)

// ---------- error context tags ----------

const (
	ctxAt     = "At"
	ctxSet    = "Set"
	ctxInduce = "Induced"
	ctxRows   = "FromRows"
)

// ---------- formatting literals ----------

const (
	_fmtRowOpen  = "["
	_fmtRowClose = "]\n"
	_fmtSep      = ", "
)

// denseErrorf wraps an error with a uniform Dense context and callsite indices.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a concrete row-major matrix.
//   - r,c hold dimensions (rows, cols).
//   - data is a flat buffer of length r*c in row-major order (offset = i*c + j).
//   - allowInf relaxes the finite-only policy of Set to accept ±Inf.
type Dense struct {
	r, c     int       // row and column counts (>0 for public constructors)
	data     []float64 // contiguous row-major storage (len == r*c)
	allowInf bool      // numeric guard: accept ±Inf in Set when true
}

// Compile-time assertions for interface & fmt.Stringer conformance.
var (
	_ Matrix       = (*Dense)(nil)
	_ fmt.Stringer = (*Dense)(nil)
)

// NewDense creates an r×c zero matrix using row-major storage.
// MAIN DESCRIPTION:
//   - Public constructor for Dense with strict shape validation.
//
// Implementation:
//   - Stage 1: validate rows>0 && cols>0; else ErrInvalidDimensions.
//   - Stage 2: allocate zero-filled buffer.
//
// Errors:
//   - ErrInvalidDimensions (shape contract violation).
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// FromRows builds a Dense from a rectangular slice of rows (copied).
// Errors: ErrInvalidDimensions (empty), ErrDimensionMismatch (ragged), ErrNaNInf.
func FromRows(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%s: %w", ctxRows, ErrInvalidDimensions)
	}
	r, c := len(rows), len(rows[0])
	m, _ := NewDense(r, c)
	var i int
	for i = 0; i < r; i++ {
		if len(rows[i]) != c {
			return nil, fmt.Errorf("%s: row %d has %d cols, want %d: %w", ctxRows, i, len(rows[i]), c, ErrDimensionMismatch)
		}
		if err := ValidateFinite(rows[i]); err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", ctxRows, i, err)
		}
		copy(m.data[i*c:(i+1)*c], rows[i])
	}

	return m, nil
}

// AllowInf switches the matrix to accept ±Inf in Set and returns it for chaining.
// NaN is still rejected.
func (m *Dense) AllowInf() *Dense {
	m.allowInf = true

	return m
}

// Rows returns the row count. Complexity: O(1).
func (m *Dense) Rows() int { return m.r }

// Cols returns the column count. Complexity: O(1).
func (m *Dense) Cols() int { return m.c }

// Shape packs Rows() and Cols() into a single call for convenience.
func (m *Dense) Shape() (rows, cols int) { return m.r, m.c }

// indexOf computes the row-major offset or returns ErrOutOfRange.
func (m *Dense) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r {
		return 0, ErrOutOfRange
	}
	if col < 0 || col >= m.c {
		return 0, ErrOutOfRange
	}

	// Row-major offset: i*c + j.
	return row*m.c + col, nil
}

// At returns the value at (row, col) or ErrOutOfRange.
func (m *Dense) At(row, col int) (float64, error) {
	off, err := m.indexOf(row, col)
	if err != nil {
		return 0, denseErrorf(ctxAt, row, col, err)
	}

	return m.data[off], nil
}

// Set stores v at (row, col) or returns an error (bounds or numeric policy).
// MAIN DESCRIPTION:
//   - Safe element write with the finite-only policy.
//
// Errors:
//   - ErrOutOfRange for bounds; ErrNaNInf for NaN (and ±Inf unless AllowInf).
func (m *Dense) Set(row, col int, v float64) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return denseErrorf(ctxSet, row, col, err)
	}
	if math.IsNaN(v) || (!m.allowInf && math.IsInf(v, 0)) {
		return denseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[off] = v

	return nil
}

// Clone returns a deep copy (new buffer, same numeric policy).
func (m *Dense) Clone() Matrix {
	return m.Copy()
}

// Copy is Clone with a concrete return type.
func (m *Dense) Copy() *Dense {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)

	return &Dense{r: m.r, c: m.c, data: cp, allowInf: m.allowInf}
}

// RawData exposes the row-major backing buffer. Writes are visible in m and
// bypass the numeric policy; intended for kernels that own m.
func (m *Dense) RawData() []float64 { return m.data }

// RawRow exposes row i of the backing buffer (no copy).
// i must lie in [0, Rows()); hot loops bound it themselves.
func (m *Dense) RawRow(i int) []float64 { return m.data[i*m.c : (i+1)*m.c] }

// Fill sets every cell to v under the numeric policy.
func (m *Dense) Fill(v float64) error {
	if math.IsNaN(v) || (!m.allowInf && math.IsInf(v, 0)) {
		return denseErrorf("Fill", 0, 0, ErrNaNInf)
	}
	for k := range m.data {
		m.data[k] = v
	}

	return nil
}

// String provides a readable row-wise dump for diagnostics.
// Not for hot paths; fixed traversal order.
func (m *Dense) String() string {
	var b strings.Builder
	var i, j, base int
	for i = 0; i < m.r; i++ {
		b.WriteString(_fmtRowOpen)
		base = i * m.c
		for j = 0; j < m.c; j++ {
			b.WriteString(fmt.Sprintf("%g", m.data[base+j]))
			if j+1 < m.c {
				b.WriteString(_fmtSep)
			}
		}
		b.WriteString(_fmtRowClose)
	}

	return b.String()
}

// Induced materializes a copy submatrix using explicit index sets.
// MAIN DESCRIPTION:
//   - Copy rows/cols at the given index lists (duplicates allowed).
//
// Implementation:
//   - Stage 1: reject empty index sets (ErrInvalidDimensions).
//   - Stage 2: bounds-check every index once.
//   - Stage 3: nested loops with direct offset math.
//
// Behavior highlights:
//   - Policy is preserved from the base.
//   - This is how sub-blocks of observation-pairwise matrices are extracted.
//
// Errors:
//   - ErrInvalidDimensions, ErrOutOfRange.
//
// Complexity:
//   - Time O(len(rows)*len(cols)), Space the same.
func (m *Dense) Induced(rowsIdx, colsIdx []int) (*Dense, error) {
	if len(rowsIdx) == 0 || len(colsIdx) == 0 {
		return nil, fmt.Errorf("Dense.%s: %w", ctxInduce, ErrInvalidDimensions)
	}
	var i, j int
	for i = range rowsIdx {
		if rowsIdx[i] < 0 || rowsIdx[i] >= m.r {
			return nil, denseErrorf(ctxInduce, rowsIdx[i], 0, ErrOutOfRange)
		}
	}
	for j = range colsIdx {
		if colsIdx[j] < 0 || colsIdx[j] >= m.c {
			return nil, denseErrorf(ctxInduce, 0, colsIdx[j], ErrOutOfRange)
		}
	}

	out, _ := NewDense(len(rowsIdx), len(colsIdx))
	out.allowInf = m.allowInf
	var src, dst int
	for i = range rowsIdx {
		src = rowsIdx[i] * m.c
		dst = i * out.c
		for j = range colsIdx {
			out.data[dst+j] = m.data[src+colsIdx[j]]
		}
	}

	return out, nil
}
