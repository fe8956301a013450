// SPDX-License-Identifier: MIT

// Package matrix offers the dense linear-algebra primitives used by lvlot.
//
// The matrix package provides:
//
//   - Dense: a row-major float64 matrix with bounds-checked At/Set, a flat
//     backing buffer for fast paths and zero-copy bridging to gonum (Gonum).
//   - Labeled: a Dense whose rows and columns carry string labels, with strict
//     label lookup and reindexing (Reindex, Select).
//   - Kernels: Mul (gonum BLAS), Transpose, Scale, Add/Sub, Hadamard, MatVec,
//     RowSums/ColSums, AllClose, Frobenius.
//   - FloydWarshall: in-place all-pairs shortest paths, used to turn kNN graphs
//     into geodesic cost matrices.
//
// Every public operation returns sentinel errors from errors.go wrapped with
// an operation tag; nothing in this package panics on user input.
package matrix
