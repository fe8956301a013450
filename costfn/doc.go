// SPDX-License-Identifier: MIT

// Package costfn computes ground costs between two point clouds.
//
// A point cloud is a *matrix.Dense whose rows are observations and whose
// columns are features. Every Func maps (X n×d, Y m×d) to an n×m cost matrix.
//
// Available costs (see Parse for names):
//
//	sq_euclidean  |x - y|²                      (factorizable, see Factors)
//	euclidean     |x - y|
//	cosine        1 - <x, y> / (|x| |y|)
//	geodesic      shortest path on the kNN graph of X ∪ Y
//
// The squared Euclidean cost admits an exact rank-(d+2) factorization
// C = A·Bᵀ, which low-rank solvers use to avoid materializing C.
package costfn
