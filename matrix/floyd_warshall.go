// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Canonical dense APSP (Floyd–Warshall) with deterministic loop order.
//   - Used to turn a weighted kNN graph over a point cloud into geodesic costs.
//
// Contract:
//   - Square matrix; +Inf means "no path"; diagonal must be 0 before calling.

package matrix

import (
	"math"
)

const opFloydWarshall = "FloydWarshall"

// floydWarshallInPlace runs APSP closure on a square *Dense in-place.
// Loop order is fixed (k → i → j) for deterministic accumulation.
// Time: O(n^3); Extra space: O(1).
func floydWarshallInPlace(d *Dense) {
	n := d.r
	var (
		k, i, j      int
		baseK, baseI int
		ik, kj, cand float64
	)
	data := d.data

	for k = 0; k < n; k++ {
		baseK = k * n
		for i = 0; i < n; i++ {
			ik = data[i*n+k]
			if math.IsInf(ik, 1) {
				continue // i cannot reach k
			}
			baseI = i * n
			for j = 0; j < n; j++ {
				kj = data[baseK+j]
				if math.IsInf(kj, 1) {
					continue
				}
				cand = ik + kj
				if cand < data[baseI+j] { // strict improvement only
					data[baseI+j] = cand
				}
			}
		}
	}
}

// FloydWarshall computes all-pairs shortest paths in-place on m.
//
// Contract:
//   - m must be square (n×n).
//   - +Inf denotes "no edge" off-diagonal; the diagonal MUST be 0.
//
// Errors: ErrNilMatrix, ErrNonSquare, ErrNaNInf (NaN cells).
//
// Complexity: Time O(n^3), Extra space O(1).
func FloydWarshall(m *Dense) error {
	if err := ValidateSquare(m); err != nil {
		return matrixErrorf(opFloydWarshall, err)
	}
	if err := ValidateNoNaN(m); err != nil {
		return matrixErrorf(opFloydWarshall, err)
	}
	floydWarshallInPlace(m)

	return nil
}
