// SPDX-License-Identifier: MIT

package linear

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/lvlot/matrix"
)

// kmeans returns k centroids of the rows of x: k-means++ seeding then Lloyd
// iterations until the largest squared centroid move falls below tol.
// Empty clusters keep their previous centroid.
func kmeans(x *matrix.Dense, k int, src *rand.Rand, maxIter int, tol float64) *matrix.Dense {
	n, d := x.Shape()
	z, _ := matrix.NewDense(k, d)

	// k-means++ seeding.
	copy(z.RawRow(0), x.RawRow(src.Intn(n)))
	dist := make([]float64, n)
	for i := range dist {
		dist[i] = sqDist(x.RawRow(i), z.RawRow(0))
	}
	for c := 1; c < k; c++ {
		pick := src.Intn(n)
		if total := floats.Sum(dist); total > 0 {
			u := src.Float64() * total
			for i, w := range dist {
				u -= w
				if u <= 0 {
					pick = i
					break
				}
			}
		}
		copy(z.RawRow(c), x.RawRow(pick))
		for i := range dist {
			dist[i] = math.Min(dist[i], sqDist(x.RawRow(i), z.RawRow(c)))
		}
	}

	// Lloyd iterations.
	assign := make([]int, n)
	counts := make([]int, k)
	sums, _ := matrix.NewDense(k, d)
	for it := 0; it < maxIter; it++ {
		for i := 0; i < n; i++ {
			best, bestD := 0, math.Inf(1)
			for c := 0; c < k; c++ {
				if dd := sqDist(x.RawRow(i), z.RawRow(c)); dd < bestD {
					best, bestD = c, dd
				}
			}
			assign[i] = best
		}
		_ = sums.Fill(0)
		for c := range counts {
			counts[c] = 0
		}
		for i := 0; i < n; i++ {
			floats.Add(sums.RawRow(assign[i]), x.RawRow(i))
			counts[assign[i]]++
		}
		shift := 0.0
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			row := sums.RawRow(c)
			floats.Scale(1/float64(counts[c]), row)
			shift = math.Max(shift, sqDist(row, z.RawRow(c)))
			copy(z.RawRow(c), row)
		}
		if shift < tol {
			break
		}
	}

	return z
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)

	return d * d
}
