// SPDX-License-Identifier: MIT

package costfn

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/lvlot/matrix"
	"github.com/katalvlaran/lvlot/oterr"
)

// Geodesic is the shortest-path length on the symmetrized k-nearest-neighbor
// graph of X ∪ Y with Euclidean edge weights.
//
// Pairs that stay disconnected get twice the largest finite geodesic, so the
// returned matrix is always finite.
type Geodesic struct {
	Neighbors int
}

// Name implements Func.
func (Geodesic) Name() string { return NameGeodesic }

// Pairwise implements Func.
// Complexity: O((n+m)³) from Floyd–Warshall.
func (g Geodesic) Pairwise(x, y *matrix.Dense) (*matrix.Dense, error) {
	const op = "Geodesic.Pairwise"
	if err := checkClouds(op, x, y); err != nil {
		return nil, err
	}
	if g.Neighbors <= 0 {
		return nil, oterr.Errorf(op, oterr.ErrConfiguration, "neighbors=%d", g.Neighbors)
	}
	n, m := x.Rows(), y.Rows()
	total := n + m
	point := func(i int) []float64 {
		if i < n {
			return x.RawRow(i)
		}
		return y.RawRow(i - n)
	}

	dist, _ := matrix.NewDense(total, total)
	dist.AllowInf()
	data := dist.RawData()
	var i, j int
	for i = 0; i < total; i++ {
		for j = 0; j < total; j++ {
			if i != j {
				data[i*total+j] = math.Inf(1)
			}
		}
	}

	k := g.Neighbors
	if k > total-1 {
		k = total - 1
	}
	order := make([]int, 0, total-1)
	raw := make([]float64, total)
	for i = 0; i < total; i++ {
		order = order[:0]
		for j = 0; j < total; j++ {
			if j != i {
				raw[j] = floats.Distance(point(i), point(j), 2)
				order = append(order, j)
			}
		}
		sort.SliceStable(order, func(a, b int) bool { return raw[order[a]] < raw[order[b]] })
		for _, nb := range order[:k] {
			data[i*total+nb] = raw[nb]
			data[nb*total+i] = raw[nb]
		}
	}

	if err := matrix.FloydWarshall(dist); err != nil {
		return nil, oterr.Wrap(op, err)
	}

	rows := make([]int, n)
	for i = range rows {
		rows[i] = i
	}
	cols := make([]int, m)
	for j = range cols {
		cols[j] = n + j
	}
	out, err := dist.Induced(rows, cols)
	if err != nil {
		return nil, oterr.Wrap(op, err)
	}
	fillDisconnected(out, dist)

	return out, nil
}

// fillDisconnected replaces +Inf cells of m by twice the largest finite value of all.
func fillDisconnected(m, all *matrix.Dense) {
	maxFinite := 0.0
	for _, v := range all.RawData() {
		if !math.IsInf(v, 0) && v > maxFinite {
			maxFinite = v
		}
	}
	data := m.RawData()
	penalty := 2 * maxFinite
	if penalty == 0 {
		penalty = 1
	}
	for k, v := range data {
		if math.IsInf(v, 1) {
			data[k] = penalty
		}
	}
}
