// SPDX-License-Identifier: MIT

package linear_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlot/geometry"
	"github.com/katalvlaran/lvlot/matrix"
)

// twoBlobs returns two 1-D point clouds of size n and m, shifted by gap.
func twoBlobs(t testing.TB, n, m int, gap float64) (*matrix.Dense, *matrix.Dense) {
	t.Helper()
	x, err := matrix.NewDense(n, 2)
	require.NoError(t, err)
	y, err := matrix.NewDense(m, 2)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		row := x.RawRow(i)
		row[0] = float64(i) / float64(n)
		row[1] = 0.1 * float64(i%3)
	}
	for j := 0; j < m; j++ {
		row := y.RawRow(j)
		row[0] = gap + float64(j)/float64(m)
		row[1] = 0.1 * float64(j%2)
	}

	return x, y
}

func pointCloud(t testing.TB, n, m int) *geometry.PointCloud {
	t.Helper()
	x, y := twoBlobs(t, n, m, 0.5)
	pc, err := geometry.NewPointCloud(x, y, nil)
	require.NoError(t, err)

	return pc
}

func uniform(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1 / float64(n)
	}

	return out
}

func sum(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v
	}

	return s
}

func assertClose(t *testing.T, want, got []float64, tol float64, msg string) {
	t.Helper()
	require.Len(t, got, len(want), msg)
	for i := range want {
		require.InDelta(t, want[i], got[i], tol, "%s[%d]", msg, i)
	}
}
