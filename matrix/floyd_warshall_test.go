// SPDX-License-Identifier: MIT

package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlot/matrix"
)

// fillInfOffDiagZeroDiag initializes a distance-matrix fixture:
// diagonal = 0, off-diagonal = +Inf.
func fillInfOffDiagZeroDiag(t *testing.T, d *matrix.Dense) {
	t.Helper()

	n := d.Rows()
	data := d.RawData()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				data[i*n+j] = math.Inf(1)
			}
		}
	}
}

func TestFloydWarshall_Errors(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, matrix.FloydWarshall(nil), matrix.ErrNilMatrix)
	ns, _ := matrix.NewDense(3, 4)
	assert.ErrorIs(t, matrix.FloydWarshall(ns), matrix.ErrNonSquare)
}

// Classic CLRS example (5×5, directed, negative edges, no negative cycles).
func TestFloydWarshall_CLRS_5x5(t *testing.T) {
	t.Parallel()

	const n = 5
	A, _ := matrix.NewDense(n, n)
	A.AllowInf()
	fillInfOffDiagZeroDiag(t, A)

	edges := []struct {
		u, v int
		w    float64
	}{
		{0, 1, 3}, {0, 2, 8}, {0, 4, -4},
		{1, 3, 1}, {1, 4, 7},
		{2, 1, 4},
		{3, 0, 2}, {3, 2, -5},
		{4, 3, 6},
	}
	for _, e := range edges {
		require.NoError(t, A.Set(e.u, e.v, e.w))
	}
	require.NoError(t, matrix.FloydWarshall(A))

	want := []float64{
		0, 1, -3, 2, -4,
		3, 0, -4, 1, -1,
		7, 4, 0, 5, 3,
		2, -1, -5, 0, -2,
		8, 5, 1, 6, 0,
	}
	assert.Equal(t, want, A.RawData())
}

func TestFloydWarshall_Disconnected(t *testing.T) {
	t.Parallel()

	A, _ := matrix.NewDense(3, 3)
	A.AllowInf()
	fillInfOffDiagZeroDiag(t, A)
	require.NoError(t, A.Set(0, 1, 2))
	require.NoError(t, A.Set(1, 0, 2))
	require.NoError(t, matrix.FloydWarshall(A))

	v, _ := A.At(0, 2)
	assert.True(t, math.IsInf(v, 1))
	v, _ = A.At(1, 0)
	assert.Equal(t, 2.0, v)
}
