// SPDX-License-Identifier: MIT

package geometry_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlot/cost"
	"github.com/katalvlaran/lvlot/costfn"
	"github.com/katalvlaran/lvlot/geometry"
	"github.com/katalvlaran/lvlot/matrix"
	"github.com/katalvlaran/lvlot/oterr"
)

func rows(t *testing.T, r [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.FromRows(r)
	require.NoError(t, err)

	return m
}

func closeTo(t *testing.T, want, got *matrix.Dense) {
	t.Helper()
	ok, err := matrix.AllClose(got, want, 1e-10, 1e-10)
	require.NoError(t, err)
	assert.True(t, ok, "want\n%vgot\n%v", want, got)
}

func clouds(t *testing.T) (*matrix.Dense, *matrix.Dense) {
	x := rows(t, [][]float64{{0, 0}, {1, 2}, {-1, 0.5}})
	y := rows(t, [][]float64{{1, 1}, {3, -1}, {0, 2}, {2, 2}})

	return x, y
}

// Every geometry must agree with its materialized cost on all products.
func TestGeometries_AgreeWithCost(t *testing.T) {
	t.Parallel()

	x, y := clouds(t)
	pc, err := geometry.NewPointCloud(x, y, nil)
	require.NoError(t, err)
	c, err := pc.Cost()
	require.NoError(t, err)
	dense, err := geometry.NewDense(c.Copy())
	require.NoError(t, err)
	fact, err := pc.Factored()
	require.NoError(t, err)

	v := rows(t, [][]float64{{1, 0}, {0, 1}, {2, 1}, {-1, 3}})
	u := rows(t, [][]float64{{1}, {2}, {3}})
	vec := []float64{0.1, 0.2, 0.3, 0.4}

	wantCV, _ := matrix.Mul(c, v)
	wantCTU, _ := matrix.MulTransA(c, u)
	sq, _ := matrix.Hadamard(c, c)
	wantSq, _ := matrix.MatVec(sq, vec)

	for name, g := range map[string]geometry.Geometry{"dense": dense, "pointcloud": pc, "factored": fact} {
		n, m := g.Shape()
		assert.Equal(t, 3, n, name)
		assert.Equal(t, 4, m, name)

		cv, err := g.Apply(v)
		require.NoError(t, err, name)
		closeTo(t, wantCV, cv)

		ctu, err := g.ApplyT(u)
		require.NoError(t, err, name)
		closeTo(t, wantCTU, ctu)

		got, err := g.ApplySquaredVec(vec)
		require.NoError(t, err, name)
		for i := range wantSq {
			assert.InDelta(t, wantSq[i], got[i], 1e-9, name)
		}

		gc, err := g.Cost()
		require.NoError(t, err)
		closeTo(t, c, gc)
	}
}

func TestFactored_SumAndScale(t *testing.T) {
	t.Parallel()

	x, y := clouds(t)
	a, b, err := costfn.SqEuclidean{}.Factors(x, y)
	require.NoError(t, err)
	sum, err := geometry.Sum(geometry.Term{Weight: 2, A: a, B: b}, geometry.Term{Weight: -1, A: a, B: b})
	require.NoError(t, err)
	assert.Equal(t, 2*a.Cols(), sum.Rank())

	single, _ := geometry.NewFactored(a, b)
	want, _ := single.Cost()
	got, _ := sum.Cost()
	closeTo(t, want, got)

	scaled, _ := single.Scaled(0.5).Cost()
	closeTo(t, matrix.Scale(want, 0.5), scaled)

	_, err = geometry.Sum()
	assert.ErrorIs(t, err, oterr.ErrShape)
	_, err = geometry.NewFactored(a, matrix.Transpose(b))
	assert.ErrorIs(t, err, oterr.ErrShape)
}

func TestPointCloud_NotFactorizable(t *testing.T) {
	t.Parallel()

	x, y := clouds(t)
	pc, err := geometry.NewPointCloud(x, y, costfn.Euclidean{})
	require.NoError(t, err)
	assert.False(t, pc.CanFactor())
	_, err = pc.Factored()
	assert.ErrorIs(t, err, oterr.ErrConfiguration)
	_, err = geometry.NewPointCloud(x, rows(t, [][]float64{{1}}), nil)
	assert.ErrorIs(t, err, oterr.ErrShape)
}

func TestFromKernel(t *testing.T) {
	t.Parallel()

	k := rows(t, [][]float64{{1, math.Exp(-2)}})
	c, err := geometry.FromKernel(k, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, c.RawData()[0], 1e-15)
	assert.InDelta(t, 1.0, c.RawData()[1], 1e-12)

	_, err = geometry.FromKernel(k, 0)
	assert.ErrorIs(t, err, oterr.ErrConfiguration)
	_, err = geometry.FromKernel(rows(t, [][]float64{{0, 1}}), 1)
	assert.ErrorIs(t, err, oterr.ErrConfiguration)
}

func TestFromResolved(t *testing.T) {
	t.Parallel()

	m := rows(t, [][]float64{{1, 2}})
	g, err := geometry.FromResolved(&cost.Resolved{Matrix: m, Tag: cost.TagCost}, 0)
	require.NoError(t, err)
	assert.IsType(t, &geometry.Dense{}, g)

	_, err = geometry.FromResolved(&cost.Resolved{Matrix: m, Tag: cost.TagKernel}, 0)
	assert.ErrorIs(t, err, oterr.ErrConfiguration)

	x, y := clouds(t)
	g, err = geometry.FromResolved(&cost.Resolved{X: x, Y: y, CostFn: costfn.SqEuclidean{}}, 0)
	require.NoError(t, err)
	assert.IsType(t, &geometry.PointCloud{}, g)
}

func TestRescale(t *testing.T) {
	t.Parallel()

	c := rows(t, [][]float64{{1, 2, 3}, {4, 5, 100}})
	g, _ := geometry.NewDense(c)

	for s, stat := range map[geometry.Scaling]float64{
		geometry.ScaleMean:   115.0 / 6,
		geometry.ScaleMedian: 3.5,
		geometry.ScaleMax:    100,
	} {
		scaled, factor, err := geometry.Rescale(g, s)
		require.NoError(t, err, s)
		assert.InDelta(t, 1/stat, factor, 1e-12, s)
		sc, _ := scaled.Cost()
		assert.InDelta(t, 100/stat, matrix.Max(sc), 1e-9, s)
	}

	same, factor, err := geometry.Rescale(g, geometry.ScaleNone)
	require.NoError(t, err)
	assert.Equal(t, 1.0, factor)
	assert.Same(t, g, same)

	// The factored mean path must agree with the materialized mean.
	x, y := clouds(t)
	pc, _ := geometry.NewPointCloud(x, y, nil)
	fact, _ := pc.Factored()
	_, fMean, err := geometry.Rescale(fact, geometry.ScaleMean)
	require.NoError(t, err)
	_, pMean, err := geometry.Rescale(pc, geometry.ScaleMean)
	require.NoError(t, err)
	assert.InDelta(t, pMean, fMean, 1e-12)

	_, err = geometry.ParseScaling("p99")
	assert.ErrorIs(t, err, oterr.ErrConfiguration)
	s, err := geometry.ParseScaling("")
	require.NoError(t, err)
	assert.Equal(t, geometry.ScaleNone, s)
}
