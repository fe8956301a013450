// SPDX-License-Identifier: MIT

package linear_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlot/geometry"
	"github.com/katalvlaran/lvlot/linear"
	"github.com/katalvlaran/lvlot/matrix"
	"github.com/katalvlaran/lvlot/oterr"
)

func checkFeasible(t *testing.T, f linear.Factors_TestOnly, a, b []float64, tol float64) {
	t.Helper()
	assertClose(t, a, matrix.RowSums(f.Q), tol, "Q·1")
	assertClose(t, b, matrix.RowSums(f.R), tol, "R·1")
	assertClose(t, f.G, matrix.ColSums(f.Q), tol, "Qᵀ·1")
	assertClose(t, f.G, matrix.ColSums(f.R), tol, "Rᵀ·1")
	for _, v := range f.Q.RawData() {
		require.GreaterOrEqual(t, v, 0.0)
	}
	for _, v := range f.R.RawData() {
		require.GreaterOrEqual(t, v, 0.0)
	}
}

func TestRank2Init_Feasible(t *testing.T) {
	t.Parallel()

	a := []float64{0.1, 0.2, 0.3, 0.4}
	b := []float64{0.5, 0.25, 0.25}
	f := linear.Rank2Init_TestOnly(a, b, 3)
	checkFeasible(t, f, a, b, 1e-12)
	assertClose(t, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, f.G, 1e-12, "g")
}

func TestRandomInit_RowsAndSeed(t *testing.T) {
	t.Parallel()

	a, b := uniform(7), uniform(5)
	f := linear.RandomInit_TestOnly(a, b, 2, 3)
	assertClose(t, a, matrix.RowSums(f.Q), 1e-12, "Q·1")
	assertClose(t, b, matrix.RowSums(f.R), 1e-12, "R·1")
	assertClose(t, []float64{0.5, 0.5}, f.G, 1e-12, "g")

	again := linear.RandomInit_TestOnly(a, b, 2, 3)
	assert.Equal(t, f.Q.RawData(), again.Q.RawData())
	other := linear.RandomInit_TestOnly(a, b, 2, 4)
	assert.NotEqual(t, f.Q.RawData(), other.Q.RawData())
}

func TestKMeans_FindsBothBlobs(t *testing.T) {
	t.Parallel()

	x, _ := matrix.FromRows([][]float64{{0, 0}, {0, 1}, {1, 0}, {10, 10}, {10, 11}, {11, 10}})
	z := linear.KMeans_TestOnly(x, 2, 1)
	require.Equal(t, 2, z.Rows())

	near := func(px, py float64) bool {
		for c := 0; c < 2; c++ {
			row := z.RawRow(c)
			if (row[0]-px)*(row[0]-px)+(row[1]-py)*(row[1]-py) < 1e-9 {
				return true
			}
		}
		return false
	}
	assert.True(t, near(1.0/3, 1.0/3))
	assert.True(t, near(31.0/3, 31.0/3))
}

func TestKMeansInits_Feasible(t *testing.T) {
	t.Parallel()

	pc := pointCloud(t, 12, 9)
	a, b := uniform(12), uniform(9)

	f, err := linear.KMeansInit_TestOnly(pc, a, b, 3)
	require.NoError(t, err)
	checkFeasible(t, f, a, b, 1e-3)

	f, err = linear.GeneralizedKMeansInit_TestOnly(pc, a, b, 3)
	require.NoError(t, err)
	checkFeasible(t, f, a, b, 1e-3)
}

func planFactors(p *linear.Plan) linear.Factors_TestOnly {
	q, r, g := p.Factors()
	return linear.Factors_TestOnly{Q: q, R: r, G: g}
}

func TestInitialPlan_FollowsInitializer(t *testing.T) {
	t.Parallel()

	pc := pointCloud(t, 12, 9)
	a, b := uniform(12), uniform(9)
	o := lowRankOptions(3)

	rank2, err := linear.InitialPlan(pc, a, b, o)
	require.NoError(t, err)
	checkFeasible(t, planFactors(rank2), a, b, 1e-12)

	o.Initializer = linear.InitRandom
	o.InitOptions.Seed = 1
	first, err := linear.InitialPlan(pc, a, b, o)
	require.NoError(t, err)
	checkFeasible(t, planFactors(first), a, b, 1e-9)
	assert.NotEqual(t, rank2.Dense().RawData(), first.Dense().RawData())

	o.InitOptions.Seed = 2
	second, err := linear.InitialPlan(pc, a, b, o)
	require.NoError(t, err)
	assert.NotEqual(t, first.Dense().RawData(), second.Dense().RawData())

	for _, init := range []linear.Initializer{linear.InitKMeans, linear.InitGeneralizedKMeans} {
		o.Initializer = init
		p, err := linear.InitialPlan(pc, a, b, o)
		require.NoError(t, err, init)
		checkFeasible(t, planFactors(p), a, b, 1e-3)
	}

	_, err = linear.InitialPlan(pc, a, b, fullRankOptions())
	assert.ErrorIs(t, err, oterr.ErrConfiguration)
}

func TestInitialStructuralPlan(t *testing.T) {
	t.Parallel()

	x, y := twoBlobs(t, 10, 8, 0.5)
	xx, err := geometry.NewPointCloud(x, x, nil)
	require.NoError(t, err)
	yy, err := geometry.NewPointCloud(y, y, nil)
	require.NoError(t, err)
	a, b := uniform(10), uniform(8)

	o := lowRankOptions(2)
	for _, init := range []linear.Initializer{
		linear.InitDefault, linear.InitRank2, linear.InitRandom, linear.InitKMeans, linear.InitGeneralizedKMeans,
	} {
		o.Initializer = init
		p, err := linear.InitialStructuralPlan(xx, yy, a, b, o)
		require.NoError(t, err, init)
		assert.Equal(t, 2, p.Rank())
		checkFeasible(t, planFactors(p), a, b, 1e-3)
	}

	o.Initializer = linear.InitRandom
	o.InitOptions.Seed = 1
	first, err := linear.InitialStructuralPlan(xx, yy, a, b, o)
	require.NoError(t, err)
	again, err := linear.InitialStructuralPlan(xx, yy, a, b, o)
	require.NoError(t, err)
	assert.Equal(t, first.Dense().RawData(), again.Dense().RawData())
	o.InitOptions.Seed = 2
	second, err := linear.InitialStructuralPlan(xx, yy, a, b, o)
	require.NoError(t, err)
	assert.NotEqual(t, first.Dense().RawData(), second.Dense().RawData())

	cx, err := xx.Cost()
	require.NoError(t, err)
	dense, err := geometry.NewDense(cx.Copy())
	require.NoError(t, err)
	o.Initializer = linear.InitKMeans
	_, err = linear.InitialStructuralPlan(dense, yy, a, b, o)
	assert.ErrorIs(t, err, oterr.ErrConfiguration, "k-means over a dense structure")

	o.Initializer = linear.InitGeneralizedKMeans
	p, err := linear.InitialStructuralPlan(dense, yy, a, b, o)
	require.NoError(t, err, "generalized k-means works on any structure")
	checkFeasible(t, planFactors(p), a, b, 1e-3)

	_, err = linear.InitialStructuralPlan(xx, yy, uniform(9), b, o)
	assert.ErrorIs(t, err, oterr.ErrShape)

	_, err = linear.InitialStructuralPlan(xx, yy, a, b, lowRankOptions(9))
	assert.ErrorIs(t, err, oterr.ErrConfiguration)
}

func TestParseInitializer(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]linear.Initializer{
		"":                    linear.InitDefault,
		"default":             linear.InitDefault,
		"rank2":               linear.InitRank2,
		"random":              linear.InitRandom,
		"k-means":             linear.InitKMeans,
		"generalized-k-means": linear.InitGeneralizedKMeans,
	} {
		got, err := linear.ParseInitializer(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := linear.ParseInitializer("kmeans")
	assert.Error(t, err)
}
