// SPDX-License-Identifier: MIT

package quadratic_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlot/convergence"
	"github.com/katalvlaran/lvlot/costfn"
	"github.com/katalvlaran/lvlot/geometry"
	"github.com/katalvlaran/lvlot/linear"
	"github.com/katalvlaran/lvlot/matrix"
	"github.com/katalvlaran/lvlot/oterr"
	"github.com/katalvlaran/lvlot/quadratic"
)

// cloud returns n deterministic points in dim dimensions inside [0, 1)^dim.
func cloud(t testing.TB, n, dim int, phase float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDense(n, dim)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		row := m.RawRow(i)
		for d := range row {
			row[d] = math.Mod(phase+float64(i*(d+1))*0.37+0.11*float64(d), 1)
		}
	}

	return m
}

func self(t testing.TB, x *matrix.Dense, fn costfn.Func) *geometry.PointCloud {
	t.Helper()
	g, err := geometry.NewPointCloud(x, x, fn)
	require.NoError(t, err)

	return g
}

func uniform(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1 / float64(n)
	}

	return out
}

func generous() quadratic.Options {
	o := quadratic.DefaultOptions()
	o.Bounds = convergence.Bounds{MaxIterations: 200, InnerIterations: 1, Threshold: 1e-3}
	o.Linear.Epsilon = 2
	o.Linear.Bounds = convergence.Bounds{MaxIterations: 5000, InnerIterations: 10, Threshold: 1e-9}

	return o
}

// objective evaluates Σ (Cx_ik − Cy_jl)²·P_ij·P_kl·α + (1−α)·⟨Cxy, P⟩ by brute force.
func objective(t *testing.T, cx, cy, cxy, p *matrix.Dense, alpha float64) float64 {
	t.Helper()
	n, m := p.Shape()
	var gw float64
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			pij := p.RawRow(i)[j]
			for k := 0; k < n; k++ {
				for l := 0; l < m; l++ {
					d := cx.RawRow(i)[k] - cy.RawRow(j)[l]
					gw += d * d * pij * p.RawRow(k)[l]
				}
			}
		}
	}
	out := alpha * gw
	if cxy != nil {
		lin, err := matrix.Dot(cxy, p)
		require.NoError(t, err)
		out += (1 - alpha) * lin
	}

	return out
}

func TestSolve_GromovWassersteinConverges(t *testing.T) {
	t.Parallel()

	x, y := cloud(t, 10, 2, 0), cloud(t, 8, 3, 0.3)
	xx, yy := self(t, x, nil), self(t, y, nil)
	a, b := uniform(10), uniform(8)

	res, err := quadratic.Solve(context.Background(), xx, yy, nil, a, b, generous())
	require.NoError(t, err)
	assert.True(t, res.Record.Converged)
	assert.Less(t, res.Record.Residual, 1e-3)
	assert.GreaterOrEqual(t, res.Record.InnerIterations, res.Record.OuterIterations)
	assert.True(t, res.Linear.Converged)

	row, col := res.Plan.Marginals()
	for i := range a {
		assert.InDelta(t, a[i], row[i], 1e-6)
	}
	for j := range b {
		assert.InDelta(t, b[j], col[j], 1e-6)
	}

	cx, _ := xx.Cost()
	cy, _ := yy.Cost()
	assert.InDelta(t, objective(t, cx, cy, nil, res.Plan.Dense(), 1), res.Cost, 1e-9)
}

func TestSolve_MaxIterationsOne(t *testing.T) {
	t.Parallel()

	x := cloud(t, 10, 2, 0)
	o := generous()
	o.Bounds.MaxIterations = 1
	o.Bounds.Threshold = 1e-12
	res, err := quadratic.Solve(context.Background(), self(t, x, nil), self(t, x, nil), nil, uniform(10), uniform(10), o)
	require.NoError(t, err)
	assert.False(t, res.Record.Converged)
	assert.Equal(t, 1, res.Record.OuterIterations)
	assert.Equal(t, res.Linear.OuterIterations, res.Record.InnerIterations)
}

func TestSolve_AlphaOneIgnoresLinearCost(t *testing.T) {
	t.Parallel()

	x, y := cloud(t, 7, 2, 0), cloud(t, 6, 2, 0.5)
	xx, yy := self(t, x, nil), self(t, y, nil)
	fused, err := geometry.NewPointCloud(x, y, costfn.Euclidean{})
	require.NoError(t, err)

	o := generous()
	o.Bounds.MaxIterations = 5
	without, err := quadratic.Solve(context.Background(), xx, yy, nil, uniform(7), uniform(6), o)
	require.NoError(t, err)
	with, err := quadratic.Solve(context.Background(), xx, yy, fused, uniform(7), uniform(6), o)
	require.NoError(t, err)

	assert.Equal(t, without.Plan.Dense().RawData(), with.Plan.Dense().RawData())
	assert.Equal(t, without.Record, with.Record)
}

func TestSolve_Fused(t *testing.T) {
	t.Parallel()

	x, y := cloud(t, 6, 2, 0), cloud(t, 5, 2, 0.2)
	xx, yy := self(t, x, nil), self(t, y, nil)
	xy, err := geometry.NewPointCloud(x, y, nil)
	require.NoError(t, err)

	o := generous()
	o.Alpha = 0.4
	o.Bounds.MaxIterations = 10
	res, err := quadratic.Solve(context.Background(), xx, yy, xy, uniform(6), uniform(5), o)
	require.NoError(t, err)

	cx, _ := xx.Cost()
	cy, _ := yy.Cost()
	cxy, _ := xy.Cost()
	assert.InDelta(t, objective(t, cx, cy, cxy, res.Plan.Dense(), 0.4), res.Cost, 1e-9)
}

func TestSolve_Unbalanced(t *testing.T) {
	t.Parallel()

	x := cloud(t, 6, 2, 0)
	o := generous()
	o.Bounds.MaxIterations = 5
	o.Linear.TauA, o.Linear.TauB = 0.8, 0.8
	res, err := quadratic.Solve(context.Background(), self(t, x, nil), self(t, x, nil), nil, uniform(6), uniform(6), o)
	require.NoError(t, err)
	assert.Greater(t, res.Plan.Mass(), 0.0)
}

func TestSolve_LowRank(t *testing.T) {
	t.Parallel()

	x, y := cloud(t, 12, 2, 0), cloud(t, 10, 2, 0.6)
	xx, yy := self(t, x, nil), self(t, y, nil)
	xy, err := geometry.NewPointCloud(x, y, costfn.Euclidean{})
	require.NoError(t, err)
	a, b := uniform(12), uniform(10)

	o := quadratic.DefaultOptions()
	o.Alpha = 0.7
	o.Bounds = convergence.Bounds{MaxIterations: 5, InnerIterations: 1, Threshold: 1e-3}
	o.Linear.Rank = 3
	o.Linear.Epsilon = 0
	o.Linear.Initializer = linear.InitKMeans
	o.Linear.Bounds = convergence.Bounds{MaxIterations: 50, InnerIterations: 5, Threshold: 1e-4}

	res, err := quadratic.Solve(context.Background(), xx, yy, xy, a, b, o)
	require.NoError(t, err)
	require.True(t, res.Plan.IsLowRank())
	assert.Equal(t, 3, res.Plan.Rank())
	assert.Greater(t, res.Record.InnerIterations, 0)

	row, col := res.Plan.Marginals()
	for i := range a {
		assert.InDelta(t, a[i], row[i], 1e-3)
	}
	for j := range b {
		assert.InDelta(t, b[j], col[j], 1e-3)
	}

	cx, _ := xx.Cost()
	cy, _ := yy.Cost()
	cxy, _ := xy.Cost()
	want := objective(t, cx, cy, cxy, res.Plan.Dense(), 0.7)
	assert.InDelta(t, want, res.Cost, 1e-9*math.Max(1, math.Abs(want)))
}

func TestSolve_LowRankInitializerDrivesStart(t *testing.T) {
	t.Parallel()

	x, y := cloud(t, 10, 2, 0), cloud(t, 8, 3, 0.3)
	xx, yy := self(t, x, nil), self(t, y, nil)
	a, b := uniform(10), uniform(8)

	solve := func(init linear.Initializer, seed int64) *quadratic.Result {
		t.Helper()
		o := quadratic.DefaultOptions()
		o.Bounds = convergence.Bounds{MaxIterations: 1, InnerIterations: 1, Threshold: 1e-3}
		o.Linear.Rank = 2
		o.Linear.Epsilon = 0
		o.Linear.Initializer = init
		o.Linear.InitOptions.Seed = seed
		o.Linear.Bounds = convergence.Bounds{MaxIterations: 5, InnerIterations: 5, Threshold: 1e-4}
		res, err := quadratic.Solve(context.Background(), xx, yy, nil, a, b, o)
		require.NoError(t, err, "%s seed=%d", init, seed)
		return res
	}

	first, again := solve(linear.InitRandom, 1), solve(linear.InitRandom, 1)
	assert.Equal(t, first.Plan.Dense().RawData(), again.Plan.Dense().RawData())
	second := solve(linear.InitRandom, 2)
	assert.NotEqual(t, first.Plan.Dense().RawData(), second.Plan.Dense().RawData())
	rank2 := solve(linear.InitRank2, 1)
	assert.NotEqual(t, first.Plan.Dense().RawData(), rank2.Plan.Dense().RawData())

	// Structures living in different spaces still get clustered on their own.
	for _, init := range []linear.Initializer{linear.InitKMeans, linear.InitGeneralizedKMeans} {
		res := solve(init, 1)
		row, col := res.Plan.Marginals()
		for i := range a {
			assert.InDelta(t, a[i], row[i], 1e-2, init)
		}
		for j := range b {
			assert.InDelta(t, b[j], col[j], 1e-2, init)
		}
	}
}

func TestSolve_ConfigurationErrors(t *testing.T) {
	t.Parallel()

	x, y := cloud(t, 6, 2, 0), cloud(t, 5, 2, 0.1)
	xx, yy := self(t, x, nil), self(t, y, nil)
	xy, _ := geometry.NewPointCloud(x, y, nil)
	a, b := uniform(6), uniform(5)
	ctx := context.Background()

	for _, alpha := range []float64{0, -0.5, 1.5, math.NaN()} {
		o := generous()
		o.Alpha = alpha
		// α is checked before the structures are looked at.
		_, err := quadratic.Solve(ctx, nil, nil, nil, a, b, o)
		assert.ErrorIs(t, err, oterr.ErrConfiguration, "alpha=%g", alpha)
	}

	o := generous()
	o.Alpha = 0.5
	_, err := quadratic.Solve(ctx, xx, yy, nil, a, b, o)
	assert.ErrorIs(t, err, oterr.ErrConfiguration, "fused without linear cost")

	_, err = quadratic.Solve(ctx, xx, yy, self(t, x, nil), a, b, o)
	assert.ErrorIs(t, err, oterr.ErrShape, "linear cost shape")

	_, err = quadratic.Solve(ctx, xy, yy, nil, a, b, generous())
	assert.ErrorIs(t, err, oterr.ErrShape, "non-square structure")

	_, err = quadratic.Solve(ctx, xx, yy, nil, uniform(5), b, generous())
	assert.ErrorIs(t, err, oterr.ErrShape)

	o = generous()
	o.Linear.Rank = 2
	o.Linear.TauA = 0.5
	_, err = quadratic.Solve(ctx, xx, yy, nil, a, b, o)
	assert.ErrorIs(t, err, oterr.ErrConfiguration, "low rank relaxed")

	o = generous()
	o.Linear.Rank = 2
	cx, _ := xx.Cost()
	dense, _ := geometry.NewDense(cx.Copy())
	_, err = quadratic.Solve(ctx, dense, yy, nil, a, b, o)
	assert.ErrorIs(t, err, oterr.ErrConfiguration, "low rank dense structure")

	_, err = quadratic.Solve(ctx, self(t, x, costfn.Cosine{}), yy, nil, a, b, o)
	assert.ErrorIs(t, err, oterr.ErrConfiguration, "low rank cosine structure")

	o.Linear.Initializer = linear.InitKMeans
	factored, err := geometry.NewFactored(x, x)
	require.NoError(t, err)
	_, err = quadratic.Solve(ctx, factored, yy, nil, a, b, o)
	assert.ErrorIs(t, err, oterr.ErrConfiguration, "k-means over factored structure")

	o = generous()
	o.Bounds.MaxIterations = 0
	_, err = quadratic.Solve(ctx, xx, yy, nil, a, b, o)
	assert.ErrorIs(t, err, oterr.ErrConfiguration)

	heavy := uniform(5)
	heavy[0] = 1
	_, err = quadratic.Solve(ctx, xx, yy, nil, a, heavy, generous())
	assert.ErrorIs(t, err, oterr.ErrConfiguration)
}

func TestSolve_ContextAndProgress(t *testing.T) {
	t.Parallel()

	x := cloud(t, 6, 2, 0)
	xx := self(t, x, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := quadratic.Solve(ctx, xx, xx, nil, uniform(6), uniform(6), generous())
	assert.True(t, errors.Is(err, context.Canceled))

	var seen []convergence.Checkpoint
	o := generous()
	o.Bounds.MaxIterations = 4
	o.Bounds.Threshold = 1e-15
	o.Progress = func(c convergence.Checkpoint) { seen = append(seen, c) }
	res, err := quadratic.Solve(context.Background(), xx, xx, nil, uniform(6), uniform(6), o)
	require.NoError(t, err)
	require.Len(t, seen, len(res.Record.Residuals))
	for i, c := range seen {
		assert.Equal(t, i+1, c.Iteration)
	}
}
