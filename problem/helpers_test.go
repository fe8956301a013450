// SPDX-License-Identifier: MIT

package problem_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlot/config"
	"github.com/katalvlaran/lvlot/cost"
	"github.com/katalvlaran/lvlot/dataset"
	"github.com/katalvlaran/lvlot/problem"
	"github.com/katalvlaran/lvlot/synth"
)

// threeGroups is the reference dataset: groups "0".."2", 20 observations each.
func threeGroups(t testing.TB, opts ...synth.Option) *dataset.Dataset {
	t.Helper()
	ds, err := synth.Generate(3, 20, 2, opts...)
	require.NoError(t, err)

	return ds
}

func linearRegistry(t testing.TB, ds *dataset.Dataset, opts ...problem.Option) *problem.Registry {
	t.Helper()
	r, err := problem.Partition(ds, synth.DefaultGroupKey, problem.Sequential(), problem.Linear, opts...)
	require.NoError(t, err)

	return r
}

var features = cost.Features{Key: synth.DefaultFeatureKey}

// generous converges on the reference dataset.
func generous() config.Solver {
	c := config.Default()
	c.Epsilon = 0.1
	c.MaxIterations = 5000
	c.Threshold = 1e-4

	return c
}

// capped stops after a single Sinkhorn sweep.
func capped() config.Solver {
	c := config.Default()
	c.MaxIterations = 1
	c.Threshold = 1e-6

	return c
}

func quadraticConfig() config.Solver {
	c := config.Default()
	c.Epsilon = 0.5
	c.MaxIterations = 30
	c.InnerIterations = 1
	c.Threshold = 1e-2
	c.LinearSolverKwargs = config.LinearSolverKwargs{MaxIterations: 2000, InnerIterations: 10, Threshold: 1e-6}

	return c
}
