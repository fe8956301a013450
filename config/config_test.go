// SPDX-License-Identifier: MIT

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlot/config"
	"github.com/katalvlaran/lvlot/convergence"
	"github.com/katalvlaran/lvlot/geometry"
	"github.com/katalvlaran/lvlot/linear"
	"github.com/katalvlaran/lvlot/oterr"
)

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	s := config.Default()
	require.NoError(t, s.Validate())

	lo, err := s.Linear()
	require.NoError(t, err)
	assert.Equal(t, linear.FullRank, lo.Rank)
	assert.Equal(t, 0.05, lo.Epsilon)

	sc, err := s.Scaling()
	require.NoError(t, err)
	assert.Equal(t, geometry.ScaleMean, sc)
}

func TestValidate_Rejects(t *testing.T) {
	t.Parallel()

	cases := map[string]func(s *config.Solver){
		"rank 0":             func(s *config.Solver) { s.Rank = 0 },
		"rank -3":            func(s *config.Solver) { s.Rank = -3 },
		"tau 0":              func(s *config.Solver) { s.TauA = 0 },
		"tau > 1":            func(s *config.Solver) { s.TauB = 1.1 },
		"negative epsilon":   func(s *config.Solver) { s.Epsilon = -1 },
		"epsilon 0 full":     func(s *config.Solver) { s.Epsilon = 0 },
		"low rank relaxed":   func(s *config.Solver) { s.Rank = 3; s.TauA = 0.5 },
		"min > max":          func(s *config.Solver) { s.MinIterations = 5; s.MaxIterations = 4 },
		"inner 0":            func(s *config.Solver) { s.InnerIterations = 0 },
		"threshold 0":        func(s *config.Solver) { s.Threshold = 0 },
		"tail policy":        func(s *config.Solver) { s.TailPolicy = "sometimes" },
		"cauchy norm":        func(s *config.Solver) { s.CauchyNorm = "l3" },
		"initializer":        func(s *config.Solver) { s.Rank = 2; s.Initializer = "spectral" },
		"init full rank":     func(s *config.Solver) { s.Initializer = "random" },
		"alpha 0":            func(s *config.Solver) { s.Alpha = 0 },
		"alpha > 1":          func(s *config.Solver) { s.Alpha = 2 },
		"linear kwargs":      func(s *config.Solver) { s.LinearSolverKwargs.MaxIterations = 0 },
		"scale cost":         func(s *config.Solver) { s.ScaleCost = "p95" },
		"parallelism":        func(s *config.Solver) { s.Parallelism = -1 },
		"gamma":              func(s *config.Solver) { s.Gamma = 0 },
		"init kwargs":        func(s *config.Solver) { s.InitializerKwargs.MaxIterations = -1 },
	}
	for name, mutate := range cases {
		s := config.Default()
		mutate(&s)
		assert.ErrorIs(t, s.Validate(), oterr.ErrConfiguration, name)
	}
}

func TestQuadratic_UsesNestedBounds(t *testing.T) {
	t.Parallel()

	s := config.Default()
	s.Alpha = 0.5
	s.MaxIterations = 30
	s.InnerIterations = 1
	s.LinearSolverKwargs = config.LinearSolverKwargs{MaxIterations: 500, InnerIterations: 5, Threshold: 1e-6}
	s.Rank = 4
	s.Epsilon = 0
	s.Initializer = "k-means"
	s.InitializerKwargs = config.InitializerKwargs{Seed: 7, MaxIterations: 12}
	s.TailPolicy = "skip"

	qo, err := s.Quadratic()
	require.NoError(t, err)
	assert.Equal(t, 0.5, qo.Alpha)
	assert.Equal(t, convergence.Bounds{MaxIterations: 30, InnerIterations: 1, Threshold: s.Threshold}, qo.Bounds)
	assert.Equal(t, convergence.Bounds{MaxIterations: 500, InnerIterations: 5, Threshold: 1e-6}, qo.Linear.Bounds)
	assert.Equal(t, 4, qo.Linear.Rank)
	assert.Equal(t, linear.InitKMeans, qo.Linear.Initializer)
	assert.Equal(t, int64(7), qo.Linear.InitOptions.Seed)
	assert.Equal(t, 12, qo.Linear.InitOptions.MaxIterations)
	assert.Equal(t, linear.DefaultInitializerOptions().Gamma, qo.Linear.InitOptions.Gamma)
	assert.Equal(t, convergence.TailSkip, qo.TailPolicy)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	s, err := config.Decode(strings.NewReader(`
epsilon: 0.1
rank: 5
initializer: random
initializer_kwargs:
  seed: 3
max_iterations: 100
scale_cost: median
parallelism: 2
`))
	require.NoError(t, err)
	assert.Equal(t, 0.1, s.Epsilon)
	assert.Equal(t, 5, s.Rank)
	assert.Equal(t, "random", s.Initializer)
	assert.Equal(t, int64(3), s.InitializerKwargs.Seed)
	assert.Equal(t, 100, s.MaxIterations)
	assert.Equal(t, 2, s.Parallelism)
	assert.Equal(t, config.Default().InnerIterations, s.InnerIterations)

	empty, err := config.Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), empty)

	_, err = config.Decode(strings.NewReader("epsilonn: 1\n"))
	assert.ErrorIs(t, err, oterr.ErrConfiguration)

	_, err = config.Decode(strings.NewReader("rank: 0\n"))
	assert.ErrorIs(t, err, oterr.ErrConfiguration)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "solver.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tau_a: 0.9\ntau_b: 0.9\n"), 0o600))
	s, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.9, s.TauA)

	d, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), d)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
