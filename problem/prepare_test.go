// SPDX-License-Identifier: MIT

package problem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlot/cost"
	"github.com/katalvlaran/lvlot/matrix"
	"github.com/katalvlaran/lvlot/oterr"
	"github.com/katalvlaran/lvlot/problem"
	"github.com/katalvlaran/lvlot/synth"
)

func reversed(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}

	return out
}

func filled(t testing.TB, rows, cols int, v float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDense(rows, cols)
	require.NoError(t, err)
	require.NoError(t, m.Fill(v))

	return m
}

func TestPrepare_LiteralAlignment(t *testing.T) {
	r := linearRegistry(t, threeGroups(t))
	key := r.Keys()[0]
	p, err := r.Problem(key.Source, key.Target)
	require.NoError(t, err)
	src, tgt := p.SourceObs(), p.TargetObs()

	shuffled := cost.Literal{Matrix: filled(t, 20, 20, 1), Rows: reversed(src), Cols: tgt}
	assert.ErrorIs(t, r.Prepare(key, problem.Spec{Linear: shuffled}), oterr.ErrAlignment)
	assert.Equal(t, problem.Unprepared, p.State())
	assert.False(t, p.HasInputs())

	exact := cost.Literal{Matrix: filled(t, 20, 20, 1), Rows: src, Cols: tgt}
	require.NoError(t, r.Prepare(key, problem.Spec{Linear: exact}))
	assert.Equal(t, problem.Prepared, p.State())
}

func TestPrepare_FailureKeepsPreviousInputs(t *testing.T) {
	r := linearRegistry(t, threeGroups(t))
	key := r.Keys()[1]
	require.NoError(t, r.Prepare(key, problem.Spec{Linear: features}))

	err := r.Prepare(key, problem.Spec{Linear: cost.Features{Key: "missing"}})
	require.ErrorIs(t, err, oterr.ErrConfiguration)

	p, err := r.Problem(key.Source, key.Target)
	require.NoError(t, err)
	assert.Equal(t, problem.Prepared, p.State())
	assert.True(t, p.HasInputs())
}

func TestPrepare_PrecomputedReindexes(t *testing.T) {
	ds := threeGroups(t)
	names := ds.ObsNames()
	m := filled(t, len(names), len(names), 2)
	lab, err := matrix.NewLabeled(m, reversed(names), names)
	require.NoError(t, err)
	require.NoError(t, ds.SetCustom("C", lab))

	r := linearRegistry(t, ds)
	require.NoError(t, r.PrepareAll(problem.Spec{Linear: cost.Precomputed{Key: "C"}}))
	for _, s := range r.Summaries() {
		assert.Equal(t, problem.Prepared, s.State)
	}
}

func TestPrepare_Marginals(t *testing.T) {
	ds := threeGroups(t, synth.WithWeights("w"))
	r := linearRegistry(t, ds)
	key := r.Keys()[0]
	require.NoError(t, r.Prepare(key, problem.Spec{Linear: features, SourceMarginal: "w"}))

	p, err := r.Problem(key.Source, key.Target)
	require.NoError(t, err)
	a, b := p.Marginals()
	require.Len(t, a, 20)
	assert.InDelta(t, 1, sum(a), 1e-12)
	assert.InDelta(t, 1, sum(b), 1e-12)
	assert.InDelta(t, 1.0/20, b[0], 1e-15, "target stays uniform")

	w, err := ds.Numeric("w")
	require.NoError(t, err)
	first, ok := ds.ObsIndex(p.SourceObs()[0])
	require.True(t, ok)
	second, ok := ds.ObsIndex(p.SourceObs()[1])
	require.True(t, ok)
	assert.InDelta(t, w[first]/w[second], a[0]/a[1], 1e-9)

	err = r.Prepare(key, problem.Spec{Linear: features, TargetMarginal: "nope"})
	assert.ErrorIs(t, err, oterr.ErrConfiguration)
}

func TestPrepare_LinearSpecRules(t *testing.T) {
	r := linearRegistry(t, threeGroups(t))
	key := r.Keys()[0]

	assert.ErrorIs(t, r.Prepare(key, problem.Spec{}), oterr.ErrConfiguration)
	assert.ErrorIs(t, r.Prepare(key, problem.Spec{Linear: features, SourceStructure: features}), oterr.ErrConfiguration)
}

func TestPrepare_QuadraticAlpha(t *testing.T) {
	ds := threeGroups(t)
	r, err := problem.Partition(ds, synth.DefaultGroupKey, problem.Sequential(), problem.Quadratic)
	require.NoError(t, err)
	key := r.Keys()[0]
	misaligned := cost.Literal{Matrix: filled(t, 1, 1, 1), Rows: []string{"x"}, Cols: []string{"y"}}

	t.Run("alpha zero is rejected first", func(t *testing.T) {
		err := r.Prepare(key, problem.Spec{Linear: misaligned, Alpha: 0})
		assert.ErrorIs(t, err, oterr.ErrConfiguration)
		assert.NotErrorIs(t, err, oterr.ErrAlignment)
	})
	t.Run("alpha above one", func(t *testing.T) {
		err := r.Prepare(key, problem.Spec{SourceStructure: features, TargetStructure: features, Alpha: 1.5})
		assert.ErrorIs(t, err, oterr.ErrConfiguration)
	})
	t.Run("structures required", func(t *testing.T) {
		err := r.Prepare(key, problem.Spec{SourceStructure: features, Alpha: 1})
		assert.ErrorIs(t, err, oterr.ErrConfiguration)
	})
	t.Run("fused needs linear", func(t *testing.T) {
		err := r.Prepare(key, problem.Spec{SourceStructure: features, TargetStructure: features, Alpha: 0.5})
		assert.ErrorIs(t, err, oterr.ErrConfiguration)
	})
	t.Run("alpha one never resolves linear", func(t *testing.T) {
		err := r.Prepare(key, problem.Spec{
			Linear: misaligned, SourceStructure: features, TargetStructure: features, Alpha: 1,
		})
		assert.NoError(t, err)
	})
	t.Run("fused resolves linear", func(t *testing.T) {
		err := r.Prepare(key, problem.Spec{
			Linear: misaligned, SourceStructure: features, TargetStructure: features, Alpha: 0.5,
		})
		assert.ErrorIs(t, err, oterr.ErrAlignment)
	})
}

func TestRelease(t *testing.T) {
	r := linearRegistry(t, threeGroups(t))
	key := r.Keys()[0]
	require.NoError(t, r.Prepare(key, problem.Spec{Linear: features}))
	require.NoError(t, r.Release(key))

	p, err := r.Problem(key.Source, key.Target)
	require.NoError(t, err)
	assert.Equal(t, problem.Unprepared, p.State())
	a, b := p.Marginals()
	assert.Nil(t, a)
	assert.Nil(t, b)
	require.NoError(t, r.Release(key), "releasing twice is a no-op")
}

func sum(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x
	}

	return s
}
