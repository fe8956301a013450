// SPDX-License-Identifier: MIT

package problem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlot/dataset"
	"github.com/katalvlaran/lvlot/oterr"
	"github.com/katalvlaran/lvlot/problem"
	"github.com/katalvlaran/lvlot/synth"
)

func TestPartition_Policies(t *testing.T) {
	ds, err := synth.Generate(4, 3, 2)
	require.NoError(t, err)
	k := func(src, dst string) problem.Key { return problem.Key{Source: src, Target: dst} }

	cases := map[string]struct {
		policy problem.Policy
		want   []problem.Key
	}{
		"sequential": {problem.Sequential(), []problem.Key{k("0", "1"), k("1", "2"), k("2", "3")}},
		"triu": {problem.Triu(), []problem.Key{
			k("0", "1"), k("0", "2"), k("0", "3"), k("1", "2"), k("1", "3"), k("2", "3"),
		}},
		"star":     {problem.Star("2"), []problem.Key{k("0", "2"), k("1", "2"), k("3", "2")}},
		"explicit": {problem.Explicit(k("3", "0"), k("1", "1")), []problem.Key{k("3", "0"), k("1", "1")}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := problem.Partition(ds, synth.DefaultGroupKey, tc.policy, problem.Linear)
			require.NoError(t, err)
			assert.Equal(t, tc.want, r.Keys())
			for _, key := range r.Keys() {
				p, err := r.Problem(key.Source, key.Target)
				require.NoError(t, err)
				assert.Equal(t, problem.Unprepared, p.State())
				assert.Len(t, p.SourceObs(), 3)
			}
		})
	}
}

func TestPartition_Errors(t *testing.T) {
	ds := threeGroups(t)
	cases := map[string]func() error{
		"unknown column": func() error {
			_, err := problem.Partition(ds, "nope", problem.Sequential(), problem.Linear)
			return err
		},
		"star reference": func() error {
			_, err := problem.Partition(ds, synth.DefaultGroupKey, problem.Star("9"), problem.Linear)
			return err
		},
		"explicit unknown group": func() error {
			_, err := problem.Partition(ds, synth.DefaultGroupKey,
				problem.Explicit(problem.Key{Source: "0", Target: "7"}), problem.Linear)
			return err
		},
		"explicit duplicate": func() error {
			k := problem.Key{Source: "0", Target: "1"}
			_, err := problem.Partition(ds, synth.DefaultGroupKey, problem.Explicit(k, k), problem.Linear)
			return err
		},
		"nil policy": func() error {
			_, err := problem.Partition(ds, synth.DefaultGroupKey, nil, problem.Linear)
			return err
		},
		"single group": func() error {
			one, err := synth.Generate(1, 5, 2)
			require.NoError(t, err)
			_, err = problem.Partition(one, synth.DefaultGroupKey, problem.Sequential(), problem.Linear)
			return err
		},
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, fn(), oterr.ErrConfiguration)
		})
	}
}

func TestPartition_NumericLabelOrder(t *testing.T) {
	ds, err := dataset.New([]string{"a", "b", "c", "d"})
	require.NoError(t, err)
	require.NoError(t, ds.SetCategorical("day", []string{"10", "2", "10", "1"}))

	r, err := problem.Partition(ds, "day", problem.Sequential(), problem.Linear)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "10"}, r.Labels())
	assert.Equal(t, "day", r.GroupKey())

	ids, ok := r.Group("10")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "c"}, ids, "dataset order within a group")
	_, ok = r.Group("3")
	assert.False(t, ok)
}

func TestPartition_LexicographicFallback(t *testing.T) {
	ds, err := dataset.New([]string{"a", "b", "c"})
	require.NoError(t, err)
	require.NoError(t, ds.SetCategorical("stage", []string{"late", "10", "early"}))

	r, err := problem.Partition(ds, "stage", problem.Triu(), problem.Quadratic)
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "early", "late"}, r.Labels())
	assert.Equal(t, problem.Quadratic, r.Kind())
}

func TestRegistry_UnknownKey(t *testing.T) {
	r := linearRegistry(t, threeGroups(t))

	_, err := r.Problem("0", "2")
	assert.ErrorIs(t, err, oterr.ErrKey)
	assert.ErrorIs(t, r.Prepare(problem.Key{Source: "0", Target: "2"}, problem.Spec{Linear: features}), oterr.ErrKey)
	assert.ErrorIs(t, r.Release(problem.Key{Source: "2", Target: "1"}), oterr.ErrKey)
}

func TestRegistry_Summaries(t *testing.T) {
	r := linearRegistry(t, threeGroups(t))
	first := r.Keys()[0]
	require.NoError(t, r.Prepare(first, problem.Spec{Linear: features}))

	got := r.Summaries()
	require.Len(t, got, 2)
	assert.Equal(t, problem.Prepared, got[0].State)
	assert.Equal(t, problem.Unprepared, got[1].State)
	assert.Equal(t, "(0, 1)", got[0].Key.String())
	assert.Equal(t, "prepared", got[0].State.String())
}
