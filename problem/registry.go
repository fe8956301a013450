// SPDX-License-Identifier: MIT

package problem

import (
	"context"
	"sort"
	"strconv"

	"github.com/katalvlaran/lvlot/cost"
	"github.com/katalvlaran/lvlot/internal/logging"
	"github.com/katalvlaran/lvlot/oterr"
)

const (
	opPartition = "problem.Partition"
	opProblem   = "problem.Problem"
	opPrepare   = "problem.Prepare"
	opSolve     = "problem.Solve"
	opRelease   = "problem.Release"
)

// Dataset is the read side of an annotated dataset used by a registry.
// *dataset.Dataset satisfies it.
type Dataset interface {
	cost.Store
	ObsNames() []string
	Categorical(key string) ([]string, error)
	Numeric(key string) ([]float64, error)
}

// Registry holds the sub-problems of one dataset decomposition.
// The key set is fixed at Partition; sub-problems are safe for concurrent use.
type Registry struct {
	ds       Dataset
	kind     Kind
	groupKey string
	labels   []string
	groups   map[string][]string
	keys     []Key
	subs     map[Key]*SubProblem
	cfg      settings
}

// Partition groups the observations of ds by the categorical column groupKey
// and enumerates sub-problems with policy.
//
// Group labels are ordered numerically when every label parses as a number,
// lexicographically otherwise. Observation ids keep dataset order within a group.
//
// Errors: oterr.ErrConfiguration for a nil dataset or policy, an unknown
// column, a policy error, or an empty key set.
func Partition(ds Dataset, groupKey string, policy Policy, kind Kind, opts ...Option) (*Registry, error) {
	if ds == nil || policy == nil {
		return nil, oterr.Errorf(opPartition, oterr.ErrConfiguration, "nil dataset or policy")
	}
	if kind != Linear && kind != Quadratic {
		return nil, oterr.Errorf(opPartition, oterr.ErrConfiguration, "unknown kind %d", kind)
	}
	column, err := ds.Categorical(groupKey)
	if err != nil {
		return nil, oterr.Errorf(opPartition, oterr.ErrConfiguration, "group column %q: %v", groupKey, err)
	}

	names := ds.ObsNames()
	groups := make(map[string][]string)
	for i, label := range column {
		groups[label] = append(groups[label], names[i])
	}
	labels := make([]string, 0, len(groups))
	for l := range groups {
		labels = append(labels, l)
	}
	sortLabels(labels)

	keys, err := policy.Keys(labels)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, oterr.Errorf(opPartition, oterr.ErrConfiguration, "policy yields no sub-problems for %d groups", len(labels))
	}

	r := &Registry{
		ds:       ds,
		kind:     kind,
		groupKey: groupKey,
		labels:   labels,
		groups:   groups,
		keys:     keys,
		subs:     make(map[Key]*SubProblem, len(keys)),
		cfg:      newSettings(opts...),
	}
	for _, k := range keys {
		r.subs[k] = &SubProblem{key: k, sources: groups[k.Source], targets: groups[k.Target]}
	}
	r.cfg.log.Debug(context.Background(), "registry partitioned",
		logging.String("group_key", groupKey), logging.Int("groups", len(labels)), logging.Int("sub_problems", len(keys)))

	return r, nil
}

// sortLabels orders labels numerically if all parse, lexicographically otherwise.
func sortLabels(labels []string) {
	nums := make(map[string]float64, len(labels))
	for _, l := range labels {
		v, err := strconv.ParseFloat(l, 64)
		if err != nil {
			sort.Strings(labels)
			return
		}
		nums[l] = v
	}
	sort.SliceStable(labels, func(i, j int) bool {
		if nums[labels[i]] != nums[labels[j]] {
			return nums[labels[i]] < nums[labels[j]]
		}
		return labels[i] < labels[j]
	})
}

// Kind returns the solver family.
func (r *Registry) Kind() Kind { return r.kind }

// GroupKey returns the categorical column the registry was partitioned on.
func (r *Registry) GroupKey() string { return r.groupKey }

// Labels returns the ordered group labels.
func (r *Registry) Labels() []string { return append([]string(nil), r.labels...) }

// Keys returns the sub-problem keys in enumeration order.
func (r *Registry) Keys() []Key { return append([]Key(nil), r.keys...) }

// Group returns the observation ids of a group label.
func (r *Registry) Group(label string) ([]string, bool) {
	ids, ok := r.groups[label]
	if !ok {
		return nil, false
	}

	return append([]string(nil), ids...), true
}

// Problem returns the sub-problem for (source, target).
// Errors: oterr.ErrKey when the pair was not enumerated.
func (r *Registry) Problem(source, target string) (*SubProblem, error) {
	return r.lookup(opProblem, Key{Source: source, Target: target})
}

func (r *Registry) lookup(op string, k Key) (*SubProblem, error) {
	p, ok := r.subs[k]
	if !ok {
		return nil, oterr.Errorf(op, oterr.ErrKey, "no sub-problem %s", k)
	}

	return p, nil
}

// Summary is a snapshot of one sub-problem.
type Summary struct {
	Key             Key
	State           State
	Converged       bool
	Diverged        bool
	OuterIterations int
	InnerIterations int
	Residual        float64
	Cost            float64
	Err             error
}

// Summaries snapshots every sub-problem in enumeration order.
func (r *Registry) Summaries() []Summary {
	out := make([]Summary, 0, len(r.keys))
	for _, k := range r.keys {
		p := r.subs[k]
		s := Summary{Key: k, State: p.State(), Cost: p.Cost(), Err: p.Err()}
		if rec := p.Record(); rec != nil {
			s.Converged = rec.Converged
			s.Diverged = rec.Diverged
			s.OuterIterations = rec.OuterIterations
			s.InnerIterations = rec.InnerIterations
			s.Residual = rec.Residual
		}
		out = append(out, s)
	}

	return out
}
