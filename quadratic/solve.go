// SPDX-License-Identifier: MIT

// Package quadratic - outer linearization loop.
//
// Solve alternates two steps until the plan stops moving:
//   - linearize the fused objective around P (see linearize.go);
//   - solve the linear problem with Options.Linear and replace P.
//
// Design:
//   - The quadratic loop owns one linear.Solve call per step and shares no
//     state with it; nested records are folded into Record.InnerIterations.
//   - Full rank starts from the product coupling a·bᵀ/Σb. Low rank starts from
//     the configured initializer's coupling of xx and yy and warm-starts every
//     nested solve from the previous factors.
//   - The residual is the relative Frobenius change between consecutive plans,
//     computed from factors for low rank.
//   - ctx is checked before every step; cancellation returns ctx.Err() wrapped.
//
// Contracts:
//   - xx is n×n and yy is m×m; xy is n×m and only read when α < 1.
//   - Low rank requires balanced marginals and factorizable structures.
//   - Non-convergence is reported in Result.Record, never as an error.
//
// Complexity:
//   - Full rank: O(n²·m + n·m²) per step for Cx·P·Cyᵀ plus the nested solve.
//   - Low rank: O((n+m)·(r+d)²) per step with d the factor rank of the structures.
package quadratic

import (
	"context"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/lvlot/convergence"
	"github.com/katalvlaran/lvlot/geometry"
	"github.com/katalvlaran/lvlot/linear"
	"github.com/katalvlaran/lvlot/matrix"
	"github.com/katalvlaran/lvlot/oterr"
)

// Result is the outcome of Solve.
type Result struct {
	Plan *linear.Plan
	// Record counts linearization steps as outer iterations and the outer
	// iterations of every nested linear solve as inner iterations.
	Record convergence.Record
	// Linear is the record of the last nested linear solve.
	Linear convergence.Record
	// Cost is the fused objective ⟨L(P), P⟩ at the returned plan.
	Cost float64
}

// Solve computes a fused Gromov-Wasserstein plan between weights a on the
// source structure xx and b on the target structure yy. xy may be nil when
// o.Alpha == 1.
//
// Errors:
//   - oterr.ErrConfiguration: α outside (0, 1], invalid bounds or linear options,
//     missing xy for α < 1, low rank over non-factorizable structures, k-means
//     initializers over structures that are not point clouds, invalid marginals.
//   - oterr.ErrShape: non-square structures or sizes that disagree with a, b, xy.
//   - ctx.Err() (wrapped) when ctx ends between steps.
func Solve(ctx context.Context, xx, yy, xy geometry.Geometry, a, b []float64, o Options) (*Result, error) {
	if err := ValidateOptions(o); err != nil {
		return nil, err
	}
	s, err := newStructure(xx, yy, xy, a, b, o)
	if err != nil {
		return nil, err
	}

	ctlOpts := []convergence.Option{convergence.WithTailPolicy(o.TailPolicy)}
	if o.Progress != nil {
		ctlOpts = append(ctlOpts, convergence.WithProgress(o.Progress))
	}
	ctl, err := convergence.New(o.Bounds, ctlOpts...)
	if err != nil {
		return nil, err
	}

	plan, err := initialPlan(xx, yy, a, b, o.Linear)
	if err != nil {
		return nil, err
	}
	inner := o.Linear
	inner.Progress = nil
	if inner.IsLowRank() {
		inner.Initializer = linear.InitDefault
	}

	var last convergence.Record
	for !ctl.Done() {
		if err = ctx.Err(); err != nil {
			return nil, oterr.Wrap(opSolve, err)
		}
		lin, err := s.linearize(plan)
		if err != nil {
			return nil, oterr.Wrap(opSolve, err)
		}
		if inner.IsLowRank() {
			inner.Warm = plan
		}
		res, err := linear.Solve(lin, a, b, inner)
		if err != nil {
			return nil, oterr.Wrap(opSolve, err)
		}
		ctl.AddInner(res.Record.OuterIterations)
		last = res.Record
		prev := plan
		plan = res.Plan

		if !ctl.Tick() {
			continue
		}
		if ctl.Observe(linear.RelativeChange(prev, plan)) {
			break
		}
	}

	out := &Result{Plan: plan, Record: ctl.Record(), Linear: last}
	lin, err := s.linearize(plan)
	if err != nil {
		return nil, oterr.Wrap(opSolve, err)
	}
	if out.Cost, err = plan.Cost(lin); err != nil {
		return nil, oterr.Wrap(opSolve, err)
	}

	return out, nil
}

// initialPlan returns a·bᵀ/Σb for full rank and the configured initializer's
// coupling of the structures for low rank.
func initialPlan(xx, yy geometry.Geometry, a, b []float64, o linear.Options) (*linear.Plan, error) {
	if o.IsLowRank() {
		p, err := linear.InitialStructuralPlan(xx, yy, a, b, o)
		if err != nil {
			return nil, oterr.Wrap(opSolve, err)
		}
		return p, nil
	}
	p, err := matrix.NewDense(len(a), len(b))
	if err != nil {
		return nil, oterr.Errorf(opSolve, oterr.ErrShape, "%v", err)
	}
	mass := floats.Sum(b)
	for i := range a {
		row := p.RawRow(i)
		copy(row, b)
		floats.Scale(a[i]/mass, row)
	}

	return linear.NewDensePlan(p), nil
}
