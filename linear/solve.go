// SPDX-License-Identifier: MIT

// Package linear solves entropic optimal transport between two weighted point sets.
//
// Two solvers sit behind Solve:
//
//   - full rank (Rank == FullRank): log-domain Sinkhorn on the dense cost, with
//     optional marginal relaxation through TauA and TauB;
//   - low rank (Rank > 0): mirror descent on factors (Q, R, g) with LR-Dykstra
//     projections; the cost is only touched through products, so factored
//     geometries are never materialized.
//
// Every parameter is validated before any numerical work. Not converging is
// reported in Result.Record, never as an error. Inputs are never mutated.
package linear

import (
	"github.com/katalvlaran/lvlot/convergence"
	"github.com/katalvlaran/lvlot/geometry"
)

// Result is the outcome of Solve.
type Result struct {
	Plan   *Plan
	Record convergence.Record
	// F and G are the dual potentials of a full-rank solve (nil for low rank).
	F, G []float64
	// Cost is the transport cost ⟨C, P⟩.
	Cost float64
}

// Solve computes an entropic transport plan between marginals a and b under geom.
//
// Errors:
//   - oterr.ErrConfiguration for invalid options (see ValidateOptions), marginals
//     that are negative, empty, or of unequal mass in a balanced problem, a rank
//     above min(n, m), or a k-means initializer without point clouds.
//   - oterr.ErrShape when len(a), len(b) do not match the geometry.
func Solve(geom geometry.Geometry, a, b []float64, o Options) (*Result, error) {
	if err := ValidateOptions(o); err != nil {
		return nil, err
	}
	if err := validateProblem(geom, a, b, o); err != nil {
		return nil, err
	}

	ctlOpts := []convergence.Option{
		convergence.WithTailPolicy(o.TailPolicy),
		convergence.WithCauchyNorm(o.CauchyNorm),
	}
	if o.Progress != nil {
		ctlOpts = append(ctlOpts, convergence.WithProgress(o.Progress))
	}
	ctl, err := convergence.New(o.Bounds, ctlOpts...)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	if o.IsLowRank() {
		start, err := initialFactors(geom, a, b, o)
		if err != nil {
			return nil, err
		}
		st, err := lowRank(geom, a, b, o, start, ctl)
		if err != nil {
			return nil, err
		}
		if res.Plan, err = NewLowRankPlan(st.q, st.r, st.g); err != nil {
			return nil, err
		}
	} else {
		c, err := geom.Cost()
		if err != nil {
			return nil, err
		}
		st := sinkhorn(c, a, b, o.Epsilon, o.TauA, o.TauB, ctl)
		res.Plan = &Plan{dense: gibbsPlan(c, st.f, st.g, o.Epsilon)}
		res.F, res.G = st.f, st.g
	}
	res.Record = ctl.Record()
	if res.Cost, err = res.Plan.Cost(geom); err != nil {
		return nil, err
	}

	return res, nil
}
