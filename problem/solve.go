// SPDX-License-Identifier: MIT

package problem

import (
	"context"
	"errors"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/lvlot/config"
	"github.com/katalvlaran/lvlot/convergence"
	"github.com/katalvlaran/lvlot/cost"
	"github.com/katalvlaran/lvlot/events"
	"github.com/katalvlaran/lvlot/geometry"
	"github.com/katalvlaran/lvlot/internal/logging"
	"github.com/katalvlaran/lvlot/internal/observability"
	"github.com/katalvlaran/lvlot/internal/rng"
	"github.com/katalvlaran/lvlot/linear"
	"github.com/katalvlaran/lvlot/oterr"
	"github.com/katalvlaran/lvlot/quadratic"
)

// outcome is the solver-independent part of a result.
type outcome struct {
	plan   *linear.Plan
	record convergence.Record
	cost   float64
}

// Solve runs the solver of the registry kind on the prepared inputs of key.
//
// The configuration is validated before any numerical work. Kernel-tagged
// inputs are converted with cfg.Epsilon, then every cost is divided by the
// cfg.ScaleCost statistic. Random initializers draw from a stream derived
// from the configured seed and the key, so results do not depend on the
// order in which keys are solved.
//
// On success the sub-problem becomes Solved, converged or not. A numerical
// solver error moves it to Failed. Validation errors and cancellation of ctx
// leave the state and any previous plan untouched.
//
// Errors:
//   - oterr.ErrKey: key not enumerated.
//   - oterr.ErrState: no resolved inputs, or the sub-problem is busy.
//   - oterr.ErrConfiguration, oterr.ErrShape: from validation.
//   - ctx.Err() (wrapped).
func (r *Registry) Solve(ctx context.Context, key Key, cfg config.Solver) error {
	p, err := r.lookup(opSolve, key)
	if err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return oterr.Wrap(opSolve, err)
	}
	if err = p.acquire(opSolve); err != nil {
		return err
	}
	defer p.releaseBusy()

	p.mu.Lock()
	in := p.in
	p.mu.Unlock()
	if in == nil {
		return oterr.Errorf(opSolve, oterr.ErrState, "sub-problem %s has no inputs", key)
	}
	if err = cfg.Validate(); err != nil {
		return oterr.Wrap(opSolve, err)
	}

	ctx, span := observability.StartSpan(ctx, opSolve, key.Source, key.Target,
		attribute.String("ot.kind", r.kind.String()),
		attribute.Int("ot.rank", cfg.Rank),
		attribute.Float64("ot.epsilon", cfg.Epsilon))
	r.publish(events.Event{Kind: events.KindSolveStarted, Source: key.Source, Target: key.Target})

	start := time.Now()
	out, err := r.run(ctx, key, in, cfg)
	elapsed := time.Since(start)
	observability.EndSpan(span, err)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return oterr.Wrap(opSolve, err)
		}
		if oterr.IsValidation(err) {
			r.cfg.log.Warn(ctx, "solve rejected", keyFields(key, logging.Err(err))...)
			return oterr.Wrap(opSolve, err)
		}
		p.mu.Lock()
		p.state = Failed
		p.plan, p.record, p.cost, p.err = nil, nil, 0, err
		p.mu.Unlock()

		r.cfg.metrics.ObserveSolve(r.kind.String(), observability.OutcomeFailed, 0, elapsed)
		r.publish(events.Event{Kind: events.KindFailed, Source: key.Source, Target: key.Target, Err: err})
		r.cfg.log.Error(ctx, "solve failed", keyFields(key, logging.Err(err))...)

		return err
	}

	rec := out.record
	p.mu.Lock()
	p.state = Solved
	p.plan, p.record, p.cost, p.err = out.plan, &rec, out.cost, nil
	p.mu.Unlock()

	fields := keyFields(key,
		logging.Int("outer_iterations", rec.OuterIterations),
		logging.Int("inner_iterations", rec.InnerIterations),
		logging.Float("residual", rec.Residual),
		logging.Float("cost", out.cost),
		logging.Duration("elapsed", elapsed))
	done := events.Event{Source: key.Source, Target: key.Target, Iteration: rec.OuterIterations, Residual: rec.Residual}
	switch {
	case rec.Converged:
		done.Kind = events.KindSolved
		r.cfg.metrics.ObserveSolve(r.kind.String(), observability.OutcomeConverged, rec.OuterIterations, elapsed)
		r.cfg.log.Info(ctx, "sub-problem solved", fields...)
	case rec.Diverged:
		done.Kind = events.KindNotConverged
		r.cfg.metrics.ObserveSolve(r.kind.String(), observability.OutcomeDiverged, rec.OuterIterations, elapsed)
		r.cfg.log.Warn(ctx, "solver diverged", fields...)
	default:
		done.Kind = events.KindNotConverged
		r.cfg.metrics.ObserveSolve(r.kind.String(), observability.OutcomeNotConverged, rec.OuterIterations, elapsed)
		r.cfg.log.Warn(ctx, "solver did not converge", fields...)
	}
	r.publish(done)

	if r.cfg.release {
		r.dropInputs(p)
	}

	return nil
}

// SolveAll solves every key with cfg on a bounded worker pool. The bound is
// cfg.Parallelism, else WithParallelism, else GOMAXPROCS. Keys that fail do
// not stop the others; their errors are joined in key order. Unprepared keys
// fail with oterr.ErrState.
func (r *Registry) SolveAll(ctx context.Context, cfg config.Solver) error {
	limit := cfg.Parallelism
	if limit == 0 {
		limit = r.cfg.parallelism
	}
	if limit == 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	errs := make([]error, len(r.keys))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, k := range r.keys {
		g.Go(func() error {
			errs[i] = r.Solve(ctx, k, cfg)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

func (r *Registry) run(ctx context.Context, key Key, in *inputs, cfg config.Solver) (*outcome, error) {
	eps := cfg.Epsilon
	scaling, err := cfg.Scaling()
	if err != nil {
		return nil, err
	}
	geom := func(c *cost.Resolved) (geometry.Geometry, error) {
		if c == nil {
			return nil, nil
		}
		g, err := geometry.FromResolved(c, eps)
		if err != nil {
			return nil, err
		}
		g, _, err = geometry.Rescale(g, scaling)
		return g, err
	}
	progress := func(cp convergence.Checkpoint) {
		r.publish(events.Event{
			Kind: events.KindCheckpoint, Source: key.Source, Target: key.Target,
			Iteration: cp.Iteration, Residual: cp.Residual,
		})
	}

	xy, err := geom(in.xy)
	if err != nil {
		return nil, err
	}

	if r.kind == Linear {
		lo, err := cfg.Linear()
		if err != nil {
			return nil, err
		}
		lo.InitOptions.Seed = streamSeed(lo.InitOptions.Seed, key)
		lo.Progress = progress
		res, err := linear.Solve(xy, in.a, in.b, lo)
		if err != nil {
			return nil, err
		}
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		return &outcome{plan: res.Plan, record: res.Record, cost: res.Cost}, nil
	}

	xx, err := geom(in.xx)
	if err != nil {
		return nil, err
	}
	yy, err := geom(in.yy)
	if err != nil {
		return nil, err
	}
	qo, err := cfg.Quadratic()
	if err != nil {
		return nil, err
	}
	qo.Alpha = in.alpha
	qo.Linear.InitOptions.Seed = streamSeed(qo.Linear.InitOptions.Seed, key)
	qo.Progress = progress
	res, err := quadratic.Solve(ctx, xx, yy, xy, in.a, in.b, qo)
	if err != nil {
		return nil, err
	}

	return &outcome{plan: res.Plan, record: res.Record, cost: res.Cost}, nil
}

func streamSeed(seed int64, key Key) int64 {
	if seed == 0 {
		seed = rng.DefaultSeed
	}

	return rng.Mix(seed, rng.StringStream(key.String()))
}
