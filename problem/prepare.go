// SPDX-License-Identifier: MIT

package problem

import (
	"context"
	"errors"
	"math"

	"github.com/katalvlaran/lvlot/cost"
	"github.com/katalvlaran/lvlot/events"
	"github.com/katalvlaran/lvlot/internal/logging"
	"github.com/katalvlaran/lvlot/internal/observability"
	"github.com/katalvlaran/lvlot/oterr"
	"github.com/katalvlaran/lvlot/quadratic"
)

// Spec describes the inputs of one sub-problem.
type Spec struct {
	// Linear is the source×target cost. Required for linear problems and for
	// quadratic problems with Alpha < 1; ignored when Alpha == 1.
	Linear cost.Spec
	// SourceStructure and TargetStructure are the intra-group costs of a
	// quadratic problem. Linear problems must leave them nil.
	SourceStructure cost.Spec
	TargetStructure cost.Spec
	// Alpha in (0, 1] weights the structural term (quadratic only).
	Alpha float64

	// SourceMarginal and TargetMarginal name numeric observation columns
	// holding weights; "" means uniform. Weights are normalized to unit mass.
	SourceMarginal string
	TargetMarginal string
}

// Prepare resolves spec for key against the current group label sequences
// and stores the aligned inputs, discarding any previous plan and record.
// A failed Prepare leaves the sub-problem unchanged.
//
// Errors:
//   - oterr.ErrKey: key not enumerated.
//   - oterr.ErrState: the sub-problem is busy.
//   - oterr.ErrConfiguration: α == 0 on a quadratic registry (checked first),
//     missing or extraneous cost specs, unknown keys, invalid weights.
//   - oterr.ErrAlignment, oterr.ErrShape: see cost.Resolve.
func (r *Registry) Prepare(key Key, spec Spec) error {
	p, err := r.lookup(opPrepare, key)
	if err != nil {
		return err
	}
	if err = p.acquire(opPrepare); err != nil {
		return err
	}
	defer p.releaseBusy()

	ctx, span := observability.StartSpan(context.Background(), opPrepare, key.Source, key.Target)
	in, err := r.resolve(p, spec)
	observability.EndSpan(span, err)
	if err != nil {
		r.cfg.log.Debug(ctx, "prepare failed", keyFields(key, logging.Err(err))...)
		return err
	}

	p.mu.Lock()
	hadInputs := p.in != nil
	p.in = in
	p.state = Prepared
	p.plan, p.record, p.cost, p.err = nil, nil, 0, nil
	p.mu.Unlock()

	if !hadInputs {
		r.cfg.metrics.AddPrepared(1)
	}
	r.publish(events.Event{Kind: events.KindPrepared, Source: key.Source, Target: key.Target})
	r.cfg.log.Debug(ctx, "sub-problem prepared", keyFields(key)...)

	return nil
}

// PrepareAll prepares every key with spec. A failing key does not stop the
// others; the errors are joined.
func (r *Registry) PrepareAll(spec Spec) error {
	var errs []error
	for _, k := range r.keys {
		if err := r.Prepare(k, spec); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Release drops the resolved inputs of key. A Prepared sub-problem returns to
// Unprepared; a Solved or Failed one keeps its result.
func (r *Registry) Release(key Key) error {
	p, err := r.lookup(opRelease, key)
	if err != nil {
		return err
	}
	if err = p.acquire(opRelease); err != nil {
		return err
	}
	defer p.releaseBusy()

	r.dropInputs(p)

	return nil
}

func (r *Registry) dropInputs(p *SubProblem) {
	p.mu.Lock()
	had := p.in != nil
	p.in = nil
	if p.state == Prepared {
		p.state = Unprepared
	}
	p.mu.Unlock()

	if had {
		r.cfg.metrics.AddPrepared(-1)
		r.publish(events.Event{Kind: events.KindReleased, Source: p.key.Source, Target: p.key.Target})
	}
}

// resolve validates spec and materializes every input without touching p.
func (r *Registry) resolve(p *SubProblem, spec Spec) (*inputs, error) {
	in := &inputs{alpha: 1}
	switch r.kind {
	case Quadratic:
		if err := quadratic.ValidateAlpha(spec.Alpha); err != nil {
			return nil, oterr.Wrap(opPrepare, err)
		}
		if spec.SourceStructure == nil || spec.TargetStructure == nil {
			return nil, oterr.Errorf(opPrepare, oterr.ErrConfiguration, "quadratic problems need both structure specs")
		}
		in.alpha = spec.Alpha
		if spec.Alpha < 1 && spec.Linear == nil {
			return nil, oterr.Errorf(opPrepare, oterr.ErrConfiguration, "alpha=%g needs a linear cost spec", spec.Alpha)
		}
	default:
		if spec.SourceStructure != nil || spec.TargetStructure != nil {
			return nil, oterr.Errorf(opPrepare, oterr.ErrConfiguration, "linear problems take no structure specs")
		}
		if spec.Linear == nil {
			return nil, oterr.Errorf(opPrepare, oterr.ErrConfiguration, "linear problems need a linear cost spec")
		}
	}

	var err error
	if r.kind == Linear || in.alpha < 1 {
		if in.xy, err = cost.Resolve(r.ds, spec.Linear, p.sources, p.targets); err != nil {
			return nil, oterr.Wrap(opPrepare, err)
		}
	}
	if r.kind == Quadratic {
		if in.xx, err = cost.Resolve(r.ds, spec.SourceStructure, p.sources, p.sources); err != nil {
			return nil, oterr.Wrap(opPrepare, err)
		}
		if in.yy, err = cost.Resolve(r.ds, spec.TargetStructure, p.targets, p.targets); err != nil {
			return nil, oterr.Wrap(opPrepare, err)
		}
	}
	if in.a, err = r.weights(spec.SourceMarginal, p.sources); err != nil {
		return nil, err
	}
	if in.b, err = r.weights(spec.TargetMarginal, p.targets); err != nil {
		return nil, err
	}

	return in, nil
}

// weights reads column at the dataset positions of ids and normalizes them.
func (r *Registry) weights(column string, ids []string) ([]float64, error) {
	out := make([]float64, len(ids))
	if column == "" {
		for i := range out {
			out[i] = 1 / float64(len(ids))
		}
		return out, nil
	}
	values, err := r.ds.Numeric(column)
	if err != nil {
		return nil, oterr.Errorf(opPrepare, oterr.ErrConfiguration, "marginal column %q: %v", column, err)
	}
	var total float64
	for i, id := range ids {
		pos, ok := r.ds.ObsIndex(id)
		if !ok {
			return nil, oterr.Errorf(opPrepare, oterr.ErrAlignment, "observation %q not in dataset", id)
		}
		v := values[pos]
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, oterr.Errorf(opPrepare, oterr.ErrConfiguration, "marginal %q of %q is %g", column, id, v)
		}
		out[i] = v
		total += v
	}
	if !(total > 0) {
		return nil, oterr.Errorf(opPrepare, oterr.ErrConfiguration, "marginal %q has no mass", column)
	}
	for i := range out {
		out[i] /= total
	}

	return out, nil
}

func (r *Registry) publish(e events.Event) {
	e.RunID = r.cfg.runID
	r.cfg.bus.Publish(e)
}

func keyFields(k Key, extra ...logging.Field) []logging.Field {
	return append([]logging.Field{logging.String("source", k.Source), logging.String("target", k.Target)}, extra...)
}
