// SPDX-License-Identifier: MIT

package problem

import (
	"sync"

	"github.com/katalvlaran/lvlot/convergence"
	"github.com/katalvlaran/lvlot/cost"
	"github.com/katalvlaran/lvlot/linear"
	"github.com/katalvlaran/lvlot/oterr"
)

// inputs are the resolved, aligned inputs of one sub-problem.
type inputs struct {
	alpha  float64
	xy     *cost.Resolved // nil when alpha == 1
	xx, yy *cost.Resolved // quadratic only
	a, b   []float64
}

// SubProblem is one ordered pair of groups. Its observation ids are fixed at
// Partition time; inputs and results change through the registry.
type SubProblem struct {
	key     Key
	sources []string
	targets []string

	mu     sync.Mutex
	busy   bool
	state  State
	in     *inputs
	plan   *linear.Plan
	record *convergence.Record
	cost   float64
	err    error
}

// Key returns the sub-problem key.
func (p *SubProblem) Key() Key { return p.key }

// SourceObs returns the source observation ids in dataset order.
func (p *SubProblem) SourceObs() []string { return append([]string(nil), p.sources...) }

// TargetObs returns the target observation ids in dataset order.
func (p *SubProblem) TargetObs() []string { return append([]string(nil), p.targets...) }

// State returns the lifecycle stage.
func (p *SubProblem) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

// Plan returns the transport plan, or nil before a successful solve.
func (p *SubProblem) Plan() *linear.Plan {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.plan
}

// Record returns a copy of the convergence record, or nil before a successful solve.
func (p *SubProblem) Record() *convergence.Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.record == nil {
		return nil
	}
	r := *p.record
	r.Residuals = append([]float64(nil), p.record.Residuals...)

	return &r
}

// Cost returns the objective of the last successful solve.
func (p *SubProblem) Cost() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.cost
}

// Err returns the error of the last failed solve.
func (p *SubProblem) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.err
}

// HasInputs reports whether resolved inputs are held.
func (p *SubProblem) HasInputs() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.in != nil
}

// Marginals returns copies of the source and target weights, or nils when no
// inputs are held.
func (p *SubProblem) Marginals() (a, b []float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.in == nil {
		return nil, nil
	}

	return append([]float64(nil), p.in.a...), append([]float64(nil), p.in.b...)
}

// acquire marks p busy or fails with ErrState.
func (p *SubProblem) acquire(op string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.busy {
		return oterr.Errorf(op, oterr.ErrState, "sub-problem %s is busy", p.key)
	}
	p.busy = true

	return nil
}

func (p *SubProblem) releaseBusy() {
	p.mu.Lock()
	p.busy = false
	p.mu.Unlock()
}
