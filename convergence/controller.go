// SPDX-License-Identifier: MIT

package convergence

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Record is the outcome of one solve.
type Record struct {
	Converged bool
	// Diverged is set when a residual was NaN or infinite.
	Diverged bool
	// OuterIterations counts completed outer iterations.
	OuterIterations int
	// InnerIterations counts nested work reported through AddInner
	// (Dykstra sweeps, or iterations of nested linear solves).
	InnerIterations int
	// Residual is the last checkpoint residual (NaN before the first one).
	Residual float64
	// Residuals lists every checkpoint residual in order.
	Residuals []float64
}

// Checkpoint is passed to progress hooks.
type Checkpoint struct {
	Iteration int
	Residual  float64
}

// Option customizes a Controller.
type Option func(*Controller)

// WithTailPolicy sets the tail policy (default TailCheck).
func WithTailPolicy(p TailPolicy) Option {
	return func(c *Controller) { c.tail = p }
}

// WithCauchyNorm sets the norm used by ObserveIterate (default CauchyMaxAbs).
func WithCauchyNorm(n CauchyNorm) Option {
	return func(c *Controller) { c.norm = n }
}

// WithProgress registers a hook called at every checkpoint. Panics on nil.
func WithProgress(fn func(Checkpoint)) Option {
	if fn == nil {
		panic("convergence: WithProgress(nil)")
	}
	return func(c *Controller) { c.progress = fn }
}

// Controller tracks one solve. It is not safe for concurrent use.
type Controller struct {
	bounds   Bounds
	tail     TailPolicy
	norm     CauchyNorm
	progress func(Checkpoint)

	prev []float64
	rec  Record
	done bool
}

// New validates b and returns a fresh controller.
func New(b Bounds, opts ...Option) (*Controller, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{bounds: b, rec: Record{Residual: math.NaN()}}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Bounds returns the bounds the controller was built with.
func (c *Controller) Bounds() Bounds { return c.bounds }

// Tick completes one outer iteration and reports whether it is a checkpoint.
func (c *Controller) Tick() bool {
	c.rec.OuterIterations++
	it := c.rec.OuterIterations
	if it >= c.bounds.MaxIterations {
		c.done = true
	}
	if it%c.bounds.InnerIterations == 0 {
		return true
	}

	return c.tail == TailCheck && it == c.bounds.MaxIterations
}

// Done reports whether the solve must stop: converged, diverged, or out of iterations.
func (c *Controller) Done() bool { return c.done }

// AddInner accumulates nested iteration counts.
func (c *Controller) AddInner(k int) { c.rec.InnerIterations += k }

// Observe records a checkpoint residual and reports whether to stop.
func (c *Controller) Observe(residual float64) bool {
	c.rec.Residual = residual
	c.rec.Residuals = append(c.rec.Residuals, residual)
	if c.progress != nil {
		c.progress(Checkpoint{Iteration: c.rec.OuterIterations, Residual: residual})
	}
	switch {
	case math.IsNaN(residual) || math.IsInf(residual, 0):
		c.rec.Diverged = true
		c.done = true
	case residual < c.bounds.Threshold && c.rec.OuterIterations >= c.bounds.MinIterations:
		c.rec.Converged = true
		c.done = true
	}

	return c.done
}

// ObserveMarginal records the L1 deviation between got and want.
func (c *Controller) ObserveMarginal(got, want []float64) bool {
	return c.Observe(floats.Distance(got, want, 1))
}

// ObserveIterate records the Cauchy difference between x and the iterate of
// the previous checkpoint. The first call only stores x and never converges.
func (c *Controller) ObserveIterate(x []float64) bool {
	if c.prev == nil {
		c.prev = append([]float64(nil), x...)
		if c.progress != nil {
			c.progress(Checkpoint{Iteration: c.rec.OuterIterations, Residual: math.NaN()})
		}
		for _, v := range x {
			if math.IsNaN(v) {
				c.rec.Diverged = true
				c.done = true
			}
		}

		return c.done
	}
	r := Cauchy(c.norm, x, c.prev)
	copy(c.prev, x)

	return c.Observe(r)
}

// Record returns a copy of the outcome so far.
func (c *Controller) Record() Record {
	out := c.rec
	out.Residuals = append([]float64(nil), c.rec.Residuals...)

	return out
}

// Cauchy computes the difference between x and prev under norm.
// Matching infinities contribute zero.
func Cauchy(norm CauchyNorm, x, prev []float64) float64 {
	var acc, den float64
	for i := range x {
		d := x[i] - prev[i]
		if x[i] == prev[i] {
			d = 0
		}
		switch norm {
		case CauchyL1:
			acc += math.Abs(d)
		case CauchyRelativeL2:
			acc += d * d
			den += prev[i] * prev[i]
		default:
			acc = math.Max(acc, math.Abs(d))
		}
		if math.IsNaN(d) {
			return math.NaN()
		}
	}
	if norm == CauchyRelativeL2 {
		if den == 0 {
			return math.Sqrt(acc)
		}
		return math.Sqrt(acc / den)
	}

	return acc
}
