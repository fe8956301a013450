// SPDX-License-Identifier: MIT

// Package observability exposes solver metrics and tracing spans.
package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Outcome labels for SolvesTotal.
const (
	OutcomeConverged    = "converged"
	OutcomeNotConverged = "not_converged"
	OutcomeDiverged     = "diverged"
	OutcomeFailed       = "failed"
)

const solvesTotalName = "ot_solves_total"

// SolverCollector exposes registry-level Prometheus metrics.
type SolverCollector struct {
	gatherer prometheus.Gatherer

	SolvesTotal       *prometheus.CounterVec
	NotConvergedTotal prometheus.Counter
	OuterIterations   *prometheus.HistogramVec
	SolveDuration     *prometheus.HistogramVec
	PreparedProblems  prometheus.Gauge
}

// NewSolverCollector registers solver metrics against reg (default registerer
// when nil). Collectors already registered under the same name are reused.
func NewSolverCollector(reg prometheus.Registerer) (*SolverCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	solves, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: solvesTotalName,
		Help: "Sub-problem solves by problem kind and outcome.",
	}, []string{"kind", "outcome"}), "ot_solves_total")
	if err != nil {
		return nil, err
	}

	notConverged, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ot_not_converged_total",
		Help: "Solves that stopped at their iteration cap or diverged.",
	}), "ot_not_converged_total")
	if err != nil {
		return nil, err
	}

	iterations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ot_outer_iterations",
		Help:    "Outer iterations performed per solve.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"kind"}), "ot_outer_iterations")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ot_solve_duration_seconds",
		Help:    "Wall time of sub-problem solves.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
	}, []string{"kind"}), "ot_solve_duration_seconds")
	if err != nil {
		return nil, err
	}

	prepared, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ot_prepared_problems",
		Help: "Sub-problems currently holding resolved inputs.",
	}), "ot_prepared_problems")
	if err != nil {
		return nil, err
	}

	return &SolverCollector{
		gatherer:          gatherer,
		SolvesTotal:       solves,
		NotConvergedTotal: notConverged,
		OuterIterations:   iterations,
		SolveDuration:     duration,
		PreparedProblems:  prepared,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *SolverCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Outcomes gathers SolvesTotal and sums it per outcome label across kinds.
// Every outcome is present in the result, zero when never observed.
func (c *SolverCollector) Outcomes() (map[string]float64, error) {
	out := map[string]float64{
		OutcomeConverged: 0, OutcomeNotConverged: 0, OutcomeDiverged: 0, OutcomeFailed: 0,
	}
	if c == nil || c.gatherer == nil {
		return out, nil
	}
	families, err := c.gatherer.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather solver metrics: %w", err)
	}
	for _, mf := range families {
		if mf.GetName() != solvesTotalName {
			continue
		}
		for _, m := range mf.GetMetric() {
			out[labelValue(m, "outcome")] += m.GetCounter().GetValue()
		}
	}

	return out, nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

// ObserveSolve records one finished solve. A nil collector is a no-op.
func (c *SolverCollector) ObserveSolve(kind, outcome string, outer int, d time.Duration) {
	if c == nil {
		return
	}
	c.SolvesTotal.WithLabelValues(kind, outcome).Inc()
	if outcome == OutcomeNotConverged || outcome == OutcomeDiverged {
		c.NotConvergedTotal.Inc()
	}
	if outcome != OutcomeFailed {
		c.OuterIterations.WithLabelValues(kind).Observe(float64(outer))
	}
	c.SolveDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// AddPrepared moves the prepared-problems gauge by delta.
func (c *SolverCollector) AddPrepared(delta int) {
	if c == nil {
		return
	}
	c.PreparedProblems.Add(float64(delta))
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
