// SPDX-License-Identifier: MIT

package problem

import (
	"github.com/google/uuid"

	"github.com/katalvlaran/lvlot/events"
	"github.com/katalvlaran/lvlot/internal/logging"
	"github.com/katalvlaran/lvlot/internal/observability"
)

// Option customizes a Registry. Constructors panic on nonsensical input.
type Option func(*settings)

type settings struct {
	log         logging.Logger
	bus         *events.Bus
	metrics     *observability.SolverCollector
	parallelism int
	release     bool
	runID       uuid.UUID
}

func newSettings(opts ...Option) settings {
	s := settings{log: logging.Noop(), runID: uuid.New()}
	for _, opt := range opts {
		opt(&s)
	}

	return s
}

// WithLogger sets the logger (default: no logging). Panics on nil.
func WithLogger(l logging.Logger) Option {
	if l == nil {
		panic("problem: WithLogger(nil)")
	}
	return func(s *settings) { s.log = l }
}

// WithEvents publishes progress to bus. Panics on nil.
func WithEvents(bus *events.Bus) Option {
	if bus == nil {
		panic("problem: WithEvents(nil)")
	}
	return func(s *settings) { s.bus = bus }
}

// WithMetrics records solves on c. Panics on nil.
func WithMetrics(c *observability.SolverCollector) Option {
	if c == nil {
		panic("problem: WithMetrics(nil)")
	}
	return func(s *settings) { s.metrics = c }
}

// WithParallelism bounds SolveAll workers when the config does not
// (0 means GOMAXPROCS). Panics on n < 0.
func WithParallelism(n int) Option {
	if n < 0 {
		panic("problem: WithParallelism(n<0)")
	}
	return func(s *settings) { s.parallelism = n }
}

// WithReleaseInputs drops resolved inputs as soon as a plan is produced.
func WithReleaseInputs() Option {
	return func(s *settings) { s.release = true }
}

// WithRunID tags every event with id (default: a fresh random id).
func WithRunID(id uuid.UUID) Option {
	return func(s *settings) { s.runID = id }
}
