// SPDX-License-Identifier: MIT

package problem

import "fmt"

// Key identifies a sub-problem by its ordered pair of group labels.
type Key struct {
	Source string
	Target string
}

// String implements fmt.Stringer.
func (k Key) String() string { return fmt.Sprintf("(%s, %s)", k.Source, k.Target) }

// Kind selects the solver family of a registry.
type Kind int

const (
	// Linear problems transport under one cost between the two groups.
	Linear Kind = iota
	// Quadratic problems match intra-group structures, optionally fused
	// with a linear cost.
	Quadratic
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Linear:
		return "linear"
	case Quadratic:
		return "quadratic"
	}

	return "unknown"
}

// State is the lifecycle stage of a sub-problem.
type State int

const (
	// Unprepared sub-problems have no resolved inputs.
	Unprepared State = iota
	// Prepared sub-problems hold aligned inputs and no result.
	Prepared
	// Solved sub-problems hold a plan and a convergence record.
	Solved
	// Failed sub-problems hold the error of their last solve.
	Failed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Unprepared:
		return "unprepared"
	case Prepared:
		return "prepared"
	case Solved:
		return "solved"
	case Failed:
		return "failed"
	}

	return "unknown"
}
