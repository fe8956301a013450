// SPDX-License-Identifier: MIT

// Package cost resolves cost specifications into aligned solver inputs.
//
// A Spec says where the cost between two groups of observations comes from:
//
//	Features     raw feature rows → point clouds; the ground cost is applied later
//	Precomputed  a named labeled matrix, realigned by label
//	Block        a sub-block of an N×N observation-pairwise matrix
//	Literal      a matrix supplied inline with its exact label sequences
//
// Resolve never mutates the store and always returns copies. Rows of a
// resolved input follow the source labels, columns follow the target labels.
package cost

import (
	"fmt"

	"github.com/katalvlaran/lvlot/matrix"
)

// Tag says how the numbers of a matrix-backed spec are to be read.
type Tag int

const (
	// TagCost means entries are costs C_ij.
	TagCost Tag = iota
	// TagKernel means entries are Gibbs kernel values K_ij = exp(-C_ij/ε).
	TagKernel
)

// String implements fmt.Stringer.
func (t Tag) String() string {
	switch t {
	case TagCost:
		return "cost"
	case TagKernel:
		return "kernel"
	}

	return fmt.Sprintf("Tag(%d)", int(t))
}

// Spec is the closed set of cost sources. The unexported method seals it.
type Spec interface {
	fmt.Stringer
	isSpec()
}

// Features reads rows of the feature array Key for both groups. CostFn names
// the ground cost (see costfn.Parse); "" means squared Euclidean.
type Features struct {
	Key    string
	CostFn string
}

// Precomputed reads the labeled custom matrix Key and reindexes it by label.
type Precomputed struct {
	Key string
	Tag Tag
}

// Block reads the observation-pairwise matrix Key and extracts the sub-block
// addressed by the dataset positions of the requested labels.
type Block struct {
	Key string
	Tag Tag
}

// Literal carries its own matrix. Rows and Cols must equal the requested label
// sequences exactly, in order.
type Literal struct {
	Matrix *matrix.Dense
	Rows   []string
	Cols   []string
	Tag    Tag
}

func (Features) isSpec()    {}
func (Precomputed) isSpec() {}
func (Block) isSpec()       {}
func (Literal) isSpec()     {}

func (s Features) String() string    { return fmt.Sprintf("features(%s,%s)", s.Key, s.CostFn) }
func (s Precomputed) String() string { return fmt.Sprintf("precomputed(%s,%s)", s.Key, s.Tag) }
func (s Block) String() string       { return fmt.Sprintf("block(%s,%s)", s.Key, s.Tag) }
func (s Literal) String() string {
	return fmt.Sprintf("literal(%dx%d,%s)", len(s.Rows), len(s.Cols), s.Tag)
}
