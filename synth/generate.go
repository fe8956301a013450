// SPDX-License-Identifier: MIT

package synth

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/katalvlaran/lvlot/costfn"
	"github.com/katalvlaran/lvlot/dataset"
	"github.com/katalvlaran/lvlot/matrix"
)

// ErrTooSmall indicates a non-positive group count, group size, or dimension.
// Dimension must be at least 2 (the curve uses two axes).
var ErrTooSmall = errors.New("synth: groups, size must be >= 1 and dim >= 2")

// Generate builds groups×perGroup observations in dim dimensions.
// Group labels are "0", "1", ...; observations are ordered group by group.
//
// Complexity: O(N·dim), plus O(N²·dim) when WithPairwise is set.
func Generate(groups, perGroup, dim int, opts ...Option) (*dataset.Dataset, error) {
	if groups < 1 || perGroup < 1 || dim < 2 {
		return nil, fmt.Errorf("Generate(%d,%d,%d): %w", groups, perGroup, dim, ErrTooSmall)
	}
	cfg := newConfig(opts...)
	n := groups * perGroup

	names := make([]string, n)
	labels := make([]string, n)
	x, _ := matrix.NewDense(n, dim)
	var g, k, d, i int
	for g = 0; g < groups; g++ {
		cx := float64(g) * cfg.drift
		cy := cfg.amplitude * math.Sin(float64(g))
		for k = 0; k < perGroup; k++ {
			i = g*perGroup + k
			names[i] = cfg.idFn(i)
			labels[i] = strconv.Itoa(g)
			row := x.RawRow(i)
			for d = 0; d < dim; d++ {
				row[d] = cfg.noiseSigma * cfg.rng.NormFloat64()
			}
			row[0] += cx
			row[1] += cy
		}
	}

	ds, err := dataset.New(names)
	if err != nil {
		return nil, fmt.Errorf("Generate: %w", err)
	}
	if err = ds.SetCategorical(cfg.groupKey, labels); err != nil {
		return nil, fmt.Errorf("Generate: %w", err)
	}
	if err = ds.SetFeatures(cfg.featureKey, x); err != nil {
		return nil, fmt.Errorf("Generate: %w", err)
	}
	if cfg.pairwiseKey != "" {
		pw, perr := costfn.SqEuclidean{}.Pairwise(x, x)
		if perr != nil {
			return nil, fmt.Errorf("Generate: %w", perr)
		}
		if err = ds.SetPairwise(cfg.pairwiseKey, pw); err != nil {
			return nil, fmt.Errorf("Generate: %w", err)
		}
	}
	if cfg.weightKey != "" {
		w := make([]float64, n)
		for i = range w {
			w[i] = 0.5 + cfg.rng.Float64()
		}
		if err = ds.SetNumeric(cfg.weightKey, w); err != nil {
			return nil, fmt.Errorf("Generate: %w", err)
		}
	}

	return ds, nil
}
