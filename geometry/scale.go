// SPDX-License-Identifier: MIT

package geometry

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/katalvlaran/lvlot/matrix"
	"github.com/katalvlaran/lvlot/oterr"
)

// Scaling names a cost normalization: the cost is divided by the statistic.
type Scaling string

// Supported scalings.
const (
	ScaleNone   Scaling = "none"
	ScaleMean   Scaling = "mean"
	ScaleMedian Scaling = "median"
	ScaleMax    Scaling = "max"
)

// ParseScaling validates s. "" means ScaleNone.
func ParseScaling(s string) (Scaling, error) {
	switch Scaling(s) {
	case "":
		return ScaleNone, nil
	case ScaleNone, ScaleMean, ScaleMedian, ScaleMax:
		return Scaling(s), nil
	}

	return "", oterr.Errorf("geometry.ParseScaling", oterr.ErrConfiguration, "unknown cost scaling %q", s)
}

// Rescale returns g divided by the requested statistic of its entries and the
// factor applied. A zero or non-finite statistic leaves g unchanged (factor 1).
func Rescale(g Geometry, s Scaling) (Geometry, float64, error) {
	if s == ScaleNone || s == "" {
		return g, 1, nil
	}
	stat, err := statistic(g, s)
	if err != nil {
		return nil, 0, err
	}
	if stat == 0 || math.IsNaN(stat) || math.IsInf(stat, 0) {
		return g, 1, nil
	}
	factor := 1 / stat

	return g.Scaled(factor), factor, nil
}

func statistic(g Geometry, s Scaling) (float64, error) {
	const op = "geometry.Rescale"
	// Mean of a factored cost needs no materialization: 1ᵀ·A·Bᵀ·1 / (n·m).
	if f, ok := g.(*Factored); ok && s == ScaleMean {
		n, m := f.Shape()
		v, err := f.Apply(onesColumn(m))
		if err != nil {
			return 0, err
		}
		total, _ := stats.Sum(v.RawData())

		return total / float64(n*m), nil
	}

	c, err := g.Cost()
	if err != nil {
		return 0, err
	}
	data := stats.Float64Data(c.RawData())
	var stat float64
	switch s {
	case ScaleMean:
		stat, err = data.Mean()
	case ScaleMedian:
		stat, err = data.Median()
	case ScaleMax:
		stat, err = data.Max()
	default:
		return 0, oterr.Errorf(op, oterr.ErrConfiguration, "unknown cost scaling %q", s)
	}
	if err != nil {
		return 0, oterr.Errorf(op, oterr.ErrShape, "%v", err)
	}

	return stat, nil
}

// onesColumn returns the m×1 all-ones matrix.
func onesColumn(m int) *matrix.Dense {
	out, _ := matrix.NewDense(m, 1)
	_ = out.Fill(1)

	return out
}
