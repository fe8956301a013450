// SPDX-License-Identifier: MIT

package linear

import (
	"github.com/katalvlaran/lvlot/convergence"
	"github.com/katalvlaran/lvlot/oterr"
)

// FullRank selects the full-rank Sinkhorn solver.
const FullRank = -1

// Initializer names the low-rank factor initialization.
type Initializer string

// Supported initializers. Full-rank solves accept only InitDefault.
const (
	InitDefault           Initializer = ""
	InitRank2             Initializer = "rank2"
	InitRandom            Initializer = "random"
	InitKMeans            Initializer = "k-means"
	InitGeneralizedKMeans Initializer = "generalized-k-means"
)

// ParseInitializer validates a name. "" and "default" map to InitDefault.
func ParseInitializer(s string) (Initializer, error) {
	switch Initializer(s) {
	case "", "default":
		return InitDefault, nil
	case InitRank2, InitRandom, InitKMeans, InitGeneralizedKMeans:
		return Initializer(s), nil
	}

	return "", oterr.Errorf("linear.ParseInitializer", oterr.ErrConfiguration, "unknown initializer %q", s)
}

// InitializerOptions tune the low-rank initializers.
type InitializerOptions struct {
	// Seed drives InitRandom and the k-means++ seeding (0 → default seed).
	Seed int64
	// MaxIterations bounds Lloyd and generalized k-means iterations.
	MaxIterations int
	// Threshold stops Lloyd (centroid shift) and generalized k-means (factor change).
	Threshold float64
	// Gamma is the generalized k-means mirror-descent step.
	Gamma float64
}

// DefaultInitializerOptions returns the initializer defaults.
func DefaultInitializerOptions() InitializerOptions {
	return InitializerOptions{MaxIterations: 100, Threshold: 1e-6, Gamma: 10}
}

// Options configure Solve.
type Options struct {
	// Epsilon is the entropic regularization. 0 is allowed only when Rank > 0.
	Epsilon float64
	// Rank is FullRank (-1) or a positive low-rank factor count.
	Rank int
	// TauA and TauB in (0, 1] relax the source and target marginals when < 1.
	TauA, TauB float64

	// Bounds control the outer iterations. For full rank an outer iteration is one
	// Sinkhorn sweep; for low rank it is one mirror-descent step.
	Bounds convergence.Bounds
	// TailPolicy and CauchyNorm resolve the checkpoint policies.
	TailPolicy convergence.TailPolicy
	CauchyNorm convergence.CauchyNorm

	// Initializer and InitOptions select the low-rank starting factors.
	Initializer Initializer
	InitOptions InitializerOptions

	// Gamma is the low-rank mirror-descent step; GammaRescale divides it by
	// the largest squared gradient entry at every step.
	Gamma        float64
	GammaRescale bool

	// DykstraMaxIterations and DykstraThreshold bound each low-rank projection.
	DykstraMaxIterations int
	DykstraThreshold     float64

	// Warm, when low rank with matching shape and rank, replaces the initializer.
	Warm *Plan

	// Progress is called at every checkpoint.
	Progress func(convergence.Checkpoint)
}

// DefaultOptions returns full-rank options with ε = 0.05 and balanced marginals.
func DefaultOptions() Options {
	return Options{
		Epsilon: 0.05,
		Rank:    FullRank,
		TauA:    1,
		TauB:    1,
		Bounds: convergence.Bounds{
			MinIterations:   0,
			MaxIterations:   2000,
			InnerIterations: 10,
			Threshold:       1e-3,
		},
		InitOptions:          DefaultInitializerOptions(),
		Gamma:                10,
		GammaRescale:         true,
		DykstraMaxIterations: 2000,
		DykstraThreshold:     1e-9,
	}
}

// IsLowRank reports whether o selects the low-rank solver.
func (o Options) IsLowRank() bool { return o.Rank > 0 }

// IsBalanced reports whether both marginals are hard constraints.
func (o Options) IsBalanced() bool { return o.TauA == 1 && o.TauB == 1 }
