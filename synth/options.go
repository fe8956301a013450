// SPDX-License-Identifier: MIT
// Package: lvlot/synth
//
// options.go - functional options for the generator.
//
// Contract (strict):
//   • Options are functional (type Option func(*config)).
//   • Option constructors VALIDATE and PANIC on meaningless inputs.
//     Generate itself never panics; it returns errors.
//   • Determinism is explicit: seeding is done via WithSeed or WithRand.

package synth

import (
	"math/rand"
)

// Option customizes Generate by mutating a config before generation begins.
type Option func(*config)

// WithSeed creates a deterministic RNG with the given seed.
func WithSeed(seed int64) Option {
	return func(c *config) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand provides an explicit RNG. Panics on nil.
func WithRand(r *rand.Rand) Option {
	if r == nil {
		panic("synth: WithRand(nil)")
	}
	return func(c *config) {
		c.rng = r
	}
}

// WithIDScheme sets the observation naming function (global index -> name).
// Panics on nil.
func WithIDScheme(fn func(int) string) Option {
	if fn == nil {
		panic("synth: WithIDScheme(nil)")
	}
	return func(c *config) {
		c.idFn = fn
	}
}

// WithGroupKey names the categorical group column. Panics on "".
func WithGroupKey(key string) Option {
	if key == "" {
		panic("synth: WithGroupKey(\"\")")
	}
	return func(c *config) {
		c.groupKey = key
	}
}

// WithFeatureKey names the feature array. Panics on "".
func WithFeatureKey(key string) Option {
	if key == "" {
		panic("synth: WithFeatureKey(\"\")")
	}
	return func(c *config) {
		c.featureKey = key
	}
}

// WithDrift sets the per-group centroid shift along the first axis.
func WithDrift(d float64) Option {
	return func(c *config) {
		c.drift = d
	}
}

// WithAmplitude sets the curve amplitude along the second axis. Panics if A < 0.
func WithAmplitude(A float64) Option {
	if A < 0 {
		panic("synth: WithAmplitude(A<0)")
	}
	return func(c *config) {
		c.amplitude = A
	}
}

// WithNoise sets the Gaussian scatter around each centroid. Panics if sigma < 0.
func WithNoise(sigma float64) Option {
	if sigma < 0 {
		panic("synth: WithNoise(sigma<0)")
	}
	return func(c *config) {
		c.noiseSigma = sigma
	}
}

// WithPairwise also stores the N×N squared-distance matrix under key.
// Panics on "".
func WithPairwise(key string) Option {
	if key == "" {
		panic("synth: WithPairwise(\"\")")
	}
	return func(c *config) {
		c.pairwiseKey = key
	}
}

// WithWeights also stores a positive numeric column under key, usable as
// per-observation marginal mass. Panics on "".
func WithWeights(key string) Option {
	if key == "" {
		panic("synth: WithWeights(\"\")")
	}
	return func(c *config) {
		c.weightKey = key
	}
}
