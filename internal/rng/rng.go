// SPDX-License-Identifier: MIT

// Package rng - deterministic random streams shared by initializers and generators.
//
// Goals:
//   - Determinism: same seed ⇒ identical results across platforms.
//   - A single RNG factory; no time-based sources hidden anywhere.
//
// Concurrency:
//   - math/rand.Rand is NOT goroutine-safe. Do not share a *rand.Rand across goroutines.
//   - Use Derive to create independent streams for parallel sub-problems or restarts.
package rng

import "math/rand"

// DefaultSeed is the fixed seed used when callers pass seed==0.
const DefaultSeed int64 = 1

// New returns a deterministic *rand.Rand.
// Policy: seed==0 ⇒ DefaultSeed; otherwise the provided seed verbatim.
func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = DefaultSeed
	}

	return rand.New(rand.NewSource(seed))
}

// Mix folds a parent seed and a stream identifier into a new 64-bit seed
// with a SplitMix64 finalizer, so nearby inputs give unrelated outputs.
func Mix(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return int64(x)
}

// Derive creates an independent stream from seed and a stream identifier.
// Initializers use it to keep their random draws apart under one seed.
func Derive(seed int64, stream uint64) *rand.Rand {
	if seed == 0 {
		seed = DefaultSeed
	}

	return rand.New(rand.NewSource(Mix(seed, stream)))
}

// StringStream hashes s (FNV-1a) into a stream identifier for Derive.
func StringStream(s string) uint64 {
	const (
		offset = 14695981039346656037
		prime  = 1099511628211
	)
	h := uint64(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}

	return h
}
