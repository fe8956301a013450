// SPDX-License-Identifier: MIT

// Package synth generates deterministic multi-group datasets.
//
// Groups model snapshots of a population that drifts along a smooth curve:
// group t has its centroid at t·drift along the first axis plus
// amplitude·sin(t) along the second, and its observations scatter around
// that centroid with Gaussian noise. The result is a *dataset.Dataset with
// a categorical group column, a feature array, and optionally an
// observation-pairwise squared-distance matrix and a numeric weight column.
//
// Same options and seed ⇒ byte-identical dataset.
package synth
