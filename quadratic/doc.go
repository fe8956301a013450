// SPDX-License-Identifier: MIT

// Package quadratic solves fused Gromov-Wasserstein transport between two
// structured point sets by repeated linearization.
//
// Each outer iteration linearizes the square-loss objective around the current
// plan P and hands the resulting cost to linear.Solve:
//
//	L = α·((Cx∘Cx)·p₁·1ᵀ + 1·((Cy∘Cy)·p₂)ᵀ − 2·Cx·P·Cyᵀ) + (1−α)·Cxy
//
// with p₁ = P·1 and p₂ = Pᵀ·1. Full-rank solves materialize L; low-rank solves
// keep it as a sum of factored terms and warm-start every nested solve from
// the previous factors.
//
// α = 1 is pure Gromov-Wasserstein and never touches the fused cost Cxy.
package quadratic
