// SPDX-License-Identifier: MIT

// Package lvlot solves pairwise optimal transport problems between the groups
// of a multi-group dataset: time points, batches, or any categorical split of
// observations.
//
// What is in the box?
//
//	• Registry: partition a dataset by a group column into sub-problems
//	  (sequential, upper-triangular, star or explicit pairs)
//	• Cost resolution: features + ground cost, labeled custom matrices,
//	  observation-pairwise blocks, literal matrices, cost or kernel tagged
//	• Linear solver: log-domain Sinkhorn (balanced or unbalanced) and
//	  low-rank mirror descent with Dykstra projections
//	• Quadratic solver: Gromov-Wasserstein and fused GW by repeated
//	  linearization, full or low rank
//	• Convergence control: bounded iterations, checkpoints, divergence flag
//
// Non-convergence is never an error. Every solve returns a convergence.Record
// and the registry reports it through logs, metrics and events.
//
// Layout:
//
//	problem/       Registry, policies, Prepare / Solve / SolveAll
//	cost/          cost specifications and their resolution
//	geometry/      dense, point-cloud and factored costs, scaling
//	linear/        entropic and low-rank linear transport
//	quadratic/     (fused) Gromov-Wasserstein transport
//	convergence/   iteration bounds and the convergence controller
//	config/        typed, validated solver configuration (YAML)
//	costfn/        ground costs (sq_euclidean, euclidean, cosine, geodesic)
//	matrix/        dense and labeled matrices
//	dataset/       in-memory annotated dataset, CSV loader
//	synth/         deterministic synthetic datasets
//	events/        progress event bus
//	oterr/         error taxonomy
//	cmd/otsolve    command-line front end
//
// Quick example:
//
//	ds, _ := synth.Generate(3, 20, 2)
//	reg, _ := problem.Partition(ds, "group", problem.Sequential(), problem.Linear)
//	_ = reg.PrepareAll(problem.Spec{Linear: cost.Features{Key: "X"}})
//	_ = reg.SolveAll(ctx, config.Default())
//	p, _ := reg.Problem("0", "1")
//	plan := p.Plan()
//
//	go get github.com/katalvlaran/lvlot
package lvlot
