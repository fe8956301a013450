// SPDX-License-Identifier: MIT

// Package convergence is the iteration controller shared by every solver.
//
// A Controller owns the iteration bookkeeping of one solve:
//
//   - Bounds fix the minimum and maximum number of outer iterations, the
//     checkpoint period (InnerIterations) and the stopping threshold.
//   - Tick advances the outer counter and says whether the current
//     iteration is a checkpoint.
//   - At a checkpoint the solver reports a residual: a marginal deviation
//     (ObserveMarginal), a Cauchy difference between consecutive iterates
//     (ObserveIterate), or a raw value (Observe).
//   - Record returns the outcome. Not converging is a normal outcome;
//     a NaN or infinite residual stops the solve with Diverged set.
//
// What the residual measures is up to the solver. Full-rank Sinkhorn reports
// the marginal deviation. Low-rank mirror descent is always balanced and
// reports the Jeffreys change of its factors between checkpoints,
// (1/γ²)·(J(Q, Q′) + J(R, R′) + J(g, g′)), so in that mode Record.Residual is
// not a marginal deviation. The quadratic solver reports the relative
// Frobenius change of its plan.
//
// Two behaviors are policies rather than constants: whether an extra
// checkpoint happens at MaxIterations when it is not a multiple of
// InnerIterations (TailPolicy), and the norm used for Cauchy differences
// (CauchyNorm).
package convergence
