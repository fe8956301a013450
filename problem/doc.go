// SPDX-License-Identifier: MIT

// Package problem decomposes a multi-group dataset into pairwise transport
// sub-problems and drives their preparation and solution.
//
// Partition snapshots the group labels of a categorical column and
// enumerates sub-problem keys with a Policy. Prepare resolves the cost
// specifications of one key against the current label sequences and stores
// the aligned inputs. Solve runs the linear or quadratic solver with a
// config.Solver and records the plan and convergence record.
//
// Sub-problems share no numeric state. SolveAll runs distinct keys in
// parallel; touching a key that is being prepared or solved fails with
// oterr.ErrState. Not converging is never an error: it is reported in the
// record, logged at warn level, counted and published as
// events.KindNotConverged.
package problem
