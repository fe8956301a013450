// SPDX-License-Identifier: MIT

// Command otsolve partitions a multi-group dataset into pairwise transport
// problems, solves them and prints one line per sub-problem.
//
//	otsolve solve --csv cells.csv --group day --policy sequential
//	otsolve solve --synth-groups 3 --synth-size 20 --kind quadratic --alpha 0.5
//	otsolve config > solver.yaml
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "otsolve",
		Short:         "Solve pairwise optimal transport problems between dataset groups",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSolveCmd(), newConfigCmd())

	return root
}
