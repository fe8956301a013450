// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/montanaflynn/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/lvlot/config"
	"github.com/katalvlaran/lvlot/cost"
	"github.com/katalvlaran/lvlot/dataset"
	"github.com/katalvlaran/lvlot/internal/logging"
	"github.com/katalvlaran/lvlot/internal/observability"
	"github.com/katalvlaran/lvlot/problem"
	"github.com/katalvlaran/lvlot/synth"
)

type solveFlags struct {
	configPath string
	csvPath    string
	groupKey   string
	policy     string
	kind       string
	costFn     string
	alpha      float64
	marginal   string
	logLevel   string
	logFormat  string

	synthGroups int
	synthSize   int
	synthDim    int
	seed        int64
}

func newSolveCmd() *cobra.Command {
	var f solveFlags
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Partition, prepare and solve every sub-problem",
		Long: `Load a dataset from --csv (first column observation ids, --group a
categorical column, every other column numeric) or generate one with
--synth-groups, partition it by --group and solve every sub-problem with the
configuration read from --config (defaults when empty).

Policies: sequential, triu, star:<reference>.
Kinds: linear (feature cost between groups) and quadratic (feature cost within
groups, fused with the linear cost when --alpha < 1).

The report lists every sub-problem, cost statistics over the solved ones and
the solve counters per outcome.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSolve(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "YAML solver configuration")
	fl.StringVar(&f.csvPath, "csv", "", "CSV dataset (obs_id,<columns...>)")
	fl.StringVar(&f.groupKey, "group", synth.DefaultGroupKey, "categorical column holding group labels")
	fl.StringVar(&f.policy, "policy", "sequential", "pair policy: sequential, triu, star:<reference>")
	fl.StringVar(&f.kind, "kind", "linear", "problem kind: linear or quadratic")
	fl.StringVar(&f.costFn, "cost", "", "ground cost: sq_euclidean, euclidean, cosine, geodesic[:k]")
	fl.Float64Var(&f.alpha, "alpha", 1, "structural weight of quadratic problems, in (0, 1]")
	fl.StringVar(&f.marginal, "marginal", "", "numeric column used as observation weights")
	fl.StringVar(&f.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	fl.StringVar(&f.logFormat, "log-format", "text", "log format: text or json")
	fl.IntVar(&f.synthGroups, "synth-groups", 3, "groups of the synthetic dataset (ignored with --csv)")
	fl.IntVar(&f.synthSize, "synth-size", 20, "observations per synthetic group")
	fl.IntVar(&f.synthDim, "synth-dim", 2, "feature dimension of the synthetic dataset")
	fl.Int64Var(&f.seed, "seed", 0, "seed of the synthetic dataset")

	return cmd
}

func runSolve(ctx context.Context, out, errOut io.Writer, f solveFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logging.New(logging.Config{Level: f.logLevel, Format: f.logFormat, Output: errOut})

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	kind, err := parseKind(f.kind)
	if err != nil {
		return err
	}
	policy, err := parsePolicy(f.policy)
	if err != nil {
		return err
	}
	ds, featureKey, err := loadDataset(f)
	if err != nil {
		return err
	}

	metrics, err := observability.NewSolverCollector(prometheus.NewRegistry())
	if err != nil {
		return err
	}
	reg, err := problem.Partition(ds, f.groupKey, policy, kind,
		problem.WithLogger(log), problem.WithMetrics(metrics), problem.WithReleaseInputs())
	if err != nil {
		return err
	}

	features := cost.Features{Key: featureKey, CostFn: f.costFn}
	spec := problem.Spec{SourceMarginal: f.marginal, TargetMarginal: f.marginal}
	switch kind {
	case problem.Linear:
		spec.Linear = features
	case problem.Quadratic:
		spec.SourceStructure, spec.TargetStructure, spec.Alpha = features, features, f.alpha
		if f.alpha < 1 {
			spec.Linear = features
		}
	}
	if err = reg.PrepareAll(spec); err != nil {
		return err
	}
	solveErr := reg.SolveAll(ctx, cfg)

	if err = report(out, reg.Summaries()); err != nil {
		return errors.Join(solveErr, err)
	}
	if err = reportOutcomes(out, metrics); err != nil {
		return errors.Join(solveErr, err)
	}

	return solveErr
}

func loadDataset(f solveFlags) (*dataset.Dataset, string, error) {
	if f.groupKey == "" {
		return nil, "", errors.New("--group must not be empty")
	}
	if f.csvPath == "" {
		opts := []synth.Option{synth.WithGroupKey(f.groupKey)}
		if f.seed != 0 {
			opts = append(opts, synth.WithSeed(f.seed))
		}
		ds, err := synth.Generate(f.synthGroups, f.synthSize, f.synthDim, opts...)
		return ds, synth.DefaultFeatureKey, err
	}
	file, err := os.Open(f.csvPath)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()
	ds, err := dataset.LoadCSV(file, dataset.CSVOptions{Categorical: []string{f.groupKey}})

	return ds, "X", err
}

func parseKind(s string) (problem.Kind, error) {
	switch s {
	case "linear":
		return problem.Linear, nil
	case "quadratic":
		return problem.Quadratic, nil
	}

	return 0, fmt.Errorf("unknown kind %q (want linear or quadratic)", s)
}

func parsePolicy(s string) (problem.Policy, error) {
	switch {
	case s == "sequential":
		return problem.Sequential(), nil
	case s == "triu":
		return problem.Triu(), nil
	case strings.HasPrefix(s, "star:") && len(s) > len("star:"):
		return problem.Star(strings.TrimPrefix(s, "star:")), nil
	}

	return nil, fmt.Errorf("unknown policy %q (want sequential, triu or star:<reference>)", s)
}

// report prints one row per sub-problem, then cost statistics over the solved ones.
func report(out io.Writer, rows []problem.Summary) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tTARGET\tSTATE\tCONVERGED\tOUTER\tINNER\tRESIDUAL\tCOST")
	var costs stats.Float64Data
	for _, s := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%v\t%d\t%d\t%.3g\t%.6g\n",
			s.Key.Source, s.Key.Target, s.State, s.Converged, s.OuterIterations, s.InnerIterations, s.Residual, s.Cost)
		if s.State == problem.Solved {
			costs = append(costs, s.Cost)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(costs) == 0 {
		return nil
	}
	mean, _ := costs.Mean()
	median, _ := costs.Median()
	lo, _ := costs.Min()
	hi, _ := costs.Max()
	_, err := fmt.Fprintf(out, "solved %d/%d  cost mean=%.6g median=%.6g min=%.6g max=%.6g\n",
		len(costs), len(rows), mean, median, lo, hi)

	return err
}

// reportOutcomes prints the solve counters the registry recorded in metrics.
func reportOutcomes(out io.Writer, metrics *observability.SolverCollector) error {
	counts, err := metrics.Outcomes()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "outcomes converged=%d not_converged=%d diverged=%d failed=%d\n",
		int(counts[observability.OutcomeConverged]), int(counts[observability.OutcomeNotConverged]),
		int(counts[observability.OutcomeDiverged]), int(counts[observability.OutcomeFailed]))

	return err
}
