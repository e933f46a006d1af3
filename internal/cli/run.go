package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/GoSim-25-26J-441/vaccination-sim/internal/batch"
	"github.com/GoSim-25-26J-441/vaccination-sim/internal/eventstore"
	"github.com/GoSim-25-26J-441/vaccination-sim/internal/report"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/utils"
)

// ComparisonFile is the Markdown summary written next to the per-scenario outputs
const ComparisonFile = "comparison.md"

type runOptions struct {
	days     int
	drain    bool
	outDir   string
	dbPath   string
	parallel int
	seed     int64
	rankBy   string
}

func newRunCommand(global *globalOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [scenario...]",
		Short: "Simulate scenarios and write their outputs",
		Long: `Simulate the named scenarios, or every catalog scenario when none is
named. Scenarios run in parallel; a failing one does not stop the others.
Outputs go to <out>/<scenario>/ and a comparison table to <out>/comparison.md.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd, global, opts, args)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.days, "days", "d", 0, "Operating days to simulate (0 uses each scenario's own)")
	f.BoolVar(&opts.drain, "drain", false, "Keep running past the horizon until the queue empties")
	f.StringVarP(&opts.outDir, "out", "o", "results", "Output directory")
	f.StringVar(&opts.dbPath, "db", "", "SQLite file to archive event logs into")
	f.IntVarP(&opts.parallel, "parallel", "p", 0, "Concurrent scenarios (0 means half the CPUs)")
	f.Int64Var(&opts.seed, "seed", 0, "Override every scenario's seed")
	f.StringVar(&opts.rankBy, "rank-by", string(batch.ObjectiveCostPerVaccinated), "Objective used to rank the scenarios")
	return cmd
}

func runScenarios(cmd *cobra.Command, global *globalOptions, opts *runOptions, names []string) error {
	objective, err := batch.NewObjective(opts.rankBy)
	if err != nil {
		return err
	}
	cat, err := global.loadCatalog()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		names = cat.Names()
	}

	var archive *eventstore.Store
	if opts.dbPath != "" {
		store, closeStore, err := openArchive(opts.dbPath)
		if err != nil {
			return err
		}
		defer closeStore()
		archive = store
	}

	jobs := make([]batch.Job, 0, len(names))
	for _, name := range names {
		job := batch.Job{Name: name, Days: opts.days, Drain: opts.drain}
		if cmd.Flags().Changed("seed") {
			if sc, err := cat.Lookup(name); err == nil {
				sc.Seed = opts.seed
				job.Scenario = &sc
			}
		}
		jobs = append(jobs, job)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	runner := batch.NewRunner(cat, opts.parallel)
	outcomes := runner.Run(ctx, jobs)

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(errOut, "%s: FAILED: %v\n", o.Name, o.Err)
			continue
		}
		dir, err := report.WriteScenarioOutputs(opts.outDir, o.Name, o.Result, o.Metrics, o.Scenario.MinutesPerDay())
		if err != nil {
			return fmt.Errorf("write outputs for %s: %w", o.Name, err)
		}
		if archive != nil {
			runID := utils.GenerateRunID()
			if err := archive.SaveRun(ctx, runID, o.Name, o.Result.Records); err != nil {
				return fmt.Errorf("archive %s: %w", o.Name, err)
			}
			fmt.Fprintf(out, "%s: archived as %s\n", o.Name, runID)
		}
		fmt.Fprintf(out, "%s: %d events, stop=%s, %s -> %s\n",
			o.Name, len(o.Result.Records), o.Result.StopReason, utils.FormatDuration(o.Elapsed), dir)
	}

	table := report.ComparisonTable(batch.MetricsOf(outcomes))
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(opts.outDir, ComparisonFile), []byte(table), 0o644); err != nil {
		return fmt.Errorf("write comparison: %w", err)
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, table)

	if ranked := batch.Rank(outcomes, objective); len(ranked) > 0 {
		fmt.Fprintf(out, "\nRanking by %s:\n", objective.Name())
		for _, r := range ranked {
			fmt.Fprintf(out, "%d. %s (%.2f)\n", r.Rank, r.Name, r.Score)
		}
	}

	if failed := batch.Failed(outcomes); len(failed) > 0 {
		return fmt.Errorf("%d of %d scenarios failed", len(failed), len(outcomes))
	}
	return nil
}

// openArchive opens the event store and makes sure it is closed exactly once,
// either by the returned func or at process exit.
func openArchive(path string) (*eventstore.Store, func(), error) {
	store, err := eventstore.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	var once sync.Once
	closeStore := func() {
		once.Do(func() { _ = store.Close() })
	}
	atexit.Register(closeStore)
	return store, closeStore, nil
}
