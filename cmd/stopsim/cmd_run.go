package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"stopsim/internal/collector"
	"stopsim/internal/config"
	"stopsim/internal/engine"
	"stopsim/internal/progress"
	"stopsim/internal/ratelimit"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate the look-then-leap policy and report statistics",
		Long: `Run simulates many random sequences, applies the look-then-leap policy to
each one and reports how often it picked the best item.

Values in --config are used unless a flag is given explicitly. The command
exits with status 1 when a configured expectation fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyRunFlags(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runSimulation(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, newLogger(cmd, cfg))
		},
	}

	cmd.Flags().Int("items", config.DefaultItems, "number of items per sequence")
	cmd.Flags().Int("simulations", config.DefaultSimulations, "number of simulated sequences")
	cmd.Flags().Float64("look-ratio", config.DefaultLookRatio, "fraction of items observed before choosing (0-1)")
	cmd.Flags().Float64("threshold", config.DefaultThresholdRatio, "accept an item worth at least this fraction of the look phase best")
	cmd.Flags().Uint64("seed", 0, "random seed (0 = random)")
	cmd.Flags().Int("workers", 0, "concurrent workers (0 = GOMAXPROCS)")
	cmd.Flags().Int("histogram-bins", collector.DefaultValueBins, "value histogram bins (0 = no histograms)")
	return cmd
}

// applyRunFlags overrides cfg with the flags the user set explicitly.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("items") {
		cfg.Simulation.Items, _ = flags.GetInt("items")
	}
	if flags.Changed("simulations") {
		cfg.Simulation.Simulations, _ = flags.GetInt("simulations")
	}
	if flags.Changed("look-ratio") {
		cfg.Simulation.LookRatio, _ = flags.GetFloat64("look-ratio")
	}
	if flags.Changed("threshold") {
		cfg.Simulation.ThresholdRatio, _ = flags.GetFloat64("threshold")
	}
	applyExecutionFlags(cmd, cfg)
	if flags.Changed("histogram-bins") {
		cfg.Output.HistogramBins, _ = flags.GetInt("histogram-bins")
	}
}

// applyExecutionFlags handles the flags shared by run and sweep.
func applyExecutionFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Execution.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("workers") {
		cfg.Execution.Workers, _ = flags.GetInt("workers")
	}
}

// runSimulation runs one simulation and writes its report to out. Progress
// and logs go to errOut.
func runSimulation(ctx context.Context, out, errOut io.Writer, cfg *config.Config, log *slog.Logger) error {
	tracker := collector.NewTracker()
	prog := progress.NewProgress(tracker, cfg.Output.Quiet)
	prog.SetOutput(errOut)

	eng := engine.New(engine.Options{
		Workers:   cfg.Execution.Workers,
		ChunkSize: cfg.Execution.ChunkSize,
		Seed:      cfg.Execution.Seed,
		Reporter:  ratelimit.NewReporter(tracker, cfg.Execution.ProgressRate),
		Logger:    log,
	})

	p := cfg.Simulation
	prog.Printf("Simulating %s sequences of %s items (look %s, threshold %s)",
		collector.FormatNumber(p.Simulations), collector.FormatNumber(p.Items),
		collector.FormatPercent(p.LookRatio), collector.FormatPercent(p.ThresholdRatio))

	prog.Start()
	set, err := eng.Run(ctx, p)
	tracker.Close()
	prog.Stop()
	if err != nil {
		return err
	}

	summary, err := collector.Summarize(set)
	if err != nil {
		return fmt.Errorf("summarizing: %w", err)
	}

	report := &collector.Report{
		Params:  set.Params(),
		Seed:    set.Seed(),
		Elapsed: tracker.Duration(),
		Summary: summary,
	}
	if cfg.Output.HistogramBins > 0 {
		if report.Histograms, err = collector.ComputeHistograms(set, cfg.Output.HistogramBins); err != nil {
			return fmt.Errorf("computing histograms: %w", err)
		}
	}
	results, err := report.CheckExpectations(cfg.Expectations)
	if err != nil {
		return err
	}

	log.Info("simulation complete",
		"trials", summary.Trials,
		"seed", report.Seed,
		"success_rate", summary.SuccessRate,
		"elapsed", report.Elapsed)

	if cfg.Output.Format == "json" {
		if err := collector.FormatJSON(out, report); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	} else {
		collector.FormatText(out, report)
	}

	if results != nil && !results.Passed {
		for _, v := range results.Violations() {
			log.Warn("expectation failed", "name", v.Name, "expected", v.Expected, "actual", v.Actual)
		}
		return errExpectationFailed
	}
	return nil
}
