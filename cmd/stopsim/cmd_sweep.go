package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"stopsim/internal/collector"
	"stopsim/internal/config"
	"stopsim/internal/engine"
	"stopsim/internal/grid"
	"stopsim/internal/progress"
	"stopsim/internal/ratelimit"
	"stopsim/internal/sweep"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Find the best look ratio for each threshold",
		Long: `Sweep runs the simulation for every combination of look ratio and threshold
and reports, per threshold, the look ratio that picked the best item most often.

The grid comes from --grid (a CSV or JSON file with look_ratio, threshold_ratio
and optional items columns) or from the look ratio range crossed with
--thresholds. All points share one seed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := applySweepFlags(cmd, cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			g, err := cfg.SweepGrid()
			if err != nil {
				return err
			}

			log := newLogger(cmd, cfg)
			tracker := collector.NewTracker()
			prog := progress.NewProgress(tracker, cfg.Output.Quiet)
			prog.SetOutput(cmd.ErrOrStderr())

			prog.Start()
			res, err := sweep.Run(cmd.Context(), cfg.Simulation, g, sweep.Options{
				Engine: engine.Options{
					Workers:   cfg.Execution.Workers,
					ChunkSize: cfg.Execution.ChunkSize,
					Seed:      cfg.Execution.Seed,
					Reporter:  ratelimit.NewReporter(tracker, cfg.Execution.ProgressRate),
					Logger:    log,
				},
				Progress: prog,
			})
			tracker.Close()
			prog.Stop()
			if err != nil {
				return err
			}

			log.Info("sweep complete", "points", len(res.Rows), "seed", res.Seed, "elapsed", res.Elapsed)

			if cfg.Output.Format == "json" {
				return sweep.FormatJSON(cmd.OutOrStdout(), res)
			}
			sweep.FormatText(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().Int("items", config.DefaultItems, "number of items per sequence")
	cmd.Flags().Int("simulations", config.DefaultSimulations, "simulated sequences per grid point")
	cmd.Flags().Float64("look-start", 0, "first look ratio")
	cmd.Flags().Float64("look-stop", 0, "last look ratio")
	cmd.Flags().Float64("look-step", 0, "look ratio increment")
	cmd.Flags().String("thresholds", "", "comma-separated threshold ratios, e.g. 1,0.9,0.8")
	cmd.Flags().String("grid", "", "CSV or JSON file listing grid points")
	cmd.Flags().Uint64("seed", 0, "random seed (0 = random)")
	cmd.Flags().Int("workers", 0, "concurrent workers (0 = GOMAXPROCS)")
	return cmd
}

func applySweepFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("items") {
		cfg.Simulation.Items, _ = flags.GetInt("items")
	}
	if flags.Changed("simulations") {
		cfg.Simulation.Simulations, _ = flags.GetInt("simulations")
	}
	if flags.Changed("look-start") {
		cfg.Sweep.LookStart, _ = flags.GetFloat64("look-start")
	}
	if flags.Changed("look-stop") {
		cfg.Sweep.LookStop, _ = flags.GetFloat64("look-stop")
	}
	if flags.Changed("look-step") {
		cfg.Sweep.LookStep, _ = flags.GetFloat64("look-step")
	}
	if flags.Changed("thresholds") {
		s, _ := flags.GetString("thresholds")
		thresholds, err := grid.ParseFloats(s)
		if err != nil {
			return fmt.Errorf("--thresholds: %w", err)
		}
		cfg.Sweep.Thresholds = thresholds
	}
	if flags.Changed("grid") {
		// Flag paths are relative to the working directory, not the config file.
		path, _ := flags.GetString("grid")
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("--grid: %w", err)
		}
		cfg.Sweep.Grid = abs
	}
	applyExecutionFlags(cmd, cfg)
	return nil
}
