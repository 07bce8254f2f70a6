package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"

	"stopsim/internal/config"
	"stopsim/internal/policy"
	"stopsim/internal/sequence"
)

// sampleBarWidth is the bar length of a value of 1.0.
const sampleBarWidth = 30

// sampleResult is one example sequence and how the policy treated it.
type sampleResult struct {
	Distribution   sequence.Distribution `json:"distribution"`
	Seed           uint64                `json:"seed"`
	LookRatio      float64               `json:"look_ratio"`
	ThresholdRatio float64               `json:"threshold_ratio"`
	policy.Trace
}

func newSampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate one example sequence and show where the policy stops",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := applySampleFlags(cmd, cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			seed := cfg.Execution.Seed
			for seed == 0 {
				seed = rand.Uint64()
			}
			seq, err := sequence.NewSeededGenerator(seed, 0).Generate(cfg.Sample.Items, cfg.Sample.Distribution)
			if err != nil {
				return err
			}

			pol := policy.FromParams(cfg.Simulation)
			res := sampleResult{
				Distribution:   cfg.Sample.Distribution,
				Seed:           seed,
				LookRatio:      pol.LookRatio,
				ThresholdRatio: pol.ThresholdRatio,
				Trace:          pol.TraceOf(seq),
			}

			newLogger(cmd, cfg).Debug("sample generated",
				"items", len(seq), "distribution", res.Distribution, "seed", seed)

			if cfg.Output.Format == "json" {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(res)
			}
			formatSample(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().Int("items", 20, "number of items in the sequence")
	cmd.Flags().String("distribution", "normal", "value distribution: uniform, normal")
	cmd.Flags().Float64("look-ratio", config.DefaultLookRatio, "fraction of items observed before choosing (0-1)")
	cmd.Flags().Float64("threshold", config.DefaultThresholdRatio, "accept an item worth at least this fraction of the look phase best")
	cmd.Flags().Uint64("seed", 0, "random seed (0 = random)")
	return cmd
}

func applySampleFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("items") {
		cfg.Sample.Items, _ = flags.GetInt("items")
	}
	if flags.Changed("distribution") {
		name, _ := flags.GetString("distribution")
		dist, err := sequence.ParseDistribution(name)
		if err != nil {
			return err
		}
		cfg.Sample.Distribution = dist
	}
	if flags.Changed("look-ratio") {
		cfg.Simulation.LookRatio, _ = flags.GetFloat64("look-ratio")
	}
	if flags.Changed("threshold") {
		cfg.Simulation.ThresholdRatio, _ = flags.GetFloat64("threshold")
	}
	if flags.Changed("seed") {
		cfg.Execution.Seed, _ = flags.GetUint64("seed")
	}
	return nil
}

// formatSample draws the sequence as bars, marking the look phase, its
// maximum, the selected item and the best item in hindsight.
func formatSample(w io.Writer, r sampleResult) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Optimal Stopping - Sample Sequence")
	fmt.Fprintln(w, "==================================")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Items:          %d\n", len(r.Sequence))
	fmt.Fprintf(w, "Distribution:   %s\n", r.Distribution)
	fmt.Fprintf(w, "Seed:           %d\n", r.Seed)
	fmt.Fprintf(w, "Look Phase:     first %d items\n", r.LookLength)
	fmt.Fprintf(w, "Threshold:      %.2f x look phase best\n", r.ThresholdRatio)
	fmt.Fprintln(w, "")

	for i, v := range r.Sequence {
		var marks []string
		if i < r.LookLength {
			marks = append(marks, "look")
		}
		if r.HasLookMax() && i == r.LookMaxIndex {
			marks = append(marks, "look max")
		}
		if i == r.Selected {
			marks = append(marks, "selected")
		}
		if i == r.HindsightMaxIndex {
			marks = append(marks, "best")
		}
		fmt.Fprintf(w, "  %3d  %.3f  %-*s %s\n",
			i, v, sampleBarWidth, strings.Repeat("#", int(v*sampleBarWidth+0.5)),
			strings.Join(marks, ", "))
	}

	fmt.Fprintln(w, "")
	switch {
	case r.Failed:
		fmt.Fprintf(w, "No item met the threshold; settled for the last item (%.3f).\n", r.Sequence[r.Selected])
	case r.Fallback:
		fmt.Fprintf(w, "Nothing to choose between; took the last item (%.3f).\n", r.Sequence[r.Selected])
	default:
		fmt.Fprintf(w, "Stopped at item %d (%.3f).\n", r.Selected, r.Sequence[r.Selected])
	}
	if r.SelectedIsBest {
		fmt.Fprintln(w, "The selected item is the best in the sequence.")
	} else {
		fmt.Fprintf(w, "The best item was %d (%.3f).\n", r.HindsightMaxIndex, r.Sequence[r.HindsightMaxIndex])
	}
}
