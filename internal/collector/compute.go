// Package collector reduces simulation outcomes into summary statistics and
// renders them for the presentation layer.
package collector

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"stopsim/internal/core"
)

// Summary holds the scalar metrics of one simulation run. Every rate lies
// in [0,1].
type Summary struct {
	Trials             int     `json:"trials"`
	SuccessRate        float64 `json:"success_rate"`
	FailureRate        float64 `json:"failure_rate"`
	AvgPosition        float64 `json:"avg_position"`
	MedianPosition     float64 `json:"median_position"`
	BestValueRate      float64 `json:"best_value_rate"`
	MedianValueRate    float64 `json:"median_value_rate"`
	MedianValue        float64 `json:"median_value"`
	MedianBestPossible float64 `json:"median_best_possible"`
}

// Summarize computes the Summary of set. Pure function, no side effects.
// Failed trials are included in every metric; their fallback selection
// counts as a real value.
func Summarize(set *core.OutcomeSet) (*Summary, error) {
	n := set.Len()
	if n == 0 {
		return nil, core.ErrEmptyInput
	}

	positions := make(stats.Float64Data, 0, n)
	values := make(stats.Float64Data, 0, n)
	bests := make(stats.Float64Data, 0, n)
	rates := make(stats.Float64Data, 0, n)
	var best, failed int

	set.Each(func(_ int, o core.Outcome) {
		if o.IsBest {
			best++
		}
		if o.Failed {
			failed++
		}
		positions = append(positions, float64(o.Position))
		values = append(values, o.Value)
		bests = append(bests, o.BestPossible)
		rates = append(rates, o.ValueRate())
	})

	s := &Summary{
		Trials:      n,
		SuccessRate: float64(best) / float64(n),
		FailureRate: float64(failed) / float64(n),
	}

	var err error
	if s.AvgPosition, err = positions.Mean(); err != nil {
		return nil, fmt.Errorf("mean position: %w", err)
	}
	if s.MedianPosition, err = positions.Median(); err != nil {
		return nil, fmt.Errorf("median position: %w", err)
	}
	if s.BestValueRate, err = rates.Mean(); err != nil {
		return nil, fmt.Errorf("mean value rate: %w", err)
	}
	if s.MedianValueRate, err = rates.Median(); err != nil {
		return nil, fmt.Errorf("median value rate: %w", err)
	}
	if s.MedianValue, err = values.Median(); err != nil {
		return nil, fmt.Errorf("median value: %w", err)
	}
	if s.MedianBestPossible, err = bests.Median(); err != nil {
		return nil, fmt.Errorf("median best possible: %w", err)
	}
	return s, nil
}
