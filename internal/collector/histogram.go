package collector

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"stopsim/internal/core"
)

const (
	// DefaultValueBins matches the resolution of the selected-vs-maximum chart.
	DefaultValueBins = 30
	// maxPositionBins caps the one-bin-per-position histogram for long sequences.
	maxPositionBins = 200
)

// Histogram is a binned count. Bin i covers [Dividers[i], Dividers[i+1]).
type Histogram struct {
	Dividers []float64 `json:"dividers"`
	Counts   []float64 `json:"counts"`
}

// Histograms are the distributions charted after a run.
type Histograms struct {
	SelectedValues Histogram `json:"selected_values"`
	MaximumValues  Histogram `json:"maximum_values"`
	Positions      Histogram `json:"positions"`
}

// ComputeHistograms bins selected values and maximum values into valueBins
// equal bins over [0,1], and positions into one bin per index (capped for
// long sequences).
func ComputeHistograms(set *core.OutcomeSet, valueBins int) (*Histograms, error) {
	n := set.Len()
	if n == 0 {
		return nil, core.ErrEmptyInput
	}
	if valueBins < 1 {
		return nil, &core.ParamError{Name: "bins", Value: valueBins, Reason: "must be >= 1"}
	}

	values := make([]float64, 0, n)
	bests := make([]float64, 0, n)
	positions := make([]float64, 0, n)
	set.Each(func(_ int, o core.Outcome) {
		values = append(values, o.Value)
		bests = append(bests, o.BestPossible)
		positions = append(positions, float64(o.Position))
	})

	valueDividers := unitDividers(valueBins)
	items := set.Params().Items
	positionBins := min(max(items, 1), maxPositionBins)
	positionDividers := floats.Span(make([]float64, positionBins+1), 0, float64(max(items, 1)))

	return &Histograms{
		SelectedValues: histogram(values, valueDividers),
		MaximumValues:  histogram(bests, valueDividers),
		Positions:      histogram(positions, positionDividers),
	}, nil
}

// unitDividers spans [0,1] with the top edge nudged up so a value of
// exactly 1 lands in the last bin.
func unitDividers(bins int) []float64 {
	d := floats.Span(make([]float64, bins+1), 0, 1)
	d[bins] = math.Nextafter(1, 2)
	return d
}

func histogram(x, dividers []float64) Histogram {
	sorted := slices.Clone(x)
	slices.Sort(sorted)
	return Histogram{
		Dividers: slices.Clone(dividers),
		Counts:   stat.Histogram(nil, dividers, sorted, nil),
	}
}
