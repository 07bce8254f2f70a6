package collector

import (
	"errors"
	"testing"

	"stopsim/internal/core"
)

func sum(xs []float64) float64 {
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total
}

func TestComputeHistograms_Counts(t *testing.T) {
	set := setOf(4,
		core.Outcome{Position: 0, Value: 0.05, BestPossible: 0.95},
		core.Outcome{Position: 2, Value: 0.55, BestPossible: 0.95},
		core.Outcome{Position: 2, Value: 0.95, BestPossible: 0.95, IsBest: true},
		core.Outcome{Position: 3, Value: 0.5, BestPossible: 0.5, IsBest: true, Failed: true},
	)

	h, err := ComputeHistograms(set, 10)
	if err != nil {
		t.Fatalf("ComputeHistograms: %v", err)
	}

	if len(h.SelectedValues.Counts) != 10 || len(h.SelectedValues.Dividers) != 11 {
		t.Fatalf("expected 10 value bins, got %d counts / %d dividers",
			len(h.SelectedValues.Counts), len(h.SelectedValues.Dividers))
	}
	if sum(h.SelectedValues.Counts) != 4 || sum(h.MaximumValues.Counts) != 4 {
		t.Error("every outcome should land in exactly one value bin")
	}
	if h.SelectedValues.Counts[0] != 1 || h.SelectedValues.Counts[5] != 2 || h.SelectedValues.Counts[9] != 1 {
		t.Errorf("unexpected selected value counts: %v", h.SelectedValues.Counts)
	}
	if h.MaximumValues.Counts[9] != 3 {
		t.Errorf("expected 3 maxima in the top bin, got %v", h.MaximumValues.Counts)
	}

	want := []float64{1, 0, 2, 1}
	for i, c := range h.Positions.Counts {
		if c != want[i] {
			t.Errorf("position bin %d: got %v, want %v", i, c, want[i])
		}
	}
}

func TestComputeHistograms_CapsPositionBins(t *testing.T) {
	set := setOf(1000, core.Outcome{Position: 999, Value: 0.5, BestPossible: 0.9})
	h, err := ComputeHistograms(set, DefaultValueBins)
	if err != nil {
		t.Fatalf("ComputeHistograms: %v", err)
	}
	if len(h.Positions.Counts) != maxPositionBins {
		t.Errorf("expected %d position bins, got %d", maxPositionBins, len(h.Positions.Counts))
	}
	if h.Positions.Counts[maxPositionBins-1] != 1 {
		t.Error("last position should land in the last bin")
	}
}

func TestComputeHistograms_Invalid(t *testing.T) {
	if _, err := ComputeHistograms(setOf(3), 10); !errors.Is(err, core.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
	set := setOf(3, core.Outcome{Position: 1, Value: 0.5, BestPossible: 0.5})
	if _, err := ComputeHistograms(set, 0); !errors.Is(err, core.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}
