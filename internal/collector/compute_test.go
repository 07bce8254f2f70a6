package collector

import (
	"errors"
	"math"
	"testing"

	"stopsim/internal/core"
)

func setOf(items int, outcomes ...core.Outcome) *core.OutcomeSet {
	return core.NewOutcomeSet(core.Params{Items: items, Simulations: len(outcomes)}, 1, outcomes)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestSummarize_EmptySet(t *testing.T) {
	if _, err := Summarize(setOf(5)); !errors.Is(err, core.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
	if _, err := Summarize(nil); !errors.Is(err, core.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput for nil set, got %v", err)
	}
}

func TestSummarize_SingleOutcome(t *testing.T) {
	s, err := Summarize(setOf(5, core.Outcome{Position: 2, Value: 0.7, BestPossible: 0.7, IsBest: true}))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if s.SuccessRate != 1.0 {
		t.Errorf("expected success rate 1.0, got %v", s.SuccessRate)
	}
	if s.FailureRate != 0.0 {
		t.Errorf("expected failure rate 0.0, got %v", s.FailureRate)
	}
	if s.AvgPosition != 2 {
		t.Errorf("expected avg position 2, got %v", s.AvgPosition)
	}
	if s.BestValueRate != 1.0 {
		t.Errorf("expected best value rate 1.0, got %v", s.BestValueRate)
	}
	if s.MedianValue != 0.7 || s.MedianBestPossible != 0.7 || s.MedianValueRate != 1.0 {
		t.Errorf("unexpected medians: %+v", s)
	}
	if s.Trials != 1 {
		t.Errorf("expected 1 trial, got %d", s.Trials)
	}
}

func TestSummarize_Rates(t *testing.T) {
	// 2 of 4 best, 1 of 4 failed
	s, err := Summarize(setOf(10,
		core.Outcome{Position: 4, Value: 0.9, BestPossible: 0.9, IsBest: true},
		core.Outcome{Position: 5, Value: 0.8, BestPossible: 0.8, IsBest: true},
		core.Outcome{Position: 6, Value: 0.4, BestPossible: 0.8},
		core.Outcome{Position: 9, Value: 0.2, BestPossible: 0.8, Failed: true},
	))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if s.SuccessRate != 0.5 {
		t.Errorf("expected success rate 0.5, got %v", s.SuccessRate)
	}
	if s.FailureRate != 0.25 {
		t.Errorf("expected failure rate 0.25, got %v", s.FailureRate)
	}
	if s.AvgPosition != 6 {
		t.Errorf("expected avg position 6, got %v", s.AvgPosition)
	}
	if s.MedianPosition != 5.5 {
		t.Errorf("expected median position 5.5, got %v", s.MedianPosition)
	}
	// rates: 1, 1, 0.5, 0.25
	if !almostEqual(s.BestValueRate, 0.6875) {
		t.Errorf("expected best value rate 0.6875, got %v", s.BestValueRate)
	}
	if !almostEqual(s.MedianValueRate, 0.75) {
		t.Errorf("expected median value rate 0.75, got %v", s.MedianValueRate)
	}
	if !almostEqual(s.MedianValue, 0.6) {
		t.Errorf("expected median value 0.6, got %v", s.MedianValue)
	}
	if !almostEqual(s.MedianBestPossible, 0.8) {
		t.Errorf("expected median best possible 0.8, got %v", s.MedianBestPossible)
	}
}

func TestSummarize_ZeroBestPossible(t *testing.T) {
	s, err := Summarize(setOf(3,
		core.Outcome{Position: 1, Value: 0, BestPossible: 0, IsBest: true},
		core.Outcome{Position: 1, Value: 0.5, BestPossible: 0.5, IsBest: true},
	))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.BestValueRate != 0.5 {
		t.Errorf("zero best possible should contribute 0, got rate %v", s.BestValueRate)
	}
	if math.IsNaN(s.MedianValueRate) {
		t.Error("median value rate must not be NaN")
	}
}

func TestSummarize_FailedTrialsCountInValueRate(t *testing.T) {
	s, err := Summarize(setOf(4,
		core.Outcome{Position: 3, Value: 0.3, BestPossible: 0.6, Failed: true},
	))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.BestValueRate != 0.5 {
		t.Errorf("expected failed fallback to count, got %v", s.BestValueRate)
	}
	if s.FailureRate != 1 {
		t.Errorf("expected failure rate 1, got %v", s.FailureRate)
	}
}
