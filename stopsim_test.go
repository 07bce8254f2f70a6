package stopsim_test

import (
	"context"
	"errors"
	"testing"

	"stopsim"
)

func TestSimulateAndSummarize(t *testing.T) {
	set, err := stopsim.Simulate(context.Background(), 10, 1000, 0.37, 1)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if set.Len() != 1000 {
		t.Errorf("Len() = %d, want 1000", set.Len())
	}

	s, err := stopsim.Summarize(set)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.SuccessRate < 0 || s.SuccessRate > 1 {
		t.Errorf("SuccessRate = %v, want within [0,1]", s.SuccessRate)
	}
}

func TestSimulate_InvalidParams(t *testing.T) {
	_, err := stopsim.Simulate(context.Background(), 0, 10, 0.5, 1)
	if !errors.Is(err, stopsim.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestSimulateSeeded_Reproducible(t *testing.T) {
	p := stopsim.Params{Items: 25, Simulations: 500, LookRatio: 0.3, ThresholdRatio: 0.9}
	a, err := stopsim.SimulateSeeded(context.Background(), p, 17)
	if err != nil {
		t.Fatalf("SimulateSeeded: %v", err)
	}
	b, err := stopsim.SimulateSeeded(context.Background(), p, 17)
	if err != nil {
		t.Fatalf("SimulateSeeded: %v", err)
	}
	for i := 0; i < a.Len(); i++ {
		if a.At(i) != b.At(i) {
			t.Fatalf("outcome %d differs: %+v vs %+v", i, a.At(i), b.At(i))
		}
	}
}

func TestSummarize_Empty(t *testing.T) {
	if _, err := stopsim.Summarize(nil); !errors.Is(err, stopsim.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestSampleSequence(t *testing.T) {
	seq, err := stopsim.SampleSequence(50, stopsim.Normal, 3)
	if err != nil {
		t.Fatalf("SampleSequence: %v", err)
	}
	if len(seq) != 50 {
		t.Fatalf("len = %d, want 50", len(seq))
	}
	for i, v := range seq {
		if v < 0 || v > 1 {
			t.Errorf("seq[%d] = %v, want within [0,1]", i, v)
		}
	}
}
