// Package stopsim simulates the optimal stopping (secretary) problem.
//
// A look-then-leap policy observes the first part of a random sequence
// without choosing, then takes the first item whose value reaches a
// threshold relative to the best item seen. Simulate runs the policy over
// many sequences, Summarize aggregates the outcomes and SampleSequence
// draws a single example sequence.
package stopsim

import (
	"context"

	"stopsim/internal/collector"
	"stopsim/internal/core"
	"stopsim/internal/engine"
	"stopsim/internal/sequence"
)

type (
	// Params are the inputs of one simulation run.
	Params = core.Params
	// Outcome records the result of one simulated sequence.
	Outcome = core.Outcome
	// OutcomeSet holds every outcome of a run along with its params and seed.
	OutcomeSet = core.OutcomeSet
	// Summary holds the aggregate statistics of an OutcomeSet.
	Summary = collector.Summary
	// Sequence is a list of item values in arrival order.
	Sequence = sequence.Sequence
	// Distribution selects how sequence values are drawn.
	Distribution = sequence.Distribution
)

const (
	Uniform = sequence.Uniform
	Normal  = sequence.Normal
)

var (
	// ErrInvalidParameter matches every parameter validation error.
	ErrInvalidParameter = core.ErrInvalidParameter
	// ErrEmptyInput is returned when summarizing an empty outcome set.
	ErrEmptyInput = core.ErrEmptyInput
)

// Simulate runs simulations independent trials of the policy on sequences
// of items uniform values. It uses every CPU and a random seed, which
// OutcomeSet.Seed reports.
func Simulate(ctx context.Context, items, simulations int, lookRatio, thresholdRatio float64) (*OutcomeSet, error) {
	return engine.Simulate(ctx, items, simulations, lookRatio, thresholdRatio)
}

// SimulateSeeded is Simulate with a fixed seed. Equal seeds and params
// give identical outcome sets.
func SimulateSeeded(ctx context.Context, p Params, seed uint64) (*OutcomeSet, error) {
	return engine.New(engine.Options{Seed: seed}).Run(ctx, p)
}

// Summarize computes the aggregate statistics of set.
func Summarize(set *OutcomeSet) (*Summary, error) {
	return collector.Summarize(set)
}

// SampleSequence draws n values from dist. A seed of 0 is a valid seed.
func SampleSequence(n int, dist Distribution, seed uint64) (Sequence, error) {
	return sequence.NewSeededGenerator(seed, 0).Generate(n, dist)
}
