// Package engine runs Monte Carlo trials of the look-then-leap policy.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"stopsim/internal/core"
	"stopsim/internal/logging"
	"stopsim/internal/policy"
	"stopsim/internal/sequence"
)

// DefaultChunkSize is the number of trials sharing one random stream.
// Changing it changes which values a given seed produces.
const DefaultChunkSize = 4096

// Options configures an Engine. The zero value is usable.
type Options struct {
	// Workers bounds the number of chunks simulated concurrently.
	// 0 means runtime.GOMAXPROCS(0).
	Workers int
	// ChunkSize is the number of trials per chunk. 0 means DefaultChunkSize.
	ChunkSize int
	// Seed makes runs reproducible. 0 picks a random seed, which is
	// recorded in the returned OutcomeSet.
	Seed     uint64
	Reporter core.Reporter
	Logger   *slog.Logger
}

// Engine runs simulations. It holds no per-run state, so one Engine may
// serve concurrent Run calls.
type Engine struct {
	workers   int
	chunkSize int
	seed      uint64
	reporter  core.Reporter
	log       *slog.Logger
}

// New creates an Engine from opts.
func New(opts Options) *Engine {
	e := &Engine{
		workers:   opts.Workers,
		chunkSize: opts.ChunkSize,
		seed:      opts.Seed,
		reporter:  opts.Reporter,
		log:       opts.Logger,
	}
	if e.workers <= 0 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	if e.chunkSize <= 0 {
		e.chunkSize = DefaultChunkSize
	}
	if e.reporter == nil {
		e.reporter = core.NullReporter
	}
	if e.log == nil {
		e.log = slog.New(slog.DiscardHandler)
	}
	return e
}

// Simulate runs a simulation with default options and a random seed.
func Simulate(ctx context.Context, items, simulations int, lookRatio, thresholdRatio float64) (*core.OutcomeSet, error) {
	return New(Options{}).Run(ctx, core.Params{
		Items:          items,
		Simulations:    simulations,
		LookRatio:      lookRatio,
		ThresholdRatio: thresholdRatio,
	})
}

// Run validates params and simulates params.Simulations independent trials.
// It returns either a complete OutcomeSet or an error, never partial results.
func (e *Engine) Run(ctx context.Context, params core.Params) (*core.OutcomeSet, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	seed := e.seed
	for seed == 0 {
		seed = rand.Uint64()
	}

	total := params.Simulations
	chunks := (total + e.chunkSize - 1) / e.chunkSize
	outcomes := make([]core.Outcome, total)
	pol := policy.FromParams(params)

	e.log.Debug("simulation started",
		"items", params.Items,
		"simulations", total,
		"look_ratio", params.LookRatio,
		"threshold_ratio", params.ThresholdRatio,
		"seed", seed,
		"chunks", chunks,
		"workers", e.workers)
	start := time.Now()

	var completed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for c := 0; c < chunks; c++ {
		if gctx.Err() != nil {
			break
		}
		lo := c * e.chunkSize
		hi := min(lo+e.chunkSize, total)
		g.Go(func() (err error) {
			defer recoverPanic(c, &err)
			if err := gctx.Err(); err != nil {
				return err
			}
			runChunk(pol, seed, uint64(c), params.Items, outcomes[lo:hi])
			done := completed.Add(int64(hi - lo))
			e.log.Log(gctx, logging.LevelTrace, "chunk finished", "chunk", c, "trials", hi-lo, "completed", done)
			e.reporter.Report(core.Progress{Completed: int(done), Total: total})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("simulation aborted: %w", err)
	}
	if completed.Load() != int64(total) {
		return nil, fmt.Errorf("simulation aborted: %w", context.Cause(ctx))
	}

	e.log.Debug("simulation finished", "seed", seed, "elapsed", time.Since(start))
	return core.NewOutcomeSet(params, seed, outcomes), nil
}

// runChunk fills dst with trials drawn from the (seed, stream) generator.
// The sequence buffer is reused; each trial overwrites it completely.
func runChunk(pol policy.Policy, seed, stream uint64, items int, dst []core.Outcome) {
	gen := sequence.NewSeededGenerator(seed, stream)
	buf := make([]float64, items)
	for i := range dst {
		gen.FillUniform(buf)
		dst[i] = pol.Evaluate(buf)
	}
}

// recoverPanic turns a panic in a chunk goroutine into that goroutine's error.
func recoverPanic(chunk int, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("chunk %d: panic: %v", chunk, r)
	}
}
