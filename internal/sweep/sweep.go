// Package sweep runs the simulation over a grid of policy parameters and
// finds the best look ratio for each threshold.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"time"

	"stopsim/internal/collector"
	"stopsim/internal/core"
	"stopsim/internal/engine"
	"stopsim/internal/grid"
	"stopsim/internal/progress"
)

// Options configures a sweep. Engine.Reporter receives progress across the
// whole sweep, not per point.
type Options struct {
	Engine   engine.Options
	Progress *progress.Progress
}

// Row is the summary of one grid point.
type Row struct {
	Params  core.Params        `json:"params"`
	Summary *collector.Summary `json:"summary"`
}

// Best is the look ratio with the highest success rate for one
// (items, threshold) pair.
type Best struct {
	Items          int     `json:"items"`
	ThresholdRatio float64 `json:"threshold_ratio"`
	LookRatio      float64 `json:"look_ratio"`
	SuccessRate    float64 `json:"success_rate"`
}

// Result holds every row of a sweep in grid order.
type Result struct {
	Seed    uint64
	Elapsed time.Duration
	Rows    []Row
}

// Run simulates base.Simulations trials at every point of g. Points with
// Items of 0 use base.Items. All points share one seed, so points with the
// same item count see the same sequences.
//
// Every point is validated before any simulation starts.
func Run(ctx context.Context, base core.Params, g grid.Grid, opts Options) (*Result, error) {
	if len(g) == 0 {
		return nil, fmt.Errorf("sweep: %w", core.ErrEmptyInput)
	}

	params := make([]core.Params, len(g))
	var errs []error
	for i, p := range g {
		params[i] = pointParams(base, p)
		if err := params[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("point %d: %w", i, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	log := opts.Engine.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	next := opts.Engine.Reporter
	if next == nil {
		next = core.NullReporter
	}

	eopts := opts.Engine
	for eopts.Seed == 0 {
		eopts.Seed = rand.Uint64()
	}

	printMsg := func(format string, args ...any) {
		if opts.Progress != nil {
			opts.Progress.Printf(format, args...)
		}
	}

	total := 0
	for _, p := range params {
		total += p.Simulations
	}

	printMsg("Sweeping %d points, %s simulations each (seed %d)",
		len(params), collector.FormatNumber(base.Simulations), eopts.Seed)

	start := time.Now()
	res := &Result{Seed: eopts.Seed, Rows: make([]Row, 0, len(params))}
	offset := 0
	for i, p := range params {
		eopts.Reporter = offsetReporter{next: next, offset: offset, total: total}
		set, err := engine.New(eopts).Run(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		summary, err := collector.Summarize(set)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		res.Rows = append(res.Rows, Row{Params: p, Summary: summary})
		offset += p.Simulations

		log.Debug("sweep point finished",
			"point", i,
			"items", p.Items,
			"look_ratio", p.LookRatio,
			"threshold_ratio", p.ThresholdRatio,
			"success_rate", summary.SuccessRate)
	}
	res.Elapsed = time.Since(start)

	return res, nil
}

func pointParams(base core.Params, p grid.Point) core.Params {
	params := base
	if p.Items != 0 {
		params.Items = p.Items
	}
	params.LookRatio = p.LookRatio
	params.ThresholdRatio = p.ThresholdRatio
	return params
}

// Best returns the winning look ratio per (items, threshold), ordered by
// items then descending threshold. Ties go to the smaller look ratio.
func (r *Result) Best() []Best {
	type key struct {
		items int
		thr   float64
	}
	best := make(map[key]Best)
	for _, row := range r.Rows {
		k := key{row.Params.Items, row.Params.ThresholdRatio}
		cand := Best{
			Items:          row.Params.Items,
			ThresholdRatio: row.Params.ThresholdRatio,
			LookRatio:      row.Params.LookRatio,
			SuccessRate:    row.Summary.SuccessRate,
		}
		cur, ok := best[k]
		if !ok || cand.SuccessRate > cur.SuccessRate ||
			(cand.SuccessRate == cur.SuccessRate && cand.LookRatio < cur.LookRatio) {
			best[k] = cand
		}
	}

	out := make([]Best, 0, len(best))
	for _, b := range best {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Items != out[j].Items {
			return out[i].Items < out[j].Items
		}
		return out[i].ThresholdRatio > out[j].ThresholdRatio
	})
	return out
}

// offsetReporter maps one point's progress onto the whole sweep.
type offsetReporter struct {
	next   core.Reporter
	offset int
	total  int
}

func (o offsetReporter) Report(p core.Progress) {
	o.next.Report(core.Progress{Completed: o.offset + p.Completed, Total: o.total})
}
