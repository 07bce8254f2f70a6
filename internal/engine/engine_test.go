package engine

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stopsim/internal/core"
)

// progressRecorder collects progress updates from concurrent chunks.
type progressRecorder struct {
	mu      sync.Mutex
	updates []core.Progress
}

func (r *progressRecorder) Report(p core.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, p)
}

func (r *progressRecorder) maxCompleted() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := 0
	for _, p := range r.updates {
		m = max(m, p.Completed)
	}
	return m
}

func classic(items, sims int) core.Params {
	return core.Params{Items: items, Simulations: sims, LookRatio: 0.37, ThresholdRatio: 1}
}

func TestEngine_ProducesOneOutcomePerTrial(t *testing.T) {
	set, err := New(Options{Seed: 1, ChunkSize: 100}).Run(context.Background(), classic(50, 1234))
	require.NoError(t, err)
	assert.Equal(t, 1234, set.Len())
	assert.Equal(t, uint64(1), set.Seed())
	assert.Equal(t, classic(50, 1234), set.Params())
}

func TestEngine_OutcomeInvariants(t *testing.T) {
	params := []core.Params{
		classic(20, 2000),
		{Items: 20, Simulations: 2000, LookRatio: 0, ThresholdRatio: 0},
		{Items: 20, Simulations: 2000, LookRatio: 0, ThresholdRatio: 0.7},
		{Items: 20, Simulations: 2000, LookRatio: 0.5, ThresholdRatio: 1.3},
		{Items: 3, Simulations: 2000, LookRatio: 0.9, ThresholdRatio: 0.5},
	}
	for _, p := range params {
		set, err := New(Options{Seed: 99}).Run(context.Background(), p)
		require.NoError(t, err)

		set.Each(func(i int, o core.Outcome) {
			require.GreaterOrEqual(t, o.Position, 0, "trial %d", i)
			require.Less(t, o.Position, p.Items, "trial %d", i)
			require.LessOrEqual(t, o.Value, o.BestPossible, "trial %d", i)
			require.Equal(t, o.Value == o.BestPossible, o.IsBest, "trial %d", i)
			require.True(t, o.Value >= 0 && o.BestPossible < 1, "trial %d out of range", i)
			if o.Failed {
				require.Equal(t, p.Items-1, o.Position, "failed trial %d must hold the fallback", i)
			}
		})
	}
}

func TestEngine_SingleItem(t *testing.T) {
	for _, p := range []core.Params{
		{Items: 1, Simulations: 500, LookRatio: 0, ThresholdRatio: 0},
		{Items: 1, Simulations: 500, LookRatio: 0.5, ThresholdRatio: 1},
		{Items: 1, Simulations: 500, LookRatio: 1, ThresholdRatio: 3},
	} {
		set, err := New(Options{Seed: 5}).Run(context.Background(), p)
		require.NoError(t, err)
		set.Each(func(i int, o core.Outcome) {
			assert.Equal(t, 0, o.Position)
			assert.True(t, o.IsBest)
			assert.False(t, o.Failed)
			assert.Equal(t, o.Value, o.BestPossible)
		})
	}
}

func TestEngine_NoSelectionPhase(t *testing.T) {
	set, err := New(Options{Seed: 7}).Run(context.Background(),
		core.Params{Items: 5, Simulations: 1000, LookRatio: 1, ThresholdRatio: 1})
	require.NoError(t, err)

	set.Each(func(i int, o core.Outcome) {
		assert.Equal(t, 4, o.Position)
		assert.False(t, o.Failed)
	})
}

func TestEngine_DeterministicAcrossWorkerCounts(t *testing.T) {
	p := classic(30, 10000)
	a, err := New(Options{Seed: 42, Workers: 1, ChunkSize: 256}).Run(context.Background(), p)
	require.NoError(t, err)
	b, err := New(Options{Seed: 42, Workers: 8, ChunkSize: 256}).Run(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, a.Outcomes(), b.Outcomes())

	c, err := New(Options{Seed: 43, Workers: 8, ChunkSize: 256}).Run(context.Background(), p)
	require.NoError(t, err)
	assert.NotEqual(t, a.Outcomes(), c.Outcomes())
}

func TestEngine_RandomSeedIsRecorded(t *testing.T) {
	set, err := Simulate(context.Background(), 10, 100, 0.37, 1)
	require.NoError(t, err)
	require.NotZero(t, set.Seed())

	replay, err := New(Options{Seed: set.Seed()}).Run(context.Background(), set.Params())
	require.NoError(t, err)
	assert.Equal(t, set.Outcomes(), replay.Outcomes())
}

func TestEngine_LowerThresholdNeverIncreasesFailures(t *testing.T) {
	failures := func(threshold float64) int {
		set, err := New(Options{Seed: 2024}).Run(context.Background(),
			core.Params{Items: 100, Simulations: 5000, LookRatio: 0.37, ThresholdRatio: threshold})
		require.NoError(t, err)
		n := 0
		set.Each(func(_ int, o core.Outcome) {
			if o.Failed {
				n++
			}
		})
		return n
	}

	prev := failures(1.0)
	for _, th := range []float64{0.9, 0.8, 0.7, 0.5, 0.2, 0} {
		cur := failures(th)
		assert.LessOrEqual(t, cur, prev, "threshold %.1f", th)
		prev = cur
	}
	assert.Zero(t, prev, "threshold 0 always accepts the first selection-phase item")
}

func TestEngine_ClassicSuccessRateConverges(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical regression test")
	}
	set, err := New(Options{Seed: 1}).Run(context.Background(),
		core.Params{Items: 1000, Simulations: 100000, LookRatio: 1 / math.E, ThresholdRatio: 1})
	require.NoError(t, err)

	best := 0
	set.Each(func(_ int, o core.Outcome) {
		if o.IsBest {
			best++
		}
	})
	rate := float64(best) / float64(set.Len())
	assert.InDelta(t, 1/math.E, rate, 0.02)
}

func TestEngine_InvalidParamsFailFast(t *testing.T) {
	rec := &progressRecorder{}
	set, err := New(Options{Reporter: rec}).Run(context.Background(),
		core.Params{Items: 0, Simulations: 10, LookRatio: 0.5, ThresholdRatio: 1})

	require.ErrorIs(t, err, core.ErrInvalidParameter)
	assert.Nil(t, set)
	assert.Empty(t, rec.updates)
}

func TestEngine_ReportsProgress(t *testing.T) {
	rec := &progressRecorder{}
	_, err := New(Options{Seed: 3, ChunkSize: 100, Reporter: rec}).Run(context.Background(), classic(10, 1050))
	require.NoError(t, err)

	assert.Len(t, rec.updates, 11)
	assert.Equal(t, 1050, rec.maxCompleted())
	for _, p := range rec.updates {
		assert.Equal(t, 1050, p.Total)
	}
}

func TestEngine_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	set, err := New(Options{Seed: 1}).Run(ctx, classic(10, 100000))
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, set)
}

func TestEngine_RecoversReporterPanic(t *testing.T) {
	rep := core.ReporterFunc(func(core.Progress) { panic("boom") })

	set, err := New(Options{Seed: 1, Reporter: rep}).Run(context.Background(), classic(10, 100))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Nil(t, set)
}
