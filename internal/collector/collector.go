package collector

import (
	"sync"
	"sync/atomic"
	"time"

	"stopsim/internal/core"
)

// Tracker records progress of a running simulation. It implements
// core.Reporter and is safe for concurrent use.
type Tracker struct {
	clock     core.Clock
	completed atomic.Int64
	total     atomic.Int64
	mu        sync.Mutex
	startTime time.Time
	endTime   time.Time
}

// Snapshot is a point-in-time view of a Tracker.
type Snapshot struct {
	Completed    int
	Total        int
	Elapsed      time.Duration
	TrialsPerSec float64
}

// Fraction returns the completed share of the run in [0,1].
func (s Snapshot) Fraction() float64 {
	return core.Progress{Completed: s.Completed, Total: s.Total}.Fraction()
}

// NewTracker creates a Tracker whose clock starts now.
func NewTracker() *Tracker {
	return NewTrackerWithClock(core.RealClock{})
}

// NewTrackerWithClock creates a Tracker with a custom clock (for testing).
func NewTrackerWithClock(clock core.Clock) *Tracker {
	return &Tracker{clock: clock, startTime: clock.Now()}
}

// Report records p. Updates from concurrent chunks may arrive out of
// order, so only increases of Completed are kept.
func (t *Tracker) Report(p core.Progress) {
	t.total.Store(int64(p.Total))
	for {
		cur := t.completed.Load()
		if int64(p.Completed) <= cur || t.completed.CompareAndSwap(cur, int64(p.Completed)) {
			return
		}
	}
}

// Close stops the clock. Duration and Snapshot report the frozen elapsed
// time afterwards.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.endTime.IsZero() {
		t.endTime = t.clock.Now()
	}
}

// Duration returns the time from creation to Close, or to now while the
// tracker is still open.
func (t *Tracker) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.endTime.IsZero() {
		return t.endTime.Sub(t.startTime)
	}
	return t.clock.Since(t.startTime)
}

// Snapshot returns the current progress.
func (t *Tracker) Snapshot() Snapshot {
	s := Snapshot{
		Completed: int(t.completed.Load()),
		Total:     int(t.total.Load()),
		Elapsed:   t.Duration(),
	}
	if s.Elapsed > 0 {
		s.TrialsPerSec = float64(s.Completed) / s.Elapsed.Seconds()
	}
	return s
}
