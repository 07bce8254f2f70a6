// Package core defines the domain types shared by the simulation engine,
// the statistics aggregator and the presentation layer.
package core

// Progress is a cumulative snapshot of how many trials of a run have finished.
type Progress struct {
	Completed int
	Total     int
}

// Done reports whether every trial of the run has finished.
func (p Progress) Done() bool {
	return p.Total > 0 && p.Completed >= p.Total
}

// Fraction returns Completed/Total in [0,1].
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Completed) / float64(p.Total)
	if f > 1 {
		return 1
	}
	return f
}

// Reporter receives progress updates from a running simulation.
// Implementations must be safe for concurrent use; updates may arrive
// out of order, so Completed is not guaranteed to be monotonic.
type Reporter interface {
	Report(Progress)
}

// NullReporter discards all progress updates.
var NullReporter Reporter = nullReporter{}

type nullReporter struct{}

func (nullReporter) Report(Progress) {}

// ReporterFunc adapts a plain function to the Reporter interface.
type ReporterFunc func(Progress)

func (f ReporterFunc) Report(p Progress) { f(p) }
