// Package ratelimit throttles progress updates flowing from simulation
// workers to slower collaborators such as terminals or UIs.
package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"

	"stopsim/internal/core"
)

// Reporter forwards at most perSecond progress updates to the wrapped
// Reporter. The update that completes a run is always forwarded, exactly once.
type Reporter struct {
	next     core.Reporter
	limiter  *rate.Limiter
	mu       sync.Mutex
	doneSent bool
}

// NewReporter wraps next. A perSecond of 0 or less forwards every update.
func NewReporter(next core.Reporter, perSecond float64) *Reporter {
	return &Reporter{
		next:    next,
		limiter: rate.NewLimiter(limitFor(perSecond), 1),
	}
}

func (r *Reporter) Report(p core.Progress) {
	if p.Done() {
		r.mu.Lock()
		sent := r.doneSent
		r.doneSent = true
		r.mu.Unlock()
		if !sent {
			r.next.Report(p)
		}
		return
	}
	if r.limiter.Allow() {
		r.next.Report(p)
	}
}

// SetRate changes the forwarding rate.
func (r *Reporter) SetRate(perSecond float64) {
	r.limiter.SetLimit(limitFor(perSecond))
}

func limitFor(perSecond float64) rate.Limit {
	if perSecond <= 0 {
		return rate.Inf
	}
	return rate.Limit(perSecond)
}
