// Package policy implements the look-then-leap stopping rule: observe a
// prefix of the sequence without choosing, then accept the first item that
// reaches a fraction of the best value seen in that prefix.
package policy

import (
	"math"

	"stopsim/internal/core"
)

// Policy is a look-then-leap stopping rule.
type Policy struct {
	// LookRatio is the fraction of the sequence observed without choosing.
	LookRatio float64
	// ThresholdRatio is the minimum fraction of the look-phase maximum an
	// item must reach to be accepted. 1.0 is the classic rule.
	ThresholdRatio float64
}

// FromParams builds the Policy described by p.
func FromParams(p core.Params) Policy {
	return Policy{LookRatio: p.LookRatio, ThresholdRatio: p.ThresholdRatio}
}

// LookLength returns floor(n * LookRatio), clamped to [0, n].
func (p Policy) LookLength(n int) int {
	l := int(math.Floor(float64(n) * p.LookRatio))
	if l < 0 {
		return 0
	}
	if l > n {
		return n
	}
	return l
}

// Decision is the result of applying a Policy to one sequence.
type Decision struct {
	LookLength int
	// LookMax is -Inf when the look phase is empty.
	LookMax float64
	// LookMaxIndex is core.NoSelection when the look phase is empty.
	LookMaxIndex int
	// Accepted is the index of the first item meeting the threshold,
	// or core.NoSelection.
	Accepted int
	// Position is the index finally selected: Accepted, or the last index
	// as a fallback.
	Position int
	Failed   bool
}

// Fallback reports whether the last item was selected because nothing
// met the threshold.
func (d Decision) Fallback() bool {
	return d.Accepted == core.NoSelection
}

// Decide applies the policy to seq. seq must not be empty.
func (p Policy) Decide(seq []float64) Decision {
	n := len(seq)
	look := p.LookLength(n)

	d := Decision{
		LookLength:   look,
		LookMax:      math.Inf(-1),
		LookMaxIndex: core.NoSelection,
		Accepted:     core.NoSelection,
		Position:     n - 1,
	}
	for i := 0; i < look; i++ {
		if seq[i] > d.LookMax {
			d.LookMax = seq[i]
			d.LookMaxIndex = i
		}
	}

	for i := look; i < n; i++ {
		if p.accepts(seq[i], d.LookMax) {
			d.Accepted = i
			d.Position = i
			return d
		}
	}

	// A vacuous selection phase, or a single item that is both the only
	// candidate and the fallback, cannot fail.
	d.Failed = look < n && n > 1
	return d
}

func (p Policy) accepts(value, lookMax float64) bool {
	relative := 0.0
	if lookMax > 0 {
		relative = value / lookMax
	}
	return relative >= p.ThresholdRatio
}

// Evaluate applies the policy to seq and builds the trial outcome.
func (p Policy) Evaluate(seq []float64) core.Outcome {
	d := p.Decide(seq)
	best := seq[0]
	for _, v := range seq[1:] {
		if v > best {
			best = v
		}
	}
	value := seq[d.Position]
	return core.Outcome{
		Position:     d.Position,
		Value:        value,
		IsBest:       value == best,
		BestPossible: best,
		Failed:       d.Failed,
	}
}
