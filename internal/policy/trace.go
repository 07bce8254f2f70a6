package policy

import "stopsim/internal/core"

// Trace annotates a single sequence with everything needed to chart how
// the policy handled it.
type Trace struct {
	Sequence     []float64 `json:"sequence"`
	LookLength   int       `json:"look_length"`
	LookMaxIndex int       `json:"look_max_index"`
	Selected     int       `json:"selected"`
	Fallback     bool      `json:"fallback"`
	Failed       bool      `json:"failed"`
	// HindsightMaxIndex is the first index holding the sequence maximum.
	HindsightMaxIndex int  `json:"hindsight_max_index"`
	SelectedIsBest    bool `json:"selected_is_best"`
}

// TraceOf applies p to seq and records the decision. seq is copied.
func (p Policy) TraceOf(seq []float64) Trace {
	d := p.Decide(seq)
	best := 0
	for i, v := range seq {
		if v > seq[best] {
			best = i
		}
	}
	cp := make([]float64, len(seq))
	copy(cp, seq)
	return Trace{
		Sequence:          cp,
		LookLength:        d.LookLength,
		LookMaxIndex:      d.LookMaxIndex,
		Selected:          d.Position,
		Fallback:          d.Fallback(),
		Failed:            d.Failed,
		HindsightMaxIndex: best,
		SelectedIsBest:    seq[d.Position] == seq[best],
	}
}

// HasLookMax reports whether the look phase contained any item.
func (t Trace) HasLookMax() bool {
	return t.LookMaxIndex != core.NoSelection
}
