package core

// NoSelection marks that no item met the acceptance threshold.
const NoSelection = -1

// Outcome is the result of one simulated trial.
type Outcome struct {
	Position     int     `json:"position"`
	Value        float64 `json:"value"`
	IsBest       bool    `json:"is_best"`
	BestPossible float64 `json:"best_possible"`
	Failed       bool    `json:"failed"`
}

// ValueRate returns Value as a fraction of BestPossible.
// A zero BestPossible means every value in the sequence was zero, so the
// rate is defined as 0.
func (o Outcome) ValueRate() float64 {
	if o.BestPossible == 0 {
		return 0
	}
	return o.Value / o.BestPossible
}

// OutcomeSet holds every Outcome of one simulation run in trial order.
// It is never mutated after the engine hands it out.
type OutcomeSet struct {
	params   Params
	seed     uint64
	outcomes []Outcome
}

// NewOutcomeSet takes ownership of outcomes; the caller must not modify the
// slice afterwards.
func NewOutcomeSet(params Params, seed uint64, outcomes []Outcome) *OutcomeSet {
	return &OutcomeSet{params: params, seed: seed, outcomes: outcomes}
}

// Params returns the parameters the set was produced with.
func (s *OutcomeSet) Params() Params {
	if s == nil {
		return Params{}
	}
	return s.params
}

// Seed returns the random seed the set was produced with.
func (s *OutcomeSet) Seed() uint64 {
	if s == nil {
		return 0
	}
	return s.seed
}

// Len returns the number of outcomes. Safe on a nil set.
func (s *OutcomeSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.outcomes)
}

// At returns the i-th outcome.
func (s *OutcomeSet) At(i int) Outcome {
	return s.outcomes[i]
}

// Outcomes returns a copy of all outcomes.
func (s *OutcomeSet) Outcomes() []Outcome {
	if s == nil {
		return nil
	}
	result := make([]Outcome, len(s.outcomes))
	copy(result, s.outcomes)
	return result
}

// Each calls fn for every outcome in trial order.
func (s *OutcomeSet) Each(fn func(i int, o Outcome)) {
	if s == nil {
		return
	}
	for i, o := range s.outcomes {
		fn(i, o)
	}
}
