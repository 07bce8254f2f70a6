// Package sequence generates the random value sequences the stopping
// policy is applied to.
package sequence

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"stopsim/internal/core"
)

// Parameters of the illustrative normal distribution.
const (
	NormalMean   = 0.5
	NormalStdDev = 0.15
)

// Distribution selects how sequence values are drawn.
type Distribution int

const (
	// Uniform draws i.i.d. values from [0,1).
	Uniform Distribution = iota
	// Normal draws from N(0.5, 0.15) clipped into [0,1].
	Normal
)

func (d Distribution) String() string {
	switch d {
	case Uniform:
		return "uniform"
	case Normal:
		return "normal"
	default:
		return fmt.Sprintf("Distribution(%d)", int(d))
	}
}

// ParseDistribution parses a distribution name (case-insensitive).
func ParseDistribution(s string) (Distribution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "uniform", "":
		return Uniform, nil
	case "normal":
		return Normal, nil
	default:
		return 0, &core.ParamError{Name: "distribution", Value: s, Reason: "must be uniform or normal"}
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Distribution) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, which yaml.v3 and
// encoding/json both honour.
func (d *Distribution) UnmarshalText(text []byte) error {
	parsed, err := ParseDistribution(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Sequence is an ordered list of values in arrival order.
type Sequence []float64

// Max returns the largest value, or -Inf for an empty sequence.
func (s Sequence) Max() float64 {
	m := math.Inf(-1)
	for _, v := range s {
		if v > m {
			m = v
		}
	}
	return m
}

// ArgMax returns the first index of the largest value, or -1 when empty.
func (s Sequence) ArgMax() int {
	idx := -1
	for i, v := range s {
		if idx < 0 || v > s[idx] {
			idx = i
		}
	}
	return idx
}

// Generator draws sequences from an explicit random source. It is not safe
// for concurrent use; give each goroutine its own Generator.
type Generator struct {
	rng    *rand.Rand
	normal distuv.Normal
}

// NewGenerator returns a Generator drawing from src.
func NewGenerator(src rand.Source) *Generator {
	return &Generator{
		rng:    rand.New(src),
		normal: distuv.Normal{Mu: NormalMean, Sigma: NormalStdDev, Src: src},
	}
}

// NewSeededGenerator returns a Generator on a PCG stream identified by
// (seed, stream).
func NewSeededGenerator(seed, stream uint64) *Generator {
	return NewGenerator(rand.NewPCG(seed, stream))
}

// FillUniform overwrites dst with i.i.d. uniform values from [0,1).
func (g *Generator) FillUniform(dst []float64) {
	for i := range dst {
		dst[i] = g.rng.Float64()
	}
}

// FillNormal overwrites dst with normal values clipped into [0,1].
func (g *Generator) FillNormal(dst []float64) {
	for i := range dst {
		dst[i] = clip(g.normal.Rand())
	}
}

// Generate draws a new sequence of n values from dist.
func (g *Generator) Generate(n int, dist Distribution) (Sequence, error) {
	if n < 1 {
		return nil, &core.ParamError{Name: "items", Value: n, Reason: "must be >= 1"}
	}
	seq := make(Sequence, n)
	switch dist {
	case Uniform:
		g.FillUniform(seq)
	case Normal:
		g.FillNormal(seq)
	default:
		return nil, &core.ParamError{Name: "distribution", Value: dist, Reason: "must be uniform or normal"}
	}
	return seq, nil
}

func clip(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
