package generator

import (
	"math"
	"math/rand"
)

// Generator produces the synthetic series backing a simulation. The
// random source is injected so callers that need reproducible timelines
// can seed it; the source itself never seeds.
type Generator struct {
	rng *rand.Rand
}

// New creates a Generator on top of the given random source.
func New(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Normal returns a sample from N(mean, stddev) using the Box-Muller
// transform from two independent uniform draws.
func (g *Generator) Normal(mean, stddev float64) float64 {
	u1 := g.rng.Float64()
	for u1 == 0 {
		u1 = g.rng.Float64()
	}
	u2 := g.rng.Float64()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + stddev*z
}

// ResourceSamples returns `rounds` historical samples for one
// (team, resource) pair: max(0, round(mean + N(0, 2))) where the pair
// mean is drawn once, uniform in [2, 10].
func (g *Generator) ResourceSamples(rounds int) []int {
	mean := 2 + g.rng.Float64()*8
	samples := make([]int, rounds)
	for i := range samples {
		v := math.Round(g.Normal(mean, 2))
		if v < 0 {
			v = 0
		}
		samples[i] = int(v)
	}
	return samples
}

// Float64 returns a uniform draw in [0, 1).
func (g *Generator) Float64() float64 {
	return g.rng.Float64()
}

// Intn returns a uniform draw in [0, n).
func (g *Generator) Intn(n int) int {
	return g.rng.Intn(n)
}
