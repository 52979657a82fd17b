package sample

import (
	"math/rand"
)

// bernoulli implements a simple u<p fire decision.
type bernoulli struct {
	p   float64
	rng *rand.Rand
}

func newBernoulli(p float64, rng *rand.Rand) bernoulli { return bernoulli{p: p, rng: rng} }

func (b bernoulli) fire() bool {
	if b.p <= 0 {
		return false
	}
	if b.p >= 1 {
		return true
	}
	return b.rng.Float64() < b.p
}
