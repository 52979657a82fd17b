// Package sample draws synthetic shots from a detector error model by firing
// each mechanism independently.
package sample

import (
	"fmt"
	"math/rand"

	"github.com/observe-l/slidewin/internal/bitpack"
	"github.com/observe-l/slidewin/internal/dem"
)

type mechanism struct {
	fire bernoulli
	dets []int
	obs  []int
}

// Sampler is not safe for concurrent use; give each goroutine its own.
type Sampler struct {
	numDetectors   int
	numObservables int
	mechs          []mechanism
	dets           []bool
	obs            []bool
}

func New(m *dem.Model, rng *rand.Rand) (*Sampler, error) {
	if m == nil || rng == nil {
		return nil, fmt.Errorf("sample: nil model or rng")
	}
	s := &Sampler{
		numDetectors:   m.NumDetectors(),
		numObservables: m.NumObservables(),
		dets:           make([]bool, m.NumDetectors()),
		obs:            make([]bool, m.NumObservables()),
	}
	err := m.ForEachMechanism(func(mc dem.Mechanism) error {
		s.mechs = append(s.mechs, mechanism{fire: newBernoulli(mc.Prob, rng), dets: mc.Detectors, obs: mc.Observables})
		return nil
	})
	return s, err
}

// Batch is a set of sampled shots, bit-packed row by row.
type Batch struct {
	Shots       int
	Detections  []byte // Shots rows of ceil(NumDetectors/8) bytes
	Observables []byte // Shots rows of ceil(NumObservables/8) bytes
}

// Sample draws shots shots.
func (s *Sampler) Sample(shots int) Batch {
	dRow := bitpack.BytesFor(s.numDetectors)
	oRow := bitpack.BytesFor(s.numObservables)
	b := Batch{
		Shots:       shots,
		Detections:  make([]byte, shots*dRow),
		Observables: make([]byte, shots*oRow),
	}
	for i := 0; i < shots; i++ {
		s.shot()
		bitpack.PackInto(b.Detections[i*dRow:], s.dets)
		bitpack.PackInto(b.Observables[i*oRow:], s.obs)
	}
	return b
}

func (s *Sampler) shot() {
	clear(s.dets)
	clear(s.obs)
	for _, m := range s.mechs {
		if !m.fire.fire() {
			continue
		}
		for _, d := range m.dets {
			s.dets[d] = !s.dets[d]
		}
		for _, o := range m.obs {
			s.obs[o] = !s.obs[o]
		}
	}
}

// LogicalErrors counts the shots whose predicted observables differ from the
// sampled ones. Both arguments are rows of ceil(numObservables/8) bytes.
func LogicalErrors(predicted, actual []byte, numObservables int) (int, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("sample: %d predicted bytes, %d actual", len(predicted), len(actual))
	}
	row := bitpack.BytesFor(numObservables)
	if row == 0 {
		return 0, nil
	}
	errs := 0
	for i := 0; i < len(actual); i += row {
		for j := 0; j < row; j++ {
			if predicted[i+j] != actual[i+j] {
				errs++
				break
			}
		}
	}
	return errs, nil
}
