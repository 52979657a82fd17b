package window

import (
	"math/rand"

	"github.com/observe-l/slidewin/internal/bitpack"
)

type shape struct{ det, obs int }

func (s shape) NumDetectors() int   { return s.det }
func (s shape) NumObservables() int { return s.obs }

// parityMatcher predicts observable j as the parity of every detector whose
// index is a multiple of j+2. It is linear and deterministic, which is all the
// windowing logic needs from a matcher.
type parityMatcher struct {
	shape
	calls int
}

func (p *parityMatcher) DecodeBatch(syndromes [][]bool) ([][]bool, error) {
	p.calls++
	out := make([][]bool, len(syndromes))
	for i, s := range syndromes {
		pred := make([]bool, p.obs)
		for j := range pred {
			for d, v := range s {
				if v && d%(j+2) == 0 {
					pred[j] = !pred[j]
				}
			}
		}
		out[i] = pred
	}
	return out, nil
}

func parityBuilder(m ErrorModel) (Matcher, error) {
	return &parityMatcher{shape: shape{m.NumDetectors(), m.NumObservables()}}, nil
}

func randomShots(rng *rand.Rand, shots, bits int) []byte {
	row := bitpack.BytesFor(bits)
	out := make([]byte, 0, shots*row)
	v := make([]bool, bits)
	for s := 0; s < shots; s++ {
		for i := range v {
			v[i] = rng.Intn(5) == 0
		}
		out = append(out, bitpack.Pack(v)...)
	}
	return out
}
