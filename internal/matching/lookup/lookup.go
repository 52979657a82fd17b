// Package lookup is a syndrome lookup-table matcher built from a detector
// error model. It explains a syndrome with the most likely single mechanism
// or pair of mechanisms and predicts no flip for anything else. It is meant
// for small models and tests; real experiments use an external matcher.
package lookup

import (
	"fmt"
	"sync/atomic"

	"github.com/observe-l/slidewin/internal/bitpack"
	"github.com/observe-l/slidewin/internal/dem"
	"github.com/observe-l/slidewin/window"
)

// DefaultMaxPairMechanisms bounds the quadratic pair expansion.
const DefaultMaxPairMechanisms = 2000

type entry struct {
	prob float64
	obs  []bool
}

// Table implements window.Matcher. It is safe for concurrent use.
type Table struct {
	numDetectors   int
	numObservables int
	entries        map[string]entry
	misses         atomic.Int64
}

type Options struct {
	// MaxPairMechanisms disables pairs for models with more mechanisms; 0 means the default.
	MaxPairMechanisms int
}

// New builds the table for m.
func New(m *dem.Model, opts Options) (*Table, error) {
	if m == nil {
		return nil, fmt.Errorf("lookup: nil model")
	}
	limit := opts.MaxPairMechanisms
	if limit == 0 {
		limit = DefaultMaxPairMechanisms
	}
	t := &Table{
		numDetectors:   m.NumDetectors(),
		numObservables: m.NumObservables(),
		entries:        make(map[string]entry),
	}
	mechs := m.Mechanisms()
	dets := make([][]bool, len(mechs))
	obs := make([][]bool, len(mechs))
	for i, mc := range mechs {
		dets[i] = make([]bool, t.numDetectors)
		for _, d := range mc.Detectors {
			dets[i][d] = true
		}
		obs[i] = make([]bool, t.numObservables)
		for _, o := range mc.Observables {
			obs[i][o] = true
		}
		t.add(dets[i], obs[i], mc.Prob)
	}
	if len(mechs) > limit {
		return t, nil
	}
	sd := make([]bool, t.numDetectors)
	for i := range mechs {
		for j := i + 1; j < len(mechs); j++ {
			so := make([]bool, t.numObservables)
			for k := range sd {
				sd[k] = dets[i][k] != dets[j][k]
			}
			for k := range so {
				so[k] = obs[i][k] != obs[j][k]
			}
			t.add(sd, so, mechs[i].Prob*mechs[j].Prob)
		}
	}
	return t, nil
}

// Build adapts New to window.MatcherBuilder. The error model must be a *dem.Model.
func Build(em window.ErrorModel) (window.Matcher, error) {
	m, ok := em.(*dem.Model)
	if !ok {
		return nil, fmt.Errorf("lookup: need a *dem.Model, got %T", em)
	}
	return New(m, Options{})
}

func (t *Table) add(dets, obs []bool, p float64) {
	if bitpack.Count(dets) == 0 {
		return
	}
	key := string(bitpack.Pack(dets))
	if e, ok := t.entries[key]; ok && e.prob >= p {
		return
	}
	t.entries[key] = entry{prob: p, obs: obs}
}

func (t *Table) NumDetectors() int   { return t.numDetectors }
func (t *Table) NumObservables() int { return t.numObservables }

// Len is the number of distinct non-empty syndromes in the table.
func (t *Table) Len() int { return len(t.entries) }

// Misses counts syndromes that were not in the table.
func (t *Table) Misses() int64 { return t.misses.Load() }

func (t *Table) DecodeBatch(syndromes [][]bool) ([][]bool, error) {
	out := make([][]bool, len(syndromes))
	for i, s := range syndromes {
		if len(s) != t.numDetectors {
			return nil, fmt.Errorf("lookup: syndrome %d has %d detectors, want %d", i, len(s), t.numDetectors)
		}
		pred := make([]bool, t.numObservables)
		if bitpack.Count(s) > 0 {
			if e, ok := t.entries[string(bitpack.Pack(s))]; ok {
				copy(pred, e.obs)
			} else {
				t.misses.Add(1)
			}
		}
		out[i] = pred
	}
	return out, nil
}

var _ window.Matcher = (*Table)(nil)
