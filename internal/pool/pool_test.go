package pool

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/observe-l/slidewin/internal/bitpack"
	"github.com/observe-l/slidewin/window"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type model struct{ det, obs int }

func (m model) NumDetectors() int   { return m.det }
func (m model) NumObservables() int { return m.obs }

// xorMatcher predicts observable j as the parity of detectors j, j+obs, ...
// and fails on any syndrome whose first detector equals failOn.
type xorMatcher struct {
	model
	fail bool
}

func (x xorMatcher) DecodeBatch(syndromes [][]bool) ([][]bool, error) {
	out := make([][]bool, len(syndromes))
	for i, s := range syndromes {
		if x.fail && s[0] {
			return nil, errors.New("refusing detector 0")
		}
		p := make([]bool, x.obs)
		for d, v := range s {
			if v {
				p[d%x.obs] = !p[d%x.obs]
			}
		}
		out[i] = p
	}
	return out, nil
}

func newFactory(t *testing.T, m model, fail bool) NewDecoderFunc {
	return func() (window.CompiledDecoder, error) {
		return window.Compile(m, func(window.ErrorModel) (window.Matcher, error) {
			return xorMatcher{model: m, fail: fail}, nil
		}, window.Options{WindowSize: 2, Overlap: 1, NumRounds: 6})
	}
}

func shots(n, bits int, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	b := make([]byte, n*bitpack.BytesFor(bits))
	rng.Read(b)
	if bits%8 != 0 {
		row := bitpack.BytesFor(bits)
		mask := byte(1)<<(bits%8) - 1
		for i := row - 1; i < len(b); i += row {
			b[i] &= mask
		}
	}
	return b
}

func TestRunMatchesSequential(t *testing.T) {
	m := model{det: 6 * 5, obs: 3}
	factory := newFactory(t, m, false)
	packed := shots(1000, m.det, 1)

	seq, err := factory()
	require.NoError(t, err)
	want, err := seq.DecodeShotsBitPacked(packed, 1000)
	require.NoError(t, err)

	for _, opts := range []Options{
		{Workers: 1, ChunkShots: 1000},
		{Workers: 4, ChunkShots: 7},
		{Workers: 16, ChunkShots: 100},
		{},
	} {
		got, err := Run(context.Background(), opts, factory, packed, 1000)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestRunReportsAbsoluteShot(t *testing.T) {
	m := model{det: 12, obs: 1}
	packed := make([]byte, 50*2)
	packed[37*2] = 1 // shot 37 fires detector 0

	_, err := Run(context.Background(), Options{Workers: 3, ChunkShots: 5}, newFactory(t, m, true), packed, 50)
	require.ErrorIs(t, err, window.ErrDecode)
	var de *window.DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 37, de.Shot)
}

func TestRunShapeAndFactoryErrors(t *testing.T) {
	m := model{det: 12, obs: 1}
	_, err := Run(context.Background(), Options{Workers: 2}, newFactory(t, m, false), make([]byte, 3), 2)
	require.ErrorIs(t, err, window.ErrShape)

	boom := errors.New("no decoder")
	_, err = Run(context.Background(), Options{}, func() (window.CompiledDecoder, error) { return nil, boom }, nil, 0)
	require.ErrorIs(t, err, boom)

	calls := 0
	flaky := func() (window.CompiledDecoder, error) {
		calls++
		if calls > 1 {
			return nil, boom
		}
		return newFactory(t, m, false)()
	}
	_, err = Run(context.Background(), Options{Workers: 2, ChunkShots: 1}, flaky, make([]byte, 2*10), 10)
	require.ErrorIs(t, err, boom)
}

func TestRunCancelled(t *testing.T) {
	m := model{det: 12, obs: 1}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, Options{Workers: 2, ChunkShots: 1}, newFactory(t, m, false), make([]byte, 2*100), 100)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunZeroShots(t *testing.T) {
	out, err := Run(context.Background(), Options{}, newFactory(t, model{det: 12, obs: 1}, false), nil, 0)
	require.NoError(t, err)
	require.Empty(t, out)
}
