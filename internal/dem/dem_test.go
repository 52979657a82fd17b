package dem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const repetitionModel = `# distance-3 repetition code, 2 detectors per round
error(0.1) D0 L0
error(0.1) D0 D1
error(0.1) D1
detector(1, 0) D0
detector(3, 0) D1
repeat 3 {
    error(0.05) D0 D2
    error(0.05) D1 D3
    shift_detectors(0, 1) 2
}
error(0.1) D0 D1 ^ D1 L0
logical_observable L0
`

func TestParseRepeatAndShift(t *testing.T) {
	m, err := Parse(strings.NewReader(repetitionModel))
	require.NoError(t, err)
	// the third repeat iteration reaches D(4+3)
	require.Equal(t, 8, m.NumDetectors())
	require.Equal(t, 1, m.NumObservables())
	require.Equal(t, 3+6+1, m.NumMechanisms())

	mechs := m.Mechanisms()
	require.Len(t, mechs, m.NumMechanisms())
	require.Equal(t, Mechanism{Prob: 0.1, Detectors: []int{0}, Observables: []int{0}}, mechs[0])
	require.Equal(t, []int{2, 4}, mechs[5].Detectors, "second repeat iteration is shifted by 2")
	last := mechs[len(mechs)-1]
	require.Equal(t, []int{6}, last.Detectors, "D1 cancels across '^' after a shift of 6")
	require.Equal(t, []int{0}, last.Observables)
}

func TestParseTagsAndDeclarations(t *testing.T) {
	m, err := Parse(strings.NewReader("error[leak](0.2) D4\nlogical_observable L2\ndetector D9\n"))
	require.NoError(t, err)
	require.Equal(t, 10, m.NumDetectors())
	require.Equal(t, 3, m.NumObservables())
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"bad probability": "error(1.5) D0\n",
		"unknown":         "frobnicate D0\n",
		"unmatched brace": "}\n",
		"unterminated":    "repeat 2 {\nerror(0.1) D0\n",
		"bad target":      "error(0.1) X3\n",
		"separator":       "detector D0 ^ D1\n",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(text))
			require.Error(t, err)
		})
	}
}

func TestForEachMechanismStops(t *testing.T) {
	m, err := Parse(strings.NewReader(repetitionModel))
	require.NoError(t, err)
	seen := 0
	stop := os.ErrClosed
	err = m.ForEachMechanism(func(Mechanism) error {
		seen++
		if seen == 4 {
			return stop
		}
		return nil
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 4, seen)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.dem")
	require.NoError(t, os.WriteFile(path, []byte(repetitionModel), 0o644))
	m, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 8, m.NumDetectors())
	require.Equal(t, path, m.Path())

	_, err = Load(filepath.Join(t.TempDir(), "missing.dem"))
	require.Error(t, err)
}
