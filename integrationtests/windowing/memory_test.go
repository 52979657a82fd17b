package windowing_test

import (
	"bytes"
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/observe-l/slidewin/internal/dem"
	"github.com/observe-l/slidewin/internal/matching/lookup"
	"github.com/observe-l/slidewin/internal/pool"
	"github.com/observe-l/slidewin/internal/sample"
	"github.com/observe-l/slidewin/internal/shotdata"
	"github.com/observe-l/slidewin/window"
)

// Distance-3 repetition code memory experiment: data errors flip one detector
// round, measurement errors flip the same check in two consecutive rounds.
const memoryModel = `
repeat 9 {
    error(0.01) D0 L0
    error(0.01) D0 D1
    error(0.01) D1
    error(0.005) D0 D2
    error(0.005) D1 D3
    shift_detectors 2
}
error(0.01) D0 L0
error(0.01) D0 D1
error(0.01) D1
detector D1
logical_observable L0
`

const rounds = 10

func loadModel(t *testing.T) *dem.Model {
	t.Helper()
	m, err := dem.Parse(strings.NewReader(memoryModel))
	if err != nil {
		t.Fatalf("parse model: %v", err)
	}
	if m.NumDetectors() != 2*rounds {
		t.Fatalf("model has %d detectors, want %d", m.NumDetectors(), 2*rounds)
	}
	return m
}

func sampleShots(t *testing.T, m *dem.Model, shots int) sample.Batch {
	t.Helper()
	s, err := sample.New(m, rand.New(rand.NewSource(2024)))
	if err != nil {
		t.Fatalf("sampler: %v", err)
	}
	return s.Sample(shots)
}

func decode(t *testing.T, d window.Decoder, m *dem.Model, b sample.Batch) []byte {
	t.Helper()
	c, err := d.Compile(m)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	preds, err := c.DecodeShotsBitPacked(b.Detections, b.Shots)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return preds
}

// TestFullWindowEqualsDirect checks that a window covering the whole history
// reproduces direct decoding bit for bit.
func TestFullWindowEqualsDirect(t *testing.T) {
	m := loadModel(t)
	b := sampleShots(t, m, 3000)
	want := decode(t, window.Direct{Build: lookup.Build}, m, b)
	for _, opts := range []window.Options{
		{WindowSize: rounds, NumRounds: rounds},
		{WindowSize: rounds + 5, Overlap: 3, NumRounds: rounds},
		{WindowSize: rounds, NumRounds: rounds, BatchWindows: true, BatchShots: 64},
	} {
		got := decode(t, window.Sliding{Build: lookup.Build, Options: opts}, m, b)
		if !bytes.Equal(want, got) {
			t.Fatalf("options %+v: windowed predictions differ from direct decoding", opts)
		}
	}
}

// TestWindowedDecodingCorrects checks that non-overlapping windows still
// correct most errors: every mechanism lands in exactly one window or, for
// measurement errors on a boundary, cancels between the two windows it touches.
func TestWindowedDecodingCorrects(t *testing.T) {
	m := loadModel(t)
	b := sampleShots(t, m, 4000)
	preds := decode(t, window.Sliding{Build: lookup.Build, Options: window.Options{WindowSize: 2, NumRounds: rounds}}, m, b)

	decoded, err := sample.LogicalErrors(preds, b.Observables, 1)
	if err != nil {
		t.Fatal(err)
	}
	uncorrected, err := sample.LogicalErrors(make([]byte, len(b.Observables)), b.Observables, 1)
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("logical errors: %d decoded, %d uncorrected, %d shots", decoded, uncorrected, b.Shots)
	if decoded >= uncorrected {
		t.Fatalf("windowed decoding made things worse: %d >= %d", decoded, uncorrected)
	}
}

func TestBatchingAndPoolDoNotChangePredictions(t *testing.T) {
	m := loadModel(t)
	b := sampleShots(t, m, 2000)
	base := window.Options{WindowSize: 3, Overlap: 1, NumRounds: rounds}
	want := decode(t, window.Sliding{Build: lookup.Build, Options: base}, m, b)

	batched := base
	batched.BatchWindows = true
	batched.BatchShots = 32
	if got := decode(t, window.Sliding{Build: lookup.Build, Options: batched}, m, b); !bytes.Equal(want, got) {
		t.Fatal("batched windows changed the predictions")
	}

	newDecoder := func() (window.CompiledDecoder, error) { return window.Compile(m, lookup.Build, base) }
	got, err := pool.Run(context.Background(), pool.Options{Workers: 4, ChunkShots: 100}, newDecoder, b.Detections, b.Shots)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	if !bytes.Equal(want, got) {
		t.Fatal("worker pool changed the predictions")
	}
}

func TestDecodeViaFilesEqualsInMemory(t *testing.T) {
	m := loadModel(t)
	b := sampleShots(t, m, 500)
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "memory.dem")
	if err := os.WriteFile(modelPath, []byte(memoryModel), 0o644); err != nil {
		t.Fatal(err)
	}
	detsPath := filepath.Join(dir, "dets.b8.zst")
	if err := shotdata.WriteFile(detsPath, shotdata.B8, b.Detections, m.NumDetectors()); err != nil {
		t.Fatal(err)
	}

	d := window.Sliding{Build: lookup.Build, Options: window.Options{WindowSize: 4, Overlap: 2, NumRounds: rounds}}
	req := window.FileRequest{
		NumShots:        b.Shots,
		NumDetectors:    m.NumDetectors(),
		NumObservables:  m.NumObservables(),
		ModelPath:       modelPath,
		DetectionsPath:  detsPath,
		PredictionsPath: filepath.Join(dir, "preds.b8.zst"),
	}
	if err := window.DecodeViaFiles(d, req); err != nil {
		t.Fatalf("decode via files: %v", err)
	}
	got, n, err := shotdata.ReadFile(req.PredictionsPath, shotdata.B8, m.NumObservables())
	if err != nil {
		t.Fatal(err)
	}
	if n != b.Shots {
		t.Fatalf("read %d predictions, want %d", n, b.Shots)
	}
	if want := decode(t, d, m, b); !bytes.Equal(want, got) {
		t.Fatal("file-based predictions differ from in-memory decoding")
	}
}
