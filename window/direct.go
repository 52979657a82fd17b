package window

import (
	"fmt"
	"time"

	"github.com/observe-l/slidewin/internal/bitpack"
	"github.com/observe-l/slidewin/internal/metrics"
)

// DirectCompiled decodes every shot's full history in one matcher call, with
// no windowing. It is the reference a single full-length window must match.
type DirectCompiled struct {
	matcher Matcher
	total   int
	numObs  int
	metrics *metrics.Decode
}

// CompileDirect builds the matcher for m and wraps it without windowing.
func CompileDirect(m ErrorModel, build MatcherBuilder) (*DirectCompiled, error) {
	if m == nil {
		return nil, &ConfigError{Field: "error_model", Reason: "nil"}
	}
	if build == nil {
		return nil, &ConfigError{Field: "matcher", Reason: "no matcher builder"}
	}
	mt, err := build(m)
	if err != nil {
		return nil, &DecodeError{Shot: -1, Window: -1, Err: fmt.Errorf("build matcher: %w", err)}
	}
	total, numObs := m.NumDetectors(), m.NumObservables()
	if got := mt.NumDetectors(); got != total {
		return nil, &ShapeError{What: "matcher detectors", Got: got, Want: total}
	}
	if got := mt.NumObservables(); got != numObs {
		return nil, &ShapeError{What: "matcher observables", Got: got, Want: numObs}
	}
	return &DirectCompiled{matcher: mt, total: total, numObs: numObs}, nil
}

// WithMetrics returns a copy of d recording into md.
func (d *DirectCompiled) WithMetrics(md *metrics.Decode) *DirectCompiled {
	cp := *d
	cp.metrics = md
	return &cp
}

func (d *DirectCompiled) NumDetectors() int   { return d.total }
func (d *DirectCompiled) NumObservables() int { return d.numObs }

func (d *DirectCompiled) DecodeShotsBitPacked(packed []byte, numShots int) ([]byte, error) {
	start := time.Now()
	inBytes := bitpack.BytesFor(d.total)
	outBytes := bitpack.BytesFor(d.numObs)
	if numShots < 0 || len(packed) != numShots*inBytes {
		d.metrics.IncError(string(CodeShape))
		return nil, &ShapeError{What: "bit-packed detection bytes", Got: len(packed), Want: max(numShots, 0) * inBytes}
	}
	syndromes := make([][]bool, numShots)
	for i := range syndromes {
		syndromes[i] = make([]bool, d.total)
		bitpack.UnpackInto(syndromes[i], packed[i*inBytes:(i+1)*inBytes])
	}
	out := make([]byte, numShots*outBytes)
	if numShots == 0 {
		return out, nil
	}
	d.metrics.IncMatcherCalls()
	d.metrics.AddWindows(numShots)
	preds, err := d.matcher.DecodeBatch(syndromes)
	if err == nil {
		err = checkPredictions(preds, numShots, d.numObs)
	}
	if err != nil {
		d.metrics.IncError(string(CodeDecode))
		return nil, &DecodeError{Shot: 0, Shots: numShots, Window: -1, Err: err}
	}
	for i, p := range preds {
		bitpack.PackInto(out[i*outBytes:], p)
	}
	d.metrics.AddShots(numShots)
	d.metrics.ObserveBatch(start)
	return out, nil
}
