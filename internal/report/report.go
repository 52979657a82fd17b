// Package report writes the JSON summary of a decode run.
package report

import (
	"io"
	"time"

	"github.com/francoispqt/gojay"

	"github.com/observe-l/slidewin/window"
)

type Run struct {
	Model             string
	Matcher           string
	Detectors         int
	Observables       int
	Rounds            int
	DetectorsPerRound int
	WindowSize        int
	Overlap           int
	Windows           []window.Window
	Shots             int
	Workers           int
	Elapsed           time.Duration
	// LogicalErrors is only reported when HasTruth is set.
	LogicalErrors int
	HasTruth      bool
}

// ShotsPerSecond is zero when no time elapsed.
func (r *Run) ShotsPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Shots) / r.Elapsed.Seconds()
}

func (r *Run) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("model", r.Model)
	enc.StringKey("matcher", r.Matcher)
	enc.IntKey("detectors", r.Detectors)
	enc.IntKey("observables", r.Observables)
	enc.IntKey("rounds", r.Rounds)
	enc.IntKey("detectors_per_round", r.DetectorsPerRound)
	enc.IntKey("window_size", r.WindowSize)
	enc.IntKey("overlap", r.Overlap)
	enc.ArrayKey("windows", windows(r.Windows))
	enc.IntKey("shots", r.Shots)
	enc.IntKey("workers", r.Workers)
	enc.Float64Key("elapsed_seconds", r.Elapsed.Seconds())
	enc.Float64Key("shots_per_second", r.ShotsPerSecond())
	if r.HasTruth {
		enc.IntKey("logical_errors", r.LogicalErrors)
	}
}

func (r *Run) IsNil() bool { return r == nil }

type windows []window.Window

func (ws windows) MarshalJSONArray(enc *gojay.Encoder) {
	for _, w := range ws {
		enc.Object(windowJSON(w))
	}
}

func (ws windows) IsNil() bool { return ws == nil }

type windowJSON window.Window

func (w windowJSON) MarshalJSONObject(enc *gojay.Encoder) {
	enc.IntKey("record_start", w.RecordStart)
	enc.IntKey("record_end", w.RecordEnd)
	enc.IntKey("decode_start", w.DecodeStart)
	enc.IntKey("decode_end", w.DecodeEnd)
}

func (w windowJSON) IsNil() bool { return false }

// Write encodes r to w followed by a newline.
func Write(w io.Writer, r *Run) error {
	b, err := gojay.MarshalJSONObject(r)
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}
