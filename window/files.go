package window

import (
	"fmt"

	"github.com/observe-l/slidewin/internal/dem"
	"github.com/observe-l/slidewin/internal/shotdata"
)

// FileRequest describes one out-of-process decode job.
type FileRequest struct {
	NumShots        int
	NumDetectors    int
	NumObservables  int
	ModelPath       string
	DetectionsPath  string
	PredictionsPath string
	// Format applies to both the detection and prediction files; empty means b8.
	Format shotdata.Format
}

// DecodeViaFiles loads the error model and detection events from disk,
// decodes them with d and writes the predictions. It produces the same bytes
// as compiling d and calling DecodeShotsBitPacked in memory.
func DecodeViaFiles(d Decoder, req FileRequest) error {
	model, err := dem.Load(req.ModelPath)
	if err != nil {
		return err
	}
	if model.NumDetectors() != req.NumDetectors {
		return &ShapeError{What: "model detectors", Got: model.NumDetectors(), Want: req.NumDetectors}
	}
	if model.NumObservables() != req.NumObservables {
		return &ShapeError{What: "model observables", Got: model.NumObservables(), Want: req.NumObservables}
	}
	compiled, err := d.Compile(model)
	if err != nil {
		return err
	}
	format := req.Format
	if format == "" {
		format = shotdata.B8
	}
	packed, shots, err := shotdata.ReadFile(req.DetectionsPath, format, req.NumDetectors)
	if err != nil {
		return fmt.Errorf("read detection events: %w", err)
	}
	if shots != req.NumShots {
		return &ShapeError{What: "shots in " + req.DetectionsPath, Got: shots, Want: req.NumShots}
	}
	preds, err := compiled.DecodeShotsBitPacked(packed, shots)
	if err != nil {
		return err
	}
	if err := shotdata.WriteFile(req.PredictionsPath, format, preds, req.NumObservables); err != nil {
		return fmt.Errorf("write predictions: %w", err)
	}
	return nil
}
