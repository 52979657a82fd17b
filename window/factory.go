package window

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/observe-l/slidewin/internal/metrics"
)

// Options configure Compile.
type Options struct {
	// WindowSize is the number of rounds in each recording window.
	WindowSize int
	// Overlap is the number of extra rounds decoded on each side of a recording window.
	Overlap int
	// NumRounds is the number of detector rounds; 0 infers it from the detector count.
	NumRounds int
	// BatchWindows submits all windows of BatchShots shots in one matcher call
	// instead of one call per window. It never changes the result.
	BatchWindows bool
	// BatchShots is the number of shots per batched matcher call; <= 0 means 1.
	BatchShots int
	// StrictInference rejects an inferred round count when other candidates also fit.
	StrictInference bool

	Logger  *zap.Logger
	Metrics *metrics.Decode
}

// Compile validates opts against the error model, resolves the round layout,
// builds the matcher once and returns an immutable windowed decoder.
func Compile(m ErrorModel, build MatcherBuilder, opts Options) (*Compiled, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		return nil, &ConfigError{Field: "error_model", Reason: "nil"}
	}
	if build == nil {
		return nil, &ConfigError{Field: "matcher", Reason: "no matcher builder"}
	}
	total, numObs := m.NumDetectors(), m.NumObservables()
	if total < 1 {
		return nil, &ConfigError{Field: "num_detectors", Value: total, Reason: "must be >= 1"}
	}
	if numObs < 0 {
		return nil, &ConfigError{Field: "num_observables", Value: numObs, Reason: "must be >= 0"}
	}
	if opts.WindowSize < 1 {
		return nil, &ConfigError{Field: "window_size", Value: opts.WindowSize, Reason: "must be >= 1"}
	}
	if opts.Overlap < 0 {
		return nil, &ConfigError{Field: "overlap", Value: opts.Overlap, Reason: "must be >= 0"}
	}

	rounds := opts.NumRounds
	if rounds == 0 {
		r, alts, err := InferRounds(total)
		if err != nil {
			return nil, err
		}
		if len(alts) > 0 {
			if opts.StrictInference {
				return nil, &ConfigError{
					Field:  "num_rounds",
					Value:  r,
					Reason: fmt.Sprintf("inferred from %d detectors but %v also fit; set num_rounds explicitly", total, alts),
				}
			}
			log.Warn("round count inference is ambiguous, using first candidate",
				zap.Int("detectors", total), zap.Int("rounds", r), zap.Ints("alternatives", alts))
		}
		rounds = r
	} else if err := checkRounds(total, rounds); err != nil {
		return nil, err
	}

	if opts.WindowSize >= rounds {
		log.Debug("window covers the whole history", zap.Int("window_size", opts.WindowSize), zap.Int("rounds", rounds))
	}
	plan, err := Plan(rounds, opts.WindowSize, opts.Overlap)
	if err != nil {
		return nil, err
	}

	mt, err := build(m)
	if err != nil {
		return nil, &DecodeError{Shot: -1, Window: -1, Err: fmt.Errorf("build matcher: %w", err)}
	}
	if got := mt.NumDetectors(); got != total {
		return nil, &ShapeError{What: "matcher detectors", Got: got, Want: total}
	}
	if got := mt.NumObservables(); got != numObs {
		return nil, &ShapeError{What: "matcher observables", Got: got, Want: numObs}
	}

	group := 1
	if opts.BatchWindows && opts.BatchShots > 1 {
		group = opts.BatchShots
	}
	c := &Compiled{
		matcher:      mt,
		numRounds:    rounds,
		perRound:     total / rounds,
		windowSize:   opts.WindowSize,
		overlap:      opts.Overlap,
		numObs:       numObs,
		total:        total,
		plan:         plan,
		batchWindows: opts.BatchWindows,
		group:        group,
		metrics:      opts.Metrics,
	}
	log.Info("compiled sliding window decoder",
		zap.Int("rounds", c.numRounds),
		zap.Int("detectors_per_round", c.perRound),
		zap.Int("window_size", c.windowSize),
		zap.Int("overlap", c.overlap),
		zap.Int("windows", len(plan)),
		zap.Int("observables", numObs),
		zap.Bool("batch_windows", c.batchWindows))
	return c, nil
}
