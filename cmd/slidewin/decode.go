package main

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/observe-l/slidewin/internal/metrics"
	"github.com/observe-l/slidewin/internal/pool"
	"github.com/observe-l/slidewin/internal/report"
	"github.com/observe-l/slidewin/internal/sample"
	"github.com/observe-l/slidewin/internal/shotdata"
	"github.com/observe-l/slidewin/window"
)

type decodeFlags struct {
	window     windowFlags
	dem        string
	in         string
	out        string
	format     string
	shots      int
	truth      string
	report     string
	metricsOut string
	direct     bool
	workers    int
	chunk      int
}

func newDecodeCmd(a *app) *cobra.Command {
	var fl decodeFlags
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode a file of detection events into observable predictions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDecode(cmd, &fl)
		},
	}
	fl.window.register(cmd)
	f := cmd.Flags()
	f.StringVar(&fl.dem, "dem", "", "detector error model file (required)")
	f.StringVar(&fl.in, "in", "", "detection events file (required, .zst is decompressed)")
	f.StringVar(&fl.out, "out", "", "predictions file (required, .zst is compressed)")
	f.StringVar(&fl.format, "format", "b8", "shot data format: b8 or 01")
	f.IntVar(&fl.shots, "shots", -1, "expected number of shots (-1 accepts any)")
	f.StringVar(&fl.truth, "truth", "", "actual observable flips, to count logical errors")
	f.StringVar(&fl.report, "report", "", "write a JSON run report to this file ('-' for stdout)")
	f.StringVar(&fl.metricsOut, "metrics-out", "", "write prometheus metrics to this file")
	f.BoolVar(&fl.direct, "direct", false, "decode each shot's whole history in one matcher call")
	f.IntVar(&fl.workers, "workers", 0, "worker count (overrides pool.workers)")
	f.IntVar(&fl.chunk, "chunk-shots", 0, "shots per work item (overrides pool.chunk_shots)")
	for _, name := range []string{"dem", "in", "out"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) runDecode(cmd *cobra.Command, fl *decodeFlags) error {
	fl.window.apply(cmd, &a.cfg.Window)
	if fl.workers > 0 {
		a.cfg.Pool.Workers = fl.workers
	}
	if fl.chunk > 0 {
		a.cfg.Pool.ChunkShots = fl.chunk
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	format, err := shotdata.ParseFormat(fl.format)
	if err != nil {
		return err
	}
	model, err := loadModel(fl.dem)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	md, err := metrics.NewDecode(reg)
	if err != nil {
		return err
	}
	build := a.matcherBuilder()
	opts := a.cfg.Window.Options()
	opts.Logger = a.log
	opts.Metrics = md

	run := &report.Run{
		Model:       fl.dem,
		Matcher:     a.cfg.Matcher.Kind,
		Detectors:   model.NumDetectors(),
		Observables: model.NumObservables(),
		Workers:     a.cfg.Pool.Workers,
	}
	var newDecoder pool.NewDecoderFunc
	if fl.direct {
		newDecoder = func() (window.CompiledDecoder, error) {
			d, err := window.CompileDirect(model, build)
			if err != nil {
				return nil, err
			}
			return d.WithMetrics(md), nil
		}
	} else {
		c, err := window.Compile(model, build, opts)
		if err != nil {
			return err
		}
		run.Rounds = c.NumRounds()
		run.DetectorsPerRound = c.DetectorsPerRound()
		run.WindowSize = c.WindowSize()
		run.Overlap = c.Overlap()
		run.Windows = c.Windows()
		workerOpts := opts
		workerOpts.Logger = nil
		first := true
		newDecoder = func() (window.CompiledDecoder, error) {
			// the pool asks for its first decoder before starting workers
			if first {
				first = false
				return c, nil
			}
			return window.Compile(model, build, workerOpts)
		}
	}

	packed, shots, err := shotdata.ReadFile(fl.in, format, model.NumDetectors())
	if err != nil {
		return err
	}
	if fl.shots >= 0 && shots != fl.shots {
		return &window.ShapeError{What: "shots in " + fl.in, Got: shots, Want: fl.shots}
	}

	start := time.Now()
	preds, err := pool.Run(cmd.Context(), pool.Options{
		Workers:    a.cfg.Pool.Workers,
		ChunkShots: a.cfg.Pool.ChunkShots,
		Logger:     a.log,
	}, newDecoder, packed, shots)
	if err != nil {
		a.log.Error("decode failed", zap.String("class", string(window.Classify(err))), zap.Error(err))
		return err
	}
	run.Shots = shots
	run.Elapsed = time.Since(start)
	if err := shotdata.WriteFile(fl.out, format, preds, model.NumObservables()); err != nil {
		return err
	}

	if fl.truth != "" {
		actual, n, err := shotdata.ReadFile(fl.truth, format, model.NumObservables())
		if err != nil {
			return err
		}
		if n != shots && model.NumObservables() > 0 {
			return &window.ShapeError{What: "shots in " + fl.truth, Got: n, Want: shots}
		}
		if run.LogicalErrors, err = sample.LogicalErrors(preds, actual, model.NumObservables()); err != nil {
			return err
		}
		run.HasTruth = true
		a.log.Info("logical errors", zap.Int("errors", run.LogicalErrors), zap.Int("shots", shots))
	}

	if fl.report != "" {
		if err := writeReport(cmd, fl.report, run); err != nil {
			return err
		}
	}
	if fl.metricsOut != "" {
		if err := metrics.WriteTextfile(fl.metricsOut, reg); err != nil {
			return err
		}
	}
	return nil
}

func writeReport(cmd *cobra.Command, path string, run *report.Run) error {
	if path == "-" {
		return report.Write(cmd.OutOrStdout(), run)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.Write(f, run); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
