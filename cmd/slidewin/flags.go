package main

import (
	"github.com/spf13/cobra"

	"github.com/observe-l/slidewin/internal/config"
	"github.com/observe-l/slidewin/internal/dem"
	"github.com/observe-l/slidewin/internal/matching/extern"
	"github.com/observe-l/slidewin/internal/matching/lookup"
	"github.com/observe-l/slidewin/window"
)

// windowFlags override the window section of the config when set.
type windowFlags struct {
	size         int
	overlap      int
	rounds       int
	batchWindows bool
	batchShots   int
	strict       bool
}

func (w *windowFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&w.size, "window-size", 10, "rounds per recording window")
	f.IntVar(&w.overlap, "overlap", 0, "extra rounds decoded on each side of a recording window")
	f.IntVar(&w.rounds, "rounds", 0, "detector rounds (0 infers from the detector count)")
	f.BoolVar(&w.batchWindows, "batch-windows", false, "submit all windows of a shot in one matcher call")
	f.IntVar(&w.batchShots, "batch-shots", 1, "shots per batched matcher call")
	f.BoolVar(&w.strict, "strict-inference", false, "fail when the inferred round count is ambiguous")
}

func (w *windowFlags) apply(cmd *cobra.Command, cfg *config.WindowConfig) {
	f := cmd.Flags()
	if f.Changed("window-size") {
		cfg.Size = w.size
	}
	if f.Changed("overlap") {
		cfg.Overlap = w.overlap
	}
	if f.Changed("rounds") {
		cfg.NumRounds = w.rounds
	}
	if f.Changed("batch-windows") {
		cfg.BatchWindows = w.batchWindows
	}
	if f.Changed("batch-shots") {
		cfg.BatchShots = w.batchShots
	}
	if f.Changed("strict-inference") {
		cfg.StrictInference = w.strict
	}
}

func (a *app) matcherBuilder() window.MatcherBuilder {
	if a.cfg.Matcher.Kind == config.MatcherExtern {
		return extern.Builder(extern.Config{
			Command: a.cfg.Matcher.Command,
			Timeout: a.cfg.Matcher.Timeout,
			Logger:  a.log,
		})
	}
	return lookup.Build
}

func loadModel(path string) (*dem.Model, error) {
	if path == "" {
		return nil, &window.ConfigError{Field: "dem", Reason: "no detector error model given"}
	}
	return dem.Load(path)
}
