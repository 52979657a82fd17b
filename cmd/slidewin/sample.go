package main

import (
	"math/rand"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/observe-l/slidewin/internal/sample"
	"github.com/observe-l/slidewin/internal/shotdata"
)

func newSampleCmd(a *app) *cobra.Command {
	var (
		demPath string
		shots   int
		seed    int64
		out     string
		obsOut  string
		format  string
	)
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Draw synthetic shots from an error model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := shotdata.ParseFormat(format)
			if err != nil {
				return err
			}
			m, err := loadModel(demPath)
			if err != nil {
				return err
			}
			s, err := sample.New(m, rand.New(rand.NewSource(seed)))
			if err != nil {
				return err
			}
			b := s.Sample(shots)
			if err := shotdata.WriteFile(out, f, b.Detections, m.NumDetectors()); err != nil {
				return err
			}
			if obsOut != "" {
				if err := shotdata.WriteFile(obsOut, f, b.Observables, m.NumObservables()); err != nil {
					return err
				}
			}
			a.log.Info("sampled shots", zap.Int("shots", shots), zap.String("out", out), zap.Int64("seed", seed))
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&demPath, "dem", "", "detector error model file")
	fl.IntVar(&shots, "shots", 1000, "number of shots")
	fl.Int64Var(&seed, "seed", 1, "random seed")
	fl.StringVar(&out, "out", "", "detection events file")
	fl.StringVar(&obsOut, "obs-out", "", "observable flips file")
	fl.StringVar(&format, "format", "b8", "shot data format: b8 or 01")
	_ = cmd.MarkFlagRequired("dem")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
