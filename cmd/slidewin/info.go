package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/observe-l/slidewin/window"
)

func newInfoCmd(a *app) *cobra.Command {
	var demPath string
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Describe an error model and its inferred round layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadModel(demPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "detectors:   %d\n", m.NumDetectors())
			fmt.Fprintf(out, "observables: %d\n", m.NumObservables())
			fmt.Fprintf(out, "mechanisms:  %d\n", m.NumMechanisms())
			rounds, alts, err := window.InferRounds(m.NumDetectors())
			if err != nil {
				fmt.Fprintf(out, "rounds:      unknown (%v)\n", err)
				return nil
			}
			fmt.Fprintf(out, "rounds:      %d (%d detectors per round)\n", rounds, m.NumDetectors()/rounds)
			if len(alts) > 0 {
				fmt.Fprintf(out, "also fit:    %v\n", alts)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&demPath, "dem", "", "detector error model file")
	_ = cmd.MarkFlagRequired("dem")
	return cmd
}
