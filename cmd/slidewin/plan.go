package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/observe-l/slidewin/window"
)

func newPlanCmd(a *app) *cobra.Command {
	var (
		wf      windowFlags
		demPath string
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the window plan for a round count or an error model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wf.apply(cmd, &a.cfg.Window)
			w := a.cfg.Window
			rounds := w.NumRounds
			if demPath != "" {
				m, err := loadModel(demPath)
				if err != nil {
					return err
				}
				if rounds == 0 {
					r, alts, err := window.InferRounds(m.NumDetectors())
					if err != nil {
						return err
					}
					if len(alts) > 0 {
						fmt.Fprintf(cmd.OutOrStdout(), "inferred %d rounds (also fit: %v)\n", r, alts)
					}
					rounds = r
				}
			}
			if rounds == 0 {
				return &window.ConfigError{Field: "num_rounds", Reason: "give --rounds or --dem"}
			}
			plan, err := window.Plan(rounds, w.Size, w.Overlap)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "window\trecord\tdecode")
			for i, win := range plan {
				fmt.Fprintf(tw, "%d\t[%d,%d)\t[%d,%d)\n", i, win.RecordStart, win.RecordEnd, win.DecodeStart, win.DecodeEnd)
			}
			return tw.Flush()
		},
	}
	wf.register(cmd)
	cmd.Flags().StringVar(&demPath, "dem", "", "infer the round count from this error model")
	return cmd
}
