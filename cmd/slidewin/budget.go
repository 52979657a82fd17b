package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newBudgetCmd(a *app) *cobra.Command {
	var rates []float64
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Print collection limits for physical error rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := a.cfg.Budget
			if err := b.Validate(); err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "rate\tmax_errors\tmax_shots")
			for _, p := range rates {
				if p <= 0 {
					return fmt.Errorf("error rate must be positive, got %g", p)
				}
				fmt.Fprintf(tw, "%g\t%d\t%d\n", p, b.MaxErrors(p), b.MaxShots(p))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Float64SliceVar(&rates, "rate", []float64{0.003, 0.009}, "physical error rates")
	return cmd
}
