// Command slidewin decodes memory-experiment detection events with a
// sliding-window decoder.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/observe-l/slidewin/internal/config"
	"github.com/observe-l/slidewin/internal/logging"
)

type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "slidewin",
		Short:         "Sliding-window decoding of memory-experiment syndromes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file (defaults apply when empty)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides log.level)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "json or console (overrides log.format)")

	root.AddCommand(
		newDecodeCmd(a),
		newPlanCmd(a),
		newInfoCmd(a),
		newSampleCmd(a),
		newBudgetCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	a.cfg = config.Default()
	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if cmd.Flags().Changed("log-level") {
		a.cfg.Log.Level = a.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		a.cfg.Log.Format = a.logFormat
	}
	log, err := logging.New(a.cfg.Log.Level, a.cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = log
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "slidewin:", err)
		os.Exit(1)
	}
}
