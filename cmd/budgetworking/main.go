package main

import (
	"fmt"
	"os"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/Prabhakar2095/Budget-Working/internal/config"
	"github.com/Prabhakar2095/Budget-Working/internal/logging"
)

// options shared by every subcommand
type options struct {
	dataDir  string
	logLevel string
	cfg      *config.AppConfig
	info     config.LoadConfigInfo
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "budgetworking",
		Short:         "Telecom LOB budget planner",
		Long:          "Plans volume, revenue, opex, capex and cashflow per line of business and fiscal year.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.load()
		},
	}
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "data directory (overrides config.toml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	serve := newServeCmd(opts)
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve, newExportCmd(opts), newCalcCmd())
	return root
}

func (o *options) load() error {
	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load config, using defaults")
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}
	if o.dataDir != "" {
		cfg.Data.DataDir = o.dataDir
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	logging.Setup(cfg.Log)
	o.cfg, o.info = cfg, info
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
