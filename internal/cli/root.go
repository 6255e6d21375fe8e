// Package cli implements the suite command line.
package cli

import (
	"os"

	"github.com/soyeahso/suite/internal/config"
	"github.com/soyeahso/suite/internal/logging"
	"github.com/spf13/cobra"
)

// Shared by every subcommand, filled in by the root's pre-run.
var (
	cfgFile  string
	logLevel string

	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suite",
		Short: "Permission-gated API server for the ERP/MES web suite",
		Long: "suite serves the module routes, workflow endpoint, notification feed and UI state\n" +
			"of the web suite. Every request is checked against the capabilities its token grants.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $SUITE_HOME/config.yaml)")
	flags.StringVar(&logLevel, "log-level", os.Getenv("SUITE_LOG_LEVEL"), "one of trace, debug, info, warn, error, fatal, silent")

	for _, sub := range []func() *cobra.Command{
		newServeCmd,
		newStatusCmd,
		newAgentsCmd,
		newWorkflowsCmd,
		newPartiesCmd,
		newConfigCmd,
		newVersionCmd,
	} {
		cmd.AddCommand(sub())
	}
	return cmd
}

// setup resolves paths and builds the CLI logger before any subcommand runs.
func setup(*cobra.Command, []string) error {
	if _, err := logging.ParseLevel(logLevel); err != nil {
		return err
	}

	p, err := config.ResolvePaths()
	if err != nil {
		return err
	}
	if cfgFile != "" {
		p.Config = cfgFile
	}
	paths = p
	log = logging.New(nil, logLevel)
	return nil
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
