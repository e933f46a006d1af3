// Package cli implements the vaxsim batch command line.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/config"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/logger"
)

type globalOptions struct {
	catalogPath string
	logLevel    string
}

// loadCatalog returns the built-in catalog, overlaid by --catalog when given
func (o *globalOptions) loadCatalog() (*config.Catalog, error) {
	if o.catalogPath == "" {
		return config.Builtin(), nil
	}
	return config.LoadCatalog(o.catalogPath)
}

// NewRootCommand builds the vaxsim command tree
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "vaxsim",
		Short: "Mass-vaccination campaign simulator",
		Long: `vaxsim simulates a mass-vaccination campaign: patients arrive by cohort
and operating day, queue for a finite pool of stations, and go home to
reschedule when every station is busy.

Scenarios come from the built-in catalog, optionally overlaid by a YAML
catalog file. Each run writes its event log, metrics and daily series.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.SetDefault(logger.NewText(opts.logLevel, cmd.ErrOrStderr()))
		},
	}

	root.PersistentFlags().StringVarP(&opts.catalogPath, "catalog", "c", os.Getenv("VAXSIM_CATALOG"), "Scenario catalog YAML overlaid on the built-ins")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newRunCommand(opts),
		newScenariosCommand(opts),
		newCompareCommand(),
		newArchiveCommand(),
	)
	return root
}
