// Package cmd provides the CLI commands for datakit.
package cmd

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/datakit/internal/config"
	"github.com/YuminosukeSato/datakit/pkg/log"
)

// app is shared by the subcommands. cfg is loaded by the root PersistentPreRunE.
type app struct {
	dir      string
	logLevel string
	cfg      *config.Config
}

// NewRootCmd creates the root command for the datakit CLI.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "datakit",
		Short: "Datathon starter kit: environment check and data preprocessing",
		Long: `datakit checks that a datathon project is set up and turns raw tables
into model-ready features.

Settings come from datakit.yaml in the project directory and can be
overridden with DATAKIT_* environment variables.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	cmd.PersistentFlags().StringVarP(&a.dir, "dir", "C", ".", "Project directory")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(newStatusCmd(a))
	cmd.AddCommand(newInspectCmd(a))
	cmd.AddCommand(newPreprocessCmd(a))
	cmd.AddCommand(newPlotCmd(a))
	cmd.AddCommand(newBaselineCmd(a))

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.dir)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg

	level := log.ToLogLevel(cfg.Logging.Level)
	var provider *log.ZerologProvider
	errOut := cmd.ErrOrStderr()
	if cfg.Logging.Console {
		color := false
		if f, ok := errOut.(*os.File); ok {
			color = isatty.IsTerminal(f.Fd())
		}
		provider = log.NewConsoleProvider(errOut, level, color)
	} else {
		provider = log.NewZerologProviderWithWriter(errOut, level)
	}
	provider.InstallWarningHook()
	log.SetProvider(provider)
	return nil
}
