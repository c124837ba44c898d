package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/datakit/internal/envcheck"
)

func newStatusCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the datathon environment",
		Long: `Check that the current directory is a datathon project and report on:
  - the MCP servers listed in the project marker (.mcp.json)
  - required tools on PATH
  - the expected directory layout
  - environment variables such as GITHUB_PAT

Exits with status 1 outside a project directory.`,
		Example: `  datakit status
  datakit status --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, a, jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func runStatus(cmd *cobra.Command, a *app, jsonOutput bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checker := envcheck.New(a.cfg.Project, envcheck.WithOutput(cmd.OutOrStdout()))
	report, err := checker.RunAll(ctx, a.dir)
	if report == nil {
		return err
	}
	if jsonOutput {
		if perr := checker.PrintJSON(report); perr != nil {
			return perr
		}
	} else {
		checker.PrintReport(report)
	}
	return err
}
