package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/datakit/dataio"
	"github.com/YuminosukeSato/datakit/plots"
)

func newPlotCmd(a *app) *cobra.Command {
	var (
		target    string
		maxCols   int
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "plot FILE",
		Short: "Write a correlation heatmap and distribution plots as PNG",
		Example: `  datakit plot data/raw/train.csv
  datakit plot data/raw/train.csv --max-cols 15 -o outputs/eda`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputDir == "" {
				outputDir = a.cfg.Output.PlotDir
			}
			t, err := dataio.Load(args[0], dataio.WithSampleSize(a.cfg.Preprocess.SampleSize), dataio.WithSeed(a.cfg.Preprocess.Seed))
			if err != nil {
				return err
			}
			paths, err := plots.CreateBaselinePlots(t, target, maxCols, outputDir)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", p)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "Target column")
	cmd.Flags().IntVar(&maxCols, "max-cols", plots.DefaultMaxCols, "Maximum numerical columns in the heatmap")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Output directory (default from config)")
	return cmd
}
