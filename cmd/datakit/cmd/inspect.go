package cmd

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/datakit/dataio"
	"github.com/YuminosukeSato/datakit/eda"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		sample int
		target string
	)

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Load a dataset and print an inspection report and quick EDA",
		Example: `  datakit inspect data/raw/train.csv
  datakit inspect data/raw/train.xlsx --sample 5000 --target churn`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("sample") {
				sample = a.cfg.Preprocess.SampleSize
			}
			out := cmd.OutOrStdout()
			t, _, err := dataio.LoadAndInspect(args[0],
				dataio.WithOutput(out),
				dataio.WithSampleSize(sample),
				dataio.WithSeed(a.cfg.Preprocess.Seed),
			)
			if err != nil {
				return err
			}
			_, _ = out.Write([]byte("\n"))
			_, err = eda.QuickEDA(out, t, target)
			return err
		},
	}
	cmd.Flags().IntVar(&sample, "sample", 0, "Randomly sample N rows (0 keeps all)")
	cmd.Flags().StringVar(&target, "target", "", "Target column for the target analysis")
	return cmd
}
