package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/datakit/core/table"
	"github.com/YuminosukeSato/datakit/dataio"
	"github.com/YuminosukeSato/datakit/evaluation"
	"github.com/YuminosukeSato/datakit/linear"
	"github.com/YuminosukeSato/datakit/metrics"
	"github.com/YuminosukeSato/datakit/modelselection"
	"github.com/YuminosukeSato/datakit/pkg/errors"
)

// baselineResults is written to baseline_results.json.
type baselineResults struct {
	Input          string                        `json:"input"`
	Target         string                        `json:"target"`
	Model          string                        `json:"model"`
	TrainRows      int                           `json:"train_rows"`
	TestRows       int                           `json:"test_rows"`
	Features       []string                      `json:"features"`
	Classification *metrics.ClassificationReport `json:"classification,omitempty"`
	Regression     *metrics.RegressionReport     `json:"regression,omitempty"`
	PlotPath       string                        `json:"plot_path,omitempty"`
}

func newBaselineCmd(a *app) *cobra.Command {
	var (
		target    string
		testSize  float64
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "baseline FILE",
		Short: "Split, scale and score a quick baseline model",
		Long: `Run the quick baseline pipeline on FILE: label-encode, mean-impute,
split into train and test, standard-scale and fit a baseline model.

A categorical target gets a nearest centroid classifier, a classification
report and a confusion matrix plot. A numerical target gets ordinary least
squares and regression metrics. Scores go to baseline_results.json.`,
		Example: `  datakit baseline data/raw/train.csv --target churn
  datakit baseline data/raw/train.csv --target price --test-size 0.3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputDir == "" {
				outputDir = a.cfg.Output.Dir
			}
			if !cmd.Flags().Changed("test-size") {
				testSize = a.cfg.Preprocess.TestSize
			}
			return runBaseline(cmd, a, args[0], target, testSize, outputDir)
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "Target column")
	cmd.Flags().Float64Var(&testSize, "test-size", modelselection.DefaultTestSize, "Fraction of rows held out (default from config)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Output directory (default from config)")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func runBaseline(cmd *cobra.Command, a *app, path, target string, testSize float64, outputDir string) error {
	t, err := dataio.Load(path, dataio.WithSampleSize(a.cfg.Preprocess.SampleSize), dataio.WithSeed(a.cfg.Preprocess.Seed))
	if err != nil {
		return err
	}
	split, err := modelselection.PreprocessData(t, target, testSize, a.cfg.Preprocess.Seed)
	if err != nil {
		return err
	}

	res := baselineResults{
		Input:     path,
		Target:    target,
		TrainRows: len(split.TrainIndex),
		TestRows:  len(split.TestIndex),
		Features:  split.FeatureNames,
	}
	out := cmd.OutOrStdout()

	if split.YTrain.Kind() == table.Categorical {
		classes, codes := classCodes(split.YTrain, split.YTest)
		nc := linear.NewNearestCentroid()
		if err := nc.Fit(split.XTrain, codes); err != nil {
			return err
		}
		res.Model = "Nearest Centroid"
		ev, err := evaluation.EvaluateModel(nc, split.XTest, split.YTest, res.Model,
			evaluation.WithClassNames(classes),
			evaluation.WithPlotDir(a.cfg.Output.PlotDir),
			evaluation.WithOutput(out),
		)
		if err != nil {
			return err
		}
		res.Classification = ev.Report
		res.PlotPath = ev.PlotPath
	} else {
		y := split.YTrain.Floats()
		if err := errors.CheckFinite("baseline", "target", y); err != nil {
			return err
		}
		lr := linear.NewLinearRegression()
		if err := lr.Fit(split.XTrain, mat.NewDense(len(y), 1, y)); err != nil {
			return err
		}
		res.Model = "Linear Regression"
		rep, err := evaluation.EvaluateRegression(lr, split.XTest, split.YTest.Floats(), res.Model, evaluation.WithOutput(out))
		if err != nil {
			return err
		}
		res.Regression = &rep
	}

	resultsPath, err := dataio.SaveResults(outputDir, "baseline_results.json", res)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Results saved to %s\n", resultsPath)
	return nil
}

// classCodes maps the training labels to their index in the sorted set of
// labels seen in either half of the split.
func classCodes(train, test *table.Column) ([]string, *mat.Dense) {
	seen := make(map[string]struct{})
	for _, c := range []*table.Column{train, test} {
		for _, s := range c.Strings() {
			seen[s] = struct{}{}
		}
	}
	classes := make([]string, 0, len(seen))
	for s := range seen {
		classes = append(classes, s)
	}
	sort.Strings(classes)

	index := make(map[string]int, len(classes))
	for i, s := range classes {
		index[s] = i
	}
	labels := train.Strings()
	codes := mat.NewDense(len(labels), 1, nil)
	for i, s := range labels {
		codes.Set(i, 0, float64(index[s]))
	}
	return classes, codes
}
