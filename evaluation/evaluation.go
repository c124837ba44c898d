// Package evaluation runs a fitted model on a test set and reports how it did.
package evaluation

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/datakit/core/model"
	"github.com/YuminosukeSato/datakit/core/table"
	"github.com/YuminosukeSato/datakit/metrics"
	"github.com/YuminosukeSato/datakit/pkg/errors"
	"github.com/YuminosukeSato/datakit/pkg/log"
	"github.com/YuminosukeSato/datakit/plots"
)

type options struct {
	classNames []string
	plotDir    string
	output     io.Writer
	logger     log.Logger
}

// Option configures EvaluateModel and EvaluateRegression.
type Option func(*options)

// WithClassNames maps a predicted class code i to names[i]. Without it codes
// are printed as numbers.
func WithClassNames(names []string) Option {
	return func(o *options) { o.classNames = names }
}

// WithPlotDir writes the confusion matrix plot into dir.
func WithPlotDir(dir string) Option {
	return func(o *options) { o.plotDir = dir }
}

// WithOutput sets where the report is printed. Default os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.output = w }
}

// WithLogger sets the logger. Default log.GetLoggerWithName("evaluation").
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func newOptions(opts []Option) *options {
	o := &options{output: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = log.GetLoggerWithName("evaluation")
	}
	return o
}

// Result is what EvaluateModel returns.
type Result struct {
	Name      string                        `json:"name"`
	Report    *metrics.ClassificationReport `json:"report"`
	Confusion *metrics.ConfusionMatrix      `json:"-"`
	PlotPath  string                        `json:"plot_path,omitempty"`
}

// EvaluateModel predicts X with p, prints the classification report of the
// predictions against yTest and optionally plots the confusion matrix.
// A numerical yTest is compared by its formatted values.
func EvaluateModel(p model.Predictor, X mat.Matrix, yTest *table.Column, name string, opts ...Option) (*Result, error) {
	o := newOptions(opts)
	start := time.Now()

	raw, err := p.Predict(X)
	if err != nil {
		return nil, errors.NewModelError("EvaluateModel", "predict", err)
	}
	codes, err := metrics.ColumnVector("EvaluateModel", raw)
	if err != nil {
		return nil, err
	}
	predicted, err := o.labels(codes)
	if err != nil {
		return nil, err
	}
	actual := yTest.Strings()
	if yTest.Kind() == table.Numerical {
		actual, err = o.labels(yTest.Floats())
		if err != nil {
			return nil, err
		}
	}

	cm, err := metrics.NewConfusionMatrix(actual, predicted)
	if err != nil {
		return nil, err
	}
	report := metrics.NewClassificationReport(cm)
	fmt.Fprintf(o.output, "=== %s Performance ===\n", name)
	if err := report.Write(o.output); err != nil {
		return nil, errors.Wrap(err, "write classification report")
	}

	res := &Result{Name: name, Report: report, Confusion: cm}
	if o.plotDir != "" {
		res.PlotPath = filepath.Join(o.plotDir, plotFileName(name))
		if err := plots.ConfusionMatrix(cm, name, res.PlotPath); err != nil {
			return nil, err
		}
	}

	o.logger.Info("model evaluated",
		log.OperationKey, log.OperationEvaluate,
		log.PhaseKey, log.PhaseEvaluation,
		log.ModelNameKey, name,
		log.SamplesKey, len(actual),
		log.AccuracyKey, report.Accuracy,
		log.F1ScoreKey, report.MacroAvg.F1,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, nil
}

// EvaluateRegression predicts X with p and prints MSE, RMSE, MAE and R².
func EvaluateRegression(p model.Predictor, X mat.Matrix, yTest []float64, name string, opts ...Option) (metrics.RegressionReport, error) {
	o := newOptions(opts)
	raw, err := p.Predict(X)
	if err != nil {
		return metrics.RegressionReport{}, errors.NewModelError("EvaluateRegression", "predict", err)
	}
	pred, err := metrics.ColumnVector("EvaluateRegression", raw)
	if err != nil {
		return metrics.RegressionReport{}, err
	}
	r, err := metrics.Regression(yTest, pred)
	if err != nil {
		return r, err
	}
	fmt.Fprintf(o.output, "=== %s Performance ===\n", name)
	fmt.Fprintf(o.output, "MSE:  %.4f\nRMSE: %.4f\nMAE:  %.4f\nR2:   %.4f\n", r.MSE, r.RMSE, r.MAE, r.R2)

	o.logger.Info("model evaluated",
		log.OperationKey, log.OperationEvaluate,
		log.PhaseKey, log.PhaseEvaluation,
		log.ModelNameKey, name,
		log.SamplesKey, len(yTest),
		log.R2ScoreKey, r.R2,
	)
	return r, nil
}

func (o *options) labels(values []float64) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		if o.classNames == nil {
			out[i] = strconv.FormatFloat(v, 'g', -1, 64)
			continue
		}
		code := int(math.Round(v))
		if code < 0 || code >= len(o.classNames) {
			return nil, errors.NewValueErrorf("EvaluateModel", "class code %v has no name (%d class names)", v, len(o.classNames))
		}
		out[i] = o.classNames[code]
	}
	return out, nil
}

func plotFileName(name string) string {
	slug := strings.ToLower(strings.Join(strings.Fields(name), "_"))
	if slug == "" {
		slug = "model"
	}
	return slug + "_confusion_matrix.png"
}
