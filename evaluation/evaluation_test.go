package evaluation

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/datakit/core/table"
	"github.com/YuminosukeSato/datakit/pkg/errors"
	"github.com/YuminosukeSato/datakit/pkg/log"
)

// fixedPredictor returns preset predictions regardless of X.
type fixedPredictor struct {
	out []float64
	err error
}

func (f fixedPredictor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if f.err != nil {
		return nil, f.err
	}
	return mat.NewDense(len(f.out), 1, f.out), nil
}

func quiet(buf *bytes.Buffer) []Option {
	logger, _ := log.NewTestLogger(log.LevelError)
	return []Option{WithOutput(buf), WithLogger(logger)}
}

func TestEvaluateModelWithClassNames(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	yTest := table.NewCategorical("label", []string{"no", "yes", "yes", "no"}, nil)
	dir := t.TempDir()

	var buf bytes.Buffer
	opts := append(quiet(&buf), WithClassNames([]string{"no", "yes"}), WithPlotDir(dir))
	res, err := EvaluateModel(fixedPredictor{out: []float64{0, 1, 0, 0}}, X, yTest, "Nearest Centroid", opts...)
	require.NoError(t, err)

	assert.InDelta(t, 0.75, res.Report.Accuracy, 1e-12)
	assert.Equal(t, []string{"no", "yes"}, res.Confusion.Labels)
	assert.Equal(t, [][]int{{2, 0}, {1, 1}}, res.Confusion.Counts)
	assert.Contains(t, buf.String(), "=== Nearest Centroid Performance ===")

	assert.Equal(t, filepath.Join(dir, "nearest_centroid_confusion_matrix.png"), res.PlotPath)
	_, err = os.Stat(res.PlotPath)
	assert.NoError(t, err)
}

func TestEvaluateModelNumericLabels(t *testing.T) {
	X := mat.NewDense(3, 1, nil)
	yTest := table.NewNumerical("y", []float64{1, 2, 2})

	var buf bytes.Buffer
	res, err := EvaluateModel(fixedPredictor{out: []float64{1, 2, 2}}, X, yTest, "m", quiet(&buf)...)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Report.Accuracy)
	assert.Equal(t, []string{"1", "2"}, res.Confusion.Labels)
	assert.Empty(t, res.PlotPath)
}

func TestEvaluateModelErrors(t *testing.T) {
	X := mat.NewDense(2, 1, nil)
	yTest := table.NewCategorical("label", []string{"a", "b"}, nil)
	var buf bytes.Buffer

	_, err := EvaluateModel(fixedPredictor{err: errors.New("boom")}, X, yTest, "m", quiet(&buf)...)
	var me *errors.ModelError
	assert.True(t, errors.As(err, &me))

	opts := append(quiet(&buf), WithClassNames([]string{"a"}))
	_, err = EvaluateModel(fixedPredictor{out: []float64{0, 1}}, X, yTest, "m", opts...)
	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve))
}

func TestEvaluateRegression(t *testing.T) {
	X := mat.NewDense(3, 1, nil)
	var buf bytes.Buffer
	r, err := EvaluateRegression(fixedPredictor{out: []float64{1, 2, 4}}, X, []float64{1, 2, 3}, "lr", quiet(&buf)...)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, r.MSE, 1e-12)
	assert.InDelta(t, 1.0/3.0, r.MAE, 1e-12)
	assert.InDelta(t, 0.5, r.R2, 1e-12)
	assert.Contains(t, buf.String(), "R2:")
}
