package linear

import (
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/datakit/core/model"
	"github.com/YuminosukeSato/datakit/core/parallel"
	"github.com/YuminosukeSato/datakit/pkg/errors"
)

var _ model.Classifier = (*LinearRegression)(nil)

// parallelThreshold is the row count above which design matrix assembly
// and prediction fan out.
const parallelThreshold = 1000

// LinearRegression is ordinary least squares solved by QR decomposition.
type LinearRegression struct {
	state        *model.StateManager
	fitIntercept bool

	Coef      []float64
	Intercept float64
}

// NewLinearRegression creates an unfitted model.
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{state: model.NewStateManager(), fitIntercept: true}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit solves min ||Xw + b - y||². y must be an n x 1 matrix.
func (lr *LinearRegression) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "LinearRegression.Fit")

	r, c := X.Dims()
	ry, cy := y.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}

	offset := 0
	if lr.fitIntercept {
		offset = 1
	}
	design := mat.NewDense(r, c+offset, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			if offset == 1 {
				design.Set(i, 0, 1)
			}
			for j := 0; j < c; j++ {
				design.Set(i, j+offset, X.At(i, j))
			}
		}
	})
	if err := errors.CheckMatrixFinite("LinearRegression.Fit", "X", denseRows(design)); err != nil {
		return err
	}

	var w mat.Dense
	if err := w.Solve(design, y); err != nil {
		return errors.NewModelError("LinearRegression.Fit", "least squares solve failed", err)
	}

	lr.Intercept = 0
	if offset == 1 {
		lr.Intercept = w.At(0, 0)
	}
	lr.Coef = make([]float64, c)
	for j := range lr.Coef {
		lr.Coef[j] = w.At(j+offset, 0)
	}
	lr.state.SetFitted(r, featureIndexNames(c))
	return nil
}

// Predict returns Xw + b as an n x 1 matrix.
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.state.RequireFitted("LinearRegression", "Predict"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if c != len(lr.Coef) {
		return nil, errors.NewDimensionError("LinearRegression.Predict", len(lr.Coef), c, 1)
	}
	out := mat.NewDense(r, 1, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			pred := lr.Intercept
			for j, w := range lr.Coef {
				pred += X.At(i, j) * w
			}
			out.Set(i, 0, pred)
		}
	})
	return out, nil
}

func (lr *LinearRegression) IsFitted() bool { return lr.state.IsFitted() }

func denseRows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = m.RawRowView(i)
	}
	return rows
}

func featureIndexNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = "x" + strconv.Itoa(i)
	}
	return names
}
