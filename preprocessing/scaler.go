package preprocessing

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/datakit/core/model"
	"github.com/YuminosukeSato/datakit/pkg/errors"
)

// scales below this are treated as zero and replaced by 1
const zeroScaleTol = 10 * 2.220446049250313e-16

var (
	_ model.Transformer = (*StandardScaler)(nil)
	_ model.Transformer = (*RobustScaler)(nil)
)

// StandardScaler standardizes each feature to zero mean and unit variance.
type StandardScaler struct {
	state *model.StateManager

	// Mean and Scale are learned per feature by Fit.
	Mean  []float64
	Scale []float64

	WithMean bool
	WithStd  bool
}

// NewStandardScaler creates a StandardScaler.
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	XTrain, err := scaler.FitTransform(XTrain)
//	XTest, err := scaler.Transform(XTest)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		state:    model.NewStateManager(),
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault centers and scales.
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit learns the mean and the population standard deviation of each column.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		mean, variance := stat.PopMeanVariance(col, nil)
		if s.WithMean {
			s.Mean[j] = mean
		}
		s.Scale[j] = 1
		if s.WithStd {
			if sd := math.Sqrt(variance); sd >= zeroScaleTol {
				s.Scale[j] = sd
			}
		}
	}

	s.state.SetFitted(r, featureIndexNames(c))
	return nil
}

// Transform applies the learned mean and scale.
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.state.RequireFitted("StandardScaler", "Transform"); err != nil {
		return nil, err
	}
	return affine("StandardScaler.Transform", X, s.Mean, s.Scale)
}

// FitTransform is Fit followed by Transform on the same data.
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps standardized data back to the original scale.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.state.RequireFitted("StandardScaler", "InverseTransform"); err != nil {
		return nil, err
	}
	return inverseAffine("StandardScaler.InverseTransform", X, s.Mean, s.Scale)
}

func (s *StandardScaler) IsFitted() bool { return s.state.IsFitted() }

func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)", s.WithMean, s.WithStd, len(s.Mean))
}

// RobustScaler centers each feature on its median and divides by its
// interquartile range, which keeps outliers from dominating the scale.
// NaN entries are ignored when fitting and stay NaN when transforming.
type RobustScaler struct {
	state *model.StateManager

	Center []float64
	Scale  []float64

	// QuantileRange is the percentile pair defining the scale, (25, 75) by default.
	QuantileRange [2]float64
}

// NewRobustScaler creates a RobustScaler with the (25, 75) quantile range.
func NewRobustScaler() *RobustScaler {
	return &RobustScaler{
		state:         model.NewStateManager(),
		QuantileRange: [2]float64{25, 75},
	}
}

// Fit learns the median and the interquartile range of each column.
// A zero range is replaced by 1.
func (s *RobustScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("RobustScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	lo, hi := s.QuantileRange[0], s.QuantileRange[1]
	if lo < 0 || hi > 100 || lo > hi {
		return errors.NewValidationError("quantile_range", "must satisfy 0 <= low <= high <= 100", s.QuantileRange)
	}

	s.Center = make([]float64, c)
	s.Scale = make([]float64, c)
	for j := 0; j < c; j++ {
		observed := make([]float64, 0, r)
		for i := 0; i < r; i++ {
			if v := X.At(i, j); !math.IsNaN(v) {
				observed = append(observed, v)
			}
		}
		s.Scale[j] = 1
		if len(observed) == 0 {
			continue
		}
		sort.Float64s(observed)
		s.Center[j] = percentile(observed, 50)
		if iqr := percentile(observed, hi) - percentile(observed, lo); iqr >= zeroScaleTol {
			s.Scale[j] = iqr
		}
	}

	s.state.SetFitted(r, featureIndexNames(c))
	return nil
}

// Transform applies the learned center and scale. The column count must
// match the one seen by Fit.
func (s *RobustScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.state.RequireFitted("RobustScaler", "Transform"); err != nil {
		return nil, err
	}
	return affine("RobustScaler.Transform", X, s.Center, s.Scale)
}

func (s *RobustScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

func (s *RobustScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.state.RequireFitted("RobustScaler", "InverseTransform"); err != nil {
		return nil, err
	}
	return inverseAffine("RobustScaler.InverseTransform", X, s.Center, s.Scale)
}

func (s *RobustScaler) IsFitted() bool { return s.state.IsFitted() }

// NFeatures is the column count seen by Fit.
func (s *RobustScaler) NFeatures() int { return s.state.NFeatures() }

func affine(op string, X mat.Matrix, center, scale []float64) (mat.Matrix, error) {
	r, c := X.Dims()
	if c != len(center) {
		return nil, errors.NewDimensionError(op, len(center), c, 1)
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return (v - center[j]) / scale[j]
	}, X)
	return out, nil
}

func inverseAffine(op string, X mat.Matrix, center, scale []float64) (mat.Matrix, error) {
	r, c := X.Dims()
	if c != len(center) {
		return nil, errors.NewDimensionError(op, len(center), c, 1)
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return v*scale[j] + center[j]
	}, X)
	return out, nil
}

// percentile returns the q-th percentile (0..100) of sorted values using
// linear interpolation between closest ranks.
func percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * q / 100
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

func featureIndexNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("x%d", i)
	}
	return names
}
