package linear

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/datakit/core/model"
	"github.com/YuminosukeSato/datakit/pkg/errors"
)

var _ model.Classifier = (*NearestCentroid)(nil)

// NearestCentroid assigns each row to the class whose mean is closest in
// Euclidean distance. Class labels are the integer codes in y.
type NearestCentroid struct {
	state           *model.StateManager
	shrinkThreshold float64

	Classes   []float64
	Centroids *mat.Dense
}

// NewNearestCentroid creates an unfitted classifier.
func NewNearestCentroid(opts ...CentroidOption) *NearestCentroid {
	nc := &NearestCentroid{state: model.NewStateManager()}
	for _, opt := range opts {
		opt(nc)
	}
	return nc
}

// Fit computes one centroid per distinct value of y (an n x 1 matrix).
func (nc *NearestCentroid) Fit(X, y mat.Matrix) error {
	const op = "NearestCentroid.Fit"
	r, c := X.Dims()
	ry, cy := y.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError(op, r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError(op, "y must be a column vector")
	}
	if nc.shrinkThreshold < 0 {
		return errors.NewValidationError("shrink_threshold", "must be non-negative", nc.shrinkThreshold)
	}

	index := make(map[float64]int)
	var classes []float64
	for i := 0; i < r; i++ {
		v := y.At(i, 0)
		if _, ok := index[v]; !ok {
			index[v] = 0
			classes = append(classes, v)
		}
	}
	if len(classes) < 2 {
		return errors.NewValueErrorf(op, "need at least 2 classes, got %d", len(classes))
	}
	sort.Float64s(classes)
	for k, v := range classes {
		index[v] = k
	}

	centroids := mat.NewDense(len(classes), c, nil)
	counts := make([]float64, len(classes))
	for i := 0; i < r; i++ {
		k := index[y.At(i, 0)]
		counts[k]++
		for j := 0; j < c; j++ {
			centroids.Set(k, j, centroids.At(k, j)+X.At(i, j))
		}
	}
	for k := range classes {
		floats.Scale(1/counts[k], centroids.RawRowView(k))
	}

	if nc.shrinkThreshold > 0 {
		if r == len(classes) {
			return errors.NewValueError(op, "shrinking needs more samples than classes")
		}
		shrink(X, y, index, centroids, counts, nc.shrinkThreshold)
	}

	nc.Classes = classes
	nc.Centroids = centroids
	nc.state.SetFitted(r, featureIndexNames(c))
	return nil
}

// shrink moves every centroid towards the overall mean by soft thresholding
// its standardized deviation.
func shrink(X, y mat.Matrix, index map[float64]int, centroids *mat.Dense, counts []float64, threshold float64) {
	r, c := X.Dims()
	nClasses := len(counts)

	overall := make([]float64, c)
	variance := make([]float64, c)
	for j := 0; j < c; j++ {
		col := mat.Col(nil, j, X)
		overall[j] = stat.Mean(col, nil)
		for i, v := range col {
			d := v - centroids.At(index[y.At(i, 0)], j)
			variance[j] += d * d
		}
	}
	s := make([]float64, c)
	for j := range s {
		s[j] = math.Sqrt(variance[j] / float64(r-nClasses))
	}
	sorted := append([]float64(nil), s...)
	sort.Float64s(sorted)
	s0 := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	floats.AddConst(s0, s)

	for k := 0; k < nClasses; k++ {
		m := math.Sqrt(1/counts[k] - 1/float64(r))
		for j := 0; j < c; j++ {
			ms := m * s[j]
			dev := (centroids.At(k, j) - overall[j]) / ms
			mag := math.Max(math.Abs(dev)-threshold, 0)
			centroids.Set(k, j, overall[j]+math.Copysign(mag, dev)*ms)
		}
	}
}

// Predict returns the class code of the nearest centroid for every row.
func (nc *NearestCentroid) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := nc.state.RequireFitted("NearestCentroid", "Predict"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if c != nc.state.NFeatures() {
		return nil, errors.NewDimensionError("NearestCentroid.Predict", nc.state.NFeatures(), c, 1)
	}
	out := mat.NewDense(r, 1, nil)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, X)
		best, bestDist := 0, math.Inf(1)
		for k := range nc.Classes {
			if d := floats.Distance(row, nc.Centroids.RawRowView(k), 2); d < bestDist {
				best, bestDist = k, d
			}
		}
		out.Set(i, 0, nc.Classes[best])
	}
	return out, nil
}

func (nc *NearestCentroid) IsFitted() bool { return nc.state.IsFitted() }
