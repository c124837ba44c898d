package preprocessing

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/datakit/core/table"
	"github.com/YuminosukeSato/datakit/pkg/errors"
)

// selectionData returns 6 features where f1 and f4 carry the signal.
func selectionData(n int, classification bool) (*table.Table, *table.Column) {
	rng := rand.New(rand.NewSource(11))
	cols := make([][]float64, 6)
	for j := range cols {
		cols[j] = make([]float64, n)
	}
	yNum := make([]float64, n)
	yCat := make([]string, n)
	for i := 0; i < n; i++ {
		for j := range cols {
			cols[j][i] = rng.NormFloat64()
		}
		signal := 3*cols[1][i] - 2*cols[4][i]
		yNum[i] = signal + 0.1*rng.NormFloat64()
		if signal > 0 {
			yCat[i] = "pos"
		} else {
			yCat[i] = "neg"
		}
	}
	tcols := make([]*table.Column, len(cols))
	for j := range cols {
		tcols[j] = table.NewNumerical(fmt.Sprintf("f%d", j), cols[j])
	}
	X := table.MustNew(tcols...)
	if classification {
		return X, table.NewCategorical("y", yCat, nil)
	}
	return X, table.NewNumerical("y", yNum)
}

func TestSelectFeaturesPicksInformative(t *testing.T) {
	tests := []struct {
		name           string
		classification bool
		wantFunc       string
	}{
		{"classification target", true, "mutual_info_classif"},
		{"continuous target", false, "f_classif"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			X, y := selectionData(300, tt.classification)
			_, name := ScoreFuncFor(y)
			assert.Equal(t, tt.wantFunc, name)

			out, selected, err := SelectFeatures(X, y, 2)
			require.NoError(t, err)
			assert.Equal(t, []string{"f1", "f4"}, selected)
			assert.Equal(t, selected, out.Names())
		})
	}
}

func TestSelectFeaturesBoundary(t *testing.T) {
	X, _ := selectionData(20, false)
	// y is irrelevant, even a mismatched one
	y := table.NewCategorical("y", []string{"a"}, nil)

	out, selected, err := SelectFeatures(X, y, X.Ncol())
	require.NoError(t, err)
	assert.Same(t, X, out)
	assert.Equal(t, X.Names(), selected)

	_, selected, err = SelectFeatures(X, y, DefaultSelectK)
	require.NoError(t, err)
	assert.Len(t, selected, 6)
}

func TestSelectFeaturesErrors(t *testing.T) {
	X, y := selectionData(30, false)

	_, _, err := SelectFeatures(X, y, -1)
	var vErr *errors.ValidationError
	assert.True(t, errors.As(err, &vErr))

	_, _, err = SelectFeatures(X, table.NewNumerical("y", []float64{1, 2}), 2)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	withCat := X.Clone()
	_ = withCat.Set(table.NewCategorical("c", make([]string, 30), nil))
	_, _, err = SelectFeatures(withCat, y, 2)
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))

	withNaN := X.Clone()
	f0, _ := withNaN.Column("f0")
	f0.SetFloat(3, math.NaN())
	_, _, err = SelectFeatures(withNaN, y, 2)
	assert.True(t, errors.As(err, &valErr))
}

func TestSelectFeaturesMatrix(t *testing.T) {
	X, y := selectionData(200, false)
	m, err := X.Matrix()
	require.NoError(t, err)

	out, idx, err := SelectFeaturesMatrix(m, y, 3)
	require.NoError(t, err)
	assert.Len(t, idx, 3)
	assert.Contains(t, idx, 1)
	assert.Contains(t, idx, 4)
	r, c := out.Dims()
	assert.Equal(t, 200, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, m.At(5, idx[0]), out.At(5, 0))
}

func TestSelectKBestTies(t *testing.T) {
	constant := func(scores []float64) ScoreFunc {
		return func(X mat.Matrix, y *table.Column) ([]float64, []float64, error) {
			return scores, nil, nil
		}
	}
	X := mat.NewDense(2, 4, nil)
	y := table.NewNumerical("y", []float64{0, 1})

	tests := []struct {
		name   string
		scores []float64
		k      int
		want   []int
	}{
		{"ties keep later columns", []float64{1, 1, 1, 1}, 2, []int{2, 3}},
		{"nan ranks lowest", []float64{math.NaN(), 0.5, math.NaN(), 0.1}, 2, []int{1, 3}},
		{"k zero", []float64{1, 2, 3, 4}, 0, nil},
		{"highest scores", []float64{5, 1, 9, 3}, 2, []int{0, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelectKBest(tt.k, constant(tt.scores))
			require.NoError(t, s.Fit(X, y))
			assert.Equal(t, tt.want, s.Support())
		})
	}
}

func TestMutualInfoClassif(t *testing.T) {
	n := 200
	X := mat.NewDense(n, 2, nil)
	labels := make([]int, n)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < n; i++ {
		labels[i] = i % 2
		X.Set(i, 0, float64(labels[i])*5+rng.NormFloat64()*0.1)
		X.Set(i, 1, rng.NormFloat64())
	}
	scores, err := MutualInfoClassif(X, labels, DefaultMINeighbors)
	require.NoError(t, err)
	// perfectly separated binary classes carry ln(2) nats
	assert.InDelta(t, math.Ln2, scores[0], 0.1)
	assert.Less(t, scores[1], 0.1)
	assert.GreaterOrEqual(t, scores[1], 0.0)

	_, err = MutualInfoClassif(X, labels[:10], 3)
	assert.Error(t, err)
}

func TestFRegression(t *testing.T) {
	X := mat.NewDense(5, 3, []float64{
		1, 2, 7,
		2, 1, 7,
		3, 4, 7,
		4, 3, 7,
		5, 5, 7,
	})
	y := []float64{2, 4, 6, 8, 10}
	scores, pvalues, err := FRegression(X, y)
	require.NoError(t, err)

	assert.Equal(t, math.MaxFloat64, scores[0], "perfect correlation")
	assert.Equal(t, 0.0, pvalues[0])
	// r = 0.8 for column 1: F = 0.64/0.36*3
	assert.InDelta(t, 0.64/0.36*3, scores[1], 1e-9)
	assert.True(t, pvalues[1] > 0 && pvalues[1] < 0.2)
	assert.Equal(t, 0.0, scores[2], "constant column")
	assert.Equal(t, 1.0, pvalues[2])
}

func TestFClassif(t *testing.T) {
	X := mat.NewDense(4, 3, []float64{
		1, 7, 1,
		3, 7, 1,
		5, 7, 5,
		7, 7, 5,
	})
	scores, pvalues, err := FClassif(X, []int{0, 0, 1, 1})
	require.NoError(t, err)

	// group means 2 and 6 around 4: between = 16 on 1 dof, within = 4 on 2 dof
	assert.InDelta(t, 8.0, scores[0], 1e-9)
	assert.True(t, pvalues[0] > 0 && pvalues[0] < 0.2)
	assert.Equal(t, 0.0, scores[1], "constant column")
	assert.Equal(t, 1.0, pvalues[1])
	assert.Equal(t, math.MaxFloat64, scores[2], "constant within groups")
	assert.Equal(t, 0.0, pvalues[2])

	_, _, err = FClassif(X, []int{0, 0, 0, 0})
	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve), "single group")
	_, _, err = FClassif(X, []int{0, 1, 2, 3})
	assert.True(t, errors.As(err, &ve), "no within-group dof")
	_, _, err = FClassif(X, []int{0, 1})
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))
}

func TestSelectFeaturesRepeatedContinuousTarget(t *testing.T) {
	// y takes 12 repeated values; quad depends on y non-linearly and is
	// constant within each y group, lin is linear in y plus noise.
	rng := rand.New(rand.NewSource(5))
	n := 120
	y := make([]float64, n)
	quad := make([]float64, n)
	lin := make([]float64, n)
	for i := 0; i < n; i++ {
		y[i] = float64(i % 12)
		quad[i] = (y[i] - 5.5) * (y[i] - 5.5)
		lin[i] = 0.1*y[i] + 0.05*rng.NormFloat64()
	}
	X := table.MustNew(table.NewNumerical("lin", lin), table.NewNumerical("quad", quad))
	target := table.NewNumerical("y", y)

	_, name := ScoreFuncFor(target)
	require.Equal(t, "f_classif", name)

	_, selected, err := SelectFeatures(X, target, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"quad"}, selected)
}

func TestFClassifScoreDistinctTargetUsesRegression(t *testing.T) {
	X := mat.NewDense(5, 1, []float64{1, 2, 4, 3, 5})
	y := table.NewNumerical("y", []float64{2, 4, 6, 8, 10})
	got, _, err := FClassifScore(X, y)
	require.NoError(t, err)
	want, _, err := FRegression(X, y.Floats())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestKthNeighbourDistance(t *testing.T) {
	sorted := []float64{0, 1, 3, 7}
	assert.Equal(t, 1.0, kthNeighbourDistance(sorted, 0, 1))
	assert.Equal(t, 3.0, kthNeighbourDistance(sorted, 0, 2))
	assert.Equal(t, 2.0, kthNeighbourDistance(sorted, 2, 1))
	assert.Equal(t, 4.0, kthNeighbourDistance(sorted, 2, 3)) // 3-1 ,3-0, 7-3
}
