package preprocessing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/datakit/core/parallel"
	"github.com/YuminosukeSato/datakit/core/table"
	"github.com/YuminosukeSato/datakit/pkg/errors"
)

// DefaultMINeighbors is the neighbour count of the mutual information estimator.
const DefaultMINeighbors = 3

// features at or below this count are scored on the calling goroutine
const parallelScoreThreshold = 4

// ScoreFunc scores every column of X against y. pvalues may be nil.
type ScoreFunc func(X mat.Matrix, y *table.Column) (scores, pvalues []float64, err error)

// MutualInfoScore adapts MutualInfoClassif to ScoreFunc. y values are treated
// as class labels.
func MutualInfoScore(X mat.Matrix, y *table.Column) ([]float64, []float64, error) {
	scores, err := MutualInfoClassif(X, LabelCodes(y), DefaultMINeighbors)
	return scores, nil, err
}

// FClassifScore adapts FClassif to ScoreFunc, grouping rows by the distinct
// values of y. A numerical y without repeated values leaves no within-group
// degrees of freedom, so it is scored with FRegression instead.
func FClassifScore(X mat.Matrix, y *table.Column) ([]float64, []float64, error) {
	if y.Kind() == table.Numerical && y.NUnique() == y.Len() {
		return FRegression(X, y.Floats())
	}
	return FClassif(X, LabelCodes(y))
}

// FRegressionScore adapts FRegression to ScoreFunc. y must be numerical.
func FRegressionScore(X mat.Matrix, y *table.Column) ([]float64, []float64, error) {
	if y.Kind() != table.Numerical {
		return nil, nil, errors.NewValueErrorf("FRegression", "target %q is categorical", y.Name())
	}
	return FRegression(X, y.Floats())
}

// LabelCodes maps each value of y to its index in y.Unique().
func LabelCodes(y *table.Column) []int {
	index := make(map[string]int)
	for i, v := range y.Unique() {
		index[v] = i
	}
	codes := make([]int, y.Len())
	for i := range codes {
		codes[i] = index[y.String(i)]
	}
	return codes
}

// MutualInfoClassif estimates the mutual information between each continuous
// column of X and the discrete labels with the k-nearest-neighbour method of
// Ross (2014). Estimates are clipped at zero.
func MutualInfoClassif(X mat.Matrix, labels []int, nNeighbors int) ([]float64, error) {
	r, c := X.Dims()
	if r != len(labels) {
		return nil, errors.NewDimensionError("MutualInfoClassif", r, len(labels), 0)
	}
	if nNeighbors < 1 {
		return nil, errors.NewValidationError("n_neighbors", "must be positive", nNeighbors)
	}

	scores := make([]float64, c)
	parallel.ForEach(c, parallelScoreThreshold, func(j int) {
		col := make([]float64, r)
		mat.Col(col, j, X)
		scores[j] = miContinuousDiscrete(col, labels, nNeighbors)
	})
	return scores, nil
}

func miContinuousDiscrete(x []float64, labels []int, nNeighbors int) float64 {
	groups := make(map[int][]int)
	for i, l := range labels {
		groups[l] = append(groups[l], i)
	}

	radius := make([]float64, len(x))
	kAll := make([]float64, len(x))
	labelCounts := make([]float64, len(x))
	for _, idx := range groups {
		count := len(idx)
		for _, i := range idx {
			labelCounts[i] = float64(count)
		}
		if count < 2 {
			continue
		}
		k := nNeighbors
		if k > count-1 {
			k = count - 1
		}
		vals := make([]float64, count)
		for p, i := range idx {
			vals[p] = x[i]
		}
		order := make([]int, count)
		for p := range order {
			order[p] = p
		}
		sort.SliceStable(order, func(a, b int) bool { return vals[order[a]] < vals[order[b]] })
		sorted := make([]float64, count)
		for p, o := range order {
			sorted[p] = vals[o]
		}
		for p, o := range order {
			d := kthNeighbourDistance(sorted, p, k)
			radius[idx[o]] = math.Nextafter(d, 0)
			kAll[idx[o]] = float64(k)
		}
	}

	var kept []int
	for i := range x {
		if labelCounts[i] > 1 {
			kept = append(kept, i)
		}
	}
	n := len(kept)
	if n == 0 {
		return 0
	}

	all := make([]float64, n)
	for p, i := range kept {
		all[p] = x[i]
	}
	sort.Float64s(all)

	var sumK, sumLabel, sumM float64
	for _, i := range kept {
		lo := sort.SearchFloat64s(all, x[i]-radius[i])
		hi := sort.Search(len(all), func(p int) bool { return all[p] > x[i]+radius[i] })
		sumM += mathext.Digamma(float64(hi - lo))
		sumK += mathext.Digamma(kAll[i])
		sumLabel += mathext.Digamma(labelCounts[i])
	}
	nf := float64(n)
	mi := mathext.Digamma(nf) + sumK/nf - sumLabel/nf - sumM/nf
	return math.Max(0, mi)
}

// kthNeighbourDistance is the distance from sorted[p] to its k-th nearest
// other element.
func kthNeighbourDistance(sorted []float64, p, k int) float64 {
	l, r := p-1, p+1
	var d float64
	for step := 0; step < k; step++ {
		switch {
		case l < 0:
			d = sorted[r] - sorted[p]
			r++
		case r >= len(sorted):
			d = sorted[p] - sorted[l]
			l--
		case sorted[p]-sorted[l] <= sorted[r]-sorted[p]:
			d = sorted[p] - sorted[l]
			l--
		default:
			d = sorted[r] - sorted[p]
			r++
		}
	}
	return d
}

// FRegression returns the univariate linear-regression F statistic of each
// column of X against y, with p-values from the F(1, n-2) distribution.
// Constant columns score 0 with p-value 1; perfectly correlated columns score
// math.MaxFloat64.
func FRegression(X mat.Matrix, y []float64) (scores, pvalues []float64, err error) {
	r, c := X.Dims()
	if r != len(y) {
		return nil, nil, errors.NewDimensionError("FRegression", r, len(y), 0)
	}
	if r < 3 {
		return nil, nil, errors.NewValueErrorf("FRegression", "need at least 3 samples, got %d", r)
	}

	dof := float64(r - 2)
	dist := distuv.F{D1: 1, D2: dof}
	scores = make([]float64, c)
	pvalues = make([]float64, c)
	parallel.ForEach(c, parallelScoreThreshold, func(j int) {
		col := make([]float64, r)
		mat.Col(col, j, X)
		corr := stat.Correlation(col, y, nil)
		corr2 := corr * corr
		f := corr2 / (1 - corr2) * dof
		switch {
		case math.IsNaN(f):
			scores[j], pvalues[j] = 0, 1
		case math.IsInf(f, 0):
			scores[j], pvalues[j] = math.MaxFloat64, 0
		default:
			scores[j], pvalues[j] = f, dist.Survival(f)
		}
	})
	return scores, pvalues, nil
}

// FClassif returns the one-way ANOVA F statistic of each column of X with
// rows grouped by labels (codes 0..G-1), and p-values from F(G-1, n-G).
// Constant columns score 0 with p-value 1; columns constant within every
// group but not across groups score math.MaxFloat64.
func FClassif(X mat.Matrix, labels []int) (scores, pvalues []float64, err error) {
	r, c := X.Dims()
	if r != len(labels) {
		return nil, nil, errors.NewDimensionError("FClassif", r, len(labels), 0)
	}
	groups := 0
	for _, l := range labels {
		if l < 0 {
			return nil, nil, errors.NewValueErrorf("FClassif", "negative label %d", l)
		}
		if l+1 > groups {
			groups = l + 1
		}
	}
	counts := make([]float64, groups)
	for _, l := range labels {
		counts[l]++
	}
	for g, n := range counts {
		if n == 0 {
			return nil, nil, errors.NewValueErrorf("FClassif", "label %d has no rows", g)
		}
	}
	if groups < 2 {
		return nil, nil, errors.NewValueErrorf("FClassif", "need at least 2 groups, got %d", groups)
	}
	if r <= groups {
		return nil, nil, errors.NewValueErrorf("FClassif", "need more samples than groups, got %d samples and %d groups", r, groups)
	}

	dfBetween, dfWithin := float64(groups-1), float64(r-groups)
	dist := distuv.F{D1: dfBetween, D2: dfWithin}
	scores = make([]float64, c)
	pvalues = make([]float64, c)
	parallel.ForEach(c, parallelScoreThreshold, func(j int) {
		col := make([]float64, r)
		mat.Col(col, j, X)
		mean := stat.Mean(col, nil)
		groupMeans := make([]float64, groups)
		for i, v := range col {
			groupMeans[labels[i]] += v
		}
		var between float64
		for g := range groupMeans {
			groupMeans[g] /= counts[g]
			d := groupMeans[g] - mean
			between += counts[g] * d * d
		}
		var within float64
		for i, v := range col {
			d := v - groupMeans[labels[i]]
			within += d * d
		}
		f := (between / dfBetween) / (within / dfWithin)
		switch {
		case math.IsNaN(f):
			scores[j], pvalues[j] = 0, 1
		case math.IsInf(f, 0):
			scores[j], pvalues[j] = math.MaxFloat64, 0
		default:
			scores[j], pvalues[j] = f, dist.Survival(f)
		}
	})
	return scores, pvalues, nil
}
