package preprocessing

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/datakit/core/table"
	"github.com/YuminosukeSato/datakit/pkg/log"
)

const (
	// MaxInteractionPairs is how many of the most correlated numerical
	// pairs receive product and ratio features.
	MaxInteractionPairs = 3

	ratioEpsilon = 1e-8
)

// FeaturePair is two numerical columns and the absolute Pearson correlation
// between them over the rows where both are present.
type FeaturePair struct {
	A, B    string
	AbsCorr float64
}

// CorrelatedPairs ranks every pair (i<j, table order) of numerical columns by
// descending absolute correlation. Undefined correlations sort last and equal
// values keep enumeration order.
func CorrelatedPairs(t *table.Table) []FeaturePair {
	names := t.ColumnsOfKind(table.Numerical)
	values := make([][]float64, len(names))
	for i, name := range names {
		c, _ := t.Column(name)
		values[i] = c.Floats()
	}

	var pairs []FeaturePair
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			pairs = append(pairs, FeaturePair{
				A:       names[i],
				B:       names[j],
				AbsCorr: math.Abs(pairwiseCorrelation(values[i], values[j])),
			})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		a, b := pairs[i].AbsCorr, pairs[j].AbsCorr
		if math.IsNaN(a) {
			return false
		}
		return math.IsNaN(b) || a > b
	})
	return pairs
}

// CorrelationMatrix returns the pairwise Pearson correlations of the
// numerical columns of t, in table order, with their names. Each entry uses
// the rows where both columns are present; the diagonal is 1.
func CorrelationMatrix(t *table.Table) (*mat.SymDense, []string) {
	names := t.ColumnsOfKind(table.Numerical)
	if len(names) == 0 {
		return nil, nil
	}
	values := make([][]float64, len(names))
	for i, name := range names {
		c, _ := t.Column(name)
		values[i] = c.Floats()
	}
	corr := mat.NewSymDense(len(names), nil)
	for i := range names {
		corr.SetSym(i, i, 1)
		for j := i + 1; j < len(names); j++ {
			corr.SetSym(i, j, pairwiseCorrelation(values[i], values[j]))
		}
	}
	return corr, names
}

func pairwiseCorrelation(x, y []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// CreateFeatures returns a copy of t with interaction features for the
// MaxInteractionPairs most correlated numerical pairs: "{a}_x_{b}" holds a*b
// and "{a}_div_{b}" holds a/(b+1e-8). Existing columns with those names are
// replaced. With fewer than two numerical columns the copy is unchanged.
func CreateFeatures(t *table.Table) *table.Table {
	out := t.Clone()
	if len(t.ColumnsOfKind(table.Numerical)) < 2 {
		return out
	}

	pairs := CorrelatedPairs(t)
	if len(pairs) > MaxInteractionPairs {
		pairs = pairs[:MaxInteractionPairs]
	}

	var created []string
	for _, pair := range pairs {
		a, _ := t.Column(pair.A)
		b, _ := t.Column(pair.B)
		av, bv := a.Floats(), b.Floats()

		product := make([]float64, len(av))
		ratio := make([]float64, len(av))
		for i := range av {
			product[i] = av[i] * bv[i]
			ratio[i] = av[i] / (bv[i] + ratioEpsilon)
		}

		productName := fmt.Sprintf("%s_x_%s", pair.A, pair.B)
		ratioName := fmt.Sprintf("%s_div_%s", pair.A, pair.B)
		// lengths match t, Set cannot fail
		_ = out.Set(table.NewNumerical(productName, product))
		_ = out.Set(table.NewNumerical(ratioName, ratio))
		created = append(created, productName, ratioName)
	}

	log.GetLoggerWithName("CreateFeatures").Debug("interaction features created",
		log.OperationKey, log.OperationCreateFeatures,
		log.PhaseKey, log.PhaseFeatureEngineering,
		log.CreatedKey, created,
	)
	return out
}
