package preprocessing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/datakit/core/model"
	"github.com/YuminosukeSato/datakit/core/table"
	"github.com/YuminosukeSato/datakit/pkg/errors"
	"github.com/YuminosukeSato/datakit/pkg/log"
)

const (
	// DefaultSelectK is the number of features SelectFeatures keeps by default.
	DefaultSelectK = 20

	// targets with fewer distinct values are scored as classification targets
	classificationMaxUnique = 10
)

// SelectKBest keeps the K columns with the highest scores.
type SelectKBest struct {
	state *model.StateManager

	K         int
	ScoreFunc ScoreFunc

	Scores  []float64
	PValues []float64
	support []int
}

func NewSelectKBest(k int, scoreFunc ScoreFunc) *SelectKBest {
	return &SelectKBest{state: model.NewStateManager(), K: k, ScoreFunc: scoreFunc}
}

// Fit scores the columns of X. NaN scores rank below every other score and
// ties keep the later column, matching a stable ascending argsort truncated
// from the top.
func (s *SelectKBest) Fit(X mat.Matrix, y *table.Column) error {
	if s.K < 0 {
		return errors.NewValidationError("k", "must be non-negative", s.K)
	}
	r, c := X.Dims()
	if y.Len() != r {
		return errors.NewDimensionError("SelectKBest.Fit", r, y.Len(), 0)
	}
	scores, pvalues, err := s.ScoreFunc(X, y)
	if err != nil {
		return err
	}
	s.Scores, s.PValues = scores, pvalues

	order := make([]int, c)
	for j := range order {
		order[j] = j
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := scores[order[a]], scores[order[b]]
		if math.IsNaN(sb) {
			return false
		}
		return math.IsNaN(sa) || sa < sb
	})
	k := s.K
	if k > c {
		k = c
	}
	s.support = append([]int(nil), order[c-k:]...)
	sort.Ints(s.support)

	s.state.SetFitted(r, featureIndexNames(c))
	return nil
}

// Support returns the retained column indices in ascending order.
func (s *SelectKBest) Support() []int {
	return append([]int(nil), s.support...)
}

// Transform keeps the supported columns of X. It returns nil when K is 0.
func (s *SelectKBest) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.state.RequireFitted("SelectKBest", "Transform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if c != s.state.NFeatures() {
		return nil, errors.NewDimensionError("SelectKBest.Transform", s.state.NFeatures(), c, 1)
	}
	if len(s.support) == 0 {
		return nil, nil
	}
	out := mat.NewDense(r, len(s.support), nil)
	col := make([]float64, r)
	for k, j := range s.support {
		mat.Col(col, j, X)
		out.SetCol(k, col)
	}
	return out, nil
}

// ScoreFuncFor picks mutual information for a categorical target or one with
// fewer than 10 distinct values, and the ANOVA F statistic over the distinct
// target values otherwise.
func ScoreFuncFor(y *table.Column) (ScoreFunc, string) {
	if y.Kind() == table.Categorical || y.NUnique() < classificationMaxUnique {
		return MutualInfoScore, "mutual_info_classif"
	}
	return FClassifScore, "f_classif"
}

// SelectFeaturesMatrix keeps the k best columns of X for predicting y and
// returns them with their positional indices. X is returned unchanged when it
// has at most k columns.
func SelectFeaturesMatrix(X mat.Matrix, y *table.Column, k int) (mat.Matrix, []int, error) {
	if k < 0 {
		return nil, nil, errors.NewValidationError("k", "must be non-negative", k)
	}
	r, c := X.Dims()
	if c <= k {
		return X, rangeIndices(c), nil
	}
	if y.Len() != r {
		return nil, nil, errors.NewDimensionError("SelectFeatures", r, y.Len(), 0)
	}
	if y.MissingCount() > 0 {
		return nil, nil, errors.NewValueErrorf("SelectFeatures", "target %q contains %d missing values", y.Name(), y.MissingCount())
	}
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, X)
	}
	if err := errors.CheckMatrixFinite("SelectFeatures", "X", rows); err != nil {
		return nil, nil, err
	}

	scoreFunc, name := ScoreFuncFor(y)
	selector := NewSelectKBest(k, scoreFunc)
	if err := selector.Fit(X, y); err != nil {
		return nil, nil, err
	}
	out, err := selector.Transform(X)
	if err != nil {
		return nil, nil, err
	}

	log.GetLoggerWithName("SelectFeatures").Debug("features selected",
		log.OperationKey, log.OperationSelect,
		log.PhaseKey, log.PhaseFeatureEngineering,
		log.ScoreFuncKey, name,
		log.FeaturesKey, c,
		log.SelectedKey, len(selector.Support()),
	)
	return out, selector.Support(), nil
}

// SelectFeatures is SelectFeaturesMatrix over a table. It returns the reduced
// table and the retained column names in their original order. Categorical
// feature columns are a ValueError.
func SelectFeatures(X *table.Table, y *table.Column, k int) (*table.Table, []string, error) {
	if k < 0 {
		return nil, nil, errors.NewValidationError("k", "must be non-negative", k)
	}
	if X.Ncol() <= k {
		return X, X.Names(), nil
	}
	if cats := X.ColumnsOfKind(table.Categorical); len(cats) > 0 {
		return nil, nil, errors.NewValueErrorf("SelectFeatures", "feature columns must be numerical, got categorical %v", cats)
	}
	if X.Nrow() != y.Len() {
		return nil, nil, errors.NewDimensionError("SelectFeatures", X.Nrow(), y.Len(), 0)
	}

	names := X.Names()
	m, err := X.Matrix(names...)
	if err != nil {
		return nil, nil, err
	}
	_, idx, err := SelectFeaturesMatrix(m, y, k)
	if err != nil {
		return nil, nil, err
	}
	selected := make([]string, len(idx))
	for i, j := range idx {
		selected[i] = names[j]
	}
	out, err := X.Select(selected...)
	if err != nil {
		return nil, nil, err
	}
	return out, selected, nil
}

func rangeIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
