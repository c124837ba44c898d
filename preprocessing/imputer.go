package preprocessing

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/datakit/core/model"
	"github.com/YuminosukeSato/datakit/core/table"
	"github.com/YuminosukeSato/datakit/pkg/errors"
)

// ImputeStrategy selects the statistic used to fill missing values.
type ImputeStrategy string

const (
	StrategyMean         ImputeStrategy = "mean"
	StrategyMedian       ImputeStrategy = "median"
	StrategyMostFrequent ImputeStrategy = "most_frequent"
)

var _ model.ColumnTransformer = (*SimpleImputer)(nil)

// SimpleImputer fills the missing values of one column with a statistic
// learned from its observed values.
type SimpleImputer struct {
	state    *model.StateManager
	Strategy ImputeStrategy

	kind    table.Kind
	fillNum float64
	fillStr string
}

// NewSimpleImputer creates an imputer. Mean and median only apply to
// numerical columns; most_frequent applies to both kinds.
func NewSimpleImputer(strategy ImputeStrategy) *SimpleImputer {
	return &SimpleImputer{state: model.NewStateManager(), Strategy: strategy}
}

// Fit learns the fill value. Ties for most_frequent resolve to the smallest value.
func (s *SimpleImputer) Fit(c *table.Column) error {
	op := "SimpleImputer.Fit"
	switch s.Strategy {
	case StrategyMean, StrategyMedian:
		if c.Kind() != table.Numerical {
			return errors.NewValueErrorf(op, "strategy %q cannot be used on categorical column %q", s.Strategy, c.Name())
		}
	case StrategyMostFrequent:
	default:
		return errors.NewValidationError("strategy", "must be one of mean, median, most_frequent", s.Strategy)
	}
	if c.MissingCount() == c.Len() {
		return errors.NewValueErrorf(op, "column %q has no observed values to learn a %s from", c.Name(), s.Strategy)
	}

	s.kind = c.Kind()
	if c.Kind() == table.Categorical {
		s.fillStr = c.ValueCounts()[0].Value
		s.state.SetFitted(c.Len(), []string{c.Name()})
		return nil
	}

	observed := make([]float64, 0, c.Len())
	for _, v := range c.Floats() {
		if !math.IsNaN(v) {
			observed = append(observed, v)
		}
	}
	sort.Float64s(observed)
	switch s.Strategy {
	case StrategyMean:
		s.fillNum = stat.Mean(observed, nil)
	case StrategyMedian:
		s.fillNum = percentile(observed, 50)
	case StrategyMostFrequent:
		s.fillNum = sortedMode(observed)
	}
	s.state.SetFitted(c.Len(), []string{c.Name()})
	return nil
}

// Transform returns a copy of c with missing values filled.
func (s *SimpleImputer) Transform(c *table.Column) (*table.Column, error) {
	if err := s.state.RequireFitted("SimpleImputer", "Transform"); err != nil {
		return nil, err
	}
	if c.Kind() != s.kind {
		return nil, errors.NewValueErrorf("SimpleImputer.Transform", "column %q is %s, imputer was fitted on %s", c.Name(), c.Kind(), s.kind)
	}
	out := c.Clone()
	for i := 0; i < out.Len(); i++ {
		if !out.IsMissing(i) {
			continue
		}
		if s.kind == table.Numerical {
			out.SetFloat(i, s.fillNum)
		} else {
			out.SetString(i, s.fillStr)
		}
	}
	return out, nil
}

// FitTransform is Fit followed by Transform on the same column.
func (s *SimpleImputer) FitTransform(c *table.Column) (*table.Column, error) {
	if err := s.Fit(c); err != nil {
		return nil, err
	}
	return s.Transform(c)
}

// FillValue returns the learned statistic as text.
func (s *SimpleImputer) FillValue() string {
	if s.kind == table.Numerical {
		return strconv.FormatFloat(s.fillNum, 'g', -1, 64)
	}
	return s.fillStr
}

func (s *SimpleImputer) IsFitted() bool { return s.state.IsFitted() }

// sortedMode returns the most frequent value of sorted, preferring the smallest on ties.
func sortedMode(sorted []float64) float64 {
	best, bestCount := sorted[0], 0
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		if j-i > bestCount {
			best, bestCount = sorted[i], j-i
		}
		i = j
	}
	return best
}
