package table

import (
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/YuminosukeSato/datakit/pkg/errors"
)

// FromDataFrame converts a gota DataFrame. Float and Int series become
// numerical columns; String and Bool series become categorical.
func FromDataFrame(df dataframe.DataFrame) (*Table, error) {
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "table.FromDataFrame")
	}
	cols := make([]*Column, 0, df.Ncol())
	for _, name := range df.Names() {
		s := df.Col(name)
		switch s.Type() {
		case series.Float, series.Int:
			vals := make([]float64, s.Len())
			for i := range vals {
				e := s.Elem(i)
				if e.IsNA() {
					vals[i] = math.NaN()
					continue
				}
				vals[i] = e.Float()
			}
			cols = append(cols, &Column{name: name, kind: Numerical, nums: vals})
		default:
			strs := make([]string, s.Len())
			missing := make([]bool, s.Len())
			for i := range strs {
				e := s.Elem(i)
				if e.IsNA() {
					missing[i] = true
					continue
				}
				strs[i] = e.String()
			}
			cols = append(cols, &Column{name: name, kind: Categorical, strs: strs, missing: missing})
		}
	}
	return New(cols...)
}

// ToDataFrame converts to a gota DataFrame. Missing values become gota NaN elements.
func (t *Table) ToDataFrame() dataframe.DataFrame {
	ss := make([]series.Series, len(t.cols))
	for i, c := range t.cols {
		if c.kind == Numerical {
			ss[i] = series.New(c.nums, series.Float, c.name)
			continue
		}
		ss[i] = series.New(c.Strings(), series.String, c.name)
	}
	return dataframe.New(ss...)
}
