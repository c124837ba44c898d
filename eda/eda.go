// Package eda prints a quick exploratory summary of a table.
package eda

import (
	"fmt"
	"io"
	"math"
	"sort"
	"text/tabwriter"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/datakit/core/table"
	"github.com/YuminosukeSato/datakit/pkg/errors"
)

// TopValues is the number of value counts shown per categorical column.
const TopValues = 5

// classificationMaxUnique matches the rule SelectFeatures uses to call a
// numerical target a class label.
const classificationMaxUnique = 10

// Describe holds the summary statistics of one numerical column. Missing
// values are skipped.
type Describe struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"25%"`
	Median float64 `json:"50%"`
	Q75    float64 `json:"75%"`
	Max    float64 `json:"max"`
}

// TargetSummary is the target analysis part of a Summary. Exactly one of
// Counts and Describe is set.
type TargetSummary struct {
	Name     string             `json:"name"`
	Counts   []table.ValueCount `json:"counts,omitempty"`
	Describe *Describe          `json:"describe,omitempty"`
}

// Summary is returned by QuickEDA.
type Summary struct {
	Rows        int                           `json:"rows"`
	Cols        int                           `json:"cols"`
	Numerical   map[string]Describe           `json:"numerical"`
	Categorical map[string][]table.ValueCount `json:"categorical"`
	Target      *TargetSummary                `json:"target,omitempty"`
}

// DescribeColumn computes count, mean, sample std, min, quartiles and max.
func DescribeColumn(c *table.Column) (Describe, error) {
	if c.Kind() != table.Numerical {
		return Describe{}, errors.NewValueErrorf("eda.DescribeColumn", "column %q is not numerical", c.Name())
	}
	vals := make([]float64, 0, c.Len())
	for _, v := range c.Floats() {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	d := Describe{Count: len(vals)}
	if len(vals) == 0 {
		nan := math.NaN()
		d.Mean, d.Std, d.Min, d.Q25, d.Median, d.Q75, d.Max = nan, nan, nan, nan, nan, nan, nan
		return d, nil
	}
	sort.Float64s(vals)
	d.Mean, d.Std = stat.MeanStdDev(vals, nil)
	d.Min, d.Max = vals[0], vals[len(vals)-1]
	d.Q25 = quantile(0.25, vals)
	d.Median = quantile(0.5, vals)
	d.Q75 = quantile(0.75, vals)
	return d, nil
}

// quantile interpolates linearly between closest ranks of sorted values.
func quantile(p float64, sorted []float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return sorted[lo] + (pos-float64(lo))*(sorted[hi]-sorted[lo])
}

// QuickEDA writes the shape, describe table, categorical value counts and,
// when target names a column of t, a target analysis to w.
func QuickEDA(w io.Writer, t *table.Table, target string) (*Summary, error) {
	if t == nil {
		return nil, errors.NewValueError("eda.QuickEDA", "nil table")
	}
	s := &Summary{
		Rows:        t.Nrow(),
		Cols:        t.Ncol(),
		Numerical:   make(map[string]Describe),
		Categorical: make(map[string][]table.ValueCount),
	}
	fmt.Fprintln(w, "=== Quick EDA ===")
	fmt.Fprintf(w, "Shape: (%d, %d)\n", t.Nrow(), t.Ncol())

	numeric := t.ColumnsOfKind(table.Numerical)
	if len(numeric) > 0 {
		fmt.Fprintln(w, "\nNumerical columns:")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "column\tcount\tmean\tstd\tmin\t25%\t50%\t75%\tmax\t")
		for _, name := range numeric {
			c, _ := t.Column(name)
			d, err := DescribeColumn(c)
			if err != nil {
				return nil, err
			}
			s.Numerical[name] = d
			fmt.Fprintf(tw, "%s\t%d\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t\n",
				name, d.Count, d.Mean, d.Std, d.Min, d.Q25, d.Median, d.Q75, d.Max)
		}
		if err := tw.Flush(); err != nil {
			return nil, err
		}
	}

	categorical := t.ColumnsOfKind(table.Categorical)
	if len(categorical) > 0 {
		fmt.Fprintln(w, "\nCategorical columns:")
		for _, name := range categorical {
			c, _ := t.Column(name)
			counts := c.ValueCounts()
			if len(counts) > TopValues {
				counts = counts[:TopValues]
			}
			s.Categorical[name] = counts
			fmt.Fprintf(w, "%s (%d unique):\n", name, c.NUnique())
			writeCounts(w, counts)
		}
	}

	if target == "" {
		return s, nil
	}
	c, ok := t.Column(target)
	if !ok {
		fmt.Fprintf(w, "\nTarget %q not found\n", target)
		return s, nil
	}
	s.Target = &TargetSummary{Name: target}
	fmt.Fprintf(w, "\nTarget variable: %s\n", target)
	if c.Kind() == table.Categorical || c.NUnique() < classificationMaxUnique {
		s.Target.Counts = c.ValueCounts()
		writeCounts(w, s.Target.Counts)
		return s, nil
	}
	d, err := DescribeColumn(c)
	if err != nil {
		return nil, err
	}
	s.Target.Describe = &d
	fmt.Fprintf(w, "  mean=%.4g std=%.4g min=%.4g median=%.4g max=%.4g\n", d.Mean, d.Std, d.Min, d.Median, d.Max)
	return s, nil
}

func writeCounts(w io.Writer, counts []table.ValueCount) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, vc := range counts {
		fmt.Fprintf(tw, "  %s\t%d\n", vc.Value, vc.Count)
	}
	tw.Flush()
}
