package dataio

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/YuminosukeSato/datakit/core/table"
)

// ColumnInfo describes one column of a Report.
type ColumnInfo struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	NonNull int    `json:"non_null"`
	Missing int    `json:"missing"`
}

// Report is the result of Inspect.
type Report struct {
	Path         string       `json:"path,omitempty"`
	Rows         int          `json:"rows"`
	Cols         int          `json:"cols"`
	MemoryBytes  int          `json:"memory_bytes"`
	Columns      []ColumnInfo `json:"columns"`
	MissingTotal int          `json:"missing_total"`
}

// Inspect summarizes the shape, memory and missing values of t.
func Inspect(t *table.Table) *Report {
	r := &Report{
		Rows:        t.Nrow(),
		Cols:        t.Ncol(),
		MemoryBytes: t.MemoryUsage(),
		Columns:     make([]ColumnInfo, t.Ncol()),
	}
	for i := 0; i < t.Ncol(); i++ {
		c := t.At(i)
		missing := c.MissingCount()
		r.Columns[i] = ColumnInfo{
			Name:    c.Name(),
			Kind:    c.Kind().String(),
			NonNull: c.Len() - missing,
			Missing: missing,
		}
		r.MissingTotal += missing
	}
	return r
}

// Write prints the report.
func (r *Report) Write(w io.Writer) error {
	if r.Path != "" {
		fmt.Fprintf(w, "Loaded data from %s\n", r.Path)
	}
	fmt.Fprintf(w, "Shape: (%d, %d)\n", r.Rows, r.Cols)
	fmt.Fprintf(w, "Memory usage: %.2f MB\n\n", float64(r.MemoryBytes)/1024/1024)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tColumn\tKind\tNon-Null")
	for i, c := range r.Columns {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", i, c.Name, c.Kind, c.NonNull)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nMissing values:")
	if r.MissingTotal == 0 {
		_, err := fmt.Fprintln(w, "  none")
		return err
	}
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range r.Columns {
		if c.Missing > 0 {
			fmt.Fprintf(tw, "  %s\t%d\n", c.Name, c.Missing)
		}
	}
	return tw.Flush()
}
