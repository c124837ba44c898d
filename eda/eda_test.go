package eda

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/datakit/core/table"
)

func TestDescribeColumn(t *testing.T) {
	c := table.NewNumerical("x", []float64{4, math.NaN(), 1, 3, 2})
	d, err := DescribeColumn(c)
	require.NoError(t, err)

	assert.Equal(t, 4, d.Count)
	assert.InDelta(t, 2.5, d.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3.0), d.Std, 1e-12)
	assert.Equal(t, 1.0, d.Min)
	assert.InDelta(t, 1.75, d.Q25, 1e-12)
	assert.InDelta(t, 2.5, d.Median, 1e-12)
	assert.InDelta(t, 3.25, d.Q75, 1e-12)
	assert.Equal(t, 4.0, d.Max)

	_, err = DescribeColumn(table.NewCategorical("s", []string{"a"}, nil))
	assert.Error(t, err)
}

func TestDescribeAllMissing(t *testing.T) {
	d, err := DescribeColumn(table.NewNumerical("x", []float64{math.NaN()}))
	require.NoError(t, err)
	assert.Equal(t, 0, d.Count)
	assert.True(t, math.IsNaN(d.Mean))
}

func TestQuickEDA(t *testing.T) {
	colors := []string{"red", "red", "blue", "green", "red", "blue", "a", "b", "c", "d"}
	price := make([]float64, len(colors))
	for i := range price {
		price[i] = float64(i * 10)
	}
	tbl := table.MustNew(
		table.NewNumerical("price", price),
		table.NewCategorical("color", colors, nil),
		table.NewCategorical("label", []string{"y", "n", "y", "y", "n", "y", "n", "y", "y", "n"}, nil),
	)

	tests := []struct {
		name     string
		target   string
		wantText []string
		check    func(t *testing.T, s *Summary)
	}{
		{
			name:     "categorical target",
			target:   "label",
			wantText: []string{"Shape: (10, 3)", "color (7 unique):", "Target variable: label"},
			check: func(t *testing.T, s *Summary) {
				require.NotNil(t, s.Target)
				assert.Equal(t, []table.ValueCount{{Value: "y", Count: 6}, {Value: "n", Count: 4}}, s.Target.Counts)
				assert.Nil(t, s.Target.Describe)
			},
		},
		{
			name:     "continuous target",
			target:   "price",
			wantText: []string{"Target variable: price", "mean="},
			check: func(t *testing.T, s *Summary) {
				require.NotNil(t, s.Target.Describe)
				assert.InDelta(t, 45, s.Target.Describe.Mean, 1e-12)
			},
		},
		{
			name:     "no target",
			wantText: []string{"Numerical columns:"},
			check: func(t *testing.T, s *Summary) {
				assert.Nil(t, s.Target)
			},
		},
		{
			name:     "unknown target",
			target:   "nope",
			wantText: []string{`Target "nope" not found`},
			check: func(t *testing.T, s *Summary) {
				assert.Nil(t, s.Target)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s, err := QuickEDA(&buf, tbl, tt.target)
			require.NoError(t, err)
			for _, want := range tt.wantText {
				assert.Contains(t, buf.String(), want)
			}
			assert.Len(t, s.Categorical["color"], TopValues)
			assert.Equal(t, table.ValueCount{Value: "red", Count: 3}, s.Categorical["color"][0])
			tt.check(t, s)
		})
	}
}
