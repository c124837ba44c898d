package errors

import (
	"math"
)

// CheckFinite returns a ValueError naming the first NaN or infinite entry of values.
func CheckFinite(operation, what string, values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewValueErrorf(operation, "%s contains non-finite value %v at index %d", what, v, i)
		}
	}
	return nil
}

// CheckMatrixFinite is CheckFinite over a row-major matrix.
func CheckMatrixFinite(operation, what string, rows [][]float64) error {
	for i, row := range rows {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return NewValueErrorf(operation, "%s contains non-finite value %v at row %d, column %d", what, v, i, j)
			}
		}
	}
	return nil
}

// SafeDivide returns 0 when the denominator is zero.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
