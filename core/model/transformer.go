package model

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/datakit/core/table"
)

// Transformer learns parameters from a matrix and applies them column-wise.
type Transformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// ColumnTransformer learns from a single table column and rewrites it.
type ColumnTransformer interface {
	Fit(c *table.Column) error
	Transform(c *table.Column) (*table.Column, error)
}
