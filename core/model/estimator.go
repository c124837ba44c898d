package model

import "gonum.org/v1/gonum/mat"

// Fitter learns from features X and targets y.
type Fitter interface {
	Fit(X, y mat.Matrix) error
}

// Predictor returns one prediction per row of X as an n x 1 matrix.
type Predictor interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Classifier is anything that can be fitted and evaluated with evaluation.EvaluateModel.
type Classifier interface {
	Fitter
	Predictor
}
