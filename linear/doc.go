// Package linear provides quick baseline models for the evaluation helpers:
// ordinary least squares for continuous targets and a nearest centroid
// classifier for class labels. Both implement model.Classifier.
package linear
