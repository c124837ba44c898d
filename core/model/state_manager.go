// Package model provides the interfaces and fitted-state bookkeeping shared by
// transformers and estimators.
package model

import (
	"sync"

	"github.com/YuminosukeSato/datakit/pkg/errors"
)

// StateManager tracks whether a component has been fitted and what it saw.
// It is embedded by composition rather than inheritance.
type StateManager struct {
	mu sync.RWMutex

	fitted       bool
	nSamples     int
	featureNames []string
}

func NewStateManager() *StateManager {
	return &StateManager{}
}

func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

// SetFitted records a successful fit over nSamples rows and the given features.
func (s *StateManager) SetFitted(nSamples int, featureNames []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = true
	s.nSamples = nSamples
	s.featureNames = append([]string(nil), featureNames...)
}

// Reset returns to the unfitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = false
	s.nSamples = 0
	s.featureNames = nil
}

// NFeatures is the number of features seen during fit.
func (s *StateManager) NFeatures() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.featureNames)
}

// NSamples is the number of rows seen during fit.
func (s *StateManager) NSamples() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nSamples
}

// FeatureNames returns a copy of the feature names seen during fit.
func (s *StateManager) FeatureNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.featureNames...)
}

// RequireFitted returns a NotFittedError naming the component and method.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}

// State is a snapshot used for reports and results files.
type State struct {
	Fitted       bool     `json:"fitted"`
	NSamples     int      `json:"n_samples,omitempty"`
	FeatureNames []string `json:"feature_names,omitempty"`
}

// GetState returns a snapshot.
func (s *StateManager) GetState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Fitted:       s.fitted,
		NSamples:     s.nSamples,
		FeatureNames: append([]string(nil), s.featureNames...),
	}
}
