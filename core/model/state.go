package model

import (
	"sync"

	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
)

// FitState is the fitted state of a transform holding parameters of type P.
// It is either Unfitted or Fitted.
type FitState[P any] interface {
	fitState()
}

// Unfitted is the state before a successful Fit.
type Unfitted[P any] struct{}

func (Unfitted[P]) fitState() {}

// Fitted holds the parameters produced by Fit together with the shape of the
// training data.
type Fitted[P any] struct {
	Params    P
	NSamples  int
	NFeatures int
}

func (Fitted[P]) fitState() {}

// StateManager guards a FitState. Concurrent reads are safe; Fit replaces the
// state wholesale, so a Transform never sees half-written parameters.
type StateManager[P any] struct {
	mu    sync.RWMutex
	state FitState[P]
}

// NewStateManager returns a manager in the Unfitted state.
func NewStateManager[P any]() *StateManager[P] {
	return &StateManager[P]{state: Unfitted[P]{}}
}

// Set stores fitted parameters, replacing any previous state.
func (s *StateManager[P]) Set(params P, nSamples, nFeatures int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Fitted[P]{Params: params, NSamples: nSamples, NFeatures: nFeatures}
}

// State returns the current state.
func (s *StateManager[P]) State() FitState[P] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return Unfitted[P]{}
	}
	return s.state
}

// Params returns the fitted parameters, or a NotFittedError naming modelName
// and method when Fit has not succeeded yet.
func (s *StateManager[P]) Params(modelName, method string) (P, error) {
	switch st := s.State().(type) {
	case Fitted[P]:
		return st.Params, nil
	default:
		var zero P
		return zero, serrors.NewNotFittedError(modelName, method)
	}
}

// IsFitted reports whether Fit has succeeded.
func (s *StateManager[P]) IsFitted() bool {
	_, ok := s.State().(Fitted[P])
	return ok
}

// GetDimensions returns the number of features and samples seen during
// fitting, or zeros when unfitted.
func (s *StateManager[P]) GetDimensions() (nFeatures, nSamples int) {
	if st, ok := s.State().(Fitted[P]); ok {
		return st.NFeatures, st.NSamples
	}
	return 0, 0
}

// Reset returns the manager to the Unfitted state.
func (s *StateManager[P]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Unfitted[P]{}
}
