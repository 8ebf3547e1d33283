// Package inference decides whether a batch of camera frames shows a
// focused learner.
package inference

import "context"

// Estimator scores one batch of frames.
type Estimator interface {
	Estimate(ctx context.Context, frames [][]byte) (bool, error)
}

// Static answers the same verdict for every batch. It stands in when no
// inference service is configured.
type Static struct {
	Focused bool
}

// Estimate returns s.Focused.
func (s Static) Estimate(context.Context, [][]byte) (bool, error) {
	return s.Focused, nil
}
