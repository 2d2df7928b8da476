package recommender

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"recdiv/interaction"
)

// Scorer is the pluggable scoring capability behind an Engine. Any
// model satisfying this contract can be bound at engine construction:
// Fit trains against the sparse train matrix, Predict returns one
// relevance score per (user, item) pair in input order.
type Scorer interface {
	Fit(train *interaction.Matrix) error
	Predict(userIDs, itemIDs []int, userFeatures, itemFeatures *mat.Dense) ([]float64, error)
}

// TrainingError wraps a failure propagated from a Scorer's fit step.
type TrainingError struct {
	Err error
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("recommender: scorer training failed: %v", e.Err)
}

func (e *TrainingError) Unwrap() error {
	return e.Err
}
