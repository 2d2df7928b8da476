package recommender

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"recdiv/interaction"
)

// PopularityScorer is a user-independent baseline: every item scores
// its train interaction count. Useful as a sanity floor for the
// factorization model and as the cheapest concrete Scorer binding.
type PopularityScorer struct {
	counts []float64
}

// NewPopularityScorer creates an untrained popularity baseline.
func NewPopularityScorer() *PopularityScorer {
	return &PopularityScorer{}
}

// Fit counts interactions per item over the train matrix.
func (p *PopularityScorer) Fit(train *interaction.Matrix) error {
	if train == nil || train.NNZ() == 0 {
		return fmt.Errorf("popularity: train matrix is empty")
	}
	p.counts = make([]float64, train.NumItems)
	for _, item := range train.Items {
		p.counts[item]++
	}
	return nil
}

// Predict returns the train count of each item, regardless of user.
func (p *PopularityScorer) Predict(userIDs, itemIDs []int, _, _ *mat.Dense) ([]float64, error) {
	if len(userIDs) != len(itemIDs) {
		return nil, &interaction.DimensionError{
			Op:   "popularity predict",
			Want: fmt.Sprintf("%d item IDs", len(userIDs)),
			Got:  fmt.Sprintf("%d", len(itemIDs)),
		}
	}
	if p.counts == nil {
		return nil, fmt.Errorf("popularity: model is not fitted")
	}

	scores := make([]float64, len(itemIDs))
	for n, item := range itemIDs {
		if item >= 0 && item < len(p.counts) {
			scores[n] = p.counts[item]
		}
	}
	return scores, nil
}
