package recommender

import (
	"fmt"
	"math"
)

// PrecisionAtK evaluates the fitted engine against the held-out test
// matrix: for every user with at least one test interaction, items are
// ranked with the user's train interactions excluded, and the top k
// are checked against the user's test items. The result is the mean
// precision over evaluated users; an empty test partition scores zero.
func PrecisionAtK(e *Engine, k int) (float64, error) {
	if k <= 0 {
		return 0, fmt.Errorf("recommender: precision@k needs k > 0, got %d", k)
	}

	trainRows := e.TrainMatrix().RowSets()
	testRows := e.TestMatrix().RowSets()
	if len(testRows) == 0 {
		return 0, nil
	}

	selector := newTopKSelector(k)
	var total float64
	var users int
	for userCode, relevant := range testRows {
		scores, err := e.PredictForUser(userCode)
		if err != nil {
			return 0, err
		}

		// Only the train history is masked here: held-out items must
		// stay candidates, unlike in the serving path.
		neg := math.Inf(-1)
		for itemCode := range trainRows[userCode] {
			scores[itemCode] = neg
		}

		hits := 0
		for _, s := range selector.Select(scores, k) {
			if _, ok := relevant[s.index]; ok {
				hits++
			}
		}
		total += float64(hits) / float64(k)
		users++
	}

	return total / float64(users), nil
}
