package diversity

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MaximalMarginalRelevance greedily selects an ordered subset of
// candidates maximizing a convex combination of quality and novelty:
// each pick is argmax over lambda*quality(i) minus (1-lambda) times
// the candidate's highest similarity to anything already selected.
// Lambda 1 is pure relevance, lambda 0 pure diversity.
//
// Selected candidates are excluded from later picks with a -Inf
// sentinel in the working score vector instead of being removed, so
// every returned index keeps its position in the original quality
// vector. The loop is inherently sequential: each iteration depends on
// the previous selection. Cost is O(k * candidates) per call, and the
// caller's similarity matrix is never modified.
type MaximalMarginalRelevance struct {
	lambda float64
}

// NewMaximalMarginalRelevance creates a reranker with the given
// relevance weight, clamped into [0, 1].
func NewMaximalMarginalRelevance(lambda float64) *MaximalMarginalRelevance {
	if lambda < 0 {
		lambda = 0
	}
	if lambda > 1 {
		lambda = 1
	}
	return &MaximalMarginalRelevance{lambda: lambda}
}

// Lambda returns the configured relevance weight.
func (m *MaximalMarginalRelevance) Lambda() float64 {
	return m.lambda
}

// Rerank selects up to k candidate indices. Ties go to the first
// occurrence, so results are deterministic for identical inputs.
func (m *MaximalMarginalRelevance) Rerank(qualityScores []float64, similarityScores *mat.Dense, k int) ([]int, error) {
	if k <= 0 {
		return []int{}, nil
	}
	n := len(qualityScores)
	if n == 0 {
		return nil, &EmptyCandidateSetError{}
	}
	rows, cols := similarityScores.Dims()
	if rows != n || cols != n {
		return nil, &DimensionError{Candidates: n, Rows: rows, Cols: cols}
	}
	if k > n {
		k = n
	}

	selected := make([]int, 0, k)
	taken := make([]bool, n)

	// maxSimToSelected[i] tracks the highest similarity between
	// candidate i and the selected set so far.
	maxSimToSelected := make([]float64, n)
	for i := range maxSimToSelected {
		maxSimToSelected[i] = math.Inf(-1)
	}

	pick := floats.MaxIdx(qualityScores)
	neg := math.Inf(-1)
	scores := make([]float64, n)
	for {
		selected = append(selected, pick)
		taken[pick] = true
		if len(selected) == k {
			break
		}
		for i := 0; i < n; i++ {
			if sim := similarityScores.At(i, pick); sim > maxSimToSelected[i] {
				maxSimToSelected[i] = sim
			}
		}

		for i := 0; i < n; i++ {
			if taken[i] {
				scores[i] = neg
				continue
			}
			scores[i] = m.lambda * qualityScores[i]
			if m.lambda < 1 {
				scores[i] -= (1 - m.lambda) * maxSimToSelected[i]
			}
		}
		pick = floats.MaxIdx(scores)
	}

	return selected, nil
}
