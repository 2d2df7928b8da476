package diversity

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Reranker reorders candidate indices given per-candidate quality
// scores and a candidate-by-candidate similarity matrix. The returned
// indices reference positions in the quality vector; each appears at
// most once and the result length never exceeds min(k, candidates).
type Reranker interface {
	Rerank(qualityScores []float64, similarityScores *mat.Dense, k int) ([]int, error)
}

// EmptyCandidateSetError reports a rerank call with zero candidates.
type EmptyCandidateSetError struct{}

func (e *EmptyCandidateSetError) Error() string {
	return "diversity: empty candidate set"
}

// DimensionError reports a similarity matrix whose shape does not
// match the candidate count.
type DimensionError struct {
	Candidates int
	Rows       int
	Cols       int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("diversity: similarity matrix is %dx%d, want %dx%d",
		e.Rows, e.Cols, e.Candidates, e.Candidates)
}
