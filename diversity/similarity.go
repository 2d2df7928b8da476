package diversity

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// CosineSimilarity builds the candidate-by-candidate cosine matrix
// from per-candidate feature rows. The diagonal is zeroed so a
// candidate never counts as similar to itself, and all-zero feature
// vectors yield zero similarity.
func CosineSimilarity(features *mat.Dense) *mat.Dense {
	n, dim := features.Dims()

	norms := make([]float64, n)
	row := make([]float64, dim)
	for i := 0; i < n; i++ {
		mat.Row(row, i, features)
		norms[i] = math.Sqrt(floats.Dot(row, row))
	}

	sim := mat.NewDense(n, n, nil)
	a := make([]float64, dim)
	b := make([]float64, dim)
	for i := 0; i < n; i++ {
		if norms[i] == 0 {
			continue
		}
		mat.Row(a, i, features)
		for j := i + 1; j < n; j++ {
			if norms[j] == 0 {
				continue
			}
			mat.Row(b, j, features)
			s := floats.Dot(a, b) / (norms[i] * norms[j])
			sim.Set(i, j, s)
			sim.Set(j, i, s)
		}
	}
	return sim
}

// JaccardSimilarity builds the candidate-by-candidate Jaccard matrix
// from per-candidate attribute sets: intersection over union, with an
// empty pair scoring zero. The diagonal is zeroed.
func JaccardSimilarity(sets []map[string]struct{}) *mat.Dense {
	n := len(sets)
	sim := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := jaccard(sets[i], sets[j])
			sim.Set(i, j, s)
			sim.Set(j, i, s)
		}
	}
	return sim
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
