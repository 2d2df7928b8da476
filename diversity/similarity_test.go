package diversity

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// Test case for cosine similarity on known vectors
func TestCosineSimilarity(t *testing.T) {
	features := mat.NewDense(4, 2, []float64{
		1, 0,
		0, 1,
		2, 0,
		0, 0, // degenerate all-zero vector
	})

	sim := CosineSimilarity(features)

	if got := sim.At(0, 1); got != 0 {
		t.Errorf("orthogonal vectors: want 0, got %v", got)
	}
	if got := sim.At(0, 2); math.Abs(got-1) > 1e-12 {
		t.Errorf("parallel vectors: want 1, got %v", got)
	}
	if got := sim.At(0, 3); got != 0 {
		t.Errorf("zero vector: want 0 similarity, got %v", got)
	}
	for i := 0; i < 4; i++ {
		if got := sim.At(i, i); got != 0 {
			t.Errorf("diagonal (%d, %d): want 0, got %v", i, i, got)
		}
	}
	// Symmetry.
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if sim.At(i, j) != sim.At(j, i) {
				t.Errorf("asymmetric at (%d, %d)", i, j)
			}
		}
	}
}

// Test case for Jaccard similarity on attribute sets
func TestJaccardSimilarity(t *testing.T) {
	set := func(tokens ...string) map[string]struct{} {
		s := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			s[tok] = struct{}{}
		}
		return s
	}

	sets := []map[string]struct{}{
		set("crime", "thriller"),
		set("crime", "drama"),
		set("animation"),
		{},
	}

	sim := JaccardSimilarity(sets)

	// {crime, thriller} vs {crime, drama}: 1 shared of 3 total.
	if got := sim.At(0, 1); math.Abs(got-1.0/3.0) > 1e-12 {
		t.Errorf("want 1/3, got %v", got)
	}
	if got := sim.At(0, 2); got != 0 {
		t.Errorf("disjoint sets: want 0, got %v", got)
	}
	if got := sim.At(0, 3); got != 0 {
		t.Errorf("empty set: want 0, got %v", got)
	}
	if got := sim.At(1, 0); got != sim.At(0, 1) {
		t.Errorf("asymmetric Jaccard matrix")
	}
	if got := sim.At(0, 0); got != 0 {
		t.Errorf("diagonal: want 0, got %v", got)
	}
}
