package recommender

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"recdiv/interaction"
)

// stubScorer scores pairs with a fixed function and records fit calls.
type stubScorer struct {
	fitCalls int
	fitErr   error
	scoreFn  func(user, item int) float64
}

func (s *stubScorer) Fit(train *interaction.Matrix) error {
	s.fitCalls++
	return s.fitErr
}

func (s *stubScorer) Predict(userIDs, itemIDs []int, _, _ *mat.Dense) ([]float64, error) {
	scores := make([]float64, len(userIDs))
	for n := range userIDs {
		scores[n] = s.scoreFn(userIDs[n], itemIDs[n])
	}
	return scores, nil
}

// testStore builds a 3-user, 5-item history. User 0 saw items 0 and 1,
// user 1 saw items 1 and 2, user 2 saw items 3 and 4. The contiguous
// policy puts the first two rows in test, keeping the split
// deterministic.
func testStore(t *testing.T) *interaction.Store {
	t.Helper()
	rows := [][]string{
		{"u0", "i0", "5"},
		{"u0", "i1", "3"},
		{"u1", "i1", "4"},
		{"u1", "i2", "2"},
		{"u2", "i3", "1"},
		{"u2", "i4", "1"},
	}
	store, err := interaction.NewStore(rows, interaction.SplitPolicy{TestSize: 2, Random: false})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func testEngine(t *testing.T, scorer Scorer, catalog *interaction.Catalog) *Engine {
	t.Helper()
	engine, err := NewEngine(EngineConfig{
		Store:   testStore(t),
		Scorer:  scorer,
		Catalog: catalog,
	})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

// itemValueScorer scores every pair with the item code, making ranks
// easy to predict.
func itemValueScorer() *stubScorer {
	return &stubScorer{scoreFn: func(user, item int) float64 {
		return float64(item)
	}}
}

// Test case for mismatched ID slice lengths
func TestPredictDimensionError(t *testing.T) {
	engine := testEngine(t, itemValueScorer(), nil)

	_, err := engine.Predict([]int{0, 1}, []int{0})
	var dimErr *interaction.DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("want DimensionError, got %v", err)
	}
}

// Test case for PredictForUser broadcasting over all item codes
func TestPredictForUser(t *testing.T) {
	engine := testEngine(t, itemValueScorer(), nil)

	scores, err := engine.PredictForUser(0)
	if err != nil {
		t.Fatalf("PredictForUser failed: %v", err)
	}
	if len(scores) != 5 {
		t.Fatalf("want 5 scores, got %d", len(scores))
	}
	for i, s := range scores {
		if s != float64(i) {
			t.Errorf("score[%d]: want %v, got %v", i, float64(i), s)
		}
	}
}

// Test case for unseen masking over the full interaction history
func TestPredictForUserUnseen(t *testing.T) {
	engine := testEngine(t, itemValueScorer(), nil)

	// User 0's row for item 0 sits in the test partition; masking must
	// still cover it because the full history counts.
	scores, err := engine.PredictForUserUnseen(0)
	if err != nil {
		t.Fatalf("PredictForUserUnseen failed: %v", err)
	}
	for _, seen := range []int{0, 1} {
		if !math.IsInf(scores[seen], -1) {
			t.Errorf("seen item %d: want -Inf, got %v", seen, scores[seen])
		}
	}
	for _, unseen := range []int{2, 3, 4} {
		if scores[unseen] != float64(unseen) {
			t.Errorf("unseen item %d: want raw score %v, got %v", unseen, float64(unseen), scores[unseen])
		}
	}
}

// Test case for partial top-N selection of unseen items
func TestPredictTopNUnseen(t *testing.T) {
	engine := testEngine(t, itemValueScorer(), nil)

	top, err := engine.PredictTopNUnseen(0, 2)
	if err != nil {
		t.Fatalf("PredictTopNUnseen failed: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("want 2 entries, got %d", len(top))
	}
	// User 0's unseen items are 2, 3, 4; the two best by item-value
	// scoring are 4 and 3.
	for _, want := range []int{3, 4} {
		if _, ok := top[want]; !ok {
			t.Errorf("item %d missing from top-2 %v", want, top)
		}
	}
}

// Test case for the out-of-range user error
func TestPredictTopNUnseenInvalidUser(t *testing.T) {
	engine := testEngine(t, itemValueScorer(), nil)

	for _, user := range []int{-1, 3, 99} {
		_, err := engine.PredictTopNUnseen(user, 2)
		var userErr *interaction.InvalidUserError
		if !errors.As(err, &userErr) {
			t.Errorf("user %d: want InvalidUserError, got %v", user, err)
		}
	}
}

// Test case for the ordered, catalog-joined top-N table
func TestPredictTopNItems(t *testing.T) {
	catalog := interaction.NewCatalog([]string{"title"})
	catalog.Add("i4", []string{"Fourth"})
	catalog.Add("i2", []string{"Second"})
	// i3 is deliberately missing from the catalog.

	engine := testEngine(t, itemValueScorer(), catalog)

	items, err := engine.PredictTopNItems(0, 3)
	if err != nil {
		t.Fatalf("PredictTopNItems failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("want 3 rows, got %d", len(items))
	}

	wantOrder := []int{4, 3, 2}
	for i, want := range wantOrder {
		if items[i].ItemCode != want {
			t.Errorf("row %d: want item %d, got %d", i, want, items[i].ItemCode)
		}
	}
	for i := 1; i < len(items); i++ {
		if items[i].Score > items[i-1].Score {
			t.Errorf("rows %d and %d are not in descending score order", i-1, i)
		}
	}

	if items[0].ItemID != "i4" || len(items[0].Attributes) == 0 || items[0].Attributes[0] != "Fourth" {
		t.Errorf("row 0 not joined against catalog: %+v", items[0])
	}
	if items[1].Attributes != nil {
		t.Errorf("uncatalogued item should keep nil attributes, got %v", items[1].Attributes)
	}
}

// Test case for Fit being idempotent-safe and error-propagating
func TestFit(t *testing.T) {
	scorer := itemValueScorer()
	engine := testEngine(t, scorer, nil)

	if err := engine.Fit(); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if err := engine.Fit(); err != nil {
		t.Fatalf("second Fit failed: %v", err)
	}
	if scorer.fitCalls != 1 {
		t.Errorf("want exactly one scorer fit, got %d", scorer.fitCalls)
	}

	failing := &stubScorer{
		fitErr:  errors.New("diverged"),
		scoreFn: func(user, item int) float64 { return 0 },
	}
	engine = testEngine(t, failing, nil)
	err := engine.Fit()
	var trainErr *TrainingError
	if !errors.As(err, &trainErr) {
		t.Fatalf("want TrainingError, got %v", err)
	}
}

// Test case for the train/test partitions materialized at construction
func TestEngineSplit(t *testing.T) {
	engine := testEngine(t, itemValueScorer(), nil)

	if engine.TrainMatrix().NNZ() != 4 || engine.TestMatrix().NNZ() != 2 {
		t.Errorf("want 4 train / 2 test interactions, got %d/%d",
			engine.TrainMatrix().NNZ(), engine.TestMatrix().NNZ())
	}
	if engine.TrainMatrix().NumItems != engine.TestMatrix().NumItems {
		t.Errorf("partitions disagree on shape")
	}
}
