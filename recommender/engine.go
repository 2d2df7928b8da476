package recommender

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"recdiv/interaction"
)

// EngineConfig binds an Engine's collaborators at construction time.
type EngineConfig struct {
	// Store holds the normalized interaction history and split policy.
	Store *interaction.Store

	// Scorer is the concrete model producing quality scores.
	Scorer Scorer

	// Catalog optionally enriches ranked output with display
	// attributes.
	Catalog *interaction.Catalog

	// UserFeatures and ItemFeatures are optional side-feature matrices
	// forwarded verbatim to the scorer.
	UserFeatures *mat.Dense
	ItemFeatures *mat.Dense
}

// Engine turns a fitted scorer and an interaction store into ranked
// per-user item lists, excluding items the user already interacted
// with anywhere in the full history. After Fit completes, the engine
// only reads immutable state and is safe for concurrent recommendation
// requests.
type Engine struct {
	store   *interaction.Store
	scorer  Scorer
	catalog *interaction.Catalog

	userFeatures *mat.Dense
	itemFeatures *mat.Dense

	train *interaction.Matrix
	test  *interaction.Matrix

	numUsers int
	numItems int
	fitted   bool
}

// RankedItem is one row of PredictTopNItems output: an item code with
// its quality score and, when catalogued, display attributes.
type RankedItem struct {
	ItemCode   int
	ItemID     string
	Score      float64
	Attributes []string
}

// NewEngine materializes the train/test partitions and wires the
// scorer. The split happens once here; the resulting matrices are
// immutable for the engine's lifetime.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("recommender: engine needs an interaction store")
	}
	if cfg.Scorer == nil {
		return nil, fmt.Errorf("recommender: engine needs a scorer")
	}

	train, test, err := cfg.Store.Split()
	if err != nil {
		return nil, fmt.Errorf("recommender: split failed: %w", err)
	}

	numUsers, numItems := cfg.Store.Dimensions()
	return &Engine{
		store:        cfg.Store,
		scorer:       cfg.Scorer,
		catalog:      cfg.Catalog,
		userFeatures: cfg.UserFeatures,
		itemFeatures: cfg.ItemFeatures,
		train:        train,
		test:         test,
		numUsers:     numUsers,
		numItems:     numItems,
	}, nil
}

// TrainMatrix returns the train partition.
func (e *Engine) TrainMatrix() *interaction.Matrix {
	return e.train
}

// TestMatrix returns the held-out test partition.
func (e *Engine) TestMatrix() *interaction.Matrix {
	return e.test
}

// Store returns the engine's interaction store.
func (e *Engine) Store() *interaction.Store {
	return e.store
}

// Fit trains the scorer against the train matrix. Repeated calls after
// a successful fit are no-ops; scorer failures surface as
// TrainingError.
func (e *Engine) Fit() error {
	if e.fitted {
		return nil
	}
	if err := e.scorer.Fit(e.train); err != nil {
		return &TrainingError{Err: err}
	}
	e.fitted = true
	return nil
}

// Predict scores the given (user, item) pairs. The two ID slices must
// have equal length; side features configured on the engine are passed
// through to the scorer.
func (e *Engine) Predict(userIDs, itemIDs []int) ([]float64, error) {
	if len(userIDs) != len(itemIDs) {
		return nil, &interaction.DimensionError{
			Op:   "predict",
			Want: strconv.Itoa(len(userIDs)) + " item IDs",
			Got:  strconv.Itoa(len(itemIDs)),
		}
	}
	return e.scorer.Predict(userIDs, itemIDs, e.userFeatures, e.itemFeatures)
}

// PredictForUser broadcasts the user against every item code and
// returns the dense score vector in item-code order.
func (e *Engine) PredictForUser(userCode int) ([]float64, error) {
	userIDs := make([]int, e.numItems)
	itemIDs := make([]int, e.numItems)
	for i := range itemIDs {
		userIDs[i] = userCode
		itemIDs[i] = i
	}
	return e.Predict(userIDs, itemIDs)
}

// PredictForUserUnseen scores every item for the user, then overwrites
// each item from the user's full interaction history with -Inf so no
// downstream top-k selection can pick it.
func (e *Engine) PredictForUserUnseen(userCode int) ([]float64, error) {
	scores, err := e.PredictForUser(userCode)
	if err != nil {
		return nil, err
	}
	neg := math.Inf(-1)
	for _, itemCode := range e.store.ItemsSeenBy(userCode) {
		scores[itemCode] = neg
	}
	return scores, nil
}

// PredictTopNUnseen selects the topN highest-scoring unseen items via
// partial selection. The mapping carries no order; ties are broken
// arbitrarily but deterministically for identical inputs.
func (e *Engine) PredictTopNUnseen(userCode, topN int) (map[int]float64, error) {
	if userCode < 0 || userCode >= e.numUsers {
		return nil, &interaction.InvalidUserError{UserCode: userCode, NumUsers: e.numUsers}
	}

	scores, err := e.PredictForUserUnseen(userCode)
	if err != nil {
		return nil, err
	}

	selected := newTopKSelector(topN).Select(scores, topN)
	result := make(map[int]float64, len(selected))
	for _, s := range selected {
		result[s.index] = s.score
	}
	return result, nil
}

// PredictTopNItems ranks the top-N unseen items by descending score
// (ties by ascending item code) and left-joins the catalog: items with
// no catalog entry keep nil attributes rather than being dropped.
func (e *Engine) PredictTopNItems(userCode, topN int) ([]RankedItem, error) {
	scores, err := e.PredictTopNUnseen(userCode, topN)
	if err != nil {
		return nil, err
	}

	items := make([]RankedItem, 0, len(scores))
	for itemCode, score := range scores {
		row := RankedItem{ItemCode: itemCode, Score: score}
		if raw, ok := e.store.Items().Raw(itemCode); ok {
			row.ItemID = raw
			if e.catalog != nil {
				if attrs, ok := e.catalog.Attributes(raw); ok {
					row.Attributes = attrs
				}
			}
		}
		items = append(items, row)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ItemCode < items[j].ItemCode
	})

	return items, nil
}
