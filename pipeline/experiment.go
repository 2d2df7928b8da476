package pipeline

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	diversity "recdiv/diversity"
	interaction "recdiv/interaction"
	recommender "recdiv/recommender"

	"gonum.org/v1/gonum/mat"
)

// Experiment drives one full run: load the rating and catalog files,
// split, train, evaluate, recommend for every requested user, rerank
// for diversity and persist the results.
type Experiment struct {
	dir      string
	metadata *ExperimentMetadata

	store    *interaction.Store
	catalog  *interaction.Catalog
	engine   *recommender.Engine
	scorer   recommender.Scorer
	reranker diversity.Reranker

	serializer *ExperimentSerializer
	db         *ResultDB
	requests   *RequestLog
}

var SCORER_FACTORY = GetDefaultScorerFactoryDefs()

const MAX_SNAPSHOT_COUNT = 3
const REQUEST_LOG_BATCH = 64

func NewExperiment(dir string, metadata *ExperimentMetadata) *Experiment {
	return &Experiment{
		dir:        dir,
		metadata:   metadata,
		serializer: NewExperimentSerializer(dir, metadata.UniqueName, MAX_SNAPSHOT_COUNT),
	}
}

// Init loads the input files and builds the engine, the reranker and
// the output sinks. It does not train.
func (e *Experiment) Init() error {

	rows, err := interaction.ReadInteractionsCSV(e.metadata.InteractionsPath)
	if err != nil {
		return fmt.Errorf("failed to read interactions: %w", err)
	}

	store, err := interaction.NewStore(rows, e.metadata.SplitPolicy())
	if err != nil {
		return fmt.Errorf("failed to normalize interactions: %w", err)
	}
	e.store = store

	if e.metadata.CatalogPath != "" {
		catalog, err := interaction.ReadCatalogCSV(e.metadata.CatalogPath)
		if err != nil {
			return fmt.Errorf("failed to read catalog: %w", err)
		}
		e.catalog = catalog
	}

	factory := SCORER_FACTORY[e.metadata.ScorerType]
	if factory == nil {
		return fmt.Errorf("unknown scorer type: %s", e.metadata.ScorerType)
	}
	e.scorer = factory(e.metadata)

	engine, err := recommender.NewEngine(recommender.EngineConfig{
		Store:   e.store,
		Scorer:  e.scorer,
		Catalog: e.catalog,
	})
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}
	e.engine = engine

	e.reranker = diversity.NewMaximalMarginalRelevance(e.metadata.Lambda)

	// create output folder and sinks

	outDir := filepath.Join(e.dir, e.metadata.UniqueName)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create experiment folder: %w", err)
	}

	db, err := OpenResultDB(filepath.Join(outDir, "results.db"))
	if err != nil {
		return fmt.Errorf("failed to open result db: %w", err)
	}
	e.db = db

	requests, err := NewRequestLog(filepath.Join(outDir, "requests.msgpack"), REQUEST_LOG_BATCH)
	if err != nil {
		e.db.Close()
		return fmt.Errorf("failed to open request log: %w", err)
	}
	e.requests = requests

	return nil
}

// Engine exposes the built engine, mostly for inspection after a run.
func (e *Experiment) Engine() *recommender.Engine {
	return e.engine
}

// IsFinished reports whether a previous run already completed.
func (e *Experiment) IsFinished() bool {
	finished, _ := e.serializer.IsFinished()
	return finished
}

// Run trains, evaluates and serves every requested user, storing the
// ranked and reranked lists along the way.
func (e *Experiment) Run() error {
	if err := e.engine.Fit(); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	precision, err := recommender.PrecisionAtK(e.engine, e.metadata.TopN)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}
	log.Printf("precision@%d = %.4f", e.metadata.TopN, precision)

	runID, err := e.db.CreateRun(e.metadata, precision)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	users := e.metadata.UserCodes
	if len(users) == 0 {
		numUsers, _ := e.store.Dimensions()
		users = make([]int, numUsers)
		for i := range users {
			users[i] = i
		}
	}

	archive := make([][]float64, 0, len(users))
	for _, userCode := range users {
		scores, err := e.engine.PredictForUser(userCode)
		if err != nil {
			return fmt.Errorf("scoring user %d failed: %w", userCode, err)
		}
		archive = append(archive, scores)

		items, err := e.engine.PredictTopNItems(userCode, e.metadata.TopN)
		if err != nil {
			return fmt.Errorf("ranking user %d failed: %w", userCode, err)
		}

		order, err := e.rerank(items)
		if err != nil {
			return fmt.Errorf("reranking user %d failed: %w", userCode, err)
		}

		if err := e.db.StoreRecommendations(runID, userCode, items, order); err != nil {
			return fmt.Errorf("storing user %d failed: %w", userCode, err)
		}

		e.requests.Log(RequestRecord{
			UserCode: userCode,
			TopN:     e.metadata.TopN,
			RerankK:  e.metadata.RerankK,
			UnixTime: time.Now().Unix(),
		})
	}

	// finally save everything

	if err := e.serializer.SaveScores(archive); err != nil {
		return fmt.Errorf("failed to save score archive: %w", err)
	}

	if scorer, ok := e.scorer.(*recommender.FactorizationScorer); ok {
		if err := e.serializer.SaveModelSnapshot(scorer.Dump()); err != nil {
			return fmt.Errorf("failed to save model snapshot: %w", err)
		}
	}

	if err := e.serializer.SaveMetadata(e.metadata); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}
	return e.serializer.MarkFinished()
}

// Close flushes and releases the output sinks.
func (e *Experiment) Close() {
	if e.requests != nil {
		e.requests.Stop()
	}
	if e.db != nil {
		e.db.Close()
	}
}

// rerank diversifies a ranked list with the configured reranker, using
// Jaccard similarity over catalog attribute tokens. Without a catalog
// every similarity is zero and the reranked order follows quality.
func (e *Experiment) rerank(items []recommender.RankedItem) ([]int, error) {
	if len(items) == 0 {
		return []int{}, nil
	}

	quality := make([]float64, len(items))
	sets := make([]map[string]struct{}, len(items))
	for i, item := range items {
		quality[i] = item.Score
		sets[i] = attributeTokens(item.Attributes)
	}

	return e.reranker.Rerank(quality, e.candidateSimilarity(sets), e.metadata.RerankK)
}

func (e *Experiment) candidateSimilarity(sets []map[string]struct{}) *mat.Dense {
	return diversity.JaccardSimilarity(sets)
}

// attributeTokens splits pipe-separated attribute values, the common
// genre-list encoding, into a token set.
func attributeTokens(attrs []string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, attr := range attrs {
		for _, token := range strings.Split(attr, "|") {
			token = strings.TrimSpace(token)
			if token != "" {
				tokens[token] = struct{}{}
			}
		}
	}
	return tokens
}
