package main

import (
	"os"
	"path"
	"testing"

	"recdiv/pipeline"
)

func writeTestFiles(t *testing.T, dir string) (ratingsPath, moviesPath string) {
	t.Helper()

	ratings := "userId,movieId,rating\n" +
		"u1,m1,5\n" +
		"u1,m2,3\n" +
		"u1,m3,4\n" +
		"u2,m2,4\n" +
		"u2,m4,5\n" +
		"u2,m5,2\n" +
		"u3,m1,1\n" +
		"u3,m3,5\n" +
		"u3,m6,4\n" +
		"u4,m4,3\n" +
		"u4,m5,4\n" +
		"u4,m6,5\n"
	movies := "movieId,title,genres\n" +
		"m1,First,Action|Thriller\n" +
		"m2,Second,Comedy\n" +
		"m3,Third,Action\n" +
		"m4,Fourth,Drama|Romance\n" +
		"m5,Fifth,Comedy|Romance\n" +
		"m6,Sixth,Documentary\n"

	ratingsPath = path.Join(dir, "ratings.csv")
	moviesPath = path.Join(dir, "movies.csv")
	if err := os.WriteFile(ratingsPath, []byte(ratings), 0644); err != nil {
		t.Fatalf("Error writing ratings file: %v", err)
	}
	if err := os.WriteFile(moviesPath, []byte(movies), 0644); err != nil {
		t.Fatalf("Error writing movies file: %v", err)
	}
	return ratingsPath, moviesPath
}

func TestRunAndReloadExperiment(t *testing.T) {
	basePath := t.TempDir()
	ratingsPath, moviesPath := writeTestFiles(t, basePath)

	metadata := pipeline.DefaultExperimentMetadata()
	metadata.UniqueName = "test"
	metadata.InteractionsPath = ratingsPath
	metadata.CatalogPath = moviesPath
	metadata.ScorerType = "Popularity"
	metadata.TopN = 3
	metadata.RerankK = 2
	metadata.TestSize = 0.25

	experiment := pipeline.NewExperiment(basePath, metadata)
	if experiment.IsFinished() {
		t.Fatalf("Fresh experiment must not be finished")
	}

	if err := experiment.Init(); err != nil {
		t.Fatalf("Failed to initialize experiment: %v", err)
	}
	if err := experiment.Run(); err != nil {
		t.Fatalf("Failed to run experiment: %v", err)
	}
	experiment.Close()

	// A second experiment against the same folder sees the mark.
	reloaded := pipeline.NewExperiment(basePath, metadata)
	if !reloaded.IsFinished() {
		t.Errorf("Finished experiment not detected on reload")
	}

	// Results landed in the database with valid reranked positions.
	db, err := pipeline.OpenResultDB(path.Join(basePath, "test", "results.db"))
	if err != nil {
		t.Fatalf("Failed to reopen result db: %v", err)
	}
	defer db.Close()

	loadedMetadata, _, err := db.GetRunMetadata(1)
	if err != nil {
		t.Fatalf("Failed to load run metadata: %v", err)
	}
	if loadedMetadata.UniqueName != "test" || loadedMetadata.ScorerType != "Popularity" {
		t.Errorf("Stored run metadata does not match: %+v", loadedMetadata)
	}

	for userCode := 0; userCode < 4; userCode++ {
		recs, err := db.GetRecommendations(1, userCode)
		if err != nil {
			t.Fatalf("Failed to load recommendations for user %d: %v", userCode, err)
		}
		if len(recs) == 0 || len(recs) > metadata.TopN {
			t.Fatalf("User %d: want 1..%d recommendations, got %d", userCode, metadata.TopN, len(recs))
		}

		rerankedSeen := make(map[int]bool)
		for _, rec := range recs {
			if rec.ItemID == "" {
				t.Errorf("User %d: stored item without raw ID", userCode)
			}
			if rec.RerankedRank >= metadata.RerankK {
				t.Errorf("User %d: reranked rank %d out of range", userCode, rec.RerankedRank)
			}
			if rec.RerankedRank >= 0 {
				if rerankedSeen[rec.RerankedRank] {
					t.Errorf("User %d: duplicate reranked rank %d", userCode, rec.RerankedRank)
				}
				rerankedSeen[rec.RerankedRank] = true
			}
		}
	}

	// The score archive covers every user and item.
	serializer := pipeline.NewExperimentSerializer(basePath, "test", 3)
	scores, err := serializer.GetLatestScores()
	if err != nil {
		t.Fatalf("Failed to load score archive: %v", err)
	}
	if len(scores) != 4 {
		t.Fatalf("want 4 score rows, got %d", len(scores))
	}
	for i, row := range scores {
		if len(row) != 6 {
			t.Errorf("Score row %d: want 6 items, got %d", i, len(row))
		}
	}

	// The request log saw one request per user.
	requests, err := pipeline.ReadRequestLog(path.Join(basePath, "test", "requests.msgpack"))
	if err != nil {
		t.Fatalf("Failed to read request log: %v", err)
	}
	if len(requests) != 4 {
		t.Errorf("want 4 logged requests, got %d", len(requests))
	}
}
