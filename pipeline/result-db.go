package pipeline

import (
	"database/sql"
	"fmt"

	recommender "recdiv/recommender"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vmihailenco/msgpack/v5"
)

// ResultDB persists finished runs and their per-user recommendation
// lists in a sqlite file.
type ResultDB struct {
	db *sql.DB
}

// OpenResultDB opens (and if needed initializes) a result database.
func OpenResultDB(filename string) (*ResultDB, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			precision_at_k REAL NOT NULL,
			metadata BLOB NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create runs table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS recommendations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL,
			user_code INTEGER NOT NULL,
			item_code INTEGER NOT NULL,
			item_id TEXT NOT NULL,
			score REAL NOT NULL,
			item_rank INTEGER NOT NULL,
			reranked_rank INTEGER NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create recommendations table: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &ResultDB{db: db}, nil
}

// Close closes the database connection.
func (rdb *ResultDB) Close() error {
	return rdb.db.Close()
}

// CreateRun records a run header and returns its row ID. The full
// metadata travels as a msgpack blob so later schema additions need no
// migration.
func (rdb *ResultDB) CreateRun(metadata *ExperimentMetadata, precisionAtK float64) (int64, error) {
	blob, err := msgpack.Marshal(metadata)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal run metadata: %w", err)
	}

	result, err := rdb.db.Exec(
		"INSERT INTO runs (name, precision_at_k, metadata) VALUES (?, ?, ?)",
		metadata.UniqueName, precisionAtK, blob,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return result.LastInsertId()
}

// GetRunMetadata loads a run's stored metadata and precision.
func (rdb *ResultDB) GetRunMetadata(runID int64) (*ExperimentMetadata, float64, error) {
	var blob []byte
	var precisionAtK float64
	err := rdb.db.QueryRow(
		"SELECT metadata, precision_at_k FROM runs WHERE id = ?", runID,
	).Scan(&blob, &precisionAtK)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query run %d: %w", runID, err)
	}

	var metadata ExperimentMetadata
	if err := msgpack.Unmarshal(blob, &metadata); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal run metadata: %w", err)
	}
	return &metadata, precisionAtK, nil
}

// StoreRecommendations writes one user's ranked list. rerankedOrder
// holds positions into items as returned by the reranker; items not in
// it get reranked_rank -1.
func (rdb *ResultDB) StoreRecommendations(runID int64, userCode int, items []recommender.RankedItem, rerankedOrder []int) error {
	tx, err := rdb.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	rerankedRank := make(map[int]int, len(rerankedOrder))
	for pos, idx := range rerankedOrder {
		rerankedRank[idx] = pos
	}

	for rank, item := range items {
		rr, ok := rerankedRank[rank]
		if !ok {
			rr = -1
		}
		_, err = tx.Exec(
			"INSERT INTO recommendations (run_id, user_code, item_code, item_id, score, item_rank, reranked_rank) VALUES (?, ?, ?, ?, ?, ?, ?)",
			runID, userCode, item.ItemCode, item.ItemID, item.Score, rank, rr,
		)
		if err != nil {
			return fmt.Errorf("failed to insert recommendation: %w", err)
		}
	}

	return tx.Commit()
}

// StoredRecommendation is one recommendations row as read back.
type StoredRecommendation struct {
	UserCode     int
	ItemCode     int
	ItemID       string
	Score        float64
	Rank         int
	RerankedRank int
}

// GetRecommendations loads one user's list for a run, in rank order.
func (rdb *ResultDB) GetRecommendations(runID int64, userCode int) ([]StoredRecommendation, error) {
	rows, err := rdb.db.Query(`
		SELECT user_code, item_code, item_id, score, item_rank, reranked_rank
		FROM recommendations
		WHERE run_id = ? AND user_code = ?
		ORDER BY item_rank ASC
	`, runID, userCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	var recs []StoredRecommendation
	for rows.Next() {
		var rec StoredRecommendation
		err := rows.Scan(&rec.UserCode, &rec.ItemCode, &rec.ItemID, &rec.Score, &rec.Rank, &rec.RerankedRank)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recommendations: %w", err)
	}
	return recs, nil
}

// DeleteRun removes a run and, via the cascade, its recommendations.
func (rdb *ResultDB) DeleteRun(runID int64) error {
	_, err := rdb.db.Exec("DELETE FROM runs WHERE id = ?", runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}
