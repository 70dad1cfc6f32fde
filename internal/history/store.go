// Package history persists evaluation results to a local SQLite database
// so score drift can be inspected over time.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/liugu2023/nekro-github-analyzer/internal/types"
)

// Record is one persisted evaluation.
type Record struct {
	ID           int64     `json:"id"`
	RepoFullName string    `json:"repo_full_name"`
	TotalScore   float64   `json:"total_score"`
	Rating       string    `json:"rating"`
	EvaluatedAt  time.Time `json:"evaluated_at"`
	Result       string    `json:"result"`
}

// Store writes and reads evaluation history.
type Store struct {
	db *sql.DB
}

// Open creates the history database under dataDir, creating the directory
// and schema when missing.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "evaluations.db")
	connStr := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run history migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS evaluations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		repo_full_name TEXT NOT NULL,
		total_score REAL NOT NULL,
		rating TEXT NOT NULL,
		evaluated_at TIMESTAMP NOT NULL,
		result TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_evaluations_repo
		ON evaluations(repo_full_name, evaluated_at DESC);`

	_, err := s.db.Exec(schema)
	return err
}

// Save appends one evaluation to the history.
func (s *Store) Save(ctx context.Context, ev *types.Evaluation) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode evaluation: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO evaluations (repo_full_name, total_score, rating, evaluated_at, result)
		 VALUES (?, ?, ?, ?, ?)`,
		ev.RepoFullName, ev.TotalScore, ev.Rating, ev.EvaluatedAt, string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to save evaluation: %w", err)
	}
	return nil
}

// Recent returns the newest evaluations of one repository, newest first.
func (s *Store) Recent(ctx context.Context, repoFullName string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, repo_full_name, total_score, rating, evaluated_at, result
		 FROM evaluations
		 WHERE repo_full_name = ?
		 ORDER BY evaluated_at DESC
		 LIMIT ?`,
		repoFullName, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.RepoFullName, &r.TotalScore, &r.Rating, &r.EvaluatedAt, &r.Result); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
