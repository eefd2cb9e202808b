// Package store persists article scores, briefs, comedy scripts and LLM
// usage metrics in a local SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS scores (
	url        TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	score      INTEGER NOT NULL,
	reason     TEXT NOT NULL,
	cached_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scores_cached_at ON scores(cached_at);

CREATE TABLE IF NOT EXISTS briefs (
	url         TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	analysis    TEXT NOT NULL,
	analyzed_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_briefs_analyzed_at ON briefs(analyzed_at);

CREATE TABLE IF NOT EXISTS scripts (
	id              TEXT PRIMARY KEY,
	title           TEXT NOT NULL,
	data            TEXT NOT NULL,
	source_articles TEXT NOT NULL,
	article_count   INTEGER NOT NULL,
	generated_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS metrics (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	agent         TEXT NOT NULL,
	model         TEXT NOT NULL,
	input_tokens  INTEGER NOT NULL,
	output_tokens INTEGER NOT NULL,
	recorded_at   TIMESTAMP NOT NULL
);
`

// Store wraps the SQLite connection shared by all repositories.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. The parent directory is created on demand.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Scores returns the article score cache.
func (s *Store) Scores() *ScoreStore { return &ScoreStore{db: s.db} }

// Briefs returns the analyzed-brief repository.
func (s *Store) Briefs() *BriefStore { return &BriefStore{db: s.db} }

// Scripts returns the comedy-script repository.
func (s *Store) Scripts() *ScriptStore { return &ScriptStore{db: s.db} }

// Metrics returns the LLM usage metrics sink.
func (s *Store) Metrics() *MetricStore { return &MetricStore{db: s.db} }
