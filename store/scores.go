package store

import (
	"database/sql"
	"errors"
	"time"

	"comedy-pipeline/types"
)

// ScoreStore caches LLM comedy scores by article URL so re-runs within the
// freshness window never pay for the same article twice.
type ScoreStore struct {
	db *sql.DB
}

// Get returns the cached score for url if one exists and is younger than
// maxAge. A cache miss returns (nil, nil).
func (s *ScoreStore) Get(url string, maxAge time.Duration) (*types.ArticleScore, error) {
	cutoff := time.Now().Add(-maxAge)

	var score types.ArticleScore
	err := s.db.QueryRow(
		"SELECT score, reason FROM scores WHERE url = ? AND cached_at > ?",
		url, cutoff,
	).Scan(&score.Score, &score.Reason)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &score, nil
}

// Save caches a score, replacing any previous entry for the URL.
func (s *ScoreStore) Save(url, title string, score types.ArticleScore) error {
	_, err := s.db.Exec(`
		INSERT INTO scores (url, title, score, reason, cached_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			score = excluded.score,
			reason = excluded.reason,
			cached_at = excluded.cached_at`,
		url, title, score.Score, score.Reason, time.Now(),
	)
	return err
}

// CleanupExpired deletes entries older than maxAge and reports how many
// rows were removed.
func (s *ScoreStore) CleanupExpired(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)
	res, err := s.db.Exec("DELETE FROM scores WHERE cached_at <= ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ScoreRow is one cached score with its article identity.
type ScoreRow struct {
	URL    string
	Title  string
	Score  int
	Reason string
}

// List returns fresh cached scores, highest first.
func (s *ScoreStore) List(maxAge time.Duration, limit int) ([]ScoreRow, error) {
	cutoff := time.Now().Add(-maxAge)
	rows, err := s.db.Query(
		"SELECT url, title, score, reason FROM scores WHERE cached_at > ? ORDER BY score DESC LIMIT ?",
		cutoff, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScoreRow
	for rows.Next() {
		var r ScoreRow
		if err := rows.Scan(&r.URL, &r.Title, &r.Score, &r.Reason); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
