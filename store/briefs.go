package store

import (
	"database/sql"
	"encoding/json"

	"comedy-pipeline/types"
)

// BriefStore holds the debriefer's satirical analyses.
type BriefStore struct {
	db *sql.DB
}

// Save upserts a brief keyed by article URL.
func (s *BriefStore) Save(brief types.Brief) error {
	analysis, err := json.Marshal(brief)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO briefs (url, title, analysis, analyzed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			analysis = excluded.analysis,
			analyzed_at = excluded.analyzed_at`,
		brief.URL, brief.Title, string(analysis), brief.AnalyzedAt,
	)
	return err
}

// Recent returns the newest briefs, most recently analyzed first.
func (s *BriefStore) Recent(limit int) ([]types.Brief, error) {
	rows, err := s.db.Query(
		"SELECT analysis FROM briefs ORDER BY analyzed_at DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var briefs []types.Brief
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var b types.Brief
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			return nil, err
		}
		briefs = append(briefs, b)
	}
	return briefs, rows.Err()
}
