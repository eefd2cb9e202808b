package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"comedy-pipeline/types"

	"github.com/google/uuid"
)

// ScriptStore holds generated comedy scripts.
type ScriptStore struct {
	db *sql.DB
}

// Save stores a script and returns its ID, assigning one when missing.
func (s *ScriptStore) Save(script types.ComedyScript) (string, error) {
	if script.ID == "" {
		script.ID = uuid.NewString()
	}
	if script.GeneratedAt.IsZero() {
		script.GeneratedAt = time.Now()
	}
	script.ArticleCount = len(script.SourceArticles)

	data, err := json.Marshal(script)
	if err != nil {
		return "", err
	}
	sources, err := json.Marshal(script.SourceArticles)
	if err != nil {
		return "", err
	}

	_, err = s.db.Exec(`
		INSERT INTO scripts (id, title, data, source_articles, article_count, generated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		script.ID, script.Title, string(data), string(sources),
		script.ArticleCount, script.GeneratedAt,
	)
	if err != nil {
		return "", err
	}
	return script.ID, nil
}

// Get loads one script by ID.
func (s *ScriptStore) Get(id string) (*types.ComedyScript, error) {
	var raw string
	err := s.db.QueryRow("SELECT data FROM scripts WHERE id = ?", id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("script %s not found", id)
	}
	if err != nil {
		return nil, err
	}

	var script types.ComedyScript
	if err := json.Unmarshal([]byte(raw), &script); err != nil {
		return nil, err
	}
	return &script, nil
}

// Latest returns the most recently generated script.
func (s *ScriptStore) Latest() (*types.ComedyScript, error) {
	var raw string
	err := s.db.QueryRow("SELECT data FROM scripts ORDER BY generated_at DESC LIMIT 1").Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no scripts stored yet")
	}
	if err != nil {
		return nil, err
	}

	var script types.ComedyScript
	if err := json.Unmarshal([]byte(raw), &script); err != nil {
		return nil, err
	}
	return &script, nil
}
