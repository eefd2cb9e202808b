package store

import (
	"database/sql"
	"time"
)

// MetricStore records per-agent LLM token usage so spend can be audited
// across runs.
type MetricStore struct {
	db *sql.DB
}

// Record appends one usage row.
func (s *MetricStore) Record(agent, model string, inputTokens, outputTokens int) error {
	_, err := s.db.Exec(`
		INSERT INTO metrics (agent, model, input_tokens, output_tokens, recorded_at)
		VALUES (?, ?, ?, ?, ?)`,
		agent, model, inputTokens, outputTokens, time.Now(),
	)
	return err
}

// UsageTotal aggregates token usage for one agent.
type UsageTotal struct {
	Agent        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// Totals sums usage per agent since the given time.
func (s *MetricStore) Totals(since time.Time) ([]UsageTotal, error) {
	rows, err := s.db.Query(`
		SELECT agent, COUNT(*), SUM(input_tokens), SUM(output_tokens)
		FROM metrics WHERE recorded_at >= ?
		GROUP BY agent ORDER BY agent`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []UsageTotal
	for rows.Next() {
		var t UsageTotal
		if err := rows.Scan(&t.Agent, &t.Calls, &t.InputTokens, &t.OutputTokens); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
