package store

import (
	"path/filepath"
	"testing"
	"time"

	"comedy-pipeline/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestScoreCacheRoundTrip(t *testing.T) {
	s := openTestStore(t)
	scores := s.Scores()

	got, err := scores.Get("https://a/1", 7*24*time.Hour)
	require.NoError(t, err)
	assert.Nil(t, got, "cache miss must return nil, nil")

	want := types.ArticleScore{Score: 8, Reason: "robot unionizes"}
	require.NoError(t, scores.Save("https://a/1", "Robot unionizes", want))

	got, err = scores.Get("https://a/1", 7*24*time.Hour)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestScoreCacheUpsert(t *testing.T) {
	s := openTestStore(t)
	scores := s.Scores()

	require.NoError(t, scores.Save("https://a/1", "t", types.ArticleScore{Score: 3, Reason: "meh"}))
	require.NoError(t, scores.Save("https://a/1", "t", types.ArticleScore{Score: 9, Reason: "actually great"}))

	got, err := scores.Get("https://a/1", time.Hour)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 9, got.Score)
}

func TestScoreCacheExpiry(t *testing.T) {
	s := openTestStore(t)
	scores := s.Scores()

	require.NoError(t, scores.Save("https://a/1", "t", types.ArticleScore{Score: 5, Reason: "ok"}))

	// A zero freshness window makes everything stale.
	got, err := scores.Get("https://a/1", 0)
	require.NoError(t, err)
	assert.Nil(t, got)

	removed, err := scores.CleanupExpired(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestScoreList(t *testing.T) {
	s := openTestStore(t)
	scores := s.Scores()

	require.NoError(t, scores.Save("https://a/1", "low", types.ArticleScore{Score: 2, Reason: "r"}))
	require.NoError(t, scores.Save("https://a/2", "high", types.ArticleScore{Score: 9, Reason: "r"}))

	rows, err := scores.List(time.Hour, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "high", rows[0].Title, "highest score first")
}

func TestBriefStore(t *testing.T) {
	s := openTestStore(t)
	briefs := s.Briefs()

	older := types.Brief{
		URL: "https://a/1", Title: "first",
		Summary:    "an AI did a thing",
		AnalyzedAt: time.Now().Add(-time.Hour),
	}
	newer := types.Brief{
		URL: "https://a/2", Title: "second",
		Summary:       "another AI did another thing",
		ComedicAngles: []string{"hubris", "irony"},
		AnalyzedAt:    time.Now(),
	}
	require.NoError(t, briefs.Save(older))
	require.NoError(t, briefs.Save(newer))

	got, err := briefs.Recent(5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Title, "newest first")
	assert.Equal(t, []string{"hubris", "irony"}, got[0].ComedicAngles)

	got, err = briefs.Recent(1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestScriptStore(t *testing.T) {
	s := openTestStore(t)
	scripts := s.Scripts()

	script := types.ComedyScript{
		Title:       "The Algorithm Wants a Raise",
		Description: "satire",
		Tags:        []string{"AI", "Tech"},
		Segments: []types.SpeechSegment{
			{Text: "So an AI walks into a standup meeting...", Keywords: []string{"robot", "office"}},
		},
		SourceArticles: []string{"https://a/1", "https://a/2"},
	}

	id, err := scripts.Save(script)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := scripts.Get(id)
	require.NoError(t, err)
	assert.Equal(t, script.Title, got.Title)
	assert.Equal(t, 2, got.ArticleCount)
	require.Len(t, got.Segments, 1)
	assert.Equal(t, []string{"robot", "office"}, got.Segments[0].Keywords)

	latest, err := scripts.Latest()
	require.NoError(t, err)
	assert.Equal(t, id, latest.ID)

	_, err = scripts.Get("no-such-id")
	assert.Error(t, err)
}

func TestMetricStore(t *testing.T) {
	s := openTestStore(t)
	metrics := s.Metrics()

	require.NoError(t, metrics.Record("scout", "claude-3-7-sonnet-20250219", 100, 20))
	require.NoError(t, metrics.Record("scout", "claude-3-7-sonnet-20250219", 50, 10))
	require.NoError(t, metrics.Record("satirist", "claude-3-5-sonnet-20241022", 400, 300))

	totals, err := metrics.Totals(time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, totals, 2)

	assert.Equal(t, "satirist", totals[0].Agent)
	assert.Equal(t, 1, totals[0].Calls)
	assert.Equal(t, "scout", totals[1].Agent)
	assert.Equal(t, 2, totals[1].Calls)
	assert.Equal(t, 150, totals[1].InputTokens)
	assert.Equal(t, 30, totals[1].OutputTokens)
}
