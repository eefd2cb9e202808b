package scout

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"comedy-pipeline/config"
	"comedy-pipeline/llm"
	"comedy-pipeline/store"
	"comedy-pipeline/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompleter returns canned replies per article title and counts calls.
type fakeCompleter struct {
	replies map[string]string
	err     error
	calls   int
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.Request) (string, llm.Usage, error) {
	f.calls++
	if f.err != nil {
		return "", llm.Usage{}, f.err
	}
	for title, reply := range f.replies {
		if strings.Contains(req.User, title) {
			return reply, llm.Usage{InputTokens: 10, OutputTokens: 5}, nil
		}
	}
	return `{"score": 1, "reason": "default"}`, llm.Usage{}, nil
}

func newTestScorer(t *testing.T, completer Completer) (*Scorer, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := config.Default()
	cfg.Scout.Subreddits = nil // no network in tests
	return New(cfg, completer, nil, st.Scores(), st.Metrics()), st
}

func TestScoreArticlesSortedByScore(t *testing.T) {
	fake := &fakeCompleter{replies: map[string]string{
		"Dull earnings report":  `{"score": 1, "reason": "no comedy here"}`,
		"AI demands a corner office": `{"score": 9, "reason": "pure hubris"}`,
		"Chatbot sued by itself":     `{"score": 7, "reason": "legal absurdity"}`,
	}}
	scorer, _ := newTestScorer(t, fake)

	articles := []types.Article{
		{Title: "Dull earnings report", Description: "d", URL: "https://a/1"},
		{Title: "AI demands a corner office", Description: "d", URL: "https://a/2"},
		{Title: "Chatbot sued by itself", Description: "d", URL: "https://a/3"},
	}

	scored := scorer.ScoreArticles(context.Background(), articles)

	require.Len(t, scored, 3)
	assert.Equal(t, 9, scored[0].Score.Score)
	assert.Equal(t, "AI demands a corner office", scored[0].Article.Title)
	assert.Equal(t, 7, scored[1].Score.Score)
	assert.Equal(t, 1, scored[2].Score.Score)
}

func TestScoreArticlesServesFromCache(t *testing.T) {
	fake := &fakeCompleter{replies: map[string]string{
		"Robot tax revolt": `{"score": 6, "reason": "funny enough"}`,
	}}
	scorer, _ := newTestScorer(t, fake)

	articles := []types.Article{
		{Title: "Robot tax revolt", Description: "d", URL: "https://a/1"},
	}

	first := scorer.ScoreArticles(context.Background(), articles)
	require.Len(t, first, 1)
	assert.Equal(t, 1, fake.calls)

	second := scorer.ScoreArticles(context.Background(), articles)
	require.Len(t, second, 1)
	assert.Equal(t, 1, fake.calls, "second run must hit the cache, not the LLM")
	assert.Equal(t, first[0].Score, second[0].Score)
}

func TestScoreArticlesSkipsIncomplete(t *testing.T) {
	fake := &fakeCompleter{}
	scorer, _ := newTestScorer(t, fake)

	articles := []types.Article{
		{Title: "", Description: "d", URL: "https://a/1"},
		{Title: "t", Description: "", URL: "https://a/2"},
		{Title: "t", Description: "d", URL: ""},
	}

	scored := scorer.ScoreArticles(context.Background(), articles)
	assert.Empty(t, scored)
	assert.Equal(t, 0, fake.calls)
}

func TestScoreArticlesDegradesOnLLMFailure(t *testing.T) {
	fake := &fakeCompleter{err: assert.AnError}
	scorer, _ := newTestScorer(t, fake)

	scored := scorer.ScoreArticles(context.Background(), []types.Article{
		{Title: "t", Description: "d", URL: "https://a/1"},
	})

	require.Len(t, scored, 1)
	assert.Equal(t, 0, scored[0].Score.Score)
	assert.Contains(t, scored[0].Score.Reason, "error in scoring")
}

func TestScoreArticlesClampsRange(t *testing.T) {
	fake := &fakeCompleter{replies: map[string]string{
		"Over the top": `{"score": 14, "reason": "model got excited"}`,
	}}
	scorer, _ := newTestScorer(t, fake)

	scored := scorer.ScoreArticles(context.Background(), []types.Article{
		{Title: "Over the top", Description: "d", URL: "https://a/1"},
	})

	require.Len(t, scored, 1)
	assert.Equal(t, 10, scored[0].Score.Score)
}

func TestScoreArticlesRecordsUsage(t *testing.T) {
	fake := &fakeCompleter{replies: map[string]string{
		"Tracked": `{"score": 5, "reason": "fine"}`,
	}}
	scorer, st := newTestScorer(t, fake)

	scorer.ScoreArticles(context.Background(), []types.Article{
		{Title: "Tracked", Description: "d", URL: "https://a/1"},
	})

	totals, err := st.Metrics().Totals(time.Time{})
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, "scout", totals[0].Agent)
	assert.Equal(t, 10, totals[0].InputTokens)
}
