package satirist

import (
	"context"
	"path/filepath"
	"testing"

	"comedy-pipeline/config"
	"comedy-pipeline/llm"
	"comedy-pipeline/store"
	"comedy-pipeline/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	reply    string
	err      error
	lastUser string
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.Request) (string, llm.Usage, error) {
	f.lastUser = req.User
	if f.err != nil {
		return "", llm.Usage{}, f.err
	}
	return f.reply, llm.Usage{InputTokens: 500, OutputTokens: 300}, nil
}

const goodScript = `{
	"title": "AI Week in Review: Everything Is Fine",
	"description": "The machines are coming for middle management.",
	"tags": ["ai", "tech", "satire"],
	"segments": [
		{"text": "An AI was promoted to VP this week.", "keywords": ["robot office", "promotion"]},
		{"text": "It immediately scheduled a meeting that could have been an email.", "keywords": ["boring meeting"]}
	]
}`

func testBriefs() []types.Brief {
	return []types.Brief{
		{
			URL:           "https://a/1",
			Title:         "AI promoted to VP",
			Summary:       "A company made its chatbot a vice president.",
			ComedicAngles: []string{"corporate absurdity"},
			KeyFacts:      []string{"chatbot got a corner office"},
		},
	}
}

func newTestSatirist(t *testing.T, completer Completer) (*Satirist, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(config.Default(), completer, st.Scripts(), st.Metrics()), st
}

func TestGenerateScript(t *testing.T) {
	fake := &fakeCompleter{reply: goodScript}
	s, st := newTestSatirist(t, fake)

	script, err := s.GenerateScript(context.Background(), testBriefs())
	require.NoError(t, err)

	assert.NotEmpty(t, script.ID)
	assert.Equal(t, "AI Week in Review: Everything Is Fine", script.Title)
	require.Len(t, script.Segments, 2)
	assert.Equal(t, []string{"robot office", "promotion"}, script.Segments[0].Keywords)
	assert.Equal(t, []string{"https://a/1"}, script.SourceArticles)
	assert.Equal(t, 1, script.ArticleCount)
	assert.False(t, script.GeneratedAt.IsZero())

	// Brief content must reach the prompt.
	assert.Contains(t, fake.lastUser, "AI promoted to VP")
	assert.Contains(t, fake.lastUser, "corporate absurdity")

	// And the script must be persisted under its ID.
	stored, err := st.Scripts().Get(script.ID)
	require.NoError(t, err)
	assert.Equal(t, script.Title, stored.Title)
}

func TestGenerateScriptNoBriefs(t *testing.T) {
	s, _ := newTestSatirist(t, &fakeCompleter{reply: goodScript})

	_, err := s.GenerateScript(context.Background(), nil)
	require.Error(t, err)
}

func TestGenerateScriptFencedJSON(t *testing.T) {
	fake := &fakeCompleter{reply: "```json\n" + goodScript + "\n```"}
	s, _ := newTestSatirist(t, fake)

	script, err := s.GenerateScript(context.Background(), testBriefs())
	require.NoError(t, err)
	assert.Len(t, script.Segments, 2)
}

func TestGenerateScriptRejectsMissingKeywords(t *testing.T) {
	fake := &fakeCompleter{reply: `{
		"title": "t",
		"segments": [{"text": "a joke with no visuals", "keywords": []}]
	}`}
	s, _ := newTestSatirist(t, fake)

	_, err := s.GenerateScript(context.Background(), testBriefs())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keywords")
}

func TestGenerateScriptRejectsEmptyScript(t *testing.T) {
	fake := &fakeCompleter{reply: `{"title": "t", "segments": []}`}
	s, _ := newTestSatirist(t, fake)

	_, err := s.GenerateScript(context.Background(), testBriefs())
	require.Error(t, err)
}

func TestGenerateScriptLLMFailure(t *testing.T) {
	fake := &fakeCompleter{err: assert.AnError}
	s, _ := newTestSatirist(t, fake)

	_, err := s.GenerateScript(context.Background(), testBriefs())
	require.Error(t, err)
}
