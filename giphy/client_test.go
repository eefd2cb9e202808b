package giphy

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gifBytes = append([]byte("GIF89a"), make([]byte, 512)...)

// newTestClient serves both the search API and the "CDN" downloads from
// one httptest server.
func newTestClient(t *testing.T, results map[string][]string) (*Client, *int) {
	t.Helper()

	downloads := 0
	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/v1/gifs/search", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		q := r.URL.Query().Get("q")

		fmt.Fprint(w, `{"data": [`)
		for i, id := range results[q] {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"id": %q, "title": %q, "images": {"original": {"url": "%s/media/%s.gif"}}}`,
				id, id, srv.URL, id)
		}
		fmt.Fprint(w, `]}`)
	})
	mux.HandleFunc("/media/", func(w http.ResponseWriter, r *http.Request) {
		downloads++
		w.Write(gifBytes)
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewClient().WithBaseURL(srv.URL)
	c.apiKey = "test-key"
	return c, &downloads
}

func TestSearch(t *testing.T) {
	c, _ := newTestClient(t, map[string][]string{
		"robot office": {"abc123", "def456"},
	})

	gifs, err := c.Search(context.Background(), "robot office", 5)
	require.NoError(t, err)
	require.Len(t, gifs, 2)
	assert.Equal(t, "abc123", gifs[0].ID)
	assert.Contains(t, gifs[0].URL, "abc123.gif")
}

func TestSearchMissingKey(t *testing.T) {
	c := NewClient()
	c.apiKey = ""

	_, err := c.Search(context.Background(), "anything", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GIPHY_API_KEY")
}

func TestFetchForKeywordsSequentialNames(t *testing.T) {
	c, downloads := newTestClient(t, map[string][]string{
		"robot":  {"g1"},
		"office": {"g2"},
	})

	dir := t.TempDir()
	files, err := c.FetchForKeywords(context.Background(), []string{"robot", "office"}, 1, dir)
	require.NoError(t, err)

	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(dir, "001.gif"), files[0])
	assert.Equal(t, filepath.Join(dir, "002.gif"), files[1])
	assert.Equal(t, 2, *downloads)

	for _, f := range files {
		data, err := os.ReadFile(f)
		require.NoError(t, err)
		assert.Equal(t, gifBytes, data)
	}
}

func TestFetchForKeywordsSkipsEmptyResults(t *testing.T) {
	c, _ := newTestClient(t, map[string][]string{
		"hit": {"g1"},
		// "miss" returns no results
	})

	dir := t.TempDir()
	files, err := c.FetchForKeywords(context.Background(), []string{"miss", "hit"}, 1, dir)
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "001.gif"), files[0])
}

func TestFetchForKeywordsAllMiss(t *testing.T) {
	c, _ := newTestClient(t, map[string][]string{})

	_, err := c.FetchForKeywords(context.Background(), []string{"nothing"}, 1, t.TempDir())
	require.Error(t, err)
}
