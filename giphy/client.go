// Package giphy searches and downloads GIFs that illustrate script
// segment keywords.
package giphy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.giphy.com"

// Client talks to the Giphy API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// GIF is one search hit with a downloadable original rendition.
type GIF struct {
	ID    string
	Title string
	URL   string
}

// NewClient creates a Client. The API key comes from GIPHY_API_KEY.
func NewClient() *Client {
	return &Client{
		apiKey:     os.Getenv("GIPHY_API_KEY"),
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// WithBaseURL overrides the API endpoint. Used in tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

// Search returns up to limit GIFs matching the query. Hits without an
// original rendition URL are dropped.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]GIF, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("GIPHY_API_KEY is not set")
	}
	if limit <= 0 {
		limit = 1
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("rating", "pg-13")
	params.Set("lang", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/gifs/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("giphy HTTP %d", resp.StatusCode)
	}

	var parsed struct {
		Data []struct {
			ID     string `json:"id"`
			Title  string `json:"title"`
			Images struct {
				Original struct {
					URL string `json:"url"`
				} `json:"original"`
			} `json:"images"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode giphy response: %w", err)
	}

	var gifs []GIF
	for _, d := range parsed.Data {
		if d.Images.Original.URL == "" {
			continue
		}
		gifs = append(gifs, GIF{ID: d.ID, Title: d.Title, URL: d.Images.Original.URL})
	}
	return gifs, nil
}

// FetchForKeywords searches each keyword and downloads perKeyword GIFs
// into outputDir with sequential names (001.gif, 002.gif, ...) so the
// compositor's lexicographic ordering matches keyword order. Keywords
// with no usable hits are skipped; an error is returned only when no
// GIF at all could be fetched.
func (c *Client) FetchForKeywords(ctx context.Context, keywords []string, perKeyword int, outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create gif dir: %w", err)
	}

	var files []string
	seq := 0
	for _, keyword := range keywords {
		gifs, err := c.Search(ctx, keyword, perKeyword)
		if err != nil {
			log.Printf("[giphy] search failed for %q: %v", keyword, err)
			continue
		}
		if len(gifs) == 0 {
			log.Printf("[giphy] no results for %q", keyword)
			continue
		}

		for _, gif := range gifs {
			seq++
			outFile := filepath.Join(outputDir, fmt.Sprintf("%03d.gif", seq))
			if err := c.download(ctx, gif.URL, outFile); err != nil {
				log.Printf("[giphy] download failed for %q: %v", keyword, err)
				seq--
				continue
			}
			files = append(files, outFile)
			log.Printf("[giphy] ✅ %q → %s", keyword, outFile)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no GIFs fetched for keywords %v", keywords)
	}
	return files, nil
}

// download retries up to 3 times. Giphy's CDN occasionally resets
// connections mid-transfer.
func (c *Client) download(ctx context.Context, gifURL, outFile string) error {
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		err = c.downloadOnce(ctx, gifURL, outFile)
		if err == nil {
			return nil
		}
		if attempt < 3 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}
	return fmt.Errorf("download failed after 3 attempts: %w", err)
}

func (c *Client) downloadOnce(ctx context.Context, gifURL, outFile string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, gifURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(data) < 100 {
		return fmt.Errorf("response too small (%d bytes), not a GIF", len(data))
	}

	return os.WriteFile(outFile, data, 0644)
}
