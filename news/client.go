// Package news wraps the NewsAPI /v2/everything endpoint and fetches full
// article text for downstream analysis.
package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"comedy-pipeline/types"
)

const (
	defaultBaseURL = "https://newsapi.org/v2"
	maxPageSize    = 100
	maxAttempts    = 3
	userAgent      = "AINewsBot/1.0"
)

// Client is a low-level NewsAPI client.
type Client struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	skipDomains []string
}

// New creates a Client. skipDomains are excluded from every search
// (paywalled or aggregator sites that yield unusable content).
func New(apiKey string, skipDomains []string) *Client {
	return &Client{
		apiKey:      apiKey,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: 20 * time.Second},
		skipDomains: skipDomains,
	}
}

// WithBaseURL points the client at a different endpoint. Used in tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

// Query describes one /everything search.
type Query struct {
	Query      string
	PageSize   int
	Language   string
	SortBy     string
	DaysInPast int
}

type apiResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Everything searches news articles, newest window first. Transient
// failures are retried with backoff.
func (c *Client) Everything(ctx context.Context, q Query) ([]types.Article, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("NEWS_API_KEY not set")
	}

	pageSize := q.PageSize
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	params := url.Values{}
	params.Set("q", q.Query)
	params.Set("pageSize", fmt.Sprintf("%d", pageSize))
	if q.Language != "" {
		params.Set("language", q.Language)
	}
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	if q.DaysInPast > 0 {
		from := time.Now().AddDate(0, 0, -q.DaysInPast).Format("2006-01-02")
		params.Set("from", from)
	}
	if len(c.skipDomains) > 0 {
		params.Set("excludeDomains", strings.Join(c.skipDomains, ","))
	}

	reqURL := fmt.Sprintf("%s/everything?%s", c.baseURL, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		articles, err := c.fetch(ctx, reqURL)
		if err == nil {
			return articles, nil
		}
		lastErr = err
		var perm *apiError
		if errors.As(err, &perm) {
			// NewsAPI rejected the request; retrying won't help.
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt < maxAttempts {
			log.Printf("[news] attempt %d failed: %v — retrying...", attempt, err)
			time.Sleep(time.Duration(attempt*attempt) * time.Second)
		}
	}
	return nil, fmt.Errorf("newsapi request failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) fetch(ctx context.Context, reqURL string) ([]types.Article, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse newsapi response: %w", err)
	}

	if parsed.Status != "ok" {
		return nil, &apiError{code: parsed.Code, message: parsed.Message}
	}

	var articles []types.Article
	for _, a := range parsed.Articles {
		if a.Title == "" || a.Title == "[Removed]" {
			continue
		}
		articles = append(articles, types.Article{
			Title:       a.Title,
			Description: a.Description,
			Content:     a.Content,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
		})
	}
	return articles, nil
}

// apiError is an error reported by NewsAPI itself, as opposed to a
// transport failure.
type apiError struct {
	code    string
	message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("newsapi error %s: %s", e.code, e.message)
}

// FetchArticleContent downloads an article page and extracts its readable
// text. Returns an empty string (no error) when the page yields nothing
// usable, so callers can skip the article.
func (c *Client) FetchArticleContent(ctx context.Context, articleURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", articleURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; AINewsBot/1.0)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, articleURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return "", err
	}

	return ExtractText(string(body)), nil
}
