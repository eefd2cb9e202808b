// Package llm is a minimal client for the Anthropic Messages API. Agents
// send a system prompt plus one user prompt and get back the model's text
// along with token usage.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	maxAttempts    = 3
)

// Client calls the Anthropic Messages API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New creates a Client. The API key comes from the caller (loaded from env
// by the command layer).
func New(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// WithBaseURL points the client at a different endpoint. Used in tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

// Request is one completion call.
type Request struct {
	Model       string
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Usage reports token consumption for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

type apiRequest struct {
	Model       string       `json:"model"`
	MaxTokens   int          `json:"max_tokens"`
	Temperature float64      `json:"temperature"`
	System      string       `json:"system,omitempty"`
	Messages    []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the request and returns the model's text reply. Transient
// failures are retried up to three times with linear backoff.
func (c *Client) Complete(ctx context.Context, req Request) (string, Usage, error) {
	if c.apiKey == "" {
		return "", Usage{}, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 4096
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, usage, err := c.complete(ctx, req)
		if err == nil {
			return text, usage, nil
		}
		lastErr = err
		var perm *apiError
		if errors.As(err, &perm) {
			// The API rejected the request; retrying won't help.
			return "", Usage{}, err
		}
		if ctx.Err() != nil {
			return "", Usage{}, ctx.Err()
		}
		if attempt < maxAttempts {
			log.Printf("[llm] attempt %d failed: %v — retrying...", attempt, err)
			time.Sleep(time.Duration(attempt) * 2 * time.Second)
		}
	}
	return "", Usage{}, fmt.Errorf("llm request failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) complete(ctx context.Context, req Request) (string, Usage, error) {
	body := apiRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		System:      req.System,
		Messages:    []apiMessage{{Role: "user", Content: req.User}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", Usage{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", Usage{}, err
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", Usage{}, fmt.Errorf("anthropic request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Usage{}, err
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", Usage{}, fmt.Errorf("parse anthropic response: %w", err)
	}

	if parsed.Error != nil {
		return "", Usage{}, &apiError{kind: parsed.Error.Type, message: parsed.Error.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return "", Usage{}, fmt.Errorf("anthropic HTTP %d", resp.StatusCode)
	}

	var sb strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", Usage{}, fmt.Errorf("anthropic returned no text content")
	}

	usage := Usage{
		InputTokens:  parsed.Usage.InputTokens,
		OutputTokens: parsed.Usage.OutputTokens,
	}
	return sb.String(), usage, nil
}

// apiError is an error reported by the API itself, as opposed to a
// transport failure. These are not retried.
type apiError struct {
	kind    string
	message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("anthropic error (%s): %s", e.kind, e.message)
}

// CleanJSON strips markdown fences when the model wraps its reply in
// ```json ... ```.
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
