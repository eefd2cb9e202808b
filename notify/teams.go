// Package notify posts pipeline status messages to a Microsoft Teams
// incoming webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

// TeamsNotifier posts MessageCard payloads to a Teams webhook.
type TeamsNotifier struct {
	webhookURL string
	httpClient *http.Client
}

// NewTeams creates a TeamsNotifier. The webhook URL comes from
// TEAMS_WEBHOOK_URL; an empty URL makes every Notify a logged no-op.
func NewTeams() *TeamsNotifier {
	return &TeamsNotifier{
		webhookURL: os.Getenv("TEAMS_WEBHOOK_URL"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithWebhookURL overrides the webhook endpoint. Used in tests.
func (n *TeamsNotifier) WithWebhookURL(u string) *TeamsNotifier {
	n.webhookURL = u
	return n
}

// Notify sends one message under the given title.
func (n *TeamsNotifier) Notify(ctx context.Context, title, message string) error {
	if n.webhookURL == "" {
		log.Printf("[notify] TEAMS_WEBHOOK_URL not set, skipping: %s", title)
		return nil
	}

	payload := map[string]any{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": "0076D7",
		"summary":    title,
		"sections": []map[string]any{
			{"activityTitle": title, "text": message},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("teams webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("teams webhook HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	log.Printf("[notify] ✅ sent: %s", title)
	return nil
}
