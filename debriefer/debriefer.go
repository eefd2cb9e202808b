// Package debriefer turns top-scored articles into briefs: the full text
// is fetched from the source page and handed to the LLM for a satirical
// analysis the script writer can work from.
package debriefer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"comedy-pipeline/config"
	"comedy-pipeline/llm"
	"comedy-pipeline/store"
	"comedy-pipeline/types"
)

const analyzeSystemPrompt = `You are a comedy researcher preparing briefs for satirical news writers.
Given a full news article, produce an analysis a comedian can riff on.

Respond with ONLY valid JSON, no markdown, no explanation:
{
  "summary": "<2-3 sentence factual summary>",
  "comedic_angles": ["<angle 1>", "<angle 2>", ...],
  "key_facts": ["<fact worth quoting>", ...]
}`

// ContentFetcher is the slice of the news client the debriefer needs.
type ContentFetcher interface {
	FetchArticleContent(ctx context.Context, url string) (string, error)
}

// Debriefer analyzes articles into briefs.
type Debriefer struct {
	cfg     *config.Config
	llm     Completer
	fetcher ContentFetcher
	briefs  *store.BriefStore
	metrics *store.MetricStore
}

// Completer is the slice of the LLM client the debriefer needs.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, llm.Usage, error)
}

// New creates a Debriefer. metrics may be nil.
func New(cfg *config.Config, completer Completer, fetcher ContentFetcher, briefs *store.BriefStore, metrics *store.MetricStore) *Debriefer {
	return &Debriefer{
		cfg:     cfg,
		llm:     completer,
		fetcher: fetcher,
		briefs:  briefs,
		metrics: metrics,
	}
}

// ProcessArticles fetches full content for each article and analyzes it.
// Articles whose content cannot be fetched or analyzed are skipped; the
// batch continues. Every produced brief is persisted before returning.
func (d *Debriefer) ProcessArticles(ctx context.Context, articles []types.Article) ([]types.Brief, error) {
	var briefs []types.Brief

	for _, article := range articles {
		if article.URL == "" {
			log.Printf("[debriefer] skipping article with no URL: %q", article.Title)
			continue
		}

		content, err := d.fetcher.FetchArticleContent(ctx, article.URL)
		if err != nil || content == "" {
			log.Printf("[debriefer] could not fetch content for %s: %v", article.URL, err)
			continue
		}
		article.Content = content

		brief, err := d.AnalyzeArticle(ctx, article)
		if err != nil {
			log.Printf("[debriefer] analysis failed for %q: %v", article.Title, err)
			continue
		}

		if err := d.briefs.Save(*brief); err != nil {
			log.Printf("[debriefer] store warning for %s: %v", brief.URL, err)
		}
		briefs = append(briefs, *brief)
		log.Printf("[debriefer] ✅ analyzed %q", article.Title)
	}

	if len(briefs) == 0 {
		return nil, fmt.Errorf("no articles could be analyzed")
	}
	return briefs, nil
}

// AnalyzeArticle runs the LLM analysis on one article with full content.
func (d *Debriefer) AnalyzeArticle(ctx context.Context, article types.Article) (*types.Brief, error) {
	user := fmt.Sprintf("TITLE: %s\nSOURCE: %s (%s)\n\nARTICLE:\n%s",
		article.Title, article.Source, article.URL, article.Content)

	reply, usage, err := d.llm.Complete(ctx, llm.Request{
		Model:       d.cfg.Scout.Model,
		System:      analyzeSystemPrompt,
		User:        user,
		Temperature: d.cfg.Scout.Temperature,
		MaxTokens:   1024,
	})
	if err != nil {
		return nil, fmt.Errorf("llm analysis: %w", err)
	}
	d.recordUsage(usage)

	var parsed struct {
		Summary       string   `json:"summary"`
		ComedicAngles []string `json:"comedic_angles"`
		KeyFacts      []string `json:"key_facts"`
	}
	if err := json.Unmarshal([]byte(llm.CleanJSON(reply)), &parsed); err != nil {
		return nil, fmt.Errorf("parse analysis JSON: %w", err)
	}
	if parsed.Summary == "" {
		return nil, fmt.Errorf("analysis returned no summary")
	}

	return &types.Brief{
		URL:           article.URL,
		Title:         article.Title,
		Summary:       parsed.Summary,
		ComedicAngles: parsed.ComedicAngles,
		KeyFacts:      parsed.KeyFacts,
		AnalyzedAt:    time.Now(),
	}, nil
}

func (d *Debriefer) recordUsage(usage llm.Usage) {
	if d.metrics == nil {
		return
	}
	if err := d.metrics.Record("debriefer", d.cfg.Scout.Model, usage.InputTokens, usage.OutputTokens); err != nil {
		log.Printf("[debriefer] metrics warning: %v", err)
	}
}
