// Package satirist writes the comedy script. It takes the debriefer's
// briefs and asks the LLM for a structured script: a title, description,
// topic tags, and a handful of short spoken segments, each with visual
// keywords that drive the GIF search.
package satirist

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"comedy-pipeline/config"
	"comedy-pipeline/llm"
	"comedy-pipeline/store"
	"comedy-pipeline/types"
)

const scriptSystemPrompt = `You are a satirical news comedian in the style of a late-night monologue.
You write short, punchy comedy scripts about AI and technology news.

You MUST respond with ONLY valid JSON — no preamble, no markdown, no explanation:
{
  "title": "<catchy satirical title>",
  "description": "<1-2 sentence description of the comedic angle>",
  "tags": ["<topic>", ...],
  "segments": [
    {
      "text": "<the exact words to be spoken, 2-4 sentences, punchline included>",
      "keywords": ["<visual keyword>", "<visual keyword>"]
    }
  ]
}

Rules:
- 2 to 4 segments, each a self-contained beat with a punchline.
- Keywords must describe concrete visual subjects for GIF search
  (e.g. "robot office", "confused scientist"), never abstract feelings.
- Punch up, never at victims.`

// Completer is the slice of the LLM client the satirist needs.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, llm.Usage, error)
}

// Satirist generates comedy scripts from briefs.
type Satirist struct {
	cfg     *config.Config
	llm     Completer
	scripts *store.ScriptStore
	metrics *store.MetricStore
}

// New creates a Satirist. metrics may be nil.
func New(cfg *config.Config, completer Completer, scripts *store.ScriptStore, metrics *store.MetricStore) *Satirist {
	return &Satirist{
		cfg:     cfg,
		llm:     completer,
		scripts: scripts,
		metrics: metrics,
	}
}

// GenerateScript writes one comedy script covering all the given briefs,
// persists it, and returns it with its assigned ID.
func (s *Satirist) GenerateScript(ctx context.Context, briefs []types.Brief) (*types.ComedyScript, error) {
	if len(briefs) == 0 {
		return nil, fmt.Errorf("no briefs to write from")
	}

	log.Printf("[satirist] generating comedy script from %d briefs", len(briefs))

	reply, usage, err := s.llm.Complete(ctx, llm.Request{
		Model:       s.cfg.Satirist.Model,
		System:      scriptSystemPrompt,
		User:        buildUserPrompt(briefs),
		Temperature: s.cfg.Satirist.Temperature,
		MaxTokens:   s.cfg.Satirist.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate script: %w", err)
	}
	s.recordUsage(usage)

	script, err := parseScript(reply)
	if err != nil {
		return nil, err
	}

	for _, brief := range briefs {
		script.SourceArticles = append(script.SourceArticles, brief.URL)
	}
	script.GeneratedAt = time.Now()
	script.ArticleCount = len(briefs)

	id, err := s.scripts.Save(*script)
	if err != nil {
		return nil, fmt.Errorf("store script: %w", err)
	}
	script.ID = id

	log.Printf("[satirist] ✅ script %q (%d segments) stored as %s",
		script.Title, len(script.Segments), id)
	return script, nil
}

func buildUserPrompt(briefs []types.Brief) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Today is %s. Write one comedy script covering these stories:\n\n",
		time.Now().Format("Monday, January 2, 2006")))

	for i, b := range briefs {
		sb.WriteString(fmt.Sprintf("STORY %d: %s\n", i+1, b.Title))
		sb.WriteString(fmt.Sprintf("Summary: %s\n", b.Summary))
		if len(b.ComedicAngles) > 0 {
			sb.WriteString("Angles: " + strings.Join(b.ComedicAngles, "; ") + "\n")
		}
		if len(b.KeyFacts) > 0 {
			sb.WriteString("Facts: " + strings.Join(b.KeyFacts, "; ") + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Respond ONLY with valid JSON. No markdown. No explanation.")
	return sb.String()
}

// parseScript validates the LLM reply into a ComedyScript. Every segment
// must carry keywords, since segments without them cannot be visualized.
func parseScript(reply string) (*types.ComedyScript, error) {
	cleaned := llm.CleanJSON(reply)

	var script types.ComedyScript
	if err := json.Unmarshal([]byte(cleaned), &script); err != nil {
		preview := cleaned
		if len(preview) > 200 {
			preview = preview[:200]
		}
		return nil, fmt.Errorf("parse script JSON: %w\nraw content: %s", err, preview)
	}

	if script.Title == "" {
		return nil, fmt.Errorf("script has no title")
	}
	if len(script.Segments) == 0 {
		return nil, fmt.Errorf("script has no segments")
	}
	for i, seg := range script.Segments {
		if strings.TrimSpace(seg.Text) == "" {
			return nil, fmt.Errorf("segment %d has no text", i)
		}
		if len(seg.Keywords) == 0 {
			return nil, fmt.Errorf("segment %d has no keywords", i)
		}
	}
	return &script, nil
}

func (s *Satirist) recordUsage(usage llm.Usage) {
	if s.metrics == nil {
		return
	}
	if err := s.metrics.Record("satirist", s.cfg.Satirist.Model, usage.InputTokens, usage.OutputTokens); err != nil {
		log.Printf("[satirist] metrics warning: %v", err)
	}
}
