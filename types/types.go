package types

import "time"

// Article is a news article as returned by NewsAPI, optionally enriched
// with full scraped content.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
}

// ArticleScore is the comedy-potential verdict for one article.
type ArticleScore struct {
	Score  int    `json:"score"` // 0-10
	Reason string `json:"reason"`
}

// ScoredArticle pairs an article with its score.
type ScoredArticle struct {
	Article Article      `json:"article"`
	Score   ArticleScore `json:"score"`
}

// Brief is the satirical analysis of one article, produced by the debriefer.
type Brief struct {
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	Summary       string    `json:"summary"`
	ComedicAngles []string  `json:"comedic_angles"`
	KeyFacts      []string  `json:"key_facts"`
	AnalyzedAt    time.Time `json:"analyzed_at"`
}

// SpeechSegment is one spoken beat of a comedy script. Keywords drive the
// GIF search for the segment's visuals.
type SpeechSegment struct {
	Text     string   `json:"text"`
	Keywords []string `json:"keywords"`
}

// ComedyScript is the full structured script for one video.
type ComedyScript struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Tags           []string        `json:"tags"`
	Segments       []SpeechSegment `json:"segments"`
	SourceArticles []string        `json:"source_articles"`
	GeneratedAt    time.Time       `json:"generated_at"`
	ArticleCount   int             `json:"article_count"`
}

// PipelineState tracks one end-to-end run, saved as JSON alongside the
// run's artifacts.
type PipelineState struct {
	RunID       string   `json:"run_id"`
	StartedAt   string   `json:"started_at"`
	CompletedAt string   `json:"completed_at"`
	Query       string   `json:"query"`
	ScriptID    string   `json:"script_id,omitempty"`
	VideoFile   string   `json:"video_file,omitempty"`
	YouTubeID   string   `json:"youtube_id,omitempty"`
	YouTubeURL  string   `json:"youtube_url,omitempty"`
	Articles    []string `json:"articles,omitempty"`
	Error       string   `json:"error,omitempty"`
}
