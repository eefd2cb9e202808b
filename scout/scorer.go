// Package scout finds news articles worth satirizing. It pulls candidates
// from NewsAPI and absurd-news subreddits, scores each one for comedy
// potential with the LLM, and caches verdicts by URL so repeat runs are
// cheap.
package scout

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"comedy-pipeline/config"
	"comedy-pipeline/llm"
	"comedy-pipeline/news"
	"comedy-pipeline/store"
	"comedy-pipeline/types"

	"github.com/vartanbeno/go-reddit/v2/reddit"
)

const scoreSystemPrompt = `You are a comedy scout for a satirical news show about AI and technology.
Rate each article's comedy potential on a scale of 0-10, where 0 is "completely unusable"
and 10 is "writes its own jokes". Reward absurdity, hubris, unintended irony, and
gap-between-promise-and-reality. Penalize tragedies and stories with victims.

Respond with ONLY valid JSON, no markdown, no explanation:
{"score": <0-10>, "reason": "<one line explaining the score>"}`

// Completer is the slice of the LLM client the scout needs.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, llm.Usage, error)
}

// Scorer evaluates articles for comedy potential.
type Scorer struct {
	cfg     *config.Config
	llm     Completer
	news    *news.Client
	scores  *store.ScoreStore
	metrics *store.MetricStore
}

// New creates a Scorer. metrics may be nil when usage tracking is not
// wanted (tests).
func New(cfg *config.Config, completer Completer, newsClient *news.Client, scores *store.ScoreStore, metrics *store.MetricStore) *Scorer {
	return &Scorer{
		cfg:     cfg,
		llm:     completer,
		news:    newsClient,
		scores:  scores,
		metrics: metrics,
	}
}

// DigForNews fetches candidate articles from every source, scores them,
// and returns them sorted by comedy potential, highest first. Expired
// cache entries are swept at the end of the run.
func (s *Scorer) DigForNews(ctx context.Context) ([]types.ScoredArticle, error) {
	log.Printf("[scout] fetching articles for query %q", s.cfg.News.Query)

	articles, err := s.news.Everything(ctx, news.Query{
		Query:      s.cfg.News.Query,
		PageSize:   s.cfg.News.PageSize,
		Language:   s.cfg.News.Language,
		SortBy:     s.cfg.News.SortBy,
		DaysInPast: s.cfg.News.DaysInPast,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch articles: %w", err)
	}

	if redditArticles, err := s.RedditCandidates(ctx); err != nil {
		log.Printf("[scout] reddit scrape warning: %v", err)
	} else {
		articles = append(articles, redditArticles...)
	}

	if len(articles) == 0 {
		return nil, fmt.Errorf("no articles found")
	}

	log.Printf("[scout] scoring %d articles", len(articles))
	scored := s.ScoreArticles(ctx, articles)

	if removed, err := s.scores.CleanupExpired(s.cacheWindow()); err != nil {
		log.Printf("[scout] cache cleanup warning: %v", err)
	} else if removed > 0 {
		log.Printf("[scout] removed %d expired cache entries", removed)
	}

	return scored, nil
}

// ScoreArticles scores each article, serving from the cache where
// possible, and returns them sorted by score descending. Articles missing
// a title, description, or URL are skipped.
func (s *Scorer) ScoreArticles(ctx context.Context, articles []types.Article) []types.ScoredArticle {
	var scored []types.ScoredArticle

	for _, article := range articles {
		if article.Title == "" || article.Description == "" {
			log.Printf("[scout] skipping article with missing title or description")
			continue
		}
		if article.URL == "" {
			log.Printf("[scout] skipping article with missing URL: %q", article.Title)
			continue
		}

		if cached, err := s.scores.Get(article.URL, s.cacheWindow()); err != nil {
			log.Printf("[scout] cache read warning for %s: %v", article.URL, err)
		} else if cached != nil {
			scored = append(scored, types.ScoredArticle{Article: article, Score: *cached})
			continue
		}

		score := s.quickScore(ctx, article)
		log.Printf("[scout] scored %q: %d (%s)", article.Title, score.Score, score.Reason)

		if err := s.scores.Save(article.URL, article.Title, score); err != nil {
			log.Printf("[scout] cache write warning for %s: %v", article.URL, err)
		}
		scored = append(scored, types.ScoredArticle{Article: article, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score.Score > scored[j].Score.Score
	})
	return scored
}

// quickScore asks the LLM for a verdict on one article. Scoring failures
// degrade to a zero score so one bad article never sinks the run.
func (s *Scorer) quickScore(ctx context.Context, article types.Article) types.ArticleScore {
	user := fmt.Sprintf("TITLE: %s\n\nDESCRIPTION: %s\n\nSOURCE: %s",
		article.Title, article.Description, article.Source)

	reply, usage, err := s.llm.Complete(ctx, llm.Request{
		Model:       s.cfg.Scout.Model,
		System:      scoreSystemPrompt,
		User:        user,
		Temperature: s.cfg.Scout.Temperature,
		MaxTokens:   256,
	})
	if err != nil {
		log.Printf("[scout] scoring failed for %q: %v", article.Title, err)
		return types.ArticleScore{Score: 0, Reason: fmt.Sprintf("error in scoring: %v", err)}
	}

	s.recordUsage(usage)

	var score types.ArticleScore
	if err := json.Unmarshal([]byte(llm.CleanJSON(reply)), &score); err != nil {
		log.Printf("[scout] unparseable score for %q: %v", article.Title, err)
		return types.ArticleScore{Score: 0, Reason: fmt.Sprintf("error in scoring: %v", err)}
	}

	if score.Score < 0 {
		score.Score = 0
	}
	if score.Score > 10 {
		score.Score = 10
	}
	return score
}

// RedditCandidates pulls hot posts from the configured subreddits and
// shapes them as articles. Absurd-news subreddits are a reliable source
// of material NewsAPI never surfaces.
func (s *Scorer) RedditCandidates(ctx context.Context) ([]types.Article, error) {
	if len(s.cfg.Scout.Subreddits) == 0 {
		return nil, nil
	}

	client, err := reddit.NewReadonlyClient()
	if err != nil {
		return nil, fmt.Errorf("reddit client: %w", err)
	}

	var articles []types.Article
	for _, sub := range s.cfg.Scout.Subreddits {
		posts, _, err := client.Subreddit.HotPosts(ctx, sub, &reddit.ListOptions{Limit: 25})
		if err != nil {
			log.Printf("[scout] r/%s error: %v", sub, err)
			continue
		}

		for _, post := range posts {
			if post.Score < s.cfg.Scout.MinRedditScore {
				continue
			}
			description := post.Body
			if description == "" {
				description = post.Title
			}
			published := ""
			if post.Created != nil {
				published = post.Created.Time.Format(time.RFC3339)
			}
			articles = append(articles, types.Article{
				Title:       post.Title,
				Description: description,
				URL:         "https://reddit.com" + post.Permalink,
				Source:      "r/" + sub,
				PublishedAt: published,
			})
		}
	}
	return articles, nil
}

func (s *Scorer) cacheWindow() time.Duration {
	days := s.cfg.Scout.CacheDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

func (s *Scorer) recordUsage(usage llm.Usage) {
	if s.metrics == nil {
		return
	}
	if err := s.metrics.Record("scout", s.cfg.Scout.Model, usage.InputTokens, usage.OutputTokens); err != nil {
		log.Printf("[scout] metrics warning: %v", err)
	}
}
