package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	News     NewsConfig     `yaml:"news"`
	Scout    ScoutConfig    `yaml:"scout"`
	Satirist SatiristConfig `yaml:"satirist"`
	Voice    VoiceConfig    `yaml:"voice"`
	Video    VideoConfig    `yaml:"video"`
	Upload   UploadConfig   `yaml:"upload"`
	Notify   NotifyConfig   `yaml:"notify"`
	Paths    PathsConfig    `yaml:"paths"`
}

type NewsConfig struct {
	Query       string   `yaml:"query"`
	PageSize    int      `yaml:"page_size"`
	DaysInPast  int      `yaml:"days_in_past"`
	Language    string   `yaml:"language"`
	SortBy      string   `yaml:"sort_by"`
	SkipDomains []string `yaml:"skip_domains"`
}

type ScoutConfig struct {
	Model          string   `yaml:"model"`
	Temperature    float64  `yaml:"temperature"`
	CacheDays      int      `yaml:"cache_days"`
	Subreddits     []string `yaml:"subreddits"`
	MinRedditScore int      `yaml:"min_reddit_score"`
}

type SatiristConfig struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	BriefLimit  int     `yaml:"brief_limit"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type VoiceConfig struct {
	VoiceID      string `yaml:"voice_id"`
	OutputFormat string `yaml:"output_format"`
}

type VideoConfig struct {
	GIFsPerKeyword int `yaml:"gifs_per_keyword"`
}

type UploadConfig struct {
	Visibility        string `yaml:"visibility"`
	CategoryID        string `yaml:"category_id"`
	NotifySubscribers bool   `yaml:"notify_subscribers"`
	MadeForKids       bool   `yaml:"made_for_kids"`
	DefaultLanguage   string `yaml:"default_language"`
}

type NotifyConfig struct {
	Enabled bool `yaml:"enabled"`
}

type PathsConfig struct {
	Database string `yaml:"database"`
	Output   string `yaml:"output"`
	Logs     string `yaml:"logs"`
}

// Load reads config.yaml and returns a Config struct
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a Config with working defaults so the pipeline can run
// with no config file at all (everything secret still comes from env).
func Default() *Config {
	return &Config{
		News: NewsConfig{
			Query:      "artificial intelligence",
			PageSize:   20,
			DaysInPast: 7,
			Language:   "en",
			SortBy:     "relevancy",
		},
		Scout: ScoutConfig{
			Model:          "claude-3-7-sonnet-20250219",
			Temperature:    0.3,
			CacheDays:      7,
			Subreddits:     []string{"nottheonion"},
			MinRedditScore: 100,
		},
		Satirist: SatiristConfig{
			Model:       "claude-3-5-sonnet-20241022",
			Temperature: 0.7,
			BriefLimit:  5,
			MaxTokens:   4096,
		},
		Voice: VoiceConfig{
			VoiceID:      "zGjIP4SZlMnY9m93k97r",
			OutputFormat: "mp3",
		},
		Video: VideoConfig{
			GIFsPerKeyword: 1,
		},
		Upload: UploadConfig{
			Visibility:        "private",
			CategoryID:        "23", // Comedy
			NotifySubscribers: false,
			MadeForKids:       false,
			DefaultLanguage:   "en",
		},
		Notify: NotifyConfig{Enabled: true},
		Paths: PathsConfig{
			Database: "data/comedy.db",
			Output:   "output",
			Logs:     "logs",
		},
	}
}
