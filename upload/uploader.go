// Package upload publishes finished videos to YouTube via the Data API.
package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"comedy-pipeline/config"
	"comedy-pipeline/types"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Result describes a completed upload.
type Result struct {
	VideoID string
	URL     string
}

// Uploader handles YouTube video upload via Data API v3.
type Uploader struct {
	cfg *config.Config
}

// New creates an Uploader.
func New(cfg *config.Config) *Uploader {
	return &Uploader{cfg: cfg}
}

// Run uploads videoFile with the script's title, description, and tags.
func (u *Uploader) Run(ctx context.Context, videoFile string, script *types.ComedyScript) (*Result, error) {
	log.Println("[upload] authenticating with YouTube API...")

	client, err := u.oauthClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("youtube auth: %w", err)
	}

	svc, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}

	log.Printf("[upload] uploading: %q", script.Title)

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:                script.Title,
			Description:          buildDescription(script),
			Tags:                 script.Tags,
			CategoryId:           u.cfg.Upload.CategoryID,
			DefaultLanguage:      u.cfg.Upload.DefaultLanguage,
			DefaultAudioLanguage: u.cfg.Upload.DefaultLanguage,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           u.cfg.Upload.Visibility,
			SelfDeclaredMadeForKids: u.cfg.Upload.MadeForKids,
		},
	}

	f, err := os.Open(videoFile)
	if err != nil {
		return nil, fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	if fi, err := f.Stat(); err == nil {
		log.Printf("[upload] file size: %.1f MB", float64(fi.Size())/1024/1024)
	}

	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	call.NotifySubscribers(u.cfg.Upload.NotifySubscribers)
	call.Media(f)

	uploaded, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("youtube upload: %w", err)
	}

	result := &Result{
		VideoID: uploaded.Id,
		URL:     fmt.Sprintf("https://www.youtube.com/watch?v=%s", uploaded.Id),
	}
	log.Printf("[upload] ✅ uploaded: %s", result.URL)
	return result, nil
}

// oauthClient builds an HTTP client from env refresh-token credentials.
func (u *Uploader) oauthClient(ctx context.Context) (*http.Client, error) {
	clientID := os.Getenv("YOUTUBE_CLIENT_ID")
	clientSecret := os.Getenv("YOUTUBE_CLIENT_SECRET")
	refreshToken := os.Getenv("YOUTUBE_REFRESH_TOKEN")

	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, fmt.Errorf("YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET, or YOUTUBE_REFRESH_TOKEN not set")
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope, youtube.YoutubeScope},
	}

	token := &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	}

	return oauth2.NewClient(ctx, conf.TokenSource(ctx, token)), nil
}

func buildDescription(script *types.ComedyScript) string {
	desc := script.Description
	if len(script.SourceArticles) > 0 {
		desc += "\n\nSources:\n"
		for _, src := range script.SourceArticles {
			desc += src + "\n"
		}
	}
	return desc
}

// LogUpload writes the upload result as JSON into logsDir.
func LogUpload(result *Result, videoFile, logsDir string, script *types.ComedyScript) error {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return err
	}

	entry := map[string]any{
		"video_id":    result.VideoID,
		"video_url":   result.URL,
		"title":       script.Title,
		"script_id":   script.ID,
		"uploaded_at": time.Now().UTC().Format(time.RFC3339),
		"video_file":  videoFile,
	}

	logFile := filepath.Join(logsDir, fmt.Sprintf("upload_%s.json", time.Now().Format("20060102_150405")))
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(logFile, data, 0644); err != nil {
		return err
	}

	log.Printf("[upload] upload log saved: %s", logFile)
	return nil
}
