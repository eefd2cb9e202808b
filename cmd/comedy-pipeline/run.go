package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"comedy-pipeline/compositor"
	"comedy-pipeline/config"
	"comedy-pipeline/debriefer"
	"comedy-pipeline/giphy"
	"comedy-pipeline/notify"
	"comedy-pipeline/satirist"
	"comedy-pipeline/scout"
	"comedy-pipeline/types"
	"comedy-pipeline/upload"
	"comedy-pipeline/videogen"
	"comedy-pipeline/voice"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: score, brief, script, video, upload",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		skipUpload, _ := cmd.Flags().GetBool("skip-upload")

		// Failures propagate up so every defer (store close, state save)
		// unwinds before the process exits.
		if err := runPipeline(cfg, skipUpload); err != nil {
			log.Printf("❌ pipeline failed: %v", err)
			os.Exit(1)
		}
	},
}

func runPipeline(cfg *config.Config, skipUpload bool) error {
	st := openStore(cfg)
	defer st.Close()

	runID := uuid.NewString()[:8]
	runDir := filepath.Join(cfg.Paths.Output, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}

	log.Printf("🎬 comedy pipeline starting, run %s", runID)
	log.Printf("📁 output dir: %s", runDir)

	ctx := context.Background()
	notifier := notify.NewTeams()
	state := &types.PipelineState{
		RunID:     runID,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
		Query:     cfg.News.Query,
	}

	defer func() {
		state.CompletedAt = time.Now().UTC().Format(time.RFC3339)
		saveJSON(filepath.Join(runDir, "pipeline_state.json"), state)
		if state.Error != "" {
			if cfg.Notify.Enabled {
				_ = notifier.Notify(ctx, "Comedy pipeline failed",
					fmt.Sprintf("Run %s: %s", runID, state.Error))
			}
			return
		}
		log.Printf("✅ pipeline complete, video: %s", state.YouTubeURL)
	}()

	fail := func(stage string, err error) error {
		state.Error = fmt.Sprintf("%s: %v", stage, err)
		return errors.New(state.Error)
	}

	llmClient := newLLM()
	newsClient := newNews(cfg)

	log.Println("━━━ stage 1: scout ━━━")
	scorer := scout.New(cfg, llmClient, newsClient, st.Scores(), st.Metrics())
	scored, err := scorer.DigForNews(ctx)
	if err != nil {
		return fail("scout", err)
	}

	var picked []types.Article
	for _, s := range scored {
		if s.Score.Score < 6 {
			break
		}
		picked = append(picked, s.Article)
		state.Articles = append(state.Articles, s.Article.URL)
		if len(picked) == cfg.Satirist.BriefLimit {
			break
		}
	}
	if len(picked) == 0 {
		return fail("scout", errors.New("no articles funny enough to brief"))
	}

	log.Println("━━━ stage 2: debriefer ━━━")
	d := debriefer.New(cfg, llmClient, newsClient, st.Briefs(), st.Metrics())
	briefs, err := d.ProcessArticles(ctx, picked)
	if err != nil {
		return fail("debriefer", err)
	}

	log.Println("━━━ stage 3: satirist ━━━")
	s := satirist.New(cfg, llmClient, st.Scripts(), st.Metrics())
	script, err := s.GenerateScript(ctx, briefs)
	if err != nil {
		return fail("satirist", err)
	}
	state.ScriptID = script.ID
	saveJSON(filepath.Join(runDir, "script.json"), script)

	log.Println("━━━ stage 4: video ━━━")
	builder := videogen.New(cfg,
		voice.New(cfg),
		giphy.NewClient(),
		compositor.New(compositor.NewFFmpegRenderer()),
		nil,
	)
	finalVideo, err := builder.BuildVideo(ctx, script, runDir)
	if err != nil {
		return fail("videogen", err)
	}
	state.VideoFile = finalVideo

	if skipUpload {
		log.Println("━━━ stage 5: upload skipped ━━━")
		return nil
	}

	log.Println("━━━ stage 5: upload ━━━")
	uploader := upload.New(cfg)
	result, err := uploader.Run(ctx, finalVideo, script)
	if err != nil {
		return fail("upload", err)
	}
	state.YouTubeID = result.VideoID
	state.YouTubeURL = result.URL
	_ = upload.LogUpload(result, finalVideo, cfg.Paths.Logs, script)

	if cfg.Notify.Enabled {
		_ = notifier.Notify(ctx, "New comedy video uploaded",
			fmt.Sprintf("%q is live: %s", script.Title, result.URL))
	}
	return nil
}

func init() {
	runCmd.Flags().Bool("skip-upload", false, "Build the video but do not upload it")
	rootCmd.AddCommand(runCmd)
}

func saveJSON(path string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("warning: could not marshal JSON for %s: %v", path, err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("warning: could not save %s: %v", path, err)
	}
}
