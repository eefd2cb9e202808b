package main

import (
	"context"
	"fmt"
	"log"

	"comedy-pipeline/notify"
	"comedy-pipeline/satirist"

	"github.com/spf13/cobra"
)

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Write a comedy script from the most recent briefs",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		st := openStore(cfg)
		defer st.Close()

		briefs, err := st.Briefs().Recent(cfg.Satirist.BriefLimit)
		if err != nil {
			log.Fatalf("load briefs: %v", err)
		}
		if len(briefs) == 0 {
			log.Fatal("no briefs in the store, run 'comedy-pipeline brief' first")
		}

		s := satirist.New(cfg, newLLM(), st.Scripts(), st.Metrics())
		script, err := s.GenerateScript(context.Background(), briefs)
		if err != nil {
			log.Fatalf("script generation failed: %v", err)
		}

		fmt.Printf("script %s: %q\n", script.ID, script.Title)
		for i, seg := range script.Segments {
			fmt.Printf("  %d. %s\n     visuals: %v\n", i+1, seg.Text, seg.Keywords)
		}

		if cfg.Notify.Enabled {
			_ = notify.NewTeams().Notify(context.Background(), "New comedy script ready",
				fmt.Sprintf("%q (%d segments) from %d briefs", script.Title, len(script.Segments), script.ArticleCount))
		}
	},
}

func init() {
	rootCmd.AddCommand(scriptCmd)
}
