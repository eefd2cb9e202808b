package main

import (
	"context"
	"fmt"
	"log"

	"comedy-pipeline/debriefer"
	"comedy-pipeline/scout"
	"comedy-pipeline/types"

	"github.com/spf13/cobra"
)

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Score articles and produce satirical briefs for the best ones",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		st := openStore(cfg)
		defer st.Close()

		ctx := context.Background()
		llmClient := newLLM()
		newsClient := newNews(cfg)

		scorer := scout.New(cfg, llmClient, newsClient, st.Scores(), st.Metrics())
		scored, err := scorer.DigForNews(ctx)
		if err != nil {
			log.Fatalf("scoring failed: %v", err)
		}

		minScore, _ := cmd.Flags().GetInt("min-score")
		var picked []types.Article
		for _, s := range scored {
			if s.Score.Score < minScore {
				break
			}
			picked = append(picked, s.Article)
			if len(picked) == cfg.Satirist.BriefLimit {
				break
			}
		}
		if len(picked) == 0 {
			log.Fatalf("no articles scored %d or higher", minScore)
		}

		d := debriefer.New(cfg, llmClient, newsClient, st.Briefs(), st.Metrics())
		briefs, err := d.ProcessArticles(ctx, picked)
		if err != nil {
			log.Fatalf("briefing failed: %v", err)
		}

		for _, b := range briefs {
			fmt.Printf("%s\n  %s\n", b.Title, b.Summary)
		}
	},
}

func init() {
	briefCmd.Flags().Int("min-score", 6, "Minimum comedy score for briefing")
	rootCmd.AddCommand(briefCmd)
}
