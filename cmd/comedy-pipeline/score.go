package main

import (
	"context"
	"fmt"
	"log"

	"comedy-pipeline/scout"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Fetch candidate articles and score their comedy potential",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		st := openStore(cfg)
		defer st.Close()

		scorer := scout.New(cfg, newLLM(), newNews(cfg), st.Scores(), st.Metrics())
		scored, err := scorer.DigForNews(context.Background())
		if err != nil {
			log.Fatalf("scoring failed: %v", err)
		}

		limit, _ := cmd.Flags().GetInt("top")
		if limit > len(scored) {
			limit = len(scored)
		}
		for _, s := range scored[:limit] {
			fmt.Printf("%2d  %-60.60s  %s\n", s.Score.Score, s.Article.Title, s.Article.URL)
		}
	},
}

func init() {
	scoreCmd.Flags().Int("top", 10, "How many top-scored articles to print")
	rootCmd.AddCommand(scoreCmd)
}
