package main

import (
	"fmt"
	"log"
	"os"

	"comedy-pipeline/config"
	"comedy-pipeline/llm"
	"comedy-pipeline/news"
	"comedy-pipeline/store"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "comedy-pipeline",
	Short: "Turns absurd tech news into satirical videos",
	Long: `comedy-pipeline finds news worth satirizing, writes a comedy script
with an LLM, narrates it, illustrates it with GIFs, and assembles the
result into a video ready for YouTube.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "config.yaml", "Path to the config file")
}

// loadConfig reads .env and the config file. A missing config file is
// fine; defaults apply and secrets still come from the environment.
func loadConfig(cmd *cobra.Command) *config.Config {
	_ = godotenv.Load()

	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("load config %s: %v", path, err)
		}
		cfg = config.Default()
	}
	return cfg
}

func openStore(cfg *config.Config) *store.Store {
	st, err := store.Open(cfg.Paths.Database)
	if err != nil {
		log.Fatalf("open store %s: %v", cfg.Paths.Database, err)
	}
	return st
}

func newLLM() *llm.Client {
	return llm.New(os.Getenv("ANTHROPIC_API_KEY"))
}

func newNews(cfg *config.Config) *news.Client {
	return news.New(os.Getenv("NEWS_API_KEY"), cfg.News.SkipDomains)
}
