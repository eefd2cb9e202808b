package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"comedy-pipeline/compositor"
	"comedy-pipeline/giphy"
	"comedy-pipeline/types"
	"comedy-pipeline/videogen"
	"comedy-pipeline/voice"

	"github.com/spf13/cobra"
)

var videoCmd = &cobra.Command{
	Use:   "video [script-id]",
	Short: "Render the video for a stored script (latest when omitted)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		st := openStore(cfg)
		defer st.Close()

		var script *types.ComedyScript
		var err error
		if len(args) == 1 {
			script, err = st.Scripts().Get(args[0])
		} else {
			script, err = st.Scripts().Latest()
		}
		if err != nil {
			log.Fatalf("load script: %v", err)
		}

		builder := videogen.New(cfg,
			voice.New(cfg),
			giphy.NewClient(),
			compositor.New(compositor.NewFFmpegRenderer()),
			nil,
		)

		workDir := filepath.Join(cfg.Paths.Output, script.ID)
		final, err := builder.BuildVideo(context.Background(), script, workDir)
		if err != nil {
			log.Fatalf("video build failed: %v", err)
		}

		fmt.Println(final)
	},
}

func init() {
	rootCmd.AddCommand(videoCmd)
}
