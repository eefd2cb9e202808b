package main

import (
	"context"
	"fmt"
	"log"

	"comedy-pipeline/compositor"

	"github.com/spf13/cobra"
)

var composeCmd = &cobra.Command{
	Use:   "compose <clips-dir> <audio-file> <output.mp4>",
	Short: "Composite a directory of GIFs over an audio track",
	Long: `Splits the audio track's duration evenly across the clips in the
directory and renders one video. Clips play in filename order unless
--order lists them explicitly.`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		order, _ := cmd.Flags().GetStringSlice("order")

		c := compositor.New(compositor.NewFFmpegRenderer())
		artifact, err := c.Compose(context.Background(), args[0], args[1], args[2], compositor.Options{Order: order})
		if err != nil {
			log.Fatalf("compose failed: %v", err)
		}

		fmt.Printf("%s (%.1fs, %d clips)\n", artifact.Path, artifact.Duration, artifact.Clips)
	},
}

func init() {
	composeCmd.Flags().StringSlice("order", nil, "Explicit clip order (filenames relative to clips-dir)")
	rootCmd.AddCommand(composeCmd)
}
