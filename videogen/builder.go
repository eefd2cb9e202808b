// Package videogen assembles the final video. Each script segment
// becomes its own clip: narration audio from the voice package, GIFs
// fetched per keyword, both handed to the compositor. The segment clips
// are then joined into one MP4.
package videogen

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"comedy-pipeline/compositor"
	"comedy-pipeline/config"
	"comedy-pipeline/types"
)

// Narrator produces one narration audio file per call.
type Narrator interface {
	Synthesize(ctx context.Context, text, outFile string) error
}

// GIFFetcher downloads GIFs for a segment's keywords.
type GIFFetcher interface {
	FetchForKeywords(ctx context.Context, keywords []string, perKeyword int, outputDir string) ([]string, error)
}

// Composer renders one segment clip from a GIF directory and an audio
// track.
type Composer interface {
	Compose(ctx context.Context, clipsDir, audioPath, destination string, opts compositor.Options) (*compositor.Artifact, error)
}

// Joiner concatenates segment clips into the final video.
type Joiner interface {
	Join(ctx context.Context, segments []string, destination string) error
}

// Builder orchestrates video assembly for one script.
type Builder struct {
	cfg      *config.Config
	narrator Narrator
	gifs     GIFFetcher
	composer Composer
	joiner   Joiner
}

// New creates a Builder. A nil joiner gets the default ffmpeg joiner.
func New(cfg *config.Config, narrator Narrator, gifs GIFFetcher, composer Composer, joiner Joiner) *Builder {
	if joiner == nil {
		joiner = FFmpegJoiner{}
	}
	return &Builder{
		cfg:      cfg,
		narrator: narrator,
		gifs:     gifs,
		composer: composer,
		joiner:   joiner,
	}
}

// BuildVideo renders the full video for a script under workDir and
// returns the final MP4 path. Segment artifacts are kept in workDir for
// inspection; callers own cleanup.
func (b *Builder) BuildVideo(ctx context.Context, script *types.ComedyScript, workDir string) (string, error) {
	if len(script.Segments) == 0 {
		return "", fmt.Errorf("script %q has no segments", script.Title)
	}

	log.Printf("[videogen] building video for %q (%d segments)", script.Title, len(script.Segments))

	var segmentFiles []string
	for i, seg := range script.Segments {
		segFile, err := b.buildSegment(ctx, i, seg, workDir)
		if err != nil {
			return "", fmt.Errorf("segment %d: %w", i, err)
		}
		segmentFiles = append(segmentFiles, segFile)
	}

	finalVideo := filepath.Join(workDir, "final.mp4")
	if err := b.joiner.Join(ctx, segmentFiles, finalVideo); err != nil {
		return "", fmt.Errorf("join segments: %w", err)
	}

	log.Printf("[videogen] ✅ final video ready: %s", finalVideo)
	return finalVideo, nil
}

func (b *Builder) buildSegment(ctx context.Context, index int, seg types.SpeechSegment, workDir string) (string, error) {
	audioFile := filepath.Join(workDir, "audio", fmt.Sprintf("segment_%03d.mp3", index))
	if err := os.MkdirAll(filepath.Dir(audioFile), 0755); err != nil {
		return "", err
	}

	log.Printf("[videogen] segment %d: narration...", index)
	if err := b.narrator.Synthesize(ctx, seg.Text, audioFile); err != nil {
		return "", fmt.Errorf("narration: %w", err)
	}

	gifDir := filepath.Join(workDir, "gifs", fmt.Sprintf("segment_%03d", index))
	log.Printf("[videogen] segment %d: fetching GIFs for %v...", index, seg.Keywords)
	if _, err := b.gifs.FetchForKeywords(ctx, seg.Keywords, b.cfg.Video.GIFsPerKeyword, gifDir); err != nil {
		return "", fmt.Errorf("fetch GIFs: %w", err)
	}

	segFile := filepath.Join(workDir, "segments", fmt.Sprintf("segment_%03d.mp4", index))
	artifact, err := b.composer.Compose(ctx, gifDir, audioFile, segFile, compositor.Options{})
	if err != nil {
		return "", fmt.Errorf("compose: %w", err)
	}

	log.Printf("[videogen] segment %d: %.1fs, %d clips", index, artifact.Duration, artifact.Clips)
	return segFile, nil
}

// FFmpegJoiner concatenates segment clips with the ffmpeg concat
// demuxer. Segments share codec settings so streams are copied.
type FFmpegJoiner struct{}

func (FFmpegJoiner) Join(ctx context.Context, segments []string, destination string) error {
	if len(segments) == 0 {
		return fmt.Errorf("no segments to join")
	}
	if len(segments) == 1 {
		data, err := os.ReadFile(segments[0])
		if err != nil {
			return err
		}
		return os.WriteFile(destination, data, 0644)
	}

	listFile := destination + ".concat.txt"
	var lines []string
	for _, seg := range segments {
		abs, err := filepath.Abs(seg)
		if err != nil {
			return err
		}
		lines = append(lines, fmt.Sprintf("file '%s'", abs))
	}
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return err
	}
	defer os.Remove(listFile)

	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		destination,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg concat: %w", err)
	}
	return nil
}
