// Package compositor assembles a directory of short looping visual clips
// and one audio track into a single fixed-format video. The audio track's
// duration is authoritative: every clip gets an equal contiguous slice of
// it, loop-extended or truncated to fit.
package compositor

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Options tunes a single Compose call. The zero value gives the default
// behavior: clips ordered by ascending lexicographic filename.
type Options struct {
	// Order, when set, lists the clip filenames (relative to the clips
	// directory) in the exact sequence they should appear. This exists
	// because filename ordering alone is fragile ("2.gif" sorts after
	// "10.gif").
	Order []string
}

// Compositor turns clip directories plus an audio track into videos.
type Compositor struct {
	renderer Renderer
}

// New creates a Compositor backed by the given Renderer. Pass
// NewFFmpegRenderer() for real encoding.
func New(renderer Renderer) *Compositor {
	return &Compositor{renderer: renderer}
}

// Compose discovers the clips in clipsDir, splits the audio duration
// evenly across them, normalizes each to the canonical frame, lays them
// out consecutively, binds the audio, and encodes to destination.
//
// The run is all-or-nothing: any failure leaves no artifact behind and
// returns one of EmptyInputError, InvalidAudioError, InvalidClipError or
// OutputWriteError.
func (c *Compositor) Compose(ctx context.Context, clipsDir, audioPath, destination string, opts Options) (*Artifact, error) {
	paths, err := DiscoverClips(clipsDir, opts.Order)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, &EmptyInputError{Dir: clipsDir}
	}

	audio, err := c.renderer.Probe(ctx, audioPath)
	if err != nil {
		return nil, &InvalidAudioError{Path: audioPath, Err: err}
	}
	if audio.Duration <= 0 {
		return nil, &InvalidAudioError{Path: audioPath, Err: fmt.Errorf("duration %.3fs", audio.Duration)}
	}

	clips := make([]Clip, 0, len(paths))
	for _, p := range paths {
		probe, err := c.renderer.Probe(ctx, p)
		if err != nil {
			return nil, &InvalidClipError{Path: p, Err: err}
		}
		clips = append(clips, Clip{
			Path:     p,
			Duration: probe.Duration,
			Width:    probe.Width,
			Height:   probe.Height,
		})
	}

	plan := BuildPlan(clips, audio.Duration)
	log.Printf("[compose] %d clips, %.2fs audio, %.2fs per clip",
		len(plan.Entries), plan.Total, plan.Entries[0].Duration)

	if err := os.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return nil, &OutputWriteError{Path: destination, Err: err}
	}

	workDir, err := os.MkdirTemp("", "compose-*")
	if err != nil {
		return nil, &OutputWriteError{Path: destination, Err: err}
	}
	defer os.RemoveAll(workDir)

	parts := make([]string, 0, len(plan.Entries))
	for i, entry := range plan.Entries {
		part := filepath.Join(workDir, fmt.Sprintf("part_%03d.mp4", i))
		if err := c.renderer.RenderEntry(ctx, entry, part); err != nil {
			return nil, &InvalidClipError{Path: entry.Clip.Path, Err: err}
		}
		parts = append(parts, part)
	}

	silent := filepath.Join(workDir, "silent.mp4")
	if err := c.renderer.Concat(ctx, parts, silent); err != nil {
		return nil, &OutputWriteError{Path: destination, Err: err}
	}

	if err := c.renderer.Mux(ctx, silent, audioPath, destination); err != nil {
		// A half-written destination is not an acceptable artifact.
		os.Remove(destination)
		return nil, &OutputWriteError{Path: destination, Err: err}
	}

	log.Printf("[compose] ✅ wrote %s (%.2fs, %d clips)", destination, plan.Total, len(plan.Entries))
	return &Artifact{
		Path:     destination,
		Duration: plan.Total,
		Clips:    len(plan.Entries),
	}, nil
}
