package compositor

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Canonical output format. These are fixed constants of the compositor;
// callers cannot override them.
const (
	FrameWidth   = 1280
	FrameHeight  = 720
	FrameRate    = 24
	AudioBitrate = "192k"
)

// eligibleExtensions are the visual-clip formats the compositor accepts.
var eligibleExtensions = map[string]bool{
	".gif":  true,
	".mp4":  true,
	".webm": true,
	".mov":  true,
}

// Clip is a decoded visual source. Read-only once probed.
type Clip struct {
	Path     string
	Duration float64
	Width    int
	Height   int
}

// Entry places one clip on the shared output timeline.
type Entry struct {
	Clip     Clip
	Start    float64
	Duration float64
}

// Plan is the finalized composition: contiguous entries covering the full
// audio duration at the canonical frame size.
type Plan struct {
	Entries []Entry
	Total   float64
	Width   int
	Height  int
}

// Artifact describes the encoded output file.
type Artifact struct {
	Path     string
	Duration float64
	Clips    int
}

// DiscoverClips returns the eligible clip files in dir, ordered by
// ascending lexicographic filename. When order is non-empty it is used
// verbatim instead: each name is resolved relative to dir and must exist.
func DiscoverClips(dir string, order []string) ([]string, error) {
	if len(order) > 0 {
		paths := make([]string, 0, len(order))
		for _, name := range order {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err != nil {
				return nil, &InvalidClipError{Path: p, Err: err}
			}
			paths = append(paths, p)
		}
		return paths, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &EmptyInputError{Dir: dir}
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if eligibleExtensions[ext] {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// BuildPlan allocates an equal slice of the audio duration to every clip,
// in order. The split deliberately ignores each clip's natural length:
// short clips are loop-extended and long clips truncated at render time.
func BuildPlan(clips []Clip, audioDuration float64) Plan {
	per := audioDuration / float64(len(clips))

	entries := make([]Entry, len(clips))
	for i, c := range clips {
		entries[i] = Entry{
			Clip:     c,
			Start:    float64(i) * per,
			Duration: per,
		}
	}

	return Plan{
		Entries: entries,
		Total:   audioDuration,
		Width:   FrameWidth,
		Height:  FrameHeight,
	}
}
