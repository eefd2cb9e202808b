package compositor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Renderer abstracts the ffmpeg/ffprobe operations the compositor needs,
// so the pipeline logic and error taxonomy can be tested without the
// binaries installed.
type Renderer interface {
	// Probe returns duration and dimensions of a media file.
	Probe(ctx context.Context, path string) (*ProbeResult, error)
	// RenderEntry encodes one timeline entry to a normalized part file:
	// loop-extended or truncated to the entry duration, scaled to the
	// canonical frame height, centered in the canonical frame width.
	RenderEntry(ctx context.Context, entry Entry, outPath string) error
	// Concat joins already-normalized part files without re-encoding.
	Concat(ctx context.Context, parts []string, outPath string) error
	// Mux binds the audio track to the silent composite and writes the
	// final artifact.
	Mux(ctx context.Context, videoPath, audioPath, outPath string) error
}

// ProbeResult holds what ffprobe reports for a media file.
type ProbeResult struct {
	Duration float64
	Width    int
	Height   int
}

// FFmpegRenderer shells out to ffmpeg/ffprobe.
type FFmpegRenderer struct{}

func NewFFmpegRenderer() *FFmpegRenderer { return &FFmpegRenderer{} }

func (r *FFmpegRenderer) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe duration: %w", err)
	}

	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return nil, fmt.Errorf("parse duration: %w", err)
	}

	result := &ProbeResult{Duration: dur}

	// Dimensions only exist for visual streams; ignore errors for audio.
	dims, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=p=0",
		path,
	).Output()
	if err == nil {
		parts := strings.Split(strings.TrimSpace(string(dims)), ",")
		if len(parts) == 2 {
			result.Width, _ = strconv.Atoi(parts[0])
			result.Height, _ = strconv.Atoi(parts[1])
		}
	}

	return result, nil
}

// normalizeFilter scales to the canonical height preserving aspect ratio,
// center-crops anything wider than the frame, and pads anything narrower
// with black, centered.
var normalizeFilter = fmt.Sprintf(
	"scale=-2:%d,crop=min(iw\\,%d):%d,pad=%d:%d:(ow-iw)/2:0:black,setsar=1",
	FrameHeight, FrameWidth, FrameHeight, FrameWidth, FrameHeight,
)

func (r *FFmpegRenderer) RenderEntry(ctx context.Context, entry Entry, outPath string) error {
	args := []string{"-y"}

	if entry.Clip.Duration > 0 && entry.Clip.Duration < entry.Duration {
		// Loop the source enough times to cover the slot; -t cuts it exact.
		loops := int(entry.Duration/entry.Clip.Duration) + 1
		args = append(args, "-stream_loop", strconv.Itoa(loops))
	}

	args = append(args,
		"-i", entry.Clip.Path,
		"-t", fmt.Sprintf("%.3f", entry.Duration),
		"-vf", normalizeFilter,
		"-r", strconv.Itoa(FrameRate),
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		"-an",
		outPath,
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg render: %w", err)
	}
	return nil
}

func (r *FFmpegRenderer) Concat(ctx context.Context, parts []string, outPath string) error {
	listFile := filepath.Join(filepath.Dir(outPath), "concat_list.txt")
	var lines []string
	for _, p := range parts {
		lines = append(lines, fmt.Sprintf("file '%s'", p))
	}
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		outPath,
	)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg concat: %w", err)
	}
	return nil
}

func (r *FFmpegRenderer) Mux(ctx context.Context, videoPath, audioPath, outPath string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", AudioBitrate,
		"-shortest",
		"-movflags", "+faststart",
		outPath,
	)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg mux: %w", err)
	}
	return nil
}
