// Package voice turns script segments into narration audio using the
// ElevenLabs text-to-speech API.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"comedy-pipeline/config"
	"comedy-pipeline/types"
)

const defaultBaseURL = "https://api.elevenlabs.io"

// Synthesizer generates narration audio via ElevenLabs.
type Synthesizer struct {
	cfg        *config.Config
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New creates a Synthesizer. The API key comes from ELEVENLABS_API_KEY.
func New(cfg *config.Config) *Synthesizer {
	return &Synthesizer{
		cfg:        cfg,
		apiKey:     os.Getenv("ELEVENLABS_API_KEY"),
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// WithBaseURL overrides the API endpoint. Used in tests.
func (s *Synthesizer) WithBaseURL(u string) *Synthesizer {
	s.baseURL = strings.TrimRight(u, "/")
	return s
}

// SynthesizeScript generates one audio file per segment into outputDir,
// named segment_000.mp3, segment_001.mp3, and so on. Any segment failure
// aborts the run since a script with missing narration cannot ship.
func (s *Synthesizer) SynthesizeScript(ctx context.Context, script *types.ComedyScript, outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}

	var files []string
	for i, seg := range script.Segments {
		outFile := filepath.Join(outputDir, fmt.Sprintf("segment_%03d.mp3", i))
		log.Printf("[voice] segment %d/%d: synthesizing %d chars...", i+1, len(script.Segments), len(seg.Text))

		if err := s.Synthesize(ctx, seg.Text, outFile); err != nil {
			return nil, fmt.Errorf("segment %d TTS failed: %w", i, err)
		}
		files = append(files, outFile)
	}

	log.Printf("[voice] ✅ %d narration files in %s", len(files), outputDir)
	return files, nil
}

// Synthesize converts one piece of text to speech and writes it to
// outFile. Transient failures are retried up to 3 times.
func (s *Synthesizer) Synthesize(ctx context.Context, text, outFile string) error {
	if s.apiKey == "" {
		return fmt.Errorf("ELEVENLABS_API_KEY is not set")
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("empty text")
	}

	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		err = s.synthesizeOnce(ctx, text, outFile)
		if err == nil {
			return nil
		}
		log.Printf("[voice] attempt %d failed: %v", attempt, err)
		if attempt < 3 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 2 * time.Second):
			}
		}
	}
	return fmt.Errorf("TTS failed after 3 attempts: %w", err)
}

func (s *Synthesizer) synthesizeOnce(ctx context.Context, text, outFile string) error {
	body, err := json.Marshal(map[string]any{
		"text":     text,
		"model_id": "eleven_multilingual_v2",
		"voice_settings": map[string]any{
			"stability":        0.5,
			"similarity_boost": 0.75,
		},
	})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s", s.baseURL, s.cfg.Voice.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.apiKey)
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("elevenlabs HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(audio) < 100 {
		return fmt.Errorf("response too small (%d bytes), not valid audio", len(audio))
	}

	return os.WriteFile(outFile, audio, 0644)
}

// Duration measures an audio file's length in seconds with ffprobe.
func Duration(audioFile string) (float64, error) {
	out, err := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioFile,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", audioFile, err)
	}
	var dur float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &dur); err != nil {
		return 0, fmt.Errorf("parse duration for %s: %w", audioFile, err)
	}
	return dur, nil
}
