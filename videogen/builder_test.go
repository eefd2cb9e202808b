package videogen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"comedy-pipeline/compositor"
	"comedy-pipeline/config"
	"comedy-pipeline/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNarrator struct {
	texts []string
	err   error
}

func (s *stubNarrator) Synthesize(ctx context.Context, text, outFile string) error {
	if s.err != nil {
		return s.err
	}
	s.texts = append(s.texts, text)
	return os.WriteFile(outFile, []byte("audio"), 0644)
}

type stubFetcher struct {
	keywords [][]string
	err      error
}

func (s *stubFetcher) FetchForKeywords(ctx context.Context, keywords []string, perKeyword int, outputDir string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.keywords = append(s.keywords, keywords)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}
	f := filepath.Join(outputDir, "001.gif")
	return []string{f}, os.WriteFile(f, []byte("gif"), 0644)
}

type stubComposer struct {
	calls []string
	err   error
}

func (s *stubComposer) Compose(ctx context.Context, clipsDir, audioPath, destination string, opts compositor.Options) (*compositor.Artifact, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.calls = append(s.calls, destination)
	if err := os.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(destination, []byte("mp4"), 0644); err != nil {
		return nil, err
	}
	return &compositor.Artifact{Path: destination, Duration: 5, Clips: 1}, nil
}

type stubJoiner struct {
	joined []string
}

func (s *stubJoiner) Join(ctx context.Context, segments []string, destination string) error {
	s.joined = segments
	return os.WriteFile(destination, []byte("final"), 0644)
}

func testScript(n int) *types.ComedyScript {
	script := &types.ComedyScript{Title: "t"}
	for i := 0; i < n; i++ {
		script.Segments = append(script.Segments, types.SpeechSegment{
			Text:     fmt.Sprintf("joke %d", i),
			Keywords: []string{fmt.Sprintf("keyword %d", i)},
		})
	}
	return script
}

func TestBuildVideo(t *testing.T) {
	narrator := &stubNarrator{}
	fetcher := &stubFetcher{}
	composer := &stubComposer{}
	joiner := &stubJoiner{}
	b := New(config.Default(), narrator, fetcher, composer, joiner)

	workDir := t.TempDir()
	final, err := b.BuildVideo(context.Background(), testScript(3), workDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(workDir, "final.mp4"), final)
	_, statErr := os.Stat(final)
	assert.NoError(t, statErr)

	// Every segment narrated, fetched, and composed, in order.
	assert.Equal(t, []string{"joke 0", "joke 1", "joke 2"}, narrator.texts)
	require.Len(t, composer.calls, 3)
	assert.Contains(t, composer.calls[0], "segment_000.mp4")
	assert.Equal(t, composer.calls, joiner.joined)
}

func TestBuildVideoEmptyScript(t *testing.T) {
	b := New(config.Default(), &stubNarrator{}, &stubFetcher{}, &stubComposer{}, &stubJoiner{})

	_, err := b.BuildVideo(context.Background(), &types.ComedyScript{Title: "empty"}, t.TempDir())
	require.Error(t, err)
}

func TestBuildVideoNarrationFailureAborts(t *testing.T) {
	composer := &stubComposer{}
	b := New(config.Default(), &stubNarrator{err: assert.AnError}, &stubFetcher{}, composer, &stubJoiner{})

	_, err := b.BuildVideo(context.Background(), testScript(2), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "segment 0")
	assert.Empty(t, composer.calls)
}

func TestBuildVideoGIFFailureAborts(t *testing.T) {
	b := New(config.Default(), &stubNarrator{}, &stubFetcher{err: assert.AnError}, &stubComposer{}, &stubJoiner{})

	_, err := b.BuildVideo(context.Background(), testScript(1), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch GIFs")
}

func TestFFmpegJoinerSingleSegmentCopies(t *testing.T) {
	dir := t.TempDir()
	seg := filepath.Join(dir, "only.mp4")
	require.NoError(t, os.WriteFile(seg, []byte("content"), 0644))

	dest := filepath.Join(dir, "final.mp4")
	require.NoError(t, FFmpegJoiner{}.Join(context.Background(), []string{seg}, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), data)
}

func TestFFmpegJoinerNoSegments(t *testing.T) {
	err := FFmpegJoiner{}.Join(context.Background(), nil, filepath.Join(t.TempDir(), "final.mp4"))
	require.Error(t, err)
}
