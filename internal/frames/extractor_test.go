package frames_test

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"reloop/internal/frames"
	"reloop/internal/logging"
)

const probeStubOutput = `{
  "streams": [{"index": 0, "codec_name": "h264", "codec_type": "video", "width": 640, "height": 360}],
  "format": {"duration": "4.200000", "nb_streams": 1}
}`

const audioOnlyProbeOutput = `{
  "streams": [{"index": 0, "codec_name": "aac", "codec_type": "audio"}],
  "format": {"duration": "4.200000", "nb_streams": 1}
}`

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs not supported on windows")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script %s: %v", name, err)
	}
	return path
}

func newStubExtractor(t *testing.T, probeOutput string) *frames.Extractor {
	t.Helper()
	dir := t.TempDir()

	fixture := filepath.Join(dir, "fixture.png")
	writeTestImage(t, fixture, 8, 8, color.RGBA{R: 100, G: 100, B: 100})
	t.Setenv("RELOOP_TEST_FIXTURE_FRAME", fixture)

	ffprobe := writeScript(t, dir, "ffprobe-stub", "cat <<'EOF'\n"+probeOutput+"\nEOF\n")
	// Copies the fixture frame to ffmpeg's output path (the last argument).
	ffmpeg := writeScript(t, dir, "ffmpeg-stub", "for last; do :; done\ncp \"$RELOOP_TEST_FIXTURE_FRAME\" \"$last\"\n")

	return frames.NewExtractor(ffmpeg, ffprobe, 5*time.Second, 5*time.Second, logging.NopLogger())
}

func TestExtractWritesBothFrames(t *testing.T) {
	extractor := newStubExtractor(t, probeStubOutput)
	framesDir := filepath.Join(t.TempDir(), "frames")

	meta, err := extractor.Extract(context.Background(), "clip.mp4", "node-1", framesDir)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if meta.Duration != 4.2 {
		t.Fatalf("unexpected duration: %g", meta.Duration)
	}
	if meta.Width != 640 || meta.Height != 360 {
		t.Fatalf("unexpected dimensions: %dx%d", meta.Width, meta.Height)
	}
	for _, path := range []string{meta.FirstFramePath, meta.LastFramePath} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected frame file %s: %v", path, err)
		}
	}
	if meta.FirstFramePath != frames.FramePath(framesDir, "node-1", "first") {
		t.Fatalf("unexpected first frame path: %s", meta.FirstFramePath)
	}
}

func TestExtractRejectsAudioOnly(t *testing.T) {
	extractor := newStubExtractor(t, audioOnlyProbeOutput)

	_, err := extractor.Extract(context.Background(), "song.mp3", "node-2", t.TempDir())
	if err == nil {
		t.Fatal("expected error for clip without video stream")
	}
}

func TestExtractReusesExistingFrames(t *testing.T) {
	extractor := newStubExtractor(t, probeStubOutput)
	framesDir := t.TempDir()

	first := frames.FramePath(framesDir, "node-3", "first")
	last := frames.FramePath(framesDir, "node-3", "last")
	for _, path := range []string{first, last} {
		if err := os.WriteFile(path, []byte("existing"), 0o644); err != nil {
			t.Fatalf("seed frame: %v", err)
		}
	}

	if _, err := extractor.Extract(context.Background(), "clip.mp4", "node-3", framesDir); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if string(data) != "existing" {
		t.Fatal("existing frame file should not be overwritten")
	}
}
