package testsupport

import (
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"reloop/internal/config"
)

// ProbeOutputVideo is a canned ffprobe result for a 4.2 second 640x360 clip.
const ProbeOutputVideo = `{
  "streams": [{"index": 0, "codec_name": "h264", "codec_type": "video", "width": 640, "height": 360}],
  "format": {"duration": "4.200000", "nb_streams": 1}
}`

// ProbeOutputAudioOnly is a canned ffprobe result with no video stream.
const ProbeOutputAudioOnly = `{
  "streams": [{"index": 0, "codec_name": "aac", "codec_type": "audio"}],
  "format": {"duration": "4.200000", "nb_streams": 1}
}`

// StubMediaTools points the config at shell-script stand-ins for ffprobe and
// ffmpeg. The ffprobe stub prints the given JSON; the ffmpeg stub copies a
// generated JPEG fixture to its output path.
func StubMediaTools(t testing.TB, cfg *config.Config, probeOutput string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs not supported on windows")
	}

	dir := t.TempDir()
	fixture := filepath.Join(dir, "fixture.jpg")
	WriteFrameImage(t, fixture, color.RGBA{R: 90, G: 120, B: 150, A: 255})
	t.Setenv("RELOOP_TEST_FIXTURE_FRAME", fixture)

	cfg.Tools.FFprobeBinary = writeToolStub(t, dir, "ffprobe-stub",
		"cat <<'EOF'\n"+probeOutput+"\nEOF\n")
	cfg.Tools.FFmpegBinary = writeToolStub(t, dir, "ffmpeg-stub",
		"for last; do :; done\ncp \"$RELOOP_TEST_FIXTURE_FRAME\" \"$last\"\n")
}

func writeToolStub(t testing.TB, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}
