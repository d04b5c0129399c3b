package ffprobe_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"reloop/internal/media/ffprobe"
)

const stubPayload = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080},
    {"index": 1, "codec_name": "aac", "codec_type": "audio"}
  ],
  "format": {"filename": "clip.mp4", "nb_streams": 2, "duration": "12.480000", "format_name": "mov,mp4"}
}`

func writeStub(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "ffprobe-stub")
	script := "#!/bin/sh\ncat <<'EOF'\n" + stubPayload + "\nEOF\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestInspectParsesStubOutput(t *testing.T) {
	stub := writeStub(t)

	result, err := ffprobe.Inspect(context.Background(), stub, "clip.mp4")
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}

	if got := result.DurationSeconds(); got != 12.48 {
		t.Fatalf("unexpected duration: %g", got)
	}
	vs := result.VideoStream()
	if vs == nil {
		t.Fatal("expected a video stream")
	}
	if vs.Width != 1920 || vs.Height != 1080 {
		t.Fatalf("unexpected dimensions: %dx%d", vs.Width, vs.Height)
	}
}

func TestInspectEmptyPath(t *testing.T) {
	if _, err := ffprobe.Inspect(context.Background(), "ffprobe", "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
