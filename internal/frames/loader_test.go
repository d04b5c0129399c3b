package frames_test

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"reloop/internal/frames"
)

func writeTestImage(t *testing.T, path string, width, height int, tint color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Horizontal ramp over the tint so the frame has structure.
			scale := x * 255 / max(width-1, 1)
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(int(tint.R) * scale / 255),
				G: tint.G,
				B: tint.B,
				A: 255,
			})
		}
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create image: %v", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("encode image: %v", err)
	}
}

func TestLoadFrameResamplesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.png")
	writeTestImage(t, path, 64, 48, color.RGBA{R: 200, G: 80, B: 40})

	frame, err := frames.NewLoader().LoadFrame(path, 32)
	if err != nil {
		t.Fatalf("LoadFrame failed: %v", err)
	}
	if frame.Size != 32 {
		t.Fatalf("unexpected frame size: %d", frame.Size)
	}
	if len(frame.Gray) != 32*32 {
		t.Fatalf("unexpected gray length: %d", len(frame.Gray))
	}
	if len(frame.RGB) != 32*32*3 {
		t.Fatalf("unexpected rgb length: %d", len(frame.RGB))
	}
	for i, v := range frame.Gray {
		if v < 0 || v > 1 {
			t.Fatalf("gray[%d]=%g outside [0,1]", i, v)
		}
	}
}

func TestLoadFrameMissingFile(t *testing.T) {
	_, err := frames.NewLoader().LoadFrame(filepath.Join(t.TempDir(), "absent.jpg"), 16)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestLoadFrameCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jpg")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	_, err := frames.NewLoader().LoadFrame(path, 16)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if errors.Is(err, fs.ErrNotExist) {
		t.Fatal("decode failure must be distinguishable from a missing file")
	}
}
