package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reloop/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Similarity.FrameSize != 256 {
		t.Fatalf("unexpected default frame size: %d", cfg.Similarity.FrameSize)
	}
	if cfg.Similarity.DefaultThreshold != 0.75 {
		t.Fatalf("unexpected default threshold: %g", cfg.Similarity.DefaultThreshold)
	}
	if cfg.Tools.FFmpegBinary != "ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary: %q", cfg.Tools.FFmpegBinary)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
library_dir = "` + filepath.Join(dir, "library") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[similarity]
frame_size = 128
default_threshold = 0.6

[logging]
format = "JSON"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: exists=%v path=%q", exists, resolved)
	}
	if cfg.Similarity.FrameSize != 128 {
		t.Fatalf("frame size not applied: %d", cfg.Similarity.FrameSize)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("format not lowered: %q", cfg.Logging.Format)
	}
	if !strings.HasSuffix(cfg.MatrixPath(), "similarity.json") {
		t.Fatalf("unexpected matrix path: %q", cfg.MatrixPath())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"threshold above one", func(c *config.Config) { c.Similarity.DefaultThreshold = 1.5 }},
		{"tiny frame size", func(c *config.Config) { c.Similarity.FrameSize = 4 }},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "yaml" }},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "loud" }},
		{"negative probe timeout", func(c *config.Config) { c.Tools.ProbeTimeout = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("first WriteSample failed: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error when file exists")
	}
}
