package frames

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"reloop/internal/media/ffprobe"
)

// tailSeekOffset is how far before the end of the clip the last frame is
// sampled. Seeking to the exact end often lands past the final keyframe.
const tailSeekOffset = 0.5

// Metadata describes the extraction output for one clip.
type Metadata struct {
	FirstFramePath string
	LastFramePath  string
	Duration       float64
	Width          int
	Height         int
}

// Extractor grabs representative frames and metadata from clip files using
// the external ffmpeg/ffprobe binaries.
type Extractor struct {
	ffmpegBinary   string
	ffprobeBinary  string
	probeTimeout   time.Duration
	extractTimeout time.Duration
	logger         *slog.Logger
}

// NewExtractor constructs an extractor around the configured binaries.
func NewExtractor(ffmpegBinary, ffprobeBinary string, probeTimeout, extractTimeout time.Duration, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		ffmpegBinary:   ffmpegBinary,
		ffprobeBinary:  ffprobeBinary,
		probeTimeout:   probeTimeout,
		extractTimeout: extractTimeout,
		logger:         logger.With(slog.String("component", "frames")),
	}
}

// FramePath returns the canonical location of a node's extracted frame.
func FramePath(framesDir, nodeID, label string) string {
	return filepath.Join(framesDir, fmt.Sprintf("%s_%s.jpg", nodeID, label))
}

// Extract probes the clip and writes its first and last frames as JPEGs
// under framesDir. Existing frame files are reused. The clip must contain a
// video stream.
func (e *Extractor) Extract(ctx context.Context, videoPath, nodeID, framesDir string) (Metadata, error) {
	probeCtx, cancel := context.WithTimeout(ctx, e.probeTimeout)
	defer cancel()

	result, err := ffprobe.Inspect(probeCtx, e.ffprobeBinary, videoPath)
	if err != nil {
		return Metadata{}, err
	}
	stream := result.VideoStream()
	if stream == nil {
		return Metadata{}, fmt.Errorf("no video stream found in %s", videoPath)
	}

	meta := Metadata{
		FirstFramePath: FramePath(framesDir, nodeID, "first"),
		LastFramePath:  FramePath(framesDir, nodeID, "last"),
		Duration:       result.DurationSeconds(),
		Width:          stream.Width,
		Height:         stream.Height,
	}

	if err := os.MkdirAll(framesDir, 0o755); err != nil {
		return Metadata{}, fmt.Errorf("create frames directory: %w", err)
	}

	if !fileExists(meta.FirstFramePath) {
		if err := e.grabFrame(ctx, videoPath, meta.FirstFramePath, "0"); err != nil {
			return Metadata{}, fmt.Errorf("extract first frame: %w", err)
		}
	}

	if !fileExists(meta.LastFramePath) {
		seek := strconv.FormatFloat(max(0, meta.Duration-tailSeekOffset), 'f', -1, 64)
		err := e.grabFrame(ctx, videoPath, meta.LastFramePath, seek)
		if err != nil || !fileExists(meta.LastFramePath) {
			// Timestamp seeking can overshoot short or variable-rate clips;
			// seeking relative to EOF is slower but reliable.
			if fallbackErr := e.grabTailFrame(ctx, videoPath, meta.LastFramePath); fallbackErr != nil {
				return Metadata{}, fmt.Errorf("extract last frame: %w", errors.Join(err, fallbackErr))
			}
		}
	}

	e.logger.Debug("frames extracted",
		slog.String("node_id", nodeID),
		slog.Float64("duration", meta.Duration))
	return meta, nil
}

func (e *Extractor) grabFrame(ctx context.Context, videoPath, outPath, seek string) error {
	return e.runFFmpeg(ctx, "-y", "-ss", seek, "-i", videoPath, "-frames:v", "1", "-q:v", "2", outPath)
}

func (e *Extractor) grabTailFrame(ctx context.Context, videoPath, outPath string) error {
	return e.runFFmpeg(ctx, "-y", "-sseof", "-0.5", "-i", videoPath, "-frames:v", "1", "-q:v", "2", outPath)
}

func (e *Extractor) runFFmpeg(ctx context.Context, args ...string) error {
	runCtx, cancel := context.WithTimeout(ctx, e.extractTimeout)
	defer cancel()

	binary := strings.TrimSpace(e.ffmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	cmd := exec.CommandContext(runCtx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
