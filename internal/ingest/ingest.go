// Package ingest owns the upload pipeline: storing the video file,
// extracting its boundary frames, cataloging the node, and registering it
// with the similarity engine.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"reloop/internal/catalog"
	"reloop/internal/config"
	"reloop/internal/frames"
	"reloop/internal/similarity"
	"reloop/internal/textutil"
)

// ErrUnusableMedia indicates an upload that could not be probed, decoded, or
// scored. The upload leaves no trace behind.
var ErrUnusableMedia = errors.New("unusable media")

// Ingestor runs the upload pipeline and owns the on-disk video and frame
// files it produces.
type Ingestor struct {
	cfg       *config.Config
	store     *catalog.Store
	engine    *similarity.Engine
	extractor *frames.Extractor
	logger    *slog.Logger
}

// New wires an ingestor against the configured ffmpeg/ffprobe binaries.
func New(cfg *config.Config, store *catalog.Store, engine *similarity.Engine, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	extractor := frames.NewExtractor(
		cfg.Tools.FFmpegBinary,
		cfg.Tools.FFprobeBinary,
		time.Duration(cfg.Tools.ProbeTimeout)*time.Second,
		time.Duration(cfg.Tools.ExtractTimeout)*time.Second,
		logger,
	)
	return &Ingestor{
		cfg:       cfg,
		store:     store,
		engine:    engine,
		extractor: extractor,
		logger:    logger.With(slog.String("component", "ingest")),
	}
}

// IngestUpload stores the uploaded stream, extracts its boundary frames,
// catalogs it, and registers it with the similarity engine. Any failure
// after the video lands on disk cleans up every file the pipeline created.
func (i *Ingestor) IngestUpload(ctx context.Context, content io.Reader, filename string) (*catalog.VideoNode, error) {
	nodeID := uuid.NewString()
	videoPath := filepath.Join(i.cfg.VideosDir(), nodeID+uploadExtension(filename))

	if err := writeStream(videoPath, content); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	meta, err := i.extractor.Extract(ctx, videoPath, nodeID, i.cfg.FramesDir())
	if err != nil {
		i.cleanupFiles(nodeID, videoPath)
		return nil, fmt.Errorf("%w: %w", ErrUnusableMedia, err)
	}

	node := &catalog.VideoNode{
		ID:             nodeID,
		Name:           textutil.DisplayName(filename),
		VideoPath:      videoPath,
		FirstFramePath: meta.FirstFramePath,
		LastFramePath:  meta.LastFramePath,
		Duration:       meta.Duration,
		Width:          meta.Width,
		Height:         meta.Height,
	}
	if err := i.store.SaveNode(ctx, node); err != nil {
		i.cleanupFiles(nodeID, videoPath)
		return nil, fmt.Errorf("catalog upload: %w", err)
	}

	if err := i.engine.Register(nodeID, meta.FirstFramePath, meta.LastFramePath); err != nil {
		if delErr := i.store.DeleteNode(ctx, nodeID); delErr != nil {
			i.logger.Error("rollback of cataloged upload failed",
				slog.String("node_id", nodeID), slog.String("error", delErr.Error()))
		}
		i.cleanupFiles(nodeID, videoPath)
		if errors.Is(err, similarity.ErrFeatureUnavailable) {
			return nil, fmt.Errorf("%w: %w", ErrUnusableMedia, err)
		}
		return nil, err
	}

	i.logger.Info("upload ingested",
		slog.String("node_id", nodeID),
		slog.String("name", node.Name),
		slog.Float64("duration", node.Duration))
	return node, nil
}

// RemoveNode deletes the node from the catalog and the similarity matrix and
// removes its video and frame files.
func (i *Ingestor) RemoveNode(ctx context.Context, nodeID string) error {
	node, err := i.store.GetNode(ctx, nodeID)
	if err != nil {
		return err
	}
	if err := i.store.DeleteNode(ctx, nodeID); err != nil {
		return err
	}
	if err := i.engine.Remove(nodeID); err != nil {
		i.logger.Error("matrix removal failed",
			slog.String("node_id", nodeID), slog.String("error", err.Error()))
	}
	i.cleanupFiles(nodeID, node.VideoPath)
	i.logger.Info("node deleted", slog.String("node_id", nodeID))
	return nil
}

// WarmEngine re-loads frame features for every cataloged node after a
// restart. Misses are soft: they are logged and counted but never abort the
// warm-up.
func (i *Ingestor) WarmEngine(ctx context.Context) error {
	nodes, err := i.store.ListNodes(ctx)
	if err != nil {
		return fmt.Errorf("warm engine: %w", err)
	}

	misses := 0
	for _, node := range nodes {
		result := i.engine.Warm(node.ID, node.FirstFramePath, node.LastFramePath)
		if result.FirstErr != nil || result.LastErr != nil {
			misses++
		}
	}

	i.logger.Info("engine warm-up complete",
		slog.Int("nodes", len(nodes)),
		slog.Int("misses", misses))
	return nil
}

// cleanupFiles removes the video and both frame files for a node, tolerating
// files that were never created.
func (i *Ingestor) cleanupFiles(nodeID, videoPath string) {
	paths := []string{
		videoPath,
		frames.FramePath(i.cfg.FramesDir(), nodeID, "first"),
		frames.FramePath(i.cfg.FramesDir(), nodeID, "last"),
	}
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			i.logger.Warn("cleanup failed",
				slog.String("path", path), slog.String("error", err.Error()))
		}
	}
}

func uploadExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || len(ext) > 8 {
		return ".mp4"
	}
	return ext
}

func writeStream(path string, content io.Reader) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, content); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return err
	}
	return file.Close()
}
