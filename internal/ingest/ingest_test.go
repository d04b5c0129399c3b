package ingest_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"reloop/internal/catalog"
	"reloop/internal/config"
	"reloop/internal/frames"
	"reloop/internal/ingest"
	"reloop/internal/logging"
	"reloop/internal/similarity"
	"reloop/internal/testsupport"
)

type harness struct {
	cfg      *config.Config
	store    *catalog.Store
	engine   *similarity.Engine
	ingestor *ingest.Ingestor
}

func newHarness(t *testing.T, probeOutput string) *harness {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	testsupport.StubMediaTools(t, cfg, probeOutput)

	store, err := catalog.Open(cfg.CatalogPath())
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	engine, err := similarity.New(frames.NewLoader(), similarity.NewStore(cfg.MatrixPath()), cfg.Similarity.FrameSize, logging.NopLogger())
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}

	return &harness{
		cfg:      cfg,
		store:    store,
		engine:   engine,
		ingestor: ingest.New(cfg, store, engine, logging.NopLogger()),
	}
}

func TestIngestUpload(t *testing.T) {
	h := newHarness(t, testsupport.ProbeOutputVideo)

	node, err := h.ingestor.IngestUpload(context.Background(), bytes.NewReader([]byte("fake video")), "beach_sunset.mp4")
	if err != nil {
		t.Fatalf("IngestUpload failed: %v", err)
	}

	if node.Name != "Beach Sunset" {
		t.Fatalf("unexpected display name: %q", node.Name)
	}
	if node.Duration != 4.2 || node.Width != 640 {
		t.Fatalf("metadata not applied: %#v", node)
	}
	for _, path := range []string{node.VideoPath, node.FirstFramePath, node.LastFramePath} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected file %s: %v", path, err)
		}
	}

	if _, err := h.store.GetNode(context.Background(), node.ID); err != nil {
		t.Fatalf("node not cataloged: %v", err)
	}

	nodes, entries := h.engine.Stats()
	if nodes != 1 || entries != 1 {
		t.Fatalf("expected 1 node with its self pair, got %d nodes %d entries", nodes, entries)
	}
}

func TestIngestUploadRejectsUnusableMedia(t *testing.T) {
	h := newHarness(t, testsupport.ProbeOutputAudioOnly)

	_, err := h.ingestor.IngestUpload(context.Background(), bytes.NewReader([]byte("not a video")), "podcast.mp3")
	if !errors.Is(err, ingest.ErrUnusableMedia) {
		t.Fatalf("expected ErrUnusableMedia, got %v", err)
	}

	leftovers, err := os.ReadDir(h.cfg.VideosDir())
	if err != nil {
		t.Fatalf("read videos dir: %v", err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("rejected upload left %d files behind", len(leftovers))
	}

	nodes, err := h.store.ListNodes(context.Background())
	if err != nil {
		t.Fatalf("list nodes: %v", err)
	}
	if len(nodes) != 0 {
		t.Fatal("rejected upload should not be cataloged")
	}
}

func TestRemoveNode(t *testing.T) {
	h := newHarness(t, testsupport.ProbeOutputVideo)
	ctx := context.Background()

	node, err := h.ingestor.IngestUpload(ctx, bytes.NewReader([]byte("fake video")), "clip.mp4")
	if err != nil {
		t.Fatalf("IngestUpload failed: %v", err)
	}

	if err := h.ingestor.RemoveNode(ctx, node.ID); err != nil {
		t.Fatalf("RemoveNode failed: %v", err)
	}

	if _, err := h.store.GetNode(ctx, node.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after removal, got %v", err)
	}
	if nodes, _ := h.engine.Stats(); nodes != 0 {
		t.Fatalf("matrix should be empty, has %d nodes", nodes)
	}
	for _, path := range []string{node.VideoPath, node.FirstFramePath, node.LastFramePath} {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("expected %s to be deleted, got %v", path, err)
		}
	}
}

func TestRemoveNodeNotFound(t *testing.T) {
	h := newHarness(t, testsupport.ProbeOutputVideo)
	if err := h.ingestor.RemoveNode(context.Background(), "ghost"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWarmEngineAfterRestart(t *testing.T) {
	h := newHarness(t, testsupport.ProbeOutputVideo)
	ctx := context.Background()

	node, err := h.ingestor.IngestUpload(ctx, bytes.NewReader([]byte("fake video")), "clip.mp4")
	if err != nil {
		t.Fatalf("IngestUpload failed: %v", err)
	}

	restarted, err := similarity.New(frames.NewLoader(), similarity.NewStore(h.cfg.MatrixPath()), h.cfg.Similarity.FrameSize, logging.NopLogger())
	if err != nil {
		t.Fatalf("rebuild engine: %v", err)
	}
	if state, _ := restarted.FeatureState(node.ID, similarity.SideFirst); state != similarity.LoadStateAbsent {
		t.Fatalf("fresh engine should have no features, got %v", state)
	}

	warmIngestor := ingest.New(h.cfg, h.store, restarted, logging.NopLogger())
	if err := warmIngestor.WarmEngine(ctx); err != nil {
		t.Fatalf("WarmEngine failed: %v", err)
	}

	for _, side := range []similarity.Side{similarity.SideFirst, similarity.SideLast} {
		state, stateErr := restarted.FeatureState(node.ID, side)
		if state != similarity.LoadStateLoaded || stateErr != nil {
			t.Fatalf("expected %s feature loaded, got %v (%v)", side, state, stateErr)
		}
	}
}
