package api_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"reloop/internal/api"
	"reloop/internal/catalog"
	"reloop/internal/export"
	"reloop/internal/frames"
	"reloop/internal/ingest"
	"reloop/internal/logging"
	"reloop/internal/similarity"
	"reloop/internal/testsupport"
)

func newService(t *testing.T) *api.Service {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	testsupport.StubMediaTools(t, cfg, testsupport.ProbeOutputVideo)

	store, err := catalog.Open(cfg.CatalogPath())
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	engine, err := similarity.New(frames.NewLoader(), similarity.NewStore(cfg.MatrixPath()), cfg.Similarity.FrameSize, logging.NopLogger())
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	ingestor := ingest.New(cfg, store, engine, logging.NopLogger())
	return api.NewService(cfg, store, engine, ingestor, logging.NopLogger())
}

func upload(t *testing.T, svc *api.Service, filename string) api.NodeView {
	t.Helper()
	view, err := svc.Upload(context.Background(), bytes.NewReader([]byte("fake video "+filename)), filename)
	if err != nil {
		t.Fatalf("Upload(%s) failed: %v", filename, err)
	}
	return view
}

func TestUploadProducesMediaURLs(t *testing.T) {
	svc := newService(t)
	view := upload(t, svc, "city_lights.mp4")

	if view.Name != "City Lights" || view.Type != "video" {
		t.Fatalf("unexpected view: %#v", view)
	}
	if !strings.HasPrefix(view.VideoURL, "/media/videos/") {
		t.Fatalf("unexpected video url: %s", view.VideoURL)
	}
	if !strings.HasPrefix(view.FirstFrameURL, "/media/frames/") || !strings.HasSuffix(view.FirstFrameURL, "_first.jpg") {
		t.Fatalf("unexpected first frame url: %s", view.FirstFrameURL)
	}
	if view.CreatedAt == "" {
		t.Fatal("expected created_at to be set")
	}

	views, err := svc.ListNodes(context.Background())
	if err != nil {
		t.Fatalf("ListNodes failed: %v", err)
	}
	if len(views) != 1 || views[0].ID != view.ID {
		t.Fatalf("unexpected node list: %#v", views)
	}
}

func TestCompatibleSides(t *testing.T) {
	svc := newService(t)
	view := upload(t, svc, "clip.mp4")
	ctx := context.Background()

	// Default side is right: nodes that can follow this clip.
	resp, err := svc.Compatible(ctx, view.ID, "", 0.5)
	if err != nil {
		t.Fatalf("Compatible failed: %v", err)
	}
	if resp.QuerySide != similarity.KnobRight {
		t.Fatalf("expected default side right, got %q", resp.QuerySide)
	}
	if len(resp.Compatible) != 1 || resp.Compatible[0].Side != similarity.KnobLeft {
		t.Fatalf("unexpected matches: %#v", resp.Compatible)
	}

	resp, err = svc.Compatible(ctx, view.ID, "left", 0.5)
	if err != nil {
		t.Fatalf("Compatible(left) failed: %v", err)
	}
	if len(resp.Compatible) != 1 || resp.Compatible[0].Side != similarity.KnobRight {
		t.Fatalf("unexpected matches for left side: %#v", resp.Compatible)
	}

	if _, err := svc.Compatible(ctx, view.ID, "top", 0.5); !errors.Is(err, api.ErrInvalidSide) {
		t.Fatalf("expected ErrInvalidSide, got %v", err)
	}
	if _, err := svc.Compatible(ctx, view.ID, "right", 1.5); !errors.Is(err, similarity.ErrThreshold) {
		t.Fatalf("expected ErrThreshold, got %v", err)
	}
}

func TestCompatibleUnknownNodeIsEmpty(t *testing.T) {
	svc := newService(t)
	resp, err := svc.Compatible(context.Background(), "ghost", "right", 0.5)
	if err != nil {
		t.Fatalf("Compatible failed: %v", err)
	}
	if len(resp.Compatible) != 0 {
		t.Fatalf("expected no matches, got %#v", resp.Compatible)
	}
}

func TestCreateGroupDerivesMetadata(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	a := upload(t, svc, "a.mp4")
	b := upload(t, svc, "b.mp4")

	group, err := svc.CreateGroup(ctx, api.CreateGroupRequest{
		Name:     "Morning Loop",
		ChildIDs: []string{a.ID, b.ID},
	})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	if group.Type != "group" || group.Duration != 8.4 {
		t.Fatalf("unexpected group view: %#v", group)
	}
	if group.FirstFrameURL != a.FirstFrameURL || group.LastFrameURL != b.LastFrameURL {
		t.Fatalf("group should borrow boundary frames from its edge clips: %#v", group)
	}

	// Nested group doubles the duration.
	nested, err := svc.CreateGroup(ctx, api.CreateGroupRequest{
		Name:     "Double Loop",
		ChildIDs: []string{group.ID, group.ID},
	})
	if err != nil {
		t.Fatalf("CreateGroup(nested) failed: %v", err)
	}
	if nested.Duration != 16.8 {
		t.Fatalf("expected nested duration 16.8, got %v", nested.Duration)
	}
}

func TestCreateGroupValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	a := upload(t, svc, "a.mp4")

	cases := []api.CreateGroupRequest{
		{Name: "", ChildIDs: []string{a.ID}},
		{Name: "No Children"},
		{Name: "Ghost Child", ChildIDs: []string{"ghost"}},
	}
	for _, req := range cases {
		if _, err := svc.CreateGroup(ctx, req); !errors.Is(err, api.ErrInvalidRequest) {
			t.Fatalf("expected ErrInvalidRequest for %#v, got %v", req, err)
		}
	}
}

func TestGroupLifecycle(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	a := upload(t, svc, "a.mp4")

	group, err := svc.CreateGroup(ctx, api.CreateGroupRequest{Name: "Solo", ChildIDs: []string{a.ID}})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	renamed, err := svc.RenameGroup(ctx, group.ID, "Solo Loop")
	if err != nil {
		t.Fatalf("RenameGroup failed: %v", err)
	}
	if renamed.Name != "Solo Loop" {
		t.Fatalf("rename not applied: %q", renamed.Name)
	}

	if err := svc.DeleteGroup(ctx, group.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	if _, err := svc.GetGroup(ctx, group.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Deleting the group leaves its member node intact.
	if _, err := svc.GetNode(ctx, a.ID); err != nil {
		t.Fatalf("member node should survive group deletion: %v", err)
	}
}

func TestExportFlattensGroups(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	a := upload(t, svc, "a.mp4")
	b := upload(t, svc, "b.mp4")

	group, err := svc.CreateGroup(ctx, api.CreateGroupRequest{Name: "Pair", ChildIDs: []string{a.ID, b.ID}})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	result, err := svc.Export(ctx, api.ExportRequest{
		Cycles: []export.Cycle{{NodeIDs: []string{group.ID}, Repeat: 2}},
	})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if len(result.Entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(result.Entries))
	}
	if result.TotalDuration != 16.8 {
		t.Fatalf("expected total 16.8, got %v", result.TotalDuration)
	}

	if _, err := svc.Export(ctx, api.ExportRequest{}); !errors.Is(err, api.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for empty export, got %v", err)
	}
}

func TestDeleteNodeRemovesMatrixEntries(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	a := upload(t, svc, "a.mp4")
	b := upload(t, svc, "b.mp4")

	if err := svc.DeleteNode(ctx, a.ID); err != nil {
		t.Fatalf("DeleteNode failed: %v", err)
	}

	matrix := svc.Matrix().Matrix
	if _, ok := matrix[a.ID]; ok {
		t.Fatal("deleted node still has a matrix row")
	}
	if _, ok := matrix[b.ID][a.ID]; ok {
		t.Fatal("deleted node still present as a column")
	}
}

func TestStatusReportsCounts(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	a := upload(t, svc, "a.mp4")

	if _, err := svc.CreateGroup(ctx, api.CreateGroupRequest{Name: "Solo", ChildIDs: []string{a.ID}}); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	status := svc.Status(ctx)
	if !status.Running || status.PID == 0 {
		t.Fatalf("unexpected status: %#v", status)
	}
	if status.NodeCount != 1 || status.GroupCount != 1 {
		t.Fatalf("unexpected counts: %#v", status)
	}
	if status.Engine.Nodes != 1 || status.Engine.Entries != 1 {
		t.Fatalf("unexpected engine stats: %#v", status.Engine)
	}
	if len(status.Dependencies) != 2 {
		t.Fatalf("expected 2 dependency checks, got %d", len(status.Dependencies))
	}
}
