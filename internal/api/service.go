package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"reloop/internal/catalog"
	"reloop/internal/config"
	"reloop/internal/export"
	"reloop/internal/ingest"
	"reloop/internal/preflight"
	"reloop/internal/similarity"
)

// ErrInvalidSide indicates a compatibility query named a knob other than
// left or right.
var ErrInvalidSide = errors.New("side must be \"left\" or \"right\"")

// ErrInvalidRequest indicates a structurally invalid request payload.
var ErrInvalidRequest = errors.New("invalid request")

// Service exposes the editor operations backed by the catalog, the
// similarity engine, and the ingest pipeline.
type Service struct {
	cfg      *config.Config
	store    *catalog.Store
	engine   *similarity.Engine
	ingestor *ingest.Ingestor
	logger   *slog.Logger
}

// NewService wires a service over the shared daemon components.
func NewService(cfg *config.Config, store *catalog.Store, engine *similarity.Engine, ingestor *ingest.Ingestor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:      cfg,
		store:    store,
		engine:   engine,
		ingestor: ingestor,
		logger:   logger.With(slog.String("component", "api")),
	}
}

// ListNodes returns every cataloged video node.
func (s *Service) ListNodes(ctx context.Context) ([]NodeView, error) {
	nodes, err := s.store.ListNodes(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]NodeView, 0, len(nodes))
	for _, node := range nodes {
		views = append(views, nodeView(node))
	}
	return views, nil
}

// GetNode returns one node by ID.
func (s *Service) GetNode(ctx context.Context, id string) (NodeView, error) {
	node, err := s.store.GetNode(ctx, id)
	if err != nil {
		return NodeView{}, err
	}
	return nodeView(node), nil
}

// Upload runs the ingest pipeline for an uploaded video stream.
func (s *Service) Upload(ctx context.Context, content io.Reader, filename string) (NodeView, error) {
	node, err := s.ingestor.IngestUpload(ctx, content, filename)
	if err != nil {
		return NodeView{}, err
	}
	return nodeView(node), nil
}

// RenameNode updates a node's display name.
func (s *Service) RenameNode(ctx context.Context, id, name string) (NodeView, error) {
	if strings.TrimSpace(name) == "" {
		return NodeView{}, fmt.Errorf("%w: name must not be empty", ErrInvalidRequest)
	}
	node, err := s.store.RenameNode(ctx, id, strings.TrimSpace(name))
	if err != nil {
		return NodeView{}, err
	}
	return nodeView(node), nil
}

// DeleteNode removes a node, its matrix entries, and its files.
func (s *Service) DeleteNode(ctx context.Context, id string) error {
	return s.ingestor.RemoveNode(ctx, id)
}

// Compatible answers a compatibility query for one knob of a node. Querying
// the right knob (a clip's trailing frame) finds nodes that can follow it;
// querying the left knob finds nodes that can precede it.
func (s *Service) Compatible(ctx context.Context, nodeID, side string, threshold float64) (CompatibilityResponse, error) {
	side = strings.ToLower(strings.TrimSpace(side))
	if side == "" {
		side = similarity.KnobRight
	}

	var (
		matches []similarity.Match
		err     error
	)
	switch side {
	case similarity.KnobRight:
		matches, err = s.engine.CompatibleTargets(nodeID, threshold)
	case similarity.KnobLeft:
		matches, err = s.engine.CompatibleSources(nodeID, threshold)
	default:
		return CompatibilityResponse{}, ErrInvalidSide
	}
	if err != nil {
		return CompatibilityResponse{}, err
	}

	return CompatibilityResponse{
		QueryNodeID: nodeID,
		QuerySide:   side,
		Threshold:   threshold,
		Compatible:  matches,
	}, nil
}

// Matrix returns the full directed score matrix.
func (s *Service) Matrix() MatrixResponse {
	return MatrixResponse{Matrix: s.engine.Matrix()}
}

// CreateGroup validates and persists a group, deriving its duration and
// boundary frames from its flattened children.
func (s *Service) CreateGroup(ctx context.Context, req CreateGroupRequest) (GroupView, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return GroupView{}, fmt.Errorf("%w: name must not be empty", ErrInvalidRequest)
	}
	if len(req.ChildIDs) == 0 {
		return GroupView{}, fmt.Errorf("%w: group needs at least one child", ErrInvalidRequest)
	}

	nodes, groups, err := s.loadGraph(ctx)
	if err != nil {
		return GroupView{}, err
	}

	flat, err := export.Flatten([]export.Cycle{{NodeIDs: req.ChildIDs, Repeat: 1}}, nodes, groups)
	if err != nil {
		return GroupView{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if len(flat.Entries) == 0 {
		return GroupView{}, fmt.Errorf("%w: group resolves to no clips", ErrInvalidRequest)
	}

	first := nodes[flat.Entries[0].NodeID]
	last := nodes[flat.Entries[len(flat.Entries)-1].NodeID]
	group := &catalog.Group{
		ID:             uuid.NewString(),
		Name:           name,
		ChildIDs:       req.ChildIDs,
		FirstFramePath: first.FirstFramePath,
		LastFramePath:  last.LastFramePath,
		Duration:       flat.TotalDuration,
	}
	if err := s.store.SaveGroup(ctx, group); err != nil {
		return GroupView{}, err
	}

	s.logger.Info("group created",
		slog.String("group_id", group.ID),
		slog.Int("children", len(group.ChildIDs)),
		slog.Float64("duration", group.Duration))
	return groupView(group), nil
}

// ListGroups returns every group.
func (s *Service) ListGroups(ctx context.Context) ([]GroupView, error) {
	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]GroupView, 0, len(groups))
	for _, group := range groups {
		views = append(views, groupView(group))
	}
	return views, nil
}

// GetGroup returns one group by ID.
func (s *Service) GetGroup(ctx context.Context, id string) (GroupView, error) {
	group, err := s.store.GetGroup(ctx, id)
	if err != nil {
		return GroupView{}, err
	}
	return groupView(group), nil
}

// RenameGroup updates a group's display name.
func (s *Service) RenameGroup(ctx context.Context, id, name string) (GroupView, error) {
	if strings.TrimSpace(name) == "" {
		return GroupView{}, fmt.Errorf("%w: name must not be empty", ErrInvalidRequest)
	}
	group, err := s.store.RenameGroup(ctx, id, strings.TrimSpace(name))
	if err != nil {
		return GroupView{}, err
	}
	return groupView(group), nil
}

// DeleteGroup removes a group record. Member nodes are untouched.
func (s *Service) DeleteGroup(ctx context.Context, id string) error {
	return s.store.DeleteGroup(ctx, id)
}

// Export flattens an arrangement into an ordered play list with cumulative
// timestamps.
func (s *Service) Export(ctx context.Context, req ExportRequest) (*export.Result, error) {
	if len(req.Cycles) == 0 {
		return nil, fmt.Errorf("%w: export needs at least one cycle", ErrInvalidRequest)
	}
	nodes, groups, err := s.loadGraph(ctx)
	if err != nil {
		return nil, err
	}
	return export.Flatten(req.Cycles, nodes, groups)
}

// Status aggregates daemon runtime information.
func (s *Service) Status(ctx context.Context) DaemonStatus {
	nodeCount := 0
	if nodes, err := s.store.ListNodes(ctx); err == nil {
		nodeCount = len(nodes)
	}
	groupCount := 0
	if groups, err := s.store.ListGroups(ctx); err == nil {
		groupCount = len(groups)
	}
	engineNodes, engineEntries := s.engine.Stats()

	checked := preflight.CheckSystemDeps(s.cfg)
	deps := make([]DependencyStatus, 0, len(checked))
	for _, status := range checked {
		deps = append(deps, DependencyStatus{
			Name:        status.Name,
			Command:     status.Command,
			Description: status.Description,
			Available:   status.Available,
			Detail:      status.Detail,
		})
	}

	return DaemonStatus{
		Running:      true,
		PID:          os.Getpid(),
		LibraryDir:   s.cfg.Paths.LibraryDir,
		CatalogPath:  s.cfg.CatalogPath(),
		MatrixPath:   s.cfg.MatrixPath(),
		LockFilePath: s.cfg.LockPath(),
		NodeCount:    nodeCount,
		GroupCount:   groupCount,
		Engine:       EngineStatus{Nodes: engineNodes, Entries: engineEntries},
		Dependencies: deps,
	}
}

// DefaultThreshold reports the configured compatibility cutoff.
func (s *Service) DefaultThreshold() float64 {
	return s.cfg.Similarity.DefaultThreshold
}

// loadGraph snapshots the catalog into lookup maps for flattening.
func (s *Service) loadGraph(ctx context.Context) (map[string]*catalog.VideoNode, map[string]*catalog.Group, error) {
	nodeList, err := s.store.ListNodes(ctx)
	if err != nil {
		return nil, nil, err
	}
	groupList, err := s.store.ListGroups(ctx)
	if err != nil {
		return nil, nil, err
	}

	nodes := make(map[string]*catalog.VideoNode, len(nodeList))
	for _, node := range nodeList {
		nodes[node.ID] = node
	}
	groups := make(map[string]*catalog.Group, len(groupList))
	for _, group := range groupList {
		groups[group.ID] = group
	}
	return nodes, groups, nil
}

func nodeView(node *catalog.VideoNode) NodeView {
	return NodeView{
		ID:            node.ID,
		Name:          node.Name,
		Type:          "video",
		VideoURL:      mediaURL("videos", node.VideoPath),
		FirstFrameURL: mediaURL("frames", node.FirstFramePath),
		LastFrameURL:  mediaURL("frames", node.LastFramePath),
		Duration:      node.Duration,
		Width:         node.Width,
		Height:        node.Height,
		CreatedAt:     formatTime(node.CreatedAt),
		UpdatedAt:     formatTime(node.UpdatedAt),
	}
}

func groupView(group *catalog.Group) GroupView {
	return GroupView{
		ID:            group.ID,
		Name:          group.Name,
		Type:          "group",
		ChildIDs:      append([]string(nil), group.ChildIDs...),
		FirstFrameURL: mediaURL("frames", group.FirstFramePath),
		LastFrameURL:  mediaURL("frames", group.LastFramePath),
		Duration:      group.Duration,
		CreatedAt:     formatTime(group.CreatedAt),
		UpdatedAt:     formatTime(group.UpdatedAt),
	}
}

func mediaURL(kind, filePath string) string {
	if filePath == "" {
		return ""
	}
	return path.Join("/media", kind, filepath.Base(filePath))
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(dateTimeFormat)
}
