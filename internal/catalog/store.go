package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound indicates the requested node or group does not exist.
var ErrNotFound = errors.New("not found")

// Store manages node and group persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database and applies the
// schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

const nodeColumns = `id, name, video_path, first_frame_path, last_frame_path, duration_seconds, width, height, created_at, updated_at`

// SaveNode inserts a new video node.
func (s *Store) SaveNode(ctx context.Context, node *VideoNode) error {
	if node == nil || strings.TrimSpace(node.ID) == "" {
		return errors.New("node requires an id")
	}
	now := time.Now().UTC()
	if node.CreatedAt.IsZero() {
		node.CreatedAt = now
	}
	node.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO nodes (`+nodeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		node.ID, node.Name, node.VideoPath, node.FirstFramePath, node.LastFramePath,
		node.Duration, node.Width, node.Height,
		node.CreatedAt.Format(time.RFC3339Nano), node.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert node: %w", err)
	}
	return nil
}

// GetNode fetches a node by ID, returning ErrNotFound when absent.
func (s *Store) GetNode(ctx context.Context, id string) (*VideoNode, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+nodeColumns+` FROM nodes WHERE id = ?`, id)
	node, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get node: %w", err)
	}
	return node, nil
}

// ListNodes returns all nodes ordered by creation time.
func (s *Store) ListNodes(ctx context.Context) ([]*VideoNode, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+nodeColumns+` FROM nodes ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*VideoNode
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

// RenameNode updates a node's display name.
func (s *Store) RenameNode(ctx context.Context, id, name string) (*VideoNode, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE nodes SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return nil, fmt.Errorf("rename node: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	return s.GetNode(ctx, id)
}

// DeleteNode removes a node record.
func (s *Store) DeleteNode(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	return nil
}

const groupColumns = `id, name, child_ids_json, first_frame_path, last_frame_path, duration_seconds, created_at, updated_at`

// SaveGroup inserts a new group.
func (s *Store) SaveGroup(ctx context.Context, group *Group) error {
	if group == nil || strings.TrimSpace(group.ID) == "" {
		return errors.New("group requires an id")
	}
	if len(group.ChildIDs) == 0 {
		return errors.New("group requires at least one child")
	}
	childJSON, err := json.Marshal(group.ChildIDs)
	if err != nil {
		return fmt.Errorf("marshal child ids: %w", err)
	}
	now := time.Now().UTC()
	if group.CreatedAt.IsZero() {
		group.CreatedAt = now
	}
	group.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO groups (`+groupColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		group.ID, group.Name, string(childJSON), group.FirstFramePath, group.LastFramePath,
		group.Duration,
		group.CreatedAt.Format(time.RFC3339Nano), group.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	return nil
}

// GetGroup fetches a group by ID, returning ErrNotFound when absent.
func (s *Store) GetGroup(ctx context.Context, id string) (*Group, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = ?`, id)
	group, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return group, nil
}

// ListGroups returns all groups ordered by creation time.
func (s *Store) ListGroups(ctx context.Context) ([]*Group, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+groupColumns+` FROM groups ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

// RenameGroup updates a group's display name.
func (s *Store) RenameGroup(ctx context.Context, id, name string) (*Group, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE groups SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return nil, fmt.Errorf("rename group: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, fmt.Errorf("group %s: %w", id, ErrNotFound)
	}
	return s.GetGroup(ctx, id)
}

// DeleteGroup removes a group record.
func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("group %s: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*VideoNode, error) {
	var node VideoNode
	var createdAt, updatedAt string
	err := row.Scan(
		&node.ID, &node.Name, &node.VideoPath, &node.FirstFramePath, &node.LastFramePath,
		&node.Duration, &node.Width, &node.Height, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	node.CreatedAt = parseTimestamp(createdAt)
	node.UpdatedAt = parseTimestamp(updatedAt)
	return &node, nil
}

func scanGroup(row rowScanner) (*Group, error) {
	var group Group
	var childJSON, createdAt, updatedAt string
	err := row.Scan(
		&group.ID, &group.Name, &childJSON, &group.FirstFramePath, &group.LastFramePath,
		&group.Duration, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(childJSON), &group.ChildIDs); err != nil {
		return nil, fmt.Errorf("decode child ids: %w", err)
	}
	group.CreatedAt = parseTimestamp(createdAt)
	group.UpdatedAt = parseTimestamp(updatedAt)
	return &group, nil
}

func parseTimestamp(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
