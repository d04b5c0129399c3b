package api

import (
	"reloop/internal/export"
	"reloop/internal/similarity"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// NodeView describes a video node in a transport-friendly format. File
// locations are exposed as /media/ URLs rather than filesystem paths.
type NodeView struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	VideoURL      string  `json:"video_url"`
	FirstFrameURL string  `json:"first_frame_url"`
	LastFrameURL  string  `json:"last_frame_url"`
	Duration      float64 `json:"duration"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	CreatedAt     string  `json:"created_at,omitempty"`
	UpdatedAt     string  `json:"updated_at,omitempty"`
}

// GroupView describes a node group.
type GroupView struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	ChildIDs      []string `json:"child_ids"`
	FirstFrameURL string   `json:"first_frame_url"`
	LastFrameURL  string   `json:"last_frame_url"`
	Duration      float64  `json:"duration"`
	CreatedAt     string   `json:"created_at,omitempty"`
	UpdatedAt     string   `json:"updated_at,omitempty"`
}

// NodeListResponse wraps a collection of nodes.
type NodeListResponse struct {
	Nodes []NodeView `json:"nodes"`
}

// GroupListResponse wraps a collection of groups.
type GroupListResponse struct {
	Groups []GroupView `json:"groups"`
}

// RenameRequest carries a new display name for a node or group.
type RenameRequest struct {
	Name string `json:"name"`
}

// CreateGroupRequest creates a group from an ordered child sequence. Children
// may be nodes or other groups.
type CreateGroupRequest struct {
	Name     string   `json:"name"`
	ChildIDs []string `json:"child_ids"`
}

// CompatibilityResponse answers a compatibility query for one knob of one
// node.
type CompatibilityResponse struct {
	QueryNodeID string             `json:"query_node_id"`
	QuerySide   string             `json:"query_side"`
	Threshold   float64            `json:"threshold"`
	Compatible  []similarity.Match `json:"compatible"`
}

// MatrixResponse is the full directed score matrix.
type MatrixResponse struct {
	Matrix map[string]map[string]float64 `json:"matrix"`
}

// ExportRequest describes an arrangement to flatten.
type ExportRequest struct {
	Cycles []export.Cycle `json:"cycles"`
}

// DependencyStatus captures availability of an external binary.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// EngineStatus summarizes the similarity engine.
type EngineStatus struct {
	Nodes   int `json:"nodes"`
	Entries int `json:"entries"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	LibraryDir   string             `json:"library_dir"`
	CatalogPath  string             `json:"catalog_path"`
	MatrixPath   string             `json:"matrix_path"`
	LockFilePath string             `json:"lock_file_path"`
	NodeCount    int                `json:"node_count"`
	GroupCount   int                `json:"group_count"`
	Engine       EngineStatus       `json:"engine"`
	Dependencies []DependencyStatus `json:"dependencies"`
}
