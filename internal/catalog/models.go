package catalog

import "time"

// VideoNode is one uploaded clip with its stored file, extracted frames, and
// probe metadata.
type VideoNode struct {
	ID             string
	Name           string
	VideoPath      string
	FirstFramePath string
	LastFramePath  string
	Duration       float64
	Width          int
	Height         int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Group is a named ordered sequence of child nodes. Children may themselves
// be groups; expansion happens at export time. The representative frame
// paths are borrowed from the first and last child so the editor can render
// the group's knobs.
type Group struct {
	ID             string
	Name           string
	ChildIDs       []string
	FirstFramePath string
	LastFramePath  string
	Duration       float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
