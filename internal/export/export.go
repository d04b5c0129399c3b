// Package export flattens arrangements of clips and groups into an ordered
// play list with cumulative timestamps.
package export

import (
	"errors"
	"fmt"
	"math"

	"reloop/internal/catalog"
)

// ErrUnknownNode indicates a referenced ID is neither a video node nor a
// group.
var ErrUnknownNode = errors.New("unknown node")

// ErrGroupCycle indicates a group ultimately contains itself.
var ErrGroupCycle = errors.New("group membership cycle")

// Cycle is one loop of the arrangement: an ordered node sequence played
// Repeat times.
type Cycle struct {
	NodeIDs []string `json:"node_ids"`
	Repeat  int      `json:"repeat"`
}

// Entry is one flattened playback step.
type Entry struct {
	NodeID      string  `json:"node_id"`
	Name        string  `json:"name"`
	VideoPath   string  `json:"video_path"`
	Duration    float64 `json:"duration"`
	CycleIndex  int     `json:"cycle_index"`
	RepeatIndex int     `json:"repeat_index"`
}

// Segment places one entry on the cumulative timeline.
type Segment struct {
	NodeID      string  `json:"node_id"`
	Name        string  `json:"name"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	CycleIndex  int     `json:"cycle_index"`
	RepeatIndex int     `json:"repeat_index"`
}

// Result is the flattened arrangement.
type Result struct {
	Entries       []Entry   `json:"entries"`
	TotalDuration float64   `json:"total_duration"`
	Timeline      []Segment `json:"timeline"`
}

// Flatten expands every cycle into its constituent video nodes, recursively
// resolving groups, and lays the result on a cumulative timeline. Timestamps
// are rounded to 4 decimal places.
func Flatten(cycles []Cycle, nodes map[string]*catalog.VideoNode, groups map[string]*catalog.Group) (*Result, error) {
	result := &Result{
		Entries:  make([]Entry, 0),
		Timeline: make([]Segment, 0),
	}

	cursor := 0.0
	for cycleIdx, cycle := range cycles {
		repeat := cycle.Repeat
		if repeat < 1 {
			repeat = 1
		}
		for repeatIdx := 0; repeatIdx < repeat; repeatIdx++ {
			for _, nodeID := range cycle.NodeIDs {
				expanded, err := expand(nodeID, nodes, groups, nil)
				if err != nil {
					return nil, err
				}
				for _, node := range expanded {
					result.Entries = append(result.Entries, Entry{
						NodeID:      node.ID,
						Name:        node.Name,
						VideoPath:   node.VideoPath,
						Duration:    node.Duration,
						CycleIndex:  cycleIdx,
						RepeatIndex: repeatIdx,
					})
					result.Timeline = append(result.Timeline, Segment{
						NodeID:      node.ID,
						Name:        node.Name,
						Start:       round4(cursor),
						End:         round4(cursor + node.Duration),
						CycleIndex:  cycleIdx,
						RepeatIndex: repeatIdx,
					})
					cursor += node.Duration
				}
			}
		}
	}

	result.TotalDuration = round4(cursor)
	return result, nil
}

// expand recursively resolves a node ID to its constituent video nodes,
// guarding against cyclic group membership.
func expand(nodeID string, nodes map[string]*catalog.VideoNode, groups map[string]*catalog.Group, trail []string) ([]*catalog.VideoNode, error) {
	if group, ok := groups[nodeID]; ok {
		for _, seen := range trail {
			if seen == nodeID {
				return nil, fmt.Errorf("%w: group %s contains itself", ErrGroupCycle, nodeID)
			}
		}
		trail = append(trail, nodeID)

		var expanded []*catalog.VideoNode
		for _, childID := range group.ChildIDs {
			children, err := expand(childID, nodes, groups, trail)
			if err != nil {
				return nil, err
			}
			expanded = append(expanded, children...)
		}
		return expanded, nil
	}
	if node, ok := nodes[nodeID]; ok {
		return []*catalog.VideoNode{node}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownNode, nodeID)
}

func round4(value float64) float64 {
	return math.Round(value*10000) / 10000
}
