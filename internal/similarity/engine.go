package similarity

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// DefaultThreshold is the compatibility cutoff applied when a query does not
// supply one.
const DefaultThreshold = 0.75

// Match describes one compatible node returned by a query. Side names the
// knob on the matched node that connects: left for its leading frame, right
// for its trailing frame.
type Match struct {
	NodeID string  `json:"node_id"`
	Side   string  `json:"side"`
	Score  float64 `json:"score"`
}

// WarmResult reports the outcome of a cache warm-up for one node.
type WarmResult struct {
	First    LoadState
	Last     LoadState
	FirstErr error
	LastErr  error
}

// Engine owns the compatibility matrix, the feature cache, and their
// persistence. Construct one per process with New and share it; all methods
// are safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	loader    FrameLoader
	store     *Store
	logger    *slog.Logger
	frameSize int

	matrix   map[string]map[string]float64
	features map[featureKey]*featureEntry
}

// New constructs an engine, eagerly loading any persisted matrix so queries
// work immediately. Feature cache warm-up for previously registered nodes
// happens separately via Warm.
func New(loader FrameLoader, store *Store, frameSize int, logger *slog.Logger) (*Engine, error) {
	if loader == nil {
		return nil, fmt.Errorf("similarity engine requires a frame loader")
	}
	if store == nil {
		return nil, fmt.Errorf("similarity engine requires a store")
	}
	if logger == nil {
		logger = slog.Default()
	}

	matrix, err := store.Load()
	if err != nil {
		return nil, err
	}

	return &Engine{
		loader:    loader,
		store:     store,
		logger:    logger.With(slog.String("component", "similarity")),
		frameSize: frameSize,
		matrix:    matrix,
		features:  make(map[featureKey]*featureEntry),
	}, nil
}

// Register loads the node's leading and trailing frame features and scores
// every ordered pair involving the node that is not already present. Pairs
// between pre-existing nodes are never touched: they were computed when
// those nodes registered, and existing entries are never recomputed.
//
// Registration is all-or-nothing. Both features must load before any score
// is written, and the new entries are staged and merged only after the whole
// pairwise loop finishes, so a failure cannot leave a partially populated
// matrix.
func (e *Engine) Register(nodeID, firstPath, lastPath string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	first, err := e.fetchFeature(nodeID, SideFirst, firstPath)
	if err != nil {
		return fmt.Errorf("%w: node %s first frame: %w", ErrFeatureUnavailable, nodeID, err)
	}
	last, err := e.fetchFeature(nodeID, SideLast, lastPath)
	if err != nil {
		return fmt.Errorf("%w: node %s last frame: %w", ErrFeatureUnavailable, nodeID, err)
	}

	// Both loads succeeded; commit the features. Cached entries are never
	// replaced.
	e.commitFeature(nodeID, SideFirst, first)
	e.commitFeature(nodeID, SideLast, last)

	ids := make([]string, 0, len(e.matrix)+1)
	for id := range e.matrix {
		ids = append(ids, id)
	}
	if _, known := e.matrix[nodeID]; !known {
		ids = append(ids, nodeID)
	}
	sort.Strings(ids)

	staged := make(map[string]map[string]float64)
	computed := 0
	for _, a := range ids {
		for _, b := range ids {
			if _, exists := e.matrix[a][b]; exists {
				continue
			}
			if a != nodeID && b != nodeID {
				// Pairs between pre-existing nodes were computed when they
				// registered.
				continue
			}
			aLast := e.cachedFrame(a, SideLast)
			bFirst := e.cachedFrame(b, SideFirst)
			if aLast == nil || bFirst == nil {
				continue
			}
			if staged[a] == nil {
				staged[a] = make(map[string]float64)
			}
			staged[a][b] = round4(Score(aLast, bFirst))
			computed++
		}
	}

	if e.matrix[nodeID] == nil {
		e.matrix[nodeID] = make(map[string]float64)
	}
	for a, row := range staged {
		if e.matrix[a] == nil {
			e.matrix[a] = make(map[string]float64)
		}
		for b, score := range row {
			e.matrix[a][b] = score
		}
	}

	if err := e.persistLocked(); err != nil {
		return err
	}

	e.logger.Info("node registered",
		slog.String("node_id", nodeID),
		slog.Int("pairs_computed", computed),
		slog.Int("nodes", len(e.matrix)))
	return nil
}

// Warm re-loads the node's frame features after a process restart so future
// registrations can score against it. Load failures are soft: they are
// recorded and reported but never fail the warm-up, because the node's
// persisted matrix entries remain valid without its features.
func (e *Engine) Warm(nodeID, firstPath, lastPath string) WarmResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	var result WarmResult
	result.First, result.FirstErr = e.warmFeature(nodeID, SideFirst, firstPath)
	result.Last, result.LastErr = e.warmFeature(nodeID, SideLast, lastPath)

	if result.FirstErr != nil || result.LastErr != nil {
		e.logger.Warn("feature warm-up incomplete",
			slog.String("node_id", nodeID),
			slog.String("first", result.First.String()),
			slog.String("last", result.Last.String()))
	}
	return result
}

// Remove deletes the node's matrix row, its column entry in every remaining
// row, and its cached features, then persists. Remaining entries are never
// recomputed.
func (e *Engine) Remove(nodeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.matrix, nodeID)
	for _, row := range e.matrix {
		delete(row, nodeID)
	}
	delete(e.features, featureKey{nodeID: nodeID, side: SideFirst})
	delete(e.features, featureKey{nodeID: nodeID, side: SideLast})

	if err := e.persistLocked(); err != nil {
		return err
	}

	e.logger.Info("node removed", slog.String("node_id", nodeID), slog.Int("nodes", len(e.matrix)))
	return nil
}

// CompatibleTargets returns the nodes whose leading frame matches sourceID's
// trailing frame at or above threshold; matches connect on their left knob.
func (e *Engine) CompatibleTargets(sourceID string, threshold float64) ([]Match, error) {
	if threshold < 0 || threshold > 1 {
		return nil, ErrThreshold
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	matches := make([]Match, 0)
	for targetID, score := range e.matrix[sourceID] {
		if score >= threshold {
			matches = append(matches, Match{NodeID: targetID, Side: KnobLeft, Score: score})
		}
	}
	sortMatches(matches)
	return matches, nil
}

// CompatibleSources returns the nodes whose trailing frame matches
// targetID's leading frame at or above threshold; matches connect on their
// right knob. This scans every row since the matrix has no column index.
func (e *Engine) CompatibleSources(targetID string, threshold float64) ([]Match, error) {
	if threshold < 0 || threshold > 1 {
		return nil, ErrThreshold
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	matches := make([]Match, 0)
	for sourceID, row := range e.matrix {
		if score, ok := row[targetID]; ok && score >= threshold {
			matches = append(matches, Match{NodeID: sourceID, Side: KnobRight, Score: score})
		}
	}
	sortMatches(matches)
	return matches, nil
}

// Matrix returns a deep copy of the full matrix.
func (e *Engine) Matrix() map[string]map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	clone := make(map[string]map[string]float64, len(e.matrix))
	for a, row := range e.matrix {
		inner := make(map[string]float64, len(row))
		for b, score := range row {
			inner[b] = score
		}
		clone[a] = inner
	}
	return clone
}

// FeatureState reports what the cache knows about one feature key, along
// with the recorded error for failed loads.
func (e *Engine) FeatureState(nodeID string, side Side) (LoadState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.features[featureKey{nodeID: nodeID, side: side}]
	if !ok {
		return LoadStateAbsent, nil
	}
	if entry.frame == nil {
		return LoadStateFailed, entry.err
	}
	return LoadStateLoaded, nil
}

// Stats reports the number of registered nodes and stored pair scores.
func (e *Engine) Stats() (nodes, entries int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, row := range e.matrix {
		entries += len(row)
	}
	return len(e.matrix), entries
}

// fetchFeature returns the cached frame for the key or loads it without
// committing to the cache. Loads are hard failures here; Register decides
// when to commit.
func (e *Engine) fetchFeature(nodeID string, side Side, path string) (*Frame, error) {
	if entry, ok := e.features[featureKey{nodeID: nodeID, side: side}]; ok && entry.frame != nil {
		return entry.frame, nil
	}
	return e.loader.LoadFrame(path, e.frameSize)
}

func (e *Engine) commitFeature(nodeID string, side Side, frame *Frame) {
	key := featureKey{nodeID: nodeID, side: side}
	if entry, ok := e.features[key]; ok && entry.frame != nil {
		return
	}
	e.features[key] = &featureEntry{frame: frame}
}

// warmFeature loads a feature if it is not already cached, absorbing
// failures as recorded soft misses.
func (e *Engine) warmFeature(nodeID string, side Side, path string) (LoadState, error) {
	key := featureKey{nodeID: nodeID, side: side}
	if entry, ok := e.features[key]; ok && entry.frame != nil {
		return LoadStateLoaded, nil
	}

	frame, err := e.loader.LoadFrame(path, e.frameSize)
	if err != nil {
		e.features[key] = &featureEntry{err: err}
		return LoadStateFailed, err
	}
	e.features[key] = &featureEntry{frame: frame}
	return LoadStateLoaded, nil
}

func (e *Engine) cachedFrame(nodeID string, side Side) *Frame {
	if entry, ok := e.features[featureKey{nodeID: nodeID, side: side}]; ok {
		return entry.frame
	}
	return nil
}

func (e *Engine) persistLocked() error {
	if err := e.store.Save(e.matrix); err != nil {
		e.logger.Error("matrix persistence failed", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func sortMatches(matches []Match) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].NodeID < matches[j].NodeID
	})
}
