package similarity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"reloop/internal/fileutil"
)

// Store persists the compatibility matrix as a single JSON document: outer
// keys are trailing-frame owners, inner keys leading-frame owners, values
// the rounded scores. Every mutation rewrites the whole file atomically.
type Store struct {
	path string
}

// NewStore creates a store writing to the given path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted matrix. A missing file yields an empty matrix; a
// corrupt file is an error so the operator can decide whether to discard it.
func (s *Store) Load() (map[string]map[string]float64, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]map[string]float64), nil
		}
		return nil, fmt.Errorf("read matrix file: %w", err)
	}

	matrix := make(map[string]map[string]float64)
	if err := json.Unmarshal(data, &matrix); err != nil {
		return nil, fmt.Errorf("decode matrix file %s: %w", s.path, err)
	}
	for id, row := range matrix {
		if row == nil {
			matrix[id] = make(map[string]float64)
		}
	}
	return matrix, nil
}

// Save writes the full matrix, replacing any previous contents via a
// temp-file rename so a crash mid-write cannot corrupt the file.
func (s *Store) Save(matrix map[string]map[string]float64) error {
	data, err := json.Marshal(matrix)
	if err != nil {
		return fmt.Errorf("encode matrix: %w", err)
	}
	if err := fileutil.WriteAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write matrix file: %w", err)
	}
	return nil
}
