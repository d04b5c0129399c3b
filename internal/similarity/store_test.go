package similarity_test

import (
	"os"
	"path/filepath"
	"testing"

	"reloop/internal/similarity"
)

func TestStoreLoadMissingFileReturnsEmpty(t *testing.T) {
	store := similarity.NewStore(filepath.Join(t.TempDir(), "similarity.json"))
	matrix, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(matrix) != 0 {
		t.Fatalf("expected empty matrix, got %d rows", len(matrix))
	}
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "similarity.json")
	store := similarity.NewStore(path)

	matrix := map[string]map[string]float64{
		"a": {"a": 1, "b": 0.8123},
		"b": {"a": 0.4567, "b": 1},
	}
	if err := store.Save(matrix); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := similarity.NewStore(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(loaded))
	}
	if loaded["a"]["b"] != 0.8123 || loaded["b"]["a"] != 0.4567 {
		t.Fatalf("scores did not round-trip: %#v", loaded)
	}
}

func TestStoreLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "similarity.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if _, err := similarity.NewStore(path).Load(); err == nil {
		t.Fatal("expected error for corrupt matrix file")
	}
}
