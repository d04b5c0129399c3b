package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"reloop/internal/fileutil"
)

func TestWriteAtomicReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "matrix.json")

	if err := fileutil.WriteAtomic(path, []byte(`{"a":{}}`), 0o644); err != nil {
		t.Fatalf("first WriteAtomic failed: %v", err)
	}
	if err := fileutil.WriteAtomic(path, []byte(`{"a":{"b":0.5}}`), 0o644); err != nil {
		t.Fatalf("second WriteAtomic failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	if string(data) != `{"a":{"b":0.5}}` {
		t.Fatalf("unexpected content: %s", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, found %d entries", len(entries))
	}
}
