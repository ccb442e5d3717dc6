package artifact

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAndOpen(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	payload := []byte("png-bytes")
	path, err := store.Write("cmd-abc123", payload)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(path) != "cmd-abc123.png" {
		t.Errorf("artifact file = %q, want cmd-abc123.png", filepath.Base(path))
	}

	rc, err := store.Open("cmd-abc123")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("artifact contents = %q, want %q", got, payload)
	}

	size, err := store.Size("cmd-abc123")
	if err != nil || size != int64(len(payload)) {
		t.Fatalf("Size = %d, %v; want %d, nil", size, err, len(payload))
	}
}

func TestOpenMissingArtifact(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.Open("cmd-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if store.Exists("cmd-missing") {
		t.Error("Exists should be false for missing artifact")
	}
}

func TestWriteOverwritesExisting(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.Write("cmd-1", []byte("old")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := store.Write("cmd-1", []byte("new")); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	rc, err := store.Open("cmd-1")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "new" {
		t.Fatalf("contents = %q, want new", got)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.Write("cmd-1", []byte("data")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".tmp" {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestRemoveAndClear(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := store.Remove("cmd-never-existed"); err != nil {
		t.Fatalf("Remove missing artifact: %v", err)
	}

	for _, id := range []string{"cmd-1", "cmd-2", "cmd-3"} {
		if _, err := store.Write(id, []byte(id)); err != nil {
			t.Fatalf("Write %s: %v", id, err)
		}
	}
	if err := store.Remove("cmd-2"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if store.Exists("cmd-2") {
		t.Error("cmd-2 should be gone")
	}

	removed, err := store.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 2 {
		t.Fatalf("Clear removed %d files, want 2", removed)
	}
	if store.Exists("cmd-1") || store.Exists("cmd-3") {
		t.Error("Clear left artifacts behind")
	}
}
