package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	b, err := NewFileBackend(path)
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}

	// missing snapshot is not an error
	data, err := b.Load(context.Background())
	if err != nil {
		t.Fatalf("Load of missing snapshot: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil data for missing snapshot, got %q", data)
	}

	want := []byte(`{"1":{"chat_id":1,"meta":{},"cards":null}}`)
	if err := b.Save(context.Background(), want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := b.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("round trip mismatch: got %q want %q", got, want)
	}

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the snapshot file, found %d entries", len(entries))
	}
}

func TestFileBackendSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	b, err := NewFileBackend(path)
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}

	if err := b.Save(context.Background(), []byte("first")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := b.Save(context.Background(), []byte("second")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := b.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("expected latest snapshot, got %q", got)
	}
}

func TestNewFileBackendEmptyPath(t *testing.T) {
	if _, err := NewFileBackend(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
