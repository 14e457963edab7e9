package web

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestReportsEmbedded(t *testing.T) {
	fsys, err := Reports("")
	if err != nil {
		t.Fatalf("Reports failed: %v", err)
	}
	if _, err := fs.Stat(fsys, "index.html"); err != nil {
		t.Errorf("expected embedded index.html: %v", err)
	}
}

func TestReportsDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "custom.html"), []byte("<p>hi</p>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fsys, err := Reports(dir)
	if err != nil {
		t.Fatalf("Reports failed: %v", err)
	}
	if _, err := fs.Stat(fsys, "custom.html"); err != nil {
		t.Errorf("expected custom.html from disk: %v", err)
	}

	if _, err := Reports(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}
