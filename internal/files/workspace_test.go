package files

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewWorkspaceRequiresBaseDir(t *testing.T) {
	if _, err := NewWorkspace(""); err == nil {
		t.Fatal("empty base dir must be rejected")
	}
}

func TestNewWorkspaceCreatesBaseDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "files")
	if _, err := NewWorkspace(base); err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}
	info, err := os.Stat(base)
	if err != nil || !info.IsDir() {
		t.Fatalf("base dir not created: %v", err)
	}
}

func TestSaveOriginalLayout(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	path, err := ws.SaveOriginal("doc-1", []byte("%PDF-1.4 payload"))
	if err != nil {
		t.Fatalf("SaveOriginal failed: %v", err)
	}
	if path != ws.OriginalPath("doc-1") {
		t.Fatalf("returned path %q, want %q", path, ws.OriginalPath("doc-1"))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading original: %v", err)
	}
	if string(data) != "%PDF-1.4 payload" {
		t.Fatalf("unexpected content %q", data)
	}

	// OCR output lives next to the original, inside the same document dir.
	if filepath.Dir(ws.OCRPath("doc-1")) != filepath.Dir(path) {
		t.Fatal("OCR path must be a sibling of the original")
	}

	// No temp files may survive the rename.
	entries, err := os.ReadDir(ws.Dir("doc-1"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("document dir holds %d entries, want only the original", len(entries))
	}
}

func TestHasOCROutput(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if ws.HasOCROutput("doc-1") {
		t.Fatal("no output yet")
	}

	if _, err := ws.SaveOriginal("doc-1", []byte("%PDF-")); err != nil {
		t.Fatal(err)
	}

	// An empty output file does not count as a usable previous pass.
	if err := os.WriteFile(ws.OCRPath("doc-1"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if ws.HasOCROutput("doc-1") {
		t.Fatal("empty output must not be reused")
	}

	if err := os.WriteFile(ws.OCRPath("doc-1"), []byte("%PDF- ocr"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !ws.HasOCROutput("doc-1") {
		t.Fatal("non-empty output should be detected")
	}
}

func TestRemove(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ws.SaveOriginal("doc-1", []byte("%PDF-")); err != nil {
		t.Fatal(err)
	}
	if err := ws.Remove("doc-1"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(ws.Dir("doc-1")); !os.IsNotExist(err) {
		t.Fatal("document dir should be gone")
	}
	// Removing an absent document is not an error.
	if err := ws.Remove("doc-1"); err != nil {
		t.Fatalf("second Remove failed: %v", err)
	}
}
