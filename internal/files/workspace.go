// Package files owns the on-disk layout of ingested documents: one
// directory per document id holding the original upload and, once OCR has
// run, its sibling OCR output. The directory is exclusively owned by that
// document's processing path.
package files

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	originalName = "original.pdf"
	ocrName      = "ocr.pdf"
)

type Workspace struct {
	baseDir string
}

func NewWorkspace(baseDir string) (*Workspace, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("base file directory must be set")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base file directory %s: %w", baseDir, err)
	}
	return &Workspace{baseDir: baseDir}, nil
}

// Dir returns the per-document directory.
func (w *Workspace) Dir(documentID string) string {
	return filepath.Join(w.baseDir, documentID)
}

// OriginalPath returns the path of the uploaded PDF.
func (w *Workspace) OriginalPath(documentID string) string {
	return filepath.Join(w.Dir(documentID), originalName)
}

// OCRPath returns the path the OCR output is written to, next to the
// original.
func (w *Workspace) OCRPath(documentID string) string {
	return filepath.Join(w.Dir(documentID), ocrName)
}

// HasOCROutput reports whether a previous OCR pass left its output behind.
// This is the cheap idempotency short-circuit consulted before invoking the
// engine again.
func (w *Workspace) HasOCROutput(documentID string) bool {
	info, err := os.Stat(w.OCRPath(documentID))
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// SaveOriginal durably writes the uploaded bytes. The write goes through a
// temp file and a rename so a crash never leaves a partial original behind.
func (w *Workspace) SaveOriginal(documentID string, data []byte) (string, error) {
	dir := w.Dir(documentID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create document directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, originalName+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to write original: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to finalize original: %w", err)
	}

	dest := w.OriginalPath(documentID)
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to move original into place: %w", err)
	}
	return dest, nil
}

// Remove deletes the document directory and everything in it. Cleanup is
// always explicit; nothing here relies on finalizers.
func (w *Workspace) Remove(documentID string) error {
	return os.RemoveAll(w.Dir(documentID))
}
