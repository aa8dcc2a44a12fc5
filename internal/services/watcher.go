package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/Bennexy/edms-local/internal/config"
	"github.com/Bennexy/edms-local/internal/models"
)

// GCSEvent is the finalize-event payload for an object landing in the
// inbox bucket.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// Watcher ingests PDFs dropped into a GCS inbox bucket and schedules their
// processing. It is the drop-folder alternative to the upload endpoint.
type Watcher struct {
	storageClient *storage.Client
	svc           *DocumentService
	ownerID       string
	inboxBucket   string
}

func NewWatcher(ctx context.Context, cfg *config.Config) (*Watcher, error) {
	if cfg.InboxBucket == "" {
		return nil, fmt.Errorf("INBOX_BUCKET environment variable must be set")
	}
	if cfg.InboxOwnerID == "" {
		return nil, fmt.Errorf("INBOX_OWNER_ID environment variable must be set")
	}

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	svc, err := NewFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Watcher{
		storageClient: storageClient,
		svc:           svc,
		ownerID:       cfg.InboxOwnerID,
		inboxBucket:   cfg.InboxBucket,
	}, nil
}

// Process handles one dropped object: download to a scoped temp dir,
// ingest, schedule background OCR. Non-PDF objects are skipped cleanly.
func (w *Watcher) Process(ctx context.Context, e GCSEvent) error {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)

	if e.Bucket != w.inboxBucket {
		logCtx.Info("Ignoring object outside the inbox bucket.")
		return nil
	}
	if !strings.HasSuffix(strings.ToLower(e.Name), ".pdf") {
		logCtx.Info("Ignoring non-PDF object.")
		return nil
	}

	tempDir, err := os.MkdirTemp("", "edms-inbox-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	localPath := filepath.Join(tempDir, "dropped.pdf")
	if err := w.streamObject(ctx, e.Bucket, e.Name, localPath); err != nil {
		logCtx.Error("Failed to download dropped object.", "error", err)
		return err
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("failed to read downloaded object: %w", err)
	}

	doc, err := w.svc.Ingest(ctx, w.ownerID, data, filepath.Base(e.Name))
	if err != nil {
		logCtx.Error("Failed to ingest dropped object.", "error", err)
		return err
	}
	logCtx = logCtx.With("documentId", doc.ID)

	task := models.ProcessTask{OwnerID: w.ownerID, DocumentID: doc.ID, SkipText: true}
	if err := w.svc.ProcessAsync(ctx, task); err != nil {
		logCtx.Error("Failed to schedule processing for dropped object.", "error", err)
		return err
	}

	logCtx.Info("Ingested dropped object and scheduled processing.")
	return nil
}

func (w *Watcher) streamObject(ctx context.Context, bucket, object, destPath string) error {
	reader, err := w.storageClient.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, object, err)
	}
	defer reader.Close()

	localFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file at %s: %w", destPath, err)
	}
	defer localFile.Close()

	if _, err := io.Copy(localFile, reader); err != nil {
		return fmt.Errorf("failed to copy GCS object to local file: %w", err)
	}
	return nil
}
