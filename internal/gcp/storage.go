package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/googleapi"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// Archiver mirrors a document's workspace files into a GCS bucket after a
// successful commit. Archiving is best-effort: failures are reported to the
// caller for logging but must never fail the pipeline.
type Archiver struct {
	client *storage.Client
	bucket string
}

func NewArchiver(client *storage.Client, bucket string) *Archiver {
	return &Archiver{client: client, bucket: bucket}
}

// Archive uploads the given local files under <documentID>/<basename>.
// The original is written once and never overwritten; the OCR output is
// replaced so a re-OCR'd artifact wins. Missing paths are skipped.
func (a *Archiver) Archive(ctx context.Context, documentID string, paths ...string) error {
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(4)

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		base := filepath.Base(path)
		object := fmt.Sprintf("%s/%s", documentID, base)
		onlyIfAbsent := base == "original.pdf"
		eg.Go(func() error {
			return a.uploadFile(gctx, path, object, onlyIfAbsent)
		})
	}
	return eg.Wait()
}

func (a *Archiver) uploadFile(ctx context.Context, localPath, destObject string, onlyIfAbsent bool) error {
	const maxRetries = 4
	var backoff = 1 * time.Second
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := func() error {
			reader, err := os.Open(localPath)
			if err != nil {
				return fmt.Errorf("could not open local file %s: %w", localPath, err)
			}
			defer reader.Close()

			writeCtx, cancel := context.WithTimeout(ctx, time.Second*50)
			defer cancel()

			object := a.client.Bucket(a.bucket).Object(destObject)
			if onlyIfAbsent {
				object = object.If(storage.Conditions{DoesNotExist: true})
			}
			writer := object.NewWriter(writeCtx)

			if _, err := io.Copy(writer, reader); err != nil {
				_ = writer.Close()
				return fmt.Errorf("io.Copy to GCS failed: %w", err)
			}
			if err := writer.Close(); err != nil {
				return fmt.Errorf("failed to finalize GCS write: %w", err)
			}
			return nil
		}()

		if err == nil {
			return nil
		}
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == 412 {
			// Precondition failed: the object already exists, which is the
			// expected outcome for an already-archived original.
			return nil
		}

		lastErr = err
		slog.Warn(
			"Archive upload failed, will retry.",
			"gcsObject", destObject,
			"attempt", i+1,
			"maxRetries", maxRetries,
			"backoff", backoff.String(),
			"error", err,
		)

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("upload for %s failed after all retries: %w", destObject, lastErr)
}
