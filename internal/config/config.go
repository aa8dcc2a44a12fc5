package config

import (
	"fmt"
	"time"

	"github.com/Bennexy/edms-local/internal/gcp"
)

// Driver names for the document store backend.
const (
	DriverFirestore = "firestore"
	DriverMemory    = "memory"
)

// Config holds all service configuration, read from the environment. Every
// load builds a fresh value; nothing here is shared or mutated after Load.
type Config struct {
	ProjectID   string
	StoreDriver string
	BaseFileDir string

	OCRBinary  string
	OCRTimeout time.Duration

	// ArchiveBucket, when set, enables the post-commit GCS mirror.
	ArchiveBucket string

	// WorkflowID, when set, routes background processing through a
	// Workflows execution instead of an in-process goroutine.
	WorkflowID       string
	WorkflowLocation string

	// InboxBucket is the drop-folder watched by the ingest-watcher
	// function.
	InboxBucket string
	// InboxOwnerID is the owner assigned to drop-folder ingests, since no
	// upload transport resolves an identity for them.
	InboxOwnerID string
}

func Load() (*Config, error) {
	cfg := &Config{
		ProjectID:        gcp.GetEnv("PROJECT_ID", ""),
		StoreDriver:      gcp.GetEnv("STORE_DRIVER", DriverFirestore),
		BaseFileDir:      gcp.GetEnv("BASE_FILE_DIR", "/var/lib/edms/files"),
		OCRBinary:        gcp.GetEnv("OCR_BINARY", "ocrmypdf"),
		ArchiveBucket:    gcp.GetEnv("ARCHIVE_BUCKET", ""),
		WorkflowID:       gcp.GetEnv("WORKFLOW_ID", ""),
		WorkflowLocation: gcp.GetEnv("WORKFLOW_LOCATION", "us-central1"),
		InboxBucket:      gcp.GetEnv("INBOX_BUCKET", ""),
		InboxOwnerID:     gcp.GetEnv("INBOX_OWNER_ID", ""),
	}

	timeout, err := time.ParseDuration(gcp.GetEnv("OCR_TIMEOUT", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid OCR_TIMEOUT: %w", err)
	}
	cfg.OCRTimeout = timeout

	switch cfg.StoreDriver {
	case DriverFirestore:
		if cfg.ProjectID == "" {
			return nil, fmt.Errorf("PROJECT_ID environment variable must be set for the firestore driver")
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}
