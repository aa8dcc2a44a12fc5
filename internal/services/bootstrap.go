package services

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"

	"github.com/Bennexy/edms-local/internal/config"
	"github.com/Bennexy/edms-local/internal/extract"
	"github.com/Bennexy/edms-local/internal/files"
	"github.com/Bennexy/edms-local/internal/gcp"
	"github.com/Bennexy/edms-local/internal/ocr"
	"github.com/Bennexy/edms-local/internal/store"
)

// NewFromConfig assembles the document service and its collaborators from
// the environment configuration.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*DocumentService, error) {
	ws, err := files.NewWorkspace(cfg.BaseFileDir)
	if err != nil {
		return nil, err
	}

	engine := ocr.NewCommandEngine(cfg.OCRTimeout)
	engine.Binary = cfg.OCRBinary

	var st store.Store
	switch cfg.StoreDriver {
	case config.DriverMemory:
		st = store.NewMemory()
	case config.DriverFirestore:
		client, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
		if err != nil {
			return nil, err
		}
		st = store.NewFirestore(client)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	svc := NewDocumentService(st, ws, engine, extract.PDFExtractor{})

	if cfg.ArchiveBucket != "" {
		storageClient, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		svc.SetArchiver(gcp.NewArchiver(storageClient, cfg.ArchiveBucket))
	}

	if cfg.WorkflowID != "" {
		execClient, err := gcp.NewExecutionsClient(ctx)
		if err != nil {
			return nil, err
		}
		svc.SetDispatcher(&WorkflowDispatcher{
			Client:           execClient,
			ProjectID:        cfg.ProjectID,
			WorkflowLocation: cfg.WorkflowLocation,
			WorkflowID:       cfg.WorkflowID,
		})
	}

	return svc, nil
}
