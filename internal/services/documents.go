package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/Bennexy/edms-local/internal/extract"
	"github.com/Bennexy/edms-local/internal/files"
	"github.com/Bennexy/edms-local/internal/gcp"
	"github.com/Bennexy/edms-local/internal/language"
	"github.com/Bennexy/edms-local/internal/models"
	"github.com/Bennexy/edms-local/internal/ocr"
	"github.com/Bennexy/edms-local/internal/store"
)

var (
	// ErrInvalidFormat marks an upload that is not a PDF.
	ErrInvalidFormat = errors.New("invalid file format")
	// ErrUnknownLanguage marks a language value the catalog cannot resolve.
	ErrUnknownLanguage = errors.New("unknown language")
)

var pdfMagic = []byte("%PDF-")

// ProcessOptions are the caller-visible OCR flags. A fresh value is built
// per call; nothing is shared between requests.
type ProcessOptions struct {
	ForceOCR bool
	SkipText bool
}

// ProcessResult reports one OCR-and-index run with per-stage timings.
type ProcessResult struct {
	Document *models.Document
	Text     *models.TextRecord
	// OCRRan is false when a previous OCR output was reused.
	OCRRan           bool
	DetectedLanguage language.Language
	OCRDuration      time.Duration
	IndexDuration    time.Duration
	TotalDuration    time.Duration
}

// DocumentService is the ingestion orchestrator: it validates uploads,
// owns the OCR decision, and commits extraction results through the store.
type DocumentService struct {
	store      store.Store
	workspace  *files.Workspace
	engine     ocr.Engine
	extractor  extract.Extractor
	archiver   *gcp.Archiver
	dispatcher Dispatcher
	locks      *keyedMutex
}

func NewDocumentService(st store.Store, ws *files.Workspace, engine ocr.Engine, extractor extract.Extractor) *DocumentService {
	s := &DocumentService{
		store:     st,
		workspace: ws,
		engine:    engine,
		extractor: extractor,
		locks:     newKeyedMutex(),
	}
	s.dispatcher = &InlineDispatcher{Service: s, Timeout: 15 * time.Minute}
	return s
}

// SetArchiver enables the optional post-commit GCS mirror.
func (s *DocumentService) SetArchiver(a *gcp.Archiver) {
	s.archiver = a
}

// SetDispatcher replaces the default in-process background dispatcher.
func (s *DocumentService) SetDispatcher(d Dispatcher) {
	s.dispatcher = d
}

// Ingest validates and durably stores an upload, then creates the document
// and its empty text record atomically. OCR is deliberately not part of
// this step; callers follow up with Process, synchronously or via
// ProcessAsync.
func (s *DocumentService) Ingest(ctx context.Context, ownerID string, data []byte, filename string) (*models.Document, error) {
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, fmt.Errorf("%w: upload does not start with the PDF magic header", ErrInvalidFormat)
	}

	id := uuid.NewString()
	logCtx := slog.With("documentId", id, "ownerId", ownerID)

	path, err := s.workspace.SaveOriginal(id, data)
	if err != nil {
		return nil, err
	}

	pageCount := 0
	if n, err := api.PageCountFile(path); err != nil {
		logCtx.Warn("Failed to count pages; continuing without a page count.", "error", err)
	} else {
		pageCount = n
	}

	doc := &models.Document{
		ID:          id,
		OwnerID:     ownerID,
		Filename:    normalizeFilename(filename, id),
		PageCount:   pageCount,
		StoragePath: path,
		CreatedOn:   time.Now().UTC(),
	}
	text := models.NewTextRecord(uuid.NewString(), doc)

	if err := s.store.Create(ctx, doc, text); err != nil {
		// No partial success: without metadata the stored file must go too.
		if rmErr := s.workspace.Remove(id); rmErr != nil {
			logCtx.Error("Failed to clean up workspace after create failure.", "error", rmErr)
		}
		return nil, err
	}

	logCtx.Info("Ingested document.", "filename", doc.Filename, "pageCount", pageCount)
	return doc, nil
}

// Process is the OCR-and-index step. Calls for the same document are
// serialized: a run never commits text derived from an OCR output that a
// newer pass has since replaced.
func (s *DocumentService) Process(ctx context.Context, ownerID, documentID string, opts ProcessOptions) (*ProcessResult, error) {
	s.locks.Lock(documentID)
	defer s.locks.Unlock(documentID)

	totalStart := time.Now()
	logCtx := slog.With("documentId", documentID, "ownerId", ownerID)

	doc, rec, err := s.store.GetWithText(ctx, ownerID, documentID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = models.NewTextRecord(uuid.NewString(), doc)
	}

	plan := ocr.Plan(s.workspace.HasOCROutput(documentID), opts.ForceOCR, opts.SkipText)
	result := &ProcessResult{Document: doc}

	if plan.Run {
		ocrStart := time.Now()
		err := s.engine.Run(ctx,
			s.workspace.OriginalPath(documentID),
			s.workspace.OCRPath(documentID),
			doc.ResolvedLanguage(),
			plan.SkipText,
			plan.Force,
		)
		if err != nil {
			logCtx.Error("OCR engine failed.", "error", err)
			return nil, fmt.Errorf("document %s: %w", documentID, err)
		}
		result.OCRRan = true
		result.OCRDuration = time.Since(ocrStart)
	} else {
		logCtx.Info("Reusing existing OCR output.")
	}

	// Text always comes from the OCR output, never from an assumption
	// about what the engine did.
	indexStart := time.Now()
	pages, err := s.extractor.Pages(s.workspace.OCRPath(documentID))
	if err != nil {
		// The OCR output is kept so a retry can go straight to extraction;
		// the text record stays untouched.
		logCtx.Error("Text extraction failed.", "error", err)
		return nil, fmt.Errorf("document %s: %w", documentID, err)
	}

	detected := language.Detect(pages...)
	result.DetectedLanguage = detected

	lang := doc.ResolvedLanguage()
	if doc.Language == "" {
		lang = detected
	}

	rec.SetPages(pages, lang)
	if err := s.store.SaveText(ctx, rec); err != nil {
		return nil, err
	}
	if doc.Language == "" {
		if err := s.store.SetLanguage(ctx, ownerID, documentID, detected.Code); err != nil {
			return nil, err
		}
		doc.Language = detected.Code
	}
	result.IndexDuration = time.Since(indexStart)

	s.archive(ctx, logCtx, documentID)

	result.Text = rec
	result.TotalDuration = time.Since(totalStart)
	logCtx.Info("Processed document.",
		"ocrRan", result.OCRRan,
		"language", doc.Language,
		"pages", len(pages),
		"ocrDuration", result.OCRDuration.String(),
		"indexDuration", result.IndexDuration.String(),
	)
	return result, nil
}

// ProcessAsync schedules Process as a deferred unit of work.
func (s *DocumentService) ProcessAsync(ctx context.Context, task models.ProcessTask) error {
	return s.dispatcher.Dispatch(ctx, task)
}

func (s *DocumentService) GetByID(ctx context.Context, ownerID, id string) (*models.Document, error) {
	return s.store.GetByID(ctx, ownerID, id)
}

func (s *DocumentService) GetWithText(ctx context.Context, ownerID, id string) (*models.Document, *models.TextRecord, error) {
	return s.store.GetWithText(ctx, ownerID, id)
}

func (s *DocumentService) ListAll(ctx context.Context, ownerID string) ([]*models.Document, error) {
	return s.store.ListAll(ctx, ownerID)
}

func (s *DocumentService) ListAllWithText(ctx context.Context, ownerID string) ([]store.DocumentWithText, error) {
	return s.store.ListAllWithText(ctx, ownerID)
}

func (s *DocumentService) FindByText(ctx context.Context, ownerID, query string) ([]string, error) {
	return s.store.FindByText(ctx, ownerID, query)
}

// SetLanguage is the explicit override: it bypasses detection and rebuilds
// the search vector under the new stemming language in the same step.
func (s *DocumentService) SetLanguage(ctx context.Context, ownerID, id, value string) (language.Language, error) {
	lang, err := language.Lookup(value)
	if err != nil {
		return language.Language{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, value)
	}

	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	_, rec, err := s.store.GetWithText(ctx, ownerID, id)
	if err != nil {
		return language.Language{}, err
	}
	if err := s.store.SetLanguage(ctx, ownerID, id, lang.Code); err != nil {
		return language.Language{}, err
	}
	if rec != nil {
		rec.SetLanguage(lang)
		if err := s.store.SaveText(ctx, rec); err != nil {
			return language.Language{}, err
		}
	}
	return lang, nil
}

// DetectLanguage re-runs detection over the stored text without persisting
// anything.
func (s *DocumentService) DetectLanguage(ctx context.Context, ownerID, id string) (language.Language, error) {
	_, rec, err := s.store.GetWithText(ctx, ownerID, id)
	if err != nil {
		return language.Language{}, err
	}
	if rec == nil {
		return language.English, nil
	}
	return language.Detect(rec.Pages...), nil
}

func (s *DocumentService) Delete(ctx context.Context, ownerID, id string) error {
	return s.store.SoftDelete(ctx, ownerID, id)
}

// archive mirrors the workspace files after a successful commit. Failures
// are logged and swallowed: the authoritative copy is local.
func (s *DocumentService) archive(ctx context.Context, logCtx *slog.Logger, documentID string) {
	if s.archiver == nil {
		return
	}
	err := s.archiver.Archive(ctx, documentID,
		s.workspace.OriginalPath(documentID),
		s.workspace.OCRPath(documentID),
	)
	if err != nil {
		logCtx.Warn("Failed to archive document files.", "error", err)
	}
}

// normalizeFilename forces a .pdf suffix and substitutes the document id
// when no name was supplied.
func normalizeFilename(filename, documentID string) string {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return documentID + ".pdf"
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		filename += ".pdf"
	}
	return filename
}
