// Package handler is the thin HTTP glue over the document service. Auth is
// external: requests arrive with the owner identity already resolved into
// the X-Owner-ID header by the fronting proxy.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Bennexy/edms-local/internal/extract"
	"github.com/Bennexy/edms-local/internal/models"
	"github.com/Bennexy/edms-local/internal/ocr"
	"github.com/Bennexy/edms-local/internal/services"
	"github.com/Bennexy/edms-local/internal/store"
)

const ownerHeader = "X-Owner-ID"

// maxUploadBytes bounds a single PDF upload.
const maxUploadBytes = 256 << 20

type API struct {
	svc *services.DocumentService
}

func New(svc *services.DocumentService) *API {
	return &API{svc: svc}
}

// Router wires all routes onto a fresh mux.
func (a *API) Router() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /files/upload", a.withOwner(a.upload))
	mux.HandleFunc("POST /files/async_upload", a.withOwner(a.asyncUpload))
	mux.HandleFunc("POST /files/{id}/process", a.withOwner(a.process))
	mux.HandleFunc("GET /files", a.withOwner(a.list))
	mux.HandleFunc("GET /files/search", a.withOwner(a.search))
	mux.HandleFunc("GET /files/{id}", a.withOwner(a.get))
	mux.HandleFunc("GET /files/{id}/text", a.withOwner(a.getWithText))
	mux.HandleFunc("GET /files/{id}/language", a.withOwner(a.detectLanguage))
	mux.HandleFunc("POST /files/{id}/language", a.withOwner(a.setLanguage))
	mux.HandleFunc("DELETE /files/{id}", a.withOwner(a.delete))
	mux.HandleFunc("POST /internal/process", a.processTask)
	return mux
}

type ownerHandler func(w http.ResponseWriter, r *http.Request, ownerID string)

func (a *API) withOwner(h ownerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := r.Header.Get(ownerHeader)
		if owner == "" {
			http.Error(w, "missing owner identity", http.StatusUnauthorized)
			return
		}
		h(w, r, owner)
	}
}

func (a *API) upload(w http.ResponseWriter, r *http.Request, ownerID string) {
	doc, ok := a.ingestUpload(w, r, ownerID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, uploadView(doc))
}

// asyncUpload ingests, then schedules processing as a deferred task and
// returns immediately.
func (a *API) asyncUpload(w http.ResponseWriter, r *http.Request, ownerID string) {
	doc, ok := a.ingestUpload(w, r, ownerID)
	if !ok {
		return
	}

	task := models.ProcessTask{
		OwnerID:    ownerID,
		DocumentID: doc.ID,
		ForceOCR:   boolQuery(r, "force"),
		SkipText:   boolQuery(r, "skipText"),
	}
	if err := a.svc.ProcessAsync(r.Context(), task); err != nil {
		slog.Error("Failed to schedule background processing.", "documentId", doc.ID, "error", err)
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, uploadView(doc))
}

func (a *API) ingestUpload(w http.ResponseWriter, r *http.Request, ownerID string) (*models.Document, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "could not parse multipart form", http.StatusBadRequest)
		return nil, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "could not read upload", http.StatusBadRequest)
		return nil, false
	}

	filename := r.FormValue("filename")
	if filename == "" {
		filename = header.Filename
	}

	doc, err := a.svc.Ingest(r.Context(), ownerID, data, filename)
	if err != nil {
		a.writeError(w, err)
		return nil, false
	}
	return doc, true
}

func (a *API) process(w http.ResponseWriter, r *http.Request, ownerID string) {
	result, err := a.svc.Process(r.Context(), ownerID, r.PathValue("id"), services.ProcessOptions{
		ForceOCR: boolQuery(r, "force"),
		SkipText: boolQuery(r, "skipText"),
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, processView(result))
}

// processTask is the worker endpoint the background workflow calls. The
// owner travels inside the task payload, which only the scheduler can
// produce.
func (a *API) processTask(w http.ResponseWriter, r *http.Request) {
	var task models.ProcessTask
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		http.Error(w, "could not parse task", http.StatusBadRequest)
		return
	}
	result, err := a.svc.Process(r.Context(), task.OwnerID, task.DocumentID, services.ProcessOptions{
		ForceOCR: task.ForceOCR,
		SkipText: task.SkipText,
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, processView(result))
}

func (a *API) get(w http.ResponseWriter, r *http.Request, ownerID string) {
	doc, err := a.svc.GetByID(r.Context(), ownerID, r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.DocumentView(doc))
}

func (a *API) getWithText(w http.ResponseWriter, r *http.Request, ownerID string) {
	doc, rec, err := a.svc.GetWithText(r.Context(), ownerID, r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.DocumentTextView(doc, rec))
}

func (a *API) list(w http.ResponseWriter, r *http.Request, ownerID string) {
	if boolQuery(r, "withText") {
		pairs, err := a.svc.ListAllWithText(r.Context(), ownerID)
		if err != nil {
			a.writeError(w, err)
			return
		}
		out := make([]models.DocumentTextResponse, 0, len(pairs))
		for _, p := range pairs {
			out = append(out, models.DocumentTextView(p.Document, p.Text))
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	docs, err := a.svc.ListAll(r.Context(), ownerID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	out := make([]models.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, models.DocumentView(doc))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) search(w http.ResponseWriter, r *http.Request, ownerID string) {
	query := r.URL.Query().Get("text")
	if query == "" {
		http.Error(w, "missing text parameter", http.StatusBadRequest)
		return
	}
	ids, err := a.svc.FindByText(r.Context(), ownerID, query)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

func (a *API) setLanguage(w http.ResponseWriter, r *http.Request, ownerID string) {
	var req models.SetLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "could not parse request body", http.StatusBadRequest)
		return
	}
	lang, err := a.svc.SetLanguage(r.Context(), ownerID, r.PathValue("id"), req.Language)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"language": lang.Code})
}

func (a *API) detectLanguage(w http.ResponseWriter, r *http.Request, ownerID string) {
	lang, err := a.svc.DetectLanguage(r.Context(), ownerID, r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"language": lang.Code})
}

func (a *API) delete(w http.ResponseWriter, r *http.Request, ownerID string) {
	if err := a.svc.Delete(r.Context(), ownerID, r.PathValue("id")); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), StatusFor(err))
}

// StatusFor maps the error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidFormat), errors.Is(err, services.ErrUnknownLanguage):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ocr.ErrEngine):
		return http.StatusBadGateway
	case errors.Is(err, extract.ErrExtraction):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func uploadView(doc *models.Document) models.UploadResponse {
	return models.UploadResponse{
		ID:          doc.ID,
		Filename:    doc.Filename,
		StoragePath: doc.StoragePath,
		PageCount:   doc.PageCount,
	}
}

func processView(result *services.ProcessResult) models.ProcessResponse {
	return models.ProcessResponse{
		ID:           result.Document.ID,
		Language:     result.Document.Language,
		PageCount:    len(result.Text.Pages),
		OCRRan:       result.OCRRan,
		OCRSeconds:   result.OCRDuration.Seconds(),
		IndexSeconds: result.IndexDuration.Seconds(),
		TotalSeconds: result.TotalDuration.Seconds(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response.", "error", err)
	}
}

func boolQuery(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}
