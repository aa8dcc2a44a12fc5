package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/Bennexy/edms-local/internal/extract"
	"github.com/Bennexy/edms-local/internal/files"
	"github.com/Bennexy/edms-local/internal/language"
	"github.com/Bennexy/edms-local/internal/ocr"
	"github.com/Bennexy/edms-local/internal/services"
	"github.com/Bennexy/edms-local/internal/store"
)

type stubEngine struct{}

func (stubEngine) Run(_ context.Context, _, dest string, _ language.Language, _, _ bool) error {
	return os.WriteFile(dest, []byte("%PDF- ocr output"), 0o644)
}

type stubExtractor struct{ pages []string }

func (s stubExtractor) Pages(string) ([]string, error) { return s.pages, nil }

func newTestRouter(t *testing.T) *http.ServeMux {
	t.Helper()
	ws, err := files.NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	svc := services.NewDocumentService(store.NewMemory(), ws, stubEngine{}, stubExtractor{
		pages: []string{"the yearly tax invoice from the office"},
	})
	return New(svc).Router()
}

func multipartUpload(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, mw.FormDataContentType()
}

func doUpload(t *testing.T, router *http.ServeMux, owner, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartUpload(t, filename, data)
	req := httptest.NewRequest(http.MethodPost, "/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	if owner != "" {
		req.Header.Set("X-Owner-ID", owner)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestUploadRequiresOwner(t *testing.T) {
	router := newTestRouter(t)
	rr := doUpload(t, router, "", "scan.pdf", []byte("%PDF-1.4"))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestUploadRejectsNonPDF(t *testing.T) {
	router := newTestRouter(t)
	rr := doUpload(t, router, "alice", "scan.pdf", []byte("plain text"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestUploadProcessSearchDelete(t *testing.T) {
	router := newTestRouter(t)

	rr := doUpload(t, router, "alice", "scan.pdf", []byte("%PDF-1.4 content"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, want 201: %s", rr.Code, rr.Body)
	}
	var uploaded struct {
		ID       string `json:"id"`
		Filename string `json:"filename"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &uploaded); err != nil {
		t.Fatalf("bad upload response: %v", err)
	}
	if uploaded.ID == "" || uploaded.Filename != "scan.pdf" {
		t.Fatalf("unexpected upload response: %+v", uploaded)
	}

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/files/%s/process", uploaded.ID), nil)
	req.Header.Set("X-Owner-ID", "alice")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("process status = %d, want 200: %s", rr.Code, rr.Body)
	}
	var processed struct {
		Language  string `json:"language"`
		PageCount int    `json:"pageCount"`
		OCRRan    bool   `json:"ocrRan"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &processed); err != nil {
		t.Fatalf("bad process response: %v", err)
	}
	if !processed.OCRRan || processed.PageCount != 1 || processed.Language != "en" {
		t.Fatalf("unexpected process response: %+v", processed)
	}

	req = httptest.NewRequest(http.MethodGet, "/files/search?text=tax+invoice", nil)
	req.Header.Set("X-Owner-ID", "alice")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("search status = %d, want 200: %s", rr.Code, rr.Body)
	}
	var ids []string
	if err := json.Unmarshal(rr.Body.Bytes(), &ids); err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != uploaded.ID {
		t.Fatalf("search = %v, want [%s]", ids, uploaded.ID)
	}

	req = httptest.NewRequest(http.MethodDelete, "/files/"+uploaded.ID, nil)
	req.Header.Set("X-Owner-ID", "alice")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/files/"+uploaded.ID, nil)
	req.Header.Set("X-Owner-ID", "alice")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", rr.Code)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/files/search", nil)
	req.Header.Set("X-Owner-ID", "alice")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestSetLanguageValidation(t *testing.T) {
	router := newTestRouter(t)
	rr := doUpload(t, router, "alice", "scan.pdf", []byte("%PDF-1.4"))
	var uploaded struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &uploaded); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/files/"+uploaded.ID+"/language",
		strings.NewReader(`{"language":"klingon"}`))
	req.Header.Set("X-Owner-ID", "alice")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rr.Code, rr.Body)
	}

	req = httptest.NewRequest(http.MethodPost, "/files/"+uploaded.ID+"/language",
		strings.NewReader(`{"language":"german"}`))
	req.Header.Set("X-Owner-ID", "alice")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body)
	}
	if !strings.Contains(rr.Body.String(), `"de"`) {
		t.Fatalf("unexpected body %s", rr.Body)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", services.ErrInvalidFormat), http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", services.ErrUnknownLanguage), http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", store.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("wrap: %w", ocr.ErrEngine), http.StatusBadGateway},
		{fmt.Errorf("wrap: %w", extract.ErrExtraction), http.StatusUnprocessableEntity},
		{fmt.Errorf("wrap: %w", store.ErrPersistence), http.StatusInternalServerError},
		{fmt.Errorf("something else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Fatalf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
