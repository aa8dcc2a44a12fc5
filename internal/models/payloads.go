package models

import "time"

// These structs define the JSON payloads exchanged with the upload
// transport and with the background-processing workflow.

// ProcessTask is the deferred unit of work handed to a dispatcher. It
// carries the arguments for a Process call, never a precomputed result.
type ProcessTask struct {
	OwnerID    string `json:"ownerId"`
	DocumentID string `json:"documentId"`
	ForceOCR   bool   `json:"forceOcr"`
	SkipText   bool   `json:"skipText"`
}

// UploadResponse is returned by both the synchronous and the async upload
// endpoints.
type UploadResponse struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	StoragePath string `json:"storagePath"`
	PageCount   int    `json:"pageCount"`
}

// ProcessResponse reports the outcome of an OCR-and-index run, including
// per-stage timings.
type ProcessResponse struct {
	ID           string  `json:"id"`
	Language     string  `json:"language"`
	PageCount    int     `json:"pageCount"`
	OCRRan       bool    `json:"ocrRan"`
	OCRSeconds   float64 `json:"ocrSeconds"`
	IndexSeconds float64 `json:"indexSeconds"`
	TotalSeconds float64 `json:"totalSeconds"`
}

// DocumentResponse is the metadata view of a document.
type DocumentResponse struct {
	ID             string     `json:"id"`
	Filename       string     `json:"filename"`
	Language       string     `json:"language,omitempty"`
	PageCount      int        `json:"pageCount,omitempty"`
	CreatedOn      time.Time  `json:"createdOn"`
	LastModifiedOn *time.Time `json:"lastModifiedOn,omitempty"`
}

// DocumentTextResponse additionally carries the extracted page texts.
type DocumentTextResponse struct {
	DocumentResponse
	Pages []string `json:"pages"`
}

// SetLanguageRequest is the explicit language override.
type SetLanguageRequest struct {
	Language string `json:"language"`
}

// DocumentView builds the metadata payload for a document.
func DocumentView(d *Document) DocumentResponse {
	return DocumentResponse{
		ID:             d.ID,
		Filename:       d.Filename,
		Language:       d.Language,
		PageCount:      d.PageCount,
		CreatedOn:      d.CreatedOn,
		LastModifiedOn: d.LastModifiedOn,
	}
}

// DocumentTextView builds the with-text payload for a document and its
// text record.
func DocumentTextView(d *Document, t *TextRecord) DocumentTextResponse {
	resp := DocumentTextResponse{DocumentResponse: DocumentView(d)}
	if t != nil {
		resp.Pages = t.Pages
	} else {
		resp.Pages = []string{}
	}
	return resp
}
