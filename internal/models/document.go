package models

import (
	"time"

	"github.com/Bennexy/edms-local/internal/language"
	"github.com/Bennexy/edms-local/internal/search"
)

// Document is the main record for an ingested PDF. All reads and writes are
// scoped by OwnerID. Deletion is soft: the row is flagged, never removed.
type Document struct {
	ID             string     `firestore:"id"`
	OwnerID        string     `firestore:"ownerId"`
	Filename       string     `firestore:"filename"`
	Language       string     `firestore:"language,omitempty"` // catalog code, empty until detected or set
	PageCount      int        `firestore:"pageCount,omitempty"`
	StoragePath    string     `firestore:"storagePath,omitempty"`
	CreatedOn      time.Time  `firestore:"createdOn"`
	LastModifiedOn *time.Time `firestore:"lastModifiedOn,omitempty"`
	DeletedOn      *time.Time `firestore:"deletedOn,omitempty"`
	Deleted        bool       `firestore:"deleted"`
}

// ResolvedLanguage returns the document's catalog language, or Simple when
// the field is empty or holds a value the catalog does not know.
func (d *Document) ResolvedLanguage() language.Language {
	if d.Language == "" {
		return language.Simple
	}
	l, err := language.Lookup(d.Language)
	if err != nil {
		return language.Simple
	}
	return l
}

// TextRecord holds the extracted page texts of exactly one Document and the
// search vector derived from them. The vector is only ever rewritten
// through SetPages/SetLanguage, so a committed record can never carry a
// vector that is stale with respect to its own pages.
type TextRecord struct {
	ID             string        `firestore:"id"`
	DocumentID     string        `firestore:"documentId"`
	OwnerID        string        `firestore:"ownerId"`
	Pages          []string      `firestore:"pages"`
	SearchVector   search.Vector `firestore:"searchVector"`
	CreatedOn      time.Time     `firestore:"createdOn"`
	LastModifiedOn *time.Time    `firestore:"lastModifiedOn,omitempty"`
	DeletedOn      *time.Time    `firestore:"deletedOn,omitempty"`
	Deleted        bool          `firestore:"deleted"`
}

// NewTextRecord returns the empty text record created alongside a Document.
// Pages is an empty slice, not nil: "no text yet".
func NewTextRecord(id string, doc *Document) *TextRecord {
	rec := &TextRecord{
		ID:         id,
		DocumentID: doc.ID,
		OwnerID:    doc.OwnerID,
		CreatedOn:  time.Now().UTC(),
	}
	rec.SetPages(nil, language.Simple)
	return rec
}

// SetPages replaces the page texts and synchronously rebuilds the search
// vector for the given language.
func (t *TextRecord) SetPages(pages []string, lang language.Language) {
	if pages == nil {
		pages = []string{}
	}
	t.Pages = append([]string(nil), pages...)
	t.SearchVector = search.BuildVector(t.Pages, lang)
	now := time.Now().UTC()
	t.LastModifiedOn = &now
}

// SetLanguage rebuilds the vector from the current pages under a different
// stemming language.
func (t *TextRecord) SetLanguage(lang language.Language) {
	t.SetPages(t.Pages, lang)
}
