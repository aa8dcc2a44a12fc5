// Package store is the persistence boundary for documents and their text
// records. All operations are scoped to an owner, and every read path
// excludes soft-deleted rows.
package store

import (
	"context"
	"errors"
	"sort"

	"github.com/Bennexy/edms-local/internal/models"
	"github.com/Bennexy/edms-local/internal/search"
)

var (
	// ErrNotFound marks an unknown or soft-deleted document for the given
	// owner.
	ErrNotFound = errors.New("document not found")
	// ErrPersistence wraps backend commit errors. They are surfaced as-is
	// and never retried here.
	ErrPersistence = errors.New("persistence failure")
)

// DocumentWithText pairs a document with its (lazily loaded) text record.
type DocumentWithText struct {
	Document *models.Document
	Text     *models.TextRecord
}

// Store is the Document Store contract.
type Store interface {
	// Create atomically persists a document together with its empty text
	// record.
	Create(ctx context.Context, doc *models.Document, text *models.TextRecord) error
	GetByID(ctx context.Context, ownerID, id string) (*models.Document, error)
	GetWithText(ctx context.Context, ownerID, id string) (*models.Document, *models.TextRecord, error)
	ListAll(ctx context.Context, ownerID string) ([]*models.Document, error)
	ListAllWithText(ctx context.Context, ownerID string) ([]DocumentWithText, error)
	// FindByText returns the ids of the owner's documents whose search
	// vector matches the query, best match first.
	FindByText(ctx context.Context, ownerID, query string) ([]string, error)
	// SaveText commits a text record, vector included, as one write.
	SaveText(ctx context.Context, rec *models.TextRecord) error
	// SetLanguage updates the document's language field only; rebuilding
	// the text record's vector is the caller's job via SaveText.
	SetLanguage(ctx context.Context, ownerID, id, code string) error
	SoftDelete(ctx context.Context, ownerID, id string) error
}

// rankMatches applies the query to each candidate's vector, stemming the
// query in that document's own language (the language its vector was built
// with). Matches are ordered by summed lexeme weight, ties by creation
// time.
func rankMatches(candidates []DocumentWithText, query string) []string {
	type match struct {
		id        string
		rank      int
		createdOn int64
	}

	var matches []match
	for _, c := range candidates {
		if c.Text == nil {
			continue
		}
		lexemes := search.Lexemes(query, c.Document.ResolvedLanguage())
		if c.Text.SearchVector.Matches(lexemes) {
			matches = append(matches, match{
				id:        c.Document.ID,
				rank:      c.Text.SearchVector.Rank(lexemes),
				createdOn: c.Document.CreatedOn.UnixNano(),
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank > matches[j].rank
		}
		return matches[i].createdOn < matches[j].createdOn
	})

	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.id
	}
	return ids
}
