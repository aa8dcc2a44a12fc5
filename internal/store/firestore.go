package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"golang.org/x/sync/errgroup"

	"github.com/Bennexy/edms-local/internal/models"
)

const (
	documentsCollection = "documents"
	textCollection      = "document_text"
)

// Firestore persists documents in two collections. Text records are keyed
// by their document id, which enforces the one-record-per-document
// invariant structurally.
type Firestore struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (s *Firestore) docRef(id string) *firestore.DocumentRef {
	return s.client.Collection(documentsCollection).Doc(id)
}

func (s *Firestore) textRef(documentID string) *firestore.DocumentRef {
	return s.client.Collection(textCollection).Doc(documentID)
}

// Create writes the document and its empty text record in one transaction:
// either both rows exist afterwards or neither does.
func (s *Firestore) Create(ctx context.Context, doc *models.Document, text *models.TextRecord) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(s.docRef(doc.ID), doc); err != nil {
			return err
		}
		return tx.Create(s.textRef(doc.ID), text)
	})
	if err != nil {
		return fmt.Errorf("%w: failed to create document %s: %v", ErrPersistence, doc.ID, err)
	}
	return nil
}

func (s *Firestore) GetByID(ctx context.Context, ownerID, id string) (*models.Document, error) {
	snap, err := s.docRef(id).Get(ctx)
	if snap != nil && !snap.Exists() {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get document %s: %v", ErrPersistence, id, err)
	}

	var doc models.Document
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("%w: failed to decode document %s: %v", ErrPersistence, id, err)
	}
	if doc.OwnerID != ownerID || doc.Deleted {
		return nil, ErrNotFound
	}
	return &doc, nil
}

func (s *Firestore) GetWithText(ctx context.Context, ownerID, id string) (*models.Document, *models.TextRecord, error) {
	doc, err := s.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, nil, err
	}
	text, err := s.getText(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return doc, text, nil
}

func (s *Firestore) getText(ctx context.Context, documentID string) (*models.TextRecord, error) {
	snap, err := s.textRef(documentID).Get(ctx)
	if snap != nil && !snap.Exists() {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get text record for %s: %v", ErrPersistence, documentID, err)
	}
	var rec models.TextRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("%w: failed to decode text record for %s: %v", ErrPersistence, documentID, err)
	}
	return &rec, nil
}

func (s *Firestore) ListAll(ctx context.Context, ownerID string) ([]*models.Document, error) {
	snaps, err := s.client.Collection(documentsCollection).
		Where("ownerId", "==", ownerID).
		Where("deleted", "==", false).
		OrderBy("createdOn", firestore.Asc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list documents: %v", ErrPersistence, err)
	}

	docs := make([]*models.Document, 0, len(snaps))
	for _, snap := range snaps {
		var doc models.Document
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("%w: failed to decode document %s: %v", ErrPersistence, snap.Ref.ID, err)
		}
		docs = append(docs, &doc)
	}
	return docs, nil
}

// ListAllWithText hydrates the text records concurrently; the fetches are
// independent reads.
func (s *Firestore) ListAllWithText(ctx context.Context, ownerID string) ([]DocumentWithText, error) {
	docs, err := s.ListAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]DocumentWithText, len(docs))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(10)
	for i, doc := range docs {
		eg.Go(func() error {
			text, err := s.getText(gctx, doc.ID)
			if err != nil {
				return err
			}
			out[i] = DocumentWithText{Document: doc, Text: text}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindByText matches app-side: the backend has no language-aware text
// index, and the query has to be stemmed per candidate document's own
// language anyway.
func (s *Firestore) FindByText(ctx context.Context, ownerID, query string) ([]string, error) {
	candidates, err := s.ListAllWithText(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return rankMatches(candidates, query), nil
}

func (s *Firestore) SaveText(ctx context.Context, rec *models.TextRecord) error {
	if _, err := s.textRef(rec.DocumentID).Set(ctx, rec); err != nil {
		return fmt.Errorf("%w: failed to save text record for %s: %v", ErrPersistence, rec.DocumentID, err)
	}
	return nil
}

func (s *Firestore) SetLanguage(ctx context.Context, ownerID, id, code string) error {
	if _, err := s.GetByID(ctx, ownerID, id); err != nil {
		return err
	}
	_, err := s.docRef(id).Update(ctx, []firestore.Update{
		{Path: "language", Value: code},
		{Path: "lastModifiedOn", Value: time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("%w: failed to set language on %s: %v", ErrPersistence, id, err)
	}
	return nil
}

func (s *Firestore) SoftDelete(ctx context.Context, ownerID, id string) error {
	if _, err := s.GetByID(ctx, ownerID, id); err != nil {
		return err
	}
	now := time.Now().UTC()
	deleted := []firestore.Update{
		{Path: "deleted", Value: true},
		{Path: "deletedOn", Value: now},
	}
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Update(s.docRef(id), deleted); err != nil {
			return err
		}
		return tx.Update(s.textRef(id), deleted)
	})
	if err != nil {
		return fmt.Errorf("%w: failed to delete document %s: %v", ErrPersistence, id, err)
	}
	return nil
}
