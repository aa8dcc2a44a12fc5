package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Bennexy/edms-local/internal/models"
)

// Memory is an in-process Store used by the memory driver and in tests. It
// mirrors the Firestore driver's semantics, including owner scoping and the
// soft-delete read filter.
type Memory struct {
	mu    sync.RWMutex
	docs  map[string]*models.Document
	texts map[string]*models.TextRecord // keyed by document id
}

func NewMemory() *Memory {
	return &Memory{
		docs:  make(map[string]*models.Document),
		texts: make(map[string]*models.TextRecord),
	}
}

func (s *Memory) Create(ctx context.Context, doc *models.Document, text *models.TextRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = copyDoc(doc)
	s.texts[doc.ID] = copyText(text)
	return nil
}

func (s *Memory) GetByID(ctx context.Context, ownerID, id string) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, err := s.visible(ownerID, id)
	if err != nil {
		return nil, err
	}
	return copyDoc(doc), nil
}

func (s *Memory) GetWithText(ctx context.Context, ownerID, id string) (*models.Document, *models.TextRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, err := s.visible(ownerID, id)
	if err != nil {
		return nil, nil, err
	}
	return copyDoc(doc), copyText(s.texts[id]), nil
}

func (s *Memory) ListAll(ctx context.Context, ownerID string) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Document
	for _, doc := range s.docs {
		if doc.OwnerID == ownerID && !doc.Deleted {
			out = append(out, copyDoc(doc))
		}
	}
	sortDocs(out)
	return out, nil
}

func (s *Memory) ListAllWithText(ctx context.Context, ownerID string) ([]DocumentWithText, error) {
	docs, err := s.ListAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]DocumentWithText, 0, len(docs))
	for _, doc := range docs {
		out = append(out, DocumentWithText{Document: doc, Text: copyText(s.texts[doc.ID])})
	}
	return out, nil
}

func (s *Memory) FindByText(ctx context.Context, ownerID, query string) ([]string, error) {
	candidates, err := s.ListAllWithText(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return rankMatches(candidates, query), nil
}

func (s *Memory) SaveText(ctx context.Context, rec *models.TextRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts[rec.DocumentID] = copyText(rec)
	return nil
}

func (s *Memory) SetLanguage(ctx context.Context, ownerID, id, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.visible(ownerID, id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	doc.Language = code
	doc.LastModifiedOn = &now
	return nil
}

func (s *Memory) SoftDelete(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.visible(ownerID, id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	doc.Deleted = true
	doc.DeletedOn = &now
	if text := s.texts[id]; text != nil {
		text.Deleted = true
		text.DeletedOn = &now
	}
	return nil
}

// visible is the shared owner-scope + soft-delete read filter. Callers hold
// the lock.
func (s *Memory) visible(ownerID, id string) (*models.Document, error) {
	doc, ok := s.docs[id]
	if !ok || doc.OwnerID != ownerID || doc.Deleted {
		return nil, ErrNotFound
	}
	return doc, nil
}

func sortDocs(docs []*models.Document) {
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedOn.Before(docs[j].CreatedOn)
	})
}

func copyDoc(d *models.Document) *models.Document {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func copyText(t *models.TextRecord) *models.TextRecord {
	if t == nil {
		return nil
	}
	c := *t
	c.Pages = append([]string(nil), t.Pages...)
	c.SearchVector = make(map[string]int, len(t.SearchVector))
	for k, v := range t.SearchVector {
		c.SearchVector[k] = v
	}
	return &c
}
