// Package inmemory implements storage.Driver with process-local maps.
package inmemory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/foliolabs/folio/pkg/storage"
)

// Driver implements storage.Driver using in-memory maps.
type Driver struct {
	// mu is a read write sync mutex guarding both maps
	mu sync.RWMutex

	// documents maps document id -> document record
	documents map[string]*storage.Document

	// questions maps document id -> question history
	questions map[string][]*storage.Question
}

// NewDriver creates a new in-memory storage driver.
func NewDriver() *Driver {
	return &Driver{
		documents: make(map[string]*storage.Document),
		questions: make(map[string][]*storage.Question),
	}
}

// PutDocument stores a document record, replacing any prior record
// with the same id.
func (s *Driver) PutDocument(_ context.Context, doc *storage.Document) error {
	if doc == nil {
		return errors.New("cannot store nil document")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *doc
	s.documents[doc.ID] = &copied
	return nil
}

// GetDocument retrieves a document by id.
func (s *Driver) GetDocument(_ context.Context, id string) (*storage.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}

	copied := *doc
	return &copied, nil
}

// ListDocuments returns all documents, newest first.
func (s *Driver) ListDocuments(_ context.Context) ([]*storage.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]*storage.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		copied := *doc
		docs = append(docs, &copied)
	}

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].UploadedAt.Equal(docs[j].UploadedAt) {
			return docs[i].ID > docs[j].ID
		}
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})

	return docs, nil
}

// DeleteDocument removes a document and its question history.
func (s *Driver) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[id]; !ok {
		return storage.NotFoundError{ID: id}
	}

	delete(s.documents, id)
	delete(s.questions, id)
	return nil
}

// PutQuestion appends a question/answer record to the document's history.
func (s *Driver) PutQuestion(_ context.Context, q *storage.Question) error {
	if q == nil {
		return errors.New("cannot store nil question")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *q
	copied.Sources = append([]storage.Source(nil), q.Sources...)
	s.questions[q.DocumentID] = append(s.questions[q.DocumentID], &copied)
	return nil
}

// ListQuestions returns a document's questions, newest first.
func (s *Driver) ListQuestions(_ context.Context, documentID string) ([]*storage.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.questions[documentID]
	questions := make([]*storage.Question, 0, len(history))
	for _, q := range history {
		copied := *q
		questions = append(questions, &copied)
	}

	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].CreatedAt.After(questions[j].CreatedAt)
	})

	return questions, nil
}

// DeleteQuestions removes a document's question history.
func (s *Driver) DeleteQuestions(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.questions, documentID)
	return nil
}

// Close is a no-op for the in-memory driver.
func (s *Driver) Close() error {
	return nil
}

// Ensure Driver implements storage.Driver
var _ storage.Driver = (*Driver)(nil)
