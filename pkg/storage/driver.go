// Package storage
package storage

import (
	"context"
	"time"
)

// Document is an uploaded document's metadata record. The extracted
// text is kept alongside the metadata so indexes can be rebuilt
// without re-parsing the upload.
type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"size_bytes"`
	PageCount  int       `json:"page_count,omitempty"`
	Text       string    `json:"-"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Source is a chunk the answer was grounded on. ChunkID points back
// into the document's index so the passage can be traced.
type Source struct {
	Text    string `json:"text"`
	ChunkID int    `json:"chunk_id"`
}

// Question is a question asked of a document together with its answer.
type Question struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Sources    []Source  `json:"sources,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Driver defines the interface for persisting documents and their
// question history in a storage backend.
type Driver interface {
	// PutDocument stores a document record.
	PutDocument(ctx context.Context, doc *Document) error

	// GetDocument retrieves a document by id.
	GetDocument(ctx context.Context, id string) (*Document, error)

	// ListDocuments returns all documents ordered by upload time,
	// newest first.
	ListDocuments(ctx context.Context) ([]*Document, error)

	// DeleteDocument removes a document and its question history.
	DeleteDocument(ctx context.Context, id string) error

	// PutQuestion stores a question/answer record.
	PutQuestion(ctx context.Context, q *Question) error

	// ListQuestions returns a document's questions ordered by creation
	// time, newest first.
	ListQuestions(ctx context.Context, documentID string) ([]*Question, error)

	// DeleteQuestions removes a document's question history.
	DeleteQuestions(ctx context.Context, documentID string) error

	// Close closes the store and releases any resources.
	Close() error
}
