// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/foliolabs/folio/pkg/storage"
)

// schema defines the documents table and the questions table that
// references it. ON DELETE CASCADE keeps question history consistent
// with document deletion.
const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	size_bytes INTEGER NOT NULL DEFAULT 0,
	page_count INTEGER NOT NULL DEFAULT 0,
	text TEXT NOT NULL DEFAULT '',
	uploaded_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	sources TEXT NOT NULL DEFAULT '[]',
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_questions_document_id ON questions(document_id);
`

// SQLiteDriver implements storage.Driver using SQLite.
type SQLiteDriver struct {
	db *sql.DB
}

// NewSQLiteDriver creates a new SQLite-backed storage driver.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewSQLiteDriver(dbPath string) (*SQLiteDriver, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite-specific pragmas
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteDriver{db: db}, nil
}

// PutDocument stores a document record, replacing any prior record
// with the same id.
func (s *SQLiteDriver) PutDocument(ctx context.Context, doc *storage.Document) error {
	if doc == nil {
		return errors.New("cannot store nil document")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, size_bytes, page_count, text, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			size_bytes = excluded.size_bytes,
			page_count = excluded.page_count,
			text = excluded.text,
			uploaded_at = excluded.uploaded_at
	`, doc.ID, doc.Filename, doc.SizeBytes, doc.PageCount, doc.Text, doc.UploadedAt)
	if err != nil {
		return fmt.Errorf("inserting document %s: %w", doc.ID, err)
	}

	return nil
}

// GetDocument retrieves a document by id.
func (s *SQLiteDriver) GetDocument(ctx context.Context, id string) (*storage.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, filename, size_bytes, page_count, text, uploaded_at
		FROM documents WHERE id = ?
	`, id)

	var doc storage.Document
	err := row.Scan(&doc.ID, &doc.Filename, &doc.SizeBytes, &doc.PageCount, &doc.Text, &doc.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("querying document %s: %w", id, err)
	}

	return &doc, nil
}

// ListDocuments returns all documents, newest first.
func (s *SQLiteDriver) ListDocuments(ctx context.Context) ([]*storage.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, size_bytes, page_count, text, uploaded_at
		FROM documents ORDER BY uploaded_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []*storage.Document
	for rows.Next() {
		var doc storage.Document
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.SizeBytes, &doc.PageCount, &doc.Text, &doc.UploadedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, &doc)
	}

	return docs, rows.Err()
}

// DeleteDocument removes a document; its questions go with it via
// the cascade.
func (s *SQLiteDriver) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	if affected == 0 {
		return storage.NotFoundError{ID: id}
	}

	return nil
}

// PutQuestion stores a question/answer record.
func (s *SQLiteDriver) PutQuestion(ctx context.Context, q *storage.Question) error {
	if q == nil {
		return errors.New("cannot store nil question")
	}

	sources, err := json.Marshal(q.Sources)
	if err != nil {
		return fmt.Errorf("marshaling sources for question %s: %w", q.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO questions (id, document_id, question, answer, sources, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, q.ID, q.DocumentID, q.Question, q.Answer, string(sources), q.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting question %s: %w", q.ID, err)
	}

	return nil
}

// ListQuestions returns a document's questions, newest first.
func (s *SQLiteDriver) ListQuestions(ctx context.Context, documentID string) ([]*storage.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, question, answer, sources, created_at
		FROM questions WHERE document_id = ? ORDER BY created_at DESC, id DESC
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying questions for %s: %w", documentID, err)
	}
	defer rows.Close()

	var questions []*storage.Question
	for rows.Next() {
		var q storage.Question
		var sources string
		if err := rows.Scan(&q.ID, &q.DocumentID, &q.Question, &q.Answer, &sources, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning question: %w", err)
		}
		if err := json.Unmarshal([]byte(sources), &q.Sources); err != nil {
			return nil, fmt.Errorf("unmarshaling sources for question %s: %w", q.ID, err)
		}
		questions = append(questions, &q)
	}

	return questions, rows.Err()
}

// DeleteQuestions removes a document's question history.
func (s *SQLiteDriver) DeleteQuestions(ctx context.Context, documentID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("deleting questions for %s: %w", documentID, err)
	}

	return nil
}

// Close closes the underlying database.
func (s *SQLiteDriver) Close() error {
	return s.db.Close()
}

// Ensure SQLiteDriver implements storage.Driver
var _ storage.Driver = (*SQLiteDriver)(nil)
