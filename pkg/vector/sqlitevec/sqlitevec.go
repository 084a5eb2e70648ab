// Package sqlitevec provides a SQLite-backed vector.Store using sqlite-vec.
//
// Each document's index is a standalone SQLite file under the store's
// root directory. Builds write to a temporary file and rename it into
// place, so a failed build is never discoverable by Load.
package sqlitevec

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/foliolabs/folio/pkg/vector"
)

// Store implements vector.Store with one sqlite-vec database per document.
type Store struct {
	dir        string
	dimensions uint
	logger     *zap.Logger
}

// Config holds configuration for the sqlite-vec store.
type Config struct {
	// Dir is the directory holding the per-document index files.
	Dir string

	// Dimensions is the number of dimensions for the embedding vectors.
	Dimensions uint
}

// NewStore creates a sqlite-vec backed vector store rooted at c.Dir.
func NewStore(c Config, logger *zap.Logger) (*Store, error) {
	// enable connections to have the sqlite-vec extension
	sqlite_vec.Auto()

	if c.Dir == "" {
		return nil, fmt.Errorf("index directory is required")
	}
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("sqlite-vec embedding dimensions cannot be 0, must be configured")
	}

	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	logger.Info("sqlite-vec vector store initialized",
		zap.String("dir", c.Dir),
		zap.Uint("dimensions", c.Dimensions),
	)

	return &Store{
		dir:        c.Dir,
		dimensions: c.Dimensions,
		logger:     logger,
	}, nil
}

// path returns the index file path for a document id. The filename keeps
// a sanitized prefix for readability, and a hash of the raw id keeps
// distinct ids from colliding on one file after sanitizing.
func (s *Store) path(documentID string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '_', r == '-':
			return r
		default:
			return '-'
		}
	}, documentID)
	if len(safe) > 64 {
		safe = safe[:64]
	}
	sum := sha256.Sum256([]byte(documentID))
	return filepath.Join(s.dir, fmt.Sprintf("%s-%x.db", safe, sum[:8]))
}

// serializeFloat32 converts a float32 slice to a little-endian byte slice
// suitable for sqlite-vec BLOB format.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Build persists a new index for documentID, replacing any prior one.
func (s *Store) Build(ctx context.Context, documentID string, chunks []vector.Chunk) (vector.Index, error) {
	final := s.path(documentID)
	tmp := final + ".tmp"

	// Clear any leftover from an earlier failed build.
	_ = os.Remove(tmp)

	if err := s.writeIndexFile(ctx, tmp, documentID, chunks); err != nil {
		_ = os.Remove(tmp)
		return nil, err
	}

	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("installing index for %s: %w", documentID, err)
	}

	s.logger.Debug("built sqlite-vec index",
		zap.String("document_id", documentID),
		zap.Int("chunks", len(chunks)),
	)

	return s.open(final, documentID)
}

// writeIndexFile creates and populates a complete index database at path.
func (s *Store) writeIndexFile(ctx context.Context, path, documentID string, chunks []vector.Chunk) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("%w: opening database: %v", vector.ErrConnection, err)
	}
	defer db.Close()

	// Verify sqlite-vec is loaded
	var vecVersion string
	if err := db.QueryRowContext(ctx, "SELECT vec_version()").Scan(&vecVersion); err != nil {
		return fmt.Errorf("%w: sqlite-vec not available: %v", vector.ErrConnection, err)
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE chunks (
			chunk_id INTEGER PRIMARY KEY,
			text TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating chunks table: %w", err)
	}

	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE chunk_embeddings USING vec0(embedding float[%d] distance_metric=cosine)`,
		s.dimensions,
	)
	if _, err := db.ExecContext(ctx, createVec); err != nil {
		return fmt.Errorf("creating vec0 table: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating meta table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, chunk := range chunks {
		if uint(len(chunk.Embedding)) != s.dimensions {
			return fmt.Errorf("%w: chunk %d has %d dimensions, store configured for %d",
				vector.ErrEmbedding, chunk.ChunkID, len(chunk.Embedding), s.dimensions)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chunks(chunk_id, text) VALUES (?, ?)`,
			chunk.ChunkID, chunk.Text,
		); err != nil {
			return fmt.Errorf("inserting chunk %d: %w", chunk.ChunkID, err)
		}

		// vec0 rowids start at 1; chunk ids are 0-based.
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chunk_embeddings(rowid, embedding) VALUES (?, ?)`,
			chunk.ChunkID+1, serializeFloat32(chunk.Embedding),
		); err != nil {
			return fmt.Errorf("inserting embedding for chunk %d: %w", chunk.ChunkID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta(key, value) VALUES ('document_id', ?), ('chunk_count', ?)`,
		documentID, fmt.Sprintf("%d", len(chunks)),
	); err != nil {
		return fmt.Errorf("writing meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// Load opens a previously persisted index for documentID.
func (s *Store) Load(ctx context.Context, documentID string) (vector.Index, error) {
	path := s.path(documentID)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, vector.ErrIndexNotFound
		}
		return nil, fmt.Errorf("checking index for %s: %w", documentID, err)
	}

	idx, err := s.open(path, documentID)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("loaded sqlite-vec index",
		zap.String("document_id", documentID),
		zap.Int("chunks", idx.Count()),
	)

	return idx, nil
}

// open opens an index file and verifies its recorded chunk count.
func (s *Store) open(path, documentID string) (*index, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening index: %v", vector.ErrConnection, err)
	}

	var count int
	if err := db.QueryRow(
		`SELECT value FROM meta WHERE key = 'chunk_count'`,
	).Scan(&count); err != nil {
		db.Close()
		return nil, fmt.Errorf("reading index meta for %s: %w", documentID, err)
	}

	var stored int
	if err := db.QueryRow(`SELECT COUNT(*) FROM chunks`).Scan(&stored); err != nil {
		db.Close()
		return nil, fmt.Errorf("counting chunks for %s: %w", documentID, err)
	}

	if stored != count {
		db.Close()
		return nil, fmt.Errorf("index for %s is corrupt: has %d chunks, built with %d", documentID, stored, count)
	}

	return &index{
		db:         db,
		documentID: documentID,
		count:      count,
		logger:     s.logger,
	}, nil
}

// Delete removes the persisted index for documentID, if any.
func (s *Store) Delete(_ context.Context, documentID string) error {
	path := s.path(documentID)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting index for %s: %w", documentID, err)
	}

	s.logger.Debug("deleted sqlite-vec index",
		zap.String("document_id", documentID),
	)

	return nil
}

// Close releases resources held by the store.
func (s *Store) Close() error {
	// Index handles own their database connections.
	return nil
}

// index is a handle over one document's index database.
type index struct {
	db         *sql.DB
	documentID string
	count      int
	logger     *zap.Logger
}

func (i *index) DocumentID() string {
	return i.documentID
}

func (i *index) Count() int {
	return i.count
}

// Search runs a KNN query via vec0 MATCH, joining back to chunk texts.
// Lower cosine distance means higher similarity; ties on distance order
// by ascending chunk id.
func (i *index) Search(ctx context.Context, embedding []float32, topK int) ([]vector.SearchResult, error) {
	if topK <= 0 {
		topK = 10
	}

	rows, err := i.db.QueryContext(ctx, `
		SELECT
			c.chunk_id,
			c.text,
			ve.distance
		FROM chunk_embeddings ve
		INNER JOIN chunks c ON c.chunk_id = ve.rowid - 1
		WHERE ve.embedding MATCH ?
			AND ve.k = ?
		ORDER BY ve.distance, c.chunk_id
	`, serializeFloat32(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var results []vector.SearchResult
	for rows.Next() {
		var chunkID int
		var text string
		var distance float64
		if err := rows.Scan(&chunkID, &text, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}

		results = append(results, vector.SearchResult{
			Chunk: vector.Chunk{
				DocumentID: i.documentID,
				ChunkID:    chunkID,
				Text:       text,
			},
			// Cosine distance is 1 - cosine similarity.
			Score: float32(1.0 - distance),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	return results, nil
}

// Close releases the handle's database connection.
func (i *index) Close() error {
	return i.db.Close()
}

var _ vector.Store = (*Store)(nil)
