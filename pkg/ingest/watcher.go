// Package ingest watches a drop directory and indexes supported files
// as they appear, so documents can be added without going through the
// API.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foliolabs/folio/pkg/extract"
	"github.com/foliolabs/folio/pkg/qa"
	"github.com/foliolabs/folio/pkg/storage"
)

// Watcher ingests files dropped into a directory. Each new file is
// extracted and indexed under a fresh document id; removing a file
// deletes its document.
type Watcher struct {
	dir     string
	service *qa.Service
	logger  *zap.Logger

	mu sync.Mutex

	// ingested maps file path -> document id, so removal events can
	// find the document to delete.
	ingested map[string]string
}

func NewWatcher(dir string, service *qa.Service, logger *zap.Logger) *Watcher {
	return &Watcher{
		dir:      dir,
		service:  service,
		logger:   logger,
		ingested: make(map[string]string),
	}
}

// Run ingests files already present in the directory, then watches for
// changes until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.ingestExisting(ctx); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	w.logger.Info("watching drop directory", zap.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !extract.Supported(event.Name) {
				continue
			}

			// Editors often write via create-then-rename, so Create
			// and Write are handled the same: (re-)ingest the file.
			switch {
			case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
				w.handleFile(ctx, event.Name)
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				w.handleRemoval(ctx, event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) ingestExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("reading drop directory %s: %w", w.dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if !extract.Supported(path) {
			continue
		}
		w.handleFile(ctx, path)
	}

	return nil
}

// handleFile ingests one file. A file already ingested is re-indexed
// under a new document id after the old document is deleted, matching
// the re-index-on-write behavior of the drop directory.
func (w *Watcher) handleFile(ctx context.Context, path string) {
	w.handleRemoval(ctx, path)

	result, err := extract.FromFile(path)
	if err != nil {
		w.logger.Warn("extracting dropped file failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		w.logger.Warn("stating dropped file failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return
	}

	doc := &storage.Document{
		ID:         uuid.NewString(),
		Filename:   filepath.Base(path),
		SizeBytes:  info.Size(),
		PageCount:  result.PageCount,
		Text:       result.Text,
		UploadedAt: time.Now().UTC(),
	}

	if err := w.service.IndexDocument(ctx, doc); err != nil {
		w.logger.Error("indexing dropped file failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return
	}

	w.mu.Lock()
	w.ingested[path] = doc.ID
	w.mu.Unlock()

	w.logger.Info("ingested dropped file",
		zap.String("path", path),
		zap.String("document_id", doc.ID),
	)
}

func (w *Watcher) handleRemoval(ctx context.Context, path string) {
	w.mu.Lock()
	documentID, ok := w.ingested[path]
	if ok {
		delete(w.ingested, path)
	}
	w.mu.Unlock()

	if !ok {
		return
	}

	if err := w.service.DeleteDocument(ctx, documentID); err != nil {
		w.logger.Warn("removing document for deleted file failed",
			zap.String("path", path),
			zap.String("document_id", documentID),
			zap.Error(err),
		)
	}
}
