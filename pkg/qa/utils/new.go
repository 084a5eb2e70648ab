// Package qautils wires the question-answering pipeline from config.
package qautils

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/foliolabs/folio/pkg/answer"
	"github.com/foliolabs/folio/pkg/chunker"
	"github.com/foliolabs/folio/pkg/config"
	"github.com/foliolabs/folio/pkg/dotdir"
	embeddingutils "github.com/foliolabs/folio/pkg/embeddings/utils"
	eventstreamutils "github.com/foliolabs/folio/pkg/eventstream/utils"
	"github.com/foliolabs/folio/pkg/index"
	llmutils "github.com/foliolabs/folio/pkg/llm/utils"
	"github.com/foliolabs/folio/pkg/qa"
	"github.com/foliolabs/folio/pkg/retriever"
	"github.com/foliolabs/folio/pkg/storage"
	storageutils "github.com/foliolabs/folio/pkg/storage/utils"
	vectorutils "github.com/foliolabs/folio/pkg/vector/utils"
)

// Bundle is a wired pipeline plus the resources it owns. Close it when
// done.
type Bundle struct {
	Service *qa.Service
	Store   storage.Driver

	// UploadsDir is the resolved directory for uploaded files.
	UploadsDir string

	closers []func() error
}

// NewBundle builds the full pipeline from config: storage, vector
// store, embedder, generator, event publisher, registry, retriever,
// and answer engine. Paths left empty in config resolve under the
// .folio directory.
func NewBundle(cfg *config.Config, configDir string, logger *zap.Logger) (*Bundle, error) {
	ddm := dotdir.NewManager()

	b := &Bundle{}
	ok := false
	defer func() {
		if !ok {
			b.Close()
		}
	}()

	sqlitePath := cfg.Storage.SQLitePath
	if sqlitePath == "" {
		target, err := ddm.Target(configDir)
		if err != nil {
			return nil, err
		}
		sqlitePath = filepath.Join(target, "folio.db")
	}

	store, err := storageutils.NewDriver(&storageutils.NewDriverOpts{
		ProviderType: "sqlite",
		SQLitePath:   sqlitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("creating storage driver: %w", err)
	}
	b.Store = store
	b.closers = append(b.closers, store.Close)

	vectorTarget := cfg.VectorStore.Target
	if vectorTarget == "" && cfg.VectorStore.Provider == "sqlite-vec" {
		vectorTarget, err = ddm.Subdir(configDir, "indexes")
		if err != nil {
			return nil, err
		}
	}

	vecStore, err := vectorutils.NewVectorStore(&vectorutils.NewVectorStoreOpts{
		ProviderType: cfg.VectorStore.Provider,
		Target:       vectorTarget,
		Dimensions:   cfg.Embedding.Dimensions,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	b.closers = append(b.closers, embedder.Close)

	generator, err := llmutils.NewGenerator(&llmutils.NewGeneratorOpts{
		ProviderType: cfg.LLM.Provider,
		TargetURL:    cfg.LLM.Target,
		Model:        cfg.LLM.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("creating generator: %w", err)
	}
	b.closers = append(b.closers, generator.Close)

	publisher, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		ProviderType: cfg.Events.Provider,
		Brokers:      splitBrokers(cfg.Events.Brokers),
		Topic:        cfg.Events.Topic,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating event publisher: %w", err)
	}
	b.closers = append(b.closers, publisher.Close)

	b.UploadsDir = cfg.Uploads.Dir
	if b.UploadsDir == "" {
		b.UploadsDir, err = ddm.Subdir(configDir, "uploads")
		if err != nil {
			return nil, err
		}
	}

	registry := index.NewRegistry(vecStore, embedder, chunker.Config{
		MaxSize: cfg.Chunking.MaxSize,
		Overlap: cfg.Chunking.Overlap,
	}, logger)
	b.closers = append(b.closers, registry.Close)

	b.Service = qa.NewService(
		store,
		registry,
		retriever.NewRetriever(embedder, cfg.Retrieval.TopK, logger),
		answer.NewEngine(generator, cfg.LLM.Temperature, logger),
		publisher,
		logger,
	)

	ok = true
	return b, nil
}

// Close releases every resource the bundle owns, in reverse creation
// order.
func (b *Bundle) Close() error {
	var firstErr error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func splitBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
