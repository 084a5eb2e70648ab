// Package qa is the document question-answering facade. It wires the
// index registry, retriever, answer engine, storage, and event stream
// into the three operations the API and CLI expose: index a document,
// answer a question about it, and delete it.
package qa

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foliolabs/folio/pkg/answer"
	"github.com/foliolabs/folio/pkg/eventstream"
	"github.com/foliolabs/folio/pkg/index"
	"github.com/foliolabs/folio/pkg/retriever"
	"github.com/foliolabs/folio/pkg/storage"
)

// Service coordinates the question-answering pipeline over stored
// documents.
type Service struct {
	store     storage.Driver
	registry  *index.Registry
	retriever *retriever.Retriever
	engine    *answer.Engine
	events    eventstream.Publisher
	logger    *zap.Logger
}

func NewService(
	store storage.Driver,
	registry *index.Registry,
	ret *retriever.Retriever,
	engine *answer.Engine,
	events eventstream.Publisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		store:     store,
		registry:  registry,
		retriever: ret,
		engine:    engine,
		events:    events,
		logger:    logger,
	}
}

// IndexDocument persists the document record and builds its vector
// index. The document's extracted text must already be set.
func (s *Service) IndexDocument(ctx context.Context, doc *storage.Document) error {
	start := time.Now()

	if err := s.store.PutDocument(ctx, doc); err != nil {
		return fmt.Errorf("persisting document %s: %w", doc.ID, err)
	}

	idx, err := s.registry.Ensure(ctx, doc.ID, s.textSupplier(doc.ID))
	if err != nil {
		return err
	}

	s.publish(ctx, &eventstream.Event{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeDocumentIndexed,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		DocumentIndexed: &eventstream.DocumentIndexedPayload{
			DocumentID: doc.ID,
			Filename:   doc.Filename,
			ChunkCount: idx.Count(),
			DurationMs: time.Since(start).Milliseconds(),
		},
	})

	s.logger.Info("document indexed",
		zap.String("document_id", doc.ID),
		zap.String("filename", doc.Filename),
		zap.Int("chunks", idx.Count()),
	)

	return nil
}

// AnswerQuestion answers a question about a stored document and
// records the exchange in the document's history. The index is built
// on demand if missing, so questions keep working after a restart.
func (s *Service) AnswerQuestion(ctx context.Context, documentID, question string) (*storage.Question, error) {
	start := time.Now()

	if _, err := s.store.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}

	idx, err := s.registry.Ensure(ctx, documentID, s.textSupplier(documentID))
	if err != nil {
		return nil, err
	}

	results, err := s.retriever.Retrieve(ctx, idx, question)
	if err != nil {
		return nil, err
	}

	ans, err := s.engine.Answer(ctx, question, results)
	if err != nil {
		return nil, err
	}

	sources := make([]storage.Source, len(ans.Sources))
	for i, src := range ans.Sources {
		sources[i] = storage.Source{Text: src.Text, ChunkID: src.ChunkID}
	}

	record := &storage.Question{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		Question:   question,
		Answer:     ans.Text,
		Sources:    sources,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.store.PutQuestion(ctx, record); err != nil {
		return nil, fmt.Errorf("persisting question for %s: %w", documentID, err)
	}

	s.publish(ctx, &eventstream.Event{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeQuestionAnswered,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		QuestionAnswered: &eventstream.QuestionAnsweredPayload{
			DocumentID:  documentID,
			QuestionID:  record.ID,
			Question:    question,
			SourceCount: len(sources),
			DurationMs:  time.Since(start).Milliseconds(),
		},
	})

	return record, nil
}

// DeleteDocument removes the document's metadata, question history,
// and vector index.
func (s *Service) DeleteDocument(ctx context.Context, documentID string) error {
	if err := s.store.DeleteDocument(ctx, documentID); err != nil {
		return err
	}

	if err := s.registry.Drop(ctx, documentID); err != nil {
		return fmt.Errorf("dropping index for %s: %w", documentID, err)
	}

	s.logger.Info("document deleted", zap.String("document_id", documentID))

	return nil
}

// textSupplier fetches a document's extracted text from storage on
// demand, so rebuilds after a restart see the persisted text.
func (s *Service) textSupplier(documentID string) index.TextSupplier {
	return func(ctx context.Context) (string, error) {
		doc, err := s.store.GetDocument(ctx, documentID)
		if err != nil {
			return "", err
		}
		return doc.Text, nil
	}
}

// publish emits an event without failing the operation that produced
// it.
func (s *Service) publish(ctx context.Context, event *eventstream.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("publishing event failed",
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
	}
}
