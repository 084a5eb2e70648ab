package api

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foliolabs/folio/pkg/answer"
	"github.com/foliolabs/folio/pkg/extract"
	"github.com/foliolabs/folio/pkg/index"
	"github.com/foliolabs/folio/pkg/storage"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AskRequest is the body of POST /documents/:id/questions.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is the answer to a question with the chunks it was
// grounded on.
type AskResponse struct {
	QuestionID  string           `json:"question_id"`
	DocumentID  string           `json:"document_id"`
	Question    string           `json:"question"`
	Answer      string           `json:"answer"`
	UsedSources []storage.Source `json:"used_sources"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleUpload accepts a multipart file upload, stores the file under
// a fresh document id, extracts its text, and indexes it.
func (s *Server) handleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "file field required"})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !extract.Supported(fileHeader.Filename) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "unsupported file type: " + ext})
	}

	documentID := uuid.NewString()
	uploadPath := filepath.Join(s.config.UploadsDir, documentID+ext)

	if err := c.SaveFile(fileHeader, uploadPath); err != nil {
		s.logger.Error("saving upload failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to save upload"})
	}

	result, err := extract.FromFile(uploadPath)
	if err != nil {
		os.Remove(uploadPath)
		s.logger.Warn("extracting upload failed",
			zap.String("filename", fileHeader.Filename),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "failed to extract text from file"})
	}

	doc := &storage.Document{
		ID:         documentID,
		Filename:   fileHeader.Filename,
		SizeBytes:  fileHeader.Size,
		PageCount:  result.PageCount,
		Text:       result.Text,
		UploadedAt: time.Now().UTC(),
	}

	if err := s.service.IndexDocument(c.Context(), doc); err != nil {
		os.Remove(uploadPath)
		s.logger.Error("indexing upload failed",
			zap.String("document_id", documentID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "failed to index document"})
	}

	return c.Status(fiber.StatusCreated).JSON(doc)
}

// handleListDocuments returns all uploaded documents, newest first.
func (s *Server) handleListDocuments(c *fiber.Ctx) error {
	docs, err := s.storer.ListDocuments(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list documents"})
	}

	return c.JSON(map[string]any{
		"count":     len(docs),
		"documents": docs,
	})
}

// handleDeleteDocument removes a document, its question history, its
// vector index, and the uploaded file.
func (s *Server) handleDeleteDocument(c *fiber.Ctx) error {
	documentID := c.Params("id")

	if err := s.service.DeleteDocument(c.Context(), documentID); err != nil {
		var notFound storage.NotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "document not found"})
		}
		s.logger.Error("deleting document failed",
			zap.String("document_id", documentID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to delete document"})
	}

	s.removeUpload(documentID)

	return c.SendStatus(fiber.StatusNoContent)
}

// handleAsk answers a question about a document.
func (s *Server) handleAsk(c *fiber.Ctx) error {
	documentID := c.Params("id")

	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Question) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "question required"})
	}

	record, err := s.service.AnswerQuestion(c.Context(), documentID, req.Question)
	if err != nil {
		return s.askError(c, documentID, err)
	}

	return c.JSON(AskResponse{
		QuestionID:  record.ID,
		DocumentID:  record.DocumentID,
		Question:    record.Question,
		Answer:      record.Answer,
		UsedSources: record.Sources,
	})
}

// askError maps pipeline failures to HTTP statuses.
func (s *Server) askError(c *fiber.Ctx, documentID string, err error) error {
	var notFound storage.NotFoundError
	switch {
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "document not found"})
	case errors.Is(err, answer.ErrInsufficientContext):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Error: "no relevant context in document"})
	case errors.Is(err, index.ErrBuildFailed):
		s.logger.Error("index build failed during ask",
			zap.String("document_id", documentID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "failed to index document"})
	default:
		s.logger.Error("answering question failed",
			zap.String("document_id", documentID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "failed to answer question"})
	}
}

// handleListQuestions returns a document's question history, newest first.
func (s *Server) handleListQuestions(c *fiber.Ctx) error {
	documentID := c.Params("id")

	if _, err := s.storer.GetDocument(c.Context(), documentID); err != nil {
		var notFound storage.NotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "document not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load document"})
	}

	questions, err := s.storer.ListQuestions(c.Context(), documentID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list questions"})
	}

	return c.JSON(map[string]any{
		"count":     len(questions),
		"questions": questions,
	})
}

// handleDeleteQuestions clears a document's question history.
func (s *Server) handleDeleteQuestions(c *fiber.Ctx) error {
	documentID := c.Params("id")

	if _, err := s.storer.GetDocument(c.Context(), documentID); err != nil {
		var notFound storage.NotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "document not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load document"})
	}

	if err := s.storer.DeleteQuestions(c.Context(), documentID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to delete questions"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// removeUpload deletes the stored upload file for a document, if any.
func (s *Server) removeUpload(documentID string) {
	matches, err := filepath.Glob(filepath.Join(s.config.UploadsDir, documentID+".*"))
	if err != nil {
		return
	}
	for _, match := range matches {
		if err := os.Remove(match); err != nil {
			s.logger.Warn("removing upload file failed",
				zap.String("path", match),
				zap.Error(err),
			)
		}
	}
}
