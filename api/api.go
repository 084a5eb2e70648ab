package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/foliolabs/folio/pkg/qa"
	"github.com/foliolabs/folio/pkg/storage"
)

// Server is the API server for the document question-answering service
type Server struct {
	config  Config
	service *qa.Service
	storer  storage.Driver
	logger  *zap.Logger
	app     *fiber.App
}

// NewServer creates a new API server.
// The storer is injected alongside the service so list endpoints can
// read directly without going through the pipeline.
func NewServer(config Config, service *qa.Service, storer storage.Driver, logger *zap.Logger) *Server {
	if config.MaxUploadBytes == 0 {
		config.MaxUploadBytes = defaultMaxUploadBytes
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             config.MaxUploadBytes,
	})

	s := &Server{
		config:  config,
		service: service,
		storer:  storer,
		logger:  logger,
		app:     app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/documents", s.handleUpload)
	app.Get("/documents", s.handleListDocuments)
	app.Delete("/documents/:id", s.handleDeleteDocument)
	app.Post("/documents/:id/questions", s.handleAsk)
	app.Get("/documents/:id/questions", s.handleListQuestions)
	app.Delete("/documents/:id/questions", s.handleDeleteQuestions)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
