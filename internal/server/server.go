package server

import (
	"context"

	"github.com/Rana718/transit-studio/internal/database"
	"github.com/Rana718/transit-studio/internal/logging"
	"github.com/gofiber/fiber/v2"
)

type Server struct {
	app     *fiber.App
	adapter database.Adapter
	service *Service
}

// New builds the record API over an already connected adapter.
func New(adapter database.Adapter) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "transit-studio",
	})

	server := &Server{
		app:     app,
		adapter: adapter,
		service: NewService(adapter),
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.app.Use(requestLogger())

	s.app.Get("/ping", s.handlePing)
	s.app.Get("/tables", s.handleGetTables)
	s.app.Get("/schema/:table", s.handleGetSchema)

	records := s.app.Group("/records")
	records.Get("/:table", s.handleListRecords)
	records.Post("/:table", s.handleCreateRecord)
	records.Put("/:table/:pk", s.handleUpdateRecord)
	// Must precede /:table/:pk, which would otherwise capture "cascade".
	records.Delete("/cascade/:id", s.handleCascadeDelete)
	records.Delete("/:table/:pk", s.handleDeleteRecord)
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start(addr string) error {
	logging.Info("server listening", "addr", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
