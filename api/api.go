package api

import (
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	apimcp "github.com/papercomputeco/mnemo/api/mcp"
	"github.com/papercomputeco/mnemo/pkg/cache"
	"github.com/papercomputeco/mnemo/pkg/documents"
	"github.com/papercomputeco/mnemo/pkg/embeddings"
	"github.com/papercomputeco/mnemo/pkg/retrieval"
	"github.com/papercomputeco/mnemo/pkg/vector"
)

// Server is the API server for the mnemo retrieval pipeline.
type Server struct {
	config   Config
	manager  *documents.Manager
	orch     *retrieval.Orchestrator
	embedder embeddings.Embedder
	driver   vector.Driver
	cache    cache.Cache
	logger   *slog.Logger
	app      *fiber.App
}

// NewServer creates a new API server. The embedder, driver and cache are
// injected alongside the manager and orchestrator so the health and metrics
// endpoints can inspect them directly.
func NewServer(
	config Config,
	manager *documents.Manager,
	orch *retrieval.Orchestrator,
	embedder embeddings.Embedder,
	driver vector.Driver,
	c cache.Cache,
	logger *slog.Logger,
) (*Server, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:   config,
		manager:  manager,
		orch:     orch,
		embedder: embedder,
		driver:   driver,
		cache:    c,
		logger:   logger,
		app:      app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/v1/documents/upload", s.handleUpload)
	app.Delete("/v1/documents/:id", s.handleDelete)
	app.Post("/v1/search", s.handleSearch)
	app.Get("/v1/health", s.handleHealth)
	app.Get("/v1/metrics", s.handleMetrics)

	if config.EnableMCP {
		mcpServer, err := apimcp.NewServer(apimcp.Config{
			Manager:      manager,
			Orchestrator: orch,
			Logger:       logger,
		})
		if err != nil {
			return nil, err
		}
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
