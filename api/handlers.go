package api

import (
	"encoding/json"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/mnemo/pkg/cache"
	"github.com/papercomputeco/mnemo/pkg/memory"
	"github.com/papercomputeco/mnemo/pkg/vector"
)

// uploadJSONRequest is the JSON body accepted by the upload endpoint when no
// multipart file is attached.
type uploadJSONRequest struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

// HealthResponse reports the state of every external dependency.
type HealthResponse struct {
	Status string                `json:"status"`
	Checks []memory.HealthStatus `json:"checks"`
}

// MetricsResponse reports vector store and cache counters.
type MetricsResponse struct {
	Vector vector.Stats `json:"vector"`
	Cache  cache.Stats  `json:"cache"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleUpload ingests a document. It accepts either a multipart form with a
// "file" field or a JSON body with "filename" and "text".
func (s *Server) handleUpload(c *fiber.Ctx) error {
	filename, text, err := readUpload(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	receipt, err := s.manager.Upload(c.Context(), filename, text)
	if err != nil {
		s.logger.Error("upload failed",
			"filename", filename,
			"error", err,
		)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(receipt)
}

// readUpload extracts the filename and raw text from an upload request.
func readUpload(c *fiber.Ctx) (string, string, error) {
	if fileHeader, err := c.FormFile("file"); err == nil {
		f, err := fileHeader.Open()
		if err != nil {
			return "", "", fiber.NewError(fiber.StatusBadRequest, "opening uploaded file")
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return "", "", fiber.NewError(fiber.StatusBadRequest, "reading uploaded file")
		}

		return fileHeader.Filename, string(data), nil
	}

	var req uploadJSONRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return "", "", fiber.NewError(fiber.StatusBadRequest, "expected a multipart file or a JSON body with filename and text")
	}

	if req.Filename == "" {
		return "", "", fiber.NewError(fiber.StatusBadRequest, "filename is required")
	}

	return req.Filename, req.Text, nil
}

// handleDelete removes all segments belonging to a document. Unknown ids
// succeed, deletion is idempotent.
func (s *Server) handleDelete(c *fiber.Ctx) error {
	documentID := c.Params("id")
	if documentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "document id is required"})
	}

	if err := s.manager.Delete(c.Context(), documentID); err != nil {
		s.logger.Error("delete failed",
			"document_id", documentID,
			"error", err,
		)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(fiber.Map{
		"document_id": documentID,
		"deleted":     true,
	})
}

// handleHealth reports the reachability of the embedding provider, the
// vector store and the cache. The cache is an optimization, so a cache
// failure degrades the status without making it unhealthy.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	ctx := c.Context()

	checks := make([]memory.HealthStatus, 0, 3)

	embedderStatus := memory.Healthy("embedder")
	if err := s.embedder.Ping(ctx); err != nil {
		embedderStatus = memory.Unhealthy("embedder", err)
	}
	checks = append(checks, embedderStatus)

	vectorStatus := memory.Healthy("vector_store")
	if err := s.driver.Ping(ctx); err != nil {
		vectorStatus = memory.Unhealthy("vector_store", err)
	}
	checks = append(checks, vectorStatus)

	cacheStatus := memory.Healthy("cache")
	if err := s.cache.Ping(ctx); err != nil {
		cacheStatus = memory.Unhealthy("cache", err)
	}
	checks = append(checks, cacheStatus)

	status := "ok"
	code := fiber.StatusOK
	switch {
	case embedderStatus.State != memory.HealthHealthy || vectorStatus.State != memory.HealthHealthy:
		status = "unhealthy"
		code = fiber.StatusServiceUnavailable
	case cacheStatus.State != memory.HealthHealthy:
		status = "degraded"
	}

	return c.Status(code).JSON(HealthResponse{
		Status: status,
		Checks: checks,
	})
}

// handleMetrics reports the stored point count and cache hit/miss counters.
func (s *Server) handleMetrics(c *fiber.Ctx) error {
	ctx := c.Context()

	vectorStats, err := s.driver.Stats(ctx)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "failed to read vector store stats"})
	}

	cacheStats, err := s.cache.Stats(ctx)
	if err != nil {
		// Counters from a failing cache are not worth failing the request.
		s.logger.Warn("failed to read cache stats", "error", err)
		cacheStats = cache.Stats{}
	}

	return c.JSON(MetricsResponse{
		Vector: vectorStats,
		Cache:  cacheStats,
	})
}
