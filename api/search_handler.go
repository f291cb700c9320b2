package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/mnemo/pkg/memory"
)

// SearchRequest is the JSON body for POST /v1/search.
type SearchRequest struct {
	Query  string          `json:"query"`
	TopK   int             `json:"top_k,omitempty"`
	Filter memory.Metadata `json:"filter,omitempty"`
}

// SearchResponse is the JSON body returned for a successful search.
type SearchResponse struct {
	Query   string                `json:"query"`
	Results []memory.SearchResult `json:"results"`
	Count   int                   `json:"count"`
}

// handleSearch handles POST /v1/search requests.
func (s *Server) handleSearch(c *fiber.Ctx) error {
	var req SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	if req.TopK == 0 {
		req.TopK = 5
	}

	results, err := s.orch.Search(c.Context(), memory.SearchQuery{
		Text:   req.Query,
		TopK:   req.TopK,
		Filter: req.Filter,
	})
	if err != nil {
		if errors.Is(err, memory.ErrConfiguration) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		}

		s.logger.Error("search failed",
			"query", req.Query,
			"error", err,
		)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(SearchResponse{
		Query:   req.Query,
		Results: results,
		Count:   len(results),
	})
}
