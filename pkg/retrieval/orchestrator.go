// Package retrieval coordinates the embedding provider, the vector store
// and the cache for ingestion and search. All provider and index traffic
// flows through the Orchestrator.
package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/papercomputeco/mnemo/pkg/cache"
	cachenop "github.com/papercomputeco/mnemo/pkg/cache/nop"
	"github.com/papercomputeco/mnemo/pkg/embeddings"
	"github.com/papercomputeco/mnemo/pkg/memory"
	"github.com/papercomputeco/mnemo/pkg/utils"
	"github.com/papercomputeco/mnemo/pkg/vector"
)

const (
	// DefaultTTL is how long cached search results stay valid.
	DefaultTTL = 3600 * time.Second

	// DefaultPreviewLength bounds segment text in search results. Stored
	// segment text is never truncated, only the returned preview.
	DefaultPreviewLength = 500
)

// Config holds tunables for the Orchestrator.
type Config struct {
	// TTL is the cache expiry for search results. Defaults to DefaultTTL.
	TTL time.Duration

	// PreviewLength bounds segment text in search results.
	// Defaults to DefaultPreviewLength.
	PreviewLength int
}

// Orchestrator owns the ingestion and search paths. It holds no per-request
// state, so it is safe for concurrent use.
type Orchestrator struct {
	embedder      embeddings.Embedder
	driver        vector.Driver
	cache         cache.Cache
	ttl           time.Duration
	previewLength int
	logger        *slog.Logger
}

// NewOrchestrator creates an Orchestrator. A nil cache disables caching.
func NewOrchestrator(
	embedder embeddings.Embedder,
	driver vector.Driver,
	c cache.Cache,
	cfg Config,
	logger *slog.Logger,
) (*Orchestrator, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", memory.ErrConfiguration)
	}

	if driver == nil {
		return nil, fmt.Errorf("%w: vector driver is required", memory.ErrConfiguration)
	}

	if c == nil {
		c = cachenop.NewCache()
	}

	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	if cfg.PreviewLength <= 0 {
		cfg.PreviewLength = DefaultPreviewLength
	}

	return &Orchestrator{
		embedder:      embedder,
		driver:        driver,
		cache:         c,
		ttl:           cfg.TTL,
		previewLength: cfg.PreviewLength,
		logger:        logger,
	}, nil
}

// Ingest embeds the segments in one batch call and upserts them to the
// vector store. Segments whose text is empty after trimming are skipped.
// Returns the number of segments stored.
//
// Cached search results are not invalidated; they age out within the TTL.
func (o *Orchestrator) Ingest(ctx context.Context, documentID string, segments []memory.Segment) (int, error) {
	kept := make([]memory.Segment, 0, len(segments))
	for _, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		kept = append(kept, seg)
	}

	if len(kept) == 0 {
		return 0, nil
	}

	texts := make([]string, len(kept))
	for i, seg := range kept {
		texts[i] = seg.Text
	}

	// One provider round-trip per document regardless of segment count.
	vecs, err := o.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("%w: embedding segments: %v", memory.ErrEmbedding, err)
	}

	if len(vecs) != len(kept) {
		return 0, fmt.Errorf("%w: provider returned %d embeddings for %d segments",
			memory.ErrEmbedding, len(vecs), len(kept))
	}

	// The batch API is positional: vecs[i] belongs to kept[i].
	for i := range kept {
		kept[i].Embedding = vecs[i]
	}

	points := vector.PointsFromSegments(kept, documentID, o.logger)
	if err := o.driver.Upsert(ctx, points); err != nil {
		return 0, fmt.Errorf("%w: storing segments: %v", memory.ErrRetrieval, err)
	}

	o.logger.Debug("ingested segments",
		"document_id", documentID,
		"stored", len(points),
		"skipped", len(segments)-len(kept),
	)

	return len(points), nil
}

// Search answers a query through the cache. On a miss it embeds the query,
// queries the vector store, caches the serialized results and returns them.
// A cache failure never fails the search, it degrades to a forced miss.
func (o *Orchestrator) Search(ctx context.Context, query memory.SearchQuery) ([]memory.SearchResult, error) {
	if strings.TrimSpace(query.Text) == "" {
		return nil, fmt.Errorf("%w: query text is empty", memory.ErrConfiguration)
	}

	if query.TopK < 1 {
		return nil, fmt.Errorf("%w: topK must be at least 1, got %d", memory.ErrConfiguration, query.TopK)
	}

	key := CacheKey(query.Text, query.TopK, query.Filter)

	if cached, err := o.cache.Get(ctx, key); err == nil {
		var results []memory.SearchResult
		if err := json.Unmarshal(cached, &results); err == nil {
			o.logger.Debug("search cache hit", "key", key)
			return results, nil
		}
		o.logger.Warn("discarding undecodable cache entry", "key", key)
	} else if !errors.Is(err, cache.ErrMiss) {
		o.logger.Warn("cache read failed, continuing without cache",
			"key", key,
			"error", err,
		)
	}

	embedding, err := o.embedder.Embed(ctx, query.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", memory.ErrEmbedding, err)
	}

	matches, err := o.driver.Query(ctx, embedding, query.TopK, query.Filter)
	if err != nil {
		return nil, fmt.Errorf("%w: querying index: %v", memory.ErrRetrieval, err)
	}

	results := make([]memory.SearchResult, 0, len(matches))
	for _, match := range matches {
		seg := match.Segment()
		seg.Text = utils.Truncate(seg.Text, o.previewLength)
		results = append(results, memory.SearchResult{
			Segment:    seg,
			Score:      match.Score,
			DocumentID: match.Payload.DocumentID,
		})
	}

	if payload, err := json.Marshal(results); err == nil {
		if err := o.cache.SetWithTTL(ctx, key, payload, o.ttl); err != nil {
			o.logger.Warn("cache write failed",
				"key", key,
				"error", err,
			)
		}
	}

	o.logger.Debug("search cache miss served from index",
		"key", key,
		"results", len(results),
	)

	return results, nil
}

// CacheStats reports the cache backend's hit and miss counters.
func (o *Orchestrator) CacheStats(ctx context.Context) (cache.Stats, error) {
	return o.cache.Stats(ctx)
}
