// Package vector provides interfaces and implementations for vector storage
// and retrieval of embedded document segments.
package vector

import (
	"context"
	"log/slog"

	"github.com/papercomputeco/mnemo/pkg/memory"
)

// Payload is the data stored alongside a point's vector. It carries
// everything needed to reconstruct a search result without consulting a
// second store.
type Payload struct {
	// Text is the segment's full text.
	Text string

	// DocumentID is the owning document's id, the sharding key for
	// cascading deletes.
	DocumentID string

	// StartOffset and EndOffset are the segment's character offsets.
	StartOffset int
	EndOffset   int

	// Metadata carries the segment's scalar annotations.
	Metadata memory.Metadata
}

// Point is a stored vector with its payload. A point's identifier is the
// segment's identifier, so re-upserting the same segment overwrites.
type Point struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// QueryResult is a search hit with its similarity score (cosine, higher =
// more similar).
type QueryResult struct {
	Point

	Score float32
}

// Stats reports collection-level counters for the metrics endpoint.
type Stats struct {
	// Points is the number of stored points.
	Points uint64
}

// Driver handles storage and retrieval of embedded segments.
//
// Implementations ensure their backing collection exists at construction
// time (idempotently: a concurrent "already exists" response is success).
// Filters are conjunctive equality over metadata keys; no OR, range, or
// negation support.
type Driver interface {
	// Upsert stores points, overwriting any existing point with the same ID.
	Upsert(ctx context.Context, points []Point) error

	// Query finds the topK most similar points to the given embedding,
	// restricted to points whose metadata matches every filter entry.
	// Filter values may be strings, bools, or integral numbers; anything
	// else (including non-integral floats, which not every backend can
	// express as a match condition) is rejected with ErrBadFilter.
	Query(ctx context.Context, embedding []float32, topK int, filter memory.Metadata) ([]QueryResult, error)

	// DeleteByDocument removes every point belonging to the given document.
	// Deleting a document with no points is not an error.
	DeleteByDocument(ctx context.Context, documentID string) error

	// Stats reports collection-level counters.
	Stats(ctx context.Context) (Stats, error)

	// Ping reports whether the backing index is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the driver.
	Close() error
}

// PointsFromSegments maps embedded segments to index points for one
// document. Segments without an embedding are skipped and logged rather
// than failing the whole call.
func PointsFromSegments(segments []memory.Segment, documentID string, logger *slog.Logger) []Point {
	points := make([]Point, 0, len(segments))
	for _, seg := range segments {
		if seg.Embedding == nil {
			logger.Warn("segment has no embedding, skipping",
				"segment_id", seg.ID,
				"document_id", documentID,
			)
			continue
		}

		points = append(points, Point{
			ID:     seg.ID,
			Vector: seg.Embedding,
			Payload: Payload{
				Text:        seg.Text,
				DocumentID:  documentID,
				StartOffset: seg.StartOffset,
				EndOffset:   seg.EndOffset,
				Metadata:    seg.Metadata,
			},
		})
	}
	return points
}

// Segment converts a query result back into a domain segment. The embedding
// is never carried back out of the index.
func (r QueryResult) Segment() memory.Segment {
	return memory.Segment{
		ID:          r.ID,
		Text:        r.Payload.Text,
		StartOffset: r.Payload.StartOffset,
		EndOffset:   r.Payload.EndOffset,
		Metadata:    r.Payload.Metadata,
	}
}
