// Package memory defines the core domain types for the mnemo system.
//
// A Document is split into overlapping Segments, each Segment is embedded and
// stored in a vector index, and searches retrieve the most similar stored
// segments. Segments carry their owning document's id in metadata so a whole
// document can be removed with a single filtered delete.
package memory

import "time"

// Metadata is a mapping from string keys to scalar values attached to
// segments and carried through to vector index payloads. Supported value
// kinds are string, int, int64, float64, and bool; filter translation
// reasons about these kinds explicitly.
type Metadata map[string]any

// Segment is a bounded span of a document's text, the unit of embedding and
// retrieval. A segment is created by the chunker without an embedding, the
// embedding is attached once during ingestion, and the segment is immutable
// afterwards.
type Segment struct {
	// ID is a unique identifier for the segment (a UUID). Re-upserting the
	// same ID overwrites the stored point, making re-ingestion idempotent.
	ID string `json:"id"`

	// Text is the segment's text. Stored text is never truncated; search
	// results carry a bounded preview instead.
	Text string `json:"text"`

	// StartOffset and EndOffset are character offsets into the original
	// document text. Consecutive segments' ranges overlap by the retained
	// overlap length.
	StartOffset int `json:"start_offset"`
	EndOffset   int `json:"end_offset"`

	// Metadata carries scalar annotations (filename, upload time, caller
	// supplied keys). The owning document id is added at upsert time.
	Metadata Metadata `json:"metadata,omitempty"`

	// Embedding is the vector representation of Text. Nil until the
	// orchestrator attaches it; length must equal the embedder's declared
	// dimension when present.
	Embedding []float32 `json:"embedding,omitempty"`
}

// Document groups the segments produced from one uploaded text. The document
// itself is not separately persisted; segments carry the denormalized
// document id, and the document is conceptually gone once its segments are
// deleted from the index.
type Document struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Segments  []Segment `json:"segments"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchQuery is a natural-language query against the stored segments.
type SearchQuery struct {
	// Text is the query text. Must be non-empty.
	Text string `json:"text"`

	// TopK is the number of results to return. Must be >= 1.
	TopK int `json:"top_k"`

	// Filter restricts results to segments whose metadata matches every
	// key/value pair (conjunctive equality; no OR, range, or negation).
	Filter Metadata `json:"filter,omitempty"`
}

// SearchResult is one retrieved segment with its similarity score. The
// segment's text is truncated to a bounded preview and its embedding is
// stripped.
type SearchResult struct {
	Segment    Segment `json:"segment"`
	Score      float32 `json:"score"`
	DocumentID string  `json:"document_id"`
}
