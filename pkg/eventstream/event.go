package eventstream

import "time"

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeDocumentIngested is emitted after a document is chunked,
	// embedded and stored.
	EventTypeDocumentIngested = "mnemo.document.ingested"

	// EventTypeDocumentDeleted is emitted after a document's segments are
	// removed from the vector store.
	EventTypeDocumentDeleted = "mnemo.document.deleted"
)

// DocumentEvent is a transport-neutral event payload for a document
// lifecycle change.
type DocumentEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	DocumentID    string    `json:"document_id"`
	Filename      string    `json:"filename,omitempty"`
	SegmentCount  int       `json:"segment_count,omitempty"`
}
