// Package documents manages document identity and lifecycle: upload fans a
// document's text through the chunker and the retrieval pipeline, delete
// cascades to every segment the document produced.
package documents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/mnemo/pkg/chunk"
	"github.com/papercomputeco/mnemo/pkg/eventstream"
	"github.com/papercomputeco/mnemo/pkg/eventstream/nop"
	"github.com/papercomputeco/mnemo/pkg/memory"
	"github.com/papercomputeco/mnemo/pkg/retrieval"
	"github.com/papercomputeco/mnemo/pkg/vector"
)

// UploadReceipt reports the outcome of an upload.
type UploadReceipt struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
}

// Manager assigns document identity and drives ingestion and deletion.
type Manager struct {
	chunker   *chunk.Chunker
	orch      *retrieval.Orchestrator
	driver    vector.Driver
	publisher eventstream.Publisher
	logger    *slog.Logger
}

// NewManager creates a Manager. A nil publisher disables event publishing.
func NewManager(
	chunker *chunk.Chunker,
	orch *retrieval.Orchestrator,
	driver vector.Driver,
	publisher eventstream.Publisher,
	logger *slog.Logger,
) (*Manager, error) {
	if chunker == nil {
		return nil, fmt.Errorf("%w: chunker is required", memory.ErrConfiguration)
	}

	if orch == nil {
		return nil, fmt.Errorf("%w: orchestrator is required", memory.ErrConfiguration)
	}

	if driver == nil {
		return nil, fmt.Errorf("%w: vector driver is required", memory.ErrConfiguration)
	}

	if publisher == nil {
		publisher = nop.NewPublisher()
	}

	return &Manager{
		chunker:   chunker,
		orch:      orch,
		driver:    driver,
		publisher: publisher,
		logger:    logger,
	}, nil
}

// Upload chunks rawText, tags every segment with the filename and upload
// time, and ingests the segments under a fresh document id.
func (m *Manager) Upload(ctx context.Context, filename, rawText string) (UploadReceipt, error) {
	documentID := uuid.NewString()

	meta := memory.Metadata{
		"filename":    filename,
		"uploaded_at": time.Now().UTC().Format(time.RFC3339),
	}

	segments := m.chunker.Chunk(rawText, meta)

	count, err := m.orch.Ingest(ctx, documentID, segments)
	if err != nil {
		return UploadReceipt{}, fmt.Errorf("ingesting document %s: %w", documentID, err)
	}

	m.logger.Info("document uploaded",
		"document_id", documentID,
		"filename", filename,
		"chunks", count,
	)

	m.publish(ctx, &eventstream.DocumentEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeDocumentIngested,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		DocumentID:    documentID,
		Filename:      filename,
		SegmentCount:  count,
	})

	return UploadReceipt{
		DocumentID: documentID,
		Filename:   filename,
		ChunkCount: count,
	}, nil
}

// Delete removes every segment belonging to documentID from the vector
// store. Deleting an unknown document succeeds.
func (m *Manager) Delete(ctx context.Context, documentID string) error {
	if err := m.driver.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("%w: deleting document %s: %v", memory.ErrRetrieval, documentID, err)
	}

	m.logger.Info("document deleted",
		"document_id", documentID,
	)

	m.publish(ctx, &eventstream.DocumentEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeDocumentDeleted,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		DocumentID:    documentID,
	})

	return nil
}

// publish is best effort. A stream failure never fails the lifecycle call.
func (m *Manager) publish(ctx context.Context, event *eventstream.DocumentEvent) {
	if err := m.publisher.PublishDocument(ctx, event); err != nil {
		m.logger.Warn("publishing document event failed",
			"event_type", event.EventType,
			"document_id", event.DocumentID,
			"error", err,
		)
	}
}
