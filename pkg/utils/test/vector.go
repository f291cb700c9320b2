package testutils

import (
	"context"
	"fmt"

	"github.com/papercomputeco/mnemo/pkg/memory"
	"github.com/papercomputeco/mnemo/pkg/vector"
)

// MockVectorDriver is a test vector driver that stores points in memory and
// records calls.
type MockVectorDriver struct {
	Points []vector.Point

	// QueryCalls counts Query invocations.
	QueryCalls int

	// UpsertCalls counts Upsert invocations.
	UpsertCalls int

	// FailQuery causes Query to return an error.
	FailQuery bool

	// FailUpsert causes Upsert to return an error.
	FailUpsert bool
}

func NewMockVectorDriver() *MockVectorDriver {
	return &MockVectorDriver{
		Points: make([]vector.Point, 0),
	}
}

func (m *MockVectorDriver) Upsert(_ context.Context, points []vector.Point) error {
	m.UpsertCalls++
	if m.FailUpsert {
		return fmt.Errorf("mock upsert failure")
	}

	for _, p := range points {
		replaced := false
		for i := range m.Points {
			if m.Points[i].ID == p.ID {
				m.Points[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			m.Points = append(m.Points, p)
		}
	}
	return nil
}

// Query returns stored points that match the filter, in insertion order,
// with a descending synthetic score.
func (m *MockVectorDriver) Query(_ context.Context, _ []float32, topK int, filter memory.Metadata) ([]vector.QueryResult, error) {
	m.QueryCalls++
	if m.FailQuery {
		return nil, fmt.Errorf("mock query failure")
	}

	results := make([]vector.QueryResult, 0, topK)
	for _, p := range m.Points {
		if !metadataMatches(p.Payload.Metadata, filter) {
			continue
		}
		results = append(results, vector.QueryResult{
			Point: p,
			Score: 1.0 - float32(len(results))*0.1,
		})
		if len(results) == topK {
			break
		}
	}
	return results, nil
}

func metadataMatches(meta, filter memory.Metadata) bool {
	for key, want := range filter {
		if got, ok := meta[key]; !ok || got != want {
			return false
		}
	}
	return true
}

func (m *MockVectorDriver) DeleteByDocument(_ context.Context, documentID string) error {
	kept := m.Points[:0]
	for _, p := range m.Points {
		if p.Payload.DocumentID != documentID {
			kept = append(kept, p)
		}
	}
	m.Points = kept
	return nil
}

func (m *MockVectorDriver) Stats(_ context.Context) (vector.Stats, error) {
	return vector.Stats{Points: uint64(len(m.Points))}, nil
}

func (m *MockVectorDriver) Ping(_ context.Context) error {
	return nil
}

func (m *MockVectorDriver) Close() error {
	return nil
}
