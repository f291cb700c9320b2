package testutils

import (
	"context"
	"fmt"
)

// MockEmbedder is a test embedder that returns predictable embeddings
type MockEmbedder struct {
	Embeddings map[string][]float32

	// FailOn causes Embed to return an error when the input text matches
	FailOn string

	// EmbedCalls counts single-text Embed invocations.
	EmbedCalls int

	// BatchCalls counts EmbedBatch invocations.
	BatchCalls int
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
	}
}

func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.EmbedCalls++

	if m.FailOn != "" && text == m.FailOn {
		return nil, fmt.Errorf("mock embedding failure for: %s", text)
	}

	if emb, ok := m.Embeddings[text]; ok {
		return emb, nil
	}

	// Return a default embedding for any text
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.BatchCalls++

	vecs := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if m.FailOn != "" && text == m.FailOn {
			return nil, fmt.Errorf("mock embedding failure for: %s", text)
		}
		if emb, ok := m.Embeddings[text]; ok {
			vecs = append(vecs, emb)
			continue
		}
		vecs = append(vecs, []float32{0.1, 0.2, 0.3})
	}
	return vecs, nil
}

func (m *MockEmbedder) Dimensions() uint {
	return 3
}

func (m *MockEmbedder) Ping(_ context.Context) error {
	return nil
}

func (m *MockEmbedder) Close() error {
	return nil
}
