// Package embeddings
package embeddings

import "context"

// Embedder provides text embedding capabilities.
//
// EmbedBatch is positional: output[i] is the embedding of input[i].
// Implementations must preserve input order.
type Embedder interface {
	// Embed converts text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts a batch of texts into embeddings in one provider
	// round-trip, preserving input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions reports the provider's declared output dimension.
	Dimensions() uint

	// Ping reports whether the provider is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the embedder.
	Close() error
}
