package memory

import "errors"

var (
	// ErrConfiguration is returned for invalid pipeline parameters, such as
	// a chunk overlap that is not smaller than the target size. Rejected
	// before any work starts.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrEmbedding is returned when the embedding provider is unreachable
	// or returns malformed output. The whole batch fails together; no
	// partial retry is attempted.
	ErrEmbedding = errors.New("embedding failed")

	// ErrRetrieval is returned when a vector index call fails.
	ErrRetrieval = errors.New("vector index call failed")

	// ErrCacheUnavailable marks cache-layer failures. Never surfaced from a
	// search; the orchestrator degrades to a forced miss and logs it.
	ErrCacheUnavailable = errors.New("cache unavailable")
)
