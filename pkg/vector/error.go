package vector

import "errors"

var (
	// ErrConnection is returned when the vector store connection fails.
	ErrConnection = errors.New("vector store connection failed")

	// ErrBadFilter is returned when a filter value has an unsupported kind.
	ErrBadFilter = errors.New("unsupported filter value")
)
