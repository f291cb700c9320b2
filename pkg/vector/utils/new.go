// Package vectorutils provides helpers for constructing vector drivers from
// configuration.
package vectorutils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/mnemo/pkg/vector"
	"github.com/papercomputeco/mnemo/pkg/vector/qdrant"
	"github.com/papercomputeco/mnemo/pkg/vector/sqlitevec"
)

// NewDriverOpts are the options to create a new vector driver.
type NewDriverOpts struct {
	// ProviderType selects the driver implementation, "qdrant" or "sqlite".
	ProviderType string

	// Host is the vector service host (qdrant).
	Host string

	// Port is the vector service port (qdrant).
	Port int

	// APIKey authenticates against the vector service (qdrant).
	APIKey string

	// CollectionName is the collection to store points in (qdrant).
	CollectionName string

	// DBPath is the database file path (sqlite).
	DBPath string

	// Dimensions is the embedding vector size. Required.
	Dimensions uint
}

// NewDriver creates a vector driver for the configured provider.
func NewDriver(ctx context.Context, opts *NewDriverOpts, logger *slog.Logger) (vector.Driver, error) {
	switch opts.ProviderType {
	case "qdrant":
		return qdrant.NewDriver(ctx, qdrant.Config{
			Host:           opts.Host,
			Port:           opts.Port,
			APIKey:         opts.APIKey,
			CollectionName: opts.CollectionName,
			Dimensions:     opts.Dimensions,
		}, logger)
	case "sqlite":
		return sqlitevec.NewDriver(sqlitevec.Config{
			DBPath:     opts.DBPath,
			Dimensions: opts.Dimensions,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", opts.ProviderType)
	}
}
