// Package qdrant provides a Qdrant vector database driver over gRPC.
package qdrant

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"github.com/papercomputeco/mnemo/pkg/memory"
	"github.com/papercomputeco/mnemo/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection for stored segments.
	DefaultCollectionName = "memories"

	// DefaultHost and DefaultPort point at a local Qdrant gRPC endpoint.
	DefaultHost = "localhost"
	DefaultPort = 6334
)

// Driver implements vector.Driver backed by a Qdrant collection.
type Driver struct {
	client         *qdrant.Client
	collectionName string
	logger         *slog.Logger
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Host and Port locate the Qdrant gRPC endpoint.
	// Default to DefaultHost:DefaultPort when empty/zero.
	Host string
	Port int

	// APIKey authenticates against a managed Qdrant instance. Optional.
	APIKey string

	// CollectionName is the collection to use.
	// Defaults to DefaultCollectionName if empty.
	CollectionName string

	// Dimensions is the embedding dimension the collection is created with.
	// Required.
	Dimensions uint
}

// NewDriver connects to Qdrant and ensures the collection exists with the
// declared dimension and cosine distance. Creation is idempotent: if a
// concurrent caller created the collection first, that is success.
func NewDriver(ctx context.Context, c Config, logger *slog.Logger) (*Driver, error) {
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("qdrant embedding dimensions cannot be 0, must be configured")
	}

	host := c.Host
	if host == "" {
		host = DefaultHost
	}

	port := c.Port
	if port == 0 {
		port = DefaultPort
	}

	collectionName := c.CollectionName
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: c.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to qdrant: %v", vector.ErrConnection, err)
	}

	d := &Driver{
		client:         client,
		collectionName: collectionName,
		logger:         logger,
	}

	if err := d.ensureCollection(ctx, uint64(c.Dimensions)); err != nil {
		client.Close()
		return nil, fmt.Errorf("ensuring collection %q: %w", collectionName, err)
	}

	logger.Info("connected to qdrant",
		"host", host,
		"port", port,
		"collection", collectionName,
		"dimensions", c.Dimensions,
	)

	return d, nil
}

// ensureCollection creates the collection only if absent.
func (d *Driver) ensureCollection(ctx context.Context, dimensions uint64) error {
	exists, err := d.client.CollectionExists(ctx, d.collectionName)
	if err != nil {
		return fmt.Errorf("%w: checking collection: %v", vector.ErrConnection, err)
	}
	if exists {
		return nil
	}

	err = d.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: d.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimensions,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err == nil {
		d.logger.Info("created qdrant collection", "collection", d.collectionName)
		return nil
	}

	// A concurrent caller may have created it between the existence check
	// and the create call. Re-check before reporting failure.
	exists, checkErr := d.client.CollectionExists(ctx, d.collectionName)
	if checkErr == nil && exists {
		return nil
	}

	return fmt.Errorf("creating collection: %w", err)
}

// Upsert stores points, overwriting any existing point with the same ID.
func (d *Driver) Upsert(ctx context.Context, points []vector.Point) error {
	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: qdrant.NewValueMap(payloadMap(p.Payload)),
		}
	}

	_, err := d.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: d.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrantPoints,
	})
	if err != nil {
		return fmt.Errorf("upserting %d points: %w", len(points), err)
	}

	d.logger.Debug("upserted points to qdrant",
		"count", len(points),
	)

	return nil
}

// Query finds the topK most similar points, restricted by the filter.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int, filter memory.Metadata) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	queryFilter, err := TranslateFilter(filter)
	if err != nil {
		return nil, err
	}

	limit := uint64(topK)
	scored, err := d.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: d.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          &limit,
		Filter:         queryFilter,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	results := make([]vector.QueryResult, 0, len(scored))
	for _, hit := range scored {
		results = append(results, vector.QueryResult{
			Point: vector.Point{
				ID:      pointID(hit.Id),
				Payload: payloadFromValues(hit.Payload),
			},
			Score: hit.Score,
		})
	}

	d.logger.Debug("queried qdrant",
		"results", len(results),
	)

	return results, nil
}

// DeleteByDocument removes every point whose payload document_id matches.
func (d *Driver) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := d.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: d.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("document_id", documentID),
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("deleting points for document %s: %w", documentID, err)
	}

	d.logger.Debug("deleted document from qdrant",
		"document_id", documentID,
	)

	return nil
}

// Stats reports the collection's point count.
func (d *Driver) Stats(ctx context.Context) (vector.Stats, error) {
	info, err := d.client.GetCollectionInfo(ctx, d.collectionName)
	if err != nil {
		return vector.Stats{}, fmt.Errorf("getting collection info: %w", err)
	}

	return vector.Stats{
		Points: info.GetPointsCount(),
	}, nil
}

// Ping reports whether the Qdrant endpoint is reachable.
func (d *Driver) Ping(ctx context.Context) error {
	if _, err := d.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("%w: %v", vector.ErrConnection, err)
	}
	return nil
}

// Close releases the gRPC connection.
func (d *Driver) Close() error {
	return d.client.Close()
}

// TranslateFilter converts a conjunctive-equality metadata filter into
// Qdrant match conditions. Every entry is ANDed; keys are matched against
// the nested metadata payload. Float values are accepted only when whole,
// since Qdrant match conditions cover keywords, integers, and booleans.
func TranslateFilter(filter memory.Metadata) (*qdrant.Filter, error) {
	if len(filter) == 0 {
		return nil, nil
	}

	conditions := make([]*qdrant.Condition, 0, len(filter))
	for key, value := range filter {
		field := "metadata." + key

		switch v := value.(type) {
		case string:
			conditions = append(conditions, qdrant.NewMatch(field, v))
		case bool:
			conditions = append(conditions, qdrant.NewMatchBool(field, v))
		case int:
			conditions = append(conditions, qdrant.NewMatchInt(field, int64(v)))
		case int64:
			conditions = append(conditions, qdrant.NewMatchInt(field, v))
		case float64:
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("%w: %s=%v (non-integral float)", vector.ErrBadFilter, key, v)
			}
			conditions = append(conditions, qdrant.NewMatchInt(field, int64(v)))
		default:
			return nil, fmt.Errorf("%w: %s has kind %T", vector.ErrBadFilter, key, value)
		}
	}

	return &qdrant.Filter{Must: conditions}, nil
}

// payloadMap flattens a point payload into the generic map shape qdrant's
// value builder accepts.
func payloadMap(p vector.Payload) map[string]any {
	meta := make(map[string]any, len(p.Metadata))
	for k, v := range p.Metadata {
		meta[k] = v
	}

	return map[string]any{
		"text":         p.Text,
		"document_id":  p.DocumentID,
		"start_offset": p.StartOffset,
		"end_offset":   p.EndOffset,
		"metadata":     meta,
	}
}

// payloadFromValues reconstructs a payload from qdrant's value map.
func payloadFromValues(values map[string]*qdrant.Value) vector.Payload {
	p := vector.Payload{
		Text:        values["text"].GetStringValue(),
		DocumentID:  values["document_id"].GetStringValue(),
		StartOffset: int(values["start_offset"].GetIntegerValue()),
		EndOffset:   int(values["end_offset"].GetIntegerValue()),
	}

	if s := values["metadata"].GetStructValue(); s != nil {
		meta := make(memory.Metadata, len(s.GetFields()))
		for k, v := range s.GetFields() {
			switch kind := v.GetKind().(type) {
			case *qdrant.Value_StringValue:
				meta[k] = kind.StringValue
			case *qdrant.Value_IntegerValue:
				meta[k] = kind.IntegerValue
			case *qdrant.Value_DoubleValue:
				meta[k] = kind.DoubleValue
			case *qdrant.Value_BoolValue:
				meta[k] = kind.BoolValue
			}
		}
		if len(meta) > 0 {
			p.Metadata = meta
		}
	}

	return p
}

// pointID renders a qdrant point id back to the segment's string id.
func pointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

// Ensure Driver implements vector.Driver
var _ vector.Driver = (*Driver)(nil)
