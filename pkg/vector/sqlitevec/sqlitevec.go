// Package sqlitevec provides a SQLite-backed vector driver using sqlite-vec.
//
// It is the embedded alternative to the Qdrant driver: segments live in a
// vec0 virtual table for KNN search plus a side table carrying the payload
// (text, document id, offsets, metadata). Useful for single-node setups and
// tests that want a real index without a running service.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/mnemo/pkg/memory"
	"github.com/papercomputeco/mnemo/pkg/vector"
)

// Driver implements vector.Driver using SQLite with sqlite-vec.
type Driver struct {
	db     *sql.DB
	logger *slog.Logger
}

// Config holds configuration for the SQLite vec driver.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string

	// Dimensions is the number of dimensions for the embedding vectors.
	// Required.
	Dimensions uint
}

// NewDriver creates a new SQLite vector driver backed by sqlite-vec.
func NewDriver(c Config, logger *slog.Logger) (*Driver, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	if c.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if c.Dimensions == 0 {
		return nil, fmt.Errorf("sqlite-vec embedding dimensions cannot be 0, must be configured")
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Verify sqlite-vec is loaded
	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite-vec not available: %w", err)
	}

	// Segment payload table. vec0 virtual tables use integer rowids, so
	// this also maps string segment IDs to integer rowids.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS segments (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			segment_id TEXT NOT NULL UNIQUE,
			document_id TEXT NOT NULL,
			text TEXT NOT NULL,
			start_offset INTEGER NOT NULL DEFAULT 0,
			end_offset INTEGER NOT NULL DEFAULT 0,
			metadata TEXT NOT NULL DEFAULT '{}'
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating segments table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS segments_document_id ON segments(document_id)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating document index: %w", err)
	}

	// vec0 virtual table for vector storage and KNN queries, cosine metric
	// to match the Qdrant collection configuration.
	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS segment_embeddings USING vec0(embedding float[%d] distance_metric=cosine)`,
		c.Dimensions,
	)
	if _, err := db.Exec(createVec); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vec0 table: %w", err)
	}

	logger.Info("sqlite-vec vector driver initialized",
		"db_path", c.DBPath,
		"dimensions", c.Dimensions,
		"vec_version", vecVersion,
	)

	return &Driver{
		db:     db,
		logger: logger,
	}, nil
}

// serializeFloat32 converts a float32 slice to a little-endian byte slice
// suitable for sqlite-vec BLOB format.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Upsert stores points, overwriting any existing point with the same ID.
func (d *Driver) Upsert(ctx context.Context, points []vector.Point) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range points {
		metaJSON, err := json.Marshal(p.Payload.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling metadata for point %s: %w", p.ID, err)
		}

		embBlob := serializeFloat32(p.Vector)

		var existingRowID int64
		err = tx.QueryRowContext(ctx,
			`SELECT rowid FROM segments WHERE segment_id = ?`, p.ID,
		).Scan(&existingRowID)

		switch err {
		case nil:
			if _, err := tx.ExecContext(ctx,
				`UPDATE segments SET document_id = ?, text = ?, start_offset = ?, end_offset = ?, metadata = ? WHERE rowid = ?`,
				p.Payload.DocumentID, p.Payload.Text, p.Payload.StartOffset, p.Payload.EndOffset, string(metaJSON), existingRowID,
			); err != nil {
				return fmt.Errorf("updating point %s: %w", p.ID, err)
			}

			// vec0 does not support UPDATE; replace via DELETE + INSERT.
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM segment_embeddings WHERE rowid = ?`, existingRowID,
			); err != nil {
				return fmt.Errorf("deleting old embedding for point %s: %w", p.ID, err)
			}

			if _, err := tx.ExecContext(ctx,
				`INSERT INTO segment_embeddings(rowid, embedding) VALUES (?, ?)`,
				existingRowID, embBlob,
			); err != nil {
				return fmt.Errorf("re-inserting embedding for point %s: %w", p.ID, err)
			}
		case sql.ErrNoRows:
			result, err := tx.ExecContext(ctx,
				`INSERT INTO segments(segment_id, document_id, text, start_offset, end_offset, metadata) VALUES (?, ?, ?, ?, ?, ?)`,
				p.ID, p.Payload.DocumentID, p.Payload.Text, p.Payload.StartOffset, p.Payload.EndOffset, string(metaJSON),
			)
			if err != nil {
				return fmt.Errorf("inserting point %s: %w", p.ID, err)
			}

			rowID, err := result.LastInsertId()
			if err != nil {
				return fmt.Errorf("getting rowid for point %s: %w", p.ID, err)
			}

			if _, err := tx.ExecContext(ctx,
				`INSERT INTO segment_embeddings(rowid, embedding) VALUES (?, ?)`,
				rowID, embBlob,
			); err != nil {
				return fmt.Errorf("inserting embedding for point %s: %w", p.ID, err)
			}
		default:
			return fmt.Errorf("checking for existing point %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("upserted points to sqlite-vec",
		"count", len(points),
	)

	return nil
}

// Query finds the topK most similar points, restricted by the filter.
//
// vec0 KNN queries cannot be combined with arbitrary payload predicates, so
// filtered queries over-fetch candidates and apply the filter on the payload
// rows before truncating to topK.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int, filter memory.Metadata) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	candidates := topK
	if len(filter) > 0 {
		candidates = topK * 10
		if candidates < 100 {
			candidates = 100
		}
	}

	queryBlob := serializeFloat32(embedding)

	rows, err := d.db.QueryContext(ctx, `
		SELECT
			s.segment_id,
			s.document_id,
			s.text,
			s.start_offset,
			s.end_offset,
			s.metadata,
			se.distance
		FROM segment_embeddings se
		INNER JOIN segments s ON s.rowid = se.rowid
		WHERE se.embedding MATCH ?
			AND se.k = ?
		ORDER BY se.distance
	`, queryBlob, candidates)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var results []vector.QueryResult
	for rows.Next() {
		var (
			segmentID, documentID, text, metaJSON string
			startOffset, endOffset                int
			distance                              float64
		)
		if err := rows.Scan(&segmentID, &documentID, &text, &startOffset, &endOffset, &metaJSON, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}

		var meta memory.Metadata
		if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata for segment %s: %w", segmentID, err)
		}

		if !matchesFilter(meta, filter) {
			continue
		}

		results = append(results, vector.QueryResult{
			Point: vector.Point{
				ID: segmentID,
				Payload: vector.Payload{
					Text:        text,
					DocumentID:  documentID,
					StartOffset: startOffset,
					EndOffset:   endOffset,
					Metadata:    meta,
				},
			},
			// Cosine distance to cosine similarity.
			Score: float32(1.0 - distance),
		})

		if len(results) == topK {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	d.logger.Debug("queried sqlite-vec",
		"results", len(results),
	)

	return results, nil
}

// validateFilter enforces the Driver filter contract: strings, bools, and
// integral numbers only. This driver could match arbitrary floats on the
// payload rows, but other backends cannot express them as match conditions,
// so they are rejected here too rather than matching on one backend and
// failing on another.
func validateFilter(filter memory.Metadata) error {
	for key, value := range filter {
		switch v := value.(type) {
		case string, bool, int, int64:
		case float64:
			if v != math.Trunc(v) {
				return fmt.Errorf("%w: %s=%v (non-integral float)", vector.ErrBadFilter, key, v)
			}
		default:
			return fmt.Errorf("%w: %s has kind %T", vector.ErrBadFilter, key, value)
		}
	}
	return nil
}

// matchesFilter reports whether metadata satisfies every filter entry.
// Numeric values compare by value since JSON round-trips integers through
// float64.
func matchesFilter(meta, filter memory.Metadata) bool {
	for key, want := range filter {
		got, ok := meta[key]
		if !ok {
			return false
		}

		if wantNum, wok := toFloat(want); wok {
			gotNum, gok := toFloat(got)
			if !gok || wantNum != gotNum {
				return false
			}
			continue
		}

		if got != want {
			return false
		}
	}
	return true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// DeleteByDocument removes every point belonging to the given document.
func (d *Driver) DeleteByDocument(ctx context.Context, documentID string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT rowid FROM segments WHERE document_id = ?`, documentID,
	)
	if err != nil {
		return fmt.Errorf("querying rowids for deletion: %w", err)
	}

	var rowIDs []int64
	for rows.Next() {
		var rowID int64
		if err := rows.Scan(&rowID); err != nil {
			rows.Close()
			return fmt.Errorf("scanning rowid: %w", err)
		}
		rowIDs = append(rowIDs, rowID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating rowids: %w", err)
	}

	for _, rowID := range rowIDs {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM segment_embeddings WHERE rowid = ?`, rowID,
		); err != nil {
			return fmt.Errorf("deleting embedding rowid %d: %w", rowID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM segments WHERE document_id = ?`, documentID,
	); err != nil {
		return fmt.Errorf("deleting segments: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("deleted document from sqlite-vec",
		"document_id", documentID,
		"segments", len(rowIDs),
	)

	return nil
}

// Stats reports the stored point count.
func (d *Driver) Stats(ctx context.Context) (vector.Stats, error) {
	var count uint64
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM segments`).Scan(&count); err != nil {
		return vector.Stats{}, fmt.Errorf("counting segments: %w", err)
	}
	return vector.Stats{Points: count}, nil
}

// Ping reports whether the database is reachable.
func (d *Driver) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	return d.db.Close()
}

// Ensure Driver implements vector.Driver
var _ vector.Driver = (*Driver)(nil)
