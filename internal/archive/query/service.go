// Package query implements the cross-partition range query engine.
//
// A query enumerates the calendar days its window touches, verifies every
// day's partition exists before reading any of them, reads only the timestamp
// and raw-payload columns per partition with DuckDB, and merges the per-day
// results into one ascending time-ordered slice. The engine is stateless per
// call and never mutates partitions; it is safe for concurrent use.
package query

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	_ "github.com/marcboeker/go-duckdb"

	"mempoolarchive/internal/archive/partition"
	"mempoolarchive/internal/archive/types"
	"mempoolarchive/internal/errors"
	"mempoolarchive/internal/logging"
)

// Service answers time-range queries over the archive's partition files.
// It uses DuckDB to read Parquet files, projecting only the needed columns.
type Service struct {
	dataDir string
	db      *sql.DB
}

// New creates a query service. memoryLimit bounds DuckDB memory usage;
// empty means the DuckDB default.
func New(dataDir string, memoryLimit string) (*Service, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	if memoryLimit != "" {
		if _, err := db.Exec(fmt.Sprintf("SET memory_limit='%s'", memoryLimit)); err != nil {
			db.Close()
			return nil, fmt.Errorf("set memory limit: %w", err)
		}
	}

	return &Service{dataDir: dataDir, db: db}, nil
}

// Close closes the query service.
func (s *Service) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// QueryRawTransactions returns the raw transactions observed in the half-open
// window [fromMs, toMs), ascending by timestamp. It is defined only over the
// transactions kind.
//
// Every day the window touches must have a partition; the first missing day
// fails the whole call with a DayNotFoundError before anything is read. A
// caller cannot otherwise distinguish "this window has no data" from "this
// window is missing data".
func (s *Service) QueryRawTransactions(ctx context.Context, fromMs, toMs int64) ([]types.RawTransaction, error) {
	log := logging.Component("query")

	if !types.ValidMillis(fromMs) {
		return nil, &errors.InvalidTimestampError{Field: "from_ms", Millis: fromMs}
	}
	if !types.ValidMillis(toMs) {
		return nil, &errors.InvalidTimestampError{Field: "to_ms", Millis: toMs}
	}
	if fromMs > toMs {
		return nil, &errors.InvalidTimestampError{
			Field:  "from_ms",
			Millis: fromMs,
			Reason: fmt.Sprintf("after to_ms=%d", toMs),
		}
	}

	days := types.DaysBetween(fromMs, toMs)

	// Preflight: every enumerated day must be present before any read.
	paths := make([]string, 0, len(days))
	for _, day := range days {
		path, err := partition.Resolve(s.dataDir, types.KindTransactions, day)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	var result []types.RawTransaction
	for _, path := range paths {
		rows, err := s.readWindow(ctx, path, fromMs, toMs)
		if err != nil {
			return nil, err
		}
		result = append(result, rows...)
	}

	// Day files are self-ordered only by arrival; the merged window is not.
	// Stable sort keeps tie order deterministic per call; there is no
	// documented secondary key among equal timestamps.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})

	log.Debug("range query done",
		"from_ms", fromMs, "to_ms", toMs, "days", len(days), "rows", len(result))

	return result, nil
}

// readWindow reads one partition's rows inside [fromMs, toMs), projecting
// only the timestamp and raw payload columns.
func (s *Service) readWindow(ctx context.Context, path string, fromMs, toMs int64) ([]types.RawTransaction, error) {
	const q = `
		SELECT epoch_ms(timestamp), "rawTx"
		FROM read_parquet($1)
		WHERE epoch_ms(timestamp) >= $2
		  AND epoch_ms(timestamp) < $3
	`

	rows, err := s.db.QueryContext(ctx, q, path, fromMs, toMs)
	if err != nil {
		return nil, &errors.PartitionReadError{Path: path, Err: err}
	}
	defer rows.Close()

	var result []types.RawTransaction
	for rows.Next() {
		var ts sql.NullInt64
		var raw sql.NullString
		if err := rows.Scan(&ts, &raw); err != nil {
			return nil, &errors.PartitionReadError{Path: path, Err: err}
		}
		// Partitions are validated at ingestion time; a null here means the
		// file does not carry the archive schema.
		if !ts.Valid || !raw.Valid {
			return nil, &errors.PartitionReadError{Path: path, Err: errors.New("null value in projected column")}
		}
		result = append(result, types.RawTransaction{TimestampMs: ts.Int64, RawTx: []byte(raw.String)})
	}
	if err := rows.Err(); err != nil {
		return nil, &errors.PartitionReadError{Path: path, Err: err}
	}

	return result, nil
}

// ExecuteSQL executes an ad-hoc SQL query with DuckDB and returns the column
// names plus all rows. This backs the interactive shell.
func (s *Service) ExecuteSQL(ctx context.Context, query string) ([]string, [][]any, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var results [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		results = append(results, values)
	}

	return columns, results, rows.Err()
}
