// Package partition owns the on-disk partition layout and the idempotent
// write policy.
//
// One partition holds all normalized records for one calendar day and one
// record kind. Partitions are immutable: a write either skips (file already
// present), or produces the complete file atomically; there is no append or
// merge. The current layout is <datadir>/<kind>/<day>.parquet; the legacy
// flat layout <datadir>/<day>_<kind>.parquet is still resolved on read.
package partition

import (
	"os"
	"path/filepath"

	"mempoolarchive/internal/archive/parquet"
	"mempoolarchive/internal/archive/types"
	"mempoolarchive/internal/errors"
	"mempoolarchive/internal/logging"
)

// Status is the outcome of a partition write.
type Status int

const (
	// StatusWritten means a new partition file was produced.
	StatusWritten Status = iota
	// StatusSkipped means the partition already existed and overwrite was off.
	StatusSkipped
)

// String returns a human-readable representation of the Status.
func (s Status) String() string {
	switch s {
	case StatusWritten:
		return "written"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Path returns the partition path in the current layout.
func Path(dataDir string, kind types.Kind, day string) string {
	return filepath.Join(dataDir, kind.String(), day+".parquet")
}

// LegacyPath returns the partition path in the older flat layout.
func LegacyPath(dataDir string, kind types.Kind, day string) string {
	return filepath.Join(dataDir, day+"_"+kind.String()+".parquet")
}

// Resolve returns the existing partition path for a day, trying the current
// layout first and the legacy layout second. A missing partition yields a
// DayNotFoundError naming the day.
func Resolve(dataDir string, kind types.Kind, day string) (string, error) {
	path := Path(dataDir, kind, day)
	if fileExists(path) {
		return path, nil
	}
	legacy := LegacyPath(dataDir, kind, day)
	if fileExists(legacy) {
		return legacy, nil
	}
	return "", &errors.DayNotFoundError{Kind: kind.String(), Day: day}
}

// Exists reports whether a partition exists in either layout.
func Exists(dataDir string, kind types.Kind, day string) bool {
	_, err := Resolve(dataDir, kind, day)
	return err == nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Store writes day partitions under a data directory.
type Store struct {
	dataDir string
	opts    parquet.Options
}

// NewStore creates a partition store.
func NewStore(dataDir string, opts parquet.Options) *Store {
	return &Store{dataDir: dataDir, opts: opts}
}

// DataDir returns the store's root directory.
func (s *Store) DataDir() string {
	return s.dataDir
}

// WriteSourcelog writes one day's sourcelog partition.
func (s *Store) WriteSourcelog(day string, rows []parquet.SourcelogRow, overwrite bool) (Status, error) {
	return write(s, types.KindSourcelog, day, rows, overwrite)
}

// WriteTransactionData writes one day's transaction-data partition.
func (s *Store) WriteTransactionData(day string, rows []parquet.TransactionRow, overwrite bool) (Status, error) {
	return write(s, types.KindTransactionData, day, rows, overwrite)
}

// WriteTransactions writes one day's transactions partition.
func (s *Store) WriteTransactions(day string, rows []parquet.RawTransactionRow, overwrite bool) (Status, error) {
	return write(s, types.KindTransactions, day, rows, overwrite)
}

// write applies the idempotency rule and delegates to the atomic file writer.
func write[T any](s *Store, kind types.Kind, day string, rows []T, overwrite bool) (Status, error) {
	log := logging.Component("partition")

	if _, err := types.ParseDay(day); err != nil {
		return 0, err
	}

	if !overwrite && Exists(s.dataDir, kind, day) {
		log.Info("partition exists, skipping", "kind", kind.String(), "day", day)
		return StatusSkipped, nil
	}

	path := Path(s.dataDir, kind, day)
	n, err := parquet.WriteFile(path, rows, s.opts)
	if err != nil {
		return 0, &errors.PartitionWriteError{Kind: kind.String(), Day: day, Err: err}
	}

	log.Info("partition written", "kind", kind.String(), "day", day, "rows", n)
	return StatusWritten, nil
}
