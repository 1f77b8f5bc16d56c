// Package parquet implements Parquet partition reading and writing.
//
// The package provides:
//   - Row types with the fixed, kind-specific column order of the archive
//   - An atomic file writer (write-to-temp-then-rename)
//   - Readers for whole-file scans
//   - Support for multiple compression algorithms (gzip, zstd, snappy, lz4)
//
// The column names and their order are part of the on-disk contract between
// ingestion and query and must not vary between runs.
package parquet
