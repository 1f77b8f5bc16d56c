package parquet

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
)

// Options configures the Parquet writer.
type Options struct {
	// Compression algorithm
	Compression CompressionType

	// CompressionLevel for algorithms that support it (zstd: 1-22)
	CompressionLevel int
}

// CompressionType represents a Parquet compression algorithm.
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionGzip
	CompressionZstd
	CompressionSnappy
	CompressionLZ4
)

// DefaultOptions returns default Parquet options. Gzip favors archival size
// over write speed; partitions are written once and read many times.
func DefaultOptions() Options {
	return Options{
		Compression: CompressionGzip,
	}
}

// ParseCompressionType parses a compression type string.
func ParseCompressionType(s string) CompressionType {
	switch s {
	case "snappy":
		return CompressionSnappy
	case "zstd":
		return CompressionZstd
	case "lz4":
		return CompressionLZ4
	case "none":
		return CompressionNone
	case "gzip", "":
		return CompressionGzip
	default:
		return CompressionGzip
	}
}

// getCompression returns the parquet-go compression codec.
func getCompression(ct CompressionType) compress.Codec {
	switch ct {
	case CompressionSnappy:
		return &parquet.Snappy
	case CompressionZstd:
		return &parquet.Zstd
	case CompressionLZ4:
		return &parquet.Lz4Raw
	case CompressionGzip:
		return &parquet.Gzip
	default:
		return &parquet.Uncompressed
	}
}

// WriteFile writes rows to a Parquet file at path. The file is produced
// atomically from the caller's perspective: rows go to a temporary file in the
// same directory which is renamed over the target only after a clean close.
// A crash mid-write never leaves a partial file under the final name.
//
// parquet-go embeds per-column min/max statistics in the column chunk
// metadata; no distinct-count or null-count statistics are computed.
func WriteFile[T any](path string, rows []T, opts Options) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("create directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	writer := parquet.NewGenericWriter[T](f,
		parquet.Compression(getCompression(opts.Compression)),
	)

	var written int64
	if len(rows) > 0 {
		n, err := writer.Write(rows)
		if err != nil {
			f.Close()
			os.Remove(tmp)
			return 0, fmt.Errorf("write rows: %w", err)
		}
		written = int64(n)
	}

	if err := writer.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return 0, fmt.Errorf("close writer: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("close file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("rename into place: %w", err)
	}

	return written, nil
}
