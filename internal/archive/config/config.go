// Package config provides configuration for the mempool archive.
//
// Configuration is loaded from a YAML file on top of DefaultConfig. A local
// .env file, when present, is loaded into the process environment before any
// environment lookups happen.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"mempoolarchive/internal/archive/types"
)

// Config represents the complete archive configuration.
type Config struct {
	// DataDir is the root directory for all partition files.
	DataDir string `yaml:"data_dir"`

	// Source configures the remote dump source.
	Source SourceConfig `yaml:"source"`

	// Compression configures Parquet compression.
	Compression CompressionConfig `yaml:"compression"`

	// Ingest configures the ingestion pipeline.
	Ingest IngestConfig `yaml:"ingest"`

	// Query configures the query service.
	Query QueryConfig `yaml:"query"`

	// Retention configures partition pruning.
	Retention RetentionConfig `yaml:"retention"`
}

// SourceConfig configures the remote dump source.
type SourceConfig struct {
	// BaseURL is the root of the per-month dump tree.
	BaseURL string `yaml:"base_url"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `yaml:"timeout"`

	// Progress enables download progress logging.
	Progress bool `yaml:"progress"`
}

// CompressionConfig configures Parquet compression.
type CompressionConfig struct {
	// Algorithm is the compression algorithm: gzip, zstd, snappy, lz4, none.
	Algorithm string `yaml:"algorithm"`

	// Level is the compression level (for zstd: 1-22).
	Level int `yaml:"level"`
}

// IngestConfig configures the ingestion pipeline.
type IngestConfig struct {
	// Workers is the number of days ingested concurrently in a batch.
	Workers int `yaml:"workers"`
}

// QueryConfig configures the query service.
type QueryConfig struct {
	// MemoryLimit is the DuckDB memory limit.
	MemoryLimit string `yaml:"memory_limit"`
}

// RetentionConfig configures partition pruning.
type RetentionConfig struct {
	// MaxAge is the maximum partition age; zero disables pruning.
	MaxAge time.Duration `yaml:"max_age"`
}

// LoadEnvFile loads a local .env file into the environment if one exists.
func LoadEnvFile() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(".env")
}

// Load loads configuration from a YAML file on top of defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Source: SourceConfig{
			BaseURL: "https://mempool-dumpster.flashbots.net/ethereum/mainnet",
			Timeout: 120 * time.Second,
		},
		Compression: CompressionConfig{
			// The dumps are write-once archives; gzip favors size over speed.
			Algorithm: "gzip",
		},
		Ingest: IngestConfig{
			Workers: 2,
		},
		Query: QueryConfig{
			MemoryLimit: "2GB",
		},
	}
}

// KindDir returns the partition directory for a record kind.
func (c *Config) KindDir(kind types.Kind) string {
	return filepath.Join(c.DataDir, kind.String())
}

// EnsureDirectories creates the data directory and all kind subdirectories.
func (c *Config) EnsureDirectories() error {
	for _, kind := range types.AllKinds() {
		if err := os.MkdirAll(c.KindDir(kind), 0755); err != nil {
			return fmt.Errorf("create %s directory: %w", kind, err)
		}
	}
	return nil
}
