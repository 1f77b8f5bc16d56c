package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}

	if c.Source.BaseURL == "" {
		errs = append(errs, errors.New("source.base_url is required"))
	}
	if c.Source.Timeout < 0 {
		errs = append(errs, errors.New("source.timeout must not be negative"))
	}

	switch c.Compression.Algorithm {
	case "", "none", "gzip", "zstd", "snappy", "lz4":
	default:
		errs = append(errs, fmt.Errorf("compression.algorithm %q not supported", c.Compression.Algorithm))
	}
	if c.Compression.Algorithm == "zstd" && (c.Compression.Level < 0 || c.Compression.Level > 22) {
		errs = append(errs, errors.New("compression.level for zstd must be between 0 and 22"))
	}

	if c.Ingest.Workers < 0 {
		errs = append(errs, errors.New("ingest.workers must not be negative"))
	}

	if c.Retention.MaxAge < 0 {
		errs = append(errs, errors.New("retention.max_age must not be negative"))
	}

	if len(errs) == 0 {
		return nil
	}

	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return fmt.Errorf("config validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
