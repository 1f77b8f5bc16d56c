// Package ingest wires the per-day pipeline: fetch, decode, normalize, write.
//
// Ingestion is batch and idempotent. One call handles one day and one kind;
// independent days touch disjoint partition files and may run concurrently.
// Re-ingesting a day either skips (default) or fully replaces the partition
// (overwrite); partitions are never merged or patched.
package ingest

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"mempoolarchive/internal/archive/config"
	"mempoolarchive/internal/archive/decode"
	"mempoolarchive/internal/archive/normalize"
	"mempoolarchive/internal/archive/parquet"
	"mempoolarchive/internal/archive/partition"
	"mempoolarchive/internal/archive/types"
	"mempoolarchive/internal/errors"
	"mempoolarchive/internal/logging"
)

// Fetcher returns the raw compressed bytes of a per-day dump.
type Fetcher interface {
	Fetch(ctx context.Context, kind types.Kind, day string) ([]byte, error)
}

// Service runs ingestion pipelines against one partition store.
type Service struct {
	cfg     *config.Config
	fetcher Fetcher
	store   *partition.Store
}

// New creates an ingestion service.
func New(cfg *config.Config, fetcher Fetcher) *Service {
	opts := parquet.Options{
		Compression:      parquet.ParseCompressionType(cfg.Compression.Algorithm),
		CompressionLevel: cfg.Compression.Level,
	}
	return &Service{
		cfg:     cfg,
		fetcher: fetcher,
		store:   partition.NewStore(cfg.DataDir, opts),
	}
}

// Store returns the underlying partition store.
func (s *Service) Store() *partition.Store {
	return s.store
}

// Ingest runs the pipeline for one day and kind. When the partition already
// exists and overwrite is off, the dump is not even fetched.
func (s *Service) Ingest(ctx context.Context, day string, kind types.Kind, overwrite bool) (partition.Status, error) {
	log := logging.Component("ingest")

	if _, err := types.ParseDay(day); err != nil {
		return 0, err
	}

	if !overwrite && partition.Exists(s.cfg.DataDir, kind, day) {
		log.Info("partition exists, skipping ingest", "kind", kind.String(), "day", day)
		return partition.StatusSkipped, nil
	}

	log.Info("ingesting day", "kind", kind.String(), "day", day, "overwrite", overwrite)

	raw, err := s.fetcher.Fetch(ctx, kind, day)
	if err != nil {
		return 0, fmt.Errorf("fetch %s dump for %s: %w", kind, day, err)
	}

	switch kind {
	case types.KindSourcelog:
		records, err := decode.Sourcelog(raw)
		if err != nil {
			return 0, fmt.Errorf("decode %s dump for %s: %w", kind, day, err)
		}
		return s.store.WriteSourcelog(day, normalize.Sourcelog(records), overwrite)

	case types.KindTransactionData:
		records, err := decode.TransactionData(raw)
		if err != nil {
			return 0, fmt.Errorf("decode %s dump for %s: %w", kind, day, err)
		}
		return s.store.WriteTransactionData(day, normalize.TransactionData(records), overwrite)

	case types.KindTransactions:
		records, err := decode.Transactions(raw)
		if err != nil {
			return 0, fmt.Errorf("decode %s dump for %s: %w", kind, day, err)
		}
		return s.store.WriteTransactions(day, normalize.Transactions(records), overwrite)

	default:
		return 0, fmt.Errorf("%w: %d", errors.ErrUnknownKind, int(kind))
	}
}

// Options configures a multi-day batch.
type Options struct {
	// Overwrite replaces existing partitions instead of skipping them.
	Overwrite bool

	// Strict aborts the whole batch on the first per-day error. The default
	// collects errors and keeps going.
	Strict bool
}

// BatchResult summarizes a multi-day batch.
type BatchResult struct {
	Written int
	Skipped int
	Errors  []error
}

// IngestDays ingests the given kinds for every day. Days run concurrently up
// to the configured worker count; each day's partitions are disjoint files,
// so concurrent days never share mutable state.
func (s *Service) IngestDays(ctx context.Context, days []string, kinds []types.Kind, opts Options) (*BatchResult, error) {
	log := logging.Component("ingest")

	workers := s.cfg.Ingest.Workers
	if workers <= 0 {
		workers = 1
	}

	var mu sync.Mutex
	result := &BatchResult{}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, day := range days {
		day := day
		g.Go(func() error {
			for _, kind := range kinds {
				status, err := s.Ingest(ctx, day, kind, opts.Overwrite)

				mu.Lock()
				switch {
				case err != nil:
					result.Errors = append(result.Errors, err)
				case status == partition.StatusWritten:
					result.Written++
				default:
					result.Skipped++
				}
				mu.Unlock()

				if err != nil {
					log.Error("day ingest failed", "kind", kind.String(), "day", day, "error", err)
					if opts.Strict {
						return err
					}
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}

	log.Info("batch done",
		"days", len(days), "written", result.Written,
		"skipped", result.Skipped, "errors", len(result.Errors))

	return result, nil
}
