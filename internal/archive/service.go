// Package archive ties the ingestion pipeline and the range query engine
// together behind one service.
package archive

import (
	"context"

	"mempoolarchive/internal/archive/config"
	"mempoolarchive/internal/archive/ingest"
	"mempoolarchive/internal/archive/partition"
	"mempoolarchive/internal/archive/query"
	"mempoolarchive/internal/archive/retention"
	"mempoolarchive/internal/archive/stats"
	"mempoolarchive/internal/archive/types"
)

// Service is the archive facade: batch ingestion on one side, range queries
// on the other, with the immutable partition files as the contract between
// them.
type Service struct {
	cfg       *config.Config
	ingest    *ingest.Service
	query     *query.Service
	retention *retention.Manager
}

// New creates an archive service. The fetcher supplies raw per-day dumps;
// queries only need the partition files, so a nil fetcher is allowed for
// query-only use.
func New(cfg *config.Config, fetcher ingest.Fetcher) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	q, err := query.New(cfg.DataDir, cfg.Query.MemoryLimit)
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:       cfg,
		ingest:    ingest.New(cfg, fetcher),
		query:     q,
		retention: retention.New(cfg.DataDir, cfg.Retention.MaxAge),
	}, nil
}

// Close releases the query engine.
func (s *Service) Close() error {
	return s.query.Close()
}

// Ingest runs the pipeline for one day and kind.
func (s *Service) Ingest(ctx context.Context, day string, kind types.Kind, overwrite bool) (partition.Status, error) {
	return s.ingest.Ingest(ctx, day, kind, overwrite)
}

// IngestDays ingests the given kinds for every day, concurrently.
func (s *Service) IngestDays(ctx context.Context, days []string, kinds []types.Kind, opts ingest.Options) (*ingest.BatchResult, error) {
	return s.ingest.IngestDays(ctx, days, kinds, opts)
}

// QueryRawTransactions returns the raw transactions in [fromMs, toMs),
// ascending by timestamp.
func (s *Service) QueryRawTransactions(ctx context.Context, fromMs, toMs int64) ([]types.RawTransaction, error) {
	return s.query.QueryRawTransactions(ctx, fromMs, toMs)
}

// Summary computes one day's transaction-data summary statistics.
func (s *Service) Summary(ctx context.Context, day string) (*stats.Summary, error) {
	return stats.Day(ctx, s.query, s.cfg.DataDir, day)
}

// Prune deletes partitions older than the configured retention age.
func (s *Service) Prune(dryRun bool) []retention.Result {
	return s.retention.Run(dryRun)
}

// Query exposes the underlying query service (used by the SQL shell).
func (s *Service) Query() *query.Service {
	return s.query
}
