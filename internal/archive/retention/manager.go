// Package retention deletes partitions older than a configured age.
//
// Pruning is presence-based on file names only: a partition's day is parsed
// from its name, and expired files are removed. Running queries over pruned
// days fail their preflight check afterwards, which is the intended signal.
package retention

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mempoolarchive/internal/archive/types"
	"mempoolarchive/internal/logging"
)

// Manager handles cleanup of expired partitions.
type Manager struct {
	dataDir string
	maxAge  time.Duration
}

// Result holds the outcome of a cleanup pass for one kind.
type Result struct {
	Kind         types.Kind
	FilesDeleted int
	BytesFreed   int64
	FilesSkipped int
	Errors       []error
}

// New creates a retention manager. maxAge of zero disables pruning.
func New(dataDir string, maxAge time.Duration) *Manager {
	return &Manager{dataDir: dataDir, maxAge: maxAge}
}

// Run prunes expired partitions of every kind. With dryRun set, nothing is
// deleted and the results report what would have been.
func (m *Manager) Run(dryRun bool) []Result {
	log := logging.Component("retention")

	if m.maxAge <= 0 {
		log.Info("retention disabled, nothing to prune")
		return nil
	}

	cutoff := time.Now().UTC().Add(-m.maxAge)

	var results []Result
	for _, kind := range types.AllKinds() {
		result := m.pruneKind(kind, cutoff, dryRun)
		results = append(results, result)

		log.Info("kind pruned",
			"kind", kind.String(), "dry_run", dryRun,
			"deleted", result.FilesDeleted, "bytes_freed", result.BytesFreed,
			"skipped", result.FilesSkipped, "errors", len(result.Errors))
	}
	return results
}

// pruneKind prunes one kind's directory plus any legacy flat-layout files.
func (m *Manager) pruneKind(kind types.Kind, cutoff time.Time, dryRun bool) Result {
	result := Result{Kind: kind}

	files, err := m.listFiles(filepath.Join(m.dataDir, kind.String()))
	if err != nil && !os.IsNotExist(err) {
		result.Errors = append(result.Errors, fmt.Errorf("list files: %w", err))
	}
	legacy, err := m.listFiles(m.dataDir)
	if err == nil {
		for _, f := range legacy {
			if strings.HasSuffix(f.name, "_"+kind.String()+".parquet") {
				files = append(files, f)
			}
		}
	}

	for _, file := range files {
		day := partitionDay(file.name, kind)
		dayTime, err := types.ParseDay(day)
		if err != nil {
			result.FilesSkipped++
			continue
		}

		// A partition covers its whole day; it expires only once the end of
		// that day is past the cutoff.
		if dayTime.AddDate(0, 0, 1).After(cutoff) {
			result.FilesSkipped++
			continue
		}

		if !dryRun {
			if err := os.Remove(file.path); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("delete %s: %w", file.path, err))
				continue
			}
		}

		result.FilesDeleted++
		result.BytesFreed += file.size
	}

	return result
}

// partitionDay extracts the day from a partition file name in either layout.
func partitionDay(name string, kind types.Kind) string {
	base := strings.TrimSuffix(name, ".parquet")
	return strings.TrimSuffix(base, "_"+kind.String())
}

// fileInfo holds information about a file.
type fileInfo struct {
	name string
	path string
	size int64
}

// listFiles lists all Parquet files in a directory, oldest name first.
func (m *Manager) listFiles(dir string) ([]fileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []fileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if filepath.Ext(name) != ".parquet" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, fileInfo{
			name: name,
			path: filepath.Join(dir, name),
			size: info.Size(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].name < files[j].name
	})

	return files, nil
}
