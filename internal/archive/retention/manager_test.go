package retention

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"mempoolarchive/internal/archive/types"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestRun_DeletesExpired(t *testing.T) {
	dataDir := t.TempDir()

	oldDay := time.Now().UTC().AddDate(0, 0, -10).Format(types.DayFormat)
	newDay := time.Now().UTC().AddDate(0, 0, -1).Format(types.DayFormat)

	oldPath := filepath.Join(dataDir, "transactions", oldDay+".parquet")
	newPath := filepath.Join(dataDir, "transactions", newDay+".parquet")
	touch(t, oldPath)
	touch(t, newPath)

	m := New(dataDir, 5*24*time.Hour)
	results := m.Run(false)

	var deleted, skipped int
	for _, r := range results {
		deleted += r.FilesDeleted
		skipped += r.FilesSkipped
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}

	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Error("expired partition still present")
	}
	if _, err := os.Stat(newPath); err != nil {
		t.Error("recent partition was deleted")
	}
}

func TestRun_DryRun(t *testing.T) {
	dataDir := t.TempDir()
	oldDay := time.Now().UTC().AddDate(0, 0, -10).Format(types.DayFormat)
	path := filepath.Join(dataDir, "sourcelog", oldDay+".parquet")
	touch(t, path)

	m := New(dataDir, 24*time.Hour)
	results := m.Run(true)

	var deleted int
	for _, r := range results {
		deleted += r.FilesDeleted
	}
	if deleted != 1 {
		t.Errorf("dry run reported %d deletions, want 1", deleted)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("dry run must not delete anything")
	}
}

func TestRun_Disabled(t *testing.T) {
	dataDir := t.TempDir()
	touch(t, filepath.Join(dataDir, "sourcelog", "2020-01-01.parquet"))

	m := New(dataDir, 0)
	if results := m.Run(false); results != nil {
		t.Errorf("disabled retention returned results: %v", results)
	}
}

func TestRun_LegacyLayout(t *testing.T) {
	dataDir := t.TempDir()

	oldDay := time.Now().UTC().AddDate(0, 0, -10).Format(types.DayFormat)
	legacy := filepath.Join(dataDir, oldDay+"_transactions.parquet")
	touch(t, legacy)

	m := New(dataDir, 24*time.Hour)
	m.Run(false)

	if _, err := os.Stat(legacy); !os.IsNotExist(err) {
		t.Error("expired legacy-layout partition still present")
	}
}

func TestRun_IgnoresForeignFiles(t *testing.T) {
	dataDir := t.TempDir()
	touch(t, filepath.Join(dataDir, "sourcelog", "notes.parquet"))
	touch(t, filepath.Join(dataDir, "sourcelog", "2020-01-01.csv"))

	m := New(dataDir, 24*time.Hour)
	results := m.Run(false)

	var deleted int
	for _, r := range results {
		deleted += r.FilesDeleted
	}
	if deleted != 0 {
		t.Errorf("deleted %d foreign files", deleted)
	}
	if _, err := os.Stat(filepath.Join(dataDir, "sourcelog", "notes.parquet")); err != nil {
		t.Error("non-day parquet file was deleted")
	}
}

func TestPartitionDay(t *testing.T) {
	cases := []struct {
		name string
		kind types.Kind
		want string
	}{
		{"2023-08-31.parquet", types.KindTransactions, "2023-08-31"},
		{"2023-08-31_transactions.parquet", types.KindTransactions, "2023-08-31"},
		{"2023-08-31_sourcelog.parquet", types.KindSourcelog, "2023-08-31"},
	}
	for _, tc := range cases {
		if got := partitionDay(tc.name, tc.kind); got != tc.want {
			t.Errorf("partitionDay(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
