package query

import (
	"context"
	"os"
	"testing"

	"mempoolarchive/internal/archive/parquet"
	"mempoolarchive/internal/archive/partition"
	"mempoolarchive/internal/archive/types"
	"mempoolarchive/internal/errors"
)

const (
	day1      = "2023-08-31"
	day2      = "2023-09-01"
	day1Start = int64(1693440000000) // 2023-08-31T00:00:00Z
	day2Start = int64(1693526400000) // 2023-09-01T00:00:00Z
)

func writeDay(t *testing.T, dataDir, day string, rows []parquet.RawTransactionRow) {
	t.Helper()
	store := partition.NewStore(dataDir, parquet.DefaultOptions())
	if _, err := store.WriteTransactions(day, rows, true); err != nil {
		t.Fatalf("write %s: %v", day, err)
	}
}

func rawRow(ts int64, payload byte) parquet.RawTransactionRow {
	return parquet.RawTransactionRow{
		Timestamp: ts,
		Hash:      "0x0",
		RawTx:     []byte{payload},
	}
}

func newService(t *testing.T, dataDir string) *Service {
	t.Helper()
	svc, err := New(dataDir, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestQuery_HalfOpenWindow(t *testing.T) {
	dataDir := t.TempDir()
	writeDay(t, dataDir, day1, []parquet.RawTransactionRow{
		rawRow(day1Start+1000, 0x01),
		rawRow(day1Start+2000, 0x02),
		rawRow(day1Start+3000, 0x03),
	})

	svc := newService(t, dataDir)

	// from is inclusive, to is exclusive: the row at from survives, the row
	// at to does not.
	got, err := svc.QueryRawTransactions(context.Background(), day1Start+1000, day1Start+3000)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0].TimestampMs != day1Start+1000 {
		t.Errorf("row at from_ms missing, first = %d", got[0].TimestampMs)
	}
	if got[1].TimestampMs != day1Start+2000 {
		t.Errorf("row at to_ms not excluded, last = %d", got[1].TimestampMs)
	}
}

func TestQuery_AscendingAcrossDays(t *testing.T) {
	dataDir := t.TempDir()
	// Rows deliberately unsorted inside the partitions.
	writeDay(t, dataDir, day1, []parquet.RawTransactionRow{
		rawRow(day1Start+5000, 0x02),
		rawRow(day1Start+1000, 0x01),
	})
	writeDay(t, dataDir, day2, []parquet.RawTransactionRow{
		rawRow(day2Start+2000, 0x04),
		rawRow(day2Start+1000, 0x03),
	})

	svc := newService(t, dataDir)

	got, err := svc.QueryRawTransactions(context.Background(), day1Start, day2Start+3000)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d rows, want 4", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].TimestampMs < got[i-1].TimestampMs {
			t.Fatalf("result not ascending at %d: %d after %d", i, got[i].TimestampMs, got[i-1].TimestampMs)
		}
	}
	if got[0].RawTx[0] != 0x01 || got[3].RawTx[0] != 0x04 {
		t.Errorf("payload order wrong: first=%x last=%x", got[0].RawTx, got[3].RawTx)
	}
}

func TestQuery_MissingDayFailsBeforeReading(t *testing.T) {
	dataDir := t.TempDir()
	writeDay(t, dataDir, day1, []parquet.RawTransactionRow{
		rawRow(day1Start+86340000, 0x01), // 23:59:00
	})

	svc := newService(t, dataDir)

	// The window touches 2023-09-01 even though all matching rows live in the
	// 2023-08-31 partition. Presence is checked per enumerated day.
	from := day1Start + 86340000 // 2023-08-31T23:59:00Z
	to := day2Start + 60000      // 2023-09-01T00:01:00Z
	_, err := svc.QueryRawTransactions(context.Background(), from, to)
	if err == nil {
		t.Fatal("expected error for missing 2023-09-01 partition")
	}

	var notFound *errors.DayNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error type = %T, want DayNotFoundError", err)
	}
	if notFound.Day != day2 {
		t.Errorf("missing day = %q, want %q", notFound.Day, day2)
	}

	// With both partitions present the same window succeeds.
	writeDay(t, dataDir, day2, nil)
	got, err := svc.QueryRawTransactions(context.Background(), from, to)
	if err != nil {
		t.Fatalf("query after backfill: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d rows, want 1", len(got))
	}
}

func TestQuery_EmptyWindow(t *testing.T) {
	dataDir := t.TempDir()
	writeDay(t, dataDir, day1, []parquet.RawTransactionRow{rawRow(day1Start+1000, 0x01)})

	svc := newService(t, dataDir)

	got, err := svc.QueryRawTransactions(context.Background(), day1Start+5000, day1Start+5000)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d rows, want 0 for empty window", len(got))
	}
}

func TestQuery_InvalidWindow(t *testing.T) {
	svc := newService(t, t.TempDir())

	cases := []struct {
		name string
		from int64
		to   int64
	}{
		{"negative from", -1, day1Start},
		{"negative to", day1Start, -5},
		{"beyond max", day1Start, 253402300800000},
		{"from after to", day1Start + 1000, day1Start},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.QueryRawTransactions(context.Background(), tc.from, tc.to)
			if !errors.IsInvalidTimestamp(err) {
				t.Errorf("err = %v, want InvalidTimestampError", err)
			}
		})
	}
}

func TestQuery_LegacyLayout(t *testing.T) {
	dataDir := t.TempDir()

	legacy := partition.LegacyPath(dataDir, types.KindTransactions, day1)
	rows := []parquet.RawTransactionRow{rawRow(day1Start + 1000, 0x01)}
	if _, err := parquet.WriteFile(legacy, rows, parquet.DefaultOptions()); err != nil {
		t.Fatalf("write legacy partition: %v", err)
	}

	svc := newService(t, dataDir)

	got, err := svc.QueryRawTransactions(context.Background(), day1Start, day2Start)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d rows, want 1 from legacy partition", len(got))
	}
}

func TestQuery_UnreadablePartition(t *testing.T) {
	dataDir := t.TempDir()
	writeDay(t, dataDir, day1, nil)

	// Corrupt the partition after the preflight target exists.
	path := partition.Path(dataDir, types.KindTransactions, day1)
	if err := os.WriteFile(path, []byte("not parquet"), 0644); err != nil {
		t.Fatalf("corrupt partition: %v", err)
	}

	svc := newService(t, dataDir)

	_, err := svc.QueryRawTransactions(context.Background(), day1Start, day1Start+1000)
	if err == nil {
		t.Fatal("expected error for unreadable partition")
	}
	var readErr *errors.PartitionReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("error type = %T, want PartitionReadError", err)
	}
}

func TestExecuteSQL(t *testing.T) {
	svc := newService(t, t.TempDir())

	columns, rows, err := svc.ExecuteSQL(context.Background(), "SELECT 1 AS one, 'a' AS label")
	if err != nil {
		t.Fatalf("ExecuteSQL: %v", err)
	}
	if len(columns) != 2 || columns[0] != "one" || columns[1] != "label" {
		t.Errorf("columns = %v", columns)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
}
