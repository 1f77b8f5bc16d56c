// mempoolarch maintains a day-partitioned archive of historical mempool
// transaction observations and answers time-range queries against it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"mempoolarchive/internal/archive"
	"mempoolarchive/internal/archive/config"
	"mempoolarchive/internal/archive/ingest"
	"mempoolarchive/internal/archive/types"
	"mempoolarchive/internal/fetch"
	"mempoolarchive/internal/listing"
	"mempoolarchive/internal/logging"
	"mempoolarchive/internal/shell"
)

// Version is set at build time via ldflags
var Version = "dev"

const usageText = `Usage: mempoolarch [flags] <command> [args]

Commands:
  list-months              List available months
  list-days <month>        List available days in a month
  get <day|month>          Download and ingest data for a day or a whole month
  query                    Query raw transactions in a time window
  stats <day>              Print summary statistics for a day
  sql                      Interactive SQL shell over the archive
  prune                    Delete partitions older than the retention age

Flags:
`

func main() {
	cfgPath := flag.String("config", "", "config file path")
	datadir := flag.String("datadir", "", "data directory (or MEMPOOL_DATADIR env)")
	overwrite := flag.Bool("overwrite", false, "overwrite existing partition files")
	ignoreErrors := flag.Bool("ignore-errors", false, "skip per-day errors and continue")
	progress := flag.Bool("progress", false, "log download progress")
	verbose := flag.Bool("verbose", false, "debug logging")
	jsonLog := flag.Bool("json-log", false, "JSON log output")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usageText)
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logging.Init(level, *jsonLog)

	if err := config.LoadEnvFile(); err != nil {
		log.Fatalf("Load .env: %v", err)
	}

	cfg := config.DefaultConfig()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("Load config: %v", err)
		}
	}

	// Datadir precedence: flag, env, config file.
	if env := os.Getenv("MEMPOOL_DATADIR"); env != "" && *datadir == "" {
		*datadir = env
	}
	if *datadir != "" {
		cfg.DataDir = *datadir
	}
	cfg.Source.Progress = cfg.Source.Progress || *progress

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()

	switch args[0] {
	case "list-months":
		runListMonths(ctx, cfg)
	case "list-days":
		runListDays(ctx, cfg, args[1:])
	case "get":
		runGet(ctx, cfg, args[1:], *overwrite, *ignoreErrors)
	case "query":
		runQuery(ctx, cfg, args[1:])
	case "stats":
		runStats(ctx, cfg, args[1:])
	case "sql":
		runSQL(cfg)
	case "prune":
		runPrune(cfg, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		flag.Usage()
		os.Exit(2)
	}
}

func runListMonths(ctx context.Context, cfg *config.Config) {
	client := listing.New(cfg.Source.BaseURL, cfg.Source.Timeout)
	months, err := client.Months(ctx)
	if err != nil {
		log.Fatalf("List months: %v", err)
	}
	for _, month := range months {
		fmt.Println(month)
	}
}

func runListDays(ctx context.Context, cfg *config.Config, args []string) {
	if len(args) != 1 {
		log.Fatal("Usage: mempoolarch list-days <month>")
	}
	client := listing.New(cfg.Source.BaseURL, cfg.Source.Timeout)
	days, err := client.Days(ctx, args[0])
	if err != nil {
		log.Fatalf("List days: %v", err)
	}
	for _, day := range days {
		fmt.Println(day)
	}
}

func runGet(ctx context.Context, cfg *config.Config, args []string, overwrite, ignoreErrors bool) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	sourcelog := fs.Bool("sourcelog", false, "ingest sourcelog files (on by default)")
	txData := fs.Bool("transaction-data", false, "ingest transaction data files (on by default)")
	txs := fs.Bool("transactions", false, "ingest transaction files (off by default)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		log.Fatal("Usage: mempoolarch get [flags] <day|month>")
	}
	dayOrMonth := fs.Arg(0)

	// No explicit kind selection means the default set.
	if !*sourcelog && !*txData && !*txs {
		*sourcelog = true
		*txData = true
	}
	var kinds []types.Kind
	if *sourcelog {
		kinds = append(kinds, types.KindSourcelog)
	}
	if *txData {
		kinds = append(kinds, types.KindTransactionData)
	}
	if *txs {
		kinds = append(kinds, types.KindTransactions)
	}

	days := []string{dayOrMonth}
	if !types.IsDay(dayOrMonth) {
		client := listing.New(cfg.Source.BaseURL, cfg.Source.Timeout)
		var err error
		days, err = client.Days(ctx, dayOrMonth)
		if err != nil {
			log.Fatalf("List days for %s: %v", dayOrMonth, err)
		}
	}

	fetcher := fetch.New(cfg.Source.BaseURL, cfg.Source.Timeout, cfg.Source.Progress)
	svc, err := archive.New(cfg, fetcher)
	if err != nil {
		log.Fatalf("Create archive: %v", err)
	}
	defer svc.Close()

	result, err := svc.IngestDays(ctx, days, kinds, ingest.Options{
		Overwrite: overwrite,
		Strict:    !ignoreErrors,
	})
	if err != nil {
		log.Fatalf("Ingest: %v", err)
	}

	fmt.Printf("written=%d skipped=%d errors=%d\n",
		result.Written, result.Skipped, len(result.Errors))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "error: %v\n", e)
		}
		os.Exit(1)
	}
}

func runQuery(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	from := fs.String("from", "", "window start (RFC3339 or epoch millis), inclusive")
	to := fs.String("to", "", "window end (RFC3339 or epoch millis), exclusive")
	fs.Parse(args)

	if *from == "" || *to == "" {
		log.Fatal("Usage: mempoolarch query -from <time> -to <time>")
	}
	fromMs, err := parseTimeArg(*from)
	if err != nil {
		log.Fatalf("Parse -from: %v", err)
	}
	toMs, err := parseTimeArg(*to)
	if err != nil {
		log.Fatalf("Parse -to: %v", err)
	}

	svc, err := archive.New(cfg, nil)
	if err != nil {
		log.Fatalf("Create archive: %v", err)
	}
	defer svc.Close()

	txs, err := svc.QueryRawTransactions(ctx, fromMs, toMs)
	if err != nil {
		log.Fatalf("Query: %v", err)
	}

	fmt.Println("timestamp_ms,raw_tx")
	for _, tx := range txs {
		fmt.Printf("%d,%s\n", tx.TimestampMs, hexutil.Encode(tx.RawTx))
	}
}

func runStats(ctx context.Context, cfg *config.Config, args []string) {
	if len(args) != 1 {
		log.Fatal("Usage: mempoolarch stats <day>")
	}

	svc, err := archive.New(cfg, nil)
	if err != nil {
		log.Fatalf("Create archive: %v", err)
	}
	defer svc.Close()

	summary, err := svc.Summary(ctx, args[0])
	if err != nil {
		log.Fatalf("Stats: %v", err)
	}

	fmt.Printf("day=%s rows=%d\n", summary.Day, summary.Rows)
	fmt.Printf("dataSize  p50=%.0f p90=%.0f p99=%.0f\n",
		summary.DataSize.P50, summary.DataSize.P90, summary.DataSize.P99)
	fmt.Printf("gasPrice  p50=%.0f p90=%.0f p99=%.0f\n",
		summary.GasPrice.P50, summary.GasPrice.P90, summary.GasPrice.P99)
}

func runSQL(cfg *config.Config) {
	svc, err := archive.New(cfg, nil)
	if err != nil {
		log.Fatalf("Create archive: %v", err)
	}
	defer svc.Close()

	if err := shell.New(svc.Query()).Run(); err != nil {
		log.Fatalf("Shell: %v", err)
	}
}

func runPrune(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("prune", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "report what would be deleted without deleting")
	maxAge := fs.Duration("max-age", 0, "maximum partition age (overrides config)")
	fs.Parse(args)

	if *maxAge > 0 {
		cfg.Retention.MaxAge = *maxAge
	}
	if cfg.Retention.MaxAge <= 0 {
		log.Fatal("Prune: no retention age configured (use -max-age or retention.max_age)")
	}

	svc, err := archive.New(cfg, nil)
	if err != nil {
		log.Fatalf("Create archive: %v", err)
	}
	defer svc.Close()

	for _, r := range svc.Prune(*dryRun) {
		fmt.Printf("%s: deleted=%d bytes_freed=%d skipped=%d errors=%d\n",
			r.Kind, r.FilesDeleted, r.BytesFreed, r.FilesSkipped, len(r.Errors))
	}
}

// parseTimeArg accepts RFC3339 or raw epoch milliseconds.
func parseTimeArg(s string) (int64, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("not epoch millis or RFC3339: %q", s)
	}
	return t.UnixMilli(), nil
}
