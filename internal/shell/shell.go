// Package shell provides an interactive SQL prompt over the archive.
//
// Queries run through DuckDB, so partition files are addressed with
// read_parquet, e.g.:
//
//	SELECT count(*) FROM read_parquet('data/transactions/2023-08-31.parquet');
package shell

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	prompt "github.com/c-bata/go-prompt"
	"golang.org/x/term"

	"mempoolarchive/internal/archive/query"
	"mempoolarchive/internal/errors"
)

// ErrNotATerminal is returned when the shell is started without a TTY.
var ErrNotATerminal = errors.New("stdin is not a terminal")

// Shell is an interactive SQL REPL backed by the query service.
type Shell struct {
	svc *query.Service
}

// New creates a shell.
func New(svc *query.Service) *Shell {
	return &Shell{svc: svc}
}

// Run starts the REPL and blocks until the user exits.
func (s *Shell) Run() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ErrNotATerminal
	}

	fmt.Println("mempool archive sql shell; type 'exit' to quit")

	p := prompt.New(
		s.execute,
		completer,
		prompt.OptionPrefix("archive> "),
		prompt.OptionTitle("mempool archive"),
		prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
			trimmed := strings.TrimSpace(strings.ToLower(in))
			return breakline && (trimmed == "exit" || trimmed == "quit")
		}),
	)
	p.Run()
	return nil
}

// execute runs one statement and prints the result as a table.
func (s *Shell) execute(in string) {
	stmt := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(in), ";"))
	if stmt == "" {
		return
	}
	lower := strings.ToLower(stmt)
	if lower == "exit" || lower == "quit" {
		return
	}

	columns, rows, err := s.svc.ExecuteSQL(context.Background(), stmt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(columns, "\t"))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatValue(v)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
	fmt.Printf("(%d rows)\n", len(rows))
}

// formatValue renders one cell; byte columns are summarized, not dumped.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("<%d bytes>", len(val))
	default:
		return fmt.Sprint(val)
	}
}

var suggestions = []prompt.Suggest{
	{Text: "SELECT", Description: "query"},
	{Text: "FROM", Description: ""},
	{Text: "WHERE", Description: ""},
	{Text: "GROUP BY", Description: ""},
	{Text: "ORDER BY", Description: ""},
	{Text: "LIMIT", Description: ""},
	{Text: "read_parquet(", Description: "read a partition file"},
	{Text: "epoch_ms(", Description: "timestamp to epoch millis"},
	{Text: "count(*)", Description: ""},
	{Text: "exit", Description: "leave the shell"},
}

func completer(d prompt.Document) []prompt.Suggest {
	word := d.GetWordBeforeCursor()
	if word == "" {
		return nil
	}
	return prompt.FilterHasPrefix(suggestions, word, true)
}
