package types

import (
	"fmt"
	"strings"
	"time"

	"mempoolarchive/internal/errors"
)

// Kind identifies a record kind. Each kind has its own schema and its own
// storage subdirectory.
type Kind int

const (
	// KindSourcelog records which peer/relay observed a transaction.
	KindSourcelog Kind = iota
	// KindTransactionData carries the decoded transaction fields.
	KindTransactionData
	// KindTransactions carries the transaction fields plus the raw payload.
	KindTransactions
)

// String returns the canonical kind name, which is also the on-disk
// subdirectory name.
func (k Kind) String() string {
	switch k {
	case KindSourcelog:
		return "sourcelog"
	case KindTransactionData:
		return "transaction-data"
	case KindTransactions:
		return "transactions"
	default:
		return "unknown"
	}
}

// ParseKind parses a kind name.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "sourcelog":
		return KindSourcelog, nil
	case "transaction-data":
		return KindTransactionData, nil
	case "transactions":
		return KindTransactions, nil
	default:
		return 0, fmt.Errorf("%w: %q", errors.ErrUnknownKind, s)
	}
}

// AllKinds returns all record kinds.
func AllKinds() []Kind {
	return []Kind{KindSourcelog, KindTransactionData, KindTransactions}
}

// SourcelogRecord is one row of a sourcelog dump: a transaction hash and the
// label of the peer that observed it.
type SourcelogRecord struct {
	TimestampMs int64
	Hash        string
	Source      string
}

// TransactionRecord is one row of a transaction-data or transactions dump.
// Numeric fields are kept as decimal strings to avoid precision loss.
// RawTx is set only for the transactions kind.
type TransactionRecord struct {
	TimestampMs int64
	Hash        string
	ChainID     string
	From        string
	To          string // empty = contract creation
	Value       string
	Nonce       string
	Gas         string
	GasPrice    string
	GasTipCap   string
	GasFeeCap   string
	DataSize    int64
	Data4Bytes  string
	RawTx       []byte
}

// RawTransaction is one range query result row: an observation timestamp and
// the opaque raw transaction payload.
type RawTransaction struct {
	TimestampMs int64
	RawTx       []byte
}

// DayFormat is the calendar day layout used in partition file names.
const DayFormat = "2006-01-02"

// maxMillis is the upper bound for a valid timestamp: 9999-12-31T23:59:59.999Z.
// Anything beyond that does not name a sensible calendar time for this archive.
const maxMillis = 253402300799999

// ValidMillis reports whether ms converts to a valid calendar timestamp.
func ValidMillis(ms int64) bool {
	return ms >= 0 && ms <= maxMillis
}

// ParseDay parses a YYYY-MM-DD day string as a UTC midnight time.
func ParseDay(day string) (time.Time, error) {
	t, err := time.ParseInLocation(DayFormat, day, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", errors.ErrInvalidDay, day)
	}
	return t, nil
}

// DayOfMillis returns the UTC calendar day of an epoch-millisecond timestamp.
func DayOfMillis(ms int64) (string, error) {
	if !ValidMillis(ms) {
		return "", &errors.InvalidTimestampError{Field: "timestamp_ms", Millis: ms}
	}
	return time.UnixMilli(ms).UTC().Format(DayFormat), nil
}

// MonthOfDay returns the YYYY-MM prefix of a day string.
func MonthOfDay(day string) string {
	parts := strings.SplitN(day, "-", 3)
	if len(parts) < 2 {
		return day
	}
	return parts[0] + "-" + parts[1]
}

// IsDay reports whether s is a YYYY-MM-DD day string.
func IsDay(s string) bool {
	_, err := ParseDay(s)
	return err == nil
}

// DaysBetween enumerates the UTC calendar days touched by the closed interval
// [fromMs, toMs], in ascending order. Only the date component matters: a
// window from 23:50 on day D to 00:10 on day D+1 yields both D and D+1.
func DaysBetween(fromMs, toMs int64) []string {
	from := time.UnixMilli(fromMs).UTC()
	to := time.UnixMilli(toMs).UTC()

	first := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)

	var days []string
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DayFormat))
	}
	return days
}
