// Package normalize maps decoded records into the archive's canonical
// column set.
//
// Normalization is where the schema becomes strict: timestamps must convert
// to valid calendar times, address fields are canonicalized to lowercase hex,
// and for the transactions kind the raw payload must decode as a well-formed
// signed transaction. Records that fail are dropped and logged, never
// batch-fatal. Numeric-as-string fields pass through unchanged to preserve
// arbitrary-precision values exactly as received.
package normalize

import (
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"mempoolarchive/internal/archive/parquet"
	"mempoolarchive/internal/archive/types"
	"mempoolarchive/internal/logging"
)

// Sourcelog normalizes sourcelog records into partition rows.
func Sourcelog(records []types.SourcelogRecord) []parquet.SourcelogRow {
	log := logging.Component("normalize")

	rows := make([]parquet.SourcelogRow, 0, len(records))
	dropped := 0
	for i := range records {
		if !types.ValidMillis(records[i].TimestampMs) {
			dropped++
			continue
		}
		rows = append(rows, parquet.SourcelogToRow(&records[i]))
	}

	if dropped > 0 {
		log.Warn("dropped sourcelog records with invalid timestamps", "dropped", dropped)
	}
	log.Debug("normalized sourcelog records", "rows", len(rows))
	return rows
}

// TransactionData normalizes transaction records into transaction-data rows.
func TransactionData(records []types.TransactionRecord) []parquet.TransactionRow {
	log := logging.Component("normalize")

	rows := make([]parquet.TransactionRow, 0, len(records))
	dropped := 0
	for i := range records {
		r := records[i]
		if !types.ValidMillis(r.TimestampMs) {
			dropped++
			continue
		}
		canonicalize(&r)
		rows = append(rows, parquet.TransactionToRow(&r))
	}

	if dropped > 0 {
		log.Warn("dropped transaction records with invalid timestamps", "dropped", dropped)
	}
	log.Debug("normalized transaction-data records", "rows", len(rows))
	return rows
}

// Transactions normalizes transaction records carrying raw payloads into
// transactions rows. The payload must decode as a well-formed signed
// transaction; dataSize and data4Bytes are derived from the decoded calldata
// rather than trusted from the dump.
func Transactions(records []types.TransactionRecord) []parquet.RawTransactionRow {
	log := logging.Component("normalize")

	rows := make([]parquet.RawTransactionRow, 0, len(records))
	droppedTs := 0
	droppedTx := 0
	for i := range records {
		r := records[i]
		if !types.ValidMillis(r.TimestampMs) {
			droppedTs++
			continue
		}

		var tx ethtypes.Transaction
		if err := tx.UnmarshalBinary(r.RawTx); err != nil {
			droppedTx++
			continue
		}

		data := tx.Data()
		r.DataSize = int64(len(data))
		if len(data) >= 4 {
			r.Data4Bytes = hexutil.Encode(data[:4])
		} else {
			r.Data4Bytes = ""
		}

		canonicalize(&r)
		rows = append(rows, parquet.TransactionToRawRow(&r))
	}

	if droppedTs > 0 {
		log.Warn("dropped transaction records with invalid timestamps", "dropped", droppedTs)
	}
	if droppedTx > 0 {
		log.Warn("dropped records with undecodable raw payloads", "dropped", droppedTx)
	}
	log.Debug("normalized transactions records", "rows", len(rows))
	return rows
}

// canonicalize lower-cases the address fields. Addresses are case-insensitive
// upstream; lowercase hex is the archive's canonical form.
func canonicalize(r *types.TransactionRecord) {
	r.From = strings.ToLower(r.From)
	r.To = strings.ToLower(r.To)
}
