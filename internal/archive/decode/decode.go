// Package decode parses raw per-day dump batches.
//
// A batch is a zip container holding exactly one delimited-text member. Rows
// that fail type coercion are logged and skipped; they never abort the batch.
// Output row order equals source row order.
package decode

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"mempoolarchive/internal/archive/types"
	"mempoolarchive/internal/logging"
)

const (
	sourcelogFields       = 3
	transactionDataFields = 13
	transactionsFields    = 14 // transaction-data fields + trailing raw_tx
)

// Sourcelog decodes a sourcelog dump: timestamp_ms, hash, source.
func Sourcelog(raw []byte) ([]types.SourcelogRecord, error) {
	log := logging.Component("decode")

	var records []types.SourcelogRecord
	skipped, err := forEachRow(raw, sourcelogFields, func(row []string) bool {
		ts, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return false
		}
		records = append(records, types.SourcelogRecord{
			TimestampMs: ts,
			Hash:        row[1],
			Source:      row[2],
		})
		return true
	})
	if err != nil {
		return nil, err
	}

	log.Debug("decoded sourcelog batch", "rows", len(records), "skipped", skipped)
	return records, nil
}

// TransactionData decodes a transaction-data dump: the 13 transaction fields,
// numeric values kept as decimal strings.
func TransactionData(raw []byte) ([]types.TransactionRecord, error) {
	log := logging.Component("decode")

	var records []types.TransactionRecord
	skipped, err := forEachRow(raw, transactionDataFields, func(row []string) bool {
		rec, ok := parseTransactionFields(row)
		if !ok {
			return false
		}
		records = append(records, rec)
		return true
	})
	if err != nil {
		return nil, err
	}

	log.Debug("decoded transaction-data batch", "rows", len(records), "skipped", skipped)
	return records, nil
}

// Transactions decodes a transactions dump: the transaction-data fields plus a
// trailing hex-encoded raw payload.
func Transactions(raw []byte) ([]types.TransactionRecord, error) {
	log := logging.Component("decode")

	var records []types.TransactionRecord
	skipped, err := forEachRow(raw, transactionsFields, func(row []string) bool {
		rec, ok := parseTransactionFields(row[:transactionDataFields])
		if !ok {
			return false
		}
		rawTx, err := decodeHex(row[transactionsFields-1])
		if err != nil {
			return false
		}
		rec.RawTx = rawTx
		records = append(records, rec)
		return true
	})
	if err != nil {
		return nil, err
	}

	log.Debug("decoded transactions batch", "rows", len(records), "skipped", skipped)
	return records, nil
}

// parseTransactionFields coerces the 13 transaction-data fields.
func parseTransactionFields(row []string) (types.TransactionRecord, bool) {
	ts, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return types.TransactionRecord{}, false
	}
	dataSize, err := strconv.ParseInt(row[11], 10, 64)
	if err != nil {
		return types.TransactionRecord{}, false
	}
	return types.TransactionRecord{
		TimestampMs: ts,
		Hash:        row[1],
		ChainID:     row[2],
		From:        row[3],
		To:          row[4],
		Value:       row[5],
		Nonce:       row[6],
		Gas:         row[7],
		GasPrice:    row[8],
		GasTipCap:   row[9],
		GasFeeCap:   row[10],
		DataSize:    dataSize,
		Data4Bytes:  row[12],
	}, true
}

// decodeHex decodes a hex payload with or without the 0x prefix.
func decodeHex(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}

// forEachRow opens the single csv member of the zip container and feeds each
// row to parse. A header row (non-numeric first field on the first row) is
// dropped without counting as malformed. Rows of the wrong width and rows
// parse rejects are counted as skipped.
func forEachRow(raw []byte, fields int, parse func(row []string) bool) (skipped int, err error) {
	log := logging.Component("decode")

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return 0, fmt.Errorf("open zip container: %w", err)
	}
	if len(zr.File) == 0 {
		return 0, fmt.Errorf("zip container has no members")
	}

	// The dumps hold exactly one member; only the first is read.
	member, err := zr.File[0].Open()
	if err != nil {
		return 0, fmt.Errorf("open zip member %q: %w", zr.File[0].Name, err)
	}
	defer member.Close()

	reader := csv.NewReader(member)
	reader.FieldsPerRecord = -1 // widths are checked per row below
	reader.ReuseRecord = true

	first := true
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				log.Warn("skipping malformed row", "line", parseErr.Line, "error", parseErr.Err)
				skipped++
				continue
			}
			return skipped, fmt.Errorf("read csv member: %w", err)
		}

		if first {
			first = false
			if _, err := strconv.ParseInt(row[0], 10, 64); err != nil {
				// Header-bearing dump; the header row is not a record.
				continue
			}
		}

		if len(row) != fields {
			log.Warn("skipping row with wrong field count", "got", len(row), "want", fields)
			skipped++
			continue
		}

		if !parse(row) {
			log.Warn("skipping row that failed type coercion", "timestamp_field", row[0])
			skipped++
		}
	}

	return skipped, nil
}
