// Package types defines the core data types used throughout the archive.
//
// Key types:
//   - Kind: record kind (sourcelog, transaction-data, transactions)
//   - SourcelogRecord / TransactionRecord: decoded per-day dump rows
//   - RawTransaction: range query result row
//
// It also provides the calendar-day helpers shared by ingestion and query:
// a day is always the UTC date string "2006-01-02".
package types
