package parquet

import "mempoolarchive/internal/archive/types"

// SourcelogRow is one sourcelog partition row.
// Field order defines the on-disk column order.
type SourcelogRow struct {
	Timestamp int64  `parquet:"timestamp,timestamp(millisecond)"`
	Hash      string `parquet:"hash"`
	Source    string `parquet:"source"`
}

// TransactionRow is one transaction-data partition row.
type TransactionRow struct {
	Timestamp  int64  `parquet:"timestamp,timestamp(millisecond)"`
	Hash       string `parquet:"hash"`
	ChainID    string `parquet:"chainId"`
	From       string `parquet:"from"`
	To         string `parquet:"to"`
	Value      string `parquet:"value"`
	Nonce      string `parquet:"nonce"`
	Gas        string `parquet:"gas"`
	GasPrice   string `parquet:"gasPrice"`
	GasTipCap  string `parquet:"gasTipCap"`
	GasFeeCap  string `parquet:"gasFeeCap"`
	DataSize   int64  `parquet:"dataSize"`
	Data4Bytes string `parquet:"data4Bytes"`
}

// RawTransactionRow is one transactions partition row: the transaction-data
// columns plus the trailing raw payload.
type RawTransactionRow struct {
	Timestamp  int64  `parquet:"timestamp,timestamp(millisecond)"`
	Hash       string `parquet:"hash"`
	ChainID    string `parquet:"chainId"`
	From       string `parquet:"from"`
	To         string `parquet:"to"`
	Value      string `parquet:"value"`
	Nonce      string `parquet:"nonce"`
	Gas        string `parquet:"gas"`
	GasPrice   string `parquet:"gasPrice"`
	GasTipCap  string `parquet:"gasTipCap"`
	GasFeeCap  string `parquet:"gasFeeCap"`
	DataSize   int64  `parquet:"dataSize"`
	Data4Bytes string `parquet:"data4Bytes"`
	RawTx      []byte `parquet:"rawTx"`
}

// TransactionToRow converts a normalized TransactionRecord to a
// transaction-data row.
func TransactionToRow(r *types.TransactionRecord) TransactionRow {
	return TransactionRow{
		Timestamp:  r.TimestampMs,
		Hash:       r.Hash,
		ChainID:    r.ChainID,
		From:       r.From,
		To:         r.To,
		Value:      r.Value,
		Nonce:      r.Nonce,
		Gas:        r.Gas,
		GasPrice:   r.GasPrice,
		GasTipCap:  r.GasTipCap,
		GasFeeCap:  r.GasFeeCap,
		DataSize:   r.DataSize,
		Data4Bytes: r.Data4Bytes,
	}
}

// TransactionToRawRow converts a normalized TransactionRecord to a
// transactions row carrying the raw payload.
func TransactionToRawRow(r *types.TransactionRecord) RawTransactionRow {
	return RawTransactionRow{
		Timestamp:  r.TimestampMs,
		Hash:       r.Hash,
		ChainID:    r.ChainID,
		From:       r.From,
		To:         r.To,
		Value:      r.Value,
		Nonce:      r.Nonce,
		Gas:        r.Gas,
		GasPrice:   r.GasPrice,
		GasTipCap:  r.GasTipCap,
		GasFeeCap:  r.GasFeeCap,
		DataSize:   r.DataSize,
		Data4Bytes: r.Data4Bytes,
		RawTx:      r.RawTx,
	}
}

// SourcelogToRow converts a normalized SourcelogRecord to a sourcelog row.
func SourcelogToRow(r *types.SourcelogRecord) SourcelogRow {
	return SourcelogRow{
		Timestamp: r.TimestampMs,
		Hash:      r.Hash,
		Source:    r.Source,
	}
}
