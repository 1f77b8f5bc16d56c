// Package stats computes summary statistics for one day's partition.
//
// Percentiles use DDSketch, which keeps relative error bounded without
// holding the full value distribution in memory.
package stats

import (
	"context"
	"fmt"
	"strconv"

	"github.com/DataDog/sketches-go/ddsketch"

	"mempoolarchive/internal/archive/partition"
	"mempoolarchive/internal/archive/query"
	"mempoolarchive/internal/archive/types"
	"mempoolarchive/internal/logging"
)

// relativeAccuracy is the DDSketch relative error (1%).
const relativeAccuracy = 0.01

// Percentiles holds the quantiles reported per column.
type Percentiles struct {
	P50 float64
	P90 float64
	P99 float64
}

// Summary holds one day's transaction-data summary.
type Summary struct {
	Day      string
	Rows     int64
	DataSize Percentiles
	GasPrice Percentiles
}

// Day computes the summary for one day's transaction-data partition.
// gasPrice is stored as a decimal string; values that do not fit a float64
// parse are left out of the sketch (the percentile error this introduces is
// negligible next to the sketch's own accuracy bound).
func Day(ctx context.Context, svc *query.Service, dataDir, day string) (*Summary, error) {
	log := logging.Component("stats")

	path, err := partition.Resolve(dataDir, types.KindTransactionData, day)
	if err != nil {
		return nil, err
	}

	dataSize, err := ddsketch.NewDefaultDDSketch(relativeAccuracy)
	if err != nil {
		return nil, fmt.Errorf("create sketch: %w", err)
	}
	gasPrice, err := ddsketch.NewDefaultDDSketch(relativeAccuracy)
	if err != nil {
		return nil, fmt.Errorf("create sketch: %w", err)
	}

	q := fmt.Sprintf(`SELECT "dataSize", "gasPrice" FROM read_parquet('%s')`, path)
	_, rows, err := svc.ExecuteSQL(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("scan %s partition for %s: %w", types.KindTransactionData, day, err)
	}

	summary := &Summary{Day: day}
	for _, row := range rows {
		summary.Rows++

		if size, ok := row[0].(int64); ok {
			dataSize.Add(float64(size))
		}
		if s, ok := row[1].(string); ok {
			if v, err := strconv.ParseFloat(s, 64); err == nil && v >= 0 {
				gasPrice.Add(v)
			}
		}
	}

	summary.DataSize = quantiles(dataSize)
	summary.GasPrice = quantiles(gasPrice)

	log.Debug("day summary computed", "day", day, "rows", summary.Rows)
	return summary, nil
}

// quantiles extracts the reported percentiles from a sketch. An empty sketch
// yields zeros.
func quantiles(sketch *ddsketch.DDSketch) Percentiles {
	if sketch.GetCount() == 0 {
		return Percentiles{}
	}

	var p Percentiles
	if v, err := sketch.GetValueAtQuantile(0.50); err == nil {
		p.P50 = v
	}
	if v, err := sketch.GetValueAtQuantile(0.90); err == nil {
		p.P90 = v
	}
	if v, err := sketch.GetValueAtQuantile(0.99); err == nil {
		p.P99 = v
	}
	return p
}
