// Package fetch downloads raw per-day dumps from the remote source.
//
// The archive treats this as a boundary collaborator: given a kind and a day
// it returns the compressed bytes of the per-day dump, or a typed not-found
// or transport error that fails that day's ingestion only.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"mempoolarchive/internal/archive/types"
	"mempoolarchive/internal/errors"
	"mempoolarchive/internal/logging"
)

// Client fetches per-day dump files over HTTP.
type Client struct {
	baseURL  string
	http     *http.Client
	progress bool
}

// New creates a fetch client. timeout bounds each request; zero means no
// client-side timeout.
func New(baseURL string, timeout time.Duration, progress bool) *Client {
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: timeout},
		progress: progress,
	}
}

// Fetch downloads the raw dump for one kind and day and returns its bytes.
// The dumps are small enough to buffer in memory, and the zip reader needs
// random access anyway.
func (c *Client) Fetch(ctx context.Context, kind types.Kind, day string) ([]byte, error) {
	log := logging.Component("fetch")

	url := c.sourceURL(kind, day)
	log.Debug("downloading dump", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", errors.ErrSourceNotFound, url)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	var body io.Reader = resp.Body
	if c.progress {
		body = &progressReader{r: resp.Body, total: resp.ContentLength, log: log, url: url}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}

	log.Debug("downloaded dump", "url", url, "bytes", len(data))
	return data, nil
}

// sourceURL builds the remote path for one kind and day. Dumps are grouped
// by month; the transaction-data dump is the unsuffixed per-day file.
func (c *Client) sourceURL(kind types.Kind, day string) string {
	month := types.MonthOfDay(day)
	var name string
	switch kind {
	case types.KindSourcelog:
		name = day + "_sourcelog.csv.zip"
	case types.KindTransactions:
		name = day + "_transactions.csv.zip"
	default:
		name = day + ".csv.zip"
	}
	return fmt.Sprintf("%s/%s/%s", c.baseURL, month, name)
}

// progressReader logs download progress every reportEvery bytes.
type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	last  int64
	log   *slog.Logger
	url   string
}

const reportEvery = 8 * 1024 * 1024

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.read += int64(n)
	if p.read-p.last >= reportEvery {
		p.last = p.read
		if p.total > 0 {
			p.log.Info("download progress", "url", p.url, "bytes", p.read, "total", p.total)
		} else {
			p.log.Info("download progress", "url", p.url, "bytes", p.read)
		}
	}
	return n, err
}
