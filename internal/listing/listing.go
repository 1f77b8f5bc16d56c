// Package listing discovers available months and days from the remote
// source's directory index pages.
//
// The core archive does not depend on this package; callers use it to decide
// which days to ingest.
package listing

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/html"

	"mempoolarchive/internal/archive/types"
	"mempoolarchive/internal/errors"
)

// Client reads the remote index pages.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a listing client.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Months returns the available months (YYYY-MM), in page order.
// The root index lists them as links inside the "root-months" list.
func (c *Client) Months(ctx context.Context) ([]string, error) {
	doc, err := c.fetchDoc(ctx, c.baseURL+"/index.html")
	if err != nil {
		return nil, err
	}

	var months []string
	walk(doc, func(n *html.Node) {
		if !isElement(n, "ul") || !hasClass(n, "root-months") {
			return
		}
		walk(n, func(a *html.Node) {
			if isElement(a, "a") {
				if text := nodeText(a); text != "" {
					months = append(months, text)
				}
			}
		})
	})

	if len(months) == 0 {
		return nil, fmt.Errorf("%w: month index at %s", errors.ErrEmptyListing, c.baseURL)
	}
	return months, nil
}

// Days returns the available days (YYYY-MM-DD) of a month, ascending.
// The month index lists one <a> per dump file; each day appears once per
// kind, so the result is deduplicated.
func (c *Client) Days(ctx context.Context, month string) ([]string, error) {
	url := fmt.Sprintf("%s/%s/index.html", c.baseURL, month)
	doc, err := c.fetchDoc(ctx, url)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	walk(doc, func(n *html.Node) {
		if !isElement(n, "a") {
			return
		}
		name, ok := strings.CutSuffix(nodeText(n), ".csv.zip")
		if !ok {
			return
		}
		// File names are either "<day>.csv.zip" or "<day>_<kind>.csv.zip".
		if i := strings.IndexByte(name, '_'); i >= 0 {
			name = name[:i]
		}
		if types.IsDay(name) {
			seen[name] = true
		}
	})

	if len(seen) == 0 {
		return nil, fmt.Errorf("%w: day index for month %s", errors.ErrEmptyListing, month)
	}

	days := make([]string, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Strings(days)
	return days, nil
}

// fetchDoc downloads and parses one index page.
func (c *Client) fetchDoc(ctx context.Context, url string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}

// walk visits every node of the tree rooted at n, depth first.
func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, c := range strings.Fields(attr.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

// nodeText returns the trimmed concatenated text content of a node.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return strings.TrimSpace(sb.String())
}
