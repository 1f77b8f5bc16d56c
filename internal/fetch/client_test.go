package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mempoolarchive/internal/archive/types"
	"mempoolarchive/internal/errors"
)

func TestFetch(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("dump-bytes"))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, false)
	data, err := c.Fetch(context.Background(), types.KindSourcelog, "2023-08-31")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "dump-bytes" {
		t.Errorf("data = %q", data)
	}
	if gotPath != "/2023-08/2023-08-31_sourcelog.csv.zip" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestFetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, false)
	_, err := c.Fetch(context.Background(), types.KindTransactions, "2023-08-31")
	if !errors.Is(err, errors.ErrSourceNotFound) {
		t.Errorf("err = %v, want ErrSourceNotFound", err)
	}
}

func TestFetch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, false)
	_, err := c.Fetch(context.Background(), types.KindSourcelog, "2023-08-31")
	if err == nil {
		t.Error("expected error for 500 response")
	}
	if errors.Is(err, errors.ErrSourceNotFound) {
		t.Error("500 must not map to not-found")
	}
}

func TestSourceURL(t *testing.T) {
	c := New("https://example.org/dumps", 0, false)

	cases := []struct {
		kind types.Kind
		want string
	}{
		{types.KindSourcelog, "https://example.org/dumps/2023-08/2023-08-31_sourcelog.csv.zip"},
		{types.KindTransactionData, "https://example.org/dumps/2023-08/2023-08-31.csv.zip"},
		{types.KindTransactions, "https://example.org/dumps/2023-08/2023-08-31_transactions.csv.zip"},
	}
	for _, tc := range cases {
		if got := c.sourceURL(tc.kind, "2023-08-31"); got != tc.want {
			t.Errorf("sourceURL(%s) = %q, want %q", tc.kind, got, tc.want)
		}
	}
}
