package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/ougirez/supplytwin/internal/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, h http.Handler, retries uint64) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, FetchRetries: retries})
	require.NoError(t, err)
	return c
}

func TestRunDecodesOutputURLs(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, runPath, r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"inventory_output_file_url":"/files/inv.csv","status":"ok","flow_output_file_url":""}`)
	}), 0)

	urls, err := c.Run(context.Background(), strings.NewReader("x"), "multipart/form-data", "tok")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"inventory_output_file_url": "/files/inv.csv"}, map[string]string(urls))
}

func TestRunDescribesHTMLErrors(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html><head><title>502 Bad Gateway</title></head><body><h1>502 Bad Gateway</h1></body></html>")
	}), 0)

	_, err := c.Run(context.Background(), strings.NewReader("x"), "multipart/form-data", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, constants.ErrBackend))
	assert.Contains(t, err.Error(), "502 Bad Gateway")
	assert.NotContains(t, err.Error(), "<h1>")
}

func TestRunWithoutURLsIsAnError(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"error":"bad bom"}`)
	}), 0)

	_, err := c.Run(context.Background(), strings.NewReader("x"), "multipart/form-data", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad bom")
}

func TestFetchCSVRetriesServerErrors(t *testing.T) {
	var calls int32
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, "date,SKU,inventory\n2025-01-01,A,5\n")
	}), 2)

	table, err := c.FetchCSV(context.Background(), "/files/inv.csv")
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchCSVDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}), 3)

	_, err := c.FetchCSV(context.Background(), "/files/missing.csv")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestResolve(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "http://sim.local:5000/"})
	require.NoError(t, err)

	got, err := c.Resolve("/outputs/a.csv")
	require.NoError(t, err)
	assert.Equal(t, "http://sim.local:5000/outputs/a.csv", got)

	got, err = c.Resolve("https://cdn.example.com/b.csv")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/b.csv", got)
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "sim.local"})
	assert.Error(t, err)
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	short := "Ошибка"
	assert.Equal(t, short, truncate(short))

	// One ASCII byte shifts every two-byte rune so the limit falls inside one.
	long := "x" + strings.Repeat("я", maxErrorSnippet)
	got := truncate(long)

	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, maxErrorSnippet-1, len(strings.TrimSuffix(got, "…")))
}
