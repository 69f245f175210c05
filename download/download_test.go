package download

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oboBody = "format-version: 1.2\n\n[Term]\nid: UBERON:0000001\n"

func newServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/obo/uberon.obo" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(oboBody))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)
	d := New(map[string]string{"uberon-basic": srv.URL + "/obo/uberon.obo"}, slog.New(slog.DiscardHandler))

	dir := filepath.Join(t.TempDir(), "data")
	path, err := d.Fetch(context.Background(), "uberon-basic", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "uberon.obo"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, oboBody, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is cleaned up")

	// second fetch keeps the existing file
	path2, err := d.Fetch(context.Background(), "uberon-basic", dir)
	require.NoError(t, err)
	assert.Equal(t, path, path2)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetch_UnknownSource(t *testing.T) {
	d := New(map[string]string{"b": "http://example.org/b.obo", "a": "http://example.org/a.obo"}, nil)

	_, err := d.Fetch(context.Background(), "chebi", t.TempDir())
	assert.ErrorIs(t, err, ErrUnknownSource)
	assert.Contains(t, err.Error(), "a, b")
	assert.Equal(t, []string{"a", "b"}, d.Names())
}

func TestFetch_BadStatus(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)
	d := New(map[string]string{"missing": srv.URL + "/obo/missing.obo"}, slog.New(slog.DiscardHandler))

	dir := t.TempDir()
	_, err := d.Fetch(context.Background(), "missing", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
