package nlp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/neurosnap/sentences/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureWritesBundledData(t *testing.T) {
	dir := t.TempDir()
	r := NewResource(dir, "")

	path, err := r.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, PunktPath), path)
	assert.FileExists(t, path)

	again, err := r.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, path, again)
}

func TestEnsureKeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, PunktPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	got, err := NewResource(dir, "http://127.0.0.1:1/unused").Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, path, got)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(b))
}

func TestEnsureDownloadsOnce(t *testing.T) {
	payload, err := data.Asset("data/english.json")
	require.NoError(t, err)

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write(payload)
	}))
	defer srv.Close()

	r := NewResource(t.TempDir(), srv.URL)
	for i := 0; i < 3; i++ {
		_, err := r.Ensure(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, hits)
}

func TestEnsureDownloadFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewResource(t.TempDir(), srv.URL).Ensure(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad status: 404")
}

func TestLoadTokenizerSplitsSentences(t *testing.T) {
	path, err := NewResource(t.TempDir(), "").Ensure(context.Background())
	require.NoError(t, err)

	splitter, err := LoadTokenizer(path)
	require.NoError(t, err)

	got := splitter.Split("Mr. Smith went to Washington. He arrived at noon.\n\nA heading\n\nThe end came quickly.")
	require.Len(t, got, 4)
	assert.True(t, strings.HasPrefix(got[0], "Mr. Smith"))
	assert.Equal(t, "A heading", got[2])
}
