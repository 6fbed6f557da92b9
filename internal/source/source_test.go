package source

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/geoentities/internal/config"
	"github.com/JonMunkholm/geoentities/internal/core"
	"github.com/JonMunkholm/geoentities/internal/core/coretest"
	"github.com/JonMunkholm/geoentities/internal/store/memstore"
)

func fixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	files := coretest.Files()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[core.Resource(filepath.Base(r.URL.Path))]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	srv := fixtureServer(t)
	f := NewHTTPFetcher(srv.URL+"/csv", 0)

	rc, err := f.Fetch(context.Background(), core.ResourceRegions)
	require.NoError(t, err)
	defer rc.Close()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, coretest.RegionsCSV, string(body))
}

func TestHTTPFetcher_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	_, err := NewHTTPFetcher(srv.URL, 0).Fetch(context.Background(), core.ResourceStates)

	var fe *core.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, core.ResourceStates, fe.Resource)
	assert.Equal(t, http.StatusServiceUnavailable, fe.StatusCode)
	assert.Equal(t, "FETCH001", core.MapError(err).Code)
}

func TestHTTPFetcher_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPFetcher(url, 0).Fetch(context.Background(), core.ResourceCities)

	var fe *core.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Zero(t, fe.StatusCode)
	assert.Error(t, fe.Err)
}

func TestHTTPFetcher_SendsUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.UserAgent()
		_, _ = io.WriteString(w, coretest.RegionsCSV)
	}))
	t.Cleanup(srv.Close)

	rc, err := NewHTTPFetcher(srv.URL+"/", 0).Fetch(context.Background(), core.ResourceRegions)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, userAgent, got)
}

func TestNewHTTPFetcher_DefaultBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, NewHTTPFetcher("", 0).baseURL)
}

func TestHTTPFetcher_FullImport(t *testing.T) {
	srv := fixtureServer(t)
	store := memstore.New()

	_, err := core.NewImporter(NewHTTPFetcher(srv.URL, 0), store).Run(context.Background())
	require.NoError(t, err)

	counts, err := store.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, coretest.FullCounts, counts)
}

func TestDirFetcher(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, string(core.ResourceRegions)), []byte(coretest.RegionsCSV), 0o644))
	f := NewDirFetcher(dir)

	rc, err := f.Fetch(context.Background(), core.ResourceRegions)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, coretest.RegionsCSV, string(body))

	_, err = f.Fetch(context.Background(), core.ResourceCities)
	var fe *core.FetchError
	require.ErrorAs(t, err, &fe)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestNew(t *testing.T) {
	assert.IsType(t, &DirFetcher{}, New(config.SourceConfig{Dir: "/tmp", BaseURL: DefaultBaseURL}))
	assert.IsType(t, &HTTPFetcher{}, New(config.SourceConfig{BaseURL: DefaultBaseURL}))
}
