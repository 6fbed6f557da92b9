// Package source opens the upstream CSV resources, either over HTTP or from
// a local directory.
package source

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/geoentities/internal/config"
	"github.com/JonMunkholm/geoentities/internal/core"
)

// DefaultBaseURL serves the dr5hn countries-states-cities dataset.
const DefaultBaseURL = "https://raw.githubusercontent.com/dr5hn/countries-states-cities-database/master/csv/"

const userAgent = "geodata-importer/1.0"

// HTTPFetcher downloads resources from BaseURL + resource name.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

var _ core.Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher returns a fetcher for baseURL. A zero timeout means the
// client never gives up on its own; cancel ctx instead.
func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &HTTPFetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Fetch issues a GET and returns the body unread. Any status outside 2xx is a
// FetchError carrying the status.
func (f *HTTPFetcher) Fetch(ctx context.Context, res core.Resource) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+string(res), nil)
	if err != nil {
		return nil, &core.FetchError{Resource: res, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &core.FetchError{Resource: res, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &core.FetchError{Resource: res, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

// New returns the fetcher cfg selects: a DirFetcher when Dir is set,
// otherwise an HTTPFetcher.
func New(cfg config.SourceConfig) core.Fetcher {
	if cfg.Dir != "" {
		return NewDirFetcher(cfg.Dir)
	}
	return NewHTTPFetcher(cfg.BaseURL, cfg.Timeout)
}
