package source

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/geoentities/internal/core"
)

// DirFetcher reads resources from a directory, for offline loads.
type DirFetcher struct {
	dir string
}

var _ core.Fetcher = (*DirFetcher)(nil)

func NewDirFetcher(dir string) *DirFetcher {
	return &DirFetcher{dir: dir}
}

// Fetch opens dir/resource.
func (f *DirFetcher) Fetch(ctx context.Context, res core.Resource) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, &core.FetchError{Resource: res, Err: err}
	}
	file, err := os.Open(filepath.Join(f.dir, string(res)))
	if err != nil {
		return nil, &core.FetchError{Resource: res, Err: err}
	}
	return file, nil
}
