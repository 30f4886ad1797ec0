// README: Static source fetcher for embedded, file and HTTP locations.
package infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"
)

const embedScheme = "embed://"

// maxSourceBytes caps how much of a remote source is read.
const maxSourceBytes = 32 << 20

var ErrEmptyLocation = errors.New("empty source location")

// SourceFetcher reads static data sources. A location is one of
// embed://<name> (read from the embedded filesystem), http(s)://<url>, or a
// filesystem path.
type SourceFetcher struct {
	embedded fs.FS
	client   *http.Client
}

func NewSourceFetcher(embedded fs.FS, timeout time.Duration) *SourceFetcher {
	return &SourceFetcher{
		embedded: embedded,
		client:   &http.Client{Timeout: timeout},
	}
}

func (f *SourceFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	location = strings.TrimSpace(location)
	switch {
	case location == "":
		return nil, ErrEmptyLocation
	case strings.HasPrefix(location, embedScheme):
		if f.embedded == nil {
			return nil, fmt.Errorf("fetch %s: no embedded data", location)
		}
		data, err := fs.ReadFile(f.embedded, strings.TrimPrefix(location, embedScheme))
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", location, err)
		}
		return data, nil
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return f.fetchHTTP(ctx, location)
	default:
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", location, err)
		}
		return data, nil
	}
}

func (f *SourceFetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return data, nil
}
