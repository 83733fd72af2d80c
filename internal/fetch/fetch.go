// Package fetch retrieves documents and artifact files for the panel engine.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/leapstack-labs/runlens/internal/panel"
	"github.com/leapstack-labs/runlens/pkg/core"
)

// Fetcher returns the raw bytes of a server-relative file path.
type Fetcher interface {
	Fetch(ctx context.Context, filePath string) ([]byte, error)
}

// HTTPFetcher fetches paths from a serving origin.
type HTTPFetcher struct {
	Origin string
	Client *http.Client
}

// NewHTTPFetcher returns a fetcher for origin. A zero timeout means none.
func NewHTTPFetcher(origin string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Origin: origin, Client: &http.Client{Timeout: timeout}}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, filePath string) ([]byte, error) {
	return f.get(ctx, panel.ResolveURL(f.Origin, filePath))
}

func (f *HTTPFetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetch %s: %w", url, os.ErrNotExist)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	return body, nil
}

// DirFetcher reads paths from a local directory, the storage directory that
// artifact paths are relative to.
type DirFetcher struct {
	Root string
}

// Fetch implements Fetcher. Paths may not escape Root.
func (f DirFetcher) Fetch(_ context.Context, filePath string) ([]byte, error) {
	name := strings.TrimPrefix(path.Clean("/"+filePath), "/")
	file, err := os.OpenInRoot(f.Root, name)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer func() { _ = file.Close() }()

	body, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	return body, nil
}

// HTTPSource fetches documents from a serving origin's data endpoint.
type HTTPSource struct {
	fetcher *HTTPFetcher
}

// NewHTTPSource returns a document source for origin.
func NewHTTPSource(origin string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{fetcher: NewHTTPFetcher(origin, timeout)}
}

// FetchDocument implements core.DocumentSource.
func (s *HTTPSource) FetchDocument(ctx context.Context, run string) (*core.Document, error) {
	body, err := s.fetcher.Fetch(ctx, "data/"+strings.Trim(run, "/"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("run %q: %w", run, core.ErrRunNotFound)
		}
		return nil, err
	}
	return core.ParseDocument(body)
}

// ListRuns fetches the run list from the origin.
func (s *HTTPSource) ListRuns(ctx context.Context) ([]core.RunKey, error) {
	body, err := s.fetcher.Fetch(ctx, "runs")
	if err != nil {
		return nil, err
	}
	v, err := core.ParseJSON(body)
	if err != nil {
		return nil, fmt.Errorf("decoding run list: %w", err)
	}
	list, _ := v.Get("runs")
	runs := make([]core.RunKey, 0, list.Len())
	for _, item := range list.Items() {
		runs = append(runs, core.ParseRunKey(item.String()))
	}
	return runs, nil
}
