package tle

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultSourceURL = "https://celestrak.org/NORAD/elements/gp.php?GROUP=active&FORMAT=tle"

// maxBodyBytes caps a single catalog download. Full CelesTrak group files
// run a few MB; anything near this limit is a broken or hostile source.
const maxBodyBytes = 50 * 1024 * 1024

// Fetcher retrieves raw TLE catalogs over HTTP. A primary URL is required
// to succeed; extra URLs are fetched best-effort and concatenated after it,
// so a flaky supplemental source never breaks the refresh.
type Fetcher struct {
	sourceURL  string
	extraURLs  []string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher for the given source URL, falling back to the
// default CelesTrak active-satellites group when empty.
func NewFetcher(sourceURL string, logger *slog.Logger, extraURLs ...string) *Fetcher {
	if sourceURL == "" {
		sourceURL = defaultSourceURL
	}
	return &Fetcher{
		sourceURL: sourceURL,
		extraURLs: extraURLs,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// SourceURL returns the configured primary source URL.
func (f *Fetcher) SourceURL() string {
	return f.sourceURL
}

// Fetch downloads the primary catalog and appends any extra catalogs that
// succeed. Only a primary failure is returned as an error.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	data, err := f.fetchOne(ctx, f.sourceURL)
	if err != nil {
		return nil, err
	}

	for _, url := range f.extraURLs {
		extra, err := f.fetchOne(ctx, url)
		if err != nil {
			f.logger.Warn("extra TLE source failed", "url", url, "error", err)
			continue
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		data = append(data, extra...)
	}

	return data, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching TLE data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("response from %s exceeds %d byte limit", url, maxBodyBytes)
	}

	return body, nil
}
