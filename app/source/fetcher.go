package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Fetcher runs all configured sources for one cycle. A failing source
// contributes nothing; the cycle proceeds with whatever the other
// platforms returned.
type Fetcher struct {
	sources []Source
	limiter *rate.Limiter
}

// NewFetcher builds a fetcher over the enabled source configs.
// requestsPerSecond bounds the request rate across all sources.
func NewFetcher(configs []*Config, httpClient *http.Client, userAgent string, requestsPerSecond float64) (*Fetcher, error) {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}

	var sources []Source
	for _, config := range configs {
		if !config.Enabled {
			slog.Debug("Source disabled, skipping", "source", config.ID)
			continue
		}

		switch config.Type {
		case TypeRSS:
			sources = append(sources, NewRSSSource(config, httpClient, userAgent))
		case TypeHotlist:
			sources = append(sources, NewHotlistSource(config, httpClient, userAgent))
		default:
			return nil, fmt.Errorf("unknown source type '%s' for source '%s'", config.Type, config.ID)
		}
	}

	return &Fetcher{
		sources: sources,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}, nil
}

func (f *Fetcher) SourceCount() int {
	return len(f.sources)
}

// Run fetches every source in order and returns the combined entries plus
// the number of sources that failed.
func (f *Fetcher) Run(ctx context.Context) ([]Entry, int) {
	var entries []Entry
	failedCount := 0

	for _, source := range f.sources {
		if err := f.limiter.Wait(ctx); err != nil {
			slog.Warn("Fetch cycle cancelled", "error", err)
			failedCount++
			break
		}

		fetched, err := source.Fetch(ctx)
		if err != nil {
			slog.Warn("Source fetch failed, continuing with remaining sources",
				"source", source.PlatformID(), "error", err)
			failedCount++
			continue
		}

		slog.Debug("Source fetched", "source", source.PlatformID(), "entries", len(fetched))
		entries = append(entries, fetched...)
	}

	return entries, failedCount
}

func fetchURL(ctx context.Context, httpClient *http.Client, url, userAgent string, timeout time.Duration) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
