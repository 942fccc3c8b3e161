package enrich

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/trendwatch/trendwatch/app/report"
)

// Extractor fetches article pages for newly-surfaced items and attaches a
// readable text excerpt to the report. Enrichment is best-effort: any
// per-item failure is logged and skipped.
type Extractor struct {
	httpClient    *http.Client
	userAgent     string
	maxItems      int
	excerptLength int
	timeout       time.Duration
}

func NewExtractor(httpClient *http.Client, userAgent string, maxItems, excerptLength int, timeout time.Duration) *Extractor {
	if maxItems <= 0 {
		maxItems = 5
	}
	if excerptLength <= 0 {
		excerptLength = 200
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Extractor{
		httpClient:    httpClient,
		userAgent:     userAgent,
		maxItems:      maxItems,
		excerptLength: excerptLength,
		timeout:       timeout,
	}
}

// Run enriches up to maxItems NEW items in place and returns how many
// excerpts were attached.
func (e *Extractor) Run(ctx context.Context, r *report.Report) int {
	enriched := 0

	for _, item := range r.NewItems(e.maxItems) {
		if len(item.URLs) == 0 {
			continue
		}

		excerpt, err := e.extract(ctx, item.URLs[0])
		if err != nil {
			slog.Debug("Content extraction failed, skipping item",
				"item", item.DisplayTitle, "url", item.URLs[0], "error", err)
			continue
		}

		item.Excerpt = excerpt
		enriched++
	}

	return enriched
}

func (e *Extractor) extract(ctx context.Context, url string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read page body: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("no readable content extracted")
	}

	return truncate(text, e.excerptLength), nil
}

// truncate cuts at a rune boundary and collapses internal newlines so
// excerpts stay single-line in channel payloads.
func truncate(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
